// Package handlers implements the dashboard API: portfolio, activity and
// history reads plus the admin-only import+sync endpoint.
package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/wkoning/portfolio-tracker/internal/api/middleware"
	"github.com/wkoning/portfolio-tracker/internal/domain"
	"github.com/wkoning/portfolio-tracker/internal/gcs"
	"github.com/wkoning/portfolio-tracker/internal/importer"
	"github.com/wkoning/portfolio-tracker/internal/prices"
)

// maxWorkbookSize caps uploaded workbook bodies at 20 MiB.
const maxWorkbookSize = 20 << 20

// Store is the full persistence surface the handlers need: the sync
// write side plus the dashboard read side.
type Store interface {
	importer.Store
	ListAssets(ctx context.Context) ([]domain.Holding, error)
	ListTransactions(ctx context.Context) ([]domain.Transaction, error)
	ListHistory(ctx context.Context) ([]domain.HistoryRecord, error)
}

// PortfolioHandler serves holdings.
type PortfolioHandler struct {
	store   Store
	prices  *prices.Service
	classes *domain.Classifier
	log     zerolog.Logger
}

// NewPortfolioHandler creates a portfolio handler. A nil classifier falls
// back to the default cash/gold sets.
func NewPortfolioHandler(store Store, priceSvc *prices.Service, classes *domain.Classifier, log zerolog.Logger) *PortfolioHandler {
	if classes == nil {
		classes = domain.NewClassifier()
	}
	return &PortfolioHandler{store: store, prices: priceSvc, classes: classes, log: log}
}

// ListHoldings handles GET /api/holdings. With ?refresh=1 the stored
// holdings are re-priced before being returned. The response carries the
// per-class value breakdown the dashboard shows above the tables.
func (h *PortfolioHandler) ListHoldings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	holdings, err := h.store.ListAssets(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list assets")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list holdings")
		return
	}

	if r.URL.Query().Get("refresh") == "1" {
		holdings = h.prices.Apply(ctx, holdings)
	}

	breakdown := h.classes.Breakdown(holdings)
	total := decimal.Zero
	for _, entry := range breakdown {
		total = total.Add(entry.Value)
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"holdings":    holdings,
		"count":       len(holdings),
		"total_value": total,
		"breakdown":   breakdown,
	})
}

// ActivityHandler serves the transaction log.
type ActivityHandler struct {
	store Store
	log   zerolog.Logger
}

// NewActivityHandler creates an activity handler.
func NewActivityHandler(store Store, log zerolog.Logger) *ActivityHandler {
	return &ActivityHandler{store: store, log: log}
}

// ListTransactions handles GET /api/transactions. Stored rows carry only
// user ids; display names are joined in from the profiles table.
func (h *ActivityHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	txs, err := h.store.ListTransactions(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list transactions")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list transactions")
		return
	}

	profiles, err := h.store.ListProfiles(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list profiles")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list profiles")
		return
	}

	idToName := make(map[string]string, len(profiles))
	for _, p := range profiles {
		idToName[p.ID] = p.FullName
	}
	for i := range txs {
		txs[i].UserName = idToName[txs[i].UserID]
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": txs,
		"count":        len(txs),
	})
}

// HistoryHandler serves the per-user history chart data.
type HistoryHandler struct {
	store Store
	log   zerolog.Logger
}

// NewHistoryHandler creates a history handler.
func NewHistoryHandler(store Store, log zerolog.Logger) *HistoryHandler {
	return &HistoryHandler{store: store, log: log}
}

// historyPoint is one chart point: a date plus one value per user name.
type historyPoint struct {
	Date   string            `json:"date"`
	Values map[string]string `json:"values"`
}

// ListHistory handles GET /api/history, grouping stored snapshots by
// date with one series per user, the shape the chart consumes.
func (h *HistoryHandler) ListHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	records, err := h.store.ListHistory(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list history")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list history")
		return
	}

	profiles, err := h.store.ListProfiles(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list profiles")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list profiles")
		return
	}
	idToName := make(map[string]string, len(profiles))
	for _, p := range profiles {
		idToName[p.ID] = p.FullName
	}

	var points []historyPoint
	index := make(map[string]int)
	for _, rec := range records {
		key := rec.Date.Format("2006-01-02")
		i, ok := index[key]
		if !ok {
			i = len(points)
			index[key] = i
			points = append(points, historyPoint{Date: key, Values: make(map[string]string)})
		}
		name := idToName[rec.UserID]
		if name == "" {
			name = "Unknown"
		}
		points[i].Values[name] = rec.Value.String()
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"points": points,
		"count":  len(points),
	})
}

// ProfilesHandler serves the registered investors.
type ProfilesHandler struct {
	store Store
	log   zerolog.Logger
}

// NewProfilesHandler creates a profiles handler.
func NewProfilesHandler(store Store, log zerolog.Logger) *ProfilesHandler {
	return &ProfilesHandler{store: store, log: log}
}

// ListProfiles handles GET /api/profiles.
func (h *ProfilesHandler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.store.ListProfiles(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list profiles")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list profiles")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"profiles": profiles,
		"count":    len(profiles),
	})
}

// ImportHandler runs the workbook import and sync.
type ImportHandler struct {
	store   Store
	archive gcs.Archive
	bucket  string
	log     zerolog.Logger
}

// NewImportHandler creates an import handler. The archive is optional;
// with an empty bucket uploaded workbooks are not archived.
func NewImportHandler(store Store, archive gcs.Archive, bucket string, log zerolog.Logger) *ImportHandler {
	return &ImportHandler{store: store, archive: archive, bucket: bucket, log: log}
}

// Import handles POST /api/import: a multipart workbook upload, parsed
// and reconciled in memory, then synced as a full replace. The response
// carries both the import report and the per-step sync report so a
// partial failure is visible to the caller.
func (h *ImportHandler) Import(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	file, header, err := r.FormFile("file")
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Workbook file is required (multipart field 'file')")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxWorkbookSize))
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Failed to read workbook")
		return
	}

	profiles, err := h.store.ListProfiles(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list profiles")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list profiles")
		return
	}
	userNames := make([]string, len(profiles))
	for i, p := range profiles {
		userNames[i] = p.FullName
	}

	im := &importer.Importer{UserNames: userNames, Log: h.log}
	portfolio, report, err := im.Import(data)
	if err != nil {
		h.log.Error().Err(err).Str("filename", header.Filename).Msg("Workbook import failed")
		middleware.WriteError(w, http.StatusBadRequest, "Failed to parse workbook: "+err.Error())
		return
	}

	syncReport, syncErr := importer.Sync(ctx, h.store, portfolio, h.log)

	archiveURI := ""
	if h.bucket != "" && h.archive != nil {
		uri, err := h.archive.UploadWorkbook(ctx, h.bucket, gcs.ObjectName(header.Filename), data)
		if err != nil {
			h.log.Warn().Err(err).Msg("Workbook archive upload failed")
		} else {
			archiveURI = uri
		}
	}

	status := http.StatusOK
	if syncErr != nil {
		h.log.Error().Err(syncErr).Msg("Sync failed")
		status = http.StatusInternalServerError
	}
	middleware.WriteJSON(w, status, map[string]interface{}{
		"import":      report,
		"sync":        syncReport,
		"archive_uri": archiveURI,
	})
}
