package importer

import (
	"strings"

	"github.com/rs/zerolog"
	"github.com/wkoning/portfolio-tracker/internal/domain"
)

// ResolveProfile matches a free-text user name against stored profiles by
// case-insensitive, whitespace-trimmed equality on the display name.
func ResolveProfile(name string, profiles []domain.Profile) (domain.Profile, bool) {
	trimmed := strings.TrimSpace(name)
	for _, p := range profiles {
		if strings.EqualFold(trimmed, strings.TrimSpace(p.FullName)) {
			return p, true
		}
	}
	return domain.Profile{}, false
}

// MatchUsers resolves the raw user names in the batch to profile ids.
// Rows whose name matches no profile are dropped with a warning; the
// rest of the batch proceeds.
func MatchUsers(data *domain.PortfolioData, profiles []domain.Profile, log zerolog.Logger) (droppedTx, droppedHistory int) {
	matched := data.Transactions[:0]
	for _, tx := range data.Transactions {
		p, ok := ResolveProfile(tx.UserName, profiles)
		if !ok {
			log.Warn().Str("user_name", tx.UserName).Str("transaction_id", tx.ID).
				Msg("No matching profile for transaction, dropping")
			droppedTx++
			continue
		}
		tx.UserID = p.ID
		matched = append(matched, tx)
	}
	data.Transactions = matched

	matchedHistory := data.History[:0]
	for _, rec := range data.History {
		p, ok := ResolveProfile(rec.UserName, profiles)
		if !ok {
			log.Warn().Str("user_name", rec.UserName).Msg("No matching profile for history row, dropping")
			droppedHistory++
			continue
		}
		rec.UserID = p.ID
		matchedHistory = append(matchedHistory, rec)
	}
	data.History = matchedHistory

	return droppedTx, droppedHistory
}
