// Package prices looks up current asset prices in EUR via the CoinGecko
// simple price endpoint. Lookup failures degrade to a price of zero; the
// dashboard treats an unpriced holding as worthless rather than failing
// the whole refresh.
package prices

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/wkoning/portfolio-tracker/internal/domain"
)

const defaultBaseURL = "https://api.coingecko.com/api/v3"

// DefaultSymbolToID maps asset symbols to CoinGecko ids. Symbols not in
// the table fall back to an id derived from the asset name.
var DefaultSymbolToID = map[string]string{
	"BTC":   "bitcoin",
	"ETH":   "ethereum",
	"USDT":  "tether",
	"BNB":   "binancecoin",
	"SOL":   "solana",
	"XRP":   "ripple",
	"USDC":  "usd-coin",
	"ADA":   "cardano",
	"DOT":   "polkadot",
	"LINK":  "chainlink",
	"STRAX": "stratis",
	"NEX":   "neon-exchange",
	"BAND":  "band-protocol",
	"KNC":   "kyber-network-crystal",
	"POWR":  "power-ledger",
	"YEARN": "yearn-finance",
	"EIGEN": "eigenlayer",
	"OMG":   "omisego",
	"UTK":   "xmoney-2",
}

// Service fetches prices. The symbol table is injected so tests and
// future asset classes can swap it.
type Service struct {
	httpClient *http.Client
	baseURL    string
	symbolToID map[string]string
	log        zerolog.Logger
}

// NewService creates a price service with the default CoinGecko endpoint
// and symbol table.
func NewService(log zerolog.Logger) *Service {
	return &Service{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    defaultBaseURL,
		symbolToID: DefaultSymbolToID,
		log:        log,
	}
}

// NewServiceWithOptions creates a price service against a custom endpoint
// and symbol table.
func NewServiceWithOptions(baseURL string, symbolToID map[string]string, client *http.Client, log zerolog.Logger) *Service {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Service{httpClient: client, baseURL: baseURL, symbolToID: symbolToID, log: log}
}

// FetchEUR returns a symbol → EUR price map for the given holdings.
// EUR itself is always 1. USD is priced through tether. Unknown symbols
// try a CoinGecko id derived from the lowercased asset name with spaces
// replaced by hyphens. Symbols the API does not know stay absent from
// the map, which callers read as zero.
func (s *Service) FetchEUR(ctx context.Context, holdings []domain.Holding) map[string]decimal.Decimal {
	out := map[string]decimal.Decimal{"EUR": decimal.NewFromInt(1)}

	idToSymbol := make(map[string]string)
	var ids []string
	seen := make(map[string]bool)

	for _, h := range holdings {
		symbol := strings.ToUpper(strings.TrimSpace(h.Symbol))
		if symbol == "EUR" {
			continue
		}

		id := ""
		switch {
		case symbol == "USD":
			id = "tether"
		default:
			if mapped, ok := s.symbolToID[symbol]; ok {
				id = mapped
			} else {
				id = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(h.Name)), " ", "-")
			}
		}
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
		idToSymbol[id] = symbol
	}

	if len(ids) == 0 {
		return out
	}

	quotes, err := s.fetchSimplePrice(ctx, ids)
	if err != nil {
		s.log.Warn().Err(err).Msg("Price lookup failed, holdings will be priced at zero")
		return out
	}

	for id, price := range quotes {
		symbol, ok := idToSymbol[id]
		if !ok {
			continue
		}
		out[symbol] = price
	}
	return out
}

func (s *Service) fetchSimplePrice(ctx context.Context, ids []string) (map[string]decimal.Decimal, error) {
	values := url.Values{}
	values.Set("ids", strings.Join(ids, ","))
	values.Set("vs_currencies", "eur")
	endpoint := s.baseURL + "/simple/price?" + values.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("fetchSimplePrice: create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetchSimplePrice: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("fetchSimplePrice: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload map[string]struct {
		EUR json.Number `json:"eur"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("fetchSimplePrice: decode: %w", err)
	}

	quotes := make(map[string]decimal.Decimal, len(payload))
	for id, quote := range payload {
		price, err := decimal.NewFromString(quote.EUR.String())
		if err != nil {
			continue
		}
		quotes[id] = price
	}
	return quotes, nil
}

// Apply sets CurrentPrice and Value on each holding and sorts the result
// by value, largest first. Unresolved symbols get price zero.
func (s *Service) Apply(ctx context.Context, holdings []domain.Holding) []domain.Holding {
	quotes := s.FetchEUR(ctx, holdings)

	out := make([]domain.Holding, len(holdings))
	for i, h := range holdings {
		price := quotes[strings.ToUpper(strings.TrimSpace(h.Symbol))]
		h.CurrentPrice = price
		h.Value = h.Amount.Mul(price)
		out[i] = h
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Value.GreaterThan(out[j].Value)
	})
	return out
}
