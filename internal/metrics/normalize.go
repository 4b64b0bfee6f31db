package metrics

import (
	"sort"
	"strings"

	"github.com/dvloznov/cfo-copilot/internal/domain"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// FXKey identifies one FX rate.
type FXKey struct {
	Month    string `json:"month"`
	Currency string `json:"currency"`
}

// buildRateIndex hashes the FX table on (month, currency). When a pair repeats,
// the first entry wins.
func buildRateIndex(fx []domain.FXRecord, log zerolog.Logger) map[FXKey]decimal.Decimal {
	rates := make(map[FXKey]decimal.Decimal, len(fx))
	for _, r := range fx {
		key := FXKey{Month: r.Month, Currency: strings.ToUpper(r.Currency)}
		if _, dup := rates[key]; dup {
			log.Warn().
				Str("month", key.Month).
				Str("currency", key.Currency).
				Msg("Duplicate FX rate ignored")
			continue
		}
		rates[key] = r.RateToUSD
	}
	return rates
}

type missingSet map[FXKey]struct{}

func newMissingSet() missingSet {
	return make(missingSet)
}

func (m missingSet) sorted() []FXKey {
	keys := make([]FXKey, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Month != keys[j].Month {
			return keys[i].Month < keys[j].Month
		}
		return keys[i].Currency < keys[j].Currency
	})
	return keys
}

// normalize left-joins a ledger against the rate index and converts every
// amount into the reporting currency.
func normalize(ledger []domain.LedgerRecord, rates map[FXKey]decimal.Decimal, reporting string, missing missingSet) []NormalizedRecord {
	out := make([]NormalizedRecord, 0, len(ledger))
	for _, r := range ledger {
		key := FXKey{Month: r.Month, Currency: strings.ToUpper(r.Currency)}
		n := NormalizedRecord{LedgerRecord: r}

		rate, ok := rates[key]
		if !ok && key.Currency == reporting {
			rate, ok = decimal.NewFromInt(1), true
		}

		if ok {
			n.RateToUSD = rate
			n.AmountUSD = r.Amount.Mul(rate)
			n.HasRate = true
		} else {
			missing[key] = struct{}{}
		}
		out = append(out, n)
	}
	return out
}
