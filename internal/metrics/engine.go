// Package metrics computes financial metrics over an immutable, currency
// normalized snapshot of actuals, budget, cash and FX tables.
package metrics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dvloznov/cfo-copilot/internal/domain"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// MissingFXPolicy decides what happens to ledger rows whose (month, currency)
// has no FX rate.
type MissingFXPolicy string

const (
	// MissingFXSkip leaves the row out of every sum and records the pair.
	MissingFXSkip MissingFXPolicy = "skip"
	// MissingFXStrict makes NewEngine fail when any pair is uncovered.
	MissingFXStrict MissingFXPolicy = "strict"
)

// ParseMissingFXPolicy maps a configuration string to a policy.
func ParseMissingFXPolicy(s string) (MissingFXPolicy, error) {
	switch MissingFXPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", MissingFXSkip:
		return MissingFXSkip, nil
	case MissingFXStrict:
		return MissingFXStrict, nil
	default:
		return "", fmt.Errorf("unknown missing FX policy %q (want %q or %q)", s, MissingFXSkip, MissingFXStrict)
	}
}

type options struct {
	missingFX         MissingFXPolicy
	log               zerolog.Logger
}

// Option configures an Engine.
type Option func(*options)

// WithMissingFXPolicy selects how uncovered (month, currency) pairs are treated.
func WithMissingFXPolicy(p MissingFXPolicy) Option {
	return func(o *options) {
		o.missingFX = p
	}
}

// WithLogger sets the logger used for data-quality warnings.
func WithLogger(log zerolog.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

// NormalizedRecord is a ledger row joined with its FX rate.
type NormalizedRecord struct {
	domain.LedgerRecord
	RateToUSD decimal.Decimal `json:"rate_to_usd"`
	AmountUSD decimal.Decimal `json:"amount_usd"`
	// HasRate is false when no FX entry covered the row; AmountUSD is then zero
	// and the row contributes nothing to any aggregate.
	HasRate bool `json:"has_rate"`
}

// Engine holds the normalized tables. It is read-only after construction and
// safe to share between goroutines.
type Engine struct {
	actuals  []NormalizedRecord
	budget   []NormalizedRecord
	cash     []domain.CashRecord
	missing  []FXKey
	currency string
}

// NewEngine normalizes the dataset into the reporting currency.
func NewEngine(ds *domain.Dataset, opts ...Option) (*Engine, error) {
	o := options{
		missingFX: MissingFXSkip,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if ds == nil {
		ds = &domain.Dataset{}
	}

	rates := buildRateIndex(ds.FX, o.log)

	missing := newMissingSet()
	actuals := normalize(ds.Actuals, rates, domain.DefaultReportingCurrency, missing)
	budget := normalize(ds.Budget, rates, domain.DefaultReportingCurrency, missing)

	keys := missing.sorted()
	if len(keys) > 0 {
		if o.missingFX == MissingFXStrict {
			return nil, fmt.Errorf("NewEngine: normalizing ledgers: %w", &MissingFXError{Pairs: keys})
		}
		o.log.Warn().
			Int("pairs", len(keys)).
			Str("first_month", keys[0].Month).
			Str("first_currency", keys[0].Currency).
			Msg("Ledger rows without FX rate excluded from totals")
	}

	cash := make([]domain.CashRecord, len(ds.Cash))
	copy(cash, ds.Cash)

	return &Engine{
		actuals:  actuals,
		budget:   budget,
		cash:     cash,
		missing:  keys,
		currency: domain.DefaultReportingCurrency,
	}, nil
}

// ReportingCurrency returns the currency all amounts are expressed in.
func (e *Engine) ReportingCurrency() string {
	return e.currency
}

// MissingFX lists the (month, currency) pairs that had no FX rate.
func (e *Engine) MissingFX() []FXKey {
	out := make([]FXKey, len(e.missing))
	copy(out, e.missing)
	return out
}

// NormalizedActuals returns a copy of the normalized actuals ledger.
func (e *Engine) NormalizedActuals() []NormalizedRecord {
	out := make([]NormalizedRecord, len(e.actuals))
	copy(out, e.actuals)
	return out
}

// NormalizedBudget returns a copy of the normalized budget ledger.
func (e *Engine) NormalizedBudget() []NormalizedRecord {
	out := make([]NormalizedRecord, len(e.budget))
	copy(out, e.budget)
	return out
}

// Months returns the distinct months present in actuals, ascending.
func (e *Engine) Months() []string {
	return distinctMonths(e.actuals)
}

// LatestMonth returns the most recent month present in actuals.
func (e *Engine) LatestMonth() (string, bool) {
	months := e.Months()
	if len(months) == 0 {
		return "", false
	}
	return months[len(months)-1], true
}

func distinctMonths(records []NormalizedRecord) []string {
	seen := make(map[string]bool)
	var months []string
	for _, r := range records {
		if !seen[r.Month] {
			seen[r.Month] = true
			months = append(months, r.Month)
		}
	}
	sort.Strings(months)
	return months
}

// sumUSD totals AmountUSD over the rows accepted by keep.
func sumUSD(records []NormalizedRecord, keep func(NormalizedRecord) bool) decimal.Decimal {
	total := decimal.Zero
	for _, r := range records {
		if r.HasRate && keep(r) {
			total = total.Add(r.AmountUSD)
		}
	}
	return total
}

func inMonthWithCategory(month, category string) func(NormalizedRecord) bool {
	return func(r NormalizedRecord) bool {
		return r.Month == month && r.AccountCategory == category
	}
}

func inMonthOpex(month string) func(NormalizedRecord) bool {
	return func(r NormalizedRecord) bool {
		return r.Month == month && r.IsOpex()
	}
}

var hundred = decimal.NewFromInt(100)

// percentOf returns part/whole*100.
func percentOf(part, whole decimal.Decimal) decimal.Decimal {
	return part.Div(whole).Mul(hundred)
}
