// Package planner turns free-text finance questions into a structured query
// using fixed, ordered pattern rules. It never calls out to a model.
package planner

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// DateRangeKind tags the shape of a relative date range.
type DateRangeKind string

// LastNMonths is the only relative range the planner recognizes.
const LastNMonths DateRangeKind = "LAST_N_MONTHS"

// DateRange is a tagged relative window such as "last 3 months".
type DateRange struct {
	Kind  DateRangeKind `json:"kind"`
	Count int           `json:"count"`
}

// ParsedQuery is the structured form of one question.
type ParsedQuery struct {
	Intent           Intent     `json:"intent"`
	Month            string     `json:"month,omitempty"` // "YYYY-MM", empty when absent
	DateRange        *DateRange `json:"date_range,omitempty"`
	OriginalQuestion string     `json:"original_question"`
}

// HasMonth reports whether a month was extracted.
func (q ParsedQuery) HasMonth() bool {
	return q.Month != ""
}

var monthNumbers = map[string]string{
	"january":   "01",
	"jan":       "01",
	"february":  "02",
	"feb":       "02",
	"march":     "03",
	"mar":       "03",
	"april":     "04",
	"apr":       "04",
	"may":       "05",
	"june":      "06",
	"jun":       "06",
	"july":      "07",
	"jul":       "07",
	"august":    "08",
	"aug":       "08",
	"september": "09",
	"sep":       "09",
	"october":   "10",
	"oct":       "10",
	"november":  "11",
	"nov":       "11",
	"december":  "12",
	"dec":       "12",
}

// Full names come before their abbreviations so the alternation prefers
// "june 2025" over the "jun" prefix at the same position.
var (
	monthNamePattern = regexp.MustCompile(`\b(january|february|march|april|may|june|july|august|september|october|november|december|jan|feb|mar|apr|jun|jul|aug|sep|oct|nov|dec)\s+(\d{4})`)
	isoMonthPattern  = regexp.MustCompile(`(\d{4})-(\d{2})`)
	lastNPattern     = regexp.MustCompile(`last\s+(\d+)\s+months?`)
)

// Planner classifies questions and extracts their parameters.
// It holds no mutable state and is safe for concurrent use.
type Planner struct {
	rules []Rule
}

// New creates a planner with the built-in intent rules.
func New() *Planner {
	return &Planner{rules: defaultRules}
}

// NewWithRules creates a planner with custom ordered rules.
func NewWithRules(rules []Rule) *Planner {
	return &Planner{rules: rules}
}

// ClassifyIntent returns the first intent whose patterns match the question,
// or IntentUnknown.
func (p *Planner) ClassifyIntent(question string) Intent {
	q := strings.ToLower(question)
	for _, r := range p.rules {
		for _, pattern := range r.Patterns {
			if pattern.MatchString(q) {
				return r.Intent
			}
		}
	}
	return IntentUnknown
}

// ExtractMonth finds a month reference and returns it as "YYYY-MM".
// "June 2025" and "jun 2025" forms are tried first, leftmost occurrence wins;
// a literal "2025-06" token is the fallback.
func (p *Planner) ExtractMonth(question string) (string, bool) {
	q := strings.ToLower(question)

	if m := monthNamePattern.FindStringSubmatch(q); m != nil {
		return fmt.Sprintf("%s-%s", m[2], monthNumbers[m[1]]), true
	}

	if m := isoMonthPattern.FindString(question); m != "" {
		return m, true
	}

	return "", false
}

// ExtractDateRange recognizes "last N month(s)".
func (p *Planner) ExtractDateRange(question string) (*DateRange, bool) {
	m := lastNPattern.FindStringSubmatch(strings.ToLower(question))
	if m == nil {
		return nil, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return nil, false
	}
	return &DateRange{Kind: LastNMonths, Count: n}, true
}

// ParseQuery composes intent classification and parameter extraction.
func (p *Planner) ParseQuery(question string) ParsedQuery {
	parsed := ParsedQuery{
		Intent:           p.ClassifyIntent(question),
		OriginalQuestion: question,
	}
	if month, ok := p.ExtractMonth(question); ok {
		parsed.Month = month
	}
	if dr, ok := p.ExtractDateRange(question); ok {
		parsed.DateRange = dr
	}
	return parsed
}
