// Package extract implements deterministic, regex-based extraction of
// amounts, dates, and invoice-style identifiers from raw section text.
// It never throws on unmatched input; every Extract* function returns
// an empty slice rather than an error when nothing is found.
package extract

import (
	"time"

	"github.com/shopspring/decimal"
)

// Amount is a numeric value recovered from free text, with currency
// inferred from the surrounding symbol or code when present.
type Amount struct {
	Raw        string
	Value      decimal.Decimal
	Currency   string // ISO 4217, "" when no symbol/code was present
	Confidence float64
	SectionID  string
}

// ID is an invoice-style identifier recovered from free text.
type ID struct {
	Raw       string
	Canonical string
	Pattern   string
	SectionID string
}

// Date is a calendar date recovered from free text, normalized to UTC
// midnight.
type Date struct {
	Raw       string
	Value     time.Time
	SectionID string
}
