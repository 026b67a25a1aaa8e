// Package aggregate implements the Aggregator (spec §4.11): SQL-like
// reductions over canonicalized numeric fields, with fixed-precision
// decimal arithmetic, mixed-currency detection, duplicate and outlier
// flagging, and a small natural-language template parser.
package aggregate

import (
	"errors"
	"time"

	"docqa/docstore"

	"github.com/shopspring/decimal"
)

// Op is a reduction operation.
type Op string

const (
	OpSum    Op = "sum"
	OpAvg    Op = "avg"
	OpMedian Op = "median"
	OpMin    Op = "min"
	OpMax    Op = "max"
	OpCount  Op = "count"
)

// Field is the target numeric field.
type Field string

const (
	FieldTotal     Field = "total"
	FieldTax       Field = "tax"
	FieldLineTotal Field = "line_total"
	FieldQty       Field = "qty"
)

// GroupBy is an optional grouping dimension.
type GroupBy string

const (
	GroupByType     GroupBy = "type"
	GroupBySupplier GroupBy = "supplier"
	GroupByMonth    GroupBy = "month"
	GroupByYear     GroupBy = "year"
)

// Filters narrows the document set before reduction.
type Filters struct {
	Type     *docstore.DocType
	DateFrom *time.Time
	DateTo   *time.Time
	Supplier *string
	Currency *string
}

// Plan is a fully specified aggregation request.
type Plan struct {
	Op      Op
	Field   Field
	Filters Filters
	GroupBy GroupBy
}

// ErrMixedCurrency is returned when the post-filter set spans more
// than one non-null currency and cannot collapse to a single value
// (spec §4.11, §7).
var ErrMixedCurrency = errors.New("aggregate: mixed currency")

// Result is the Aggregator's output.
type Result struct {
	Value    *decimal.Decimal
	Currency string // set only when Value is a single-currency reduction
	Count    int

	GroupedBy  map[string]decimal.Decimal
	Duplicates []string
	Outliers   []decimal.Decimal

	// MixedBreakdown is populated only when Err is ErrMixedCurrency:
	// per-currency partial reduction, so the caller can still present
	// something useful.
	MixedBreakdown map[string]decimal.Decimal
}
