package aggregate

import (
	"sort"

	"docqa/docstore"

	"github.com/shopspring/decimal"
)

// Aggregate runs plan over docs (spec §4.11). The caller is expected
// to have already resolved plan via ParseQuery or built it directly.
func Aggregate(docs []*docstore.NormalizedDocument, plan Plan) (*Result, error) {
	filtered := applyFilters(docs, plan.Filters)

	if plan.GroupBy != "" {
		return aggregateGrouped(filtered, plan)
	}

	values, currencies := collectValues(filtered, plan.Field)

	if isCurrencyField(plan.Field) && len(currencies) > 1 {
		breakdown := mixedCurrencyBreakdown(filtered, plan)
		return &Result{MixedBreakdown: breakdown, Count: len(filtered)}, ErrMixedCurrency
	}

	result := &Result{Count: len(filtered)}
	if plan.Op != OpCount {
		v := reduce(plan.Op, values)
		result.Value = v
		result.Outliers = outliers(values)
		if isCurrencyField(plan.Field) && len(currencies) == 1 {
			for cur := range currencies {
				result.Currency = cur
			}
		}
	}
	if plan.Op == OpCount || plan.Op == OpSum {
		result.Duplicates = duplicateInvoiceNumbers(filtered)
	}
	return result, nil
}

func isCurrencyField(f Field) bool {
	return f == FieldTotal || f == FieldTax || f == FieldLineTotal
}

func applyFilters(docs []*docstore.NormalizedDocument, f Filters) []*docstore.NormalizedDocument {
	var out []*docstore.NormalizedDocument
	for _, d := range docs {
		if f.Type != nil && d.Type != *f.Type {
			continue
		}
		if f.Supplier != nil && (d.Supplier == nil || *d.Supplier != *f.Supplier) {
			continue
		}
		if f.Currency != nil && (d.Currency == nil || *d.Currency != *f.Currency) {
			continue
		}
		if f.DateFrom != nil && (d.Date == nil || d.Date.Before(*f.DateFrom)) {
			continue
		}
		if f.DateTo != nil && (d.Date == nil || d.Date.After(*f.DateTo)) {
			continue
		}
		out = append(out, d)
	}
	return out
}

// collectValues gathers the non-null numeric values for field across
// docs, plus the set of distinct non-null currencies encountered.
func collectValues(docs []*docstore.NormalizedDocument, field Field) ([]decimal.Decimal, map[string]struct{}) {
	var values []decimal.Decimal
	currencies := make(map[string]struct{})
	for _, d := range docs {
		switch field {
		case FieldTotal:
			if d.Total != nil {
				values = append(values, *d.Total)
			}
		case FieldTax:
			if d.Tax != nil {
				values = append(values, *d.Tax)
			}
		case FieldLineTotal:
			for _, item := range d.Items {
				if item.LineTotal != nil {
					values = append(values, *item.LineTotal)
				}
			}
		case FieldQty:
			for _, item := range d.Items {
				if item.Quantity != nil {
					values = append(values, *item.Quantity)
				}
			}
		}
		if d.Currency != nil {
			currencies[*d.Currency] = struct{}{}
		}
	}
	return values, currencies
}

func reduce(op Op, values []decimal.Decimal) *decimal.Decimal {
	if len(values) == 0 {
		return nil
	}
	var v decimal.Decimal
	switch op {
	case OpSum:
		v = sum(values)
	case OpAvg:
		v = sum(values).Div(decimal.NewFromInt(int64(len(values))))
	case OpMedian:
		v = median(values)
	case OpMin:
		v = min(values)
	case OpMax:
		v = max(values)
	default:
		return nil
	}
	return &v
}

func sum(values []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

func median(values []decimal.Decimal) decimal.Decimal {
	sorted := sortedCopy(values)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return sorted[n/2-1].Add(sorted[n/2]).Div(decimal.NewFromInt(2))
}

func min(values []decimal.Decimal) decimal.Decimal {
	m := values[0]
	for _, v := range values[1:] {
		if v.LessThan(m) {
			m = v
		}
	}
	return m
}

func max(values []decimal.Decimal) decimal.Decimal {
	m := values[0]
	for _, v := range values[1:] {
		if v.GreaterThan(m) {
			m = v
		}
	}
	return m
}

func sortedCopy(values []decimal.Decimal) []decimal.Decimal {
	out := make([]decimal.Decimal, len(values))
	copy(out, values)
	sort.Slice(out, func(i, j int) bool { return out[i].LessThan(out[j]) })
	return out
}

// outliers applies the IQR method: values outside
// [Q1 - 1.5*IQR, Q3 + 1.5*IQR] are flagged (spec §4.11).
func outliers(values []decimal.Decimal) []decimal.Decimal {
	if len(values) < 4 {
		return nil
	}
	sorted := sortedCopy(values)
	q1 := quantile(sorted, 0.25)
	q3 := quantile(sorted, 0.75)
	iqr := q3.Sub(q1)
	lower := q1.Sub(iqr.Mul(decimal.NewFromFloat(1.5)))
	upper := q3.Add(iqr.Mul(decimal.NewFromFloat(1.5)))

	var out []decimal.Decimal
	for _, v := range sorted {
		if v.LessThan(lower) || v.GreaterThan(upper) {
			out = append(out, v)
		}
	}
	return out
}

// quantile uses linear interpolation over a pre-sorted slice.
func quantile(sorted []decimal.Decimal, q float64) decimal.Decimal {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	pos := q * float64(n-1)
	lo := int(pos)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}
	frac := decimal.NewFromFloat(pos - float64(lo))
	return sorted[lo].Add(sorted[hi].Sub(sorted[lo]).Mul(frac))
}

// DuplicateInvoiceNumbers collects canonical invoice numbers appearing
// more than once among invoice-typed documents in docs (spec §4.11).
func DuplicateInvoiceNumbers(docs []*docstore.NormalizedDocument) []string {
	return duplicateInvoiceNumbers(docs)
}

func duplicateInvoiceNumbers(docs []*docstore.NormalizedDocument) []string {
	counts := make(map[string]int)
	var order []string
	for _, d := range docs {
		if d.Type != docstore.TypeInvoice || d.InvoiceNo == nil {
			continue
		}
		if counts[*d.InvoiceNo] == 0 {
			order = append(order, *d.InvoiceNo)
		}
		counts[*d.InvoiceNo]++
	}
	var dups []string
	for _, no := range order {
		if counts[no] > 1 {
			dups = append(dups, no)
		}
	}
	return dups
}

func mixedCurrencyBreakdown(docs []*docstore.NormalizedDocument, plan Plan) map[string]decimal.Decimal {
	byCurrency := make(map[string][]*docstore.NormalizedDocument)
	for _, d := range docs {
		if d.Currency == nil {
			continue
		}
		byCurrency[*d.Currency] = append(byCurrency[*d.Currency], d)
	}
	out := make(map[string]decimal.Decimal, len(byCurrency))
	for cur, group := range byCurrency {
		values, _ := collectValues(group, plan.Field)
		if v := reduce(plan.Op, values); v != nil {
			out[cur] = *v
		}
	}
	return out
}

func aggregateGrouped(docs []*docstore.NormalizedDocument, plan Plan) (*Result, error) {
	groups := make(map[string][]*docstore.NormalizedDocument)
	for _, d := range docs {
		key := groupKey(d, plan.GroupBy)
		if key == "" {
			continue
		}
		groups[key] = append(groups[key], d)
	}

	out := make(map[string]decimal.Decimal, len(groups))
	for key, group := range groups {
		values, currencies := collectValues(group, plan.Field)
		if isCurrencyField(plan.Field) && len(currencies) > 1 {
			continue // a mixed-currency group is skipped; breakdown is not meaningful per-group
		}
		if plan.Op == OpCount {
			out[key] = decimal.NewFromInt(int64(len(group)))
			continue
		}
		if v := reduce(plan.Op, values); v != nil {
			out[key] = *v
		}
	}
	return &Result{GroupedBy: out, Count: len(docs)}, nil
}

func groupKey(d *docstore.NormalizedDocument, by GroupBy) string {
	switch by {
	case GroupByType:
		return string(d.Type)
	case GroupBySupplier:
		if d.Supplier == nil {
			return ""
		}
		return *d.Supplier
	case GroupByMonth:
		if d.Date == nil {
			return ""
		}
		return d.Date.Format("2006-01")
	case GroupByYear:
		if d.Date == nil {
			return ""
		}
		return d.Date.Format("2006")
	default:
		return ""
	}
}
