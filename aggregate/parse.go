package aggregate

import (
	"strconv"
	"strings"
	"time"

	"docqa/docstore"
	"docqa/normalize"
)

// opPhrases maps normalized query tokens to reduction operations. Order
// matters only within a tie; the first match wins.
var opPhrases = map[string]Op{
	"toplam": OpSum, "topla": OpSum, "sum": OpSum, "total": OpSum,

	"ortalama": OpAvg, "average": OpAvg, "avg": OpAvg, "mean": OpAvg,

	"medyan": OpMedian, "median": OpMedian,

	"kac": OpCount, "kaç": OpCount, "sayisi": OpCount, "sayısı": OpCount,
	"adet": OpCount, "count": OpCount, "how": OpCount,

	"en dusuk": OpMin, "en düşük": OpMin, "minimum": OpMin, "min": OpMin, "ucuz": OpMin,

	"en yuksek": OpMax, "en yüksek": OpMax, "en buyuk": OpMax, "en büyük": OpMax,
	"maximum": OpMax, "max": OpMax, "pahali": OpMax, "pahalı": OpMax,
}

var fieldPhrases = map[string]Field{
	"vergi": FieldTax, "kdv": FieldTax, "tax": FieldTax,
	"miktar": FieldQty, "adet": FieldQty, "qty": FieldQty, "quantity": FieldQty,
	"kalem": FieldLineTotal, "satir": FieldLineTotal, "satır": FieldLineTotal, "line": FieldLineTotal,
	"toplam": FieldTotal, "tutar": FieldTotal, "total": FieldTotal,
}

var typePhrases = map[string]docstore.DocType{
	"fatura": docstore.TypeInvoice, "faturalar": docstore.TypeInvoice, "invoice": docstore.TypeInvoice,
	"teklif": docstore.TypeQuote, "quote": docstore.TypeQuote,
	"fis": docstore.TypeReceipt, "fiş": docstore.TypeReceipt, "receipt": docstore.TypeReceipt,
	"irsaliye": docstore.TypeWaybill, "waybill": docstore.TypeWaybill,
	"sozlesme": docstore.TypeContract, "sözleşme": docstore.TypeContract, "contract": docstore.TypeContract,
}

var groupByPhrases = map[string]GroupBy{
	"tur": GroupByType, "türe": GroupByType, "type": GroupByType,
	"tedarikci": GroupBySupplier, "tedarikçi": GroupBySupplier, "supplier": GroupBySupplier,
	"ay": GroupByMonth, "aya": GroupByMonth, "month": GroupByMonth,
	"yil": GroupByYear, "yıl": GroupByYear, "yila": GroupByYear, "year": GroupByYear,
}

// ParseQuery attempts to read an aggregation plan from a free-text
// query (spec §4.11's "small NL template parser, not a full grammar").
// The second return is false when no operation phrase was recognized,
// meaning the caller should fall back to the generic document path.
func ParseQuery(query string, now time.Time) (*Plan, bool) {
	norm := normalize.Normalize(query)
	tokens := normalize.Tokens(norm)
	if len(tokens) == 0 {
		return nil, false
	}
	tokenSet := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		tokenSet[t] = struct{}{}
	}

	op, ok := matchPhrase(tokenSet, opPhrases)
	if !ok {
		return nil, false
	}

	field := FieldTotal
	if f, ok := matchPhrase(tokenSet, fieldPhrases); ok {
		field = f
	}

	plan := &Plan{Op: op, Field: field}

	if t, ok := matchTypePhrase(tokenSet); ok {
		plan.Filters.Type = &t
	}
	if g, ok := matchPhrase(tokenSet, groupByPhrases); ok {
		plan.GroupBy = g
	}
	if from, to, ok := dateRange(tokenSet, now); ok {
		plan.Filters.DateFrom = &from
		plan.Filters.DateTo = &to
	}

	return plan, true
}

func matchPhrase[V any](tokenSet map[string]struct{}, table map[string]V) (V, bool) {
	for phrase, v := range table {
		parts := strings.Fields(phrase)
		if len(parts) == 1 {
			if _, ok := tokenSet[phrase]; ok {
				return v, true
			}
			continue
		}
		all := true
		for _, p := range parts {
			if _, ok := tokenSet[p]; !ok {
				all = false
				break
			}
		}
		if all {
			return v, true
		}
	}
	var zero V
	return zero, false
}

func matchTypePhrase(tokenSet map[string]struct{}) (docstore.DocType, bool) {
	return matchPhrase(tokenSet, typePhrases)
}

// dateRange recognizes "bu ay" (this month), "gecen ay" (last month),
// and a bare four-digit year between 1900 and 2100. English phrases
// such as "this month" are not recognized.
func dateRange(tokenSet map[string]struct{}, now time.Time) (time.Time, time.Time, bool) {
	if _, thisMonth := tokenSet["ay"]; thisMonth {
		if _, bu := tokenSet["bu"]; bu {
			return monthBounds(now.Year(), int(now.Month()))
		}
		if _, gecen := tokenSet["gecen"]; gecen {
			y, m := now.Year(), int(now.Month())-1
			if m == 0 {
				m = 12
				y--
			}
			return monthBounds(y, m)
		}
	}
	for tok := range tokenSet {
		if len(tok) == 4 {
			if y, err := strconv.Atoi(tok); err == nil && y >= 1900 && y <= 2100 {
				from := time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC)
				to := time.Date(y, time.December, 31, 23, 59, 59, 0, time.UTC)
				return from, to, true
			}
		}
	}
	return time.Time{}, time.Time{}, false
}

func monthBounds(year, month int) (time.Time, time.Time, bool) {
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return from, to, true
}
