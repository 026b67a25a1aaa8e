// Package tableextract implements the Table Extractor (spec §4.3):
// detecting tabular regions inside a raw document's sections and
// emitting line-items for tables that look like invoice line-item
// tables.
package tableextract

import (
	"strings"
	"unicode"

	"docqa/docstore"
	"docqa/extract"

	"github.com/shopspring/decimal"
)

var (
	descriptionWords = []string{"description", "açıklama", "aciklama"}
	qtyWords         = []string{"qty", "miktar", "adet", "quantity"}
	unitPriceWords   = []string{"unit_price", "unit price", "birim fiyat", "birim_fiyat", "birimfiyat"}
	totalWords       = []string{"total", "tutar", "line_total", "toplam"}

	separators = []rune{'\t', '|', ','}
)

// Result is the output of Extract: detected table metadata plus the
// flattened line items recovered from line_items-classified tables.
type Result struct {
	Tables []docstore.TableInfo
	Items  []docstore.LineItem
}

// Extract detects table regions in doc and classifies each one. PDF
// inputs are out of scope per spec §4.3 and always yield an empty
// Result.
func Extract(doc docstore.RawDocument) Result {
	if strings.EqualFold(doc.FileType, "pdf") {
		return Result{}
	}

	var result Result
	runs := groupRuns(doc.Sections)
	for _, run := range runs {
		rows, sep := rowsOf(run)
		if len(rows) == 0 {
			continue
		}
		header, headerFound := inferHeader(rows[0], sep)
		kind := classify(header, headerFound)

		table := docstore.TableInfo{Kind: kind, RowCount: len(rows)}
		if headerFound {
			table.Header = header
			if len(rows) > 0 {
				table.RowCount = len(rows) - 1
			}
		}
		result.Tables = append(result.Tables, table)

		if kind == "line_items" && headerFound {
			dataRows := rows[1:]
			result.Items = append(result.Items, toLineItems(header, dataRows, sep)...)
		}
	}
	return result
}

// looksTabular reports whether content shows a repeated column
// separator across its lines.
func looksTabular(content string) bool {
	for _, sep := range separators {
		lines := strings.Split(content, "\n")
		tabularLines := 0
		for _, l := range lines {
			if strings.Count(l, string(sep)) >= 2 {
				tabularLines++
			}
		}
		if tabularLines >= 1 && len(lines) > 0 {
			return true
		}
	}
	return false
}

// groupRuns collects contiguous sections that form one table region:
// either sections whose content is separator-tabular, or sections
// sharing the same non-nil Sheet label (spreadsheet row sequences).
func groupRuns(sections []docstore.RawSection) [][]docstore.RawSection {
	var runs [][]docstore.RawSection
	var current []docstore.RawSection
	var currentSheet *string

	flush := func() {
		if len(current) > 0 {
			runs = append(runs, current)
			current = nil
		}
		currentSheet = nil
	}

	for _, sec := range sections {
		sameSheet := sec.Sheet != nil && currentSheet != nil && *sec.Sheet == *currentSheet
		tabular := looksTabular(sec.Content)
		switch {
		case sameSheet:
			current = append(current, sec)
		case tabular:
			if len(current) > 0 && !sameSheet && currentSheet != nil {
				flush()
			}
			current = append(current, sec)
			currentSheet = sec.Sheet
		default:
			flush()
		}
	}
	flush()
	return runs
}

// rowsOf splits a run's sections into rows of cells, selecting the
// separator that yields the most consistent multi-cell split.
func rowsOf(run []docstore.RawSection) ([][]string, rune) {
	best := rune(0)
	bestCols := 0
	for _, sep := range separators {
		cols := 0
		for _, sec := range run {
			for _, line := range strings.Split(sec.Content, "\n") {
				if c := strings.Count(line, string(sep)); c > cols {
					cols = c
				}
			}
		}
		if cols > bestCols {
			bestCols = cols
			best = sep
		}
	}
	if best == 0 {
		// spreadsheet-row run with no explicit delimiter: one cell per line.
		var rows [][]string
		for _, sec := range run {
			for _, line := range strings.Split(sec.Content, "\n") {
				line = strings.TrimSpace(line)
				if line != "" {
					rows = append(rows, []string{line})
				}
			}
		}
		return rows, 0
	}
	var rows [][]string
	for _, sec := range run {
		for _, line := range strings.Split(sec.Content, "\n") {
			if strings.TrimSpace(line) == "" {
				continue
			}
			cells := strings.Split(line, string(best))
			for i, c := range cells {
				cells[i] = strings.TrimSpace(c)
			}
			rows = append(rows, cells)
		}
	}
	return rows, best
}

// inferHeader reports whether the first row looks like a header: cells
// mostly non-numeric and distinct.
func inferHeader(row []string, _ rune) ([]string, bool) {
	if len(row) < 1 {
		return nil, false
	}
	seen := make(map[string]bool, len(row))
	nonNumeric := 0
	for _, cell := range row {
		key := strings.ToLower(strings.TrimSpace(cell))
		if key != "" {
			seen[key] = true
		}
		if !isMostlyNumeric(cell) {
			nonNumeric++
		}
	}
	if len(seen) < len(row) {
		return nil, false // not distinct
	}
	if float64(nonNumeric) < float64(len(row))*0.5 {
		return nil, false
	}
	return row, true
}

func isMostlyNumeric(s string) bool {
	digits, other := 0, 0
	for _, r := range s {
		switch {
		case unicode.IsDigit(r):
			digits++
		case unicode.IsSpace(r), r == '.', r == ',', r == '-':
			// neutral punctuation
		default:
			other++
		}
	}
	return digits > 0 && other == 0
}

// classify assigns a table kind per spec §4.3.
func classify(header []string, headerFound bool) string {
	if !headerFound {
		return "summary"
	}
	for _, cell := range header {
		norm := strings.ToLower(strings.TrimSpace(cell))
		if matchesAny(norm, descriptionWords) || matchesAny(norm, qtyWords) ||
			matchesAny(norm, unitPriceWords) || matchesAny(norm, totalWords) {
			return "line_items"
		}
	}
	return "data"
}

func matchesAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// toLineItems maps header semantics to {description, qty, unit_price,
// line_total} and parses numeric cells via the Numeric Extractor.
func toLineItems(header []string, dataRows [][]string, _ rune) []docstore.LineItem {
	descIdx, qtyIdx, priceIdx, totalIdx := -1, -1, -1, -1
	for i, cell := range header {
		norm := strings.ToLower(strings.TrimSpace(cell))
		switch {
		case descIdx < 0 && matchesAny(norm, descriptionWords):
			descIdx = i
		case qtyIdx < 0 && matchesAny(norm, qtyWords):
			qtyIdx = i
		case priceIdx < 0 && matchesAny(norm, unitPriceWords):
			priceIdx = i
		case totalIdx < 0 && matchesAny(norm, totalWords):
			totalIdx = i
		}
	}

	cellAt := func(row []string, idx int) string {
		if idx < 0 || idx >= len(row) {
			return ""
		}
		return row[idx]
	}
	parseDec := func(raw string) *decimal.Decimal {
		if strings.TrimSpace(raw) == "" {
			return nil
		}
		v, err := extract.ParseNumber(raw)
		if err != nil {
			return nil
		}
		return &v
	}

	items := make([]docstore.LineItem, 0, len(dataRows))
	for _, row := range dataRows {
		item := docstore.LineItem{Description: cellAt(row, descIdx)}
		item.Quantity = parseDec(cellAt(row, qtyIdx))
		item.UnitPrice = parseDec(cellAt(row, priceIdx))
		item.LineTotal = parseDec(cellAt(row, totalIdx))
		if item.Description != "" || item.Quantity != nil || item.UnitPrice != nil || item.LineTotal != nil {
			items = append(items, item)
		}
	}
	return items
}
