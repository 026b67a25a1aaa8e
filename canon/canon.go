// Package canon implements the Canonicalizer (spec §4.5): maps a raw
// parsed document, its classification, and its extractor outputs into
// a fully populated, validated docstore.NormalizedDocument.
package canon

import (
	"fmt"
	"strings"
	"time"

	"docqa/classify"
	"docqa/docstore"
	"docqa/extract"
	"docqa/tableextract"
)

// sourceSampleMaxChars bounds how much of the first non-empty section
// feeds into source_sample (spec §4.5).
const sourceSampleMaxChars = 200

// Input bundles everything the Canonicalizer needs: the raw document,
// the classifier's verdict, and the deterministic extractor outputs
// gathered over all sections.
type Input struct {
	Raw        docstore.RawDocument
	Class      classify.Result
	Amounts    []extract.Amount
	Dates      []extract.Date
	IDs        []extract.ID
	TableItems tableextract.Result
}

// Canonicalize produces a NormalizedDocument from in. Validation runs
// last; a failure is returned as docstore.ErrSchemaInvalid and the
// caller must reject ingest (spec §4.5).
func Canonicalize(in Input) (*docstore.NormalizedDocument, error) {
	doc := &docstore.NormalizedDocument{
		SchemaV:  docstore.CurrentSchemaVersion,
		ID:       in.Raw.ID,
		Filename: in.Raw.Filename,
		FileType: in.Raw.FileType,
		Type:     in.Class.Type,
		Confidence: docstore.Confidence{
			Classification: in.Class.Confidence,
			Heuristic:      in.Class.HeuristicScore,
			Semantic:       in.Class.SemanticScore,
		},
	}

	applyMetadata(doc, in.Raw.Metadata)
	applyExtractedFields(doc, in)
	doc.Tables = in.TableItems.Tables
	if len(doc.Items) == 0 {
		doc.Items = in.TableItems.Items
	}
	doc.Sections = buildSections(in.Raw)
	doc.SourceSample = buildSourceSample(doc, in.Raw)

	doc.DeriveReviewFlag()
	if err := docstore.Validate(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// applyMetadata walks the raw metadata map through the OCR-correction
// and key-map tables, populating the invoice-shaped fields that come
// directly from structured metadata (as opposed to free text).
func applyMetadata(doc *docstore.NormalizedDocument, meta map[string]string) {
	for rawKey, rawVal := range meta {
		key := correctOCR(rawKey)
		field := canonicalKey(key)
		if field == "" {
			continue
		}
		val := correctOCR(rawVal)
		setField(doc, field, val)
	}
}

func setField(doc *docstore.NormalizedDocument, field, val string) {
	val = strings.TrimSpace(val)
	if val == "" {
		return
	}
	switch field {
	case "invoice_no":
		canon := extract.Canonicalize(val)
		doc.InvoiceNo = &canon
	case "supplier":
		doc.Supplier = &val
	case "buyer":
		doc.Buyer = &val
	case "currency":
		if code := normalizeCurrency(val); code != "" {
			doc.Currency = &code
		}
	case "date":
		if t, ok := parseMetadataDate(val); ok {
			doc.Date = &t
		}
	case "total":
		if d, err := extract.ParseNumber(val); err == nil {
			doc.Total = &d
		}
	case "tax":
		if d, err := extract.ParseNumber(val); err == nil {
			doc.Tax = &d
		}
	}
}

// applyExtractedFields fills any invoice-shaped field still unset from
// metadata using the deterministic extractor outputs: strongest-
// confidence amount as total, first date as the document date, first
// invoice id as invoice_no.
func applyExtractedFields(doc *docstore.NormalizedDocument, in Input) {
	if doc.InvoiceNo == nil && len(in.IDs) > 0 {
		doc.InvoiceNo = &in.IDs[0].Canonical
	}
	if doc.Date == nil && len(in.Dates) > 0 {
		d := in.Dates[0].Value
		doc.Date = &d
	}
	if doc.Total == nil || doc.Currency == nil {
		if best, ok := strongestAmount(in.Amounts); ok {
			if doc.Total == nil {
				doc.Total = &best.Value
			}
			if doc.Currency == nil && best.Currency != "" {
				c := best.Currency
				doc.Currency = &c
			}
		}
	}
}

func strongestAmount(amounts []extract.Amount) (extract.Amount, bool) {
	var best extract.Amount
	found := false
	for _, a := range amounts {
		if !found || a.Confidence > best.Confidence {
			best = a
			found = true
		}
	}
	return best, found
}

// normalizeCurrency maps a free-text currency token to its ISO 4217
// code, or "" if unrecognized.
func normalizeCurrency(raw string) string {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "TL", "TL.", "TRY", "₺":
		return "TRY"
	case "USD", "$":
		return "USD"
	case "EUR", "EURO", "€":
		return "EUR"
	case "GBP", "£":
		return "GBP"
	default:
		return ""
	}
}

// parseMetadataDate accepts the same date shapes as the Numeric
// Extractor when the value arrives as a bare metadata string rather
// than embedded in free text.
func parseMetadataDate(raw string) (time.Time, bool) {
	dates := extract.ExtractDates("", raw)
	if len(dates) == 0 {
		return time.Time{}, false
	}
	return dates[0].Value, true
}

func buildSections(raw docstore.RawDocument) []docstore.Section {
	sections := make([]docstore.Section, 0, len(raw.Sections))
	for i, rs := range raw.Sections {
		sections = append(sections, sectionFrom(raw.ID, i, rs))
	}
	return sections
}

func buildSourceSample(doc *docstore.NormalizedDocument, raw docstore.RawDocument) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s)", doc.Filename, doc.Type)
	if doc.InvoiceNo != nil {
		fmt.Fprintf(&b, " no:%s", *doc.InvoiceNo)
	}
	if doc.Total != nil {
		cur := ""
		if doc.Currency != nil {
			cur = " " + *doc.Currency
		}
		fmt.Fprintf(&b, " total:%s%s", doc.Total.String(), cur)
	}
	for _, sec := range raw.Sections {
		if strings.TrimSpace(sec.Content) == "" {
			continue
		}
		excerpt := sec.Content
		if len(excerpt) > sourceSampleMaxChars {
			excerpt = excerpt[:sourceSampleMaxChars]
		}
		b.WriteString(". ")
		b.WriteString(excerpt)
		break
	}
	return b.String()
}
