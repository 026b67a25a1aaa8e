package canon

import "strings"

// keyMap maps raw upstream metadata/header keys (Turkish and English
// variants, as seen in invoice templates) onto NormalizedDocument
// fields (spec §4.5).
var keyMap = map[string]string{
	"FATURA_NO":      "invoice_no",
	"FATURA NO":      "invoice_no",
	"INVOICE_NO":     "invoice_no",
	"INVOICE NO":     "invoice_no",
	"INVOICE_NUMBER": "invoice_no",
	"TARIH":          "date",
	"TARİH":          "date",
	"DATE":           "date",
	"SATICI":         "supplier",
	"SUPPLIER":       "supplier",
	"FIRMA":          "supplier",
	"ALICI":          "buyer",
	"MUSTERI":        "buyer",
	"MÜŞTERİ":        "buyer",
	"CUSTOMER":       "buyer",
	"BUYER":          "buyer",
	"PARA_BIRIMI":    "currency",
	"CURRENCY":       "currency",
	"TOPLAM_TUTAR":   "total",
	"TOPLAM TUTAR":   "total",
	"GENEL_TOPLAM":   "total",
	"TOTAL":          "total",
	"KDV":            "tax",
	"KDV_TUTARI":     "tax",
	"TAX":            "tax",
	"VAT":            "tax",
}

// canonicalKey resolves a raw key to its canonical field name, or ""
// if unrecognized.
func canonicalKey(raw string) string {
	norm := strings.ToUpper(strings.TrimSpace(raw))
	if field, ok := keyMap[norm]; ok {
		return field
	}
	return ""
}

// ocrCorrections is a fixed table of common OCR misreads of Turkish
// invoice field labels, applied before key-mapping.
var ocrCorrections = map[string]string{
	"KVÐ":     "KDV",
	"T0PLAM":  "TOPLAM",
	"FATUR4":  "FATURA",
	"ALIC1":   "ALICI",
	"SAT1C1":  "SATICI",
}

// correctOCR applies the fixed OCR-correction map to a raw key or
// value token before further processing.
func correctOCR(s string) string {
	upper := strings.ToUpper(strings.TrimSpace(s))
	if fixed, ok := ocrCorrections[upper]; ok {
		return fixed
	}
	return s
}
