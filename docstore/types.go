// Package docstore implements the Document Store (spec §4.7): the
// process-lifetime, append-only, versioned collection of normalized
// documents and their sections. It is the exclusive owner of
// NormalizedDocument and Section values (spec §3); every other
// component holds only non-owning references (ids, query strings).
package docstore

import (
	"time"

	"github.com/shopspring/decimal"
)

// CurrentSchemaVersion is the schema_v written by this build.
const CurrentSchemaVersion = 1

// DocType is the closed document-type enum (spec §3).
type DocType string

const (
	TypeInvoice  DocType = "invoice"
	TypeQuote    DocType = "quote"
	TypeReceipt  DocType = "receipt"
	TypeWaybill  DocType = "waybill"
	TypeContract DocType = "contract"
	TypeOther    DocType = "other"
)

// ValidDocTypes enumerates the closed set; Validate rejects any other
// value (spec §9 open question: no types beyond these six).
var ValidDocTypes = map[DocType]bool{
	TypeInvoice: true, TypeQuote: true, TypeReceipt: true,
	TypeWaybill: true, TypeContract: true, TypeOther: true,
}

// RawSection is one section of an upstream-parsed document (spec §6
// RawDocument.sections).
type RawSection struct {
	ID      string `json:"id"`
	Content string `json:"content"`
	Page    *int   `json:"page,omitempty"`
	Sheet   *string `json:"sheet,omitempty"`
}

// RawDocument is the upstream ingest contract (spec §6).
type RawDocument struct {
	ID       string            `json:"id"`
	Filename string            `json:"filename"`
	FileType string            `json:"file_type"`
	Sections []RawSection      `json:"sections"`
	Metadata map[string]string `json:"metadata"`
}

// Section is one indexable unit of text (spec §3).
type Section struct {
	ID          string   `json:"id"`
	DocumentID  string   `json:"document_id"`
	Ordinal     int      `json:"ordinal"`
	Content     string   `json:"content"`
	Normalized  string   `json:"normalized"`
	Tokens      []string `json:"tokens"`
	IndexTokens []string `json:"index_tokens"`
	Trigrams    []string `json:"trigrams"`
	Page        *int     `json:"page,omitempty"`
	Sheet       *string  `json:"sheet,omitempty"`
}

// LineItem is a parsed row of a detected line-items table (spec §3).
type LineItem struct {
	Description string           `json:"description"`
	Quantity    *decimal.Decimal `json:"quantity,omitempty"`
	UnitPrice   *decimal.Decimal `json:"unit_price,omitempty"`
	LineTotal   *decimal.Decimal `json:"line_total,omitempty"`
}

// TableInfo is table metadata recorded on a NormalizedDocument (spec §3).
type TableInfo struct {
	Kind     string   `json:"kind"` // line_items | data | summary
	Header   []string `json:"header,omitempty"`
	RowCount int      `json:"row_count"`
}

// SummaryInfo is the optional summarizer output (spec §3).
type SummaryInfo struct {
	Text       string   `json:"text"`
	KeyPoints  []string `json:"key_points,omitempty"`
	Language   string   `json:"language"`
	Confidence float64  `json:"confidence"`
}

// Confidence is the classification/heuristic/semantic confidence
// record (spec §3). A negative value means "not set".
type Confidence struct {
	Classification float64 `json:"classification"`
	Heuristic      float64 `json:"heuristic"`
	Semantic       float64 `json:"semantic"`
}

// AnyBelow reports whether any populated (non-negative) confidence
// component is below the review threshold.
func (c Confidence) AnyBelow(threshold float64) bool {
	for _, v := range []float64{c.Classification, c.Heuristic, c.Semantic} {
		if v >= 0 && v < threshold {
			return true
		}
	}
	return false
}

// ProcessingLogEntry is one append-only ingest log line (spec §3).
type ProcessingLogEntry struct {
	Stage     string    `json:"stage"`
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// NormalizedDocument is the canonical, versioned, immutable record
// (spec §3). Updates never mutate a stored record; Store.Insert
// archives the predecessor and appends a new one.
type NormalizedDocument struct {
	SchemaV  int    `json:"schema_v"`
	ID       string `json:"id"`
	Filename string `json:"filename"`
	FileType string `json:"file_type"`
	Type     DocType `json:"type"`

	InvoiceNo *string          `json:"invoice_no,omitempty"`
	Date      *time.Time       `json:"date,omitempty"`
	Supplier  *string          `json:"supplier,omitempty"`
	Buyer     *string          `json:"buyer,omitempty"`
	Currency  *string          `json:"currency,omitempty"`
	Total     *decimal.Decimal `json:"total,omitempty"`
	Tax       *decimal.Decimal `json:"tax,omitempty"`
	Items     []LineItem       `json:"items,omitempty"`

	Tables  []TableInfo  `json:"tables,omitempty"`
	Summary *SummaryInfo `json:"summary,omitempty"`

	Confidence       Confidence `json:"confidence"`
	NeedsHumanReview bool       `json:"needs_human_review"`

	SourceSample   string    `json:"source_sample"`
	Embedding      []float32 `json:"embedding,omitempty"`
	EmbeddingModel string    `json:"embedding_model,omitempty"`

	ProcessingLog []ProcessingLogEntry `json:"processing_log,omitempty"`

	Archived   bool       `json:"archived"`
	ArchivedAt *time.Time `json:"archived_at,omitempty"`

	Sections []Section `json:"sections"`
}

// DeriveReviewFlag sets NeedsHumanReview per spec §3: true whenever
// type=invoice and total is null, or any set confidence component is
// below 0.6. Canonicalizer calls this as the last step before storing.
func (d *NormalizedDocument) DeriveReviewFlag() {
	missingTotal := d.Type == TypeInvoice && d.Total == nil
	d.NeedsHumanReview = missingTotal || d.Confidence.AnyBelow(0.6)
}
