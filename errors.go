package docqa

import "errors"

// Root-level sentinels for the error kinds of spec §7 that are not
// already owned by a leaf package: SchemaInvalid lives in
// docstore.ErrSchemaInvalid, MixedCurrency in
// aggregate.ErrMixedCurrency, ExternalTimeout/ExternalUnavailable in
// llm.ErrTimeout/llm.ErrUnavailable. ExtractionPartial is never an
// error value — it is reported as a line of IngestResult.ProcessingLog.
var (
	// ErrInvalidInput is returned for a malformed RawDocument or query.
	ErrInvalidInput = errors.New("docqa: invalid input")

	// ErrStoreConflict marks a concurrent supersession. It is
	// serialized behind the store's write lock and should never
	// surface to a caller; its presence here is for completeness
	// with spec §7's error-kind vocabulary.
	ErrStoreConflict = errors.New("docqa: store conflict")

	// ErrFatal marks an invariant violation or corrupted persistence.
	// Unlike every other kind, it is surfaced to the operator and the
	// engine halts rather than falling back.
	ErrFatal = errors.New("docqa: fatal invariant violation")

	// ErrDocumentNotFound is returned when a filename or document id
	// lookup has no match.
	ErrDocumentNotFound = errors.New("docqa: document not found")
)
