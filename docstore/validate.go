package docstore

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrSchemaInvalid is returned when a NormalizedDocument fails the
// invariants of spec §3; ingest that produces one is rejected.
var ErrSchemaInvalid = errors.New("docstore: schema invalid")

var currencyCodePattern = regexp.MustCompile(`^[A-Z]{3}$`)

// Validate checks the invariants spec §3 and §8 require of every
// stored NormalizedDocument. It does not mutate the document; callers
// should call DeriveReviewFlag first.
func Validate(d *NormalizedDocument) error {
	if d.SchemaV != CurrentSchemaVersion {
		return fmt.Errorf("%w: schema_v = %d, want %d", ErrSchemaInvalid, d.SchemaV, CurrentSchemaVersion)
	}
	if d.Confidence.Classification < 0 || d.Confidence.Classification > 1 {
		return fmt.Errorf("%w: confidence.classification not set or out of range: %v", ErrSchemaInvalid, d.Confidence.Classification)
	}
	if !ValidDocTypes[d.Type] {
		return fmt.Errorf("%w: unknown document type %q", ErrSchemaInvalid, d.Type)
	}
	if d.ID == "" {
		return fmt.Errorf("%w: missing id", ErrSchemaInvalid)
	}
	if d.Currency != nil && !currencyCodePattern.MatchString(*d.Currency) {
		return fmt.Errorf("%w: currency %q is not a 3-letter ISO code", ErrSchemaInvalid, *d.Currency)
	}
	if d.Date != nil {
		h, m, s := d.Date.Clock()
		if h != 0 || m != 0 || s != 0 || d.Date.Nanosecond() != 0 {
			return fmt.Errorf("%w: date is not UTC midnight", ErrSchemaInvalid)
		}
	}
	return nil
}
