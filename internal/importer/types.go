// Package importer provides the reference-data import pipeline for the
// FDA Orange Book feeds. It parses the tilde-delimited patent listing and
// the bundled use-code definition set into natural-key-addressed records
// and upserts them through a per-run persistence session.
//
// The package has no HTTP or UI dependencies; callers hand in feed content
// and receive a Result.
package importer

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// PatentKey is the natural key of a patent listing row. Re-importing a row
// with the same key must update the existing record, never create a second one.
type PatentKey struct {
	ApplType  string
	ApplNo    string
	ProductNo string
	PatentNo  string
}

// ProductKey is the natural key of a product record. Products are owned by a
// separate import; this pipeline only resolves them for foreign-key linkage.
type ProductKey struct {
	ApplType  string
	ApplNo    string
	ProductNo string
}

// Patent is one normalized row of the patent listing feed.
// Optional fields use pgtype null-aware values so a blank input stores SQL
// NULL rather than an empty string or zero date.
type Patent struct {
	ApplType       string
	ApplNo         string
	ProductNo      string
	PatentNo       string
	ExpireDate     pgtype.Date
	DrugSubstance  bool
	DrugProduct    bool
	UseCode        pgtype.Text
	Delist         bool
	SubmissionDate pgtype.Date

	// ProductID is the surrogate id of the matching product, or NULL when
	// no product matched the key (the row still imports, counted unlinked).
	ProductID pgtype.Int8
}

// Key returns the patent's natural key.
func (p *Patent) Key() PatentKey {
	return PatentKey{
		ApplType:  p.ApplType,
		ApplNo:    p.ApplNo,
		ProductNo: p.ProductNo,
		PatentNo:  p.PatentNo,
	}
}

// UseCodeDefinition is one entry of the bundled use-code reference set,
// keyed by its code string.
type UseCodeDefinition struct {
	Code       string
	Definition pgtype.Text
}

// Session is one run's scoped view of the store. All writes are batched in
// the session and become durable only on Commit; Rollback discards them.
// Lookups must observe the session's own uncommitted writes so that a
// duplicate key later in the same run updates the earlier row (last-row-wins).
type Session interface {
	FindProductID(ctx context.Context, key ProductKey) (int64, bool, error)

	FindPatentID(ctx context.Context, key PatentKey) (int64, bool, error)
	InsertPatent(ctx context.Context, p *Patent) error
	UpdatePatent(ctx context.Context, id int64, p *Patent) error

	FindUseCodeID(ctx context.Context, code string) (int64, bool, error)
	InsertUseCode(ctx context.Context, u *UseCodeDefinition) error
	UpdateUseCode(ctx context.Context, id int64, u *UseCodeDefinition) error

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// SessionFactory opens a fresh Session per import run. Sessions are never
// reused across runs.
type SessionFactory interface {
	Begin(ctx context.Context) (Session, error)
}

// Result aggregates the outcome of one import run. The caller constructs it,
// the pipeline mutates it during the run, and it is read-only afterward.
type Result struct {
	RunID uuid.UUID

	Created   int // records inserted for a previously unseen natural key
	Updated   int // records overwritten in place for an existing key
	Linked    int // rows whose product reference resolved
	Unlinked  int // rows imported with a NULL product reference
	Malformed int // lines dropped for a wrong column count

	// Errors holds one formatted message per row that failed normalization
	// or persistence, in input order. Row errors do not affect Success.
	Errors []string

	// Success is true when the run committed. False means nothing durable
	// happened and the whole run should be retried.
	Success bool
}

// NewResult returns an empty result with a fresh run id.
func NewResult() *Result {
	return &Result{RunID: uuid.New()}
}

// addRowError records a recoverable per-row failure with its source
// reference and the full cause chain.
func (r *Result) addRowError(ref string, err error) {
	r.Errors = append(r.Errors, ref+": "+ErrorChain(err))
}
