package importer

import (
	"context"
	"fmt"
	"time"

	"github.com/pharmadb/obimport/internal/logging"
)

// Importer runs feed imports against a store. One Importer may serve many
// runs; each run gets its own Session from the factory.
type Importer struct {
	sessions SessionFactory
}

// New returns an Importer backed by the given session factory.
func New(sessions SessionFactory) *Importer {
	return &Importer{sessions: sessions}
}

// feedEntry is one ordered unit of work within a run: a source reference for
// diagnostics plus the normalize-and-upsert step for that row.
type feedEntry struct {
	ref   string
	apply func(ctx context.Context, sess Session, res *Result) error
}

// runFeed drives one import run: open a session, apply entries in order with
// a cancellation check at every row boundary, then commit the whole batch.
//
// A failing entry is recorded on the result and the run continues; only a
// session that cannot be opened, a cancellation, or a failing commit aborts
// the run. On any abort the deferred rollback discards the batch, so no
// partial import is ever visible.
func (imp *Importer) runFeed(ctx context.Context, feedName string, entries []feedEntry, res *Result) error {
	log := logging.WithFields(ctx, "run_id", res.RunID.String(), "feed", feedName)
	log.Info("import started", "rows", len(entries))
	start := time.Now()

	sess, err := imp.sessions.Begin(ctx)
	if err != nil {
		res.Success = false
		return fmt.Errorf("open import session: %w", err)
	}
	defer sess.Rollback(ctx) // no-op once committed

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			res.Success = false
			return fmt.Errorf("import cancelled at %s: %w", e.ref, err)
		}

		if err := e.apply(ctx, sess, res); err != nil {
			res.addRowError(e.ref, err)
			log.Warn("row skipped", "ref", e.ref, "error", err)
		}
	}

	if err := sess.Commit(ctx); err != nil {
		res.Success = false
		return fmt.Errorf("commit import batch: %w", err)
	}

	res.Success = true
	log.Info("import finished",
		"created", res.Created,
		"updated", res.Updated,
		"linked", res.Linked,
		"unlinked", res.Unlinked,
		"malformed", res.Malformed,
		"row_errors", len(res.Errors),
		"duration", time.Since(start),
	)
	return nil
}
