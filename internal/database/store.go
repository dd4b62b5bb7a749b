// Package database implements the importer's persistence interfaces on
// PostgreSQL via pgx. Each import run gets one transaction-backed session;
// nothing is durable until the session commits.
//
// Tables: products (owned by the product import, read-only here),
// patents, and use_code_definitions, each addressed by its natural key.
package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pharmadb/obimport/internal/importer"
)

// Store opens per-run sessions against a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wraps a connection pool. The pool is shared; sessions are not.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Begin opens a fresh session for one import run. The session owns a
// transaction for the run's whole batch and must be finished with Commit
// or Rollback.
func (s *Store) Begin(ctx context.Context) (importer.Session, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	return &pgSession{tx: tx}, nil
}

// pgSession is one run's transaction. Writes go through execIsolated so a
// rejected statement rolls back to its savepoint instead of poisoning the
// whole transaction (PostgreSQL aborts a transaction on any statement error).
type pgSession struct {
	tx pgx.Tx
	sp int
}

var _ importer.Session = (*pgSession)(nil)

func (s *pgSession) FindProductID(ctx context.Context, key importer.ProductKey) (int64, bool, error) {
	const q = `
		SELECT id FROM products
		WHERE appl_type = $1 AND appl_no = $2 AND product_no = $3
	`
	var id int64
	err := s.tx.QueryRow(ctx, q, key.ApplType, key.ApplNo, key.ProductNo).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("query product by key: %w", err)
	}
	return id, true, nil
}

func (s *pgSession) FindPatentID(ctx context.Context, key importer.PatentKey) (int64, bool, error) {
	const q = `
		SELECT id FROM patents
		WHERE appl_type = $1 AND appl_no = $2 AND product_no = $3 AND patent_no = $4
	`
	var id int64
	err := s.tx.QueryRow(ctx, q, key.ApplType, key.ApplNo, key.ProductNo, key.PatentNo).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("query patent by key: %w", err)
	}
	return id, true, nil
}

func (s *pgSession) InsertPatent(ctx context.Context, p *importer.Patent) error {
	const q = `
		INSERT INTO patents (
			appl_type, appl_no, product_no, patent_no,
			expire_date, drug_substance, drug_product,
			use_code, delist, submission_date, product_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	return s.execIsolated(ctx, q,
		p.ApplType, p.ApplNo, p.ProductNo, p.PatentNo,
		p.ExpireDate, p.DrugSubstance, p.DrugProduct,
		p.UseCode, p.Delist, p.SubmissionDate, p.ProductID,
	)
}

func (s *pgSession) UpdatePatent(ctx context.Context, id int64, p *importer.Patent) error {
	// Only the mutable payload changes; the surrogate id and key stay put.
	const q = `
		UPDATE patents
		SET expire_date = $2, drug_substance = $3, drug_product = $4,
		    use_code = $5, delist = $6, submission_date = $7, product_id = $8
		WHERE id = $1
	`
	return s.execIsolated(ctx, q,
		id,
		p.ExpireDate, p.DrugSubstance, p.DrugProduct,
		p.UseCode, p.Delist, p.SubmissionDate, p.ProductID,
	)
}

func (s *pgSession) FindUseCodeID(ctx context.Context, code string) (int64, bool, error) {
	const q = `SELECT id FROM use_code_definitions WHERE code = $1`
	var id int64
	err := s.tx.QueryRow(ctx, q, code).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("query use code: %w", err)
	}
	return id, true, nil
}

func (s *pgSession) InsertUseCode(ctx context.Context, u *importer.UseCodeDefinition) error {
	const q = `INSERT INTO use_code_definitions (code, definition) VALUES ($1, $2)`
	return s.execIsolated(ctx, q, u.Code, u.Definition)
}

func (s *pgSession) UpdateUseCode(ctx context.Context, id int64, u *importer.UseCodeDefinition) error {
	const q = `UPDATE use_code_definitions SET definition = $2 WHERE id = $1`
	return s.execIsolated(ctx, q, id, u.Definition)
}

func (s *pgSession) Commit(ctx context.Context) error {
	return s.tx.Commit(ctx)
}

func (s *pgSession) Rollback(ctx context.Context) error {
	err := s.tx.Rollback(ctx)
	if errors.Is(err, pgx.ErrTxClosed) {
		// Already committed or rolled back.
		return nil
	}
	return err
}

// execIsolated runs a statement inside its own savepoint. On failure the
// savepoint is rolled back and the original error returned, leaving the
// enclosing transaction usable for the remaining rows.
func (s *pgSession) execIsolated(ctx context.Context, sql string, args ...any) error {
	s.sp++
	name := fmt.Sprintf("sp_%d", s.sp)

	if _, err := s.tx.Exec(ctx, "SAVEPOINT "+name); err != nil {
		return fmt.Errorf("create savepoint: %w", err)
	}

	if _, err := s.tx.Exec(ctx, sql, args...); err != nil {
		if _, rbErr := s.tx.Exec(ctx, "ROLLBACK TO SAVEPOINT "+name); rbErr != nil {
			return fmt.Errorf("rollback savepoint after %v: %w", err, rbErr)
		}
		return err
	}

	if _, err := s.tx.Exec(ctx, "RELEASE SAVEPOINT "+name); err != nil {
		return fmt.Errorf("release savepoint: %w", err)
	}
	return nil
}
