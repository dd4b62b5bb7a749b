package importer

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
)

// Column layout of the patent listing feed. The extract is tilde-delimited
// with exactly these ten columns, in this order.
const (
	colApplType = iota
	colApplNo
	colProductNo
	colPatentNo
	colExpireDate
	colDrugSubstance
	colDrugProduct
	colUseCode
	colDelist
	colSubmissionDate

	patentColumnCount
)

// ImportPatents runs the patent listing feed through the pipeline: parse,
// normalize, resolve the product reference, and upsert by natural key.
// Row-level failures are recorded on res and the run continues; the returned
// error is non-nil only for a fatal failure (session, cancellation, commit),
// in which case nothing was committed.
func (imp *Importer) ImportPatents(ctx context.Context, content string, res *Result) error {
	rows := parseRows(content, patentColumnCount, res)

	entries := make([]feedEntry, len(rows))
	for i, row := range rows {
		fields := row.Fields
		entries[i] = feedEntry{
			ref: fmt.Sprintf("line %d", row.Line),
			apply: func(ctx context.Context, sess Session, res *Result) error {
				return upsertPatentRow(ctx, sess, fields, res)
			},
		}
	}

	return imp.runFeed(ctx, "patents", entries, res)
}

// buildPatent normalizes one raw row into a Patent. Key fields and the
// expiration date are mandatory; the submission date and use code are
// nullable.
func buildPatent(fields []string) (*Patent, error) {
	p := &Patent{}

	var err error
	if p.ApplType, err = requireText("appl_type", fields[colApplType]); err != nil {
		return nil, err
	}
	if p.ApplNo, err = requireText("appl_no", fields[colApplNo]); err != nil {
		return nil, err
	}
	if p.ProductNo, err = requireText("product_no", fields[colProductNo]); err != nil {
		return nil, err
	}
	if p.PatentNo, err = requireText("patent_no", fields[colPatentNo]); err != nil {
		return nil, err
	}
	if p.ExpireDate, err = requireDate("patent_expire_date", fields[colExpireDate]); err != nil {
		return nil, err
	}

	p.DrugSubstance = ParseYFlag(fields[colDrugSubstance])
	p.DrugProduct = ParseYFlag(fields[colDrugProduct])
	p.UseCode = ToPgText(fields[colUseCode])
	p.Delist = ParseYFlag(fields[colDelist])
	p.SubmissionDate = ToPgDate(fields[colSubmissionDate])

	return p, nil
}

// upsertPatentRow applies one validated row: normalize, resolve the parent
// product, then create or update by the patent's natural key.
func upsertPatentRow(ctx context.Context, sess Session, fields []string, res *Result) error {
	p, err := buildPatent(fields)
	if err != nil {
		return err
	}

	// A missing product is not an error: the patent still imports with a
	// NULL reference and is counted unlinked.
	productID, found, err := sess.FindProductID(ctx, ProductKey{
		ApplType:  p.ApplType,
		ApplNo:    p.ApplNo,
		ProductNo: p.ProductNo,
	})
	if err != nil {
		return fmt.Errorf("resolve product: %w", err)
	}
	if found {
		p.ProductID = pgtype.Int8{Int64: productID, Valid: true}
		res.Linked++
	} else {
		res.Unlinked++
	}

	id, found, err := sess.FindPatentID(ctx, p.Key())
	if err != nil {
		return fmt.Errorf("lookup patent: %w", err)
	}

	if !found {
		if err := sess.InsertPatent(ctx, p); err != nil {
			return fmt.Errorf("insert patent: %w", err)
		}
		res.Created++
		return nil
	}

	if err := sess.UpdatePatent(ctx, id, p); err != nil {
		return fmt.Errorf("update patent: %w", err)
	}
	res.Updated++
	return nil
}
