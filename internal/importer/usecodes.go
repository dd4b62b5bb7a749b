package importer

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
)

// usecodesJSON is the bundled use-code reference set, a point-in-time copy
// of the patent-use-code definitions published alongside the Orange Book.
//
//go:embed data/usecodes.json
var usecodesJSON []byte

// useCodeEntry is the wire shape of one bundled definition.
type useCodeEntry struct {
	Code       string `json:"code"`
	Definition string `json:"definition"`
}

// ImportUseCodes imports the bundled use-code definition set.
func (imp *Importer) ImportUseCodes(ctx context.Context, res *Result) error {
	return imp.ImportUseCodesJSON(ctx, usecodesJSON, res)
}

// ImportUseCodesJSON imports use-code definitions from a JSON document.
// Each entry plays the role of one feed row, keyed by its code; the run
// shares the patent pipeline's session, cancellation, and commit semantics.
// A document that does not decode is fatal: there are no rows to salvage.
func (imp *Importer) ImportUseCodesJSON(ctx context.Context, data []byte, res *Result) error {
	var defs []useCodeEntry
	if err := json.Unmarshal(data, &defs); err != nil {
		res.Success = false
		return fmt.Errorf("decode use code definitions: %w", err)
	}

	entries := make([]feedEntry, len(defs))
	for i, def := range defs {
		def := def
		entries[i] = feedEntry{
			ref: fmt.Sprintf("code %q", def.Code),
			apply: func(ctx context.Context, sess Session, res *Result) error {
				return upsertUseCode(ctx, sess, def, res)
			},
		}
	}

	return imp.runFeed(ctx, "usecodes", entries, res)
}

// upsertUseCode creates or updates one definition by its code.
func upsertUseCode(ctx context.Context, sess Session, def useCodeEntry, res *Result) error {
	code := strings.TrimSpace(def.Code)
	if code == "" {
		return fmt.Errorf("empty required field %q", "code")
	}

	u := &UseCodeDefinition{
		Code:       code,
		Definition: ToPgText(def.Definition),
	}

	id, found, err := sess.FindUseCodeID(ctx, u.Code)
	if err != nil {
		return fmt.Errorf("lookup use code: %w", err)
	}

	if !found {
		if err := sess.InsertUseCode(ctx, u); err != nil {
			return fmt.Errorf("insert use code: %w", err)
		}
		res.Created++
		return nil
	}

	if err := sess.UpdateUseCode(ctx, id, u); err != nil {
		return fmt.Errorf("update use code: %w", err)
	}
	res.Updated++
	return nil
}
