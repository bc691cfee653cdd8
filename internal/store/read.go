package store

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/procrt/internal/catalog"
	"github.com/roach88/procrt/internal/ir"
)

// CatalogEntry is one stored procedure signature.
type CatalogEntry struct {
	Signature   ir.Signature
	Fingerprint string
	Version     string
}

// ReadCatalog returns the stored signatures ordered by qualified name.
//
// Returns an empty slice (not nil) if nothing has been saved.
func (s *Store) ReadCatalog(ctx context.Context) ([]CatalogEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT signature, fingerprint, catalog_version
		FROM catalog
		ORDER BY qualified_name COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query catalog: %w", err)
	}
	defer rows.Close()

	entries := []CatalogEntry{}
	for rows.Next() {
		var data string
		var e CatalogEntry
		if err := rows.Scan(&data, &e.Fingerprint, &e.Version); err != nil {
			return nil, fmt.Errorf("scan catalog: %w", err)
		}
		if e.Signature, err = unmarshalSignature(data); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate catalog: %w", err)
	}
	return entries, nil
}

// ReadCalls returns the most recent calls, newest first. limit <= 0 returns
// the whole log. It implements catalog.CallLog.
func (s *Store) ReadCalls(ctx context.Context, limit int) ([]catalog.CallRecord, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, procedure, args, row_count, exhausted, error, started_at
		FROM calls
		ORDER BY seq DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query calls: %w", err)
	}
	defer rows.Close()

	calls := []catalog.CallRecord{}
	for rows.Next() {
		var rec catalog.CallRecord
		var argsJSON, started string
		if err := rows.Scan(&rec.ID, &rec.Procedure, &argsJSON, &rec.Rows, &rec.Exhausted, &rec.Error, &started); err != nil {
			return nil, fmt.Errorf("scan call: %w", err)
		}
		if rec.Args, err = unmarshalArgs(argsJSON); err != nil {
			return nil, fmt.Errorf("call %s: %w", rec.ID, err)
		}
		if rec.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
			return nil, fmt.Errorf("call %s: parse started_at: %w", rec.ID, err)
		}
		calls = append(calls, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate calls: %w", err)
	}
	return calls, nil
}
