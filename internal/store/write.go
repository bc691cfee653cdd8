package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/procrt/internal/catalog"
	"github.com/roach88/procrt/internal/ir"
)

// SaveCatalog upserts the given signatures in one transaction.
//
// It returns the qualified names whose fingerprint differs from the stored
// one, i.e. procedures whose inputs or outputs changed since the previous
// save. New procedures are not reported as changed.
func (s *Store) SaveCatalog(ctx context.Context, sigs []ir.Signature) ([]string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("save catalog: %w", err)
	}
	defer tx.Rollback()

	seq, err := nextSeq(ctx, tx, "catalog")
	if err != nil {
		return nil, fmt.Errorf("save catalog: %w", err)
	}

	changed := []string{}
	for _, sig := range sigs {
		name := sig.QualifiedName()

		fp, err := ir.Fingerprint(sig)
		if err != nil {
			return nil, fmt.Errorf("save catalog: %w", err)
		}
		data, err := marshalSignature(sig)
		if err != nil {
			return nil, fmt.Errorf("save catalog: %w", err)
		}

		var previous string
		err = tx.QueryRowContext(ctx,
			`SELECT fingerprint FROM catalog WHERE qualified_name = ?`, name,
		).Scan(&previous)
		switch {
		case errors.Is(err, sql.ErrNoRows):
		case err != nil:
			return nil, fmt.Errorf("save catalog: read %s: %w", name, err)
		case previous != fp:
			changed = append(changed, name)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO catalog
			(qualified_name, signature, display, fingerprint, catalog_version, updated_seq)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(qualified_name) DO UPDATE SET
				signature = excluded.signature,
				display = excluded.display,
				fingerprint = excluded.fingerprint,
				catalog_version = excluded.catalog_version,
				updated_seq = excluded.updated_seq
		`,
			name,
			data,
			sig.String(),
			fp,
			ir.CatalogVersion,
			seq,
		)
		if err != nil {
			return nil, fmt.Errorf("save catalog: write %s: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("save catalog: %w", err)
	}
	return changed, nil
}

// nextSeq increments and returns the named counter.
func nextSeq(ctx context.Context, tx *sql.Tx, name string) (int64, error) {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO sequences (name, value) VALUES (?, 1)
		ON CONFLICT(name) DO UPDATE SET value = value + 1
	`, name)
	if err != nil {
		return 0, fmt.Errorf("advance sequence %s: %w", name, err)
	}
	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT value FROM sequences WHERE name = ?`, name).Scan(&seq); err != nil {
		return 0, fmt.Errorf("read sequence %s: %w", name, err)
	}
	return seq, nil
}

// RecordCall appends a finished call to the log. It implements
// catalog.Recorder. Uses ON CONFLICT(id) DO NOTHING for idempotency -
// recording the same call twice is silently ignored.
func (s *Store) RecordCall(ctx context.Context, rec catalog.CallRecord) error {
	argsJSON, err := marshalArgs(rec.Args)
	if err != nil {
		return fmt.Errorf("record call: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO calls
		(id, procedure, args, row_count, exhausted, error, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		rec.ID,
		rec.Procedure,
		argsJSON,
		rec.Rows,
		rec.Exhausted,
		rec.Error,
		rec.StartedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("record call: %w", err)
	}
	return nil
}
