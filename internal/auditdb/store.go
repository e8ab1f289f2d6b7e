// Package auditdb persists audit entries to a SQLite database so merge
// history stays queryable across runs. Persistence is optional; the CSV
// audit trail remains the canonical output.
package auditdb

import (
	"context"
	"database/sql"
	"time"

	_ "modernc.org/sqlite"

	"github.com/faxhealth/carebook/pkg/errors"
	"github.com/faxhealth/carebook/pkg/reconciler"
)

// Store wraps SQLite access for the audit trail.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the audit database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, errors.WrapIO("open", path, err)
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS merge_audit (
            run_id TEXT,
            id TEXT,
            normalized_address TEXT,
            source_row_count INTEGER,
            merged_billing_codes TEXT,
            merged_fax_numbers TEXT,
            field_conflicts TEXT,
            status TEXT,
            created_at TIMESTAMP
        );`,
		`CREATE INDEX IF NOT EXISTS idx_merge_audit_run ON merge_audit(run_id);`,
		`CREATE INDEX IF NOT EXISTS idx_merge_audit_id ON merge_audit(id);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertAudit writes all entries of one run in a single transaction.
func (s *Store) InsertAudit(ctx context.Context, runID string, entries []reconciler.AuditEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO merge_audit (
        run_id, id, normalized_address, source_row_count,
        merged_billing_codes, merged_fax_numbers, field_conflicts,
        status, created_at
    ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, entry := range entries {
		if _, err := stmt.ExecContext(ctx,
			runID,
			entry.ID,
			entry.NormalizedAddress,
			entry.SourceRowCount,
			entry.MergedBillingCodes,
			entry.MergedFaxNumbers,
			entry.FieldConflicts,
			entry.Status,
			now,
		); err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

// CountByStatus returns the number of audit entries per status for a run.
func (s *Store) CountByStatus(ctx context.Context, runID string) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM merge_audit WHERE run_id = ? GROUP BY status`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}
