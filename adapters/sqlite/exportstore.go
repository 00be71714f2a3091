package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/artpar/mailcraft/domain/export"
	"github.com/artpar/mailcraft/ports"
)

// ExportStore implements ports.ExportArchive using SQLite.
type ExportStore struct {
	db *DB
}

// NewExportStore creates a new SQLite export store.
func NewExportStore(db *DB) *ExportStore {
	return &ExportStore{db: db}
}

const exportColumns = `id, document_id, html, fingerprint, bytes, roots, modules,
	else_policy, malformed_colors, skipped, created_at`

// Save stores a new export record.
func (s *ExportStore) Save(ctx context.Context, rec export.Record) error {
	malformed, err := marshalList(rec.MalformedColors)
	if err != nil {
		return fmt.Errorf("marshal malformed colors: %w", err)
	}
	skipped, err := marshalList(rec.Skipped)
	if err != nil {
		return fmt.Errorf("marshal skipped: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO exports (`+exportColumns+`, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?,
			(SELECT COALESCE(MAX(seq), 0) + 1 FROM exports))
	`, rec.ID, rec.DocumentID, rec.HTML, rec.Fingerprint, rec.Bytes, rec.Roots, rec.Modules,
		string(rec.ElsePolicy), malformed, skipped, rec.CreatedAt.UTC())
	return err
}

// Get retrieves an export by ID.
func (s *ExportStore) Get(ctx context.Context, id string) (export.Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+exportColumns+`
		FROM exports
		WHERE id = ?
	`, id)
	return scanExport(row)
}

// ListByDocument returns a document's exports, newest first.
func (s *ExportStore) ListByDocument(ctx context.Context, documentID string, limit int) ([]export.Record, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+exportColumns+`
		FROM exports
		WHERE document_id = ?
		ORDER BY created_at DESC, seq DESC
		LIMIT ?
	`, documentID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []export.Record
	for rows.Next() {
		rec, err := scanExport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Latest returns the newest export of a document.
func (s *ExportStore) Latest(ctx context.Context, documentID string) (export.Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+exportColumns+`
		FROM exports
		WHERE document_id = ?
		ORDER BY created_at DESC, seq DESC
		LIMIT 1
	`, documentID)
	return scanExport(row)
}

// Count returns the number of exports archived for a document.
func (s *ExportStore) Count(ctx context.Context, documentID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM exports WHERE document_id = ?
	`, documentID).Scan(&n)
	return n, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanExport(row scanner) (export.Record, error) {
	var rec export.Record
	var policy string
	var malformed, skipped sql.NullString

	err := row.Scan(
		&rec.ID, &rec.DocumentID, &rec.HTML, &rec.Fingerprint, &rec.Bytes, &rec.Roots, &rec.Modules,
		&policy, &malformed, &skipped, &rec.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return export.Record{}, ErrNotFound
	}
	if err != nil {
		return export.Record{}, err
	}

	rec.ElsePolicy = export.ElsePolicy(policy)
	if malformed.Valid && malformed.String != "" {
		if err := json.Unmarshal([]byte(malformed.String), &rec.MalformedColors); err != nil {
			return export.Record{}, fmt.Errorf("unmarshal malformed colors: %w", err)
		}
	}
	if skipped.Valid && skipped.String != "" {
		if err := json.Unmarshal([]byte(skipped.String), &rec.Skipped); err != nil {
			return export.Record{}, fmt.Errorf("unmarshal skipped: %w", err)
		}
	}
	return rec, nil
}

func marshalList(list []string) (sql.NullString, error) {
	if len(list) == 0 {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(list)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

// Ensure interface compliance.
var _ ports.ExportArchive = (*ExportStore)(nil)
