package store

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pbaille/orgadmin/internal/domain"
)

//go:embed schema.sql
var schema string

// ErrExportNotFound is returned when no archived export matches an id.
var ErrExportNotFound = errors.New("export not found")

// likeEscaper makes an id prefix match literally in a LIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// History archives every exported document in SQLite
type History struct {
	db *sql.DB
}

// OpenHistory opens (and initializes) the archive at dbPath
func OpenHistory(dbPath string) (*History, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &History{db: db}, nil
}

// Close closes the database connection
func (h *History) Close() error {
	return h.db.Close()
}

// Record stores an exported document and returns the archive entry
func (h *History) Record(kind domain.DocumentKind, content []byte) (*domain.ExportRecord, error) {
	rec := &domain.ExportRecord{
		ID:        uuid.New().String(),
		Document:  kind,
		FileName:  kind.FileName(),
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}

	_, err := h.db.Exec(
		"INSERT INTO exports (id, document, file_name, content, created_at) VALUES (?, ?, ?, ?, ?)",
		rec.ID, string(rec.Document), rec.FileName, rec.Content, rec.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert export: %w", err)
	}

	return rec, nil
}

// List returns the most recent exports without their content
func (h *History) List(limit int) ([]domain.ExportRecord, error) {
	rows, err := h.db.Query(
		"SELECT id, document, file_name, created_at FROM exports ORDER BY created_at DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list exports: %w", err)
	}
	defer rows.Close()

	var records []domain.ExportRecord
	for rows.Next() {
		var r domain.ExportRecord
		var kind string
		if err := rows.Scan(&r.ID, &kind, &r.FileName, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan export: %w", err)
		}
		r.Document = domain.DocumentKind(kind)
		records = append(records, r)
	}

	return records, rows.Err()
}

// Get retrieves an export by id or unique id prefix, content included
func (h *History) Get(idPrefix string) (*domain.ExportRecord, error) {
	rows, err := h.db.Query(
		`SELECT id, document, file_name, content, created_at FROM exports WHERE id LIKE ? ESCAPE '\' ORDER BY created_at DESC LIMIT 2`,
		likeEscaper.Replace(idPrefix)+"%",
	)
	if err != nil {
		return nil, fmt.Errorf("get export: %w", err)
	}
	defer rows.Close()

	var found []domain.ExportRecord
	for rows.Next() {
		var r domain.ExportRecord
		var kind string
		if err := rows.Scan(&r.ID, &kind, &r.FileName, &r.Content, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan export: %w", err)
		}
		r.Document = domain.DocumentKind(kind)
		found = append(found, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get export: %w", err)
	}

	switch len(found) {
	case 0:
		return nil, fmt.Errorf("%s: %w", idPrefix, ErrExportNotFound)
	case 1:
		return &found[0], nil
	}
	return nil, fmt.Errorf("export id prefix %q is ambiguous", idPrefix)
}
