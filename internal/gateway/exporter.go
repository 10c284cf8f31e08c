package gateway

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/pbaille/orgadmin/internal/domain"
	"github.com/pbaille/orgadmin/internal/store"
)

// FileExporter writes exported documents into the download directory and
// archives each export in the history when one is configured.
type FileExporter struct {
	dir     string
	history *store.History
	log     zerolog.Logger
}

// NewFileExporter creates an exporter writing into dir. history may be nil.
func NewFileExporter(dir string, history *store.History, log zerolog.Logger) *FileExporter {
	return &FileExporter{dir: dir, history: history, log: log}
}

// Dir returns the download directory.
func (e *FileExporter) Dir() string { return e.dir }

// Export marshals doc and writes it as <dir>/<kind>.json
func (e *FileExporter) Export(ctx context.Context, kind domain.DocumentKind, doc any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := Marshal(doc)
	if err != nil {
		return err
	}
	path, err := WriteFile(e.dir, kind.FileName(), data)
	if err != nil {
		return err
	}

	ev := e.log.Info().Str("document", kind.FileName()).Str("path", path).Int("bytes", len(data))
	if e.history != nil {
		rec, err := e.history.Record(kind, data)
		if err != nil {
			return fmt.Errorf("archive export: %w", err)
		}
		ev = ev.Str("export_id", rec.ID)
	}
	ev.Msg("document exported")
	return nil
}

// WriteFile atomically writes data to dir/name, creating dir when needed.
func WriteFile(dir, name string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create download dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+name+".*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write export: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close export: %w", err)
	}

	path := filepath.Join(dir, name)
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("rename export: %w", err)
	}
	return path, nil
}
