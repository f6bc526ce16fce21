package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ha1tch/automata/pkg/automaton"
	"github.com/ha1tch/automata/pkg/automatonfile"
	"github.com/rs/zerolog"
)

const fileExt = ".json"

// FileRepository keeps one JSON document per automaton in a directory.
type FileRepository struct {
	dir string
	log zerolog.Logger
}

// NewFileRepository creates a repository rooted at dir. The directory is
// created on first save.
func NewFileRepository(dir string, log zerolog.Logger) *FileRepository {
	return &FileRepository{dir: dir, log: log}
}

func (r *FileRepository) path(name string) string {
	return filepath.Join(r.dir, name+fileExt)
}

// Save writes the document to a temporary file, syncs it and renames it
// into place, so readers never see a partial document.
func (r *FileRepository) Save(ctx context.Context, name string, a *automaton.Automaton) error {
	if err := checkName(name); err != nil {
		return err
	}
	data, err := automatonfile.ToJSON(a, true)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(r.dir, 0755); err != nil {
		return fmt.Errorf("create library directory: %w", err)
	}

	tmp, err := os.CreateTemp(r.dir, "."+name+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, r.path(name)); err != nil {
		return fmt.Errorf("replace %s: %w", name, err)
	}

	r.log.Debug().Str("name", name).Int("bytes", len(data)).Msg("saved")
	return nil
}

// Load reads a stored automaton.
func (r *FileRepository) Load(ctx context.Context, name string) (*automaton.Automaton, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(r.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return automatonfile.ParseJSON(data)
}

// Delete removes a stored automaton.
func (r *FileRepository) Delete(ctx context.Context, name string) error {
	if err := checkName(name); err != nil {
		return err
	}
	if err := os.Remove(r.path(name)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return fmt.Errorf("delete %s: %w", name, err)
	}
	r.log.Debug().Str("name", name).Msg("deleted")
	return nil
}

// List returns the stored names. A missing directory is an empty library.
func (r *FileRepository) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("list library: %w", err)
	}

	names := []string{}
	for _, e := range entries {
		n := e.Name()
		if e.IsDir() || strings.HasPrefix(n, ".") || filepath.Ext(n) != fileExt {
			continue
		}
		names = append(names, strings.TrimSuffix(n, fileExt))
	}
	return names, nil
}

// Close is a no-op.
func (r *FileRepository) Close() error {
	return nil
}
