package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/rjratcon/rachaeljuzeler/internal/model"
)

// JSONBackend stores each document as an indented JSON file in dir.
// Writes truncate and rewrite the file; there is no temp-file rename.
type JSONBackend struct {
	fs  afero.Fs
	dir string
}

// NewJSONBackend returns a backend rooted at dir, creating it if needed.
func NewJSONBackend(fs afero.Fs, dir string) (*JSONBackend, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory %s: %w", dir, err)
	}
	return &JSONBackend{fs: fs, dir: dir}, nil
}

// Path returns the file backing the named document.
func (b *JSONBackend) Path(name string) string {
	return filepath.Join(b.dir, name+".json")
}

// LoadProjects reads projects.json. Entry keys become project ids.
func (b *JSONBackend) LoadProjects(ctx context.Context) (map[string]model.Project, error) {
	projects := make(map[string]model.Project)
	if _, err := b.LoadDocument(ctx, DocProjects, &projects); err != nil {
		return nil, err
	}
	for id, p := range projects {
		p.ID = id
		projects[id] = p
	}
	return projects, nil
}

// SaveProjects rewrites projects.json with the full mapping.
func (b *JSONBackend) SaveProjects(ctx context.Context, projects map[string]model.Project) error {
	if projects == nil {
		projects = map[string]model.Project{}
	}
	return b.SaveDocument(ctx, DocProjects, projects)
}

// LoadDocument decodes <name>.json into v.
func (b *JSONBackend) LoadDocument(_ context.Context, name string, v any) (bool, error) {
	path := b.Path(name)
	data, err := afero.ReadFile(b.fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decoding %s: %w", path, err)
	}
	return true, nil
}

// SaveDocument encodes v into <name>.json.
func (b *JSONBackend) SaveDocument(_ context.Context, name string, v any) error {
	path := b.Path(name)
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", name, err)
	}
	data = append(data, '\n')
	if err := afero.WriteFile(b.fs, path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// Close is a no-op.
func (b *JSONBackend) Close() error {
	return nil
}
