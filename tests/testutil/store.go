package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/rjratcon/rachaeljuzeler/internal/store"
)

// Site layout used by NewTestSite.
const (
	SiteRoot     = "/site"
	DataDir      = "/site/admin_data"
	ImagesRoot   = "/site/images"
	LegacyScript = "/site/script.js"
	LegacyRange  = 15
)

// Site bundles an in-memory filesystem with stores rooted in it.
type Site struct {
	FS       afero.Fs
	Backend  *store.JSONBackend
	Projects *store.ProjectStore
	Content  *store.ContentStore
}

// NewTestBackend creates an in-memory SQLiteBackend with all migrations
// applied. It automatically closes the backend when the test completes.
func NewTestBackend(t *testing.T) *store.SQLiteBackend {
	t.Helper()

	b, err := store.NewSQLiteBackend(":memory:")
	if err != nil {
		t.Fatalf("creating test backend: %v", err)
	}

	t.Cleanup(func() {
		if err := b.Close(); err != nil {
			t.Errorf("closing test backend: %v", err)
		}
	})

	return b
}

// NewTestSite creates a site on a MemMapFs with a JSON backend. When
// legacyScript is non-empty it is written to LegacyScript first. The
// project store is loaded before returning.
func NewTestSite(t *testing.T, legacyScript string) *Site {
	t.Helper()

	fs := afero.NewMemMapFs()
	if legacyScript != "" {
		WriteFile(t, fs, LegacyScript, legacyScript)
	}
	return OpenTestSite(t, fs)
}

// OpenTestSite builds fresh stores over an existing filesystem, as a
// restart of the application would.
func OpenTestSite(t *testing.T, fs afero.Fs) *Site {
	t.Helper()

	b, err := store.NewJSONBackend(fs, DataDir)
	if err != nil {
		t.Fatalf("creating json backend: %v", err)
	}

	ps := store.NewProjectStore(b, fs, store.ProjectStoreOptions{
		ImagesRoot:   ImagesRoot,
		LegacyScript: LegacyScript,
		LegacyRange:  LegacyRange,
	}, zerolog.Nop())
	if _, err := ps.Load(context.Background()); err != nil {
		t.Fatalf("loading project store: %v", err)
	}

	return &Site{
		FS:       fs,
		Backend:  b,
		Projects: ps,
		Content:  store.NewContentStore(b, fs, ImagesRoot, zerolog.Nop()),
	}
}

// WriteFile writes content to path on fs, creating parent directories.
func WriteFile(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()

	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("creating %s: %v", filepath.Dir(path), err)
	}
	if err := afero.WriteFile(fs, path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}
