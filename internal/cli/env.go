package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/rjratcon/rachaeljuzeler/internal/legacy"
	"github.com/rjratcon/rachaeljuzeler/internal/logging"
	"github.com/rjratcon/rachaeljuzeler/internal/model"
	"github.com/rjratcon/rachaeljuzeler/internal/store"
)

// env holds everything a command needs: configuration, logger, and the
// loaded stores. Close releases the backend and the log file.
type env struct {
	cfg      *model.AppConfig
	fs       afero.Fs
	log      zerolog.Logger
	backend  store.Backend
	projects *store.ProjectStore
	content  *store.ContentStore
	closers  []io.Closer
}

// openEnv loads the config, opens logging and the configured backend, and
// loads the project store.
func openEnv(ctx context.Context, fs afero.Fs, configPath, siteRoot string) (*env, error) {
	cfg, err := model.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if siteRoot != "" {
		cfg.Site.Root = siteRoot
	}

	log, logFile, err := logging.Open(cfg.Site, cfg.Log)
	if err != nil {
		return nil, err
	}
	e := &env{cfg: cfg, fs: fs, log: log, closers: []io.Closer{logFile}}

	site := cfg.Site
	backend, err := openBackend(fs, cfg)
	if err != nil {
		e.Close()
		return nil, err
	}
	e.backend = backend
	e.closers = append([]io.Closer{backend}, e.closers...)

	e.projects = store.NewProjectStore(backend, fs, store.ProjectStoreOptions{
		ImagesRoot:   site.Path(site.ImagesDir),
		LegacyScript: site.Path(site.LegacyScript),
		LegacyRange:  site.LegacyRange,
	}, logging.Component(log, "projects"))
	e.content = store.NewContentStore(backend, fs, site.Path(site.ImagesDir), logging.Component(log, "content"))

	res, err := e.projects.Load(ctx)
	if err != nil {
		e.Close()
		return nil, err
	}
	log.Info().
		Str("site", site.Root).
		Str("driver", cfg.Storage.Driver).
		Stringer("legacy", res.Kind).
		Int("projects", len(e.projects.Projects())).
		Msg("site opened")

	return e, nil
}

func openBackend(fs afero.Fs, cfg *model.AppConfig) (store.Backend, error) {
	switch cfg.Storage.Driver {
	case model.DriverSQLite:
		path := cfg.Site.Path(cfg.Storage.SQLitePath)
		if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
		return store.NewSQLiteBackend(path)
	default:
		return store.NewJSONBackend(fs, cfg.Site.Path(cfg.Site.DataDir))
	}
}

// exportPath is where export writes; it never equals the legacy script.
func (e *env) exportPath() (string, error) {
	site := e.cfg.Site
	target := site.Path(site.ExportScript)
	if target == "" {
		return "", errors.New("site.export_script is not set")
	}
	if filepath.Clean(target) == filepath.Clean(site.Path(site.LegacyScript)) {
		return "", fmt.Errorf("export target %s is the legacy script", target)
	}
	return target, nil
}

// export writes the current projects as a projectData script.
func (e *env) export() (string, error) {
	path, err := e.exportPath()
	if err != nil {
		return "", err
	}
	if err := legacy.Export(e.fs, path, e.projects.Projects()); err != nil {
		return "", err
	}
	return path, nil
}

// Close releases resources in reverse order of acquisition.
func (e *env) Close() error {
	var errs []error
	for _, c := range e.closers {
		if c == nil {
			continue
		}
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
