package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/rjratcon/rachaeljuzeler/internal/model"
)

// New builds a timestamped logger writing to w at the given level name.
// Unknown level names fall back to info.
func New(w io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(w).
		Level(lvl).
		With().
		Timestamp().
		Logger()
}

// Open creates the log file described by cfg (relative paths resolve
// against the site root) and returns a logger writing to it along with
// the file so the caller can close it. An empty file path disables
// logging.
func Open(site model.SiteConfig, cfg model.LogConfig) (zerolog.Logger, io.Closer, error) {
	if cfg.File == "" {
		return zerolog.Nop(), io.NopCloser(nil), nil
	}

	path := site.Path(cfg.File)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("opening log file %s: %w", path, err)
	}
	return New(f, cfg.Level), f, nil
}

// Component returns a child logger tagged with the component name.
func Component(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().Str("component", name).Logger()
}
