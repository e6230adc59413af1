package model_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rjratcon/rachaeljuzeler/internal/model"
)

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := model.LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, model.DefaultAppConfig(), cfg)
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
site:
  root: /srv/site
  legacy_range: 20
storage:
  driver: sqlite
`), 0o644))

	t.Setenv("CONTENTMGR_LOG_LEVEL", "debug")

	cfg, err := model.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/site", cfg.Site.Root)
	assert.Equal(t, 20, cfg.Site.LegacyRange)
	assert.Equal(t, "images", cfg.Site.ImagesDir)
	assert.Equal(t, model.DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "/srv/site/images", cfg.Site.Path(cfg.Site.ImagesDir))
}

func TestLoadConfig_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage:\n  driver: postgres\n"), 0o644))

	_, err := model.LoadConfig(path)
	assert.ErrorContains(t, err, "unknown storage driver")
}

func TestSiteConfig_Path(t *testing.T) {
	site := model.SiteConfig{Root: "/site"}
	assert.Equal(t, "/site/script.js", site.Path("script.js"))
	assert.Equal(t, "/abs/x", site.Path("/abs/x"))
	assert.Equal(t, "", site.Path(""))
}

func TestProjectNumber(t *testing.T) {
	cases := map[string]struct {
		n  int
		ok bool
	}{
		"project16": {16, true},
		"project0":  {0, true},
		"project":   {0, false},
		"projectX":  {0, false},
		"proj16":    {0, false},
		"project-1": {0, false},
		"project+5": {0, false},
		"project05": {0, false},
		"project00": {0, false},
		"project 5": {0, false},
		"project5x": {0, false},
		"project5":  {5, true},
	}
	for id, want := range cases {
		n, ok := model.ProjectNumber(id)
		assert.Equal(t, want.ok, ok, id)
		assert.Equal(t, want.n, n, id)
	}
	assert.Equal(t, "project42", model.ProjectID(42))
}

func TestProjectInput_Normalize(t *testing.T) {
	in := model.ProjectInput{
		Title:       "  Harbor ",
		Description: "\tBronze\n",
		Images:      []string{" /a.png", "", "  ", "/b.jpg"},
	}.Normalize()

	assert.Equal(t, "Harbor", in.Title)
	assert.Equal(t, "Bronze", in.Description)
	assert.Equal(t, []string{"/a.png", "/b.jpg"}, in.Images)
}
