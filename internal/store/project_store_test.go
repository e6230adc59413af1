package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rjratcon/rachaeljuzeler/internal/legacy"
	"github.com/rjratcon/rachaeljuzeler/internal/model"
	"github.com/rjratcon/rachaeljuzeler/internal/store"
	"github.com/rjratcon/rachaeljuzeler/tests/testutil"
)

const legacyScript = `const projectData = {
    project1: { title: "Rust Belt", subtitle: "Steel", description: "Welded steel.", folder: "rust-belt" },
    project2: { title: "Tidewater", description: "Driftwood." }
};`

func writeImages(t *testing.T, fs afero.Fs, paths ...string) {
	t.Helper()
	for _, p := range paths {
		testutil.WriteFile(t, fs, p, "image:"+p)
	}
}

func validInput(images ...string) model.ProjectInput {
	return model.ProjectInput{
		Title:       "Harbor",
		Subtitle:    "Bronze, 2024",
		Description: "Cast bronze figures.",
		Images:      images,
	}
}

func TestProjectStore_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("copies images in order with numbered names", func(t *testing.T) {
		site := testutil.NewTestSite(t, "")
		writeImages(t, site.FS, "/in/a.png", "/in/b.jpg")

		out, err := site.Projects.Create(ctx, validInput("/in/a.png", "/in/b.jpg"))
		require.NoError(t, err)
		assert.Empty(t, out.Warnings)

		p := out.Record
		assert.Equal(t, "project16", p.ID)
		assert.Equal(t, p.ID, p.Folder)
		assert.Equal(t, []string{"project16-1.png", "project16-2.jpg"}, p.Images)
		assert.Equal(t, "project16-1.png", p.PrimaryImage())

		data, err := afero.ReadFile(site.FS, "/site/images/project16/project16-1.png")
		require.NoError(t, err)
		assert.Equal(t, "image:/in/a.png", string(data))

		persisted, err := site.Backend.LoadProjects(ctx)
		require.NoError(t, err)
		assert.Equal(t, p, persisted["project16"])
	})

	t.Run("rejects missing fields without mutating", func(t *testing.T) {
		site := testutil.NewTestSite(t, "")
		writeImages(t, site.FS, "/in/a.png")

		cases := map[string]model.ProjectInput{
			"empty title":       {Title: "  ", Description: "d", Images: []string{"/in/a.png"}},
			"empty description": {Title: "t", Description: "", Images: []string{"/in/a.png"}},
			"no images":         {Title: "t", Description: "d"},
			"blank images":      {Title: "t", Description: "d", Images: []string{" ", ""}},
		}
		for name, in := range cases {
			t.Run(name, func(t *testing.T) {
				_, err := site.Projects.Create(ctx, in)
				require.Error(t, err)
				assert.True(t, store.IsValidation(err), "got %v", err)
				assert.Empty(t, site.Projects.Projects())

				exists, _ := afero.Exists(site.FS, "/site/images/project16")
				assert.False(t, exists)
			})
		}

		exists, _ := afero.Exists(site.FS, site.Backend.Path(store.DocProjects))
		assert.False(t, exists, "nothing persisted")
	})

	t.Run("ids are above the legacy range and distinct", func(t *testing.T) {
		site := testutil.NewTestSite(t, legacyScript)
		writeImages(t, site.FS, "/in/a.png")
		require.Len(t, site.Projects.Projects(), 2)

		first, err := site.Projects.Create(ctx, validInput("/in/a.png"))
		require.NoError(t, err)
		second, err := site.Projects.Create(ctx, validInput("/in/a.png"))
		require.NoError(t, err)

		n1, ok := model.ProjectNumber(first.Record.ID)
		require.True(t, ok)
		n2, ok := model.ProjectNumber(second.Record.ID)
		require.True(t, ok)

		assert.Greater(t, n1, testutil.LegacyRange)
		assert.Greater(t, n2, n1)
		assert.NotEqual(t, first.Record.ID, second.Record.ID)
	})

	t.Run("ids are not reused after a delete", func(t *testing.T) {
		site := testutil.NewTestSite(t, "")
		writeImages(t, site.FS, "/in/a.png")

		a, err := site.Projects.Create(ctx, validInput("/in/a.png"))
		require.NoError(t, err)
		b, err := site.Projects.Create(ctx, validInput("/in/a.png"))
		require.NoError(t, err)
		require.NoError(t, site.Projects.Delete(ctx, a.Record.ID, nil))

		c, err := site.Projects.Create(ctx, validInput("/in/a.png"))
		require.NoError(t, err)
		assert.NotEqual(t, b.Record.ID, c.Record.ID)
		assert.Equal(t, "project18", c.Record.ID)
	})

	t.Run("failed copies become warnings", func(t *testing.T) {
		site := testutil.NewTestSite(t, "")
		writeImages(t, site.FS, "/in/b.jpg")

		out, err := site.Projects.Create(ctx, validInput("/in/missing.png", "/in/b.jpg"))
		require.NoError(t, err)
		require.Len(t, out.Warnings, 1)
		assert.Contains(t, out.Warnings[0], "missing.png")
		assert.Equal(t, []string{"project16-2.jpg"}, out.Record.Images)
	})
}

func TestProjectStore_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown id is an error and a no-op", func(t *testing.T) {
		site := testutil.NewTestSite(t, legacyScript)
		before := site.Projects.Projects()

		_, err := site.Projects.Update(ctx, "project99", validInput())
		require.Error(t, err)
		assert.True(t, errors.Is(err, store.ErrNotFound))
		assert.Equal(t, before, site.Projects.Projects())
	})

	t.Run("overwrites text and keeps images when none supplied", func(t *testing.T) {
		site := testutil.NewTestSite(t, "")
		writeImages(t, site.FS, "/in/a.png")
		created, err := site.Projects.Create(ctx, validInput("/in/a.png"))
		require.NoError(t, err)

		out, err := site.Projects.Update(ctx, created.Record.ID, model.ProjectInput{
			Title:       "Harbor II",
			Description: "Recast.",
		})
		require.NoError(t, err)
		assert.Equal(t, "Harbor II", out.Record.Title)
		assert.Empty(t, out.Record.Subtitle)
		assert.Equal(t, created.Record.Images, out.Record.Images)
	})

	t.Run("new images replace the list", func(t *testing.T) {
		site := testutil.NewTestSite(t, "")
		writeImages(t, site.FS, "/in/a.png", "/in/c.gif", "/in/d.JPEG")
		created, err := site.Projects.Create(ctx, validInput("/in/a.png"))
		require.NoError(t, err)
		id := created.Record.ID

		out, err := site.Projects.Update(ctx, id, validInput("/in/c.gif", "/in/d.JPEG"))
		require.NoError(t, err)
		assert.Equal(t, []string{id + "-1.gif", id + "-2.jpeg"}, out.Record.Images)

		exists, _ := afero.Exists(site.FS, "/site/images/"+id+"/"+id+"-2.jpeg")
		assert.True(t, exists)
	})

	t.Run("current images can be supplied again in a new order", func(t *testing.T) {
		site := testutil.NewTestSite(t, "")
		writeImages(t, site.FS, "/in/a.png", "/in/b.png")
		created, err := site.Projects.Create(ctx, validInput("/in/a.png", "/in/b.png"))
		require.NoError(t, err)
		id := created.Record.ID
		dir := "/site/images/" + id + "/"

		out, err := site.Projects.Update(ctx, id, validInput(dir+id+"-2.png", dir+id+"-1.png"))
		require.NoError(t, err)
		assert.Empty(t, out.Warnings)
		assert.Equal(t, []string{id + "-1.png", id + "-2.png"}, out.Record.Images)

		first, err := afero.ReadFile(site.FS, dir+id+"-1.png")
		require.NoError(t, err)
		second, err := afero.ReadFile(site.FS, dir+id+"-2.png")
		require.NoError(t, err)
		assert.Equal(t, "image:/in/b.png", string(first))
		assert.Equal(t, "image:/in/a.png", string(second))

		leftovers, err := afero.Glob(site.FS, dir+".*.tmp")
		require.NoError(t, err)
		assert.Empty(t, leftovers)
	})

	t.Run("current images supplied unchanged keep their contents", func(t *testing.T) {
		site := testutil.NewTestSite(t, "")
		writeImages(t, site.FS, "/in/a.png", "/in/b.png")
		created, err := site.Projects.Create(ctx, validInput("/in/a.png", "/in/b.png"))
		require.NoError(t, err)
		id := created.Record.ID
		dir := "/site/images/" + id + "/"

		out, err := site.Projects.Update(ctx, id, validInput(dir+id+"-1.png", dir+id+"-2.png"))
		require.NoError(t, err)
		assert.Empty(t, out.Warnings)
		assert.Equal(t, created.Record.Images, out.Record.Images)

		first, err := afero.ReadFile(site.FS, dir+id+"-1.png")
		require.NoError(t, err)
		assert.Equal(t, "image:/in/a.png", string(first))
	})

	t.Run("all copies failing keeps the old list", func(t *testing.T) {
		site := testutil.NewTestSite(t, "")
		writeImages(t, site.FS, "/in/a.png")
		created, err := site.Projects.Create(ctx, validInput("/in/a.png"))
		require.NoError(t, err)

		out, err := site.Projects.Update(ctx, created.Record.ID, validInput("/in/gone.png"))
		require.NoError(t, err)
		assert.Len(t, out.Warnings, 1)
		assert.Equal(t, created.Record.Images, out.Record.Images)
	})

	t.Run("legacy record can be edited and is then persisted", func(t *testing.T) {
		site := testutil.NewTestSite(t, legacyScript)

		_, err := site.Projects.Update(ctx, "project2", model.ProjectInput{
			Title: "Tidewater", Subtitle: "Driftwood, 2018", Description: "Driftwood and cable.",
		})
		require.NoError(t, err)

		persisted, err := site.Backend.LoadProjects(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Driftwood, 2018", persisted["project2"].Subtitle)
		assert.Equal(t, "project2", persisted["project2"].Folder)
	})

	t.Run("validation error leaves record unchanged", func(t *testing.T) {
		site := testutil.NewTestSite(t, legacyScript)
		before, _ := site.Projects.Get("project1")

		_, err := site.Projects.Update(ctx, "project1", model.ProjectInput{Title: "x"})
		require.Error(t, err)
		assert.True(t, store.IsValidation(err))

		after, _ := site.Projects.Get("project1")
		assert.Equal(t, before, after)
	})
}

func TestProjectStore_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("removes only the target", func(t *testing.T) {
		site := testutil.NewTestSite(t, legacyScript)
		writeImages(t, site.FS, "/in/a.png")
		created, err := site.Projects.Create(ctx, validInput("/in/a.png"))
		require.NoError(t, err)

		before := site.Projects.Projects()
		require.Len(t, before, 3)

		var asked model.Project
		err = site.Projects.Delete(ctx, "project1", func(p model.Project) bool {
			asked = p
			return true
		})
		require.NoError(t, err)
		assert.Equal(t, "Rust Belt", asked.Title)

		after := site.Projects.Projects()
		require.Len(t, after, 2)
		assert.Equal(t, before[1:], after)

		_, ok := site.Projects.Get("project1")
		assert.False(t, ok)

		exists, _ := afero.Exists(site.FS, "/site/images/"+created.Record.ID+"/"+created.Record.Images[0])
		assert.True(t, exists, "images are not removed")
	})

	t.Run("refused confirmation changes nothing", func(t *testing.T) {
		site := testutil.NewTestSite(t, legacyScript)

		err := site.Projects.Delete(ctx, "project2", func(model.Project) bool { return false })
		require.Error(t, err)
		assert.True(t, errors.Is(err, store.ErrCancelled))
		assert.Len(t, site.Projects.Projects(), 2)
	})

	t.Run("unknown id", func(t *testing.T) {
		site := testutil.NewTestSite(t, "")
		err := site.Projects.Delete(ctx, "project5", nil)
		assert.True(t, errors.Is(err, store.ErrNotFound))
	})

	t.Run("deleted legacy record returns with the baseline on reload", func(t *testing.T) {
		site := testutil.NewTestSite(t, legacyScript)
		require.NoError(t, site.Projects.Delete(ctx, "project1", nil))

		reopened := testutil.OpenTestSite(t, site.FS)
		_, ok := reopened.Projects.Get("project1")
		assert.True(t, ok)
		_, ok = reopened.Projects.Get("project2")
		assert.True(t, ok)
	})
}

func TestProjectStore_Load(t *testing.T) {
	ctx := context.Background()

	t.Run("persist then load round trips without legacy", func(t *testing.T) {
		site := testutil.NewTestSite(t, "")
		writeImages(t, site.FS, "/in/a.png", "/in/b.jpg")

		_, err := site.Projects.Create(ctx, validInput("/in/a.png", "/in/b.jpg"))
		require.NoError(t, err)
		_, err = site.Projects.Create(ctx, model.ProjectInput{
			Title: "Second", Description: "Only one image", Images: []string{"/in/b.jpg"},
		})
		require.NoError(t, err)
		require.NoError(t, site.Projects.Persist(ctx))

		reopened := testutil.OpenTestSite(t, site.FS)
		assert.Equal(t, site.Projects.Projects(), reopened.Projects.Projects())
	})

	t.Run("persisted entries override legacy ones", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		testutil.WriteFile(t, fs, testutil.LegacyScript, legacyScript)
		testutil.WriteFile(t, fs, testutil.DataDir+"/projects.json", `{
  "project1": {"title": "Rust Belt (revised)", "subtitle": "", "description": "New text", "folder": "project1", "images": ["project1-1.png"]}
}`)

		site := testutil.OpenTestSite(t, fs)
		p1, ok := site.Projects.Get("project1")
		require.True(t, ok)
		assert.Equal(t, "Rust Belt (revised)", p1.Title)
		assert.Equal(t, []string{"project1-1.png"}, p1.Images)

		p2, ok := site.Projects.Get("project2")
		require.True(t, ok)
		assert.Equal(t, "Tidewater", p2.Title)
	})

	t.Run("malformed legacy script gives an empty baseline", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		testutil.WriteFile(t, fs, testutil.LegacyScript, "const projectData = { broken: ] };")

		b, err := store.NewJSONBackend(fs, testutil.DataDir)
		require.NoError(t, err)
		ps := store.NewProjectStore(b, fs, store.ProjectStoreOptions{
			ImagesRoot: testutil.ImagesRoot, LegacyScript: testutil.LegacyScript, LegacyRange: 15,
		}, zerolog.Nop())

		res, err := ps.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, legacy.Malformed, res.Kind)
		assert.Empty(t, ps.Projects())
	})

	t.Run("empty legacy literal is not an error", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		testutil.WriteFile(t, fs, testutil.LegacyScript, "const projectData = {};")

		b, err := store.NewJSONBackend(fs, testutil.DataDir)
		require.NoError(t, err)
		ps := store.NewProjectStore(b, fs, store.ProjectStoreOptions{
			ImagesRoot: testutil.ImagesRoot, LegacyScript: testutil.LegacyScript, LegacyRange: 15,
		}, zerolog.Nop())

		res, err := ps.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, legacy.Empty, res.Kind)
		assert.NoError(t, res.Err)
		assert.Equal(t, "project16", ps.NextID())
	})

	t.Run("corrupt data file is reported but baseline loads", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		testutil.WriteFile(t, fs, testutil.LegacyScript, legacyScript)
		testutil.WriteFile(t, fs, testutil.DataDir+"/projects.json", "{not json")

		b, err := store.NewJSONBackend(fs, testutil.DataDir)
		require.NoError(t, err)
		ps := store.NewProjectStore(b, fs, store.ProjectStoreOptions{
			ImagesRoot: testutil.ImagesRoot, LegacyScript: testutil.LegacyScript, LegacyRange: 15,
		}, zerolog.Nop())

		res, err := ps.Load(ctx)
		require.Error(t, err)
		assert.Equal(t, legacy.Parsed, res.Kind)
		assert.Len(t, ps.Projects(), 2)
	})
}

func TestProjectStore_SQLiteBackendRoundTrip(t *testing.T) {
	ctx := context.Background()
	b := testutil.NewTestBackend(t)
	fs := afero.NewMemMapFs()
	writeImages(t, fs, "/in/a.png")

	opts := store.ProjectStoreOptions{ImagesRoot: "/images", LegacyRange: 15}
	ps := store.NewProjectStore(b, fs, opts, zerolog.Nop())
	_, err := ps.Load(ctx)
	require.NoError(t, err)

	_, err = ps.Create(ctx, validInput("/in/a.png"))
	require.NoError(t, err)

	reloaded := store.NewProjectStore(b, fs, opts, zerolog.Nop())
	_, err = reloaded.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, ps.Projects(), reloaded.Projects())
}
