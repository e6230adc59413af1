package store_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rjratcon/rachaeljuzeler/internal/model"
	"github.com/rjratcon/rachaeljuzeler/internal/store"
	"github.com/rjratcon/rachaeljuzeler/tests/testutil"
)

func TestContentStore_CV(t *testing.T) {
	ctx := context.Background()
	site := testutil.NewTestSite(t, "")

	cv, err := site.Content.CV(ctx)
	require.NoError(t, err)
	assert.Empty(t, cv.Bio)
	assert.NotNil(t, cv.Sections)

	require.NoError(t, site.Content.UpdateBio(ctx, "  Sculptor based in Pittsburgh.  "))
	require.NoError(t, site.Content.UpdateCVSection(ctx, model.CVSoloExhibitions,
		[]string{"2023 Harbor, Gallery One", " ", "2021 Tidewater, Annex"}))

	cv, err = site.Content.CV(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Sculptor based in Pittsburgh.", cv.Bio)
	assert.Equal(t, []string{"2023 Harbor, Gallery One", "2021 Tidewater, Annex"}, cv.Sections[model.CVSoloExhibitions])

	t.Run("blank bio rejected", func(t *testing.T) {
		err := site.Content.UpdateBio(ctx, "   ")
		assert.True(t, store.IsValidation(err))
	})

	t.Run("unknown section rejected", func(t *testing.T) {
		err := site.Content.UpdateCVSection(ctx, "hobbies", []string{"x"})
		assert.True(t, store.IsValidation(err))
	})

	t.Run("empty list clears a section", func(t *testing.T) {
		require.NoError(t, site.Content.UpdateCVSection(ctx, model.CVSoloExhibitions, nil))
		cv, err := site.Content.CV(ctx)
		require.NoError(t, err)
		assert.Empty(t, cv.Sections[model.CVSoloExhibitions])
		assert.Equal(t, "Sculptor based in Pittsburgh.", cv.Bio)
	})
}

func TestContentStore_Updates(t *testing.T) {
	ctx := context.Background()
	site := testutil.NewTestSite(t, "")

	first, err := site.Content.CreateUpdate(ctx, "Opening", "Show opens Friday.", "")
	require.NoError(t, err)
	second, err := site.Content.CreateUpdate(ctx, "Press", "Review in the paper.", "https://example.com/review")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	updates, err := site.Content.Updates(ctx)
	require.NoError(t, err)
	require.Len(t, updates, 2)
	assert.Equal(t, second.ID, updates[0].ID, "newest first")

	edited, err := site.Content.UpdateUpdate(ctx, first.ID, "Opening night", "Friday at 6.", "")
	require.NoError(t, err)
	assert.Equal(t, "Opening night", edited.Title)
	assert.True(t, first.CreatedAt.Equal(edited.CreatedAt))

	_, err = site.Content.CreateUpdate(ctx, "", "body", "")
	assert.True(t, store.IsValidation(err))

	_, err = site.Content.UpdateUpdate(ctx, "missing", "t", "c", "")
	assert.True(t, errors.Is(err, store.ErrNotFound))

	require.NoError(t, site.Content.DeleteUpdate(ctx, second.ID))
	updates, err = site.Content.Updates(ctx)
	require.NoError(t, err)
	require.Len(t, updates, 1)
	assert.Equal(t, first.ID, updates[0].ID)

	assert.True(t, errors.Is(site.Content.DeleteUpdate(ctx, second.ID), store.ErrNotFound))
}

func TestContentStore_Contact(t *testing.T) {
	ctx := context.Background()
	site := testutil.NewTestSite(t, "")

	info, err := site.Content.Contact(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.ContactInfo{}, info)

	require.NoError(t, site.Content.SaveContact(ctx, model.ContactInfo{
		PersonalEmail:   " studio@example.com ",
		InstagramHandle: "@studio",
	}))

	reopened := testutil.OpenTestSite(t, site.FS)
	info, err = reopened.Content.Contact(ctx)
	require.NoError(t, err)
	assert.Equal(t, "studio@example.com", info.PersonalEmail)
	assert.Equal(t, "@studio", info.InstagramHandle)
}

func TestContentStore_AvailableWorks(t *testing.T) {
	ctx := context.Background()
	site := testutil.NewTestSite(t, "")
	testutil.WriteFile(t, site.FS, "/in/work.PNG", "png")
	testutil.WriteFile(t, site.FS, "/in/work2.jpg", "jpg")

	out, err := site.Content.CreateAvailableWork(ctx, model.AvailableWorkInput{
		Title:     "Small Bronze",
		Medium:    "Bronze",
		Price:     "$1,200",
		ImagePath: "/in/work.PNG",
	})
	require.NoError(t, err)
	assert.Empty(t, out.Warnings)

	w := out.Record
	assert.Equal(t, model.WorkStatusAvailable, w.Status)
	assert.Equal(t, w.ID+".png", w.Image)
	exists, _ := afero.Exists(site.FS, "/site/images/available/"+w.Image)
	assert.True(t, exists)

	t.Run("validation", func(t *testing.T) {
		_, err := site.Content.CreateAvailableWork(ctx, model.AvailableWorkInput{ImagePath: "/in/work.PNG"})
		assert.True(t, store.IsValidation(err))

		_, err = site.Content.CreateAvailableWork(ctx, model.AvailableWorkInput{Title: "No image"})
		assert.True(t, store.IsValidation(err))

		_, err = site.Content.CreateAvailableWork(ctx, model.AvailableWorkInput{
			Title: "t", ImagePath: "/in/work.PNG", Status: "Lost",
		})
		assert.True(t, store.IsValidation(err))

		works, err := site.Content.AvailableWorks(ctx)
		require.NoError(t, err)
		assert.Len(t, works, 1)
	})

	t.Run("update keeps image unless replaced", func(t *testing.T) {
		upd, err := site.Content.UpdateAvailableWork(ctx, w.ID, model.AvailableWorkInput{
			Title: "Small Bronze", Status: model.WorkStatusSold,
		})
		require.NoError(t, err)
		assert.Equal(t, model.WorkStatusSold, upd.Record.Status)
		assert.Equal(t, w.Image, upd.Record.Image)
		assert.Empty(t, upd.Record.Price)

		upd, err = site.Content.UpdateAvailableWork(ctx, w.ID, model.AvailableWorkInput{
			Title: "Small Bronze", Status: model.WorkStatusSold, ImagePath: "/in/work2.jpg",
		})
		require.NoError(t, err)
		assert.Equal(t, w.ID+".jpg", upd.Record.Image)
	})

	t.Run("current image supplied again is kept intact", func(t *testing.T) {
		current := "/site/images/available/" + w.ID + ".jpg"
		upd, err := site.Content.UpdateAvailableWork(ctx, w.ID, model.AvailableWorkInput{
			Title: "Small Bronze", Status: model.WorkStatusSold, ImagePath: current,
		})
		require.NoError(t, err)
		assert.Len(t, upd.Warnings, 1)
		assert.Equal(t, w.ID+".jpg", upd.Record.Image)

		data, err := afero.ReadFile(site.FS, current)
		require.NoError(t, err)
		assert.Equal(t, "jpg", string(data))
	})

	t.Run("failed image copy warns", func(t *testing.T) {
		out, err := site.Content.CreateAvailableWork(ctx, model.AvailableWorkInput{
			Title: "Ghost", ImagePath: "/in/nothing.png",
		})
		require.NoError(t, err)
		assert.Len(t, out.Warnings, 1)
		assert.Empty(t, out.Record.Image)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, site.Content.DeleteAvailableWork(ctx, w.ID))
		works, err := site.Content.AvailableWorks(ctx)
		require.NoError(t, err)
		for _, got := range works {
			assert.NotEqual(t, w.ID, got.ID)
		}
		assert.True(t, errors.Is(site.Content.DeleteAvailableWork(ctx, w.ID), store.ErrNotFound))
	})
}

func TestContentStore_ConcurrentEdits(t *testing.T) {
	ctx := context.Background()
	site := testutil.NewTestSite(t, "")

	const n = 20
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := site.Content.CreateUpdate(ctx, fmt.Sprintf("Update %d", i), "body", "")
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			section := model.CVSectionNames[i%len(model.CVSectionNames)]
			assert.NoError(t, site.Content.UpdateCVSection(ctx, section, []string{fmt.Sprintf("item %d", i)}))
		}()
	}
	wg.Wait()

	updates, err := site.Content.Updates(ctx)
	require.NoError(t, err)
	assert.Len(t, updates, n)

	cv, err := site.Content.CV(ctx)
	require.NoError(t, err)
	assert.Len(t, cv.Sections, len(model.CVSectionNames))
}
