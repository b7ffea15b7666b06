package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/threadline-app/threadline/internal/domain/entities"
	"github.com/threadline-app/threadline/internal/domain/mocks"
)

// captureRenderer records every projection for assertions.
type captureRenderer struct {
	forms        []ItemForm
	pictureLists [][]entities.Picture
}

func (r *captureRenderer) RenderForm(form ItemForm) {
	r.forms = append(r.forms, form)
}

func (r *captureRenderer) RenderPictures(pictures []entities.Picture) {
	r.pictureLists = append(r.pictureLists, pictures)
}

func (r *captureRenderer) lastPictures() []entities.Picture {
	if len(r.pictureLists) == 0 {
		return nil
	}
	return r.pictureLists[len(r.pictureLists)-1]
}

func testItem() *entities.Item {
	return &entities.Item{
		ID:          "item-1",
		TimelineID:  "tl-1",
		Title:       "The siege begins",
		Description: "Northern walls",
		Content:     "A long night.",
		StoryID:     "story-1",
		StoryTitle:  "The Long Winter",
		Year:        312,
		Subtick:     4,
		Tags:        []string{"war", "siege"},
		Pictures: []entities.Picture{
			{Name: "walls.png", MediaType: "image/png", Data: "aGVsbG8=", Size: 5},
		},
	}
}

func TestItemEditor_SetItem(t *testing.T) {
	t.Run("replaces all transient state", func(t *testing.T) {
		renderer := &captureRenderer{}
		editor := NewItemEditor(mocks.NewHost(), renderer, "tl-1", nil)

		editor.SetTitle("leftover")
		editor.SetPosition(999, 9)

		editor.SetItem(testItem())

		form := editor.Form()
		assert.Equal(t, "The siege begins", form.Title)
		assert.Equal(t, 312, form.Year)
		assert.Equal(t, 4, form.Subtick)
		assert.Equal(t, []string{"war", "siege"}, form.Tags)
		assert.Len(t, form.Pictures, 1)
		assert.True(t, editor.IsEdit())

		require.NotEmpty(t, renderer.forms)
		assert.Equal(t, "The siege begins", renderer.forms[len(renderer.forms)-1].Title)
	})

	t.Run("nil item resets to empty creation form", func(t *testing.T) {
		editor := NewItemEditor(mocks.NewHost(), &captureRenderer{}, "tl-1", nil)
		editor.SetItem(testItem())
		editor.SetItem(nil)

		assert.Equal(t, ItemForm{}, editor.Form())
		assert.False(t, editor.IsEdit())
	})

	t.Run("missing render surface is tolerated", func(t *testing.T) {
		editor := NewItemEditor(mocks.NewHost(), nil, "tl-1", nil)
		editor.SetItem(testItem())
		assert.Equal(t, "The siege begins", editor.Form().Title)
	})
}

func TestItemEditor_SetPosition(t *testing.T) {
	editor := NewItemEditor(mocks.NewHost(), &captureRenderer{}, "tl-1", nil)

	editor.SetTitle("kept")
	editor.SetPosition(100, 2)

	form := editor.Form()
	assert.Equal(t, 100, form.Year)
	assert.Equal(t, 2, form.Subtick)
	assert.Equal(t, "kept", form.Title, "position is independent of the other fields")
}

func TestItemEditor_Pictures(t *testing.T) {
	pic := func(name string) entities.Picture {
		return entities.Picture{Name: name, MediaType: "image/png", Data: "aGVsbG8=", Size: 5}
	}

	t.Run("add re-renders the full list", func(t *testing.T) {
		renderer := &captureRenderer{}
		editor := NewItemEditor(mocks.NewHost(), renderer, "tl-1", nil)

		editor.AddPicture(pic("one.png"))
		editor.AddPicture(pic("two.png"))

		last := renderer.lastPictures()
		require.Len(t, last, 2)
		assert.Equal(t, "one.png", last[0].Name)
		assert.Equal(t, "two.png", last[1].Name)
	})

	t.Run("remove by index reflects the mutated list exactly", func(t *testing.T) {
		renderer := &captureRenderer{}
		editor := NewItemEditor(mocks.NewHost(), renderer, "tl-1", nil)

		editor.AddPicture(pic("one.png"))
		editor.AddPicture(pic("two.png"))
		editor.AddPicture(pic("three.png"))

		editor.RemovePicture(1)

		last := renderer.lastPictures()
		require.Len(t, last, 2)
		assert.Equal(t, "one.png", last[0].Name)
		assert.Equal(t, "three.png", last[1].Name)
	})

	t.Run("out of range removal is ignored", func(t *testing.T) {
		renderer := &captureRenderer{}
		editor := NewItemEditor(mocks.NewHost(), renderer, "tl-1", nil)
		editor.AddPicture(pic("one.png"))

		renders := len(renderer.pictureLists)
		editor.RemovePicture(5)
		editor.RemovePicture(-1)

		assert.Len(t, editor.Form().Pictures, 1)
		assert.Len(t, renderer.pictureLists, renders, "no re-render for a no-op")
	})
}

func TestItemEditor_ResolveStory(t *testing.T) {
	ctx := context.Background()

	t.Run("first match wins", func(t *testing.T) {
		host := mocks.NewHost()
		host.Stories = []entities.Story{
			{ID: "story-1", Title: "The Long Winter"},
			{ID: "story-2", Title: "The Longer Winter"},
		}
		editor := NewItemEditor(host, &captureRenderer{}, "tl-1", nil)

		require.NoError(t, editor.ResolveStory(ctx, "winter"))
		form := editor.Form()
		assert.Equal(t, "story-1", form.StoryID)
		assert.Equal(t, "The Long Winter", form.StoryTitle)
		assert.Equal(t, "winter", host.LastSearch)
	})

	t.Run("no match clears the link but keeps the text", func(t *testing.T) {
		host := mocks.NewHost()
		editor := NewItemEditor(host, &captureRenderer{}, "tl-1", nil)
		editor.ApplyStoryResults([]entities.Story{{ID: "story-1", Title: "x"}})

		require.NoError(t, editor.ResolveStory(ctx, "nothing here"))
		form := editor.Form()
		assert.Empty(t, form.StoryID)
		assert.Equal(t, "nothing here", form.StoryTitle)
	})

	t.Run("search failure propagates", func(t *testing.T) {
		host := mocks.NewHost()
		host.SearchErr = errors.New("host down")
		editor := NewItemEditor(host, &captureRenderer{}, "tl-1", nil)

		err := editor.ResolveStory(ctx, "winter")
		require.Error(t, err)
	})
}

func TestItemEditor_RoundTrip(t *testing.T) {
	// SetItem followed by CollectForm reproduces identical field values.
	original := testItem()
	editor := NewItemEditor(mocks.NewHost(), &captureRenderer{}, "tl-1", nil)
	editor.SetItem(original)

	collected := editor.CollectForm()
	assert.Equal(t, original.ID, collected.ID)
	assert.Equal(t, original.TimelineID, collected.TimelineID)
	assert.Equal(t, original.Title, collected.Title)
	assert.Equal(t, original.Description, collected.Description)
	assert.Equal(t, original.Content, collected.Content)
	assert.Equal(t, original.StoryID, collected.StoryID)
	assert.Equal(t, original.StoryTitle, collected.StoryTitle)
	assert.Equal(t, original.Year, collected.Year)
	assert.Equal(t, original.Subtick, collected.Subtick)
	assert.Equal(t, original.Tags, collected.Tags)
	assert.Equal(t, original.Pictures, collected.Pictures)
}

func TestItemEditor_Save(t *testing.T) {
	ctx := context.Background()

	t.Run("missing title blocks the save", func(t *testing.T) {
		host := mocks.NewHost()
		editor := NewItemEditor(host, &captureRenderer{}, "tl-1", nil)
		editor.SetPosition(10, 0)

		err := editor.Save(ctx)
		assert.ErrorIs(t, err, ErrMissingTitle)
		assert.True(t, editor.SubmitEnabled())
		assert.Empty(t, host.CreatedItems)
	})

	t.Run("new item goes through create", func(t *testing.T) {
		host := mocks.NewHost()
		editor := NewItemEditor(host, &captureRenderer{}, "tl-1", nil)
		editor.SetPosition(10, 3)
		editor.SetTitle("Coronation")

		require.NoError(t, editor.Save(ctx))
		require.Len(t, host.CreatedItems, 1)
		assert.Equal(t, "Coronation", host.CreatedItems[0].Title)
		assert.Equal(t, 10, host.CreatedItems[0].Year)
		assert.Equal(t, "tl-1", host.CreatedItems[0].TimelineID)
		assert.False(t, editor.SubmitEnabled())
	})

	t.Run("existing item goes through update", func(t *testing.T) {
		host := mocks.NewHost()
		editor := NewItemEditor(host, &captureRenderer{}, "tl-1", nil)
		editor.SetItem(testItem())
		editor.SetTitle("The siege ends")

		require.NoError(t, editor.Save(ctx))
		require.Contains(t, host.UpdatedItems, "item-1")
		assert.Equal(t, "The siege ends", host.UpdatedItems["item-1"].Title)
		assert.Empty(t, host.CreatedItems)
	})

	t.Run("transport failure re-enables the form", func(t *testing.T) {
		host := mocks.NewHost()
		host.CreateItemErr = errors.New("no space left")
		editor := NewItemEditor(host, &captureRenderer{}, "tl-1", nil)
		editor.SetTitle("Coronation")

		err := editor.Save(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no space left")
		assert.True(t, editor.SubmitEnabled())
		assert.Equal(t, "Coronation", editor.Form().Title)
	})

	t.Run("save after cancel fails", func(t *testing.T) {
		editor := NewItemEditor(mocks.NewHost(), &captureRenderer{}, "tl-1", nil)
		editor.SetTitle("Coronation")
		editor.Cancel()

		err := editor.Save(ctx)
		assert.ErrorIs(t, err, ErrEditorClosed)
	})
}
