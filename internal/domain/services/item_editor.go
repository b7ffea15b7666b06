package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/threadline-app/threadline/internal/domain/entities"
	"github.com/threadline-app/threadline/internal/domain/ports"
)

// ErrMissingTitle is returned when an item is saved without a title.
var ErrMissingTitle = errors.New("item title is required")

// ItemRenderer is the projection surface for the item editor. The editor
// pushes state out through it; it never reads values back.
//
// A nil renderer is tolerated: state updates still happen and the missing
// surface is reported as a diagnostic, not a failure.
type ItemRenderer interface {
	// RenderForm projects the full form state onto the surface.
	RenderForm(form ItemForm)

	// RenderPictures re-renders the complete picture preview list. It is
	// called after every add or remove with the mutated list, never with a
	// partial update.
	RenderPictures(pictures []entities.Picture)
}

// ItemForm holds the editable fields of the item editor as typed values.
type ItemForm struct {
	Title       string
	Description string
	Content     string
	StoryID     string
	StoryTitle  string
	Year        int
	Subtick     int
	Tags        []string
	Pictures    []entities.Picture
}

// ItemEditor is one item editor session. The external window manager drives
// it through SetItem and SetPosition; the rest is user interaction.
type ItemEditor struct {
	host     ports.Host
	renderer ItemRenderer
	logger   *slog.Logger

	timelineID string
	current    *entities.Item
	form       ItemForm
	state      EditorState
}

// NewItemEditor creates an item editor session for a timeline.
func NewItemEditor(host ports.Host, renderer ItemRenderer, timelineID string, logger *slog.Logger) *ItemEditor {
	if logger == nil {
		logger = slog.Default()
	}
	return &ItemEditor{
		host:       host,
		renderer:   renderer,
		logger:     logger,
		timelineID: timelineID,
		state:      StateIdle,
	}
}

// SetItem replaces all transient editor state from the supplied item and
// refreshes the form surface. A nil item resets the editor to an empty
// creation form.
func (e *ItemEditor) SetItem(item *entities.Item) {
	if item == nil {
		e.current = nil
		e.form = ItemForm{}
		e.project()
		return
	}
	e.current = item
	e.form = ItemForm{
		Title:       item.Title,
		Description: item.Description,
		Content:     item.Content,
		StoryID:     item.StoryID,
		StoryTitle:  item.StoryTitle,
		Year:        item.Year,
		Subtick:     item.Subtick,
		Tags:        slices.Clone(item.Tags),
		Pictures:    slices.Clone(item.Pictures),
	}
	e.project()
}

// SetPosition sets state for creating a new item at the given position. It
// is independent of SetItem and does not touch the other fields.
func (e *ItemEditor) SetPosition(year, subtick int) {
	e.form.Year = year
	e.form.Subtick = subtick
	e.project()
}

// Form returns a copy of the current form state.
func (e *ItemEditor) Form() ItemForm {
	form := e.form
	form.Tags = slices.Clone(e.form.Tags)
	form.Pictures = slices.Clone(e.form.Pictures)
	return form
}

// IsEdit reports whether the session edits an existing item.
func (e *ItemEditor) IsEdit() bool {
	return e.current != nil
}

// SubmitEnabled reports whether the save control should be active.
func (e *ItemEditor) SubmitEnabled() bool {
	return e.state == StateIdle
}

// SetTitle records the title field.
func (e *ItemEditor) SetTitle(s string) { e.form.Title = s }

// SetDescription records the description field.
func (e *ItemEditor) SetDescription(s string) { e.form.Description = s }

// SetContent records the content field.
func (e *ItemEditor) SetContent(s string) { e.form.Content = s }

// SetTags records the tag list.
func (e *ItemEditor) SetTags(tags []string) { e.form.Tags = slices.Clone(tags) }

// AddPicture appends an attachment and re-renders the full preview list.
func (e *ItemEditor) AddPicture(pic entities.Picture) {
	e.form.Pictures = append(e.form.Pictures, pic)
	e.projectPictures()
}

// RemovePicture removes the attachment at index and re-renders the full
// preview list, so no stale indices survive. An out-of-range index is
// reported as a diagnostic and ignored.
func (e *ItemEditor) RemovePicture(index int) {
	if index < 0 || index >= len(e.form.Pictures) {
		e.logger.Warn("picture index out of range", "index", index, "count", len(e.form.Pictures))
		return
	}
	e.form.Pictures = append(e.form.Pictures[:index], e.form.Pictures[index+1:]...)
	e.projectPictures()
}

// ResolveStory resolves free-text story input to a story ID via host search.
// The first match wins; no match clears the story link but keeps the text.
func (e *ItemEditor) ResolveStory(ctx context.Context, query string) error {
	e.form.StoryTitle = query
	if query == "" {
		e.form.StoryID = ""
		return nil
	}
	stories, err := e.host.SearchStories(ctx, query, e.timelineID)
	if err != nil {
		return fmt.Errorf("searching stories: %w", err)
	}
	if len(stories) == 0 {
		e.form.StoryID = ""
		return nil
	}
	e.form.StoryID = stories[0].ID
	e.form.StoryTitle = stories[0].Title
	return nil
}

// ApplyStoryResults applies a pushed story-search-results notification using
// the same first-match rule as ResolveStory.
func (e *ItemEditor) ApplyStoryResults(stories []entities.Story) {
	if len(stories) == 0 {
		e.form.StoryID = ""
		return
	}
	e.form.StoryID = stories[0].ID
	e.form.StoryTitle = stories[0].Title
}

// CollectForm builds the flat item record the current form state describes.
// Together with SetItem it round-trips field values exactly.
func (e *ItemEditor) CollectForm() *entities.Item {
	item := &entities.Item{
		TimelineID:  e.timelineID,
		Title:       e.form.Title,
		Description: e.form.Description,
		Content:     e.form.Content,
		StoryID:     e.form.StoryID,
		StoryTitle:  e.form.StoryTitle,
		Year:        e.form.Year,
		Subtick:     e.form.Subtick,
		Tags:        slices.Clone(e.form.Tags),
		Pictures:    slices.Clone(e.form.Pictures),
	}
	if e.current != nil {
		item.ID = e.current.ID
		if e.current.TimelineID != "" {
			item.TimelineID = e.current.TimelineID
		}
	}
	return item
}

// Save validates required fields and forwards the collected record to the
// host. A transport failure returns the editor to idle with the form intact.
func (e *ItemEditor) Save(ctx context.Context) error {
	switch e.state {
	case StateClosed:
		return ErrEditorClosed
	case StateIdle:
	default:
		return ErrSubmitInFlight
	}

	e.state = StateValidating
	item := e.CollectForm()
	if item.Title == "" {
		e.state = StateIdle
		return ErrMissingTitle
	}

	e.state = StateSubmitting
	var err error
	if e.current != nil {
		err = e.host.UpdateItem(ctx, item.ID, item)
	} else {
		err = e.host.CreateItem(ctx, item)
	}
	if err != nil {
		e.state = StateIdle
		return fmt.Errorf("saving item: %w", err)
	}

	e.state = StateClosed
	return nil
}

// Cancel ends the session with no side effect, regardless of unsaved edits.
// No confirmation is asked; that is current product behavior.
func (e *ItemEditor) Cancel() {
	e.state = StateClosed
}

func (e *ItemEditor) project() {
	if e.renderer == nil {
		e.logger.Warn("item editor has no render surface, state updated without projection")
		return
	}
	e.renderer.RenderForm(e.Form())
	e.renderer.RenderPictures(slices.Clone(e.form.Pictures))
}

func (e *ItemEditor) projectPictures() {
	if e.renderer == nil {
		e.logger.Warn("item editor has no render surface, state updated without projection")
		return
	}
	e.renderer.RenderPictures(slices.Clone(e.form.Pictures))
}
