package collection

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/handiism/vinyl-vault/internal/logging"
	"github.com/handiism/vinyl-vault/internal/model"
	"github.com/handiism/vinyl-vault/internal/reviews"
)

var (
	// ErrNotOwner is returned when editing or deleting another user's album.
	ErrNotOwner = errors.New("only the owner can change this album")

	// ErrFormClosed is returned when the album form is not open.
	ErrFormClosed = errors.New("album form is not open")

	// ErrUnknownAlbum is returned for an album id that is not in the list.
	ErrUnknownAlbum = errors.New("album not found")

	// ErrArtworkNeedsFields is returned when searching artwork without an
	// artist and a title.
	ErrArtworkNeedsFields = errors.New("enter an artist and a title to search for artwork")
)

// AlbumService is the remote album API.
type AlbumService interface {
	ListAlbums(ctx context.Context) ([]model.Album, error)
	CreateAlbum(ctx context.Context, in model.AlbumInput) (model.Album, error)
	UpdateAlbum(ctx context.Context, id string, in model.AlbumInput) (model.Album, error)
	DeleteAlbum(ctx context.Context, id string) error
}

// ArtworkFinder suggests cover images.
type ArtworkFinder interface {
	Search(ctx context.Context, artist, title string) []model.ArtworkCandidate
}

// State is the load state of the album list.
type State int

const (
	NotFetched State = iota
	Loading
	Ready
	Failed
)

func (s State) String() string {
	switch s {
	case NotFetched:
		return "not fetched"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// FormMode says what the album form is doing.
type FormMode int

const (
	FormClosed FormMode = iota
	FormCreate
	FormEdit
)

// Form is the state of the add/edit album form.
type Form struct {
	Mode FormMode

	// EditingID is the album being edited in FormEdit mode.
	EditingID string

	Input model.AlbumInput

	// Suggestions holds the last artwork search results. They are only
	// applied through ApplyArtwork.
	Suggestions []model.ArtworkCandidate
}

// Controller is the state behind the "My Collection" view.
type Controller struct {
	albums  AlbumService
	artwork ArtworkFinder
	users   reviews.UserSource
	book    *reviews.Book
	log     zerolog.Logger

	mu      sync.Mutex
	state   State
	items   []model.Album
	loadErr error
	form    Form
	pending *model.Album
}

// NewController creates a Controller. artwork may be nil to disable
// suggestions.
func NewController(albums AlbumService, artwork ArtworkFinder, users reviews.UserSource, book *reviews.Book) *Controller {
	return &Controller{
		albums:  albums,
		artwork: artwork,
		users:   users,
		book:    book,
		log:     logging.Component("collection"),
	}
}

// Load fetches the full album list.
//
// On failure the list is dropped and the state becomes Failed; calling Load
// again retries.
func (c *Controller) Load(ctx context.Context) error {
	c.mu.Lock()
	c.state = Loading
	c.mu.Unlock()

	albums, err := c.albums.ListAlbums(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.state = Failed
		c.items = nil
		c.loadErr = err
		c.log.Warn().Err(err).Msg("load albums")
		return err
	}
	c.state = Ready
	c.items = albums
	c.loadErr = nil
	return nil
}

// State returns the load state and, when Failed, the cause.
func (c *Controller) State() (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state, c.loadErr
}

// Albums returns the cached albums.
func (c *Controller) Albums() []model.Album {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.items)
}

// Album returns one cached album.
func (c *Controller) Album(id string) (model.Album, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.find(id)
}

func (c *Controller) find(id string) (model.Album, bool) {
	idx := slices.IndexFunc(c.items, func(a model.Album) bool { return a.ID == id })
	if idx < 0 {
		return model.Album{}, false
	}
	return c.items[idx], true
}

// CanEdit reports whether the signed-in user owns album.
func (c *Controller) CanEdit(album model.Album) bool {
	user, ok := c.users.CurrentUser()
	return ok && album.OwnedBy(user.ID)
}

// OpenCreate opens an empty form.
func (c *Controller) OpenCreate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.form = Form{Mode: FormCreate}
}

// OpenEdit opens the form prefilled with an album the user owns.
func (c *Controller) OpenEdit(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	album, ok := c.find(id)
	if !ok {
		return ErrUnknownAlbum
	}
	if !c.CanEdit(album) {
		return ErrNotOwner
	}
	c.form = Form{Mode: FormEdit, EditingID: id, Input: model.AlbumInputFrom(album)}
	return nil
}

// Form returns the form state and whether it is open.
func (c *Controller) Form() (Form, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	f := c.form
	f.Suggestions = slices.Clone(f.Suggestions)
	return f, f.Mode != FormClosed
}

// SetForm replaces the form input.
func (c *Controller) SetForm(in model.AlbumInput) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.form.Mode == FormClosed {
		return ErrFormClosed
	}
	c.form.Input = in
	return nil
}

// CloseForm discards the form.
func (c *Controller) CloseForm() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.form = Form{}
}

// Submit validates the form and creates or updates the album.
//
// On success the form is closed and the list is refetched. A failed
// refetch is reported through State, not as a Submit error, since the
// album itself was saved. On failure the form stays open.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	form := c.form
	c.mu.Unlock()

	if form.Mode == FormClosed {
		return ErrFormClosed
	}

	in := form.Input.Normalize()
	if err := model.Validate(in); err != nil {
		return err
	}

	var err error
	if form.Mode == FormEdit {
		_, err = c.albums.UpdateAlbum(ctx, form.EditingID, in)
	} else {
		_, err = c.albums.CreateAlbum(ctx, in)
	}
	if err != nil {
		return err
	}

	c.CloseForm()
	// A failed refetch is reported through State.
	if err := c.Load(ctx); err != nil {
		c.log.Debug().Err(err).Msg("refetch after save failed")
	}
	return nil
}

// RequestDelete marks an album for deletion. Nothing is sent until
// ConfirmDelete.
func (c *Controller) RequestDelete(id string) (model.Album, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	album, ok := c.find(id)
	if !ok {
		return model.Album{}, ErrUnknownAlbum
	}
	if !c.CanEdit(album) {
		return model.Album{}, ErrNotOwner
	}
	c.pending = &album
	return album, nil
}

// PendingDelete returns the album awaiting confirmation.
func (c *Controller) PendingDelete() (model.Album, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		return model.Album{}, false
	}
	return *c.pending, true
}

// CancelDelete discards the pending deletion.
func (c *Controller) CancelDelete() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = nil
}

// ConfirmDelete deletes the pending album.
//
// On success only that album is removed from the list; there is no
// refetch. On failure the list is left untouched.
func (c *Controller) ConfirmDelete(ctx context.Context) error {
	c.mu.Lock()
	pending := c.pending
	c.pending = nil
	c.mu.Unlock()

	if pending == nil {
		return reviews.ErrNothingPending
	}

	if err := c.albums.DeleteAlbum(ctx, pending.ID); err != nil {
		return err
	}

	c.mu.Lock()
	c.items = slices.DeleteFunc(c.items, func(a model.Album) bool { return a.ID == pending.ID })
	c.mu.Unlock()

	c.book.Forget(pending.ID)
	return nil
}

// SuggestArtwork searches covers for the form's artist and title and keeps
// the results in the form.
func (c *Controller) SuggestArtwork(ctx context.Context) ([]model.ArtworkCandidate, error) {
	c.mu.Lock()
	form := c.form
	c.mu.Unlock()

	if form.Mode == FormClosed {
		return nil, ErrFormClosed
	}
	artist := strings.TrimSpace(form.Input.Artist)
	title := strings.TrimSpace(form.Input.Title)
	if artist == "" || title == "" {
		return nil, ErrArtworkNeedsFields
	}
	if c.artwork == nil {
		return nil, nil
	}

	candidates := c.artwork.Search(ctx, artist, title)

	c.mu.Lock()
	if c.form.Mode != FormClosed {
		c.form.Suggestions = candidates
	}
	c.mu.Unlock()

	return slices.Clone(candidates), nil
}

// ApplyArtwork copies a picked candidate's URL into the form.
func (c *Controller) ApplyArtwork(candidate model.ArtworkCandidate) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.form.Mode == FormClosed {
		return ErrFormClosed
	}
	c.form.Input.CoverImage = candidate.ArtworkURL
	return nil
}

// Reviews returns the review book of this view.
func (c *Controller) Reviews() *reviews.Book {
	return c.book
}

// PrefetchReviews loads the reviews of every cached album, at most limit at
// a time. Each album ends with exactly one LevelSuccess or LevelWarning
// event; failures for single albums do not stop the others.
func (c *Controller) PrefetchReviews(ctx context.Context, limit int, onProgress func(ProgressEvent)) error {
	if onProgress == nil {
		onProgress = func(ProgressEvent) {}
	}
	if limit <= 0 {
		limit = 1
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for _, album := range c.Albums() {
		g.Go(func() error {
			onProgress(ProgressEvent{Message: fmt.Sprintf("Fetching reviews: %s", album.Title), Level: LevelVerbose})
			if _, err := c.book.Fetch(ctx, album.ID); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				onProgress(ProgressEvent{Message: fmt.Sprintf("Error fetching reviews for %s: %v", album.Title, err), Level: LevelWarning})
				return nil
			}
			onProgress(ProgressEvent{Message: fmt.Sprintf("Reviews loaded: %s", album.Title), Level: LevelSuccess})
			return nil
		})
	}

	return g.Wait()
}

// Reset forgets everything, for use after sign-out.
func (c *Controller) Reset() {
	c.mu.Lock()
	c.state = NotFetched
	c.items = nil
	c.loadErr = nil
	c.form = Form{}
	c.pending = nil
	c.mu.Unlock()

	c.book.Reset()
}
