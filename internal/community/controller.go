package community

import (
	"context"
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"github.com/handiism/vinyl-vault/internal/logging"
	"github.com/handiism/vinyl-vault/internal/model"
	"github.com/handiism/vinyl-vault/internal/reviews"
)

// AlbumSource lists every user's albums.
type AlbumSource interface {
	ListPublicAlbums(ctx context.Context) ([]model.Album, error)
}

// Controller is the state behind the community view.
type Controller struct {
	src  AlbumSource
	book *reviews.Book
	log  zerolog.Logger

	mu      sync.Mutex
	loaded  bool
	loading bool
	loadErr error
	albums  []model.Album
	query   string
}

// NewController creates a Controller.
func NewController(src AlbumSource, book *reviews.Book) *Controller {
	return &Controller{
		src:  src,
		book: book,
		log:  logging.Component("community"),
	}
}

// Load fetches the public albums the first time it is called. Later calls
// are no-ops unless the previous fetch failed.
func (c *Controller) Load(ctx context.Context) error {
	c.mu.Lock()
	if c.loaded {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()
	return c.Reload(ctx)
}

// Reload fetches the public albums unconditionally.
func (c *Controller) Reload(ctx context.Context) error {
	c.mu.Lock()
	c.loading = true
	c.mu.Unlock()

	albums, err := c.src.ListPublicAlbums(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	if err != nil {
		c.loadErr = err
		c.log.Warn().Err(err).Msg("load public albums")
		return err
	}
	c.loaded = true
	c.loadErr = nil
	c.albums = albums
	return nil
}

// Status reports whether the albums are loaded, a fetch is running, and the
// last fetch error.
func (c *Controller) Status() (loaded, loading bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded, c.loading, c.loadErr
}

// Albums returns every loaded album.
func (c *Controller) Albums() []model.Album {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.albums)
}

// SetQuery changes the filter. It never triggers a fetch.
func (c *Controller) SetQuery(q string) {
	c.mu.Lock()
	c.query = q
	c.mu.Unlock()
}

// Query returns the current filter.
func (c *Controller) Query() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query
}

// Filtered returns the albums matching the current filter.
func (c *Controller) Filtered() []model.Album {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(Filter(c.albums, c.query))
}

// Groups returns the filtered albums grouped by owner.
func (c *Controller) Groups() []Group {
	return GroupByOwner(c.Filtered())
}

// Reviews returns the review book of this view.
func (c *Controller) Reviews() *reviews.Book {
	return c.book
}
