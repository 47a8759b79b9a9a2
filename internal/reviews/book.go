package reviews

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/handiism/vinyl-vault/internal/logging"
	"github.com/handiism/vinyl-vault/internal/model"
)

var (
	// ErrNotSignedIn is returned when authoring requires a session.
	ErrNotSignedIn = errors.New("sign in to write reviews")

	// ErrNotReviewer is returned when deleting someone else's review.
	ErrNotReviewer = errors.New("only the author can delete this review")

	// ErrNothingPending is returned when confirming with no pending action.
	ErrNothingPending = errors.New("nothing to confirm")

	// ErrUnknownReview is returned for a review id that is not cached.
	ErrUnknownReview = errors.New("review not found")
)

// Service is the remote review API.
type Service interface {
	ListReviews(ctx context.Context, albumID string) ([]model.Review, error)
	CreateReview(ctx context.Context, in model.ReviewInput) (model.Review, error)
	DeleteReview(ctx context.Context, id string) error
}

// UserSource reports the signed-in user.
type UserSource interface {
	CurrentUser() (model.User, bool)
}

// Book caches reviews per album and tracks which album's reviews are shown.
//
// An album with no cache entry has not been fetched yet; an entry with an
// empty slice has been fetched and has no reviews. At most one album is
// expanded at a time.
type Book struct {
	svc   Service
	users UserSource
	group singleflight.Group
	log   zerolog.Logger

	mu       sync.Mutex
	cache    map[string][]model.Review
	expanded string
	pending  *model.Review
}

// NewBook creates an empty Book.
func NewBook(svc Service, users UserSource) *Book {
	return &Book{
		svc:   svc,
		users: users,
		log:   logging.Component("reviews"),
		cache: make(map[string][]model.Review),
	}
}

// Toggle expands albumID, or collapses it if it is already expanded.
//
// It reports whether the album is now expanded without cached reviews, in
// which case the caller should Fetch them. Toggling never refetches.
func (b *Book) Toggle(albumID string) (needsFetch bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.expanded == albumID {
		b.expanded = ""
		return false
	}
	b.expanded = albumID
	_, cached := b.cache[albumID]
	return !cached
}

// Expand shows albumID's reviews, fetching them on first use.
func (b *Book) Expand(ctx context.Context, albumID string) ([]model.Review, error) {
	b.mu.Lock()
	b.expanded = albumID
	reviews, cached := b.cache[albumID]
	b.mu.Unlock()

	if cached {
		return slices.Clone(reviews), nil
	}
	return b.Fetch(ctx, albumID)
}

// Collapse hides the expanded album.
func (b *Book) Collapse() {
	b.mu.Lock()
	b.expanded = ""
	b.mu.Unlock()
}

// Expanded returns the expanded album id, or "".
func (b *Book) Expanded() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.expanded
}

// Fetch loads albumID's reviews from the server and caches them.
//
// Concurrent fetches of the same album share one request. On failure the
// cache is left as it was.
func (b *Book) Fetch(ctx context.Context, albumID string) ([]model.Review, error) {
	v, err, _ := b.group.Do(albumID, func() (any, error) {
		reviews, err := b.svc.ListReviews(ctx, albumID)
		if err != nil {
			return nil, err
		}
		if reviews == nil {
			reviews = []model.Review{}
		}

		b.mu.Lock()
		b.cache[albumID] = reviews
		b.mu.Unlock()
		return reviews, nil
	})
	if err != nil {
		b.log.Warn().Err(err).Str("album", albumID).Msg("fetch reviews")
		return nil, err
	}
	return slices.Clone(v.([]model.Review)), nil
}

// refetch always issues a new request, even if a fetch is in flight.
func (b *Book) refetch(ctx context.Context, albumID string) error {
	b.group.Forget(albumID)
	_, err := b.Fetch(ctx, albumID)
	return err
}

// Reviews returns the cached reviews of albumID and whether they have been
// fetched.
func (b *Book) Reviews(albumID string) ([]model.Review, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	reviews, ok := b.cache[albumID]
	return slices.Clone(reviews), ok
}

// Average returns the mean rating of albumID's cached reviews.
func (b *Book) Average(albumID string) (float64, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return model.AverageRating(b.cache[albumID])
}

// Create posts a review and then refetches that album's reviews once.
func (b *Book) Create(ctx context.Context, in model.ReviewInput) error {
	if _, ok := b.users.CurrentUser(); !ok {
		return ErrNotSignedIn
	}

	in = in.Normalize()
	if err := model.Validate(in); err != nil {
		return err
	}

	if _, err := b.svc.CreateReview(ctx, in); err != nil {
		return err
	}
	return b.refetch(ctx, in.AlbumID)
}

// CanDelete reports whether the signed-in user wrote r.
func (b *Book) CanDelete(r model.Review) bool {
	user, ok := b.users.CurrentUser()
	return ok && r.AuthoredBy(user.ID)
}

// RequestDelete marks a review for deletion. Nothing is sent until
// ConfirmDelete.
func (b *Book) RequestDelete(albumID, reviewID string) (model.Review, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	idx := slices.IndexFunc(b.cache[albumID], func(r model.Review) bool { return r.ID == reviewID })
	if idx < 0 {
		return model.Review{}, ErrUnknownReview
	}
	review := b.cache[albumID][idx]

	user, ok := b.users.CurrentUser()
	if !ok {
		return model.Review{}, ErrNotSignedIn
	}
	if !review.AuthoredBy(user.ID) {
		return model.Review{}, ErrNotReviewer
	}

	review.AlbumID = albumID
	b.pending = &review
	return review, nil
}

// Pending returns the review awaiting confirmation.
func (b *Book) Pending() (model.Review, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.pending == nil {
		return model.Review{}, false
	}
	return *b.pending, true
}

// CancelDelete discards the pending deletion.
func (b *Book) CancelDelete() {
	b.mu.Lock()
	b.pending = nil
	b.mu.Unlock()
}

// ConfirmDelete deletes the pending review and refetches its album's reviews.
func (b *Book) ConfirmDelete(ctx context.Context) error {
	b.mu.Lock()
	pending := b.pending
	b.pending = nil
	b.mu.Unlock()

	if pending == nil {
		return ErrNothingPending
	}

	if err := b.svc.DeleteReview(ctx, pending.ID); err != nil {
		return err
	}
	return b.refetch(ctx, pending.AlbumID)
}

// Forget drops the cached reviews of albumID.
func (b *Book) Forget(albumID string) {
	b.mu.Lock()
	delete(b.cache, albumID)
	if b.expanded == albumID {
		b.expanded = ""
	}
	b.mu.Unlock()
}

// Reset drops every cached review.
func (b *Book) Reset() {
	b.mu.Lock()
	clear(b.cache)
	b.expanded = ""
	b.pending = nil
	b.mu.Unlock()
}
