package collection

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handiism/vinyl-vault/internal/model"
	"github.com/handiism/vinyl-vault/internal/reviews"
)

type fakeAlbums struct {
	mu      sync.Mutex
	albums  []model.Album
	listErr error
	saveErr error
	delErr  error
	lists   int
	created []model.AlbumInput
	updated map[string]model.AlbumInput
	deleted []string
}

func (f *fakeAlbums) ListAlbums(context.Context) ([]model.Album, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]model.Album(nil), f.albums...), nil
}

func (f *fakeAlbums) CreateAlbum(_ context.Context, in model.AlbumInput) (model.Album, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return model.Album{}, f.saveErr
	}
	f.created = append(f.created, in)
	a := model.Album{ID: "new", Title: in.Title, Artist: in.Artist, Year: in.Year, Owner: model.UserRef{ID: "u1"}}
	f.albums = append(f.albums, a)
	return a, nil
}

func (f *fakeAlbums) UpdateAlbum(_ context.Context, id string, in model.AlbumInput) (model.Album, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return model.Album{}, f.saveErr
	}
	if f.updated == nil {
		f.updated = map[string]model.AlbumInput{}
	}
	f.updated[id] = in
	return model.Album{ID: id}, nil
}

func (f *fakeAlbums) DeleteAlbum(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.delErr != nil {
		return f.delErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeReviews struct {
	mu     sync.Mutex
	listed []string
	fail   map[string]bool
}

func (f *fakeReviews) ListReviews(_ context.Context, albumID string) ([]model.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listed = append(f.listed, albumID)
	if f.fail[albumID] {
		return nil, errors.New("boom")
	}
	return []model.Review{}, nil
}

func (f *fakeReviews) CreateReview(context.Context, model.ReviewInput) (model.Review, error) {
	return model.Review{}, nil
}

func (f *fakeReviews) DeleteReview(context.Context, string) error { return nil }

type fakeUsers struct{ id string }

func (f fakeUsers) CurrentUser() (model.User, bool) {
	if f.id == "" {
		return model.User{}, false
	}
	return model.User{ID: f.id}, true
}

type fakeArtwork struct {
	results []model.ArtworkCandidate
	calls   int
}

func (f *fakeArtwork) Search(context.Context, string, string) []model.ArtworkCandidate {
	f.calls++
	return f.results
}

func seedAlbums() []model.Album {
	return []model.Album{
		{ID: "a1", Title: "OK Computer", Artist: "Radiohead", Year: 1997, Owner: model.UserRef{ID: "u1", Username: "alice"}},
		{ID: "a2", Title: "Blue", Artist: "Joni Mitchell", Year: 1971, Owner: model.UserRef{ID: "u1"}},
		{ID: "a3", Title: "Other", Artist: "Someone", Year: 2000, Owner: model.UserRef{ID: "u2"}},
	}
}

func newController(t *testing.T, albums *fakeAlbums, art ArtworkFinder) *Controller {
	t.Helper()
	users := fakeUsers{id: "u1"}
	c := NewController(albums, art, users, reviews.NewBook(&fakeReviews{}, users))
	return c
}

func TestController_LoadStates(t *testing.T) {
	svc := &fakeAlbums{albums: seedAlbums()}
	c := newController(t, svc, nil)
	ctx := context.Background()

	state, _ := c.State()
	assert.Equal(t, NotFetched, state)

	require.NoError(t, c.Load(ctx))
	state, err := c.State()
	assert.Equal(t, Ready, state)
	assert.NoError(t, err)
	assert.Len(t, c.Albums(), 3)

	svc.listErr = errors.New("server down")
	require.Error(t, c.Load(ctx))
	state, err = c.State()
	assert.Equal(t, Failed, state)
	assert.EqualError(t, err, "server down")
	assert.Empty(t, c.Albums(), "no partial list after a failure")

	svc.listErr = nil
	require.NoError(t, c.Load(ctx))
	assert.Len(t, c.Albums(), 3)
}

func TestController_DeleteRemovesOnlyThatAlbum(t *testing.T) {
	svc := &fakeAlbums{albums: seedAlbums()}
	c := newController(t, svc, nil)
	ctx := context.Background()
	require.NoError(t, c.Load(ctx))
	listsBefore := svc.lists

	_, err := c.RequestDelete("a1")
	require.NoError(t, err)
	require.NoError(t, c.ConfirmDelete(ctx))

	var ids []string
	for _, a := range c.Albums() {
		ids = append(ids, a.ID)
	}
	assert.Equal(t, []string{"a2", "a3"}, ids)
	assert.Equal(t, []string{"a1"}, svc.deleted)
	assert.Equal(t, listsBefore, svc.lists, "no refetch after delete")
}

func TestController_FailedDeleteLeavesCacheUnchanged(t *testing.T) {
	svc := &fakeAlbums{albums: seedAlbums(), delErr: errors.New("nope")}
	c := newController(t, svc, nil)
	ctx := context.Background()
	require.NoError(t, c.Load(ctx))
	before := c.Albums()

	_, err := c.RequestDelete("a2")
	require.NoError(t, err)
	assert.Error(t, c.ConfirmDelete(ctx))
	assert.Equal(t, before, c.Albums())
}

func TestController_DeleteNeedsConfirmationAndOwnership(t *testing.T) {
	svc := &fakeAlbums{albums: seedAlbums()}
	c := newController(t, svc, nil)
	ctx := context.Background()
	require.NoError(t, c.Load(ctx))

	_, err := c.RequestDelete("a3")
	assert.ErrorIs(t, err, ErrNotOwner)
	_, err = c.RequestDelete("zzz")
	assert.ErrorIs(t, err, ErrUnknownAlbum)

	_, err = c.RequestDelete("a1")
	require.NoError(t, err)
	pending, ok := c.PendingDelete()
	require.True(t, ok)
	assert.Equal(t, "a1", pending.ID)

	c.CancelDelete()
	assert.ErrorIs(t, c.ConfirmDelete(ctx), reviews.ErrNothingPending)
	assert.Empty(t, svc.deleted)
	assert.Len(t, c.Albums(), 3)
}

func TestController_CreateClosesFormAndRefetches(t *testing.T) {
	svc := &fakeAlbums{albums: seedAlbums()}
	c := newController(t, svc, nil)
	ctx := context.Background()
	require.NoError(t, c.Load(ctx))

	assert.ErrorIs(t, c.Submit(ctx), ErrFormClosed)

	c.OpenCreate()
	require.NoError(t, c.SetForm(model.AlbumInput{Title: " Kid A ", Artist: "Radiohead", Year: 2000}))
	require.NoError(t, c.Submit(ctx))

	_, open := c.Form()
	assert.False(t, open)
	assert.Equal(t, "Kid A", svc.created[0].Title)
	assert.Equal(t, 2, svc.lists)
	assert.Len(t, c.Albums(), 4)
}

func TestController_SubmitRefetchFailureShowsInState(t *testing.T) {
	svc := &fakeAlbums{albums: seedAlbums()}
	c := newController(t, svc, nil)
	ctx := context.Background()
	require.NoError(t, c.Load(ctx))

	c.OpenCreate()
	require.NoError(t, c.SetForm(model.AlbumInput{Title: "Kid A", Artist: "Radiohead", Year: 2000}))
	svc.mu.Lock()
	svc.listErr = errors.New("boom")
	svc.mu.Unlock()

	require.NoError(t, c.Submit(ctx))
	_, open := c.Form()
	assert.False(t, open)
	state, err := c.State()
	assert.Equal(t, Failed, state)
	assert.EqualError(t, err, "boom")
	assert.Len(t, svc.created, 1)
}

func TestController_SubmitValidationKeepsFormOpen(t *testing.T) {
	svc := &fakeAlbums{}
	c := newController(t, svc, nil)
	c.OpenCreate()
	require.NoError(t, c.SetForm(model.AlbumInput{Title: "x"}))

	err := c.Submit(context.Background())
	assert.ErrorIs(t, err, model.ErrValidation)
	_, open := c.Form()
	assert.True(t, open)
	assert.Empty(t, svc.created)
}

func TestController_SubmitServerErrorKeepsFormOpen(t *testing.T) {
	svc := &fakeAlbums{albums: seedAlbums(), saveErr: errors.New("Title taken")}
	c := newController(t, svc, nil)
	ctx := context.Background()
	require.NoError(t, c.Load(ctx))

	require.NoError(t, c.OpenEdit("a1"))
	assert.EqualError(t, c.Submit(ctx), "Title taken")
	form, open := c.Form()
	assert.True(t, open)
	assert.Equal(t, "OK Computer", form.Input.Title)
	assert.Equal(t, 1, svc.lists)
}

func TestController_EditOwnerOnly(t *testing.T) {
	svc := &fakeAlbums{albums: seedAlbums()}
	c := newController(t, svc, nil)
	ctx := context.Background()
	require.NoError(t, c.Load(ctx))

	assert.ErrorIs(t, c.OpenEdit("a3"), ErrNotOwner)

	require.NoError(t, c.OpenEdit("a2"))
	form, open := c.Form()
	require.True(t, open)
	assert.Equal(t, FormEdit, form.Mode)
	assert.Equal(t, "Blue", form.Input.Title)

	form.Input.Genre = "Folk"
	require.NoError(t, c.SetForm(form.Input))
	require.NoError(t, c.Submit(ctx))
	assert.Equal(t, "Folk", svc.updated["a2"].Genre)
}

func TestController_ArtworkAssist(t *testing.T) {
	art := &fakeArtwork{results: []model.ArtworkCandidate{{ArtworkURL: "https://img/600x600.jpg", AlbumName: "OK Computer"}}}
	c := newController(t, &fakeAlbums{}, art)
	ctx := context.Background()

	_, err := c.SuggestArtwork(ctx)
	assert.ErrorIs(t, err, ErrFormClosed)

	c.OpenCreate()
	require.NoError(t, c.SetForm(model.AlbumInput{Artist: "Radiohead"}))
	_, err = c.SuggestArtwork(ctx)
	assert.ErrorIs(t, err, ErrArtworkNeedsFields)
	assert.Zero(t, art.calls)

	require.NoError(t, c.SetForm(model.AlbumInput{Artist: "Radiohead", Title: "OK Computer"}))
	got, err := c.SuggestArtwork(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)

	form, _ := c.Form()
	assert.Empty(t, form.Input.CoverImage, "suggestions are never auto-applied")
	assert.Len(t, form.Suggestions, 1)

	require.NoError(t, c.ApplyArtwork(got[0]))
	form, _ = c.Form()
	assert.Equal(t, "https://img/600x600.jpg", form.Input.CoverImage)
}

func TestController_PrefetchReviews(t *testing.T) {
	svc := &fakeAlbums{albums: seedAlbums()}
	users := fakeUsers{id: "u1"}
	rsvc := &fakeReviews{fail: map[string]bool{"a2": true}}
	c := NewController(svc, nil, users, reviews.NewBook(rsvc, users))
	ctx := context.Background()
	require.NoError(t, c.Load(ctx))

	var mu sync.Mutex
	var warnings, done int
	err := c.PrefetchReviews(ctx, 2, func(ev ProgressEvent) {
		mu.Lock()
		defer mu.Unlock()
		switch ev.Level {
		case LevelWarning:
			warnings++
		case LevelSuccess:
			done++
		}
	})
	require.NoError(t, err)
	assert.Equal(t, 1, warnings)
	assert.Equal(t, 2, done)
	assert.ElementsMatch(t, []string{"a1", "a2", "a3"}, rsvc.listed)

	_, ok := c.Reviews().Reviews("a1")
	assert.True(t, ok)
	_, ok = c.Reviews().Reviews("a2")
	assert.False(t, ok)
}

func TestController_Reset(t *testing.T) {
	svc := &fakeAlbums{albums: seedAlbums()}
	c := newController(t, svc, nil)
	require.NoError(t, c.Load(context.Background()))
	c.OpenCreate()

	c.Reset()
	state, _ := c.State()
	assert.Equal(t, NotFetched, state)
	assert.Empty(t, c.Albums())
	_, open := c.Form()
	assert.False(t, open)
}
