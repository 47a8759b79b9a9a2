package reviews

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handiism/vinyl-vault/internal/model"
)

type fakeService struct {
	mu       sync.Mutex
	reviews  map[string][]model.Review
	listed   []string
	created  []model.ReviewInput
	deleted  []string
	listErr  error
	delErr   error
	gate     chan struct{}
	nextID   int
	reviewer model.UserRef
}

func newFakeService() *fakeService {
	return &fakeService{
		reviews:  map[string][]model.Review{},
		reviewer: model.UserRef{ID: "u1", Username: "alice"},
	}
}

func (f *fakeService) ListReviews(_ context.Context, albumID string) ([]model.Review, error) {
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listed = append(f.listed, albumID)
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]model.Review(nil), f.reviews[albumID]...), nil
}

func (f *fakeService) CreateReview(_ context.Context, in model.ReviewInput) (model.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	r := model.Review{ID: "new" + string(rune('0'+f.nextID)), Content: in.Content, Rating: in.Rating, AlbumID: in.AlbumID, Reviewer: f.reviewer}
	f.created = append(f.created, in)
	f.reviews[in.AlbumID] = append(f.reviews[in.AlbumID], r)
	return r, nil
}

func (f *fakeService) DeleteReview(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.delErr != nil {
		return f.delErr
	}
	f.deleted = append(f.deleted, id)
	for album, list := range f.reviews {
		kept := list[:0]
		for _, r := range list {
			if r.ID != id {
				kept = append(kept, r)
			}
		}
		f.reviews[album] = kept
	}
	return nil
}

func (f *fakeService) listCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.listed...)
}

type fakeUsers struct {
	user *model.User
}

func (f fakeUsers) CurrentUser() (model.User, bool) {
	if f.user == nil {
		return model.User{}, false
	}
	return *f.user, true
}

var alice = fakeUsers{user: &model.User{ID: "u1", Username: "alice"}}

func TestBook_AbsentVersusEmpty(t *testing.T) {
	svc := newFakeService()
	b := NewBook(svc, alice)

	_, fetched := b.Reviews("alb1")
	assert.False(t, fetched)

	_, err := b.Fetch(context.Background(), "alb1")
	require.NoError(t, err)

	reviews, fetched := b.Reviews("alb1")
	assert.True(t, fetched)
	assert.Empty(t, reviews)
}

func TestBook_ToggleFetchesOnlyOnce(t *testing.T) {
	svc := newFakeService()
	svc.reviews["alb1"] = []model.Review{{ID: "r1", Rating: 8}}
	b := NewBook(svc, alice)
	ctx := context.Background()

	require.True(t, b.Toggle("alb1"))
	_, err := b.Fetch(ctx, "alb1")
	require.NoError(t, err)
	assert.Equal(t, "alb1", b.Expanded())

	assert.False(t, b.Toggle("alb1"), "collapse")
	assert.Empty(t, b.Expanded())
	assert.False(t, b.Toggle("alb1"), "re-expand uses the cache")

	reviews, err := b.Expand(ctx, "alb1")
	require.NoError(t, err)
	assert.Len(t, reviews, 1)
	assert.Equal(t, []string{"alb1"}, svc.listCalls())

	avg, ok := b.Average("alb1")
	assert.True(t, ok)
	assert.InDelta(t, 8.0, avg, 0.001)
}

func TestBook_OneExpandedAtATime(t *testing.T) {
	b := NewBook(newFakeService(), alice)
	b.Toggle("alb1")
	b.Toggle("alb2")
	assert.Equal(t, "alb2", b.Expanded())
}

func TestBook_FetchFailureLeavesCacheAbsent(t *testing.T) {
	svc := newFakeService()
	svc.listErr = errors.New("down")
	b := NewBook(svc, alice)

	_, err := b.Fetch(context.Background(), "alb1")
	require.Error(t, err)
	_, fetched := b.Reviews("alb1")
	assert.False(t, fetched)
}

func TestBook_ConcurrentFetchesCollapse(t *testing.T) {
	svc := newFakeService()
	svc.gate = make(chan struct{})
	b := NewBook(svc, alice)

	var wg sync.WaitGroup
	for range 3 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = b.Fetch(context.Background(), "alb1")
		}()
	}

	time.Sleep(50 * time.Millisecond)
	close(svc.gate)
	wg.Wait()

	assert.Len(t, svc.listCalls(), 1)
}

func TestBook_CreateRefetchesOnlyThatAlbum(t *testing.T) {
	svc := newFakeService()
	svc.reviews["alb2"] = []model.Review{{ID: "x", Rating: 3}}
	b := NewBook(svc, alice)
	ctx := context.Background()

	_, err := b.Fetch(ctx, "alb2")
	require.NoError(t, err)
	before := len(svc.listCalls())

	in := model.NewReviewInput("alb1")
	in.Content = "  Great pressing  "
	require.NoError(t, b.Create(ctx, in))

	calls := svc.listCalls()[before:]
	assert.Equal(t, []string{"alb1"}, calls, "exactly one follow-up fetch")
	assert.Equal(t, "Great pressing", svc.created[0].Content)
	assert.Equal(t, model.DefaultRating, svc.created[0].Rating)

	reviews, fetched := b.Reviews("alb1")
	require.True(t, fetched)
	assert.Len(t, reviews, 1)

	other, _ := b.Reviews("alb2")
	assert.Len(t, other, 1)
}

func TestBook_CreateRequiresSessionAndValidInput(t *testing.T) {
	svc := newFakeService()
	ctx := context.Background()

	err := NewBook(svc, fakeUsers{}).Create(ctx, model.ReviewInput{AlbumID: "alb1", Content: "x", Rating: 5})
	assert.ErrorIs(t, err, ErrNotSignedIn)

	err = NewBook(svc, alice).Create(ctx, model.ReviewInput{AlbumID: "alb1", Content: " ", Rating: 11})
	assert.ErrorIs(t, err, model.ErrValidation)
	assert.Empty(t, svc.created)
}

func TestBook_DeleteFlow(t *testing.T) {
	svc := newFakeService()
	svc.reviews["alb1"] = []model.Review{
		{ID: "mine", Reviewer: model.UserRef{ID: "u1"}},
		{ID: "theirs", Reviewer: model.UserRef{ID: "u2"}},
	}
	b := NewBook(svc, alice)
	ctx := context.Background()
	_, err := b.Fetch(ctx, "alb1")
	require.NoError(t, err)

	_, err = b.RequestDelete("alb1", "theirs")
	assert.ErrorIs(t, err, ErrNotReviewer)

	_, err = b.RequestDelete("alb1", "missing")
	assert.ErrorIs(t, err, ErrUnknownReview)

	_, err = b.RequestDelete("alb1", "mine")
	require.NoError(t, err)
	b.CancelDelete()
	_, ok := b.Pending()
	assert.False(t, ok)
	assert.ErrorIs(t, b.ConfirmDelete(ctx), ErrNothingPending)
	assert.Empty(t, svc.deleted)

	_, err = b.RequestDelete("alb1", "mine")
	require.NoError(t, err)
	require.NoError(t, b.ConfirmDelete(ctx))
	assert.Equal(t, []string{"mine"}, svc.deleted)

	reviews, _ := b.Reviews("alb1")
	require.Len(t, reviews, 1)
	assert.Equal(t, "theirs", reviews[0].ID)
}

func TestBook_DeleteFailureKeepsCache(t *testing.T) {
	svc := newFakeService()
	svc.reviews["alb1"] = []model.Review{{ID: "mine", Reviewer: model.UserRef{ID: "u1"}}}
	svc.delErr = errors.New("forbidden")
	b := NewBook(svc, alice)
	ctx := context.Background()
	_, err := b.Fetch(ctx, "alb1")
	require.NoError(t, err)

	_, err = b.RequestDelete("alb1", "mine")
	require.NoError(t, err)
	assert.Error(t, b.ConfirmDelete(ctx))

	reviews, _ := b.Reviews("alb1")
	assert.Len(t, reviews, 1)
	assert.Len(t, svc.listCalls(), 1)
}

func TestBook_ForgetAndReset(t *testing.T) {
	b := NewBook(newFakeService(), alice)
	ctx := context.Background()
	_, _ = b.Expand(ctx, "alb1")
	_, _ = b.Fetch(ctx, "alb2")

	b.Forget("alb1")
	_, ok := b.Reviews("alb1")
	assert.False(t, ok)
	assert.Empty(t, b.Expanded())

	b.Reset()
	_, ok = b.Reviews("alb2")
	assert.False(t, ok)
}
