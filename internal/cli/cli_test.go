package cli

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handiism/vinyl-vault/internal/config"
)

// fakeAPI is an in-memory VinylVault server.
type fakeAPI struct {
	mu      sync.Mutex
	token   string
	deleted []string
	reviews []string
}

func newFakeAPI(t *testing.T) (*fakeAPI, *httptest.Server) {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"payload": map[string]any{"_id": "u1", "username": "alice"},
	}).SignedString([]byte("k"))
	require.NoError(t, err)

	api := &fakeAPI{token: token}
	authed := func(r *http.Request) bool {
		return r.Header.Get("Authorization") == "Bearer "+token
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/sign-in", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"token":"` + token + `"}`))
	})
	mux.HandleFunc("GET /albums", func(w http.ResponseWriter, r *http.Request) {
		if !authed(r) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"err":"Unauthorized"}`))
			return
		}
		_, _ = w.Write([]byte(`[
			{"_id":"a1","title":"OK Computer","artist":"Radiohead","year":1997,"owner":"u1"},
			{"_id":"a2","title":"Blue","artist":"Joni Mitchell","year":1971,"owner":{"_id":"u1","username":"alice"}}
		]`))
	})
	mux.HandleFunc("DELETE /albums/{id}", func(w http.ResponseWriter, r *http.Request) {
		api.mu.Lock()
		api.deleted = append(api.deleted, r.PathValue("id"))
		api.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /albums/public", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
			{"_id":"a1","title":"OK Computer","artist":"Radiohead","owner":{"_id":"u1","username":"alice"}},
			{"_id":"a9","title":"Hejira","artist":"Joni Mitchell","owner":{"_id":"u2","username":"bob"}}
		]`))
	})
	mux.HandleFunc("GET /reviews/album/{id}", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"_id":"r1","content":"Timeless","rating":9,"reviewer":{"_id":"u2","username":"bob"}}]`))
	})
	mux.HandleFunc("POST /reviews", func(w http.ResponseWriter, r *http.Request) {
		api.mu.Lock()
		api.reviews = append(api.reviews, "posted")
		api.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"_id":"r2","content":"x","rating":7,"reviewer":"u1"}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return api, srv
}

func setupEnv(t *testing.T, apiURL string) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(config.ConfigPathEnvVar, filepath.Join(dir, "missing.yaml"))
	t.Setenv("VINYLVAULT_API_URL", apiURL)
	t.Setenv("VINYLVAULT_STORE_PATH", filepath.Join(dir, "session.db"))
}

func run(t *testing.T, stdin string, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = Run(context.Background(), args, strings.NewReader(stdin), &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestRun_Usage(t *testing.T) {
	code, _, stderr := run(t, "")
	assert.Equal(t, ExitUsage, code)
	assert.Contains(t, stderr, "Commands:")
	assert.Contains(t, stderr, "community")

	code, _, stderr = run(t, "", "bogus")
	assert.Equal(t, ExitUsage, code)
	assert.Contains(t, stderr, `Unknown command "bogus"`)
}

func TestRun_GuardedCommandNeedsSession(t *testing.T) {
	_, srv := newFakeAPI(t)
	setupEnv(t, srv.URL)

	code, _, stderr := run(t, "", "albums")
	assert.Equal(t, ExitError, code)
	assert.Contains(t, stderr, "not signed in")
}

func TestRun_SignInThenListAlbums(t *testing.T) {
	_, srv := newFakeAPI(t)
	setupEnv(t, srv.URL)

	code, stdout, stderr := run(t, "pw\n", "signin", "-u", "alice")
	require.Equal(t, ExitOK, code, stderr)
	assert.Contains(t, stdout, "Signed in as alice")

	code, stdout, _ = run(t, "", "whoami")
	require.Equal(t, ExitOK, code)
	assert.Contains(t, stdout, "alice (u1)")

	code, stdout, stderr = run(t, "", "albums", "-reviews")
	require.Equal(t, ExitOK, code, stderr)
	assert.Contains(t, stdout, "OK Computer")
	assert.Contains(t, stdout, "9.0")
	assert.Contains(t, stdout, "Total Albums: 2")
	assert.Contains(t, stderr, "✅ Reviews loaded: OK Computer")
	assert.NotContains(t, stderr, "⚠️")

	code, _, _ = run(t, "", "signout")
	require.Equal(t, ExitOK, code)
	code, _, _ = run(t, "", "signout")
	assert.Equal(t, ExitOK, code, "signing out twice is fine")

	code, _, _ = run(t, "", "whoami")
	assert.Equal(t, ExitError, code)
}

func TestRun_DeleteAsksForConfirmation(t *testing.T) {
	api, srv := newFakeAPI(t)
	setupEnv(t, srv.URL)

	code, _, _ := run(t, "", "signin", "-u", "alice", "-p", "pw")
	require.Equal(t, ExitOK, code)

	code, stdout, stderr := run(t, "n\n", "delete", "a1")
	require.Equal(t, ExitOK, code)
	assert.Contains(t, stderr, "Are you sure")
	assert.Contains(t, stdout, "Kept")
	assert.Empty(t, api.deleted)

	code, stdout, _ = run(t, "y\n", "delete", "a1")
	require.Equal(t, ExitOK, code)
	assert.Contains(t, stdout, "Deleted")

	code, _, _ = run(t, "", "delete", "-yes", "a2")
	require.Equal(t, ExitOK, code)
	assert.Equal(t, []string{"a1", "a2"}, api.deleted)
}

func TestRun_CommunityFilter(t *testing.T) {
	_, srv := newFakeAPI(t)
	setupEnv(t, srv.URL)

	code, stdout, _ := run(t, "", "community", "-filter", "BOB")
	require.Equal(t, ExitOK, code)
	assert.Contains(t, stdout, "bob (1)")
	assert.Contains(t, stdout, "Hejira")
	assert.NotContains(t, stdout, "OK Computer")

	code, stdout, _ = run(t, "", "community", "-filter", "nothing-matches")
	require.Equal(t, ExitOK, code)
	assert.Contains(t, stdout, "No albums match")
}

func TestRun_Reviews(t *testing.T) {
	api, srv := newFakeAPI(t)
	setupEnv(t, srv.URL)

	code, stdout, _ := run(t, "", "reviews", "a1")
	require.Equal(t, ExitOK, code)
	assert.Contains(t, stdout, "bob")
	assert.Contains(t, stdout, "Timeless")

	code, _, stderr := run(t, "", "review", "a1", "-text", "Great")
	assert.Equal(t, ExitError, code)
	assert.Contains(t, stderr, "sign in")

	code, _, _ = run(t, "", "signin", "-u", "alice", "-p", "pw")
	require.Equal(t, ExitOK, code)

	code, stdout, stderr = run(t, "", "review", "a1", "-rating", "7", "-text", "Great")
	require.Equal(t, ExitOK, code, stderr)
	assert.Contains(t, stdout, "Review posted")
	assert.Len(t, api.reviews, 1)

	code, _, stderr = run(t, "", "unreview", "a1", "r1", "-yes")
	assert.Equal(t, ExitError, code)
	assert.Contains(t, stderr, "only the author")
}

func TestRun_ConfigInit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yaml")

	code, stdout, stderr := run(t, "", "-config", path, "config", "init", "-api", "https://vault.example")
	require.Equal(t, ExitOK, code, stderr)
	assert.Contains(t, stdout, path)

	settings, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://vault.example", settings.APIURL)

	code, _, stderr = run(t, "", "-config", path, "config", "init")
	assert.Equal(t, ExitError, code)
	assert.Contains(t, stderr, "already exists")
}
