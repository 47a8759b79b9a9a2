package http

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_DoSendsJSONAndBearer(t *testing.T) {
	var gotMethod, gotAuth, gotType, gotUA, gotID, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		gotUA = r.Header.Get("User-Agent")
		gotID = r.Header.Get(RequestIDHeader)
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := NewClient(WithUserAgent("vv-test"))
	resp, err := c.Do(context.Background(), Request{
		Method: http.MethodPost,
		URL:    srv.URL + "/albums",
		Body:   map[string]any{"title": "Kid A"},
		Token:  "tok",
	})
	require.NoError(t, err)

	assert.True(t, resp.OK())
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.JSONEq(t, `{"ok":true}`, string(resp.Body))
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "application/json", gotType)
	assert.Equal(t, "vv-test", gotUA)
	assert.NotEmpty(t, gotID)
	assert.JSONEq(t, `{"title":"Kid A"}`, gotBody)
}

func TestClient_DoWithoutTokenSendsNoAuthorization(t *testing.T) {
	var hadAuth bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hadAuth = r.Header["Authorization"]
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	resp, err := NewClient().Do(context.Background(), Request{URL: srv.URL})
	require.NoError(t, err)
	assert.False(t, hadAuth)
	assert.False(t, resp.OK(), "a 404 is returned, not turned into an error")
}

func TestClient_DoTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewClient().Do(context.Background(), Request{URL: url})
	assert.Error(t, err)
}

func TestClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	_, err := NewClient(WithTimeout(20*time.Millisecond)).Do(context.Background(), Request{URL: srv.URL})
	assert.Error(t, err)
}

func TestClient_GetNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer srv.Close()

	_, err := NewClient().Get(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "418")
}
