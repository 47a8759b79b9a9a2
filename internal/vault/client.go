package vault

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	vhttp "github.com/handiism/vinyl-vault/internal/http"
	"github.com/handiism/vinyl-vault/internal/logging"
	"github.com/handiism/vinyl-vault/internal/model"
	"github.com/handiism/vinyl-vault/internal/vault/dto"
)

// TokenSource supplies the bearer token for authenticated calls.
type TokenSource interface {
	Token() string
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func() string

// Token returns f().
func (f TokenFunc) Token() string { return f() }

// Client talks to the VinylVault REST API.
type Client struct {
	http    *vhttp.Client
	baseURL string
	tokens  TokenSource
	log     zerolog.Logger
}

// NewClient creates an API client rooted at baseURL.
//
// tokens may be nil, in which case authenticated calls go out without a
// credential and the server decides.
func NewClient(httpClient *vhttp.Client, baseURL string, tokens TokenSource) *Client {
	return &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		log:     logging.Component("vault"),
	}
}

// SignIn exchanges credentials for a token.
func (c *Client) SignIn(ctx context.Context, creds model.Credentials) (string, error) {
	return c.authenticate(ctx, "sign in", "/auth/sign-in", creds)
}

// SignUp registers a new account and returns its token.
func (c *Client) SignUp(ctx context.Context, creds model.Credentials) (string, error) {
	return c.authenticate(ctx, "sign up", "/auth/sign-up", creds)
}

func (c *Client) authenticate(ctx context.Context, op, path string, creds model.Credentials) (string, error) {
	resp, err := c.send(ctx, op, http.MethodPost, path, creds, false)
	if err != nil {
		return "", err
	}
	token, err := dto.DecodeToken(resp.Body)
	if err != nil {
		return "", decodeError(op, resp.StatusCode, err)
	}
	return token, nil
}

// ListAlbums returns the signed-in user's albums.
func (c *Client) ListAlbums(ctx context.Context) ([]model.Album, error) {
	return c.listAlbums(ctx, "list albums", "/albums", true)
}

// ListPublicAlbums returns every user's albums. No credential is sent.
func (c *Client) ListPublicAlbums(ctx context.Context) ([]model.Album, error) {
	return c.listAlbums(ctx, "list public albums", "/albums/public", false)
}

func (c *Client) listAlbums(ctx context.Context, op, path string, auth bool) ([]model.Album, error) {
	resp, err := c.send(ctx, op, http.MethodGet, path, nil, auth)
	if err != nil {
		return nil, err
	}
	albums, skipped, err := dto.DecodeAlbums(resp.Body)
	if err != nil {
		return nil, decodeError(op, resp.StatusCode, err)
	}
	if skipped > 0 {
		c.log.Warn().Str("op", op).Int("skipped", skipped).Msg("dropped albums without an id")
	}
	return albums, nil
}

// GetAlbum fetches one album.
func (c *Client) GetAlbum(ctx context.Context, id string) (model.Album, error) {
	return c.albumCall(ctx, "get album", http.MethodGet, albumPath(id), nil)
}

// CreateAlbum creates an album owned by the signed-in user.
func (c *Client) CreateAlbum(ctx context.Context, in model.AlbumInput) (model.Album, error) {
	return c.albumCall(ctx, "create album", http.MethodPost, "/albums", in)
}

// UpdateAlbum replaces the fields of an existing album.
func (c *Client) UpdateAlbum(ctx context.Context, id string, in model.AlbumInput) (model.Album, error) {
	return c.albumCall(ctx, "update album", http.MethodPut, albumPath(id), in)
}

func (c *Client) albumCall(ctx context.Context, op, method, path string, body any) (model.Album, error) {
	resp, err := c.send(ctx, op, method, path, body, true)
	if err != nil {
		return model.Album{}, err
	}
	album, err := dto.DecodeAlbum(resp.Body)
	if err != nil {
		return model.Album{}, decodeError(op, resp.StatusCode, err)
	}
	return album, nil
}

// DeleteAlbum deletes an album. Any 2xx status, 204 included, is success.
func (c *Client) DeleteAlbum(ctx context.Context, id string) error {
	_, err := c.send(ctx, "delete album", http.MethodDelete, albumPath(id), nil, true)
	return err
}

// ListReviews returns the reviews of one album.
func (c *Client) ListReviews(ctx context.Context, albumID string) ([]model.Review, error) {
	const op = "list reviews"
	resp, err := c.send(ctx, op, http.MethodGet, "/reviews/album/"+url.PathEscape(albumID), nil, true)
	if err != nil {
		return nil, err
	}
	reviews, skipped, err := dto.DecodeReviews(resp.Body, albumID)
	if err != nil {
		return nil, decodeError(op, resp.StatusCode, err)
	}
	if skipped > 0 {
		c.log.Warn().Str("album", albumID).Int("skipped", skipped).Msg("dropped reviews without an id")
	}
	return reviews, nil
}

// CreateReview posts a review for in.AlbumID.
func (c *Client) CreateReview(ctx context.Context, in model.ReviewInput) (model.Review, error) {
	const op = "create review"
	resp, err := c.send(ctx, op, http.MethodPost, "/reviews", in, true)
	if err != nil {
		return model.Review{}, err
	}
	review, err := dto.DecodeReview(resp.Body, in.AlbumID)
	if err != nil {
		return model.Review{}, decodeError(op, resp.StatusCode, err)
	}
	return review, nil
}

// DeleteReview deletes a review. Any 2xx status is success.
func (c *Client) DeleteReview(ctx context.Context, id string) error {
	_, err := c.send(ctx, "delete review", http.MethodDelete, "/reviews/"+url.PathEscape(id), nil, true)
	return err
}

// send performs one round trip and converts failures into *Error.
func (c *Client) send(ctx context.Context, op, method, path string, body any, auth bool) (*vhttp.Response, error) {
	req := vhttp.Request{
		Method: method,
		URL:    c.baseURL + path,
		Body:   body,
	}
	if auth && c.tokens != nil {
		req.Token = c.tokens.Token()
	}

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		c.log.Warn().Err(err).Str("op", op).Msg("request failed")
		return nil, transportError(op, err)
	}
	if !resp.OK() {
		e := statusError(op, resp.StatusCode, resp.Body)
		c.log.Warn().Str("op", op).Int("status", resp.StatusCode).Str("message", e.Message).Msg("request rejected")
		return nil, e
	}
	return resp, nil
}

func albumPath(id string) string {
	return "/albums/" + url.PathEscape(id)
}
