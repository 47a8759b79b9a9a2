package artwork

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	vhttp "github.com/handiism/vinyl-vault/internal/http"
	"github.com/handiism/vinyl-vault/internal/logging"
	"github.com/handiism/vinyl-vault/internal/model"
)

// DefaultSearchURL is the public iTunes search endpoint.
const DefaultSearchURL = "https://itunes.apple.com/search"

// Options configures a Searcher.
type Options struct {
	// SearchURL is the search endpoint. Defaults to DefaultSearchURL.
	SearchURL string

	// Limit caps the number of results per query. Defaults to 10.
	Limit int

	// RatePerMinute caps outgoing queries. Zero or less disables the limit.
	RatePerMinute int

	// BreakerFailures is the number of consecutive failed queries after
	// which lookups are skipped for BreakerCooldown. Defaults to 5.
	BreakerFailures uint32

	// BreakerCooldown defaults to 30 seconds.
	BreakerCooldown time.Duration
}

// Searcher looks up candidate cover images.
type Searcher struct {
	http      *vhttp.Client
	searchURL string
	limit     int
	limiter   *rate.Limiter
	cb        *gobreaker.CircuitBreaker[[]model.ArtworkCandidate]
	log       zerolog.Logger
}

// NewSearcher creates a Searcher.
func NewSearcher(httpClient *vhttp.Client, opts Options) *Searcher {
	if opts.SearchURL == "" {
		opts.SearchURL = DefaultSearchURL
	}
	if opts.Limit <= 0 {
		opts.Limit = 10
	}
	if opts.BreakerFailures == 0 {
		opts.BreakerFailures = 5
	}
	if opts.BreakerCooldown <= 0 {
		opts.BreakerCooldown = 30 * time.Second
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RatePerMinute > 0 {
		burst := min(opts.RatePerMinute, 5)
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.RatePerMinute)), burst)
	}

	s := &Searcher{
		http:      httpClient,
		searchURL: opts.SearchURL,
		limit:     opts.Limit,
		limiter:   limiter,
		log:       logging.Component("artwork"),
	}

	failures := opts.BreakerFailures
	s.cb = gobreaker.NewCircuitBreaker[[]model.ArtworkCandidate](gobreaker.Settings{
		Name:        "artwork-search",
		MaxRequests: 1,
		Timeout:     opts.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			s.log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("artwork search breaker state change")
		},
	})

	return s
}

// Search returns candidate covers for an album.
//
// The artist and title are searched together first. When that yields no
// usable candidates the artist is searched alone. Failures of any kind
// produce an empty result.
func (s *Searcher) Search(ctx context.Context, artist, title string) []model.ArtworkCandidate {
	artist = strings.TrimSpace(artist)
	title = strings.TrimSpace(title)
	if artist == "" && title == "" {
		return nil
	}

	exact := strings.TrimSpace(artist + " " + title)
	if results := s.query(ctx, exact); len(results) > 0 {
		return results
	}

	if artist == "" || artist == exact {
		return nil
	}

	s.log.Debug().Str("artist", artist).Msg("no exact artwork match, searching by artist")
	return s.query(ctx, artist)
}

func (s *Searcher) query(ctx context.Context, term string) []model.ArtworkCandidate {
	if err := s.limiter.Wait(ctx); err != nil {
		s.log.Debug().Err(err).Str("term", term).Msg("artwork search rate limited")
		return nil
	}

	results, err := s.cb.Execute(func() ([]model.ArtworkCandidate, error) {
		return s.fetch(ctx, term)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			s.log.Debug().Str("term", term).Msg("artwork search skipped, breaker open")
		} else {
			s.log.Warn().Err(err).Str("term", term).Msg("artwork search failed")
		}
		return nil
	}
	return results
}

func (s *Searcher) fetch(ctx context.Context, term string) ([]model.ArtworkCandidate, error) {
	params := url.Values{}
	params.Set("term", term)
	params.Set("entity", "album")
	params.Set("limit", strconv.Itoa(s.limit))

	body, err := s.http.Get(ctx, s.searchURL+"?"+params.Encode())
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(body) {
		return nil, errors.New("search response is not JSON")
	}
	return ParseResults(body), nil
}

// ParseResults converts a search response into candidates.
//
// Entries without a thumbnail are dropped. The 100x100 thumbnail URL is
// rewritten to its 600x600 variant.
func ParseResults(body []byte) []model.ArtworkCandidate {
	var candidates []model.ArtworkCandidate

	gjson.GetBytes(body, "results").ForEach(func(_, result gjson.Result) bool {
		thumb := result.Get("artworkUrl100").String()
		if thumb == "" {
			return true
		}
		candidates = append(candidates, model.ArtworkCandidate{
			ArtworkURL:  strings.Replace(thumb, "100x100", "600x600", 1),
			AlbumName:   result.Get("collectionName").String(),
			ArtistName:  result.Get("artistName").String(),
			ReleaseYear: releaseYear(result.Get("releaseDate").String()),
		})
		return true
	})

	return candidates
}

func releaseYear(s string) int {
	if s == "" {
		return 0
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.Year()
	}
	if len(s) >= 4 {
		if y, err := strconv.Atoi(s[:4]); err == nil {
			return y
		}
	}
	return 0
}
