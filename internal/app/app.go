package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/handiism/vinyl-vault/internal/artwork"
	"github.com/handiism/vinyl-vault/internal/collection"
	"github.com/handiism/vinyl-vault/internal/community"
	"github.com/handiism/vinyl-vault/internal/config"
	vhttp "github.com/handiism/vinyl-vault/internal/http"
	ioutils "github.com/handiism/vinyl-vault/internal/io"
	"github.com/handiism/vinyl-vault/internal/logging"
	"github.com/handiism/vinyl-vault/internal/reviews"
	"github.com/handiism/vinyl-vault/internal/session"
	"github.com/handiism/vinyl-vault/internal/storage"
	"github.com/handiism/vinyl-vault/internal/vault"
)

// Options override parts of the wiring, mostly for tests.
type Options struct {
	// LogOutput receives the logs. When nil, logs are appended to
	// Settings.LogFile, or discarded if that is empty.
	LogOutput io.Writer

	// Store replaces the SQLite session store.
	Store storage.Store
}

// App holds every service of a running client.
type App struct {
	Settings *config.Settings

	Store      storage.Store
	HTTP       *vhttp.Client
	API        *vault.Client
	Session    *session.Store
	Artwork    *artwork.Searcher
	Previews   *artwork.Previewer
	Collection *collection.Controller
	Community  *community.Controller

	log     zerolog.Logger
	closers []io.Closer
}

// New wires the services. The session is not hydrated yet; call Hydrate.
func New(ctx context.Context, settings *config.Settings, opts Options) (*App, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	a := &App{Settings: settings}

	out := opts.LogOutput
	if out == nil {
		f, err := openLogFile(settings.LogFile)
		if err != nil {
			return nil, err
		}
		if f != nil {
			a.closers = append(a.closers, f)
			out = f
		} else {
			out = io.Discard
		}
	}
	logging.Init(logging.Config{Level: settings.LogLevel, Format: settings.LogFormat, Output: out})
	a.log = logging.Component("app")

	store := opts.Store
	if store == nil {
		sqlite, err := storage.OpenSQLite(ctx, settings.StorePath)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("open session store: %w", err)
		}
		store = sqlite
	}
	a.Store = store
	a.closers = append(a.closers, store)

	a.HTTP = vhttp.NewClient(
		vhttp.WithTimeout(settings.RequestTimeout),
		vhttp.WithUserAgent(settings.UserAgent),
	)

	a.API = vault.NewClient(a.HTTP, settings.BaseURL(), vault.TokenFunc(func() string {
		return a.Session.Token()
	}))
	a.Session = session.NewStore(a.Store, a.API)

	a.Artwork = artwork.NewSearcher(a.HTTP, artwork.Options{
		SearchURL:       settings.ArtworkSearchURL,
		Limit:           settings.ArtworkLimit,
		RatePerMinute:   settings.ArtworkRatePerMinute,
		BreakerFailures: uint32(max(settings.ArtworkBreakerFailures, 0)),
	})
	a.Previews = artwork.NewPreviewer(a.HTTP, ioutils.NewImageService())

	a.Collection = collection.NewController(a.API, a.Artwork, a.Session, reviews.NewBook(a.API, a.Session))
	a.Community = community.NewController(a.API, reviews.NewBook(a.API, a.Session))

	a.log.Debug().Str("api", settings.BaseURL()).Str("store", settings.StorePath).Msg("services ready")
	return a, nil
}

// Hydrate restores the persisted session.
func (a *App) Hydrate(ctx context.Context) error {
	return a.Session.Hydrate(ctx)
}

// SignOut ends the session and drops everything cached for the user.
func (a *App) SignOut(ctx context.Context) {
	a.Session.SignOut(ctx)
	a.Collection.Reset()
	a.Community.Reviews().Reset()
}

// Close releases the session store and the log file.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func openLogFile(path string) (*os.File, error) {
	if path == "" {
		return nil, nil
	}
	if err := ioutils.EnsureDir(filepath.Dir(path)); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}
