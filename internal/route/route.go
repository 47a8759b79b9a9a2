package route

import (
	"strings"

	"github.com/handiism/vinyl-vault/internal/session"
)

// AuthState is the guard's view of the session.
type AuthState int

const (
	// Loading means the session has not been hydrated yet.
	Loading AuthState = iota
	Authenticated
	Unauthenticated
)

func (s AuthState) String() string {
	switch s {
	case Loading:
		return "loading"
	case Authenticated:
		return "authenticated"
	case Unauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// StateOf derives the AuthState from a session snapshot.
func StateOf(snap session.Snapshot) AuthState {
	switch {
	case snap.Loading:
		return Loading
	case snap.Authenticated():
		return Authenticated
	default:
		return Unauthenticated
	}
}

// View identifies a screen.
type View int

const (
	ViewHome View = iota
	ViewCommunity
	ViewSignIn
	ViewSignUp
	ViewAlbums
	ViewNotFound
	ViewLoading
)

func (v View) String() string {
	switch v {
	case ViewHome:
		return "home"
	case ViewCommunity:
		return "community"
	case ViewSignIn:
		return "sign-in"
	case ViewSignUp:
		return "sign-up"
	case ViewAlbums:
		return "albums"
	case ViewNotFound:
		return "not-found"
	case ViewLoading:
		return "loading"
	default:
		return "unknown"
	}
}

// Client paths.
const (
	PathHome      = "/"
	PathCommunity = "/community"
	PathSignIn    = "/sign-in"
	PathSignUp    = "/sign-up"
	PathAlbums    = "/albums"
)

// Route is one entry of the routing table.
type Route struct {
	Path    string
	View    View
	Title   string
	Guarded bool
}

// Routes is the routing table.
var Routes = []Route{
	{Path: PathHome, View: ViewHome, Title: "Home"},
	{Path: PathCommunity, View: ViewCommunity, Title: "Community"},
	{Path: PathSignIn, View: ViewSignIn, Title: "Sign In"},
	{Path: PathSignUp, View: ViewSignUp, Title: "Sign Up"},
	{Path: PathAlbums, View: ViewAlbums, Title: "My Collection", Guarded: true},
}

// Decision is the outcome of resolving a path.
type Decision struct {
	// Path is the normalised path that was requested.
	Path string

	// View is the screen to show.
	View View

	// Redirect, when set, is the path that replaces Path. View is already
	// the redirect target's view.
	Redirect string
}

// Normalize cleans a path for matching: it adds a leading slash, drops a
// trailing one and lower-cases it.
func Normalize(path string) string {
	path = strings.ToLower(strings.TrimSpace(path))
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	for len(path) > 1 && strings.HasSuffix(path, "/") {
		path = strings.TrimSuffix(path, "/")
	}
	return path
}

// Lookup returns the route registered for path.
func Lookup(path string) (Route, bool) {
	path = Normalize(path)
	for _, r := range Routes {
		if r.Path == path {
			return r, true
		}
	}
	return Route{}, false
}

// Resolve decides what to show for path in the given state.
//
// Unguarded routes render in every state. A guarded route renders only when
// Authenticated; while Loading it shows the loading placeholder and when
// Unauthenticated it redirects to the sign-in view.
func Resolve(path string, state AuthState) Decision {
	path = Normalize(path)

	r, ok := Lookup(path)
	if !ok {
		return Decision{Path: path, View: ViewNotFound}
	}
	if !r.Guarded {
		return Decision{Path: path, View: r.View}
	}

	switch state {
	case Authenticated:
		return Decision{Path: path, View: r.View}
	case Loading:
		return Decision{Path: path, View: ViewLoading}
	default:
		return Decision{Path: path, View: ViewSignIn, Redirect: PathSignIn}
	}
}
