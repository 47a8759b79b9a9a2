// Package route maps client paths to views and guards the private ones.
//
// The routing table mirrors the paths of the web client: "/", "/community",
// "/sign-in", "/sign-up", "/albums" (requires a session) and a catch-all
// not-found view.
package route
