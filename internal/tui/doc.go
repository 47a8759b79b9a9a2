// Package tui provides the Bubble Tea terminal user interface for vinylvault.
//
// It mirrors the web client's routes: a home page, the community browser,
// sign-in and sign-up forms, the private "My Collection" view and a
// not-found page. Navigation goes through route.Guard, so the collection is
// only reachable with a session.
package tui
