// Package app builds the services of vinylvault from Settings and ties
// their lifecycles together. Both front ends, the terminal UI and the CLI,
// start from app.New.
package app
