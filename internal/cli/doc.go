// Package cli implements vinylvault-cli, a scriptable front end over the
// same controllers the terminal UI uses.
//
// Usage:
//
//	vinylvault-cli [-config path] [-api url] [-verbose] <command> [flags] [args]
//
// Destructive commands ask for confirmation on stdin unless -yes is given.
package cli
