// Package config provides configuration management for vinylvault.
//
// This package handles:
//   - Default configuration values
//   - Loading settings from a YAML file and VINYLVAULT_* environment variables
//   - Saving settings back to a YAML file
//
// # Default Settings
//
// Use DefaultSettings() to get sensible defaults:
//
//	settings := config.DefaultSettings()
//	// API at http://localhost:3000
//	// session stored in ~/.config/vinylvault/session.db
//	// artwork from the iTunes search API
//
// # Loading
//
// Layers are applied in order, later ones win: defaults, file, environment.
//
//	settings, err := config.Load(config.ResolvePath(*configFlag))
//
// A missing file is not an error; the defaults and environment still apply.
//
// # Environment
//
// Every key can be set as VINYLVAULT_<KEY>, for example:
//
//	VINYLVAULT_API_URL=https://vault.example.com
//	VINYLVAULT_LOG_LEVEL=debug
package config
