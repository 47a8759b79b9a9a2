// Package logging provides the zerolog logger shared by every vinylvault
// component.
//
// Initialise once from main, then take a component logger wherever one is
// needed:
//
//	logging.Init(logging.Config{Level: "debug", Format: "console", Output: f})
//	log := logging.Component("vault")
//	log.Debug().Str("op", "list albums").Msg("request")
//
// Tokens and passwords are never logged.
package logging
