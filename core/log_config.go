package core

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// init configures the global logging level from the METRICSPACE_LOG
// environment variable: "off"/"false"/"0" disables logging, "full"/
// "all" switches to debug level with a console writer, anything else
// (including unset) defaults to info level.
func init() {
	debugMode := strings.TrimSpace(strings.ToLower(os.Getenv("METRICSPACE_LOG")))

	switch debugMode {
	case "0", "off", "false":
		zerolog.SetGlobalLevel(zerolog.Disabled)
	case "full", "all":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
