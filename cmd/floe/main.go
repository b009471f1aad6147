package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/floe-build/floe/cli/cmd"
)

func main() {
	// Initialize logger
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := cmd.Execute(); err != nil {
		// Configuration errors are unrecoverable startup failures.
		log.Error().Err(err).Msg("floe failed")
		os.Exit(1)
	}
}
