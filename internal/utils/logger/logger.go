// Package logger provides a global logger for the application
package logger

import (
	"flag"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
)

func initLogger() {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).With().Caller().Logger()

	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("No .env file loaded, using process environment")
	}

	debug := flag.Bool("debug", false, "sets log level to debug")
	trace := flag.Bool("trace", false, "sets log level to trace")
	info := flag.Bool("info", false, "sets log level to info (default)")
	flag.Parse()

	environment := strings.ToLower(os.Getenv("ENVIRONMENT"))
	if environment == "" {
		environment = "dev"
	}

	if !knownEnvironment(environment) {
		log.Warn().Str("environment", environment).Msg("Unknown environment - defaulting to production log level (info and above)")
	}

	logLevel := Level(environment, *debug, *trace, *info)
	zerolog.SetGlobalLevel(logLevel)
	log.WithLevel(logLevel).Str("environment", environment).Str("level", logLevel.String()).Msg("Logging enabled")
}

// Level resolves the global log level. dev and test log everything, prod and
// unknown environments log info and above. A level flag overrides the
// environment, debug first.
func Level(environment string, debug, trace, info bool) zerolog.Level {
	switch {
	case debug:
		return zerolog.DebugLevel
	case trace:
		return zerolog.TraceLevel
	case info:
		return zerolog.InfoLevel
	}

	switch strings.ToLower(environment) {
	case "dev", "test":
		return zerolog.TraceLevel
	default:
		return zerolog.InfoLevel
	}
}

func knownEnvironment(environment string) bool {
	switch strings.ToLower(environment) {
	case "dev", "test", "prod":
		return true
	}
	return false
}

// Init initializes the logger with the configuration from the environment
// and command line flags.
// It sets up the global logger to use zerolog with console output.
// Example usage:
//
//	logger.Init() <- inside whichever main() function in your entrypoint
//
// Then, `go run ./cmd/benchmark --debug`
//
// Command flags must be declared before calling Init, which parses them.
func Init() {
	initLogger()
}
