// Package cmd contains the command-line entry points. main.go stays a
// minimal shim; all routing and initialization happens here.
package cmd

import (
	"fmt"
	"os"
)

// Execute is the main entry point. It routes os.Args to the matching
// command; with no arguments the HTTP server starts.
func Execute() error {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "version", "--version", "-v":
			printVersionInfo()
			return nil
		case "help", "--help", "-h":
			printHelp()
			return nil
		case "migrate":
			return runMigrate()
		case "serve":
			return runServe()
		default:
			printHelp()
			return fmt.Errorf("unknown command: %s", os.Args[1])
		}
	}

	return runServe()
}

func printHelp() {
	fmt.Println(`tahlil - conversational economic document analyst

Usage:
  tahlil [command]

Commands:
  serve      Start the HTTP API server (default)
  migrate    Apply database migrations and exit
  version    Print version information
  help       Show this help

Environment:
  GEMINI_API_KEY        Google AI API key (required)
  DATABASE_URL          PostgreSQL URL (overrides postgres_* config)
  TAHLIL_PORT           HTTP port
  TAHLIL_RERANKER_URL   Cross-encoder service base URL
  TAHLIL_CORS_ORIGINS   Allowed CORS origins
  TAHLIL_LOG_LEVEL      Log level (debug, info, warn, error)

Configuration file: ~/.tahlil/config.yaml or ./config.yaml`)
}
