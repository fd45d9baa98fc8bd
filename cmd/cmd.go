// Package cmd provides the CLI commands for Pocket Expert.
//
// Commands:
//   - serve: run the legacy data migration, then the HTTP API server
//   - migrate: run the legacy data migration alone
//   - export: print the full data export as JSON
//
// serve handles SIGINT/SIGTERM with graceful shutdown via context
// cancellation.
package cmd

import (
	"fmt"
	"os"
)

// Execute is the entry point for the Pocket Expert CLI.
func Execute() error {
	if len(os.Args) < 2 {
		runHelp()
		return nil
	}

	switch os.Args[1] {
	case "serve":
		return runServe()
	case "migrate":
		return runMigrate()
	case "export":
		return runExport()
	case "version", "--version", "-v":
		runVersion()
		return nil
	case "help", "--help", "-h":
		runHelp()
		return nil
	default:
		return fmt.Errorf("unknown command: %s", os.Args[1])
	}
}

// runHelp displays the help message.
func runHelp() {
	fmt.Println("Pocket Expert - AI business mentor backend")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  pocketexpert serve [addr]  Start the HTTP API server (default: " + defaultAddrHint + ")")
	fmt.Println("  pocketexpert migrate       Migrate legacy flat-file data into the database")
	fmt.Println("  pocketexpert export        Print a full data export as JSON")
	fmt.Println("  pocketexpert --version     Show version information")
	fmt.Println("  pocketexpert --help        Show this help")
	fmt.Println()
	fmt.Println("Environment:")
	fmt.Println("  GEMINI_API_KEY             Gemini API key (required for serve)")
	fmt.Println("  POCKETEXPERT_DATA_DIR      Data directory (default: ~/.pocketexpert)")
	fmt.Println("  POCKETEXPERT_LOG_LEVEL     debug, info, warn, error (default: info)")
}
