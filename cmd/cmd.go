// Package cmd provides the CLI commands for atelier.
//
// Commands:
//   - serve: HTTP API server for the chat client
//   - export: render a chat transcript to the terminal
//
// Signal handling and graceful shutdown are implemented via context
// cancellation.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/atelierhq/atelier/internal/log"
)

// Execute is the main entry point for the atelier CLI.
func Execute() error {
	logger := log.New(log.Config{
		Level: logLevel(),
		JSON:  os.Getenv("ATELIER_LOG_JSON") != "",
	})
	slog.SetDefault(logger)

	if len(os.Args) < 2 {
		runHelp()
		return nil
	}

	switch os.Args[1] {
	case "serve":
		return runServe(os.Args[2:])
	case "export":
		return runExport(os.Args[2:])
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

func logLevel() slog.Level {
	if os.Getenv("DEBUG") != "" {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// runHelp displays the help message.
func runHelp() {
	fmt.Println("Atelier - chat client with an artifact workshop")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  atelier serve [addr]       Start the HTTP API server (default: :8080)")
	fmt.Println("  atelier export [chatID]    Render a chat transcript to the terminal")
	fmt.Println("  atelier --version          Show version information")
	fmt.Println("  atelier --help             Show this help")
	fmt.Println()
	fmt.Println("Export flags:")
	fmt.Println("  --raw                      Print raw markdown instead of styled output")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  ATELIER_WEBHOOK_URL        Webhook endpoint for assistant replies")
	fmt.Println("  ATELIER_API_KEY            Bearer token for the webhook")
	fmt.Println("  ATELIER_STORAGE_BACKEND    file, memory, or postgres")
	fmt.Println("  DATABASE_URL               Postgres connection URL (overrides config)")
	fmt.Println("  ATELIER_LOG_JSON           Log in JSON instead of text")
	fmt.Println("  DEBUG                      Enable debug logging")
}
