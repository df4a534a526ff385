// Package main is the entry point for the pagespeed-history application
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ethpandaops/pagespeed-history/cmd"
	"github.com/joho/godotenv"
)

const (
	envFlag      = "--env"
	envFlagEqual = "--env="
)

func main() {
	// Parse --env flag and determine mode
	envFile, runTUI := parseArgs(os.Args)

	if runTUI {
		// Load env file for TUI mode
		if err := loadEnvFile(envFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error loading env file: %v\n", err)
			os.Exit(1)
		}
		// Re-read LOG_LEVEL now that the env file is loaded
		cmd.InitLogger()
		cmd.RunInteractive(context.Background())
	} else {
		// Arguments provided - run cobra CLI (it will handle --env flag itself)
		cmd.Execute()
	}
}

// parseArgs extracts the env file and reports whether only --env (or nothing) was given.
func parseArgs(args []string) (envFile string, runTUI bool) {
	for i, arg := range args {
		if arg == envFlag && i+1 < len(args) {
			envFile = args[i+1]
			break
		}
		if strings.HasPrefix(arg, envFlagEqual) {
			envFile = arg[len(envFlagEqual):]
			break
		}
	}

	switch len(args) {
	case 1:
		return envFile, true
	case 2:
		if args[1] == envFlag {
			fmt.Fprintln(os.Stderr, "Error: --env flag requires a value")
			os.Exit(1)
		}
		return envFile, strings.HasPrefix(args[1], envFlagEqual)
	case 3:
		return envFile, args[1] == envFlag
	default:
		return envFile, false
	}
}

// loadEnvFile loads the specified environment file
func loadEnvFile(file string) error {
	if file == "" {
		file = ".env"
	}

	if err := godotenv.Load(file); err != nil {
		// If it's the default .env file and it doesn't exist, that's okay
		if file == ".env" && os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to load env file '%s': %w", file, err)
	}

	return nil
}
