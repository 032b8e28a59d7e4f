// pairingd issues short-lived pairing codes that devices display so an
// operator can claim them, and serves the account endpoints around it.
//
// Running the binary with no subcommand starts the HTTP service. The other
// subcommands are operator tools that share the same configuration file.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// getConfigPath returns the configuration file path.
// Uses PAIRING_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("PAIRING_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
