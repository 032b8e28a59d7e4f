package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nerrad567/pairing-core/internal/infrastructure/config"
)

// configPath is bound to the persistent --config flag.
var configPath string

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "pairingd",
		Short:         "Device pairing code service",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), configPath)
		},
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", getConfigPath(),
		"config file path (env PAIRING_CONFIG)")

	cmd.AddCommand(serveCmd())
	cmd.AddCommand(codeCmd())
	cmd.AddCommand(accountCmd())
	cmd.AddCommand(migrateCmd())
	cmd.AddCommand(configCmd())
	cmd.AddCommand(versionCmd())

	return cmd
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), configPath)
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "pairingd %s (commit %s, built %s)\n", version, commit, date)
		},
	}
}

// loadConfig reads the file named by --config.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}
