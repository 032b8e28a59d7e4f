package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/nerrad567/pairing-core/internal/infrastructure/config"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "View and validate configuration",
	}
	cmd.AddCommand(configShowCmd())
	cmd.AddCommand(configPathCmd())
	cmd.AddCommand(configValidateCmd())
	return cmd
}

func configShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display the effective configuration (secrets redacted)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			redacted, err := redactConfig(cfg)
			if err != nil {
				return err
			}
			data, err := yaml.Marshal(redacted)
			if err != nil {
				return fmt.Errorf("encoding config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

func configPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), configPath)
		},
	}
}

func configValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := loadConfig(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Config at %s is valid.\n", configPath)
			return nil
		},
	}
}

// secretKeys are YAML keys whose values are masked by config show.
var secretKeys = map[string]bool{
	"password": true,
	"secret":   true,
	"token":    true,
}

// redactConfig round-trips cfg through YAML into a generic map with secrets
// masked.
func redactConfig(cfg *config.Config) (map[string]any, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	redactMap(raw)
	return raw, nil
}

func redactMap(m map[string]any) {
	for k, v := range m {
		if secretKeys[k] {
			if s, ok := v.(string); ok && s != "" {
				m[k] = "****"
			}
		} else if sub, ok := v.(map[string]any); ok {
			redactMap(sub)
		}
	}
}
