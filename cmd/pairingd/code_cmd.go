package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/nerrad567/pairing-core/internal/infrastructure/cache"
	"github.com/nerrad567/pairing-core/internal/infrastructure/config"
	"github.com/nerrad567/pairing-core/internal/infrastructure/logging"
	"github.com/nerrad567/pairing-core/internal/pairing"
)

func codeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "code",
		Short: "Issue, inspect and revoke pairing codes",
	}

	cmd.AddCommand(codeIssueCmd())
	cmd.AddCommand(codeShowCmd())
	cmd.AddCommand(codeRevokeCmd())

	return cmd
}

func codeIssueCmd() *cobra.Command {
	var state, packaging string

	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Issue a pairing code without going through the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withIssuer(cmd.Context(), true, func(issuer *pairing.Issuer, _ *cache.Client) error {
				s, err := issuer.Issue(cmd.Context(), state, packaging)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), s)
			})
		},
	}
	cmd.Flags().StringVar(&state, "state", "", "opaque state to bind to the code (required)")
	cmd.Flags().StringVar(&packaging, "packaging", "", "packaging type label")
	_ = cmd.MarkFlagRequired("state")

	return cmd
}

// codeSummary is what "code show" prints. The token is left out.
type codeSummary struct {
	Code          string `json:"code"`
	State         string `json:"state"`
	PackagingType string `json:"packaging_type,omitempty"`
	ExpiresIn     int    `json:"expires_in"`
}

func codeShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show CODE",
		Short: "Show a live pairing code without consuming it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withIssuer(cmd.Context(), false, func(issuer *pairing.Issuer, c *cache.Client) error {
				s, err := issuer.Lookup(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				ttl, err := c.TTL(cmd.Context(), pairing.Key(s.Code))
				if err != nil && !errors.Is(err, cache.ErrKeyNotFound) {
					return err
				}
				return printJSON(cmd.OutOrStdout(), codeSummary{
					Code:          s.Code,
					State:         s.State,
					PackagingType: s.PackagingType,
					ExpiresIn:     int(ttl / time.Second),
				})
			})
		},
	}
}

func codeRevokeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "revoke CODE",
		Short: "Consume a pairing code so it can no longer be redeemed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withIssuer(cmd.Context(), true, func(issuer *pairing.Issuer, _ *cache.Client) error {
				s, err := issuer.Consume(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Code %s revoked.\n", s.Code)
				return nil
			})
		},
	}
}

// withIssuer connects the cache, builds an issuer and runs fn. When events is
// true the issuer also publishes to the configured event backends.
func withIssuer(ctx context.Context, events bool, fn func(*pairing.Issuer, *cache.Client) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := cliLogger(cfg)

	c, err := cache.Connect(ctx, cfg.Cache)
	if err != nil {
		return fmt.Errorf("connecting to cache: %w", err)
	}
	defer c.Close() //nolint:errcheck // CLI exit

	issuer := newIssuer(cfg, c, log)
	if events {
		sink, err := connectEventSink(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer sink.Close()
		sink.attach(issuer)
	}

	return fn(issuer, c)
}

// cliLogger keeps operator commands quiet unless something goes wrong.
func cliLogger(cfg *config.Config) *logging.Logger {
	lc := cfg.Logging
	lc.Level = "warn"
	lc.Format = "text"
	lc.Output = "stderr"
	return logging.New(lc, version)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
