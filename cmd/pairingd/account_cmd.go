package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/nerrad567/pairing-core/internal/account"
	"github.com/nerrad567/pairing-core/internal/audit"
	"github.com/nerrad567/pairing-core/internal/auth"
	"github.com/nerrad567/pairing-core/internal/infrastructure/logging"
	"github.com/nerrad567/pairing-core/internal/mail"
)

func accountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage operator accounts",
	}

	cmd.AddCommand(accountCreateCmd())
	cmd.AddCommand(accountSetActiveCmd("enable", true))
	cmd.AddCommand(accountSetActiveCmd("disable", false))
	cmd.AddCommand(accountAuditCmd())

	return cmd
}

func accountCreateCmd() *cobra.Command {
	var email, name string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an account (password is read from stdin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			password, err := readPassword(cmd.InOrStdin())
			if err != nil {
				return err
			}
			return withStore(cmd.Context(), func(st *store) error {
				svc := account.NewService(st.accounts, st.audit, mail.NewLogMailer(st.log), "", st.log)
				a, err := svc.Create(cmd.Context(), email, name, password, audit.SourceCLI)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Account %s created for %s.\n", a.ID, a.Email)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "login email address (required)")
	cmd.Flags().StringVar(&name, "name", "", "display name used in notification emails")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func accountSetActiveCmd(use string, active bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " EMAIL",
		Short: strings.ToUpper(use[:1]) + use[1:] + " an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(st *store) error {
				a, err := st.accounts.GetByEmail(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if err := st.accounts.SetActive(cmd.Context(), a.ID, active); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Account %s %sd.\n", a.Email, use)
				return nil
			})
		},
	}
}

func accountAuditCmd() *cobra.Command {
	var (
		action string
		email  string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "List recent account audit entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(cmd.Context(), func(st *store) error {
				f := audit.Filter{Action: action, Limit: limit}
				if email != "" {
					a, err := st.accounts.GetByEmail(cmd.Context(), email)
					if err != nil {
						return err
					}
					f.AccountID = a.ID
				}

				page, err := st.audit.List(cmd.Context(), f)
				if err != nil {
					return err
				}

				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "TIME\tACTION\tACCOUNT\tSOURCE")
				for _, e := range page.Entries {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
						e.CreatedAt.Format(time.RFC3339), e.Action, e.AccountID, e.Source)
				}
				if err := tw.Flush(); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "\n%d of %d entries\n", len(page.Entries), page.Total)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&action, "action", "", "only show this action (e.g. login_failed)")
	cmd.Flags().StringVar(&email, "email", "", "only show entries for this account")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum entries to show")

	return cmd
}

// readPassword takes the first line of r.
func readPassword(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading password: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", errors.New("password must be supplied on stdin")
	}
	return line, nil
}

// store bundles the SQLite-backed repositories used by account commands.
type store struct {
	accounts *auth.SQLiteAccountRepository
	audit    *audit.SQLiteRepository
	log      *logging.Logger
}

// withStore opens and migrates the database, then runs fn.
func withStore(ctx context.Context, fn func(*store) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := cliLogger(cfg)

	db, err := openDatabase(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer db.Close() //nolint:errcheck // CLI exit

	return fn(&store{
		accounts: auth.NewAccountRepository(db.DB),
		audit:    audit.NewSQLiteRepository(db.DB),
		log:      log,
	})
}
