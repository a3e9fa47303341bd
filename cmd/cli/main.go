package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/iho/gobalance/internal/infrastructure/config"
	"github.com/iho/gobalance/internal/infrastructure/logger"
	"github.com/iho/gobalance/internal/infrastructure/postgres"
)

var (
	baseURL string
	token   string
	timeout time.Duration

	bcryptGenerate = bcrypt.GenerateFromPassword
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "gobalance-cli",
		Short:         "GoBalance CLI tool",
		Long:          `A command line interface for interacting with the GoBalance API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the GoBalance API")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("GOBALANCE_TOKEN"), "Bearer token (defaults to $GOBALANCE_TOKEN)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	accountCmd := &cobra.Command{
		Use:   "account",
		Short: "Account operations",
	}
	accountCmd.AddCommand(accountListCmd(), accountReconcileCmd())

	rootCmd.AddCommand(loginCmd(), accountCmd, migrateCmd(), hashPasswordCmd())
	return rootCmd
}

func loginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and print a bearer token",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp struct {
				JWT string `json:"jwt"`
			}
			body := map[string]string{"email": email, "password": password}
			if err := newAPIClient().do(cmd.Context(), http.MethodPost, "/api/v1/login", body, &resp); err != nil {
				return err
			}
			fmt.Println(resp.JWT)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")
	return cmd
}

func accountListCmd() *cobra.Command {
	var inactive bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts with their balances",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/accounts"
			if inactive {
				path += "/inactive"
			}

			var accounts []struct {
				ID             string `json:"id"`
				Name           string `json:"name"`
				CurrentBalance string `json:"current_balance"`
				PendingBalance string `json:"pending_balance"`
			}
			if err := newAPIClient().do(cmd.Context(), http.MethodGet, path, nil, &accounts); err != nil {
				return err
			}

			tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tCURRENT\tPENDING")
			for _, a := range accounts {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", a.ID, truncate(a.Name, 24), a.CurrentBalance, a.PendingBalance)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&inactive, "inactive", false, "List deactivated accounts")
	return cmd
}

func accountReconcileCmd() *cobra.Command {
	var repair bool

	cmd := &cobra.Command{
		Use:   "reconcile <account-id>",
		Short: "Compare an account's cached balance with its transactions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			method := http.MethodGet
			if repair {
				method = http.MethodPost
			}

			var result map[string]any
			path := "/api/v1/accounts/" + args[0] + "/reconciliation"
			if err := newAPIClient().do(cmd.Context(), method, path, nil, &result); err != nil {
				return err
			}

			printJSON(result)
			if consistent, _ := result["consistent"].(bool); !consistent && !repair {
				return errors.New("balance drift detected, rerun with --repair to fix")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&repair, "repair", false, "Rewrite the cached balance when it drifted")
	return cmd
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
	}

	run := func(down bool) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			log := logger.New(logger.Config{Level: cfg.LogLevel, Format: "console"}, os.Stderr).
				With().Str("component", "migrate").Logger()

			m := postgres.NewMigrator(cfg.DatabaseURL, cfg.MigrationsPath, log)
			if down {
				return m.Down()
			}
			return m.Up()
		}
	}

	cmd.AddCommand(
		&cobra.Command{Use: "up", Short: "Apply all pending migrations", RunE: run(false)},
		&cobra.Command{Use: "down", Short: "Roll back the last migration", RunE: run(true)},
	)
	return cmd
}

func hashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print the bcrypt hash of a password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := bcryptGenerate([]byte(args[0]), bcrypt.DefaultCost)
			if err != nil {
				return fmt.Errorf("hash password: %w", err)
			}
			fmt.Println(string(hash))
			return nil
		},
	}
}

type apiClient struct {
	baseURL string
	token   string
	http    *http.Client
}

func newAPIClient() *apiClient {
	return &apiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

// do sends body as JSON and decodes a 2xx response into out. Error
// responses are returned with the server's message.
func (c *apiClient) do(ctx context.Context, method, path string, body, out any) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error != "" {
			if apiErr.Message != "" {
				return fmt.Errorf("%s (%d): %s", apiErr.Error, resp.StatusCode, apiErr.Message)
			}
			return fmt.Errorf("%s (%d)", apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, truncate(string(raw), 200))
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, out)
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		logger := zerolog.New(os.Stderr)
		logger.Error().Err(err).Msg("failed to encode output")
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
