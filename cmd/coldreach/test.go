package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jobreach/coldreach/internal/campaign"
	"github.com/jobreach/coldreach/internal/transport"
)

var testEmail string

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Backend diagnostics commands",
}

var testHealthCmd = &cobra.Command{
	Use:   "health",
	Short: "Probe the dispatch backend health endpoint",
	RunE:  runTestHealth,
}

var testConnectionCmd = &cobra.Command{
	Use:   "connection",
	Short: "Verify sender credentials against the backend",
	RunE:  runTestConnection,
}

func init() {
	testConnectionCmd.Flags().StringVar(&testEmail, "email", "", "sender email (defaults to config)")

	testCmd.AddCommand(testHealthCmd, testConnectionCmd)
	rootCmd.AddCommand(testCmd)
}

func runTestHealth(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := setupLogger(cfg)

	if cfg.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is not configured")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := newDispatchClient(cfg, logger)

	fmt.Printf("Probing %s...\n", client.BaseURL())
	health, path, err := client.Health(ctx)
	if err != nil {
		var terr *transport.Error
		if errors.As(err, &terr) {
			return fmt.Errorf("probe failed (%s): %s", terr.Kind, terr.Hint())
		}
		return err
	}

	fmt.Printf("Status:  %s\n", health.Status)
	if health.Service != "" {
		fmt.Printf("Service: %s\n", health.Service)
	}
	if health.Version != "" {
		fmt.Printf("Version: %s\n", health.Version)
	}
	fmt.Printf("Path:    %s\n", path)
	if path == transport.PathRelayed {
		fmt.Println("Note: the direct path failed; submissions may need a warm backend.")
	}
	return nil
}

func runTestConnection(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := setupLogger(cfg)

	email := cfg.Sender.Email
	if testEmail != "" {
		email = testEmail
	}
	if email == "" {
		return fmt.Errorf("sender email is required (sender.email in config or --email)")
	}

	password := strings.TrimSpace(os.Getenv("COLDREACH_APP_PASSWORD"))
	if password == "" {
		return fmt.Errorf("app password is required (set COLDREACH_APP_PASSWORD)")
	}
	if !campaign.ValidAppPassword(password) {
		return fmt.Errorf("app password should be %d characters long", campaign.AppPasswordLength)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := newDispatchClient(cfg, logger)

	fmt.Printf("Verifying credentials for %s...\n", email)
	resp, err := client.TestConnection(ctx, email, password)
	if err != nil {
		var terr *transport.Error
		if errors.As(err, &terr) {
			return fmt.Errorf("connection test failed (%s): %s", terr.Kind, terr.Hint())
		}
		return err
	}

	if !resp.Success {
		return fmt.Errorf("authentication failed: %s", resp.Message)
	}
	fmt.Printf("OK: %s\n", resp.Message)
	return nil
}
