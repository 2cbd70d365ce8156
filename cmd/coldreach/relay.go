package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jobreach/coldreach/internal/metrics"
	"github.com/jobreach/coldreach/internal/relay"
)

var relayCmd = &cobra.Command{
	Use:   "relay",
	Short: "Relay server commands",
}

var relayServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the read-only request relay",
	Long: `Serve runs the relay that forwards read-only requests to the
dispatch backend on behalf of clients whose network blocks direct calls.
Only GET requests are forwarded; submissions always go direct.`,
	RunE: runRelayServe,
}

func init() {
	relayCmd.AddCommand(relayServeCmd)
	rootCmd.AddCommand(relayCmd)
}

func runRelayServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := setupLogger(cfg)

	if cfg.Metrics.Enabled {
		m := metrics.New()
		metrics.Set(m)
		msrv := metrics.NewServer(m, cfg.Metrics.ListenAddr, cfg.Metrics.Path, logger)
		msrv.Start()
		defer func() {
			shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			msrv.Shutdown(shutCtx)
		}()
	}

	srv := relay.NewServer(relay.Config{
		ListenAddr:   cfg.Relay.ListenAddr,
		AllowedHosts: cfg.Relay.AllowedHosts,
		FetchTimeout: cfg.Relay.FetchTimeout,
	}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("relay listening", "addr", cfg.Relay.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("relay server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down relay")
	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutCtx)
}
