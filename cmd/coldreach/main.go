package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jobreach/coldreach/internal/config"
)

var (
	cfgFile   string
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "coldreach",
	Short: "Coldreach - outreach campaign runner",
	Long: `Coldreach prepares and sends personalized job-outreach email campaigns:
it ingests a contact CSV, fills subject/body templates per contact, and
submits the batch to a mail-dispatch backend, simulating delivery when
the backend is unreachable.`,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration commands",
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	RunE:  runConfigValidate,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("coldreach version %s\n", version)
		if commit != "unknown" {
			fmt.Printf("  commit: %s\n", commit)
		}
		if buildTime != "unknown" {
			fmt.Printf("  built:  %s\n", buildTime)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")

	configCmd.AddCommand(configValidateCmd)
	rootCmd.AddCommand(configCmd, versionCmd)
}

// loadConfig loads the YAML config (or built-in defaults when no -c flag
// is given) after overlaying a local .env file onto the environment.
func loadConfig() (*config.Config, error) {
	// Missing .env is fine; it only supplies COLDREACH_APP_PASSWORD
	// and friends for local runs.
	_ = godotenv.Load()

	if cfgFile == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func setupLogger(cfg *config.Config) *slog.Logger {
	logger := config.SetupLogger(cfg.Logging)
	slog.SetDefault(logger)
	return logger
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	if cfgFile == "" {
		return fmt.Errorf("config file is required (use -c flag)")
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("configuration is invalid: %w", err)
	}

	fmt.Printf("Configuration is valid\n")
	fmt.Printf("  API: %s\n", cfg.API.BaseURL)
	if cfg.API.RelayURL != "" {
		fmt.Printf("  Relay: %s\n", cfg.API.RelayURL)
	}
	fmt.Printf("  Sender: %s <%s>\n", cfg.Sender.Name, cfg.Sender.Email)
	fmt.Printf("  History: %s\n", cfg.History.Path)

	return nil
}
