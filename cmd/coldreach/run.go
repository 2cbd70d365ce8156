package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jobreach/coldreach/internal/campaign"
	"github.com/jobreach/coldreach/internal/config"
	"github.com/jobreach/coldreach/internal/contact"
	"github.com/jobreach/coldreach/internal/dispatch"
	"github.com/jobreach/coldreach/internal/history"
	"github.com/jobreach/coldreach/internal/metrics"
	"github.com/jobreach/coldreach/internal/template"
	"github.com/jobreach/coldreach/internal/transport"
)

var (
	runContactsFile string
	runResumeFile   string
	runSubject      string
	runBody         string
	runBodyFile     string
	runSenderName   string
	runSenderEmail  string
	runAppPassword  string
	runSeed         int64
	runYes          bool
	runNoHistory    bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run an outreach campaign",
	Long: `Run walks the full campaign flow: contact intake, template
preparation, sender authentication, review, and submission. When the
dispatch backend is unreachable the campaign completes in simulation
mode and no email is delivered.`,
	RunE: runCampaign,
}

func init() {
	runCmd.Flags().StringVar(&runContactsFile, "contacts", "", "contacts CSV file (overrides config)")
	runCmd.Flags().StringVar(&runResumeFile, "resume", "", "resume attachment file (overrides config)")
	runCmd.Flags().StringVar(&runSubject, "subject", "", "subject template (overrides config)")
	runCmd.Flags().StringVar(&runBody, "body", "", "body template (overrides config)")
	runCmd.Flags().StringVar(&runBodyFile, "body-file", "", "file containing the body template")
	runCmd.Flags().StringVar(&runSenderName, "sender-name", "", "sender display name (overrides config)")
	runCmd.Flags().StringVar(&runSenderEmail, "sender-email", "", "sender email address (overrides config)")
	runCmd.Flags().StringVar(&runAppPassword, "app-password", "", "sender app password (prefer COLDREACH_APP_PASSWORD)")
	runCmd.Flags().Int64Var(&runSeed, "seed", 0, "simulation RNG seed (0 = time-based)")
	runCmd.Flags().BoolVarP(&runYes, "yes", "y", false, "skip the review confirmation prompt")
	runCmd.Flags().BoolVar(&runNoHistory, "no-history", false, "do not record the campaign in local history")

	rootCmd.AddCommand(runCmd)
}

func runCampaign(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := setupLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	state, err := buildIntake(cfg, logger)
	if err != nil {
		return err
	}
	if state, err = campaign.Advance(state); err != nil {
		return err
	}

	state, err = buildTemplate(cfg, state)
	if err != nil {
		return err
	}
	if state, err = campaign.Advance(state); err != nil {
		return err
	}

	client := newDispatchClient(cfg, logger)

	state, err = authenticate(ctx, client, state)
	if err != nil {
		return err
	}
	if state, err = campaign.Advance(state); err != nil {
		return err
	}

	printReview(state)
	if !runYes {
		ok, err := confirm("Send this campaign?")
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Campaign cancelled.")
			return nil
		}
	}
	if state, err = campaign.Advance(state); err != nil {
		return err
	}

	if cfg.Metrics.Enabled {
		m := metrics.New()
		metrics.Set(m)
		srv := metrics.NewServer(m, cfg.Metrics.ListenAddr, cfg.Metrics.Path, logger)
		srv.Start()
		defer func() {
			shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutCtx)
		}()
	}

	seed := runSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	sim := campaign.NewSimulator(seed, cfg.Simulation.ContactDelay, cfg.Simulation.SuccessRate, logger)

	progress := func(p campaign.Progress) {
		fmt.Printf("[%d/%d] %s\n", p.Index, p.Total, p.Line)
	}

	orch := campaign.NewOrchestrator(client, sim, cfg.API.WarmUp, progress, logger)

	fmt.Println()
	summary, err := orch.Submit(ctx, state)
	if err != nil {
		return fmt.Errorf("campaign failed: %w", err)
	}

	if !runNoHistory {
		if err := saveHistory(cfg, summary); err != nil {
			logger.Warn("failed to record campaign history", "error", err)
		}
	}

	printSummary(summary)
	return nil
}

// buildIntake assembles the intake step from config and flags: sender
// identity, parsed contacts, and the resume attachment.
func buildIntake(cfg *config.Config, logger *slog.Logger) (campaign.State, error) {
	state := campaign.NewState()

	name := cfg.Sender.Name
	if runSenderName != "" {
		name = runSenderName
	}
	email := cfg.Sender.Email
	if runSenderEmail != "" {
		email = runSenderEmail
	}
	if email == "" {
		return state, fmt.Errorf("sender email is required (sender.email in config or --sender-email)")
	}
	state = state.WithSender(name, email)

	contactsFile := cfg.Campaign.ContactsFile
	if runContactsFile != "" {
		contactsFile = runContactsFile
	}
	if contactsFile == "" {
		return state, fmt.Errorf("contacts file is required (campaign.contacts_file in config or --contacts)")
	}
	raw, err := os.ReadFile(contactsFile)
	if err != nil {
		return state, fmt.Errorf("read contacts file: %w", err)
	}
	set, err := contact.NewParser(nil).Parse(string(raw))
	if err != nil {
		return state, fmt.Errorf("parse contacts: %w", err)
	}
	if dups := set.DuplicateEmails(); dups > 0 {
		logger.Warn("contact list contains duplicate emails; each occurrence will be contacted",
			"duplicates", dups)
	}
	state = state.WithContacts(set)
	fmt.Printf("Loaded %d contacts from %s\n", len(set), contactsFile)

	resumeFile := cfg.Campaign.ResumeFile
	if runResumeFile != "" {
		resumeFile = runResumeFile
	}
	if resumeFile == "" {
		return state, fmt.Errorf("resume file is required (campaign.resume_file in config or --resume)")
	}
	resume, err := os.ReadFile(resumeFile)
	if err != nil {
		return state, fmt.Errorf("read resume file: %w", err)
	}
	state = state.WithResume(resumeFileName(resumeFile), resume)

	return state, nil
}

func resumeFileName(path string) string {
	if i := strings.LastIndexAny(path, "/\\"); i >= 0 {
		return path[i+1:]
	}
	return path
}

// buildTemplate resolves the subject/body patterns and rejects unknown
// placeholder markers before anything is sent.
func buildTemplate(cfg *config.Config, state campaign.State) (campaign.State, error) {
	subject := cfg.Campaign.Subject
	if runSubject != "" {
		subject = runSubject
	}

	body := cfg.Campaign.Body
	if cfg.Campaign.BodyFile != "" {
		data, err := os.ReadFile(cfg.Campaign.BodyFile)
		if err != nil {
			return state, fmt.Errorf("read body file: %w", err)
		}
		body = string(data)
	}
	if runBodyFile != "" {
		data, err := os.ReadFile(runBodyFile)
		if err != nil {
			return state, fmt.Errorf("read body file: %w", err)
		}
		body = string(data)
	}
	if runBody != "" {
		body = runBody
	}

	for _, pattern := range []string{subject, body} {
		if unknown := template.Validate(pattern); len(unknown) > 0 {
			return state, fmt.Errorf("unknown placeholders %s (known: %s)",
				strings.Join(unknown, ", "), strings.Join(template.Placeholders(), ", "))
		}
	}

	return state.WithTemplate(campaign.Template{Subject: subject, Body: body}), nil
}

// authenticate verifies the sender credentials against the backend. Only
// a successful connection test authenticates the state: a transport
// failure leaves it unauthenticated and surfaces the remediation hint, so
// the user can retry once the backend is awake.
func authenticate(ctx context.Context, client *dispatch.Client, state campaign.State) (campaign.State, error) {
	password := strings.TrimSpace(runAppPassword)
	if password == "" {
		password = strings.TrimSpace(os.Getenv("COLDREACH_APP_PASSWORD"))
	}
	if password == "" {
		return state, fmt.Errorf("app password is required (set COLDREACH_APP_PASSWORD or --app-password)")
	}
	if !campaign.ValidAppPassword(password) {
		return state, fmt.Errorf("app password should be %d characters long", campaign.AppPasswordLength)
	}
	creds := campaign.Credentials{Address: state.SenderEmail, AppPassword: password}

	fmt.Printf("Verifying credentials for %s...\n", state.SenderEmail)
	resp, err := client.TestConnection(ctx, creds.Address, creds.AppPassword)
	if err != nil {
		if ctx.Err() != nil {
			return state, ctx.Err()
		}
		state = state.WithAuthResult(creds, false)
		var terr *transport.Error
		if errors.As(err, &terr) {
			return state, fmt.Errorf("connection test failed (%s): %s", terr.Kind, terr.Hint())
		}
		return state, fmt.Errorf("connection test failed: %w", err)
	}
	if !resp.Success {
		state = state.WithAuthResult(creds, false)
		return state, fmt.Errorf("authentication failed: %s", resp.Message)
	}

	fmt.Println("Credentials verified.")
	return state.WithAuthResult(creds, true), nil
}

func printReview(state campaign.State) {
	fmt.Println()
	fmt.Println("Campaign review")
	fmt.Printf("  Sender:   %s <%s>\n", state.SenderName, state.SenderEmail)
	fmt.Printf("  Contacts: %d\n", len(state.Contacts))
	fmt.Printf("  Resume:   %s (%d bytes)\n", state.ResumeName, len(state.Resume))
	fmt.Printf("  Subject:  %s\n", state.Template.Subject)

	if len(state.Contacts) > 0 {
		first := state.Contacts[0]
		vars := template.Vars{
			HRName:      first.Name,
			Company:     first.Company,
			SenderName:  state.SenderName,
			SenderEmail: state.SenderEmail,
		}
		fmt.Println()
		fmt.Printf("Preview for %s (%s):\n", first.Name, first.Email)
		fmt.Printf("  Subject: %s\n", template.Render(state.Template.Subject, vars))
		fmt.Println("  Body:")
		for _, line := range strings.Split(template.Render(state.Template.Body, vars), "\n") {
			fmt.Printf("    %s\n", line)
		}
	}
	fmt.Println()
}

func confirm(prompt string) (bool, error) {
	fmt.Printf("%s [y/N]: ", prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false, fmt.Errorf("read confirmation: %w", err)
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

func saveHistory(cfg *config.Config, summary *campaign.Summary) error {
	store, err := history.Open(cfg.History.Path)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.Save(summary)
}

func printSummary(summary *campaign.Summary) {
	fmt.Println()
	if summary.Mode == campaign.ModeSimulated {
		fmt.Println("Campaign completed in SIMULATION mode - no emails were delivered.")
	} else {
		fmt.Println("Campaign completed.")
	}
	fmt.Printf("  ID:         %s\n", summary.ID)
	fmt.Printf("  Total:      %d\n", summary.Total)
	fmt.Printf("  Successful: %d\n", summary.Successful)
	fmt.Printf("  Failed:     %d\n", summary.Failed)
	fmt.Printf("  Duration:   %s\n", summary.FinishedAt.Sub(summary.StartedAt).Round(time.Millisecond))
}

func newDispatchClient(cfg *config.Config, logger *slog.Logger) *dispatch.Client {
	t := transport.New(transport.Config{
		BaseURL:          cfg.API.BaseURL,
		RelayURL:         cfg.API.RelayURL,
		RestrictedOrigin: cfg.API.RestrictedOrigin,
		Timeout:          cfg.API.Timeout,
		ProbeTimeout:     cfg.API.ProbeTimeout,
		SettleDelay:      cfg.API.SettleDelay,
	}, logger)
	return dispatch.NewClient(t, logger)
}
