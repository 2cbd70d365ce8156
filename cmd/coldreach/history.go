package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jobreach/coldreach/internal/campaign"
	"github.com/jobreach/coldreach/internal/history"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Campaign history commands",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent campaigns",
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a campaign's per-contact results",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

func init() {
	historyListCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum campaigns to list")

	historyCmd.AddCommand(historyListCmd, historyShowCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := history.Open(cfg.History.Path)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer store.Close()

	summaries, err := store.List(historyLimit)
	if err != nil {
		return fmt.Errorf("list history: %w", err)
	}
	if len(summaries) == 0 {
		fmt.Println("No campaigns recorded.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTARTED\tMODE\tTOTAL\tSENT\tFAILED\tSENDER")
	for _, s := range summaries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			s.ID, s.StartedAt.Format("2006-01-02 15:04"), s.Mode,
			s.Total, s.Successful, s.Failed, s.Sender)
	}
	return w.Flush()
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := history.Open(cfg.History.Path)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer store.Close()

	s, err := store.Get(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Campaign %s\n", s.ID)
	fmt.Printf("  Mode:       %s\n", s.Mode)
	fmt.Printf("  Sender:     %s\n", s.Sender)
	fmt.Printf("  Started:    %s\n", s.StartedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("  Finished:   %s\n", s.FinishedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("  Total:      %d\n", s.Total)
	fmt.Printf("  Successful: %d\n", s.Successful)
	fmt.Printf("  Failed:     %d\n", s.Failed)
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tEMAIL\tSTATUS\tDETAIL")
	for _, r := range s.Results {
		status := "sent"
		if !r.Delivered {
			status = "failed"
		}
		if s.Mode == campaign.ModeSimulated {
			status = "simulated " + status
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.Contact.Name, r.Contact.Email, status, r.ErrorDetail)
	}
	return w.Flush()
}
