package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jobreach/coldreach/internal/contact"
)

var contactsCmd = &cobra.Command{
	Use:   "contacts",
	Short: "Contact list commands",
}

var contactsValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Parse and validate a contacts CSV file",
	Args:  cobra.ExactArgs(1),
	RunE:  runContactsValidate,
}

var contactsSampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Print a sample contacts CSV",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Print(contact.Sample())
	},
}

func init() {
	contactsCmd.AddCommand(contactsValidateCmd, contactsSampleCmd)
	rootCmd.AddCommand(contactsCmd)
}

func runContactsValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := setupLogger(cfg)

	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read contacts file: %w", err)
	}

	set, err := contact.NewParser(logger).Parse(string(raw))
	if err != nil {
		var ierr *contact.IngestionError
		if errors.As(err, &ierr) {
			return fmt.Errorf("contacts file rejected: %w", err)
		}
		return err
	}

	fmt.Printf("OK: %d valid contacts\n\n", len(set))

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tEMAIL\tCOMPANY")
	for _, c := range set {
		fmt.Fprintf(w, "%s\t%s\t%s\n", c.Name, c.Email, c.Company)
	}
	w.Flush()

	if dups := set.DuplicateEmails(); dups > 0 {
		fmt.Printf("\nWarning: %d duplicate email(s); each occurrence will be contacted\n", dups)
	}

	return nil
}
