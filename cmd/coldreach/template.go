package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jobreach/coldreach/internal/template"
)

var (
	previewSubject string
	previewBody    string
	previewName    string
	previewCompany string
)

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Template commands",
}

var templatePlaceholdersCmd = &cobra.Command{
	Use:   "placeholders",
	Short: "List supported placeholders",
	Run: func(cmd *cobra.Command, args []string) {
		for _, p := range template.Placeholders() {
			fmt.Println(p)
		}
	},
}

var templatePreviewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Render the subject and body templates with sample data",
	RunE:  runTemplatePreview,
}

func init() {
	templatePreviewCmd.Flags().StringVar(&previewSubject, "subject", "", "subject template (defaults to config)")
	templatePreviewCmd.Flags().StringVar(&previewBody, "body", "", "body template (defaults to config)")
	templatePreviewCmd.Flags().StringVar(&previewName, "name", "Alex Rivera", "recipient name for the preview")
	templatePreviewCmd.Flags().StringVar(&previewCompany, "company", "Acme Corp", "recipient company for the preview")

	templateCmd.AddCommand(templatePlaceholdersCmd, templatePreviewCmd)
	rootCmd.AddCommand(templateCmd)
}

func runTemplatePreview(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	subject := cfg.Campaign.Subject
	if previewSubject != "" {
		subject = previewSubject
	}
	body := cfg.Campaign.Body
	if previewBody != "" {
		body = previewBody
	}

	for _, pattern := range []string{subject, body} {
		if unknown := template.Validate(pattern); len(unknown) > 0 {
			return fmt.Errorf("unknown placeholders %s (known: %s)",
				strings.Join(unknown, ", "), strings.Join(template.Placeholders(), ", "))
		}
	}

	vars := template.Vars{
		HRName:      previewName,
		Company:     previewCompany,
		SenderName:  cfg.Sender.Name,
		SenderEmail: cfg.Sender.Email,
	}

	fmt.Printf("Subject: %s\n\n", template.Render(subject, vars))
	fmt.Println(template.Render(body, vars))
	return nil
}
