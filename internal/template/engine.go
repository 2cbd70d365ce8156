// Package template renders per-contact message personalization.
//
// Patterns use literal {placeholder} markers rather than text/template
// syntax: the people writing them are pasting a cover letter into a form,
// not programming. Substitution happens in a single pass so values that
// themselves contain placeholder-shaped text are never re-expanded.
package template

import (
	"fmt"
	"regexp"
	"strings"
)

// Recognized placeholders.
const (
	PlaceholderHRName      = "{hr_name}"
	PlaceholderCompany     = "{company}"
	PlaceholderSenderName  = "{sender_name}"
	PlaceholderSenderEmail = "{sender_email}"
)

// Placeholders returns the recognized markers in documentation order.
func Placeholders() []string {
	return []string{PlaceholderHRName, PlaceholderCompany, PlaceholderSenderName, PlaceholderSenderEmail}
}

// Vars holds the substitution values for one rendered message.
type Vars struct {
	HRName      string
	Company     string
	SenderName  string
	SenderEmail string
}

// Render replaces every occurrence of the recognized placeholders with the
// matching value. The replacement is a single left-to-right pass: already
// substituted text is never rescanned, and unrecognized {markers} pass
// through as literal text.
func Render(pattern string, vars Vars) string {
	r := strings.NewReplacer(
		PlaceholderHRName, vars.HRName,
		PlaceholderCompany, vars.Company,
		PlaceholderSenderName, vars.SenderName,
		PlaceholderSenderEmail, vars.SenderEmail,
	)
	return r.Replace(pattern)
}

var markerPattern = regexp.MustCompile(`\{[a-z_]+\}`)

// Validate reports marker-shaped sequences in pattern that match no
// recognized placeholder. They are not an error (Render leaves them
// alone), but authoring tools should surface them as likely typos.
func Validate(pattern string) []string {
	known := make(map[string]bool, 4)
	for _, p := range Placeholders() {
		known[p] = true
	}

	var unknown []string
	seen := make(map[string]bool)
	for _, m := range markerPattern.FindAllString(pattern, -1) {
		if !known[m] && !seen[m] {
			unknown = append(unknown, m)
			seen[m] = true
		}
	}
	return unknown
}

// Describe returns a one-line summary of a pattern for review output.
func Describe(pattern string) string {
	used := 0
	for _, p := range Placeholders() {
		if strings.Contains(pattern, p) {
			used++
		}
	}
	return fmt.Sprintf("%d chars, %d placeholder kinds", len(pattern), used)
}

// DefaultSubject and DefaultBody are the stock outreach patterns offered
// when the user has not written their own.
const DefaultSubject = "Exploring Internship Opportunities at {company}"

const DefaultBody = `Dear {hr_name},

I hope you're doing well. My name is {sender_name}, and I came across {company}'s work and would love the chance to explore opportunities with your team.

I'm excited about the possibility of contributing to {company}, while also learning and growing under the guidance of your team. Please let me know if we could connect further about potential opportunities.

Looking forward to your response,
{sender_name}
{sender_email}`
