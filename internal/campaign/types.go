// Package campaign holds the wizard state machine, the submission
// orchestrator, and the non-delivering simulation fallback.
package campaign

import (
	"fmt"
	"strings"
	"time"

	"github.com/jobreach/coldreach/internal/contact"
)

// Mode tags a summary with how the campaign was executed.
type Mode string

const (
	ModeReal      Mode = "real"
	ModeSimulated Mode = "simulated"
)

// Credentials are the authenticated sender account details. They live in
// process memory for the session only and are never persisted or logged.
type Credentials struct {
	Address     string
	AppPassword string
}

// AppPasswordLength is the fixed length of a Gmail app password (four
// groups of four, entered without spaces).
const AppPasswordLength = 16

// ValidAppPassword reports whether a trimmed app password has the expected
// shape. Checked before the connection test so an obviously mistyped
// password never leaves the machine.
func ValidAppPassword(p string) bool {
	return len(p) == AppPasswordLength
}

// Template is the subject/body pattern pair authored in the template step.
type Template struct {
	Subject string
	Body    string
}

// SendResult is the outcome for one contact.
type SendResult struct {
	Contact     contact.Contact `json:"contact"`
	Delivered   bool            `json:"delivered"`
	ErrorDetail string          `json:"error_detail,omitempty"`
}

// Summary aggregates the per-contact outcomes of one campaign run.
type Summary struct {
	ID         string       `json:"id"`
	Mode       Mode         `json:"mode"`
	Total      int          `json:"total"`
	Successful int          `json:"successful"`
	Failed     int          `json:"failed"`
	Results    []SendResult `json:"results"`
	Sender     string       `json:"sender"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
}

// Progress is one per-contact progress signal emitted while sending or
// simulating. Line is ready for display and already carries the
// simulation prefix when no real delivery occurred.
type Progress struct {
	Index  int // 1-based
	Total  int
	Result SendResult
	Line   string
}

// OrchestrationError reports a submission attempted with an incomplete
// payload. It is raised before any network activity.
type OrchestrationError struct {
	Missing []string
}

func (e *OrchestrationError) Error() string {
	return fmt.Sprintf("campaign payload incomplete: missing %s", strings.Join(e.Missing, ", "))
}
