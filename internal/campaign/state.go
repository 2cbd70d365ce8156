package campaign

import (
	"fmt"
	"strings"

	"github.com/jobreach/coldreach/internal/contact"
)

// Step is one ordered stage of campaign setup.
type Step int

const (
	StepIntake Step = iota
	StepTemplate
	StepAuth
	StepReview
	StepSending
)

func (s Step) String() string {
	switch s {
	case StepIntake:
		return "intake"
	case StepTemplate:
		return "template"
	case StepAuth:
		return "auth"
	case StepReview:
		return "review"
	case StepSending:
		return "sending"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

// State is the accumulated campaign data plus the current wizard
// position. It is a value: transitions and assignment helpers return a
// new State and never mutate the receiver, so a failed guard leaves the
// caller's state untouched.
type State struct {
	Step Step

	SenderName  string
	SenderEmail string

	Contacts   contact.Set
	ResumeName string
	Resume     []byte

	Template Template

	Credentials   *Credentials
	Authenticated bool
}

// NewState starts a session at the intake step.
func NewState() State {
	return State{Step: StepIntake}
}

// ValidationError reports a forward transition blocked by a failed guard.
type ValidationError struct {
	Step    Step
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("cannot leave %s step: %s", e.Step, strings.Join(e.Missing, "; "))
}

// Advance moves one step forward if the current step's guard passes.
// On failure it returns the unchanged state and a *ValidationError naming
// every missing precondition.
func Advance(s State) (State, error) {
	var missing []string

	switch s.Step {
	case StepIntake:
		if s.SenderEmail == "" {
			missing = append(missing, "sender address is required")
		} else if !contact.ValidEmail(s.SenderEmail) {
			missing = append(missing, "sender address is not a valid email address")
		} else if !strings.HasSuffix(strings.ToLower(s.SenderEmail), "@gmail.com") {
			missing = append(missing, "sender address must be a Gmail address (ending in @gmail.com)")
		}
		if len(s.Contacts) == 0 {
			missing = append(missing, "a non-empty contact list is required")
		}
		if len(s.Resume) == 0 {
			missing = append(missing, "a resume file is required")
		}
	case StepTemplate:
		if strings.TrimSpace(s.Template.Subject) == "" {
			missing = append(missing, "subject pattern is empty")
		}
		if strings.TrimSpace(s.Template.Body) == "" {
			missing = append(missing, "body pattern is empty")
		}
	case StepAuth:
		if !s.Authenticated {
			missing = append(missing, "connection test has not succeeded")
		}
	case StepReview:
		// Send trigger only; the orchestrator re-checks the payload.
	case StepSending:
		return s, &ValidationError{Step: s.Step, Missing: []string{"campaign is single-shot; sending is the terminal step"}}
	}

	if len(missing) > 0 {
		return s, &ValidationError{Step: s.Step, Missing: missing}
	}

	s.Step++
	return s, nil
}

// Retreat moves one step backward. Backward transitions are always
// permitted and unconditional.
func Retreat(s State) State {
	if s.Step > StepIntake {
		s.Step--
	}
	return s
}

// WithSender records the sender identity gathered at intake.
func (s State) WithSender(name, email string) State {
	s.SenderName = name
	s.SenderEmail = email
	return s
}

// WithContacts records the ingested contact set.
func (s State) WithContacts(set contact.Set) State {
	s.Contacts = set
	return s
}

// WithResume records the resume file read fully into memory.
func (s State) WithResume(name string, data []byte) State {
	s.ResumeName = name
	s.Resume = data
	return s
}

// WithTemplate records the authored subject/body patterns.
func (s State) WithTemplate(t Template) State {
	s.Template = t
	return s
}

// WithAuthResult records the outcome of the latest connection test.
// Authenticated always reflects the newest result, so re-running the test
// after a failure resets it either way.
func (s State) WithAuthResult(creds Credentials, ok bool) State {
	if ok {
		s.Credentials = &creds
		s.Authenticated = true
	} else {
		s.Credentials = nil
		s.Authenticated = false
	}
	return s
}
