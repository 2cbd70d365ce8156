package campaign

import (
	"errors"
	"strings"
	"testing"

	"github.com/jobreach/coldreach/internal/contact"
)

func intakeReady() State {
	return NewState().
		WithSender("Alex Doe", "alex@gmail.com").
		WithContacts(contact.Set{{Name: "A", Email: "a@x.com", Company: "Acme"}}).
		WithResume("resume.pdf", []byte("%PDF"))
}

func TestAdvance_IntakeGuard(t *testing.T) {
	tests := []struct {
		name    string
		state   State
		blocked string // substring of the expected guard message, empty = allowed
	}{
		{"complete", intakeReady(), ""},
		{"no sender", intakeReady().WithSender("", ""), "sender address"},
		{"malformed sender", intakeReady().WithSender("Alex", "not-an-email"), "valid email"},
		{"non-gmail sender", intakeReady().WithSender("Alex", "alex@example.com"), "Gmail address"},
		{"uppercase gmail ok", intakeReady().WithSender("Alex", "Alex.Doe@Gmail.com"), ""},
		{"no contacts", intakeReady().WithContacts(nil), "contact list"},
		{"no resume", intakeReady().WithResume("", nil), "resume"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := Advance(tt.state)
			if tt.blocked == "" {
				if err != nil {
					t.Fatalf("Advance() error = %v", err)
				}
				if next.Step != StepTemplate {
					t.Errorf("Step = %v, want template", next.Step)
				}
				return
			}

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Advance() error = %v, want *ValidationError", err)
			}
			if !strings.Contains(verr.Error(), tt.blocked) {
				t.Errorf("error %q does not name the failed precondition %q", verr, tt.blocked)
			}
			if next.Step != tt.state.Step {
				t.Error("failed guard must leave state unchanged")
			}
		})
	}
}

func TestValidAppPassword(t *testing.T) {
	if !ValidAppPassword("abcdefghijklmnop") {
		t.Error("ValidAppPassword() = false for a 16-character password")
	}
	for _, p := range []string{"", "short", "abcd efgh ijkl mnop"} {
		if ValidAppPassword(p) {
			t.Errorf("ValidAppPassword(%q) = true, want false", p)
		}
	}
}

func TestAdvance_TemplateGuard(t *testing.T) {
	s := intakeReady()
	s, err := Advance(s)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := Advance(s); err == nil {
		t.Error("empty template must block the transition")
	}
	if _, err := Advance(s.WithTemplate(Template{Subject: "s"})); err == nil {
		t.Error("empty body must block the transition")
	}
	if _, err := Advance(s.WithTemplate(Template{Subject: "  ", Body: "b"})); err == nil {
		t.Error("whitespace-only subject must block the transition")
	}

	next, err := Advance(s.WithTemplate(Template{Subject: "s", Body: "b"}))
	if err != nil {
		t.Fatalf("Advance() error = %v", err)
	}
	if next.Step != StepAuth {
		t.Errorf("Step = %v, want auth", next.Step)
	}
}

func TestAdvance_AuthRequiresConnectionTest(t *testing.T) {
	s := State{Step: StepAuth}

	if _, err := Advance(s); err == nil {
		t.Fatal("auth step must require a successful connection test")
	}

	s = s.WithAuthResult(Credentials{Address: "alex@gmail.com", AppPassword: "x"}, true)
	next, err := Advance(s)
	if err != nil {
		t.Fatalf("Advance() error = %v", err)
	}
	if next.Step != StepReview {
		t.Errorf("Step = %v, want review", next.Step)
	}
	if next.Credentials == nil {
		t.Error("successful auth must retain credentials")
	}
}

func TestWithAuthResult_ResetsOnFailure(t *testing.T) {
	s := State{Step: StepAuth}.WithAuthResult(Credentials{Address: "a@b.co", AppPassword: "x"}, true)
	if !s.Authenticated {
		t.Fatal("expected authenticated")
	}

	// Re-running the test after a failure clears the earlier result.
	s = s.WithAuthResult(Credentials{}, false)
	if s.Authenticated || s.Credentials != nil {
		t.Error("a failed re-test must reset authentication")
	}
}

func TestAdvance_ReviewAndTerminal(t *testing.T) {
	s := State{Step: StepReview}
	next, err := Advance(s)
	if err != nil {
		t.Fatalf("review -> sending needs no data guard, got %v", err)
	}
	if next.Step != StepSending {
		t.Errorf("Step = %v, want sending", next.Step)
	}

	if _, err := Advance(next); err == nil {
		t.Error("sending is terminal; advancing must fail")
	}
}

func TestRetreat_AlwaysAllowed(t *testing.T) {
	// Backward transitions ignore data completeness entirely.
	s := State{Step: StepReview}
	for _, want := range []Step{StepAuth, StepTemplate, StepIntake, StepIntake} {
		s = Retreat(s)
		if s.Step != want {
			t.Fatalf("Retreat() = %v, want %v", s.Step, want)
		}
	}
}
