package main

import (
	"context"
	"strings"
	"testing"

	"github.com/jobreach/coldreach/internal/campaign"
	"github.com/jobreach/coldreach/internal/config"
	"github.com/jobreach/coldreach/internal/dispatch"
	"github.com/jobreach/coldreach/internal/transport"
)

func stateForTest() campaign.State {
	return campaign.NewState().WithSender("Jane Doe", "jane.doe@gmail.com")
}

func TestResumeFileName(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"resume.pdf", "resume.pdf"},
		{"/home/jane/docs/resume.pdf", "resume.pdf"},
		{"docs\\resume.pdf", "resume.pdf"},
		{"./resume.pdf", "resume.pdf"},
	}

	for _, tt := range tests {
		if got := resumeFileName(tt.path); got != tt.want {
			t.Errorf("resumeFileName(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestBuildTemplate_RejectsUnknownPlaceholders(t *testing.T) {
	cfg := config.Default()
	cfg.Campaign.Subject = "Hi {hr_name}"
	cfg.Campaign.Body = "We met at {conference}"

	_, err := buildTemplate(cfg, stateForTest())
	if err == nil {
		t.Fatal("buildTemplate() error = nil, want unknown placeholder error")
	}
	if !strings.Contains(err.Error(), "{conference}") {
		t.Errorf("buildTemplate() error = %v, want mention of {conference}", err)
	}
}

func TestBuildTemplate_AcceptsDefaults(t *testing.T) {
	state, err := buildTemplate(config.Default(), stateForTest())
	if err != nil {
		t.Fatalf("buildTemplate() error = %v", err)
	}
	if state.Template.Subject == "" || state.Template.Body == "" {
		t.Error("buildTemplate() left template empty")
	}
}

func TestAuthenticate_UnreachableBackendDoesNotAuthenticate(t *testing.T) {
	runAppPassword = "abcdefghijklmnop"
	defer func() { runAppPassword = "" }()

	client := dispatch.NewClient(transport.New(transport.Config{BaseURL: "http://127.0.0.1:1"}, nil), nil)

	state, err := authenticate(context.Background(), client, stateForTest())
	if err == nil {
		t.Fatal("authenticate() error = nil, want connection failure")
	}
	if state.Authenticated {
		t.Error("Authenticated = true without a successful connection test")
	}
}

func TestAuthenticate_RejectsMalformedPassword(t *testing.T) {
	runAppPassword = "too-short"
	defer func() { runAppPassword = "" }()

	client := dispatch.NewClient(transport.New(transport.Config{BaseURL: "http://127.0.0.1:1"}, nil), nil)

	state, err := authenticate(context.Background(), client, stateForTest())
	if err == nil || !strings.Contains(err.Error(), "16") {
		t.Fatalf("authenticate() error = %v, want length complaint", err)
	}
	if state.Authenticated {
		t.Error("Authenticated = true for a rejected password")
	}
}
