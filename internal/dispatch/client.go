// Package dispatch is the typed client for the remote mail-dispatch
// service. It speaks the service's small HTTP contract (health probe,
// connection test, batch submission) on top of the resilient transport.
package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/jobreach/coldreach/internal/transport"
)

// Endpoint paths on the remote service.
const (
	pathHealth         = "/health"
	pathTestConnection = "/api/test-connection"
	pathSendEmails     = "/api/send-emails"
)

// Client is a mail-dispatch API client.
type Client struct {
	transport *transport.Client
	logger    *slog.Logger
}

// NewClient creates a client on top of a configured transport.
func NewClient(t *transport.Client, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{transport: t, logger: logger.With("component", "dispatch")}
}

// BaseURL returns the remote service root, for diagnostic display.
func (c *Client) BaseURL() string { return c.transport.BaseURL() }

// Health checks service liveness and reports which path reached it.
func (c *Client) Health(ctx context.Context) (*HealthResponse, transport.Path, error) {
	body, via, err := c.transport.Probe(ctx, pathHealth)
	if err != nil {
		return nil, via, err
	}
	var resp HealthResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, via, fmt.Errorf("decode health response: %w", err)
	}
	return &resp, via, nil
}

// WarmUp probes the service before a submission and fails fast with a
// cold-start error if it is not ready.
func (c *Client) WarmUp(ctx context.Context) error {
	return c.transport.WarmUp(ctx, pathHealth, func(body []byte) bool {
		var resp HealthResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return false
		}
		return resp.Healthy()
	})
}

// TestConnection verifies the sender credentials with the remote service.
// A rejection the service explains (wrong password, unsupported address)
// comes back as Success=false with its message; only transport-level
// failures return an error.
func (c *Client) TestConnection(ctx context.Context, email, appPassword string) (*TestConnectionResponse, error) {
	payload, err := json.Marshal(TestConnectionRequest{Email: email, AppPassword: appPassword})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	body, err := c.transport.Call(ctx, http.MethodPost, pathTestConnection, payload, "application/json")
	if err != nil {
		var terr *transport.Error
		if errors.As(err, &terr) && terr.Kind == transport.KindHTTPError {
			if msg := failureMessage(terr.Body); msg != "" {
				return &TestConnectionResponse{Success: false, Message: msg}, nil
			}
		}
		return nil, err
	}

	var resp TestConnectionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &resp, nil
}

// SendEmails issues the single mutating batch submission.
func (c *Client) SendEmails(ctx context.Context, req *SendRequest) (*SendResponse, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := map[string]string{
		"gmailEmail":    req.SenderEmail,
		"gmailPassword": req.AppPassword,
		"emailSubject":  req.Subject,
		"emailBody":     req.Body,
	}
	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return nil, fmt.Errorf("write field %s: %w", name, err)
		}
	}

	resumePart, err := w.CreateFormFile("resume", req.ResumeName)
	if err != nil {
		return nil, fmt.Errorf("create resume part: %w", err)
	}
	if _, err := resumePart.Write(req.Resume); err != nil {
		return nil, fmt.Errorf("write resume part: %w", err)
	}

	contactsPart, err := w.CreateFormFile("contacts", "contacts.csv")
	if err != nil {
		return nil, fmt.Errorf("create contacts part: %w", err)
	}
	if _, err := contactsPart.Write([]byte(req.ContactsCSV)); err != nil {
		return nil, fmt.Errorf("write contacts part: %w", err)
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finalize multipart body: %w", err)
	}

	c.logger.Info("submitting campaign", "sender", req.SenderEmail, "resume", req.ResumeName)

	body, err := c.transport.Call(ctx, http.MethodPost, pathSendEmails, buf.Bytes(), w.FormDataContentType())
	if err != nil {
		var terr *transport.Error
		if errors.As(err, &terr) && terr.Kind == transport.KindHTTPError {
			if msg := failureMessage(terr.Body); msg != "" {
				return nil, fmt.Errorf("service rejected submission: %s: %w", msg, err)
			}
		}
		return nil, err
	}

	var resp SendResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &resp, nil
}

// failureMessage extracts the collaborator's {message}/{error} failure
// payload; empty when the body follows neither convention.
func failureMessage(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return ""
	}
	if eb.Message != "" {
		return eb.Message
	}
	return eb.Error
}
