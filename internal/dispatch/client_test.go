package dispatch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jobreach/coldreach/internal/transport"
)

func newClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(transport.New(transport.Config{BaseURL: srv.URL}, nil), nil)
}

func TestHealth(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" || r.Method != http.MethodGet {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		json.NewEncoder(w).Encode(HealthResponse{Status: "healthy", Service: "mailer"})
	}))

	resp, via, err := c.Health(context.Background())
	if err != nil {
		t.Fatalf("Health() error = %v", err)
	}
	if !resp.Healthy() {
		t.Errorf("Healthy() = false for status %q", resp.Status)
	}
	if via != transport.PathDirect {
		t.Errorf("via = %q, want direct", via)
	}
}

func TestTestConnection(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantSuccess bool
		wantMessage string
	}{
		{
			name:        "accepted",
			status:      http.StatusOK,
			body:        `{"success":true,"message":"connection successful"}`,
			wantSuccess: true,
			wantMessage: "connection successful",
		},
		{
			name:        "rejected with message",
			status:      http.StatusUnauthorized,
			body:        `{"success":false,"message":"authentication failed"}`,
			wantSuccess: false,
			wantMessage: "authentication failed",
		},
		{
			name:        "rejected with error field",
			status:      http.StatusBadRequest,
			body:        `{"error":"app password must be 16 characters"}`,
			wantSuccess: false,
			wantMessage: "app password must be 16 characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				var req TestConnectionRequest
				if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
					t.Errorf("bad request body: %v", err)
				}
				if req.Email != "me@gmail.com" || req.AppPassword != "abcdabcdabcdabcd" {
					t.Errorf("credentials not forwarded: %+v", req)
				}
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))

			resp, err := c.TestConnection(context.Background(), "me@gmail.com", "abcdabcdabcdabcd")
			if err != nil {
				t.Fatalf("TestConnection() error = %v", err)
			}
			if resp.Success != tt.wantSuccess || resp.Message != tt.wantMessage {
				t.Errorf("got %+v, want success=%v message=%q", resp, tt.wantSuccess, tt.wantMessage)
			}
		})
	}
}

func TestTestConnection_TransportFailure(t *testing.T) {
	c := NewClient(transport.New(transport.Config{BaseURL: "http://127.0.0.1:1"}, nil), nil)

	_, err := c.TestConnection(context.Background(), "me@gmail.com", "abcdabcdabcdabcd")
	if err == nil {
		t.Fatal("expected a transport error for an unreachable service")
	}
}

func TestSendEmails(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/send-emails" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			t.Fatalf("not a multipart request: %v", err)
		}

		for field, want := range map[string]string{
			"gmailEmail":    "me@gmail.com",
			"gmailPassword": "abcdabcdabcdabcd",
			"emailSubject":  "Hello {company}",
			"emailBody":     "Dear {hr_name},",
		} {
			if got := r.FormValue(field); got != want {
				t.Errorf("field %s = %q, want %q", field, got, want)
			}
		}

		resume, hdr, err := r.FormFile("resume")
		if err != nil {
			t.Fatalf("missing resume part: %v", err)
		}
		defer resume.Close()
		if hdr.Filename != "resume.pdf" {
			t.Errorf("resume filename = %q", hdr.Filename)
		}

		contacts, hdr, err := r.FormFile("contacts")
		if err != nil {
			t.Fatalf("missing contacts part: %v", err)
		}
		defer contacts.Close()
		if hdr.Filename != "contacts.csv" {
			t.Errorf("contacts filename = %q", hdr.Filename)
		}

		json.NewEncoder(w).Encode(SendResponse{
			Successful: 1,
			Results:    []SendOutcome{{Success: true}, {Success: false, Error: "bounced"}},
		})
	}))

	resp, err := c.SendEmails(context.Background(), &SendRequest{
		SenderEmail: "me@gmail.com",
		AppPassword: "abcdabcdabcdabcd",
		Subject:     "Hello {company}",
		Body:        "Dear {hr_name},",
		ResumeName:  "resume.pdf",
		Resume:      []byte("%PDF-1.4 fake"),
		ContactsCSV: "name,email,company\n\"A\",\"a@x.com\",\"Acme\"\n",
	})
	if err != nil {
		t.Fatalf("SendEmails() error = %v", err)
	}
	if resp.Successful != 1 || len(resp.Results) != 2 {
		t.Errorf("unexpected response: %+v", resp)
	}
	if resp.Results[1].Error != "bounced" {
		t.Errorf("second outcome error = %q, want bounced", resp.Results[1].Error)
	}
}
