package relay

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func TestHandleRaw_PassThrough(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"healthy"}`))
	}))
	defer upstream.Close()

	srv := httptest.NewServer(NewServer(Config{}, nil).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/raw?url=" + url.QueryEscape(upstream.URL+"/health"))
	if err != nil {
		t.Fatalf("relay request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != `{"status":"healthy"}` {
		t.Errorf("body = %q", body)
	}
	if resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Error("CORS header missing")
	}
}

func TestHandleRaw_PreservesUpstreamStatus(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"teapot"}`, http.StatusTeapot)
	}))
	defer upstream.Close()

	srv := httptest.NewServer(NewServer(Config{}, nil).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/raw?url=" + url.QueryEscape(upstream.URL))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusTeapot {
		t.Errorf("status = %d, want the upstream's 418", resp.StatusCode)
	}
}

func TestHandleRaw_RejectsBadTargets(t *testing.T) {
	srv := httptest.NewServer(NewServer(Config{}, nil).Handler())
	defer srv.Close()

	for _, q := range []string{"", "?url=", "?url=not-a-url", "?url=%2Fpath-only"} {
		resp, err := http.Get(srv.URL + "/raw" + q)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("GET /raw%s status = %d, want 400", q, resp.StatusCode)
		}
	}
}

func TestHandleRaw_HostAllowlist(t *testing.T) {
	srv := httptest.NewServer(NewServer(Config{AllowedHosts: []string{"allowed.example.com"}}, nil).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/raw?url=" + url.QueryEscape("http://evil.example.com/x"))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("status = %d, want 403", resp.StatusCode)
	}
}

func TestRelay_RefusesMutatingMethods(t *testing.T) {
	srv := httptest.NewServer(NewServer(Config{}, nil).Handler())
	defer srv.Close()

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
		req, _ := http.NewRequest(method, srv.URL+"/raw?url=http://x.example.com", strings.NewReader("data"))
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusMethodNotAllowed {
			t.Errorf("%s status = %d, want 405", method, resp.StatusCode)
		}
	}
}
