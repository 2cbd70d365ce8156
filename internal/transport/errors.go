package transport

import "fmt"

// Kind classifies a transport failure. Callers branch on it to decide
// whether to retry, fall back, or surface a remediation hint.
type Kind string

const (
	KindNetworkUnreachable Kind = "network_unreachable"
	KindCrossOrigin        Kind = "cross_origin"
	KindColdStart          Kind = "cold_start"
	KindHTTPError          Kind = "http_error"
	KindProxyFailure       Kind = "proxy_failure"
)

// Error is a classified transport failure. It is never fatal to the
// session: every caller handles it and keeps the current state.
type Error struct {
	Kind   Kind
	Status int    // HTTP status, set for KindHTTPError
	Path   string // request path the failure belongs to
	Body   []byte // response body for KindHTTPError, if any was read
	Err    error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindHTTPError:
		return fmt.Sprintf("%s: HTTP %d", e.Path, e.Status)
	case KindColdStart:
		return fmt.Sprintf("%s: service appears to be cold-starting", e.Path)
	case KindCrossOrigin:
		return fmt.Sprintf("%s: blocked by cross-origin restrictions", e.Path)
	case KindProxyFailure:
		return fmt.Sprintf("%s: relay request failed", e.Path)
	default:
		return fmt.Sprintf("%s: service unreachable", e.Path)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Hint returns a user-facing remediation suggestion for the failure.
func (e *Error) Hint() string {
	switch e.Kind {
	case KindColdStart:
		return "the service may be waking from sleep; wait ~30s and try again"
	case KindCrossOrigin:
		return "direct calls are blocked from this network; read-only requests will use the relay"
	case KindProxyFailure:
		return "the relay is unavailable; check the relay_url setting or try again later"
	case KindHTTPError:
		return "the service rejected the request; check the reported message"
	default:
		return "check your network connection and the api.base_url setting"
	}
}
