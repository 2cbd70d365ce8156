package transport

import (
	"context"
	"errors"
	"net/url"
)

// strategy is one routing attempt in the dispatch plan.
type strategy struct {
	path    Path
	attempt func(ctx context.Context, c *Client, req *request) ([]byte, error)
}

var (
	direct = strategy{path: PathDirect, attempt: attemptDirect}
	relay  = strategy{path: PathRelayed, attempt: attemptRelay}
)

// planFor builds the ordered strategy list for one request.
//
// Read-only requests from a restricted origin go relay-first: the direct
// attempt would be a guaranteed failed round trip. Everything else tries
// direct; read-only requests fall back to the relay once. Mutating
// requests never transit the relay, because routing a credential-bearing
// submission through a third-party proxy is unacceptable; their direct
// failures are classified as cold starts instead.
func (c *Client) planFor(req *request) []strategy {
	relayAvailable := c.cfg.RelayURL != "" && req.readOnly()

	if relayAvailable && c.cfg.RestrictedOrigin && !req.directFirst {
		return []strategy{relay}
	}
	if relayAvailable {
		return []strategy{direct, relay}
	}
	return []strategy{direct}
}

func attemptDirect(ctx context.Context, c *Client, req *request) ([]byte, error) {
	data, err := c.send(ctx, c.clientFor(req), req.method, c.cfg.BaseURL+req.path, req)
	if err == nil {
		return data, nil
	}

	var terr *Error
	if errors.As(err, &terr) {
		return nil, err // already classified (HTTP-level)
	}
	return nil, &Error{Kind: classifyDirect(c, req), Path: req.path, Err: err}
}

// classifyDirect maps a network-level direct failure to an error kind.
func classifyDirect(c *Client, req *request) Kind {
	if !req.readOnly() {
		// A mutating submission that cannot reach the service is most
		// likely hitting a sleeping backend.
		return KindColdStart
	}
	if c.cfg.RestrictedOrigin {
		return KindCrossOrigin
	}
	return KindNetworkUnreachable
}

func attemptRelay(ctx context.Context, c *Client, req *request) ([]byte, error) {
	target := c.cfg.BaseURL + req.path
	relayURL := c.cfg.RelayURL + url.QueryEscape(target)

	data, err := c.send(ctx, c.clientFor(req), req.method, relayURL, req)
	if err == nil {
		return data, nil
	}

	var terr *Error
	if errors.As(err, &terr) && terr.Kind == KindHTTPError {
		// The relay answered; the status is the target's.
		return nil, err
	}
	return nil, &Error{Kind: KindProxyFailure, Path: req.path, Err: err}
}
