package tokenguard

import (
	"errors"
	"io"
	"net/http"
	"time"
)

// roundTripper attaches the current access token to outgoing requests and
// recovers from 401 responses through the guard's single-flight refresh.
// A request is retried at most once; a 401 on the retry is returned to the
// caller untouched. Without a session the request passes through unmodified
// and the server's response stands.
type roundTripper struct {
	guard *Guard
	base  http.RoundTripper
}

func (t *roundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	g := t.guard
	ctx := req.Context()

	sess, err := g.currentSession(ctx)
	if err != nil {
		if errors.Is(err, ErrNotAuthenticated) {
			// No token to attach: the request goes out untouched and the
			// server's own 401 answers for the missing credentials. Nothing
			// to refresh, so no retry either.
			return t.base.RoundTrip(req)
		}
		return nil, err
	}

	if w := g.config.Refresh.ProactiveWindow; w > 0 && sess.ExpiresWithin(time.Now(), w) {
		g.metricInc(MetricRefreshProactive)
		if err := g.awaitRefresh(ctx, sess.AccessToken); err != nil {
			return nil, err
		}
		if sess, err = g.currentSession(ctx); err != nil {
			return nil, err
		}
	}

	requestID := ensureRequestID(ctx)

	start := time.Now()
	resp, err := t.send(req, sess.AccessToken, requestID)
	g.metrics.Observe(MetricRequestLatency, time.Since(start))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	// A body without GetBody cannot be rebuilt for a second attempt, so the
	// original 401 is surfaced rather than a half-sent retry.
	if req.Body != nil && req.GetBody == nil {
		g.metricInc(MetricUnauthorizedTerminal)
		return resp, nil
	}

	staleToken := sess.AccessToken
	drainBody(resp)

	if err := g.awaitRefresh(ctx, staleToken); err != nil {
		g.metricInc(MetricUnauthorizedTerminal)
		return nil, err
	}

	sess, err = g.currentSession(ctx)
	if err != nil {
		return nil, err
	}

	g.metricInc(MetricUnauthorizedRetried)

	start = time.Now()
	resp, err = t.send(req, sess.AccessToken, requestID)
	g.metrics.Observe(MetricRequestLatency, time.Since(start))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		g.metricInc(MetricUnauthorizedTerminal)
	}
	return resp, nil
}

// send issues one attempt. The original request is never mutated; each
// attempt works on a clone with its own body.
func (t *roundTripper) send(req *http.Request, token, requestID string) (*http.Response, error) {
	out := req.Clone(req.Context())
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, ErrRequestNotReplayable
		}
		out.Body = body
	}

	out.Header.Set("Authorization", "Bearer "+token)
	if t.guard.config.HTTP.AttachRequestID && requestID != "" {
		out.Header.Set("X-Request-ID", requestID)
	}

	return t.base.RoundTrip(out)
}

func drainBody(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
