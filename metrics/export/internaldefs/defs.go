package internaldefs

import (
	tokenguard "github.com/tokenguard/tokenguard"
)

// CounterDef defines a public type used by tokenguard APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   tokenguard.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by tokenguard APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   tokenguard.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the token guard.
var CounterDefs = []CounterDef{
	{ID: tokenguard.MetricLoginSuccess, Name: "tokenguard_login_success_total", Help: "Successful login attempts."},
	{ID: tokenguard.MetricLoginFailure, Name: "tokenguard_login_failure_total", Help: "Failed login attempts."},
	{ID: tokenguard.MetricRefreshSuccess, Name: "tokenguard_refresh_success_total", Help: "Successful refresh operations."},
	{ID: tokenguard.MetricRefreshFailure, Name: "tokenguard_refresh_failure_total", Help: "Failed refresh operations."},
	{ID: tokenguard.MetricRefreshJoined, Name: "tokenguard_refresh_joined_total", Help: "Requests that parked behind an in-flight refresh."},
	{ID: tokenguard.MetricRefreshProactive, Name: "tokenguard_refresh_proactive_total", Help: "Refreshes triggered by the expiry window."},
	{ID: tokenguard.MetricUnauthorizedRetried, Name: "tokenguard_unauthorized_retried_total", Help: "401 responses retried after a refresh."},
	{ID: tokenguard.MetricUnauthorizedTerminal, Name: "tokenguard_unauthorized_terminal_total", Help: "401 responses surfaced to the caller."},
	{ID: tokenguard.MetricSessionExpired, Name: "tokenguard_session_expired_total", Help: "Sessions terminated by a failed refresh."},
	{ID: tokenguard.MetricSessionCleared, Name: "tokenguard_session_cleared_total", Help: "Sessions cleared by logout."},
	{ID: tokenguard.MetricLogout, Name: "tokenguard_logout_total", Help: "Logout operations."},
}

// HistogramDefs is an exported constant or variable used by the token guard.
var HistogramDefs = []HistogramDef{
	{ID: tokenguard.MetricRequestLatency, Name: "tokenguard_request_latency_seconds", Help: "Guarded request latency histogram."},
}

// HistogramBounds is an exported constant or variable used by the token guard.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix is an exported constant or variable used by the token guard.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets pads or truncates a raw bucket slice to the fixed width.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts to the cumulative form both
// exporters expose.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
