package internaldefs

import (
	"github.com/MrEthical07/authsession"
)

// CounterDef binds a counter MetricID to its exported name.
type CounterDef struct {
	ID   authsession.MetricID
	Name string
	Help string
}

// HistogramDef binds a histogram MetricID to its exported name.
type HistogramDef struct {
	ID   authsession.MetricID
	Name string
	Help string
}

// AuditDroppedName is the counter exported for Manager.AuditDropped.
const AuditDroppedName = "authsession_audit_dropped_total"

// AuditDroppedHelp describes AuditDroppedName.
const AuditDroppedHelp = "Dropped audit events due to dispatcher backpressure."

// CounterDefs lists every exported counter in exposition order.
var CounterDefs = []CounterDef{
	{ID: authsession.MetricSignupSuccess, Name: "authsession_signup_success_total", Help: "Signups accepted by the backend."},
	{ID: authsession.MetricSignupFailure, Name: "authsession_signup_failure_total", Help: "Signups that failed at the transport or backend."},
	{ID: authsession.MetricLoginSuccess, Name: "authsession_login_success_total", Help: "Logins that authenticated the session."},
	{ID: authsession.MetricLoginFailure, Name: "authsession_login_failure_total", Help: "Logins that failed at the transport or backend."},
	{ID: authsession.MetricLoginIncomplete, Name: "authsession_login_incomplete_total", Help: "Login responses without a token or usable lifetime."},
	{ID: authsession.MetricRestoreSuccess, Name: "authsession_restore_success_total", Help: "Sessions rebuilt from the durable store."},
	{ID: authsession.MetricRestoreStale, Name: "authsession_restore_stale_total", Help: "Persisted sessions found already expired."},
	{ID: authsession.MetricRestoreMissing, Name: "authsession_restore_missing_total", Help: "Restores without a persisted session."},
	{ID: authsession.MetricLogout, Name: "authsession_logout_total", Help: "Logout operations, including repeated logouts."},
	{ID: authsession.MetricSessionExpired, Name: "authsession_session_expired_total", Help: "Sessions ended by the expiry timer."},
	{ID: authsession.MetricStoreFailure, Name: "authsession_store_failure_total", Help: "Durable store errors."},
	{ID: authsession.MetricStatusPublished, Name: "authsession_status_published_total", Help: "Values published on the auth status stream."},
}

// HistogramDefs lists every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: authsession.MetricLoginLatency, Name: "authsession_login_latency_seconds", Help: "Login round-trip latency histogram."},
}

// HistogramBounds are the upper bounds (le labels) of the eight latency buckets.
var HistogramBounds = []string{
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"1",
	"2.5",
	"5",
	"+Inf",
}

// HistogramBoundSuffix are HistogramBounds spelled for instrument names.
var HistogramBoundSuffix = []string{
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"1",
	"2_5",
	"5",
	"inf",
}

// NormalizeBuckets copies raw into a fixed eight-bucket array, truncating or zero
// filling as needed.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets turns per-bucket counts into running totals.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
