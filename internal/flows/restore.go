package flows

import "time"

// RestoreDecision classifies a persisted session record.
type RestoreDecision int

const (
	// RestoreStale means the record expired at or before now, or has no usable expiration.
	RestoreStale RestoreDecision = iota
	// RestoreValid means the record can be restored for the returned remaining duration.
	RestoreValid
)

func (d RestoreDecision) String() string {
	switch d {
	case RestoreValid:
		return "valid"
	default:
		return "stale"
	}
}

// DecideRestore compares a persisted expiration with now. An expiration equal to now
// is stale.
func DecideRestore(now, expiresAt time.Time) (RestoreDecision, time.Duration) {
	if expiresAt.IsZero() {
		return RestoreStale, 0
	}
	remaining := expiresAt.Sub(now)
	if remaining <= 0 {
		return RestoreStale, 0
	}
	return RestoreValid, remaining
}
