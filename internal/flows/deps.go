package flows

import "time"

// Deps groups flow dependency sets. The Manager builds this once from its Config and
// clock and passes the matching member to each flow.
type Deps struct {
	Login LoginDeps
}

// LoginDeps captures login lifetime dependencies.
type LoginDeps struct {
	// InspectExpiry returns the exp claim of token, if it carries one.
	InspectExpiry func(token string) (time.Time, bool)
	// UseTokenExpiry enables the InspectExpiry fallback for non-positive expiresIn.
	UseTokenExpiry bool
	// MaxLifetime caps the accepted lifetime. Zero disables the cap.
	MaxLifetime time.Duration
}
