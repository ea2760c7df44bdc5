package flows

import (
	"errors"
	"math"
	"time"
)

var (
	// ErrMissingToken marks a login response without a token.
	ErrMissingToken = errors.New("login response has no token")
	// ErrNoLifetime marks a login response whose lifetime is not positive.
	ErrNoLifetime = errors.New("login response has no positive lifetime")
)

// LoginResponse is the flow-local view of a backend login answer.
type LoginResponse struct {
	Token     string
	ExpiresIn int64
}

// maxExpiresIn is the largest expiresIn, in seconds, that fits a time.Duration.
const maxExpiresIn = int64(math.MaxInt64 / int64(time.Second))

// LoginPlan is the outcome of PlanLogin.
type LoginPlan struct {
	Lifetime  time.Duration
	ExpiresAt time.Time
	// FromToken is set when the lifetime came from the token's exp claim.
	FromToken bool
}

// PlanLogin computes the session lifetime for a successful login answered at now.
func PlanLogin(now time.Time, resp LoginResponse, deps LoginDeps) (LoginPlan, error) {
	if resp.Token == "" {
		return LoginPlan{}, ErrMissingToken
	}

	plan := LoginPlan{Lifetime: time.Duration(resp.ExpiresIn) * time.Second}
	if resp.ExpiresIn > maxExpiresIn {
		plan.Lifetime = time.Duration(math.MaxInt64)
	}
	if plan.Lifetime <= 0 && deps.UseTokenExpiry && deps.InspectExpiry != nil {
		if exp, ok := deps.InspectExpiry(resp.Token); ok {
			plan.Lifetime = exp.Sub(now)
			plan.FromToken = true
		}
	}
	if plan.Lifetime <= 0 {
		return LoginPlan{}, ErrNoLifetime
	}
	if deps.MaxLifetime > 0 && plan.Lifetime > deps.MaxLifetime {
		plan.Lifetime = deps.MaxLifetime
	}

	plan.ExpiresAt = now.Add(plan.Lifetime)
	return plan, nil
}
