package resilience

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidPolicy is returned when a Policy fails validation. It is
// the component's only configuration failure mode and surfaces before
// any Breaker using the policy can be created.
var ErrInvalidPolicy = errors.New("resilience: invalid policy")

// Default policy values.
const (
	DefaultFailureThreshold   = 5
	DefaultCallTimeout        = 2 * time.Second
	DefaultRecoveryTimeout    = 30 * time.Second
	DefaultHalfOpenProbeQuota = 3
	DefaultMinCallsBeforeTrip = 10
)

// Policy is the immutable configuration bundle attached to one
// Breaker. It is fixed at breaker creation and never mutated.
type Policy struct {
	// FailureThreshold is the failure count that trips the breaker.
	FailureThreshold int

	// CallTimeout is the maximum duration an operation may run before
	// it is abandoned and treated as a failure.
	CallTimeout time.Duration

	// RecoveryTimeout is the minimum time the breaker stays open
	// before a probe is allowed.
	RecoveryTimeout time.Duration

	// HalfOpenProbeQuota is the number of calls admitted while
	// probing recovery.
	HalfOpenProbeQuota int

	// MinCallsBeforeTrip is the minimum total calls observed before
	// the failure threshold is evaluated, so a handful of failures on
	// low traffic does not trip the breaker.
	MinCallsBeforeTrip int
}

// DefaultPolicy returns a policy with production defaults.
func DefaultPolicy() Policy {
	return Policy{
		FailureThreshold:   DefaultFailureThreshold,
		CallTimeout:        DefaultCallTimeout,
		RecoveryTimeout:    DefaultRecoveryTimeout,
		HalfOpenProbeQuota: DefaultHalfOpenProbeQuota,
		MinCallsBeforeTrip: DefaultMinCallsBeforeTrip,
	}
}

// Validate checks the policy invariants. All errors wrap
// ErrInvalidPolicy.
func (p Policy) Validate() error {
	if p.FailureThreshold <= 0 {
		return fmt.Errorf("%w: failure threshold must be positive, got %d", ErrInvalidPolicy, p.FailureThreshold)
	}
	if p.MinCallsBeforeTrip < p.FailureThreshold {
		return fmt.Errorf("%w: min calls before trip (%d) must be at least the failure threshold (%d)",
			ErrInvalidPolicy, p.MinCallsBeforeTrip, p.FailureThreshold)
	}
	if p.HalfOpenProbeQuota < 1 {
		return fmt.Errorf("%w: half-open probe quota must be at least 1, got %d", ErrInvalidPolicy, p.HalfOpenProbeQuota)
	}
	if p.CallTimeout <= 0 {
		return fmt.Errorf("%w: call timeout must be positive, got %v", ErrInvalidPolicy, p.CallTimeout)
	}
	if p.RecoveryTimeout <= 0 {
		return fmt.Errorf("%w: recovery timeout must be positive, got %v", ErrInvalidPolicy, p.RecoveryTimeout)
	}
	return nil
}
