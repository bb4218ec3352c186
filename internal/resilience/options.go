package resilience

import "time"

// StateChangeFunc is called when a breaker changes state.
type StateChangeFunc func(name string, from, to State)

// RejectFunc is called when a breaker refuses admission.
type RejectFunc func(name, label string)

// CallFunc is called after each attempted operation, success or
// failure.
type CallFunc func(name, label string, elapsed time.Duration, err error)

type options struct {
	clock         Clock
	onStateChange StateChangeFunc
	onReject      RejectFunc
	onCall        CallFunc
}

func defaultOptions() options {
	return options{clock: systemClock{}}
}

// Option configures a Breaker or every Breaker a Registry creates.
type Option func(*options)

// WithClock sets the clock used for recovery-window checks and
// elapsed-time measurement. Useful for testing.
func WithClock(clock Clock) Option {
	return func(o *options) {
		o.clock = clock
	}
}

// OnStateChange sets a hook called on every actual state transition.
func OnStateChange(fn StateChangeFunc) Option {
	return func(o *options) {
		o.onStateChange = fn
	}
}

// OnReject sets a hook called when a call is refused admission.
func OnReject(fn RejectFunc) Option {
	return func(o *options) {
		o.onReject = fn
	}
}

// OnCall sets a hook called after each attempted operation.
func OnCall(fn CallFunc) Option {
	return func(o *options) {
		o.onCall = fn
	}
}
