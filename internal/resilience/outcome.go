package resilience

import "time"

// Outcome is the uniform result value returned by every call routed
// through a Breaker. It is immutable after construction; rejections,
// timeouts, and operation failures are all reported this way rather
// than as propagated errors, so callers have exactly one place to
// implement fallback logic.
type Outcome[T any] struct {
	succeeded bool
	value     T
	cause     error
	elapsed   time.Duration
}

// Success creates an Outcome for an operation that completed normally.
func Success[T any](value T, elapsed time.Duration) Outcome[T] {
	return Outcome[T]{succeeded: true, value: value, elapsed: elapsed}
}

// Failure creates an Outcome for an operation that was rejected,
// timed out, or failed.
func Failure[T any](cause error, elapsed time.Duration) Outcome[T] {
	return Outcome[T]{cause: cause, elapsed: elapsed}
}

// Succeeded reports whether the call completed normally.
func (o Outcome[T]) Succeeded() bool { return o.succeeded }

// Value returns the operation's result. It is the zero value of T
// unless Succeeded is true.
func (o Outcome[T]) Value() T { return o.value }

// Cause returns the failure cause, nil on success. Rejections match
// ErrCircuitOpen and overruns match ErrCallTimeout via errors.Is.
func (o Outcome[T]) Cause() error { return o.cause }

// Elapsed returns how long the operation ran. It is zero for calls
// rejected without being attempted.
func (o Outcome[T]) Elapsed() time.Duration { return o.elapsed }
