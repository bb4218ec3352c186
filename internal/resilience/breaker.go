package resilience

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

var (
	// ErrCircuitOpen is the cause carried by outcomes rejected because
	// the breaker is open or the half-open probe quota is exhausted.
	ErrCircuitOpen = errors.New("circuit_open")

	// ErrCallTimeout is the cause carried by outcomes whose operation
	// exceeded the policy's call timeout and was abandoned.
	ErrCallTimeout = errors.New("timeout")
)

// State represents the breaker state.
type State int

const (
	// StateClosed is the normal operating state. Calls pass through
	// and failures are counted.
	StateClosed State = iota

	// StateOpen is the tripped state. Calls are rejected without
	// being attempted.
	StateOpen

	// StateHalfOpen is the probing state. A limited quota of calls is
	// allowed to test recovery.
	StateHalfOpen
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Operation is a protected call. It receives a context whose deadline
// is the breaker's call timeout; implementations that honor the
// context stop promptly when the breaker abandons them.
type Operation[T any] func(ctx context.Context) (T, error)

// Metrics is a point-in-time snapshot of one breaker's counters.
type Metrics struct {
	State              State
	FailureCount       int
	SuccessCount       int
	TotalCalls         int
	FailureRatePercent float64
}

// Breaker is a per-dependency circuit breaker. One long-lived instance
// protects one downstream dependency. Safe for concurrent use; only
// bookkeeping is synchronized, the protected operation never runs
// under the lock.
type Breaker struct {
	name   string
	policy Policy
	opts   options

	mu                sync.Mutex
	state             State
	generation        uint64
	failureCount      int
	successCount      int
	totalCalls        int
	halfOpenCalls     int
	halfOpenSuccesses int
	lastFailure       time.Time
}

// NewBreaker creates a breaker for the named dependency. The policy is
// validated here; an invalid policy is the only construction failure.
func NewBreaker(name string, policy Policy, opts ...Option) (*Breaker, error) {
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("breaker %q: %w", name, err)
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Breaker{
		name:   name,
		policy: policy,
		opts:   o,
		state:  StateClosed,
	}, nil
}

// Name returns the dependency name the breaker protects.
func (b *Breaker) Name() string { return b.name }

// Policy returns the breaker's policy.
func (b *Breaker) Policy() Policy { return b.policy }

// State returns the current state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Metrics returns a snapshot of the breaker's counters.
func (b *Breaker) Metrics() Metrics {
	b.mu.Lock()
	defer b.mu.Unlock()
	m := Metrics{
		State:        b.state,
		FailureCount: b.failureCount,
		SuccessCount: b.successCount,
		TotalCalls:   b.totalCalls,
	}
	if b.totalCalls > 0 {
		m.FailureRatePercent = float64(b.failureCount) / float64(b.totalCalls) * 100
	}
	return m
}

// Execute runs op through the breaker and returns its outcome. The
// label identifies the operation in hooks and logs. Rejections,
// timeouts, and operation failures are all returned as failure
// outcomes; Execute never propagates a fault.
func Execute[T any](ctx context.Context, b *Breaker, label string, op Operation[T]) Outcome[T] {
	gen, err := b.allow()
	if err != nil {
		if b.opts.onReject != nil {
			b.opts.onReject(b.name, label)
		}
		return Failure[T](err, 0)
	}

	start := b.opts.clock.Now()
	value, err := runWithTimeout(ctx, b.policy.CallTimeout, op)
	elapsed := b.opts.clock.Now().Sub(start)

	if err != nil {
		b.recordFailure(gen)
	} else {
		b.recordSuccess(gen)
	}
	if b.opts.onCall != nil {
		b.opts.onCall(b.name, label, elapsed, err)
	}

	if err != nil {
		return Failure[T](err, elapsed)
	}
	return Success(value, elapsed)
}

// Do runs an operation with no result value through the breaker.
func (b *Breaker) Do(ctx context.Context, label string, op func(ctx context.Context) error) Outcome[struct{}] {
	return Execute(ctx, b, label, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
}

// allow decides admission and returns the generation the call belongs
// to. The check and any resulting transition are one critical section
// so racing callers cannot both claim the first probe. It never
// blocks.
func (b *Breaker) allow() (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		return b.generation, nil

	case StateOpen:
		if b.opts.clock.Now().Sub(b.lastFailure) >= b.policy.RecoveryTimeout {
			b.transition(StateHalfOpen)
			b.halfOpenCalls++
			return b.generation, nil
		}
		return 0, ErrCircuitOpen

	case StateHalfOpen:
		// Incremented before the call runs so the quota caps
		// concurrent probes, not just sequential ones.
		if b.halfOpenCalls < b.policy.HalfOpenProbeQuota {
			b.halfOpenCalls++
			return b.generation, nil
		}
		return 0, ErrCircuitOpen
	}
	return 0, ErrCircuitOpen
}

func (b *Breaker) recordSuccess(gen uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	// A call admitted before a state change must not credit the
	// current episode's counters.
	if gen != b.generation {
		return
	}

	b.successCount++
	b.totalCalls++
	b.failureCount = 0

	if b.state == StateHalfOpen {
		b.halfOpenSuccesses++
		if b.halfOpenSuccesses >= b.policy.HalfOpenProbeQuota {
			b.transition(StateClosed)
		}
	}
}

func (b *Breaker) recordFailure(gen uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if gen != b.generation {
		return
	}

	b.failureCount++
	b.totalCalls++
	b.lastFailure = b.opts.clock.Now()

	switch b.state {
	case StateHalfOpen:
		// No partial credit: any probe failure reopens immediately.
		b.transition(StateOpen)
	case StateClosed:
		if b.totalCalls >= b.policy.MinCallsBeforeTrip && b.failureCount >= b.policy.FailureThreshold {
			b.transition(StateOpen)
		}
	}
}

// transition changes state. Same-state transitions are no-ops: reset
// actions and hooks fire only on an actual change. Every change bumps
// the generation, invalidating outcomes of calls admitted before it.
// Caller holds b.mu.
func (b *Breaker) transition(to State) {
	if b.state == to {
		return
	}
	from := b.state
	b.state = to
	b.generation++

	switch to {
	case StateClosed:
		b.failureCount = 0
		b.successCount = 0
		b.totalCalls = 0
		b.halfOpenCalls = 0
		b.halfOpenSuccesses = 0
	case StateOpen, StateHalfOpen:
		b.halfOpenCalls = 0
		b.halfOpenSuccesses = 0
	}

	if b.opts.onStateChange != nil {
		b.opts.onStateChange(b.name, from, to)
	}
}

// reset forces the breaker to closed with zeroed counters, regardless
// of prior state. Administrative use only.
func (b *Breaker) reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.transition(StateClosed)
	// Invalidate calls still in flight from before the reset, even
	// when the breaker was already closed.
	b.generation++
	b.failureCount = 0
	b.successCount = 0
	b.totalCalls = 0
	b.halfOpenCalls = 0
	b.halfOpenSuccesses = 0
}

// runWithTimeout races op against the call timeout. Overrunning
// operations are abandoned, not merely reclassified after they
// return; a panicking operation is converted to a failure.
func runWithTimeout[T any](ctx context.Context, timeout time.Duration, op Operation[T]) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		value T
		err   error
	}
	done := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				var zero T
				done <- result{zero, fmt.Errorf("operation panicked: %v", r)}
			}
		}()
		value, err := op(ctx)
		done <- result{value, err}
	}()

	select {
	case res := <-done:
		// An operation that honors its context reports the deadline
		// itself; normalize so timeouts carry one cause.
		if errors.Is(res.err, context.DeadlineExceeded) {
			var zero T
			return zero, ErrCallTimeout
		}
		return res.value, res.err
	case <-ctx.Done():
		var zero T
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return zero, ErrCallTimeout
		}
		return zero, ctx.Err()
	}
}
