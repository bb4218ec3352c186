package resilience

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryGetOrCreateCaches(t *testing.T) {
	r := NewRegistry()

	first, err := r.GetOrCreate("payments", testPolicy())
	require.NoError(t, err)

	// A different policy on a later lookup is ignored: policy is
	// fixed at first creation.
	other := testPolicy()
	other.FailureThreshold = 99
	other.MinCallsBeforeTrip = 99
	second, err := r.GetOrCreate("payments", other)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 3, second.Policy().FailureThreshold)
}

func TestRegistryGetOrCreateValidatesPolicy(t *testing.T) {
	r := NewRegistry()

	_, err := r.GetOrCreate("payments", Policy{})
	require.ErrorIs(t, err, ErrInvalidPolicy)

	_, ok := r.Get("payments")
	assert.False(t, ok, "invalid policy must not leave a cached breaker behind")
}

func TestRegistryGetOrCreateConcurrent(t *testing.T) {
	r := NewRegistry()

	const callers = 32
	breakers := make(chan *Breaker, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b, err := r.GetOrCreate("payments", testPolicy())
			assert.NoError(t, err)
			breakers <- b
		}()
	}
	wg.Wait()
	close(breakers)

	first := <-breakers
	for b := range breakers {
		assert.Same(t, first, b)
	}
}

func TestRegistrySnapshot(t *testing.T) {
	clock := newFakeClock()
	r := NewRegistry(WithClock(clock))

	payments, err := r.GetOrCreate("payments", testPolicy())
	require.NoError(t, err)
	_, err = r.GetOrCreate("inventory", testPolicy())
	require.NoError(t, err)

	Execute(context.Background(), payments, "charge", succeedingOp)
	Execute(context.Background(), payments, "charge", succeedingOp)
	Execute(context.Background(), payments, "charge", failingOp)
	Execute(context.Background(), payments, "charge", failingOp)

	snap := r.Snapshot()
	require.Len(t, snap, 2)

	assert.Equal(t, StateClosed, snap["payments"].State)
	assert.Equal(t, 2, snap["payments"].FailureCount)
	assert.Equal(t, 2, snap["payments"].SuccessCount)
	assert.Equal(t, 4, snap["payments"].TotalCalls)
	assert.InDelta(t, 50.0, snap["payments"].FailureRatePercent, 0.001)

	// No calls yet: rate reports zero, not NaN.
	assert.Equal(t, float64(0), snap["inventory"].FailureRatePercent)
	assert.Equal(t, 0, snap["inventory"].TotalCalls)
}

func TestRegistryReset(t *testing.T) {
	clock := newFakeClock()
	r := NewRegistry(WithClock(clock))

	b, err := r.GetOrCreate("payments", testPolicy())
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		Execute(context.Background(), b, "charge", failingOp)
	}
	require.Equal(t, StateOpen, b.State())

	require.NoError(t, r.Reset("payments"))
	assert.Equal(t, StateClosed, b.State())
	assert.Equal(t, Metrics{State: StateClosed}, b.Metrics())

	// A reset breaker admits traffic again immediately.
	outcome := Execute(context.Background(), b, "charge", succeedingOp)
	assert.True(t, outcome.Succeeded())

	// Reset is idempotent and zeroes counters from any state.
	Execute(context.Background(), b, "charge", failingOp)
	require.NoError(t, r.Reset("payments"))
	assert.Equal(t, Metrics{State: StateClosed}, b.Metrics())
}

func TestRegistryResetUnknown(t *testing.T) {
	r := NewRegistry()
	err := r.Reset("nope")
	require.ErrorIs(t, err, ErrUnknownBreaker)
	assert.Contains(t, err.Error(), "nope")
}

func TestRegistryOptionsApplyToBreakers(t *testing.T) {
	var mu sync.Mutex
	var changed []string
	clock := newFakeClock()

	r := NewRegistry(WithClock(clock), OnStateChange(func(name string, from, to State) {
		mu.Lock()
		defer mu.Unlock()
		changed = append(changed, name+":"+to.String())
	}))

	b, err := r.GetOrCreate("payments", testPolicy())
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		Execute(context.Background(), b, "charge", failingOp)
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"payments:open"}, changed)
}

func TestRegistrySnapshotWhileExecuting(t *testing.T) {
	r := NewRegistry()
	policy := testPolicy()
	policy.CallTimeout = time.Second
	b, err := r.GetOrCreate("payments", policy)
	require.NoError(t, err)

	gate := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		Execute(context.Background(), b, "charge", func(ctx context.Context) (string, error) {
			<-gate
			return "ok", nil
		})
	}()

	// Snapshot must not block on in-flight operations.
	snap := r.Snapshot()
	assert.Contains(t, snap, "payments")

	close(gate)
	<-done
}
