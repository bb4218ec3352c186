package resilience

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicyValidate(t *testing.T) {
	valid := Policy{
		FailureThreshold:   3,
		CallTimeout:        time.Second,
		RecoveryTimeout:    time.Second,
		HalfOpenProbeQuota: 1,
		MinCallsBeforeTrip: 3,
	}

	tests := []struct {
		name    string
		mutate  func(*Policy)
		wantErr bool
	}{
		{name: "valid", mutate: func(p *Policy) {}},
		{name: "defaults are valid", mutate: func(p *Policy) { *p = DefaultPolicy() }},
		{name: "zero threshold", mutate: func(p *Policy) { p.FailureThreshold = 0 }, wantErr: true},
		{name: "negative threshold", mutate: func(p *Policy) { p.FailureThreshold = -1 }, wantErr: true},
		{name: "min calls below threshold", mutate: func(p *Policy) { p.MinCallsBeforeTrip = 2 }, wantErr: true},
		{name: "zero probe quota", mutate: func(p *Policy) { p.HalfOpenProbeQuota = 0 }, wantErr: true},
		{name: "zero call timeout", mutate: func(p *Policy) { p.CallTimeout = 0 }, wantErr: true},
		{name: "negative recovery timeout", mutate: func(p *Policy) { p.RecoveryTimeout = -time.Second }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)
			err := p.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPolicy)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewBreakerRejectsInvalidPolicy(t *testing.T) {
	_, err := NewBreaker("orders", Policy{})
	require.ErrorIs(t, err, ErrInvalidPolicy)
	assert.Contains(t, err.Error(), "orders")
}

func TestOutcomeConstructors(t *testing.T) {
	ok := Success("value", 10*time.Millisecond)
	assert.True(t, ok.Succeeded())
	assert.Equal(t, "value", ok.Value())
	assert.NoError(t, ok.Cause())
	assert.Equal(t, 10*time.Millisecond, ok.Elapsed())

	bad := Failure[string](ErrCallTimeout, 2*time.Second)
	assert.False(t, bad.Succeeded())
	assert.Empty(t, bad.Value())
	assert.ErrorIs(t, bad.Cause(), ErrCallTimeout)
	assert.Equal(t, 2*time.Second, bad.Elapsed())
}
