/*
Package resilience implements a per-dependency circuit breaker with a
keyed registry.

# Overview

A Breaker protects a caller from cascading failures of one downstream
dependency: once failures cross the policy threshold it trips open and
fails fast, periodically admits probe calls to test recovery, and
exposes live counters for dashboards.

# States

	Closed --[failures >= threshold]--> Open --[recovery timeout]--> HalfOpen
	                                      ^                             |
	                                      |---------[any failure]-------|
	                                                [quota successes]--> Closed

# Usage

	registry := resilience.NewRegistry()

	b, err := registry.GetOrCreate("payment-service", resilience.Policy{
		FailureThreshold:   3,
		CallTimeout:        2 * time.Second,
		RecoveryTimeout:    5 * time.Second,
		HalfOpenProbeQuota: 2,
		MinCallsBeforeTrip: 3,
	})
	if err != nil {
		return err
	}

	outcome := resilience.Execute(ctx, b, "charge", func(ctx context.Context) (Receipt, error) {
		return client.Charge(ctx, amount)
	})
	if !outcome.Succeeded() {
		if errors.Is(outcome.Cause(), resilience.ErrCircuitOpen) {
			return fallbackReceipt()
		}
		return Receipt{}, outcome.Cause()
	}

Every call returns an Outcome; the breaker never raises for the
caller. Operations run under the policy's call timeout with real
cancellation: an overrunning call is abandoned, and its context is
cancelled so cooperative operations stop promptly.

# Concurrency

Breakers are safe for many concurrent callers. Admission bookkeeping
is one critical section, so no more than HalfOpenProbeQuota probes are
in flight during recovery testing, but the protected operation itself
never runs under the lock.
*/
package resilience
