package monitoring

import (
	"time"

	"go.uber.org/zap"

	"github.com/fusegate/fusegate/internal/logging"
	"github.com/fusegate/fusegate/internal/resilience"
)

// Instrument returns registry options that record every breaker event
// to the metrics collector and the logger. Pass the result to
// resilience.NewRegistry so every breaker it creates is observed.
func Instrument(logger *logging.Logger, metrics *Metrics) []resilience.Option {
	return []resilience.Option{
		resilience.OnStateChange(func(name string, from, to resilience.State) {
			metrics.RecordStateChange(name, from, to)
			logger.Warn("breaker state change",
				zap.String("breaker", name),
				zap.Stringer("from", from),
				zap.Stringer("to", to),
			)
		}),
		resilience.OnReject(func(name, label string) {
			metrics.RecordRejection(name)
			logger.Debug("breaker rejected call",
				zap.String("breaker", name),
				zap.String("operation", label),
			)
		}),
		resilience.OnCall(func(name, label string, elapsed time.Duration, err error) {
			metrics.RecordCall(name, elapsed, err)
			if err != nil {
				logger.Debug("breaker call failed",
					zap.String("breaker", name),
					zap.String("operation", label),
					zap.Duration("elapsed", elapsed),
					zap.Error(err),
				)
			}
		}),
	}
}
