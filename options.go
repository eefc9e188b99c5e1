package partitionkey

// Functional options for New live here so every knob is easy to find.

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Option configures a Deriver during construction in New.
type Option func(*Deriver) error

// WithLogger sets the logger that receives one debug event per derivation.
// The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(d *Deriver) error {
		d.log = l
		return nil
	}
}

// WithMetrics turns the Prometheus counters in metrics.go on or off.
func WithMetrics(enabled bool) Option {
	return func(d *Deriver) error {
		d.metrics = enabled
		return nil
	}
}

// WithComponent tags every log event with component=name, useful when several
// producers share one logger.
func WithComponent(name string) Option {
	return func(d *Deriver) error {
		if name == "" {
			return fmt.Errorf("component name must not be empty")
		}
		d.log = d.log.With().Str("component", name).Logger()
		return nil
	}
}
