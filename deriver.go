package partitionkey

import "github.com/rs/zerolog"

// Deriver wraps the package-level functions with logging and metrics.
// The zero value is not usable; construct it with New. A Deriver is safe for
// concurrent use.
type Deriver struct {
	log     zerolog.Logger
	metrics bool
}

// New constructs a Deriver. Options are applied in order.
func New(opts ...Option) (*Deriver, error) {
	d := &Deriver{log: zerolog.Nop()}
	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Derive is Derive with observation.
func (d *Deriver) Derive(event any) (string, error) {
	res, err := d.Resolve(event)
	if err != nil {
		return "", err
	}
	return res.Key, nil
}

// Resolve is Resolve with observation.
func (d *Deriver) Resolve(event any) (Result, error) {
	res, err := Resolve(event)
	d.observe(res, err)
	return res, err
}

// DeriveJSON is DeriveJSON with observation.
func (d *Deriver) DeriveJSON(data []byte) (string, error) {
	res, err := d.ResolveJSON(data)
	if err != nil {
		return "", err
	}
	return res.Key, nil
}

// ResolveJSON is ResolveJSON with observation.
func (d *Deriver) ResolveJSON(data []byte) (Result, error) {
	res, err := ResolveJSON(data)
	d.observe(res, err)
	return res, err
}

func (d *Deriver) observe(res Result, err error) {
	if err != nil {
		d.log.Debug().Err(err).Msg("partition key derivation failed")
		if d.metrics {
			derivationErrorsTotal.Inc()
		}
		return
	}
	d.log.Debug().
		Str("source", res.Source.String()).
		Int("key_len", len(res.Key)).
		Msg("partition key derived")
	if d.metrics {
		derivationsTotal.WithLabelValues(res.Source.String()).Inc()
	}
}
