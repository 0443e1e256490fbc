package repository

import "github.com/okian/gatecompass/pkg/logger"

type options struct {
	log  logger.Logger
	name string
}

// Option configures a store.
type Option func(*options)

// WithLogger sets the logger used for skipped records and files.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithName overrides the backend label used in logs and metrics.
func WithName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.name = name
		}
	}
}

func buildOptions(name string, opts []Option) options {
	o := options{log: logger.Nop(), name: name}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
