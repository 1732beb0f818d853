package lpmodel

import "github.com/pkg/errors"

type Option func(*Model) error

func WithLogger(logger Logger) Option {
	return func(m *Model) error {
		if logger == nil {
			return errors.New("nil logger")
		}
		m.logger = logger

		return nil
	}
}

// WithSuffix requests sensitivity information for every solve of the model,
// as if RequestSuffix had been called right after construction.
func WithSuffix(s Suffix) Option {
	return func(m *Model) error {
		m.suffixes |= s

		return nil
	}
}
