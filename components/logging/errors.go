package logging

import (
	"errors"
	"fmt"
)

// ErrConfiguration matches every ConfigurationError via errors.Is.
var ErrConfiguration = errors.New("logging configuration error")

// ConfigurationError is returned at provisioning time when a sink cannot be
// set up: invalid parameters, a log directory that cannot be created or a log
// file that cannot be opened.
type ConfigurationError struct {
	Sink  string
	Field string
	Err   error
}

func (e *ConfigurationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("logging sink %q: invalid %s: %v", e.Sink, e.Field, e.Err)
	}
	return fmt.Sprintf("logging sink %q: %v", e.Sink, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

func configError(sink, field string, err error) error {
	return &ConfigurationError{Sink: sink, Field: field, Err: err}
}
