package core

import (
	"errors"
	"fmt"
)

// ErrConfiguration is matched by every [ConfigurationError].
var ErrConfiguration = errors.New("invalid configuration")

// ConfigurationError reports a non-positive or otherwise unusable size or
// rate passed to a Prepare-style call.
type ConfigurationError struct {
	Field string
	Value float64
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s must be > 0: %v", e.Field, e.Value)
}

// Is reports whether target is [ErrConfiguration].
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// RequirePositive returns a *ConfigurationError naming field if value is not
// a finite number > 0.
func RequirePositive(field string, value float64) error {
	if !(value > 0) || !IsFinite(value) {
		return &ConfigurationError{Field: field, Value: value}
	}

	return nil
}
