package htm

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownStep is returned when a prediction is requested for a step
	// offset the classifier was not configured to learn.
	ErrUnknownStep = errors.New("htm: prediction step not configured")
	// ErrStateVersion is returned when a serialized state was written by an
	// incompatible version.
	ErrStateVersion = errors.New("htm: unsupported state version")
	// ErrStateCorrupt is returned when a serialized state cannot be decoded.
	ErrStateCorrupt = errors.New("htm: corrupt state")
)

// ConfigError reports an invalid parameter found at initialization.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("htm: invalid config %s: %s", e.Field, e.Reason)
}

func configErr(field, format string, args ...interface{}) error {
	return &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// InputShapeError reports an input SDR whose width or number of active bits
// does not match what the model was configured with.
type InputShapeError struct {
	Width          int
	ExpectedWidth  int
	Active         int
	ExpectedActive int
	// Set when an active index is outside the width or out of order
	BadIndex int
	Reason   string
}

func (e *InputShapeError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("htm: input index %d %s", e.BadIndex, e.Reason)
	}
	if e.Width != e.ExpectedWidth {
		return fmt.Sprintf("htm: input width %d, expected %d", e.Width, e.ExpectedWidth)
	}
	return fmt.Sprintf("htm: input has %d active bits, expected %d", e.Active, e.ExpectedActive)
}
