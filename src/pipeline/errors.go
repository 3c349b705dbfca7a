package pipeline

import (
	"errors"
	"fmt"
)

// ErrConfiguration marks fatal misconfiguration detected before any side
// effect: missing required spec fields, or no way to name an image.
var ErrConfiguration = errors.New("configuration error")

// configErrorf wraps a formatted message with ErrConfiguration so callers
// can branch on errors.Is.
func configErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}
