package neat

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig is wrapped by every configuration validation failure.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrUnevaluated is returned by Evolve while any genome still lacks a terminal fitness.
	ErrUnevaluated = errors.New("population has unevaluated genomes")
)

func configError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}
