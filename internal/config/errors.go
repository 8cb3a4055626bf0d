package config

import (
	"errors"
	"fmt"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)

// wrap annotates an external error with the failing operation.
func wrap(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrLoadConfig, err)
}
