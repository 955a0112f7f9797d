package config

import "errors"

// Validation errors for bed configurations.
var (
	// ErrNonPositive indicates a dimension or physical constant that must be positive.
	ErrNonPositive = errors.New("config: value must be positive")

	// ErrNegative indicates a coefficient that must not be negative.
	ErrNegative = errors.New("config: value must not be negative")

	// ErrUnknownProbe indicates a probe name other than heater or plate.
	ErrUnknownProbe = errors.New("config: unknown probe")

	// ErrUnknownController indicates a controller name with no implementation.
	ErrUnknownController = errors.New("config: unknown controller")

	// ErrUnknownField indicates a setting name with no numeric field behind it.
	ErrUnknownField = errors.New("config: unknown field")

	// ErrGridTooCoarse indicates a plate that rounds to zero cells at the
	// configured resolution.
	ErrGridTooCoarse = errors.New("config: plate smaller than one grid cell")

	// ErrHeaterTooLarge indicates a heater larger than the plate.
	ErrHeaterTooLarge = errors.New("config: heater larger than plate")
)
