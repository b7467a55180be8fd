package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Input-size errors
	ErrInsufficientData = errors.New("insufficient data for test")

	// Window errors
	ErrInvalidWindow      = errors.New("invalid observation window")
	ErrEventOutsideWindow = fmt.Errorf("%w: event outside declared window", ErrInvalidWindow)

	// Selector errors
	ErrUnsupportedDistribution = errors.New("unsupported reference distribution")

	// Combiner errors
	ErrInvalidPValue       = errors.New("invalid p-value")
	ErrUnsupportedCombiner = errors.New("unsupported combination method")

	// Binner errors
	ErrInvalidBinWidth = errors.New("bin width must be positive")

	// Catalog errors
	ErrUnorderedCatalog = errors.New("catalog timestamps must be non-decreasing")
)

// Error constructors with context
func NewInsufficientDataError(test string, need, got int) error {
	return fmt.Errorf("%w: %s needs at least %d, got %d", ErrInsufficientData, test, need, got)
}

func NewInvalidWindowError(start, end float64) error {
	return fmt.Errorf("%w: start %g >= end %g", ErrInvalidWindow, start, end)
}

func NewUnsupportedDistributionError(selector string) error {
	return fmt.Errorf("%w: %q", ErrUnsupportedDistribution, selector)
}

func NewInvalidPValueError(index int, p float64) error {
	return fmt.Errorf("%w: p[%d] = %g outside (0,1]", ErrInvalidPValue, index, p)
}

// Error checking helpers
func IsInsufficientDataError(err error) bool {
	return errors.Is(err, ErrInsufficientData)
}

func IsInvalidWindowError(err error) bool {
	return errors.Is(err, ErrInvalidWindow)
}

func IsUnsupportedDistributionError(err error) bool {
	return errors.Is(err, ErrUnsupportedDistribution)
}

func IsInvalidPValueError(err error) bool {
	return errors.Is(err, ErrInvalidPValue)
}
