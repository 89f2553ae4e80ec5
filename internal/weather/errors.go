package weather

import (
	"errors"
	"fmt"
)

// MinTrainingObservations is the smallest history a model can be trained on.
const MinTrainingObservations = 5

var (
	// ErrValidation matches every *ValidationError via errors.Is.
	ErrValidation = errors.New("validation failed")

	// ErrInsufficientData is returned when fewer than MinTrainingObservations rows are supplied.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrInvalidRange is returned when a start date is after its end date.
	ErrInvalidRange = errors.New("invalid date range")

	// ErrArtifactMissing is returned when no trained bundle exists for a city.
	ErrArtifactMissing = errors.New("model artifact missing")

	// ErrNotFound is returned when no data is available for a given city.
	ErrNotFound = errors.New("no weather data for city")
)

// ValidationError reports a field outside its declared range.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// InsufficientData wraps ErrInsufficientData with the observed row count.
func InsufficientData(got int) error {
	return fmt.Errorf("%w: need at least %d observations, got %d", ErrInsufficientData, MinTrainingObservations, got)
}
