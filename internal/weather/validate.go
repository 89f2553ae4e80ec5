package weather

import (
	"errors"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Normalize validates o and returns a copy with the date truncated to its UTC day,
// the city trimmed and the condition label mapped onto a known Condition.
// Unknown labels are normalized to ConditionUnknown rather than rejected.
func Normalize(o Observation) (Observation, error) {
	o.City = strings.TrimSpace(o.City)
	if o.Date.IsZero() {
		return o, &ValidationError{Field: "date", Reason: "is required"}
	}
	o.Date = Day(o.Date)

	for name, v := range map[string]float64{
		"temperature":   o.Temperature,
		"humidity":      o.Humidity,
		"pressure":      o.Pressure,
		"windSpeed":     o.WindSpeed,
		"precipitation": o.Precipitation,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return o, &ValidationError{Field: name, Reason: "must be finite"}
		}
	}

	if err := validate.Struct(o); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return o, &ValidationError{Field: fieldName(fe), Reason: describe(fe)}
		}
		return o, &ValidationError{Field: "observation", Reason: err.Error()}
	}

	o.Condition = ParseCondition(string(o.Condition))
	return o, nil
}

func fieldName(fe validator.FieldError) string {
	f := fe.Field()
	if f == "" {
		return "observation"
	}
	return strings.ToLower(f[:1]) + f[1:]
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gte":
		return "must be >= " + fe.Param()
	case "lte":
		return "must be <= " + fe.Param()
	default:
		return "failed " + fe.Tag()
	}
}
