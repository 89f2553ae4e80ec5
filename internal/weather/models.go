package weather

import (
	"time"
)

// Condition represents a normalized high-level weather condition.
type Condition string

const (
	ConditionClear    Condition = "Clear"
	ConditionCloudy   Condition = "Cloudy"
	ConditionOvercast Condition = "Overcast"
	ConditionFog      Condition = "Fog"
	ConditionRain     Condition = "Rain"
	ConditionStorm    Condition = "Storm"
	ConditionSnow     Condition = "Snow"
	ConditionUnknown  Condition = "Unknown"
)

// Conditions lists every known condition in declaration order.
var Conditions = []Condition{
	ConditionClear,
	ConditionCloudy,
	ConditionOvercast,
	ConditionFog,
	ConditionRain,
	ConditionStorm,
	ConditionSnow,
	ConditionUnknown,
}

// Observation is one city-day weather record.
// Date is always a UTC calendar day (midnight).
type Observation struct {
	City          string    `json:"city" validate:"required"`
	Date          time.Time `json:"date"`
	Temperature   float64   `json:"temperature"`
	Humidity      float64   `json:"humidity" validate:"gte=0,lte=100"`
	Pressure      float64   `json:"pressure" validate:"gte=800,lte=1200"`
	WindSpeed     float64   `json:"windSpeed" validate:"gte=0"`
	Precipitation float64   `json:"precipitation" validate:"gte=0"`
	Condition     Condition `json:"condition"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Key returns the uniqueness key of the observation.
func (o Observation) Key() ObservationKey {
	return ObservationKey{City: o.City, Date: Day(o.Date)}
}

// ObservationKey identifies at most one Observation.
type ObservationKey struct {
	City string
	Date time.Time
}

// OperationStatus is the outcome of one ingestion attempt.
type OperationStatus string

const (
	StatusPending OperationStatus = "pending"
	StatusSuccess OperationStatus = "success"
	StatusError   OperationStatus = "error"
)

// OperationLogEntry records one ingestion attempt. Entries are never mutated.
type OperationLogEntry struct {
	ID             string          `json:"id"`
	City           string          `json:"city"`
	RequestedStart time.Time       `json:"requestedStart"`
	RequestedEnd   time.Time       `json:"requestedEnd"`
	Status         OperationStatus `json:"status"`
	Message        string          `json:"message"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// ForecastPoint is a single predicted day. It is not persisted.
type ForecastPoint struct {
	City          string    `json:"city"`
	Date          time.Time `json:"date"`
	Temperature   float64   `json:"temperature"`
	Humidity      float64   `json:"humidity"`
	Precipitation float64   `json:"precipitation"`
	Condition     Condition `json:"condition"`
}

// Extent summarizes the stored date range of a city. Min and Max are nil when Count is 0.
type Extent struct {
	MinDate *time.Time `json:"minDate"`
	MaxDate *time.Time `json:"maxDate"`
	Count   int        `json:"count"`
}

// Availability is the answer to an availability query.
type Availability struct {
	City         string      `json:"city"`
	Available    bool        `json:"available"`
	MinDate      *time.Time  `json:"minDate"`
	MaxDate      *time.Time  `json:"maxDate"`
	Count        int         `json:"count"`
	MissingDates []time.Time `json:"missingDates"`
}

// Day truncates t to its UTC calendar day.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DateLayout is the wire and storage format for calendar dates.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}
