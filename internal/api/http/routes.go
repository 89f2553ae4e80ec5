package httpapi

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-forecast/internal/service"
	"github.com/i474232898/weather-forecast/internal/weather"
)

var validate = validator.New()

const (
	defaultForecastDays = 5
	defaultLogLimit     = 50
)

// Service is the set of operations exposed over HTTP.
type Service interface {
	ListCities(ctx context.Context) ([]string, error)
	Ingest(ctx context.Context, city string, start, end *time.Time) (service.IngestResult, error)
	Backfill(ctx context.Context, city string, start, end *time.Time) (service.IngestResult, error)
	GetObservations(ctx context.Context, city string, sinceDays *int) ([]weather.Observation, error)
	GetForecast(ctx context.Context, city string, horizon int) ([]weather.ForecastPoint, error)
	Train(ctx context.Context, city string) (service.TrainResult, error)
	GetOperationLog(ctx context.Context, city string, limit int) ([]weather.OperationLogEntry, error)
	GetAvailability(ctx context.Context, city string, start, end *time.Time) (weather.Availability, error)
}

// RegisterRoutes wires the HTTP handlers into the Fiber app. maxForecastDays
// caps the days parameter of the forecast endpoint.
func RegisterRoutes(app *fiber.App, svc Service, maxForecastDays int) {
	v1 := app.Group("/api/v1")

	v1.Get("/cities", func(c *fiber.Ctx) error {
		cities, err := svc.ListCities(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"cities": cities})
	})

	v1.Post("/ingest", func(c *fiber.Ctx) error {
		req, err := parseRangeRequest(c)
		if err != nil {
			return err
		}
		res, err := svc.Ingest(c.UserContext(), req.City, req.Start, req.End)
		if err != nil {
			return err
		}
		return c.JSON(res)
	})

	v1.Post("/backfill", func(c *fiber.Ctx) error {
		req, err := parseRangeRequest(c)
		if err != nil {
			return err
		}
		res, err := svc.Backfill(c.UserContext(), req.City, req.Start, req.End)
		if err != nil {
			return err
		}
		return c.JSON(res)
	})

	v1.Get("/observations", func(c *fiber.Ctx) error {
		var q observationsQuery
		if err := q.bind(c); err != nil {
			return err
		}
		obs, err := svc.GetObservations(c.UserContext(), q.City, q.SinceDays)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{
			"city":         q.City,
			"count":        len(obs),
			"observations": obs,
		})
	})

	v1.Get("/forecast", func(c *fiber.Ctx) error {
		q := forecastQuery{City: c.Query("city"), Days: defaultForecastDays}
		if raw := c.Query("days"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "days must be an integer")
			}
			q.Days = n
		}
		if err := validate.Struct(q); err != nil {
			return err
		}
		if q.Days > maxForecastDays {
			return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("days must be between 1 and %d", maxForecastDays))
		}

		points, err := svc.GetForecast(c.UserContext(), q.City, q.Days)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{
			"city":     q.City,
			"days":     q.Days,
			"forecast": points,
		})
	})

	v1.Post("/train", func(c *fiber.Ctx) error {
		var req trainRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return err
		}
		res, err := svc.Train(c.UserContext(), req.City)
		if err != nil {
			return err
		}
		return c.JSON(res)
	})

	v1.Get("/operations", func(c *fiber.Ctx) error {
		q := operationsQuery{City: c.Query("city"), Limit: c.QueryInt("limit", defaultLogLimit)}
		if err := validate.Struct(q); err != nil {
			return err
		}
		entries, err := svc.GetOperationLog(c.UserContext(), q.City, q.Limit)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"operations": entries})
	})

	v1.Get("/availability", func(c *fiber.Ctx) error {
		city := c.Query("city")
		if err := validate.Var(city, "required"); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "city is required")
		}
		start, err := optionalDate(c.Query("start_date"))
		if err != nil {
			return err
		}
		end, err := optionalDate(c.Query("end_date"))
		if err != nil {
			return err
		}
		av, err := svc.GetAvailability(c.UserContext(), city, start, end)
		if err != nil {
			return err
		}
		return c.JSON(av)
	})
}

// ErrorHandler maps domain errors to distinguishable HTTP statuses.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	var ve validator.ValidationErrors
	switch {
	case errors.As(err, &fe):
		code = fe.Code
	case errors.As(err, &ve),
		errors.Is(err, weather.ErrValidation),
		errors.Is(err, weather.ErrInvalidRange):
		code = fiber.StatusBadRequest
	case errors.Is(err, weather.ErrInsufficientData):
		code = fiber.StatusUnprocessableEntity
	case errors.Is(err, weather.ErrArtifactMissing),
		errors.Is(err, weather.ErrNotFound):
		code = fiber.StatusNotFound
	case errors.Is(err, service.ErrFetchFailed):
		code = fiber.StatusBadGateway
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}

// rangeRequest is the body of ingest and backfill. Dates are optional.
type rangeRequest struct {
	City      string `json:"city" validate:"required"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`

	Start *time.Time `json:"-"`
	End   *time.Time `json:"-"`
}

func parseRangeRequest(c *fiber.Ctx) (rangeRequest, error) {
	var req rangeRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return req, fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
	}
	if req.City == "" {
		req.City = c.Query("city")
	}
	if err := validate.Struct(req); err != nil {
		return req, err
	}

	var err error
	if req.Start, err = optionalDate(req.StartDate); err != nil {
		return req, err
	}
	if req.End, err = optionalDate(req.EndDate); err != nil {
		return req, err
	}
	return req, nil
}

type observationsQuery struct {
	City      string
	SinceDays *int
}

func (q *observationsQuery) bind(c *fiber.Ctx) error {
	q.City = c.Query("city")
	if raw := c.Query("since_days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "since_days must be an integer")
		}
		q.SinceDays = &n
	}
	return nil
}

type forecastQuery struct {
	City string `validate:"required"`
	Days int    `validate:"min=1"`
}

type trainRequest struct {
	City string `json:"city" validate:"required"`
}

type operationsQuery struct {
	City  string
	Limit int `validate:"min=1,max=500"`
}

// optionalDate parses a YYYY-MM-DD date, an RFC3339 timestamp or unix
// seconds. Empty input yields nil.
func optionalDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if d, err := weather.ParseDate(s); err == nil {
		return &d, nil
	}
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		d := weather.Day(ts)
		return &d, nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		d := weather.Day(time.Unix(unix, 0))
		return &d, nil
	}
	return nil, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("invalid date %q; use YYYY-MM-DD", s))
}
