package weather

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// DateLister is the read side of the observation store the gap resolver needs.
type DateLister interface {
	DatesInRange(ctx context.Context, city string, start, end time.Time) ([]time.Time, error)
}

// GapResolver computes which calendar days of a range have no stored observation.
type GapResolver struct {
	store DateLister
}

// NewGapResolver creates a GapResolver reading from store.
func NewGapResolver(store DateLister) *GapResolver {
	return &GapResolver{store: store}
}

// MissingDates returns every day in [start, end] without an observation for city.
// The result is unordered; use SortDates before display.
func (g *GapResolver) MissingDates(ctx context.Context, city string, start, end time.Time) (map[time.Time]struct{}, error) {
	start, end = Day(start), Day(end)
	if start.After(end) {
		return nil, fmt.Errorf("%w: start %s is after end %s", ErrInvalidRange, start.Format(DateLayout), end.Format(DateLayout))
	}

	present, err := g.store.DatesInRange(ctx, city, start, end)
	if err != nil {
		return nil, fmt.Errorf("list stored dates: %w", err)
	}

	missing := make(map[time.Time]struct{})
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		missing[d] = struct{}{}
	}
	for _, d := range present {
		delete(missing, Day(d))
	}
	return missing, nil
}

// SortDates returns the set's members in ascending order.
func SortDates(set map[time.Time]struct{}) []time.Time {
	out := make([]time.Time, 0, len(set))
	for d := range set {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// DateRun is an inclusive run of consecutive days.
type DateRun struct {
	Start time.Time
	End   time.Time
}

// Runs groups ascending dates into runs of consecutive days.
func Runs(dates []time.Time) []DateRun {
	var runs []DateRun
	for _, d := range dates {
		d = Day(d)
		if n := len(runs); n > 0 && runs[n-1].End.AddDate(0, 0, 1).Equal(d) {
			runs[n-1].End = d
			continue
		}
		runs = append(runs, DateRun{Start: d, End: d})
	}
	return runs
}
