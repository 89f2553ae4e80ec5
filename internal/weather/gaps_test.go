package weather

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticDates []time.Time

func (s staticDates) DatesInRange(_ context.Context, _ string, start, end time.Time) ([]time.Time, error) {
	var out []time.Time
	for _, d := range s {
		if !d.Before(start) && !d.After(end) {
			out = append(out, d)
		}
	}
	return out, nil
}

func day(m time.Month, d int) time.Time {
	return time.Date(2024, m, d, 0, 0, 0, 0, time.UTC)
}

func TestMissingDates_EmptyHistoryIsFullRange(t *testing.T) {
	g := NewGapResolver(staticDates(nil))

	missing, err := g.MissingDates(context.Background(), "Kazan", day(3, 1), day(3, 5))
	require.NoError(t, err)
	assert.Equal(t, []time.Time{day(3, 1), day(3, 2), day(3, 3), day(3, 4), day(3, 5)}, SortDates(missing))
}

func TestMissingDates_ComplementLaw(t *testing.T) {
	stored := staticDates{day(2, 27), day(3, 1), day(3, 3), day(3, 4), day(3, 9)}
	g := NewGapResolver(stored)
	start, end := day(2, 28), day(3, 6)

	missing, err := g.MissingDates(context.Background(), "Kazan", start, end)
	require.NoError(t, err)

	existing, _ := stored.DatesInRange(context.Background(), "Kazan", start, end)

	union := make(map[time.Time]struct{})
	for _, d := range existing {
		_, dup := missing[d]
		assert.False(t, dup, "existing and missing must be disjoint: %s", d)
		union[d] = struct{}{}
	}
	for d := range missing {
		union[d] = struct{}{}
	}

	var full []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		full = append(full, d)
	}
	assert.Equal(t, full, SortDates(union))
}

func TestMissingDates_LeapDayIncluded(t *testing.T) {
	g := NewGapResolver(staticDates(nil))

	missing, err := g.MissingDates(context.Background(), "Kazan", day(2, 28), day(3, 1))
	require.NoError(t, err)
	assert.Len(t, missing, 3)
	assert.Contains(t, missing, day(2, 29))
}

func TestMissingDates_SingleDay(t *testing.T) {
	g := NewGapResolver(staticDates{day(3, 1)})

	missing, err := g.MissingDates(context.Background(), "Kazan", day(3, 1), day(3, 1))
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestMissingDates_InvalidRange(t *testing.T) {
	g := NewGapResolver(staticDates(nil))
	today := Day(time.Now())

	_, err := g.MissingDates(context.Background(), "Kazan", today.AddDate(0, 0, 1), today)
	require.ErrorIs(t, err, ErrInvalidRange)
}

func TestRuns(t *testing.T) {
	runs := Runs([]time.Time{day(3, 1), day(3, 2), day(3, 4), day(3, 6), day(3, 7), day(3, 8)})

	assert.Equal(t, []DateRun{
		{Start: day(3, 1), End: day(3, 2)},
		{Start: day(3, 4), End: day(3, 4)},
		{Start: day(3, 6), End: day(3, 8)},
	}, runs)
	assert.Empty(t, Runs(nil))
}
