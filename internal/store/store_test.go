package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/i474232898/weather-forecast/internal/weather"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func day(d int) time.Time {
	return time.Date(2024, 5, d, 0, 0, 0, 0, time.UTC)
}

func obs(city string, d int, temp float64) weather.Observation {
	return weather.Observation{
		City:          city,
		Date:          day(d),
		Temperature:   temp,
		Humidity:      55,
		Pressure:      1010,
		WindSpeed:     3,
		Precipitation: 0.5,
		Condition:     weather.ConditionClear,
	}
}

// forEachStore runs fn against every Store implementation.
func forEachStore(t *testing.T, fn func(t *testing.T, s Store, clock *clockwork.FakeClock)) {
	t.Run("memory", func(t *testing.T) {
		clock := clockwork.NewFakeClockAt(epoch)
		fn(t, NewMemoryStore(WithClock(clock)), clock)
	})
	t.Run("sqlite", func(t *testing.T) {
		clock := clockwork.NewFakeClockAt(epoch)
		s, err := NewSQLite(filepath.Join(t.TempDir(), "weather.db"), WithClock(clock))
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		fn(t, s, clock)
	})
}

func TestUpsert_IdempotentLastWriteWins(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store, clock *clockwork.FakeClock) {
		ctx := context.Background()

		n, err := s.Upsert(ctx, []weather.Observation{obs("Kazan", 1, 10)})
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		clock.Advance(time.Hour)
		second := obs("Kazan", 1, 22.5)
		second.Condition = "Гроза"
		n, err = s.Upsert(ctx, []weather.Observation{second})
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		rows, err := s.Query(ctx, "Kazan", nil)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.InDelta(t, 22.5, rows[0].Temperature, 1e-9)
		assert.Equal(t, weather.ConditionStorm, rows[0].Condition)
		assert.True(t, rows[0].CreatedAt.Equal(epoch.Add(time.Hour)))
	})
}

func TestUpsert_SkipsInvalidRows(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store, _ *clockwork.FakeClock) {
		ctx := context.Background()

		bad := obs("Kazan", 2, 10)
		bad.Humidity = 140
		n, err := s.Upsert(ctx, []weather.Observation{obs("Kazan", 1, 10), bad, obs("Kazan", 3, 11)})
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		rows, err := s.Query(ctx, "Kazan", nil)
		require.NoError(t, err)
		assert.Len(t, rows, 2)
	})
}

func TestUpsert_DuplicatesInBatchCollapse(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store, _ *clockwork.FakeClock) {
		ctx := context.Background()

		n, err := s.Upsert(ctx, []weather.Observation{obs("Kazan", 1, 10), obs("Kazan", 1, 12)})
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		rows, err := s.Query(ctx, "Kazan", nil)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.InDelta(t, 12, rows[0].Temperature, 1e-9)
	})
}

func TestQuery_OrderAndSince(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store, _ *clockwork.FakeClock) {
		ctx := context.Background()

		_, err := s.Upsert(ctx, []weather.Observation{
			obs("Kazan", 3, 1), obs("Kazan", 1, 2), obs("Kazan", 5, 3), obs("Perm", 4, 4),
		})
		require.NoError(t, err)

		rows, err := s.Query(ctx, "Kazan", nil)
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, day(5), rows[0].Date)
		assert.Equal(t, day(3), rows[1].Date)
		assert.Equal(t, day(1), rows[2].Date)

		since := day(3)
		rows, err = s.Query(ctx, "Kazan", &since)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, day(3), rows[1].Date)

		all, err := s.Query(ctx, "", nil)
		require.NoError(t, err)
		require.Len(t, all, 4)
		assert.Equal(t, "Perm", all[1].City)
	})
}

func TestDistinctCities(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store, _ *clockwork.FakeClock) {
		ctx := context.Background()

		cities, err := s.DistinctCities(ctx)
		require.NoError(t, err)
		assert.Empty(t, cities)

		_, err = s.Upsert(ctx, []weather.Observation{obs("Perm", 1, 1), obs("Kazan", 1, 1), obs("Kazan", 2, 1)})
		require.NoError(t, err)

		cities, err = s.DistinctCities(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"Kazan", "Perm"}, cities)
	})
}

func TestDateExtent(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store, _ *clockwork.FakeClock) {
		ctx := context.Background()

		ext, err := s.DateExtent(ctx, "Kazan")
		require.NoError(t, err)
		assert.Equal(t, 0, ext.Count)
		assert.Nil(t, ext.MinDate)
		assert.Nil(t, ext.MaxDate)

		_, err = s.Upsert(ctx, []weather.Observation{obs("Kazan", 7, 1), obs("Kazan", 2, 1), obs("Kazan", 4, 1)})
		require.NoError(t, err)

		ext, err = s.DateExtent(ctx, "Kazan")
		require.NoError(t, err)
		assert.Equal(t, 3, ext.Count)
		require.NotNil(t, ext.MinDate)
		require.NotNil(t, ext.MaxDate)
		assert.Equal(t, day(2), *ext.MinDate)
		assert.Equal(t, day(7), *ext.MaxDate)
	})
}

func TestDatesInRange_FeedsGapResolver(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store, _ *clockwork.FakeClock) {
		ctx := context.Background()

		_, err := s.Upsert(ctx, []weather.Observation{obs("Kazan", 1, 1), obs("Kazan", 3, 1), obs("Kazan", 9, 1)})
		require.NoError(t, err)

		missing, err := weather.NewGapResolver(s).MissingDates(ctx, "Kazan", day(1), day(5))
		require.NoError(t, err)
		assert.Equal(t, []time.Time{day(2), day(4), day(5)}, weather.SortDates(missing))
	})
}

func TestOperationLog_AppendAndList(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store, clock *clockwork.FakeClock) {
		ctx := context.Background()

		for i, city := range []string{"Kazan", "Perm", "Kazan"} {
			require.NoError(t, s.Append(ctx, weather.OperationLogEntry{
				ID:             string(rune('a' + i)),
				City:           city,
				RequestedStart: day(1),
				RequestedEnd:   day(10),
				Status:         weather.StatusSuccess,
				Message:        "ok",
			}))
			clock.Advance(time.Minute)
		}

		all, err := s.List(ctx, "", 0)
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, "c", all[0].ID)
		assert.Equal(t, "a", all[2].ID)

		kazan, err := s.List(ctx, "Kazan", 1)
		require.NoError(t, err)
		require.Len(t, kazan, 1)
		assert.Equal(t, "c", kazan[0].ID)
		assert.Equal(t, day(1), kazan[0].RequestedStart)
		assert.Equal(t, day(10), kazan[0].RequestedEnd)
		assert.Equal(t, weather.StatusSuccess, kazan[0].Status)
		assert.True(t, kazan[0].CreatedAt.Equal(epoch.Add(2*time.Minute)))
	})
}
