package weather

import "sort"

// AggregateObservations combines observations from several sources into one row
// per (city, date). Numeric fields are averaged; the condition is selected by
// majority, ties going to the label seen first. Output is ordered by city, then date.
func AggregateObservations(batches ...[]Observation) []Observation {
	type bucket struct {
		rows   []Observation
		counts map[Condition]int
		order  []Condition
	}

	buckets := make(map[ObservationKey]*bucket)
	var keys []ObservationKey

	for _, batch := range batches {
		for _, o := range batch {
			k := o.Key()
			b, ok := buckets[k]
			if !ok {
				b = &bucket{counts: make(map[Condition]int)}
				buckets[k] = b
				keys = append(keys, k)
			}
			b.rows = append(b.rows, o)
			if b.counts[o.Condition] == 0 {
				b.order = append(b.order, o.Condition)
			}
			b.counts[o.Condition]++
		}
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].City != keys[j].City {
			return keys[i].City < keys[j].City
		}
		return keys[i].Date.Before(keys[j].Date)
	})

	out := make([]Observation, 0, len(keys))
	for _, k := range keys {
		b := buckets[k]
		if len(b.rows) == 1 {
			out = append(out, b.rows[0])
			continue
		}

		var sumTemp, sumHumidity, sumPressure, sumWind, sumPrecip float64
		for _, r := range b.rows {
			sumTemp += r.Temperature
			sumHumidity += r.Humidity
			sumPressure += r.Pressure
			sumWind += r.WindSpeed
			sumPrecip += r.Precipitation
		}
		n := float64(len(b.rows))

		// Pick majority condition.
		bestCond := ConditionUnknown
		bestCount := 0
		for _, cond := range b.order {
			if c := b.counts[cond]; c > bestCount {
				bestCount = c
				bestCond = cond
			}
		}

		out = append(out, Observation{
			City:          k.City,
			Date:          k.Date,
			Temperature:   sumTemp / n,
			Humidity:      sumHumidity / n,
			Pressure:      sumPressure / n,
			WindSpeed:     sumWind / n,
			Precipitation: sumPrecip / n,
			Condition:     bestCond,
		})
	}
	return out
}
