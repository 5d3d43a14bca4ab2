package rationing

import (
	"math"
	"sort"

	"github.com/arnavshah/rations-api-go/pkg/models"
)

// ExtractSchedule materializes the day-by-day draws for a feasible k-day
// prefix. Each survived day draws exactly the daily requirement, taking from
// the soonest-expiring live buckets first; never-expiring buckets are drawn
// last and ties keep catalog order. Days past k draw nothing. Which bucket is
// drawn first is a free choice as long as the constraints hold; deadline order
// fills every feasible prefix without backtracking.
func (m *Model) ExtractSchedule(k int) []models.DayRecord {
	remaining := make([]float64, len(m.Buckets))
	for i, b := range m.Buckets {
		remaining[i] = b.TotalCalories
	}

	order := make([]int, len(m.Buckets))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ba, bb := m.Buckets[order[a]], m.Buckets[order[b]]
		ea, eb := m.expiresWithinHorizon(ba), m.expiresWithinHorizon(bb)
		if ea != eb {
			return ea
		}
		if ea {
			return ba.ExpiryDay < bb.ExpiryDay
		}
		return false
	})

	schedule := make([]models.DayRecord, 0, m.Horizon)
	for t := 1; t <= m.Horizon; t++ {
		draws := make(map[string]float64, len(m.Buckets))
		for _, b := range m.Buckets {
			draws[b.Name] = 0
		}

		total := 0.0
		if t <= k {
			need := m.DailyNeed
			for _, i := range order {
				if need <= epsilon {
					break
				}
				b := m.Buckets[i]
				if m.expiresWithinHorizon(b) && b.ExpiryDay < t {
					continue
				}
				draw := math.Min(need, remaining[i])
				if draw <= 0 {
					continue
				}
				remaining[i] -= draw
				need -= draw
				draws[b.Name] += draw
				total += draw
			}
		}

		schedule = append(schedule, models.DayRecord{
			Day:           t,
			Survived:      t <= k,
			PerBucketDraw: draws,
			TotalDraw:     total,
		})
	}
	return schedule
}

// ConsumedThrough sums the calories drawn from one bucket through day L
func ConsumedThrough(schedule []models.DayRecord, bucket string, day int) float64 {
	var sum float64
	for _, rec := range schedule {
		if rec.Day > day {
			break
		}
		sum += rec.PerBucketDraw[bucket]
	}
	return sum
}
