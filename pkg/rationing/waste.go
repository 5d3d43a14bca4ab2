package rationing

import (
	"math"
	"sort"

	"github.com/arnavshah/rations-api-go/pkg/models"
)

// Waste computes, for every bucket expiring within the horizon, the calories
// left unconsumed at its cutoff. Waste is attributed entirely to the expiry
// day, never spread. Never-expiring buckets cannot waste anything. The
// per-bucket totals list every expiring bucket, zeros included, so that the
// day rows and the totals always sum to the same figure.
func (m *Model) Waste(schedule []models.DayRecord) ([]models.DayWaste, map[string]float64) {
	byExpiry := make(map[int][]models.Bucket)
	for _, b := range m.Buckets {
		if m.expiresWithinHorizon(b) {
			byExpiry[b.ExpiryDay] = append(byExpiry[b.ExpiryDay], b)
		}
	}

	totalByBucket := make(map[string]float64)
	wasteAtDay := make(map[int]map[string]float64)

	consumed := make(map[string]float64, len(m.Buckets))
	for _, rec := range schedule {
		for name, draw := range rec.PerBucketDraw {
			consumed[name] += draw
		}
		for _, b := range byExpiry[rec.Day] {
			waste := math.Max(0, b.TotalCalories-consumed[b.Name])
			totalByBucket[b.Name] = waste
			if waste > 0 {
				if wasteAtDay[rec.Day] == nil {
					wasteAtDay[rec.Day] = make(map[string]float64)
				}
				wasteAtDay[rec.Day][b.Name] = waste
			}
		}
	}

	days := make([]int, 0, len(wasteAtDay))
	for day := range wasteAtDay {
		days = append(days, day)
	}
	sort.Ints(days)

	wasteByDay := make([]models.DayWaste, 0, len(days))
	for _, day := range days {
		var dayTotal float64
		for _, w := range wasteAtDay[day] {
			dayTotal += w
		}
		wasteByDay = append(wasteByDay, models.DayWaste{
			Day:            day,
			WasteTotal:     dayTotal,
			PerBucketWaste: wasteAtDay[day],
		})
	}
	return wasteByDay, totalByBucket
}
