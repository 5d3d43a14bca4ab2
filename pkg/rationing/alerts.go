package rationing

import (
	"math"

	"github.com/arnavshah/rations-api-go/pkg/models"
)

// minAlertCalories is the materiality threshold below which no alert is emitted
const minAlertCalories = 1.0

// AlertConfig carries the caller-selected policy and the ration context the
// alert arithmetic needs. FullDailyCalories is the unscaled per-person target;
// scenario fractions never change how an alert is expressed.
type AlertConfig struct {
	Policy            models.AlertPolicy
	Population        int
	FullDailyCalories float64
	Horizon           int
}

// ComputeAlerts scans expiring buckets against the consumption schedule and
// reports the calories at risk of being lost, keyed by the day each alert
// concerns. It is a pure function of the caller-visible schedule and catalog;
// it never reads solver internals, so it can be re-run whenever the caller
// switches scenario or policy.
func ComputeAlerts(schedule []models.DayRecord, buckets []models.Bucket, cfg AlertConfig) map[int][]models.Alert {
	alerts := make(map[int][]models.Alert)
	if cfg.Population <= 0 || cfg.FullDailyCalories <= 0 {
		return alerts
	}

	for _, b := range buckets {
		if b.ExpiryDay <= 0 || b.ExpiryDay > cfg.Horizon {
			continue
		}
		extra := math.Max(0, b.TotalCalories-ConsumedThrough(schedule, b.Name, b.ExpiryDay))
		if extra < minAlertCalories {
			continue
		}

		switch cfg.Policy {
		case models.AlertPolicyPerPersonUnits:
			unitCals := b.CaloriesPerUnit
			if unitCals <= 0 {
				unitCals = 1
			}
			unitsLeft := extra / unitCals
			perPerson := int(unitsLeft / float64(cfg.Population))
			remainder := unitsLeft - float64(perPerson*cfg.Population)
			alerts[b.ExpiryDay] = append(alerts[b.ExpiryDay], models.Alert{
				Bucket:              b.Name,
				ExpiresDay:          b.ExpiryDay,
				Kind:                models.AlertExpiresToday,
				ExtraCalories:       extra,
				ExtraUnitsPerPerson: perPerson,
				RemainderUnits:      remainder,
			})

		case models.AlertPolicyRationFraction:
			frac := extra / (float64(cfg.Population) * cfg.FullDailyCalories)
			if day := b.ExpiryDay - 1; day >= 1 {
				alerts[day] = append(alerts[day], models.Alert{
					Bucket:           b.Name,
					ExpiresDay:       b.ExpiryDay,
					Kind:             models.AlertExpiresTomorrow,
					ExtraCalories:    extra,
					ExtraFullRations: frac,
				})
			}
			alerts[b.ExpiryDay] = append(alerts[b.ExpiryDay], models.Alert{
				Bucket:           b.Name,
				ExpiresDay:       b.ExpiryDay,
				Kind:             models.AlertExpiresToday,
				ExtraCalories:    extra,
				ExtraFullRations: frac,
			})
		}
	}
	return alerts
}
