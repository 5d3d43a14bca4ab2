package rationing

import (
	"testing"

	"github.com/arnavshah/rations-api-go/pkg/models"
)

func TestComputeAlerts_RationFractionPair(t *testing.T) {
	m := mustBuild(t, models.AllocationRequest{
		Buckets: []models.Bucket{
			{Name: "beans", TotalCalories: 600_000, ExpiryDay: 5},
			{Name: "reserve", TotalCalories: 10_000_000},
		},
		Population:        50,
		CaloriesPerPerson: 2000,
		HorizonDays:       60,
	})
	res := m.Solve(0)

	alerts := ComputeAlerts(res.Schedule, m.Buckets, AlertConfig{
		Policy:            models.AlertPolicyRationFraction,
		Population:        50,
		FullDailyCalories: 2000,
		Horizon:           60,
	})

	dayBefore := alerts[4]
	if len(dayBefore) != 1 || dayBefore[0].Kind != models.AlertExpiresTomorrow {
		t.Fatalf("Expected one ExpiresTomorrow alert on day 4, got %v", dayBefore)
	}
	dayOf := alerts[5]
	if len(dayOf) != 1 || dayOf[0].Kind != models.AlertExpiresToday {
		t.Fatalf("Expected one ExpiresToday alert on day 5, got %v", dayOf)
	}

	// 100000 extra calories over 50 people at 2000 cal is exactly one full ration
	for _, a := range []models.Alert{dayBefore[0], dayOf[0]} {
		if a.Bucket != "beans" || a.ExpiresDay != 5 {
			t.Errorf("Alert names wrong bucket/day: %+v", a)
		}
		if a.ExtraCalories != 100_000 {
			t.Errorf("Expected 100000 extra calories, got %f", a.ExtraCalories)
		}
		if a.ExtraFullRations != 1.0 {
			t.Errorf("Expected one full ration at risk, got %f", a.ExtraFullRations)
		}
	}
}

func TestComputeAlerts_FractionUsesFullRationNotScenario(t *testing.T) {
	// Half-ration scenario: the solve consumes less, but the fraction is still
	// expressed against the full 2000-calorie ration
	input := models.SolveInput{
		Buckets: []models.Bucket{
			{Name: "beans", TotalCalories: 600_000, ExpiryDay: 5},
			{Name: "reserve", TotalCalories: 10_000_000},
		},
		Population:        50,
		CaloriesPerPerson: 2000,
		HorizonDays:       60,
	}
	m := mustBuild(t, input.Request(0.5))
	res := m.Solve(0)

	alerts := ComputeAlerts(res.Schedule, input.Buckets, AlertConfig{
		Policy:            models.AlertPolicyRationFraction,
		Population:        input.Population,
		FullDailyCalories: input.CaloriesPerPerson,
		Horizon:           input.HorizonDays,
	})

	// Half rations draw 50000/day, so 350000 of the beans are left at the cutoff
	dayOf := alerts[5]
	if len(dayOf) != 1 {
		t.Fatalf("Expected one day-of alert, got %v", dayOf)
	}
	if dayOf[0].ExtraCalories != 350_000 {
		t.Errorf("Expected 350000 extra calories, got %f", dayOf[0].ExtraCalories)
	}
	if dayOf[0].ExtraFullRations != 3.5 {
		t.Errorf("Expected 3.5 full rations, got %f", dayOf[0].ExtraFullRations)
	}
}

func TestComputeAlerts_PerPersonUnits(t *testing.T) {
	schedule := []models.DayRecord{
		{Day: 1, Survived: true, PerBucketDraw: map[string]float64{"rice": 3000}, TotalDraw: 3000},
		{Day: 2, Survived: true, PerBucketDraw: map[string]float64{"rice": 0}, TotalDraw: 0},
	}
	buckets := []models.Bucket{
		{Name: "rice", TotalCalories: 8000, ExpiryDay: 2, CaloriesPerUnit: 200},
	}

	alerts := ComputeAlerts(schedule, buckets, AlertConfig{
		Policy:            models.AlertPolicyPerPersonUnits,
		Population:        4,
		FullDailyCalories: 2000,
		Horizon:           10,
	})

	if len(alerts) != 1 {
		t.Fatalf("Expected alerts on one day only, got %v", alerts)
	}
	got := alerts[2]
	if len(got) != 1 || got[0].Kind != models.AlertExpiresToday {
		t.Fatalf("Expected a single day-of alert, got %v", got)
	}
	// 5000 extra calories = 25 units; 6 each for 4 people leaves 1 unit over
	if got[0].ExtraCalories != 5000 {
		t.Errorf("Expected 5000 extra calories, got %f", got[0].ExtraCalories)
	}
	if got[0].ExtraUnitsPerPerson != 6 {
		t.Errorf("Expected 6 units per person, got %d", got[0].ExtraUnitsPerPerson)
	}
	if got[0].RemainderUnits != 1 {
		t.Errorf("Expected 1 unit remainder, got %f", got[0].RemainderUnits)
	}
}

func TestComputeAlerts_SkipsImmaterialAndConsumed(t *testing.T) {
	schedule := []models.DayRecord{
		{Day: 1, Survived: true, PerBucketDraw: map[string]float64{"crumbs": 99.5, "eaten": 1000}, TotalDraw: 1099.5},
	}
	buckets := []models.Bucket{
		{Name: "crumbs", TotalCalories: 100, ExpiryDay: 1}, // 0.5 calories left, immaterial
		{Name: "eaten", TotalCalories: 1000, ExpiryDay: 1}, // fully consumed
		{Name: "keeps", TotalCalories: 5000},               // never expires
	}

	alerts := ComputeAlerts(schedule, buckets, AlertConfig{
		Policy:            models.AlertPolicyRationFraction,
		Population:        2,
		FullDailyCalories: 2000,
		Horizon:           10,
	})

	if len(alerts) != 0 {
		t.Errorf("Expected no alerts, got %v", alerts)
	}
}

func TestComputeAlerts_FirstDayExpiryHasNoDayBefore(t *testing.T) {
	buckets := []models.Bucket{
		{Name: "milk", TotalCalories: 400, ExpiryDay: 1},
	}

	alerts := ComputeAlerts([]models.DayRecord{}, buckets, AlertConfig{
		Policy:            models.AlertPolicyRationFraction,
		Population:        2,
		FullDailyCalories: 2000,
		Horizon:           10,
	})

	if len(alerts) != 1 || len(alerts[1]) != 1 {
		t.Fatalf("Expected only a day-1 alert, got %v", alerts)
	}
	if alerts[1][0].Kind != models.AlertExpiresToday {
		t.Errorf("Expected ExpiresToday, got %s", alerts[1][0].Kind)
	}
}

func TestComputeAlerts_IgnoresCutoffPastHorizon(t *testing.T) {
	buckets := []models.Bucket{
		{Name: "tins", TotalCalories: 90_000, ExpiryDay: 400},
	}

	alerts := ComputeAlerts([]models.DayRecord{}, buckets, AlertConfig{
		Policy:            models.AlertPolicyRationFraction,
		Population:        50,
		FullDailyCalories: 2000,
		Horizon:           60,
	})

	if len(alerts) != 0 {
		t.Errorf("Expected no alerts for a cutoff past the horizon, got %v", alerts)
	}
}
