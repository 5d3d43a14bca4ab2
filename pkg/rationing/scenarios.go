package rationing

import (
	"sync"
	"time"

	"github.com/arnavshah/rations-api-go/pkg/models"
)

// DefaultScenarios returns the standard ration portfolio evaluated per inventory
func DefaultScenarios() []models.RationScenario {
	return []models.RationScenario{
		{Label: "Full", Fraction: 1.0},
		{Label: "7/8", Fraction: 0.875},
		{Label: "3/4", Fraction: 0.75},
		{Label: "1/2", Fraction: 0.5},
	}
}

// Validate checks a portfolio input without solving anything. A nil return
// means every scenario request would pass model validation.
func Validate(input models.SolveInput) error {
	if err := validateRequest(input.Request(1)); err != nil {
		return err
	}

	seen := make(map[string]bool, len(input.Scenarios))
	for _, sc := range input.Scenarios {
		if sc.Label == "" {
			return validationErrorf("scenario label must not be empty")
		}
		if seen[sc.Label] {
			return validationErrorf("duplicate scenario label: %s", sc.Label)
		}
		seen[sc.Label] = true
		if sc.Fraction <= 0 || !isFinite(sc.Fraction) {
			return validationErrorf("scenario %s: fraction must be a positive finite number, got %v", sc.Label, sc.Fraction)
		}
	}

	switch input.AlertPolicy {
	case "", models.AlertPolicyPerPersonUnits, models.AlertPolicyRationFraction:
	default:
		return validationErrorf("unknown alert_policy: %s", input.AlertPolicy)
	}
	return nil
}

// SolvePortfolio validates the input once, then solves every ration scenario
// concurrently and returns the results keyed by scenario label. Scenarios
// share nothing but read-only access to the catalog, so each goroutine writes
// only its own slot. The timeout applies to each scenario separately.
func SolvePortfolio(input models.SolveInput, timeout time.Duration) (map[string]models.ScenarioResult, error) {
	if err := Validate(input); err != nil {
		return nil, err
	}

	scenarios := input.Scenarios
	if len(scenarios) == 0 {
		scenarios = DefaultScenarios()
	}
	policy := input.AlertPolicy
	if policy == "" {
		policy = models.AlertPolicyRationFraction
	}

	results := make([]models.ScenarioResult, len(scenarios))
	var wg sync.WaitGroup
	for i, sc := range scenarios {
		wg.Add(1)
		go func(i int, sc models.RationScenario) {
			defer wg.Done()
			results[i] = solveScenario(input, sc, policy, timeout)
		}(i, sc)
	}
	wg.Wait()

	byLabel := make(map[string]models.ScenarioResult, len(results))
	for _, res := range results {
		byLabel[res.Label] = res
	}
	return byLabel, nil
}

func solveScenario(input models.SolveInput, sc models.RationScenario, policy models.AlertPolicy, timeout time.Duration) models.ScenarioResult {
	out := models.ScenarioResult{
		Label:    sc.Label,
		Fraction: sc.Fraction,
		Alerts:   map[int][]models.Alert{},
	}

	m, err := BuildModel(input.Request(sc.Fraction))
	if err != nil {
		out.Result = emptyResult(models.StatusNotSolved)
		return out
	}
	out.Result = m.Solve(timeout)

	// An abandoned solve has no schedule worth alerting on; an infeasible one
	// does: everything expiring is at risk.
	if out.Result.Status != models.StatusNotSolved {
		out.Alerts = ComputeAlerts(out.Result.Schedule, input.Buckets, AlertConfig{
			Policy:            policy,
			Population:        input.Population,
			FullDailyCalories: input.CaloriesPerPerson,
			Horizon:           input.HorizonDays,
		})
	}
	return out
}
