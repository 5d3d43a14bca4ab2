package rationing

import (
	"fmt"
	"math"
	"sort"

	"github.com/arnavshah/rations-api-go/pkg/models"
)

// ValidationError reports a malformed request, detected before any solve
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func validationErrorf(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// Model is the constraint system built from one allocation request: per-day
// demand, per-bucket capacity, and per-bucket expiry cutoffs over the horizon
type Model struct {
	Buckets           []models.Bucket
	Population        int
	CaloriesPerPerson float64
	Horizon           int
	ExactDraw         bool // schedules draw exactly the daily need, which satisfies both draw modes
	DailyNeed         float64

	expiries   []int     // distinct expiry days inside the horizon, ascending
	suffixCals []float64 // suffixCals[i] = calories expiring on or after expiries[i]
	neverCals  float64   // calories that never expire within the horizon
}

// BuildModel validates a request and prepares the constraint system for it
func BuildModel(req models.AllocationRequest) (*Model, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	m := &Model{
		Buckets:           req.Buckets,
		Population:        req.Population,
		CaloriesPerPerson: req.CaloriesPerPerson,
		Horizon:           req.HorizonDays,
		ExactDraw:         req.EnforceExactDraw,
		DailyNeed:         float64(req.Population) * req.CaloriesPerPerson,
	}
	m.indexExpiries()
	return m, nil
}

func validateRequest(req models.AllocationRequest) error {
	if req.Population <= 0 {
		return validationErrorf("population must be positive, got %d", req.Population)
	}
	if req.CaloriesPerPerson <= 0 || !isFinite(req.CaloriesPerPerson) {
		return validationErrorf("daily_calories_per_person must be a positive finite number, got %v", req.CaloriesPerPerson)
	}
	if req.HorizonDays <= 0 {
		return validationErrorf("horizon_days must be positive, got %d", req.HorizonDays)
	}

	seen := make(map[string]bool, len(req.Buckets))
	for _, b := range req.Buckets {
		if b.Name == "" {
			return validationErrorf("bucket name must not be empty")
		}
		if seen[b.Name] {
			return validationErrorf("duplicate bucket name: %s", b.Name)
		}
		seen[b.Name] = true

		if b.TotalCalories < 0 || !isFinite(b.TotalCalories) {
			return validationErrorf("bucket %s: total_calories must be a non-negative finite number, got %v", b.Name, b.TotalCalories)
		}
		if b.ExpiryDay < 0 {
			return validationErrorf("bucket %s: expiry_day must not be negative, got %d", b.Name, b.ExpiryDay)
		}
		if b.CaloriesPerUnit < 0 || !isFinite(b.CaloriesPerUnit) {
			return validationErrorf("bucket %s: calories_per_unit must be a non-negative finite number, got %v", b.Name, b.CaloriesPerUnit)
		}
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// expiresWithinHorizon reports whether the bucket has a cutoff inside the
// modeled horizon. Cutoffs past the horizon behave as never-expiring.
func (m *Model) expiresWithinHorizon(b models.Bucket) bool {
	return b.ExpiryDay > 0 && b.ExpiryDay <= m.Horizon
}

func (m *Model) indexExpiries() {
	calsByExpiry := make(map[int]float64)
	for _, b := range m.Buckets {
		if m.expiresWithinHorizon(b) {
			calsByExpiry[b.ExpiryDay] += b.TotalCalories
		} else {
			m.neverCals += b.TotalCalories
		}
	}

	m.expiries = make([]int, 0, len(calsByExpiry))
	for day := range calsByExpiry {
		m.expiries = append(m.expiries, day)
	}
	sort.Ints(m.expiries)

	m.suffixCals = make([]float64, len(m.expiries)+1)
	for i := len(m.expiries) - 1; i >= 0; i-- {
		m.suffixCals[i] = m.suffixCals[i+1] + calsByExpiry[m.expiries[i]]
	}
}

// availableFrom returns the calories still usable on or after day s
func (m *Model) availableFrom(s int) float64 {
	i := sort.SearchInts(m.expiries, s)
	return m.neverCals + m.suffixCals[i]
}
