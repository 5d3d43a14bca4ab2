package rationing

import (
	"time"

	"github.com/arnavshah/rations-api-go/pkg/models"
)

// epsilon is the single tolerance applied when comparing solver quantities
const epsilon = 1e-6

// FeasiblePrefix reports whether days 1..k can all be fully fed under the
// capacity and expiry constraints. For every day s in the prefix, the calories
// still usable on or after s must cover the k-s+1 remaining days; only s = 1
// and the day after each expiry cutoff can bind, so only those are checked.
func (m *Model) FeasiblePrefix(k int) bool {
	if k <= 0 {
		return true
	}
	if k > m.Horizon {
		return false
	}

	if m.availableFrom(1)+epsilon < float64(k)*m.DailyNeed {
		return false
	}
	for _, expiry := range m.expiries {
		s := expiry + 1
		if s > k {
			break
		}
		if m.availableFrom(s)+epsilon < float64(k-s+1)*m.DailyNeed {
			return false
		}
	}
	return true
}

// Solve binary-searches the largest feasible prefix length and extracts the
// consumption schedule, waste accounting, and totals for it. FeasiblePrefix is
// monotone in k, so the search needs O(log H) probes. A positive timeout is a
// wall-clock budget checked between probes; exceeding it yields NotSolved.
func (m *Model) Solve(timeout time.Duration) models.AllocationResult {
	if !isFinite(m.DailyNeed) || !isFinite(m.availableFrom(1)) {
		return emptyResult(models.StatusNotSolved)
	}

	start := time.Now()
	lo, hi := 0, m.Horizon
	for lo < hi {
		if timeout > 0 && time.Since(start) > timeout {
			return emptyResult(models.StatusNotSolved)
		}
		mid := (lo + hi + 1) / 2
		if m.FeasiblePrefix(mid) {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	maxDays := lo

	// k = 0 is always feasible; reaching it means not even day 1 can be fed
	if maxDays == 0 {
		return emptyResult(models.StatusInfeasible)
	}

	schedule := m.ExtractSchedule(maxDays)
	wasteByDay, totalWaste := m.Waste(schedule)

	return models.AllocationResult{
		Status:             models.StatusOptimal,
		MaxDays:            maxDays,
		Schedule:           schedule,
		WasteByDay:         wasteByDay,
		TotalWasteByBucket: totalWaste,
	}
}

func emptyResult(status models.SolveStatus) models.AllocationResult {
	return models.AllocationResult{
		Status:             status,
		Schedule:           []models.DayRecord{},
		WasteByDay:         []models.DayWaste{},
		TotalWasteByBucket: map[string]float64{},
	}
}
