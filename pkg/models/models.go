package models

// SolveStatus reports how a solve attempt ended
type SolveStatus string

const (
	StatusOptimal    SolveStatus = "Optimal"
	StatusFeasible   SolveStatus = "Feasible"
	StatusInfeasible SolveStatus = "Infeasible"
	StatusUnbounded  SolveStatus = "Unbounded"
	StatusNotSolved  SolveStatus = "NotSolved"
)

// AlertKind distinguishes day-of from day-before expiry alerts
type AlertKind string

const (
	AlertExpiresToday    AlertKind = "ExpiresToday"
	AlertExpiresTomorrow AlertKind = "ExpiresTomorrow"
)

// AlertPolicy selects how expiry alerts are expressed
type AlertPolicy string

const (
	// AlertPolicyPerPersonUnits emits one alert on the expiry day, in whole
	// food units per person plus a remainder.
	AlertPolicyPerPersonUnits AlertPolicy = "per_person_units"
	// AlertPolicyRationFraction emits a day-before and a day-of alert, both
	// as a fraction of one full daily ration.
	AlertPolicyRationFraction AlertPolicy = "ration_fraction"
)

// Bucket is a named food source with total calories and an optional expiry day
type Bucket struct {
	Name            string  `json:"name"`
	TotalCalories   float64 `json:"total_calories"`
	ExpiryDay       int     `json:"expiry_day,omitempty"`        // 0 = never expires
	CaloriesPerUnit float64 `json:"calories_per_unit,omitempty"` // for unit-based alerts, defaults to 1
}

// AllocationRequest describes a single solve: one catalog, one ration level
type AllocationRequest struct {
	Buckets           []Bucket `json:"buckets"`
	Population        int      `json:"population"`
	CaloriesPerPerson float64  `json:"daily_calories_per_person"`
	HorizonDays       int      `json:"horizon_days"`
	EnforceExactDraw  bool     `json:"enforce_exact_draw"`
}

// DayRecord is one row of the consumption schedule
type DayRecord struct {
	Day           int                `json:"day"`
	Survived      bool               `json:"survived"`
	PerBucketDraw map[string]float64 `json:"per_bucket_draw"`
	TotalDraw     float64            `json:"total_draw"`
}

// DayWaste records the calories lost on one day, split by bucket
type DayWaste struct {
	Day            int                `json:"day"`
	WasteTotal     float64            `json:"waste_total"`
	PerBucketWaste map[string]float64 `json:"per_bucket_waste"`
}

// AllocationResult is the full outcome of one solve
type AllocationResult struct {
	Status             SolveStatus        `json:"status"`
	MaxDays            int                `json:"max_days"`
	Schedule           []DayRecord        `json:"schedule"`
	WasteByDay         []DayWaste         `json:"waste_by_day"`
	TotalWasteByBucket map[string]float64 `json:"total_waste_by_bucket"`
}

// Alert warns that an expiring bucket will not be fully consumed
type Alert struct {
	Bucket              string    `json:"bucket"`
	ExpiresDay          int       `json:"expires_day"`
	Kind                AlertKind `json:"kind"`
	ExtraCalories       float64   `json:"extra_calories"`
	ExtraFullRations    float64   `json:"extra_full_rations,omitempty"`
	ExtraUnitsPerPerson int       `json:"extra_units_per_person,omitempty"`
	RemainderUnits      float64   `json:"remainder_units,omitempty"`
}

// RationScenario is one ration level to evaluate, as a fraction of the full target
type RationScenario struct {
	Label    string  `json:"label"`
	Fraction float64 `json:"fraction"`
}

// SolveInput is the data structure for the solve endpoint
type SolveInput struct {
	Buckets           []Bucket         `json:"buckets"`
	Population        int              `json:"population"`
	CaloriesPerPerson float64          `json:"daily_calories_per_person"`
	HorizonDays       int              `json:"horizon_days"`
	EnforceExactDraw  bool             `json:"enforce_exact_draw"`
	Scenarios         []RationScenario `json:"scenarios,omitempty"`    // defaults to the standard portfolio
	AlertPolicy       AlertPolicy      `json:"alert_policy,omitempty"` // defaults to ration_fraction
}

// ScenarioResult pairs one scenario with its solve outcome and alerts
type ScenarioResult struct {
	Label    string           `json:"label"`
	Fraction float64          `json:"fraction"`
	Result   AllocationResult `json:"result"`
	Alerts   map[int][]Alert  `json:"alerts"` // keyed by the day the alert concerns
}

// SolveResponse is the data structure for the solve result
type SolveResponse struct {
	RunID   string                    `json:"run_id"`
	Results map[string]ScenarioResult `json:"results"` // keyed by scenario label
}

// Request builds the single-scenario request for one ration fraction
func (in SolveInput) Request(fraction float64) AllocationRequest {
	return AllocationRequest{
		Buckets:           in.Buckets,
		Population:        in.Population,
		CaloriesPerPerson: in.CaloriesPerPerson * fraction,
		HorizonDays:       in.HorizonDays,
		EnforceExactDraw:  in.EnforceExactDraw,
	}
}
