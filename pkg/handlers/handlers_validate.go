package handlers

import (
	"net/http"

	"github.com/arnavshah/rations-api-go/pkg/models"
	"github.com/arnavshah/rations-api-go/pkg/rationing"
	"github.com/gin-gonic/gin"
)

// ValidateInput handles the JSON-based validation request. Malformed JSON is
// a 400; data problems come back as 200 with valid=false so the caller can
// show them inline.
func (h *Handler) ValidateInput(c *gin.Context) {
	var input models.SolveInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"valid": false,
			"error": err.Error(),
		})
		return
	}

	// An empty catalog solves fine (to zero days) but is almost always an
	// upload mistake, so flag it here
	if len(input.Buckets) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"valid": false,
			"error": "At least one bucket is required",
		})
		return
	}

	if err := rationing.Validate(input); err != nil {
		c.JSON(http.StatusOK, gin.H{
			"valid": false,
			"error": err.Error(),
		})
		return
	}

	scenarioCount := len(input.Scenarios)
	if scenarioCount == 0 {
		scenarioCount = len(rationing.DefaultScenarios())
	}

	var totalCalories float64
	for _, b := range input.Buckets {
		totalCalories += b.TotalCalories
	}

	c.JSON(http.StatusOK, gin.H{
		"valid": true,
		"stats": gin.H{
			"bucket_count":      len(input.Buckets),
			"scenario_count":    scenarioCount,
			"total_calories":    totalCalories,
			"daily_requirement": float64(input.Population) * input.CaloriesPerPerson,
		},
	})
}
