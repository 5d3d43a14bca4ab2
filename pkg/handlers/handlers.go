package handlers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/arnavshah/rations-api-go/internal/config"
	"github.com/arnavshah/rations-api-go/pkg/auth"
	"github.com/arnavshah/rations-api-go/pkg/database"
	"github.com/arnavshah/rations-api-go/pkg/models"
	"github.com/arnavshah/rations-api-go/pkg/rationing"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Handler contains dependencies for the route handlers
type Handler struct {
	DB  *gorm.DB
	Cfg config.Config
}

// AuthMiddleware verifies the JWT token for admin routes
func (h *Handler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("Authorization")
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		// Strip "Bearer " if present
		if len(token) > 7 && token[:7] == "Bearer " {
			token = token[7:]
		}

		claims, err := auth.VerifyToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}

		c.Set("username", claims.Username)
		c.Next()
	}
}

// APIKeyMiddleware verifies the API key for solver routes using HMAC
func (h *Handler) APIKeyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader("Authorization")
		if key == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "API Key required"})
			c.Abort()
			return
		}

		if len(key) > 7 && key[:7] == "Bearer " {
			key = key[7:]
		}

		userID, err := auth.VerifyHMACKey(key)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid API Key signature"})
			c.Abort()
			return
		}

		// Fetch or create the key record to track usage
		var apiKey database.APIKey
		h.DB.Where(database.APIKey{Key: key}).FirstOrCreate(&apiKey, database.APIKey{
			Key:       key,
			Name:      userID,
			RateLimit: 10000,
		})

		now := time.Now()
		apiKey.LastUsed = &now
		h.DB.Model(&apiKey).Update("last_used", now)

		c.Set("apiKey", &apiKey)
		c.Set("userID", userID)
		c.Next()
	}
}

// SolveJSON handles the JSON-based allocation request. Every ration scenario
// in the request (or the default portfolio) is solved and returned keyed by
// its label.
func (h *Handler) SolveJSON(c *gin.Context) {
	var input models.SolveInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if h.Cfg.MaxHorizon > 0 && input.HorizonDays > h.Cfg.MaxHorizon {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("horizon_days above the server limit of %d", h.Cfg.MaxHorizon)})
		return
	}

	results, err := rationing.SolvePortfolio(input, h.Cfg.SolveTimeout)
	if err != nil {
		var vErr *rationing.ValidationError
		if errors.As(err, &vErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Msg})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// Record usage
	h.RecordUsage(c, len(results), len(input.Buckets))

	c.JSON(http.StatusOK, models.SolveResponse{
		RunID:   uuid.New().String(),
		Results: results,
	})
}

// RecordUsage records API usage in the database using an efficient upsert
func (h *Handler) RecordUsage(c *gin.Context, scenarioCount, bucketCount int) {
	apiKeyRaw, exists := c.Get("apiKey")
	if !exists {
		return
	}
	apiKey := apiKeyRaw.(*database.APIKey)

	today := time.Now().Format("2006-01-02")

	// Use OnConflict for a single-query upsert (supported by both Postgres and SQLite)
	h.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key_id"}, {Name: "date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"request_count":   gorm.Expr("request_count + ?", 1),
			"total_scenarios": gorm.Expr("total_scenarios + ?", scenarioCount),
			"total_buckets":   gorm.Expr("total_buckets + ?", bucketCount),
		}),
	}).Create(&database.APIUsage{
		KeyID:          apiKey.ID,
		Date:           today,
		RequestCount:   1,
		TotalScenarios: scenarioCount,
		TotalBuckets:   bucketCount,
	})
}

// SolveCSV handles CSV inventory uploads. Rows are the raw inventory format
// (name, calories_per_unit, units, expiry_days with 0 meaning never); the
// full-ration schedule comes back as CSV.
func (h *Handler) SolveCSV(c *gin.Context) {
	invFile, _ := c.FormFile("inventory_file")
	if invFile == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "inventory_file is required"})
		return
	}

	f, err := invFile.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open inventory file"})
		return
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read inventory header"})
		return
	}
	cols := make(map[string]int)
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{"name", "calories_per_unit", "units", "expiry_days"} {
		if _, ok := cols[required]; !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "inventory_file is missing column: " + required})
			return
		}
	}

	var buckets []models.Bucket
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		calPerUnit, _ := strconv.ParseFloat(strings.TrimSpace(record[cols["calories_per_unit"]]), 64)
		units, _ := strconv.ParseFloat(strings.TrimSpace(record[cols["units"]]), 64)
		expiry, _ := strconv.Atoi(strings.TrimSpace(record[cols["expiry_days"]]))

		buckets = append(buckets, models.Bucket{
			Name:            strings.TrimSpace(record[cols["name"]]),
			TotalCalories:   calPerUnit * units,
			ExpiryDay:       expiry,
			CaloriesPerUnit: calPerUnit,
		})
	}

	population, err := strconv.Atoi(c.DefaultPostForm("population", "50"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "population must be an integer"})
		return
	}
	calPerPerson, err := strconv.ParseFloat(c.DefaultPostForm("daily_calories_per_person", "2000"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "daily_calories_per_person must be a number"})
		return
	}
	horizon, err := strconv.Atoi(c.DefaultPostForm("horizon_days", "60"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "horizon_days must be an integer"})
		return
	}
	exactDraw, _ := strconv.ParseBool(c.DefaultPostForm("enforce_exact_draw", "false"))

	if h.Cfg.MaxHorizon > 0 && horizon > h.Cfg.MaxHorizon {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("horizon_days above the server limit of %d", h.Cfg.MaxHorizon)})
		return
	}

	input := models.SolveInput{
		Buckets:           buckets,
		Population:        population,
		CaloriesPerPerson: calPerPerson,
		HorizonDays:       horizon,
		EnforceExactDraw:  exactDraw,
		Scenarios:         []models.RationScenario{{Label: "Full", Fraction: 1.0}},
	}

	results, err := rationing.SolvePortfolio(input, h.Cfg.SolveTimeout)
	if err != nil {
		var vErr *rationing.ValidationError
		if errors.As(err, &vErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Msg})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	full := results["Full"]

	// Record usage
	h.RecordUsage(c, len(results), len(buckets))

	// Export the day-by-day schedule as CSV
	var outCSV strings.Builder
	writer := csv.NewWriter(&outCSV)

	headerRow := []string{"day", "survived"}
	for _, b := range buckets {
		headerRow = append(headerRow, b.Name)
	}
	headerRow = append(headerRow, "total")
	writer.Write(headerRow)

	for _, rec := range full.Result.Schedule {
		row := []string{
			strconv.Itoa(rec.Day),
			strconv.FormatBool(rec.Survived),
		}
		for _, b := range buckets {
			row = append(row, fmt.Sprintf("%.1f", rec.PerBucketDraw[b.Name]))
		}
		row = append(row, fmt.Sprintf("%.1f", rec.TotalDraw))
		writer.Write(row)
	}
	writer.Flush()

	c.JSON(http.StatusOK, gin.H{
		"run_id":   uuid.New().String(),
		"status":   full.Result.Status,
		"max_days": full.Result.MaxDays,
		"csv":      outCSV.String(),
	})
}

// Login handles admin login
func (h *Handler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user database.MasterUser
	if err := h.DB.Where("username = ?", req.Username).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := auth.CreateToken(user.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"access_token": token, "token_type": "bearer"})
}

// GenerateKey creates a new API key using the HMAC strategy
func (h *Handler) GenerateKey(c *gin.Context) {
	var req struct {
		Name      string `json:"name"`
		RateLimit int    `json:"rate_limit"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	if req.RateLimit == 0 {
		req.RateLimit = 10000
	}

	// Generate key using HMAC
	key := auth.GenerateHMACKey(req.Name)

	// Create preview (e.g., abc...a1b2)
	preview := ""
	if len(key) > 8 {
		preview = key[:3] + "..." + key[len(key)-4:]
	} else {
		preview = "****"
	}

	apiKey := database.APIKey{
		Key:        key,
		Name:       req.Name,
		KeyPreview: preview,
		RateLimit:  req.RateLimit,
	}

	if err := h.DB.Create(&apiKey).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create key record"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"name": req.Name,
		"key":  key,
	})
}

// ListKeys returns all API keys
func (h *Handler) ListKeys(c *gin.Context) {
	var keys []database.APIKey
	h.DB.Find(&keys)
	c.JSON(http.StatusOK, gin.H{"keys": keys})
}

// RevokeKey deletes an API key
func (h *Handler) RevokeKey(c *gin.Context) {
	id := c.Param("id")
	if err := h.DB.Delete(&database.APIKey{}, id).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not delete key"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Key revoked"})
}

// UpdateKeyLimit updates the rate limit for a key
func (h *Handler) UpdateKeyLimit(c *gin.Context) {
	id := c.Param("id")
	var req struct {
		RateLimit int `json:"rate_limit" form:"rate_limit"`
	}

	// Try JSON first, then Form/Query
	if err := c.ShouldBindJSON(&req); err != nil {
		if err := c.ShouldBindQuery(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "rate_limit is required"})
			return
		}
	}

	if req.RateLimit == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid rate limit"})
		return
	}

	if err := h.DB.Model(&database.APIKey{}).Where("id = ?", id).Update("rate_limit", req.RateLimit).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not update key limit"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Rate limit updated successfully"})
}

// GetUsage returns usage stats for a key
func (h *Handler) GetUsage(c *gin.Context) {
	id := c.Param("id")
	var usage []database.APIUsage
	h.DB.Where("key_id = ?", id).Order("date desc").Limit(30).Find(&usage)
	c.JSON(http.StatusOK, gin.H{"usage": usage})
}
