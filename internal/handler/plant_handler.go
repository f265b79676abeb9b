package handler

import (
	"net/http"
	"strconv"
	"time"

	"garden-service/internal/model"
	"garden-service/pkg/database"
	"garden-service/pkg/logger"
	"garden-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// PlantRequest defines the structure for plant creation
type PlantRequest struct {
	Name                string              `json:"name" validate:"required"`
	Type                string              `json:"type" validate:"required,oneof=Herb Vegetable Fruit Flower Other"`
	Variety             string              `json:"variety"`
	Image               string              `json:"image"`
	PlantedDate         *time.Time          `json:"plantedDate"`
	ExpectedHarvestDate *time.Time          `json:"expectedHarvestDate"`
	Health              *int                `json:"health"`
	Status              string              `json:"status" validate:"omitempty,oneof=healthy attention sick harvested dead"`
	Location            string              `json:"location"`
	CareSchedule        *model.CareSchedule `json:"careSchedule"`
}

// PlantUpdateRequest carries the caller-updatable plant fields; nil fields
// are left untouched. Owner, id, isActive and daysGrowing are system-managed
// and never bound from the body.
type PlantUpdateRequest struct {
	Name                *string    `json:"name"`
	Type                *string    `json:"type" validate:"omitempty,oneof=Herb Vegetable Fruit Flower Other"`
	Variety             *string    `json:"variety"`
	Image               *string    `json:"image"`
	PlantedDate         *time.Time `json:"plantedDate"`
	ExpectedHarvestDate *time.Time `json:"expectedHarvestDate"`
	Health              *int       `json:"health"`
	Status              *string    `json:"status" validate:"omitempty,oneof=healthy attention sick harvested dead"`
	Location            *string    `json:"location"`
}

// findOwnedPlant loads an active plant scoped to its owner. Absent, inactive
// and foreign plants are indistinguishable to the caller.
func findOwnedPlant(userID uint, plantID uint64) (*model.Plant, error) {
	var plant model.Plant
	result := database.GetDB().Scopes(model.OwnedBy(userID), model.Active()).First(&plant, plantID)
	if result.Error != nil {
		return nil, result.Error
	}
	return &plant, nil
}

// GetAllPlants returns the caller's active plants, newest first
func GetAllPlants(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordOperation("plant", "list")

	userID, ok := currentUserID(c)
	if !ok {
		log.Error("Failed to get user ID from context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "authentication required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var plants []model.Plant
	result := database.GetDB().
		Scopes(model.OwnedBy(userID), model.Active()).
		Order("created_at desc").
		Find(&plants)
	if result.Error != nil {
		log.Error("Failed to retrieve plants", zap.Uint("user_id", userID), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "Failed to fetch plants"})
	}

	prometheus.UpdateActivePlants(userID, len(plants))

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"count":   len(plants),
		"plants":  plants,
	})
}

// GetPlantByID returns one active plant owned by the caller
func GetPlantByID(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordOperation("plant", "get")

	userID, ok := currentUserID(c)
	if !ok {
		log.Error("Failed to get user ID from context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "authentication required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Error("Invalid plant ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "Invalid plant ID"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	plant, err := findOwnedPlant(userID, id)
	if err != nil {
		log.Warn("Plant not found or not owned by caller", zap.Uint64("plant_id", id), zap.Uint("user_id", userID))
		return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "Plant not found"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"plant":   plant,
	})
}

// CreatePlant creates a plant owned by the caller regardless of body input
func CreatePlant(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordOperation("plant", "create")

	userID, ok := currentUserID(c)
	if !ok {
		log.Error("Failed to get user ID from context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "authentication required"})
	}

	var req PlantRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "Invalid request data"})
	}

	if err := c.Validate(&req); err != nil {
		log.Error("Plant validation failed", zap.Error(err))
		prometheus.RecordValidationError("plant")
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "Failed to create plant", "error": err.Error()})
	}

	now := time.Now()
	plant := model.Plant{
		UserID:              userID,
		Name:                req.Name,
		Type:                req.Type,
		Variety:             req.Variety,
		Image:               req.Image,
		PlantedDate:         now,
		ExpectedHarvestDate: req.ExpectedHarvestDate,
		Health:              100,
		Status:              model.PlantHealthy,
		Location:            req.Location,
		IsActive:            true,
	}
	if req.PlantedDate != nil {
		plant.PlantedDate = *req.PlantedDate
	}
	if req.Health != nil {
		plant.Health = *req.Health
	}
	if req.Status != "" {
		plant.Status = req.Status
	}
	if req.Image == "" {
		plant.Image = "🌱"
	}
	if req.Location == "" {
		plant.Location = "Garden"
	}
	if req.CareSchedule != nil {
		plant.CareSchedule = datatypes.NewJSONType(*req.CareSchedule)
	}
	plant.ClampHealth()
	plant.ComputeDaysGrowing(now)

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := database.GetDB().Create(&plant); result.Error != nil {
		log.Error("Failed to create plant", zap.Uint("user_id", userID), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "Failed to create plant"})
	}

	log.Info("Plant created",
		zap.Uint("plant_id", plant.ID),
		zap.String("name", plant.Name),
		zap.Uint("user_id", userID))
	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"message": "Plant added successfully",
		"plant":   plant,
	})
}

// UpdatePlant merges the supplied fields into an owned plant. Days growing is
// recomputed on every save, so the stored age is correct as of the last write.
func UpdatePlant(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordOperation("plant", "update")

	userID, ok := currentUserID(c)
	if !ok {
		log.Error("Failed to get user ID from context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "authentication required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Error("Invalid plant ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "Invalid plant ID"})
	}

	var req PlantUpdateRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Uint64("plant_id", id), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "Invalid request data"})
	}

	if err := c.Validate(&req); err != nil {
		log.Error("Plant validation failed", zap.Error(err))
		prometheus.RecordValidationError("plant")
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "Failed to update plant", "error": err.Error()})
	}

	plant, err := findOwnedPlant(userID, id)
	if err != nil {
		log.Warn("Plant not found for update", zap.Uint64("plant_id", id), zap.Uint("user_id", userID))
		return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "Plant not found"})
	}

	if req.Name != nil {
		plant.Name = *req.Name
	}
	if req.Type != nil {
		plant.Type = *req.Type
	}
	if req.Variety != nil {
		plant.Variety = *req.Variety
	}
	if req.Image != nil {
		plant.Image = *req.Image
	}
	if req.PlantedDate != nil {
		plant.PlantedDate = *req.PlantedDate
	}
	if req.ExpectedHarvestDate != nil {
		plant.ExpectedHarvestDate = req.ExpectedHarvestDate
	}
	if req.Health != nil {
		plant.Health = *req.Health
	}
	if req.Status != nil {
		plant.Status = *req.Status
	}
	if req.Location != nil {
		plant.Location = *req.Location
	}
	plant.ClampHealth()
	plant.ComputeDaysGrowing(time.Now())

	defer prometheus.TrackDBOperation("update")(time.Now())
	if result := database.GetDB().Save(plant); result.Error != nil {
		log.Error("Failed to update plant", zap.Uint64("plant_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "Failed to update plant"})
	}

	log.Info("Plant updated", zap.Uint("plant_id", plant.ID), zap.Uint("user_id", userID))
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Plant updated successfully",
		"plant":   plant,
	})
}

// DeletePlant soft-deletes an owned plant; notes and harvest logs stay on the
// record.
func DeletePlant(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordOperation("plant", "delete")

	userID, ok := currentUserID(c)
	if !ok {
		log.Error("Failed to get user ID from context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "authentication required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Error("Invalid plant ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "Invalid plant ID"})
	}

	plant, err := findOwnedPlant(userID, id)
	if err != nil {
		log.Warn("Plant not found for delete", zap.Uint64("plant_id", id), zap.Uint("user_id", userID))
		return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "Plant not found"})
	}

	plant.IsActive = false
	plant.ComputeDaysGrowing(time.Now())

	defer prometheus.TrackDBOperation("update")(time.Now())
	if result := database.GetDB().Save(plant); result.Error != nil {
		log.Error("Failed to delete plant", zap.Uint64("plant_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "Failed to delete plant"})
	}

	log.Info("Plant soft-deleted", zap.Uint("plant_id", plant.ID), zap.Uint("user_id", userID))
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Plant deleted successfully",
	})
}

// AddPlantNote appends a journal entry to an owned plant
func AddPlantNote(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordOperation("plant", "add_note")

	userID, ok := currentUserID(c)
	if !ok {
		log.Error("Failed to get user ID from context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "authentication required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Error("Invalid plant ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "Invalid plant ID"})
	}

	var req struct {
		Content string `json:"content" validate:"required"`
		Type    string `json:"type" validate:"omitempty,oneof=observation action issue harvest"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "Invalid request data"})
	}
	if err := c.Validate(&req); err != nil {
		prometheus.RecordValidationError("plant")
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "Failed to add note", "error": err.Error()})
	}

	plant, err := findOwnedPlant(userID, id)
	if err != nil {
		log.Warn("Plant not found for note", zap.Uint64("plant_id", id), zap.Uint("user_id", userID))
		return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "Plant not found"})
	}

	now := time.Now()
	plant.AppendNote(now, req.Content, req.Type)
	plant.ComputeDaysGrowing(now)

	defer prometheus.TrackDBOperation("update")(time.Now())
	if result := database.GetDB().Save(plant); result.Error != nil {
		log.Error("Failed to add note", zap.Uint64("plant_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "Failed to add note"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Note added successfully",
		"plant":   plant,
	})
}

// UpdateCareSchedule merges supplied care sub-objects into an owned plant's
// schedule
func UpdateCareSchedule(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordOperation("plant", "update_care")

	userID, ok := currentUserID(c)
	if !ok {
		log.Error("Failed to get user ID from context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "authentication required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Error("Invalid plant ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "Invalid plant ID"})
	}

	var req model.CareScheduleUpdate
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "Invalid request data"})
	}

	plant, err := findOwnedPlant(userID, id)
	if err != nil {
		log.Warn("Plant not found for care update", zap.Uint64("plant_id", id), zap.Uint("user_id", userID))
		return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "Plant not found"})
	}

	plant.MergeCareSchedule(req)
	plant.ComputeDaysGrowing(time.Now())

	defer prometheus.TrackDBOperation("update")(time.Now())
	if result := database.GetDB().Save(plant); result.Error != nil {
		log.Error("Failed to update care schedule", zap.Uint64("plant_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "Failed to update care schedule"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Care schedule updated successfully",
		"plant":   plant,
	})
}

// AddHarvestLog appends a harvest entry to an owned plant
func AddHarvestLog(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordOperation("plant", "add_harvest")

	userID, ok := currentUserID(c)
	if !ok {
		log.Error("Failed to get user ID from context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "authentication required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Error("Invalid plant ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "Invalid plant ID"})
	}

	var req model.HarvestEntry
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "Invalid request data"})
	}

	plant, err := findOwnedPlant(userID, id)
	if err != nil {
		log.Warn("Plant not found for harvest", zap.Uint64("plant_id", id), zap.Uint("user_id", userID))
		return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "Plant not found"})
	}

	now := time.Now()
	plant.AppendHarvest(now, req)
	plant.ComputeDaysGrowing(now)

	defer prometheus.TrackDBOperation("update")(time.Now())
	if result := database.GetDB().Save(plant); result.Error != nil {
		log.Error("Failed to add harvest log", zap.Uint64("plant_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "Failed to add harvest log"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Harvest log added successfully",
		"plant":   plant,
	})
}
