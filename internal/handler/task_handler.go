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

// TaskRequest defines the structure for task creation
type TaskRequest struct {
	Plant     *uint            `json:"plant"`
	PlantName string           `json:"plantName"`
	Task      string           `json:"task" validate:"required"`
	TaskType  string           `json:"taskType" validate:"omitempty,oneof=watering fertilizing pruning pest-control harvesting other"`
	Priority  string           `json:"priority" validate:"omitempty,oneof=low medium high"`
	Status    string           `json:"status" validate:"omitempty,oneof=pending in-progress completed cancelled"`
	DueDate   *time.Time       `json:"dueDate" validate:"required"`
	Time      string           `json:"time" validate:"omitempty,oneof=Morning Afternoon Evening Anytime"`
	Notes     string           `json:"notes"`
	Reminder  *model.Reminder  `json:"reminder"`
	Recurring *model.Recurring `json:"recurring"`
}

// TaskUpdateRequest carries the caller-updatable task fields; nil fields are
// left untouched. Owner, id and completedAt are system-managed. A plant value
// of 0 clears the plant link.
type TaskUpdateRequest struct {
	Plant     *uint            `json:"plant"`
	PlantName *string          `json:"plantName"`
	Task      *string          `json:"task"`
	TaskType  *string          `json:"taskType" validate:"omitempty,oneof=watering fertilizing pruning pest-control harvesting other"`
	Priority  *string          `json:"priority" validate:"omitempty,oneof=low medium high"`
	Status    *string          `json:"status" validate:"omitempty,oneof=pending in-progress completed cancelled"`
	DueDate   *time.Time       `json:"dueDate"`
	Time      *string          `json:"time" validate:"omitempty,oneof=Morning Afternoon Evening Anytime"`
	Notes     *string          `json:"notes"`
	Reminder  *model.Reminder  `json:"reminder"`
	Recurring *model.Recurring `json:"recurring"`
}

// dayWindow returns the inclusive whole-day window of a calendar date
func dayWindow(day time.Time) (time.Time, time.Time) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.Add(24*time.Hour - time.Millisecond)
	return start, end
}

// GetAllTasks returns the caller's tasks ordered by due date, high priority
// first on ties. Filters on status, priority and a whole-day due date are
// ANDed.
func GetAllTasks(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordOperation("task", "list")

	userID, ok := currentUserID(c)
	if !ok {
		log.Error("Failed to get user ID from context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "authentication required"})
	}

	query := database.GetDB().Scopes(model.OwnedBy(userID))

	if status := c.QueryParam("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if priority := c.QueryParam("priority"); priority != "" {
		query = query.Where("priority = ?", priority)
	}
	if date := c.QueryParam("date"); date != "" {
		day, err := time.ParseInLocation("2006-01-02", date, time.Local)
		if err != nil {
			log.Error("Invalid date filter", zap.String("date", date), zap.Error(err))
			return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "Invalid date filter"})
		}
		start, end := dayWindow(day)
		query = query.Where("due_date BETWEEN ? AND ?", start, end)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var tasks []model.Task
	result := query.
		Order("due_date asc").
		Order(model.PriorityRank + " desc").
		Find(&tasks)
	if result.Error != nil {
		log.Error("Failed to retrieve tasks", zap.Uint("user_id", userID), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "Failed to fetch tasks"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"count":   len(tasks),
		"tasks":   tasks,
	})
}

// GetTaskByID returns one task owned by the caller
func GetTaskByID(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordOperation("task", "get")

	userID, ok := currentUserID(c)
	if !ok {
		log.Error("Failed to get user ID from context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "authentication required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Error("Invalid task ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "Invalid task ID"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var task model.Task
	result := database.GetDB().Scopes(model.OwnedBy(userID)).First(&task, id)
	if result.Error != nil {
		log.Warn("Task not found or not owned by caller", zap.Uint64("task_id", id), zap.Uint("user_id", userID))
		return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "Task not found"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"task":    task,
	})
}

// CreateTask creates a task for the caller. A supplied plant reference must
// exist, be active and belong to the caller; the denormalized plant name is
// copied from it when omitted.
func CreateTask(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordOperation("task", "create")

	userID, ok := currentUserID(c)
	if !ok {
		log.Error("Failed to get user ID from context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "authentication required"})
	}

	var req TaskRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "Invalid request data"})
	}

	if err := c.Validate(&req); err != nil {
		log.Error("Task validation failed", zap.Error(err))
		prometheus.RecordValidationError("task")
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "Failed to create task", "error": err.Error()})
	}

	plantName := req.PlantName
	if req.Plant != nil {
		plant, err := findOwnedPlant(userID, uint64(*req.Plant))
		if err != nil {
			log.Warn("Linked plant not found", zap.Uint("plant_id", *req.Plant), zap.Uint("user_id", userID))
			return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "Plant not found"})
		}
		if plantName == "" {
			plantName = plant.Name
		}
	}
	if plantName == "" {
		prometheus.RecordValidationError("task")
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "plantName is required"})
	}

	task := model.Task{
		UserID:    userID,
		PlantID:   req.Plant,
		PlantName: plantName,
		Task:      req.Task,
		TaskType:  req.TaskType,
		Priority:  req.Priority,
		Status:    model.TaskPending,
		DueDate:   *req.DueDate,
		Time:      req.Time,
		Notes:     req.Notes,
	}
	if task.TaskType == "" {
		task.TaskType = "other"
	}
	if task.Priority == "" {
		task.Priority = "medium"
	}
	if task.Time == "" {
		task.Time = "Anytime"
	}
	if req.Reminder != nil {
		task.Reminder = datatypes.NewJSONType(*req.Reminder)
	} else {
		task.Reminder = datatypes.NewJSONType(model.Reminder{Enabled: true})
	}
	if req.Recurring != nil {
		task.Recurring = datatypes.NewJSONType(*req.Recurring)
	}
	if req.Status != "" && req.Status != model.TaskPending {
		task.ApplyStatus(req.Status, time.Now())
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := database.GetDB().Create(&task); result.Error != nil {
		log.Error("Failed to create task", zap.Uint("user_id", userID), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "Failed to create task"})
	}

	log.Info("Task created",
		zap.Uint("task_id", task.ID),
		zap.String("task", task.Task),
		zap.Uint("user_id", userID))
	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"message": "Task created successfully",
		"task":    task,
	})
}

// UpdateTask merges the supplied fields into an owned task. completedAt is
// stamped when the status moves into completed and cleared when it moves out,
// enforced here rather than by caller convention.
func UpdateTask(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordOperation("task", "update")

	userID, ok := currentUserID(c)
	if !ok {
		log.Error("Failed to get user ID from context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "authentication required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Error("Invalid task ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "Invalid task ID"})
	}

	var req TaskUpdateRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Uint64("task_id", id), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "Invalid request data"})
	}

	if err := c.Validate(&req); err != nil {
		log.Error("Task validation failed", zap.Error(err))
		prometheus.RecordValidationError("task")
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "Failed to update task", "error": err.Error()})
	}

	var task model.Task
	result := database.GetDB().Scopes(model.OwnedBy(userID)).First(&task, id)
	if result.Error != nil {
		log.Warn("Task not found for update", zap.Uint64("task_id", id), zap.Uint("user_id", userID))
		return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "Task not found"})
	}

	if req.Plant != nil {
		if *req.Plant == 0 {
			task.PlantID = nil
		} else {
			plant, err := findOwnedPlant(userID, uint64(*req.Plant))
			if err != nil {
				log.Warn("Linked plant not found", zap.Uint("plant_id", *req.Plant), zap.Uint("user_id", userID))
				return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "Plant not found"})
			}
			task.PlantID = req.Plant
			if req.PlantName == nil && task.PlantName == "" {
				task.PlantName = plant.Name
			}
		}
	}
	if req.PlantName != nil {
		task.PlantName = *req.PlantName
	}
	if req.Task != nil {
		task.Task = *req.Task
	}
	if req.TaskType != nil {
		task.TaskType = *req.TaskType
	}
	if req.Priority != nil {
		task.Priority = *req.Priority
	}
	if req.DueDate != nil {
		task.DueDate = *req.DueDate
	}
	if req.Time != nil {
		task.Time = *req.Time
	}
	if req.Notes != nil {
		task.Notes = *req.Notes
	}
	if req.Reminder != nil {
		task.Reminder = datatypes.NewJSONType(*req.Reminder)
	}
	if req.Recurring != nil {
		task.Recurring = datatypes.NewJSONType(*req.Recurring)
	}
	if req.Status != nil {
		task.ApplyStatus(*req.Status, time.Now())
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if result := database.GetDB().Save(&task); result.Error != nil {
		log.Error("Failed to update task", zap.Uint64("task_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "Failed to update task"})
	}

	log.Info("Task updated", zap.Uint("task_id", task.ID), zap.Uint("user_id", userID))
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Task updated successfully",
		"task":    task,
	})
}

// DeleteTask physically deletes an owned task, in contrast with the plant
// soft-delete.
func DeleteTask(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordOperation("task", "delete")

	userID, ok := currentUserID(c)
	if !ok {
		log.Error("Failed to get user ID from context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "authentication required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Error("Invalid task ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "Invalid task ID"})
	}

	var task model.Task
	result := database.GetDB().Scopes(model.OwnedBy(userID)).First(&task, id)
	if result.Error != nil {
		log.Warn("Task not found for delete", zap.Uint64("task_id", id), zap.Uint("user_id", userID))
		return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "Task not found"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if result := database.GetDB().Delete(&task); result.Error != nil {
		log.Error("Failed to delete task", zap.Uint64("task_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "Failed to delete task"})
	}

	log.Info("Task deleted", zap.Uint("task_id", task.ID), zap.Uint("user_id", userID))
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Task deleted successfully",
	})
}

// GetTasksByDateRange returns the caller's tasks due within an inclusive
// whole-day window on both ends, ordered by due date.
func GetTasksByDateRange(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordOperation("task", "list_range")

	userID, ok := currentUserID(c)
	if !ok {
		log.Error("Failed to get user ID from context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "authentication required"})
	}

	startParam := c.QueryParam("startDate")
	endParam := c.QueryParam("endDate")
	if startParam == "" || endParam == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "Start date and end date are required"})
	}

	startDay, err := time.ParseInLocation("2006-01-02", startParam, time.Local)
	if err != nil {
		log.Error("Invalid start date", zap.String("startDate", startParam), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "Invalid start date"})
	}
	endDay, err := time.ParseInLocation("2006-01-02", endParam, time.Local)
	if err != nil {
		log.Error("Invalid end date", zap.String("endDate", endParam), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "Invalid end date"})
	}

	start, _ := dayWindow(startDay)
	_, end := dayWindow(endDay)

	defer prometheus.TrackDBOperation("query")(time.Now())
	var tasks []model.Task
	result := database.GetDB().
		Scopes(model.OwnedBy(userID)).
		Where("due_date BETWEEN ? AND ?", start, end).
		Order("due_date asc").
		Find(&tasks)
	if result.Error != nil {
		log.Error("Failed to retrieve tasks by range", zap.Uint("user_id", userID), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "Failed to fetch tasks"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"count":   len(tasks),
		"tasks":   tasks,
	})
}
