package handler

import (
	"net/http"
	"strconv"
	"time"

	"garden-service/internal/middleware"
	"garden-service/internal/model"
	"garden-service/pkg/database"
	"garden-service/pkg/jwtutil"
	"garden-service/pkg/logger"
	"garden-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// QuoteContactInfo defines the contact section of a quote request
type QuoteContactInfo struct {
	FullName      string `json:"fullName" validate:"required"`
	Phone         string `json:"phone" validate:"required"`
	Email         string `json:"email" validate:"omitempty,email"`
	Division      string `json:"division" validate:"required"`
	District      string `json:"district" validate:"required"`
	Area          string `json:"area" validate:"required"`
	Address       string `json:"address" validate:"required"`
	PostalCode    string `json:"postalCode"`
	ContactMethod string `json:"contactMethod" validate:"omitempty,oneof=WhatsApp Phone Email"`
}

// QuoteRequestBody defines the structure for quote request creation
type QuoteRequestBody struct {
	Plant       model.PlantDescriptor `json:"plant"`
	Supplies    []model.SupplyItem    `json:"supplies"`
	ContactInfo QuoteContactInfo      `json:"contactInfo"`
	Notes       string                `json:"notes"`
}

// requesterID resolves the optional bearer token of a quote request. Quote
// creation is open to anonymous requesters, so a missing or invalid token is
// not an error.
func requesterID(c echo.Context) *uint {
	token, ok := middleware.BearerToken(c)
	if !ok {
		return nil
	}
	claims, err := jwtutil.ValidateToken(token)
	if err != nil {
		return nil
	}
	return &claims.UserID
}

// CreateQuoteRequest records a supply-sourcing inquiry. The tracking id is
// generated once here; the status always starts at pending regardless of
// caller input.
func CreateQuoteRequest(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordOperation("quote", "create")

	var req QuoteRequestBody
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "Invalid request data"})
	}

	if err := c.Validate(&req); err != nil {
		log.Error("Quote validation failed", zap.Error(err))
		prometheus.RecordValidationError("quote")
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "fullName, phone, division, district, area and address are required"})
	}

	if req.Plant.Name == "" {
		prometheus.RecordValidationError("quote")
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "Plant name is required"})
	}

	if !model.IsValidBangladeshPhone(req.ContactInfo.Phone) {
		log.Error("Invalid phone number", zap.String("phone", req.ContactInfo.Phone))
		prometheus.RecordValidationError("quote")
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "Please provide a valid Bangladesh mobile number"})
	}

	contact := model.ContactInfo{
		FullName:      req.ContactInfo.FullName,
		Phone:         model.FormatBangladeshPhone(req.ContactInfo.Phone),
		Email:         req.ContactInfo.Email,
		Division:      req.ContactInfo.Division,
		District:      req.ContactInfo.District,
		Area:          req.ContactInfo.Area,
		Address:       req.ContactInfo.Address,
		PostalCode:    req.ContactInfo.PostalCode,
		ContactMethod: req.ContactInfo.ContactMethod,
	}
	if contact.ContactMethod == "" {
		contact.ContactMethod = "WhatsApp"
	}

	supplies := req.Supplies
	for i := range supplies {
		if supplies[i].Quantity < 1 {
			supplies[i].Quantity = 1
		}
	}

	quote := model.QuoteRequest{
		UserID:      requesterID(c),
		Plant:       datatypes.NewJSONType(req.Plant),
		Supplies:    datatypes.NewJSONSlice(supplies),
		ContactInfo: datatypes.NewJSONType(contact),
		Notes:       req.Notes,
		Status:      model.QuotePending,
	}
	quote.EnsureRequestID(time.Now())

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := database.GetDB().Create(&quote); result.Error != nil {
		log.Error("Failed to create quote request", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "Failed to create quote request"})
	}

	log.Info("Quote request created",
		zap.String("request_id", quote.RequestID),
		zap.String("plant", req.Plant.Name))
	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"message": "Quote request submitted successfully",
		"quote":   quote,
	})
}

// GetMyQuoteRequests returns the caller's quote requests, newest first
func GetMyQuoteRequests(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordOperation("quote", "list")

	userID, ok := currentUserID(c)
	if !ok {
		log.Error("Failed to get user ID from context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "authentication required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var quotes []model.QuoteRequest
	result := database.GetDB().
		Scopes(model.OwnedBy(userID)).
		Order("created_at desc").
		Find(&quotes)
	if result.Error != nil {
		log.Error("Failed to retrieve quote requests", zap.Uint("user_id", userID), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "Failed to fetch quote requests"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"count":   len(quotes),
		"quotes":  quotes,
	})
}

// GetQuoteRequestByID returns one quote request owned by the caller
func GetQuoteRequestByID(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordOperation("quote", "get")

	userID, ok := currentUserID(c)
	if !ok {
		log.Error("Failed to get user ID from context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "authentication required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Error("Invalid quote request ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "Invalid quote request ID"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var quote model.QuoteRequest
	result := database.GetDB().Scopes(model.OwnedBy(userID)).First(&quote, id)
	if result.Error != nil {
		log.Warn("Quote request not found or not owned by caller", zap.Uint64("quote_id", id), zap.Uint("user_id", userID))
		return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "Quote request not found"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"quote":   quote,
	})
}
