package handler

import (
	"net/http"
	"strings"
	"time"

	"garden-service/internal/model"
	"garden-service/pkg/database"
	"garden-service/pkg/jwtutil"
	"garden-service/pkg/logger"
	"garden-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
)

// RegisterRequest defines the structure for user registration
type RegisterRequest struct {
	FullName   string          `json:"fullName" validate:"required"`
	Email      string          `json:"email" validate:"required,email"`
	Password   string          `json:"password" validate:"required,min=6"`
	Location   *model.Location `json:"location"`
	GardenType string          `json:"gardenType" validate:"omitempty,oneof=balcony rooftop indoor backyard"`
	SpaceSize  string          `json:"spaceSize"`
	Experience string          `json:"experience" validate:"omitempty,oneof=beginner intermediate expert"`
	Plants     []string        `json:"plants"`
}

// Register creates a new gardener account and issues a session token
func Register(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RegisterCounter.Inc()

	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse registration request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid request"})
	}

	if err := c.Validate(&req); err != nil {
		log.Error("Invalid registration data", zap.Error(err))
		prometheus.RecordAuthError("incomplete_registration")
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "fullName, email and a password of at least 6 characters are required"})
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	// Check if user already exists - email uniqueness is case-insensitive
	defer prometheus.TrackDBOperation("query")(time.Now())
	var existingUser model.User
	result := database.GetDB().Where("email = ?", email).First(&existingUser)
	if result.Error == nil {
		log.Error("User already exists", zap.String("email", email))
		prometheus.RecordAuthError("email_already_exists")
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "User with this email already exists"})
	}

	// Hash password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		prometheus.RecordAuthError("password_hash_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "registration failed"})
	}

	user := model.User{
		FullName:   req.FullName,
		Email:      email,
		Password:   string(hashedPassword),
		GardenType: req.GardenType,
		SpaceSize:  req.SpaceSize,
		Experience: req.Experience,
		IsActive:   true,
	}
	if user.GardenType == "" {
		user.GardenType = model.GardenBalcony
	}
	if user.Experience == "" {
		user.Experience = "beginner"
	}
	if req.Location != nil {
		user.Location = datatypes.NewJSONType(*req.Location)
	}
	if req.Plants != nil {
		user.Plants = datatypes.NewJSONSlice(req.Plants)
	}
	user.Normalize()
	user.RecomputeLevel()

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := database.GetDB().Create(&user); result.Error != nil {
		log.Error("Failed to create user", zap.Error(result.Error))
		prometheus.RecordAuthError("user_creation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "registration failed"})
	}

	token, err := jwtutil.GenerateToken(user.Email, user.ID)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		prometheus.RecordAuthError("token_generation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "registration failed"})
	}
	prometheus.IncreaseActiveTokens()

	log.Info("User registered", zap.String("email", user.Email))
	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"message": "User registered successfully",
		"data": echo.Map{
			"token": token,
			"user":  user,
		},
	})
}

// Login authenticates a credential pair and issues a session token
func Login(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.LoginCounter.Inc()

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse login request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid request"})
	}

	if req.Email == "" || req.Password == "" {
		prometheus.RecordAuthError("incomplete_login")
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "Please provide email and password"})
	}

	// Same error for unknown email and wrong password, to avoid account
	// enumeration
	defer prometheus.TrackDBOperation("query")(time.Now())
	var user model.User
	result := database.GetDB().Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).First(&user)
	if result.Error != nil {
		log.Error("User not found", zap.String("email", req.Email))
		prometheus.RecordAuthError("user_not_found")
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "Invalid email or password"})
	}

	if !user.IsActive {
		log.Error("Deactivated account login attempt", zap.String("email", user.Email))
		prometheus.RecordAuthError("account_deactivated")
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "Account has been deactivated"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		log.Error("Invalid password", zap.String("email", user.Email))
		prometheus.RecordAuthError("invalid_password")
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "Invalid email or password"})
	}

	now := time.Now()
	user.LastLogin = &now
	defer prometheus.TrackDBOperation("update")(time.Now())
	if result := database.GetDB().Save(&user); result.Error != nil {
		log.Error("Failed to update last login", zap.Error(result.Error))
		prometheus.RecordAuthError("last_login_update_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "Server error during login"})
	}

	token, err := jwtutil.GenerateToken(user.Email, user.ID)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		prometheus.RecordAuthError("token_generation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "Server error during login"})
	}
	prometheus.IncreaseActiveTokens()

	log.Info("User logged in", zap.String("email", user.Email))
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Login successful",
		"data": echo.Map{
			"token": token,
			"user":  user,
		},
	})
}

// GetMe returns the profile of the authenticated account
func GetMe(c echo.Context) error {
	log := logger.FromContext(c)

	userID, ok := c.Get("user_id").(uint)
	if !ok {
		log.Error("Failed to get user ID from context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "authentication required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var user model.User
	if result := database.GetDB().First(&user, userID); result.Error != nil {
		log.Error("User not found", zap.Uint("user_id", userID))
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "authentication required"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "User profile fetched successfully",
		"data":    echo.Map{"user": user},
	})
}

// Logout acknowledges logout. Sessions are stateless bearer tokens, so the
// client discards the token; there is nothing to revoke server-side.
func Logout(c echo.Context) error {
	prometheus.DecreaseActiveTokens()
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Logout successful",
	})
}

// ChangePassword re-hashes the credential after verifying the current one
// and issues a fresh session token.
func ChangePassword(c echo.Context) error {
	log := logger.FromContext(c)

	userID, ok := c.Get("user_id").(uint)
	if !ok {
		log.Error("Failed to get user ID from context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "authentication required"})
	}

	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse password change request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid request"})
	}

	if req.CurrentPassword == "" || req.NewPassword == "" {
		prometheus.RecordAuthError("incomplete_password_change")
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "Please provide current and new password"})
	}

	if len(req.NewPassword) < 6 {
		prometheus.RecordAuthError("weak_password")
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "Password must be at least 6 characters"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var user model.User
	if result := database.GetDB().First(&user, userID); result.Error != nil {
		log.Error("User not found", zap.Uint("user_id", userID))
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "authentication required"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)); err != nil {
		log.Error("Current password mismatch", zap.Uint("user_id", userID))
		prometheus.RecordAuthError("invalid_password")
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "Current password is incorrect"})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		prometheus.RecordAuthError("password_hash_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "Error updating password"})
	}

	user.Password = string(hashedPassword)
	defer prometheus.TrackDBOperation("update")(time.Now())
	if result := database.GetDB().Save(&user); result.Error != nil {
		log.Error("Failed to update password", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "Error updating password"})
	}

	token, err := jwtutil.GenerateToken(user.Email, user.ID)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		prometheus.RecordAuthError("token_generation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "Error updating password"})
	}

	log.Info("Password updated", zap.Uint("user_id", user.ID))
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Password updated successfully",
		"data":    echo.Map{"token": token},
	})
}
