package middleware

import (
	"net/http"
	"strings"

	"garden-service/internal/model"
	"garden-service/pkg/database"
	"garden-service/pkg/jwtutil"
	"garden-service/pkg/logger"
	"garden-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// BearerToken extracts the token from a "Bearer <token>" Authorization
// header. It is the single place the header format is parsed.
func BearerToken(c echo.Context) (string, bool) {
	parts := strings.Split(c.Request().Header.Get("Authorization"), " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}

// AuthMiddleware validates the bearer token from the Authorization header and
// resolves it to an existing account before any handler logic runs.
func AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromContext(c)

		if c.Request().Header.Get("Authorization") == "" {
			log.Error("Missing Authorization header")
			prometheus.RecordAuthError("missing_token")
			return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "missing authorization token"})
		}

		token, ok := BearerToken(c)
		if !ok {
			log.Error("Invalid Authorization header format")
			prometheus.RecordAuthError("invalid_auth_format")
			return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "invalid authorization format, expected Bearer token"})
		}

		claims, err := jwtutil.ValidateToken(token)
		if err != nil {
			log.Error("Invalid JWT token", zap.Error(err))
			prometheus.RecordAuthError("invalid_token")
			return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "invalid or expired token"})
		}

		// The token must still resolve to an existing account
		var user model.User
		if result := database.GetDB().First(&user, claims.UserID); result.Error != nil {
			log.Error("Token does not resolve to an account", zap.Uint("user_id", claims.UserID))
			prometheus.RecordAuthError("unknown_account")
			return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "invalid or expired token"})
		}

		c.Set("user_id", user.ID)
		c.Set("email", user.Email)

		return next(c)
	}
}
