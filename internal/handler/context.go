package handler

import (
	"github.com/labstack/echo/v4"
)

// currentUserID returns the account id resolved by the auth middleware
func currentUserID(c echo.Context) (uint, bool) {
	userID, ok := c.Get("user_id").(uint)
	return userID, ok
}
