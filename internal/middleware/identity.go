package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// subjectString renders a sub claim (or a stored user_id) as a string.
// Claims decoded from JSON carry numbers as float64.
func subjectString(v interface{}) string {
	switch v := v.(type) {
	case float64:
		return strconv.FormatUint(uint64(v), 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case string:
		return v
	}
	return ""
}

// currentUserID returns the authenticated user id as a string, or "anon".
// It reads "user_id" when JWTAuth already ran; global middleware runs
// before route-level JWTAuth, so with a secret it verifies the bearer
// token itself.
func currentUserID(c echo.Context, secret string) string {
	if id := subjectString(c.Get("user_id")); id != "" {
		return id
	}
	if secret != "" {
		if claims, err := bearerClaims(c, secret); err == nil {
			if id := subjectString(claims["sub"]); id != "" {
				return id
			}
		}
	}
	return "anon"
}
