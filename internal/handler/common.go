// Package handler implements the HTTP endpoints.  Handlers bind and check
// input, call the repositories or services and translate errors into JSON
// responses of the form {"error": "..."}.
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/vacation-rental/internal/model"
	"github.com/iliyamo/vacation-rental/internal/repository"
	"github.com/iliyamo/vacation-rental/internal/service"
)

const requestTimeout = 5 * time.Second

var errImageURL = errors.New("image url is required")

func requestContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

// getUserID extracts the user_id set by JWTAuth and converts it to uint64.
func getUserID(c echo.Context) (uint64, error) {
	switch t := c.Get("user_id").(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

func getRole(c echo.Context) string {
	role, _ := c.Get("role").(string)
	return role
}

// authorize returns the caller's id if they own ownerID's resource or are an
// admin, and ErrForbidden otherwise.
func authorize(c echo.Context, ownerID uint64) (uint64, error) {
	uid, err := getUserID(c)
	if err != nil {
		return 0, err
	}
	if uid != ownerID && !model.IsAdmin(getRole(c)) {
		return uid, repository.ErrForbidden
	}
	return uid, nil
}

func parseID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id > 0
}

// queryID reads an optional numeric query parameter.  Absent means 0.
func queryID(c echo.Context, name string) (uint64, error) {
	v := c.QueryParam(name)
	if v == "" {
		return 0, nil
	}
	return strconv.ParseUint(v, 10, 64)
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}

// fail maps err onto a status code.  Unknown errors are logged and hidden
// behind a generic 500.
func fail(c echo.Context, err error) error {
	switch {
	case model.IsValidation(err),
		errors.Is(err, service.ErrAdHasBookings),
		errors.Is(err, service.ErrDatesUnavailable):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrAdNotFound),
		errors.Is(err, repository.ErrBookingNotFound),
		errors.Is(err, repository.ErrCommentNotFound),
		errors.Is(err, repository.ErrUserNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, repository.ErrEmailExists):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	}
	zerolog.Ctx(c.Request().Context()).Error().Err(err).Str("path", c.Path()).Msg("request failed")
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
