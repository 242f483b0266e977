package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/vacation-rental/internal/model"
	"github.com/iliyamo/vacation-rental/internal/repository"
)

// UserHandler exposes public user profiles.
type UserHandler struct {
	Users *repository.UserRepo
	Ads   *repository.AdRepo
}

func NewUserHandler(users *repository.UserRepo, ads *repository.AdRepo) *UserHandler {
	return &UserHandler{Users: users, Ads: ads}
}

type profileResp struct {
	User model.UserSummary `json:"user"`
	Ads  []model.Ad        `json:"ads"`
}

// Get returns the user's public summary and the ads they published.
func (h *UserHandler) Get(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	ads, err := h.Ads.List(ctx, repository.AdFilter{AuthorID: id})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, profileResp{User: u.Summary(), Ads: ads})
}
