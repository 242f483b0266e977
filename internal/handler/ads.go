package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/vacation-rental/internal/model"
	"github.com/iliyamo/vacation-rental/internal/repository"
	"github.com/iliyamo/vacation-rental/internal/service"
)

// AdHandler serves /v1/ads.  Reads and writes of the listing itself go
// straight to the repository; deletion and availability go through
// AdService.
type AdHandler struct {
	Ads     *repository.AdRepo
	Service *service.AdService
}

func NewAdHandler(ads *repository.AdRepo, svc *service.AdService) *AdHandler {
	if ads == nil || svc == nil {
		panic("nil dependency passed to NewAdHandler")
	}
	return &AdHandler{Ads: ads, Service: svc}
}

type imageReq struct {
	URL     string `json:"url"`
	Caption string `json:"caption"`
}

// adReq is the write body.  Images is a pointer so an update can tell "leave
// images alone" (absent) from "remove all images" ([]).
type adReq struct {
	Title        string      `json:"title"`
	Price        int         `json:"price"`
	Introduction string      `json:"introduction"`
	Rooms        int         `json:"rooms"`
	Content      string      `json:"content"`
	Images       *[]imageReq `json:"images"`
}

func (r adReq) images() ([]model.Image, error) {
	if r.Images == nil {
		return nil, nil
	}
	out := make([]model.Image, 0, len(*r.Images))
	for _, im := range *r.Images {
		url := strings.TrimSpace(im.URL)
		if url == "" {
			return nil, errImageURL
		}
		out = append(out, model.Image{URL: url, Caption: strings.TrimSpace(im.Caption)})
	}
	return out, nil
}

func (r adReq) apply(a *model.Ad) {
	a.Title = strings.TrimSpace(r.Title)
	a.Price = r.Price
	a.Introduction = r.Introduction
	a.Rooms = r.Rooms
	a.Content = r.Content
}

// adDetail adds the derived fields shown on a single ad.
type adDetail struct {
	*model.Ad
	AvgRatings       float64  `json:"avg_ratings"`
	NotAvailableDays []string `json:"not_available_days"`
}

// List returns all ads, optionally only those of ?author_id.
func (h *AdHandler) List(c echo.Context) error {
	authorID, err := queryID(c, "author_id")
	if err != nil {
		return badRequest(c, "invalid author_id")
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	ads, err := h.Ads.List(ctx, repository.AdFilter{AuthorID: authorID})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, ads)
}

// Create publishes a new ad owned by the caller.
func (h *AdHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req adReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	images, err := req.images()
	if err != nil {
		return badRequest(c, err.Error())
	}
	ad := model.Ad{AuthorID: uid, Images: images}
	req.apply(&ad)
	if err := ad.Validate(); err != nil {
		return fail(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()
	if err := h.Ads.Create(ctx, &ad); err != nil {
		return fail(c, err)
	}
	created, err := h.Ads.GetByID(ctx, ad.ID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, created)
}

// Get returns the ad with its bookings, comments, average rating and
// blocked days.
func (h *AdHandler) Get(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	ad, err := h.Service.Detail(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, adDetail{
		Ad:               ad,
		AvgRatings:       ad.AvgRatings(),
		NotAvailableDays: ad.NotAvailableDays().Sorted(),
	})
}

// Update rewrites the ad.  Only the author or an admin may do so.
func (h *AdHandler) Update(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	var req adReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	images, err := req.images()
	if err != nil {
		return badRequest(c, err.Error())
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	ad, err := h.Ads.GetByID(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	if _, err := authorize(c, ad.AuthorID); err != nil {
		return fail(c, err)
	}
	req.apply(ad)
	if err := ad.Validate(); err != nil {
		return fail(c, err)
	}
	if err := h.Ads.Update(ctx, ad, images); err != nil {
		return fail(c, err)
	}
	updated, err := h.Ads.GetByID(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

// Delete removes the ad unless it still has bookings.
func (h *AdHandler) Delete(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	ad, err := h.Ads.GetByID(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	uid, err := authorize(c, ad.AuthorID)
	if err != nil {
		return fail(c, err)
	}
	if err := h.Service.Delete(ctx, id, uid); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// NotAvailableDays lists the days already booked, ascending.
func (h *AdHandler) NotAvailableDays(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	days, err := h.Service.NotAvailableDays(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"ad_id": id, "days": days})
}

// MyComment returns the caller's comment on the ad, 404 when there is none.
func (h *AdHandler) MyComment(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	ad, err := h.Service.Detail(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	cm := ad.CommentFromAuthor(uid)
	if cm == nil {
		return fail(c, repository.ErrCommentNotFound)
	}
	return c.JSON(http.StatusOK, cm)
}
