package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/vacation-rental/internal/model"
	"github.com/iliyamo/vacation-rental/internal/repository"
	"github.com/iliyamo/vacation-rental/internal/service"
	"github.com/iliyamo/vacation-rental/internal/utils"
)

// BookingHandler serves /v1/bookings.  Every write goes through
// BookingService, which refuses overlapping dates.
type BookingHandler struct {
	Bookings *repository.BookingRepo
	Service  *service.BookingService
}

func NewBookingHandler(bookings *repository.BookingRepo, svc *service.BookingService) *BookingHandler {
	if bookings == nil || svc == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	return &BookingHandler{Bookings: bookings, Service: svc}
}

// bookingReq is shared by create and update.  On update, absent fields keep
// their stored value.  Amount is only honoured for admins: for everyone else
// it is cleared so the service prices the stay at ad price times nights,
// also after a change of dates.
type bookingReq struct {
	AdID      uint64  `json:"ad_id"`
	StartDate string  `json:"start_date"`
	EndDate   string  `json:"end_date"`
	Amount    *int    `json:"amount"`
	Comment   *string `json:"comment"`
}

func (r bookingReq) apply(b *model.Booking, admin bool) error {
	if r.AdID != 0 {
		b.AdID = r.AdID
	}
	if err := setDate(&b.StartDate, r.StartDate); err != nil {
		return err
	}
	if err := setDate(&b.EndDate, r.EndDate); err != nil {
		return err
	}
	switch {
	case !admin:
		b.Amount = 0
	case r.Amount != nil:
		b.Amount = *r.Amount
	}
	if r.Comment != nil {
		b.Comment = r.Comment
	}
	return nil
}

func setDate(dst *time.Time, raw string) error {
	if raw == "" {
		return nil
	}
	t, err := utils.ParseDate(raw)
	if err != nil {
		return err
	}
	*dst = t
	return nil
}

// List returns bookings filtered by ?ad_id and ?author_id.
func (h *BookingHandler) List(c echo.Context) error {
	adID, err := queryID(c, "ad_id")
	if err != nil {
		return badRequest(c, "invalid ad_id")
	}
	authorID, err := queryID(c, "author_id")
	if err != nil {
		return badRequest(c, "invalid author_id")
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	list, err := h.Bookings.List(ctx, repository.BookingFilter{AdID: adID, AuthorID: authorID})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// Create books an ad for the caller.  The amount defaults to the ad price
// times the number of nights.
func (h *BookingHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req bookingReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if req.AdID == 0 {
		return badRequest(c, "ad_id required")
	}
	b := model.Booking{AuthorID: uid}
	if err := req.apply(&b, model.IsAdmin(getRole(c))); err != nil {
		return badRequest(c, err.Error())
	}

	ctx, cancel := requestContext(c)
	defer cancel()
	if err := h.Service.Create(ctx, &b); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, b)
}

// Get returns one booking.
func (h *BookingHandler) Get(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	b, err := h.Bookings.GetByID(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

// Update changes dates, ad, amount or comment of a booking owned by the
// caller (or any booking for an admin).
func (h *BookingHandler) Update(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	var req bookingReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	b, err := h.Bookings.GetByID(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	if _, err := authorize(c, b.AuthorID); err != nil {
		return fail(c, err)
	}
	previousAdID := b.AdID
	if err := req.apply(b, model.IsAdmin(getRole(c))); err != nil {
		return badRequest(c, err.Error())
	}
	if err := h.Service.Update(ctx, b, previousAdID); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

// Delete cancels a booking.
func (h *BookingHandler) Delete(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	b, err := h.Bookings.GetByID(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	if _, err := authorize(c, b.AuthorID); err != nil {
		return fail(c, err)
	}
	if err := h.Service.Delete(ctx, b); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
