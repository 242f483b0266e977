package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/vacation-rental/internal/model"
	"github.com/iliyamo/vacation-rental/internal/repository"
)

// CommentHandler serves /v1/comments.
type CommentHandler struct {
	Comments *repository.CommentRepo
	Ads      *repository.AdRepo
}

func NewCommentHandler(comments *repository.CommentRepo, ads *repository.AdRepo) *CommentHandler {
	return &CommentHandler{Comments: comments, Ads: ads}
}

type commentReq struct {
	AdID    uint64 `json:"ad_id"`
	Content string `json:"content"`
	Rating  int    `json:"rating"`
}

// List returns comments filtered by ?ad_id and ?author_id, newest first.
func (h *CommentHandler) List(c echo.Context) error {
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

	list, err := h.Comments.List(ctx, repository.CommentFilter{AdID: adID, AuthorID: authorID})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// Create posts a comment on an existing ad.
func (h *CommentHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req commentReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if req.AdID == 0 {
		return badRequest(c, "ad_id required")
	}
	cm := model.Comment{AdID: req.AdID, AuthorID: uid, Content: req.Content, Rating: req.Rating}
	if err := cm.Validate(); err != nil {
		return fail(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()
	if _, err := h.Ads.GetByID(ctx, req.AdID); err != nil {
		return fail(c, err)
	}
	cm.PrePersist(time.Now())
	if err := h.Comments.Create(ctx, &cm); err != nil {
		return fail(c, err)
	}
	created, err := h.Comments.GetByID(ctx, cm.ID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, created)
}

// Get returns one comment.
func (h *CommentHandler) Get(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	cm, err := h.Comments.GetByID(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, cm)
}

// Update rewrites content and rating.  The ad a comment belongs to never
// changes.
func (h *CommentHandler) Update(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	var req commentReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	cm, err := h.Comments.GetByID(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	if _, err := authorize(c, cm.AuthorID); err != nil {
		return fail(c, err)
	}
	cm.Content, cm.Rating = req.Content, req.Rating
	if err := cm.Validate(); err != nil {
		return fail(c, err)
	}
	if err := h.Comments.Update(ctx, cm); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, cm)
}

// Delete removes a comment.
func (h *CommentHandler) Delete(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	cm, err := h.Comments.GetByID(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	if _, err := authorize(c, cm.AuthorID); err != nil {
		return fail(c, err)
	}
	if err := h.Comments.Delete(ctx, id); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
