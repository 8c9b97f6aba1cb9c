package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/audioshop/audioshop-api/internal/apperr"
	"github.com/audioshop/audioshop-api/internal/atomic"
	"github.com/audioshop/audioshop-api/internal/middleware"
	"github.com/audioshop/audioshop-api/internal/model"
	"github.com/audioshop/audioshop-api/internal/repository"
)

// CommentHandler bundles dependencies for comment endpoints. Both mutations
// touch three documents (comment, product, user) and therefore always run as
// atomic units.
type CommentHandler struct {
	Comments CommentStore
	Products ProductStore
	Users    UserStore
	Atomic   atomic.Runner
}

func NewCommentHandler(comments CommentStore, products ProductStore, users UserStore, runner atomic.Runner) *CommentHandler {
	return &CommentHandler{Comments: comments, Products: products, Users: users, Atomic: runner}
}

type commentCreateReq struct {
	Comment string `json:"comment" validate:"required,max=250"`
	Ratings int    `json:"ratings" validate:"omitempty,min=1,max=5"`
}

// CreateComment attaches a comment to an existing product. The comment, the
// product's comment list and the author's comment list change together or
// not at all.
func (h *CommentHandler) CreateComment(c echo.Context) error {
	user, ok := middleware.Identity(c)
	if !ok {
		return apperr.Unauthenticated("Authentication required")
	}
	productID, err := parseObjectID(c.Param("productId"))
	if err != nil {
		return err
	}

	var req commentCreateReq
	if err := c.Bind(&req); err != nil {
		return apperr.BadRequest("invalid body")
	}
	if req.Comment == "" {
		return apperr.BadRequest("Comment cannot be empty")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if req.Ratings == 0 {
		req.Ratings = model.DefaultRating
	}

	ctx := c.Request().Context()
	if _, err := h.Products.GetByID(ctx, productID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("Product not found")
		}
		return err
	}

	comment := model.Comment{
		Comment:   req.Comment,
		UserID:    user.ID,
		ProductID: productID,
		Ratings:   req.Ratings,
	}
	err = h.Atomic.RunAtomic(ctx,
		func(ctx context.Context) error { return h.Comments.Create(ctx, &comment) },
		func(ctx context.Context) error { return h.Products.PushCommentID(ctx, productID, comment.ID) },
		func(ctx context.Context) error { return h.Users.PushCommentID(ctx, user.ID, comment.ID) },
	)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"data": comment})
}

// DeleteComment removes a comment and both back-references. Only the author
// or an admin may delete; the author's list is always the one cleaned, even
// when an admin acts on someone else's comment.
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	user, ok := middleware.Identity(c)
	if !ok {
		return apperr.Unauthenticated("Authentication required")
	}
	commentID, err := parseObjectID(c.Param("commentId"))
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	comment, err := h.Comments.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("Comment not found")
		}
		return err
	}
	if err := authorizeOwnership(user, comment.UserID); err != nil {
		return err
	}

	err = h.Atomic.RunAtomic(ctx,
		func(ctx context.Context) error { return h.Comments.Delete(ctx, commentID) },
		func(ctx context.Context) error { return h.Users.PullCommentID(ctx, comment.UserID, commentID) },
		func(ctx context.Context) error { return h.Products.PullCommentID(ctx, comment.ProductID, commentID) },
	)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"data": "Comment deleted successfully"})
}
