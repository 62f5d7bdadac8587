package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sirpyerre/portfolio-api/internal/api/metrics"
	"github.com/sirpyerre/portfolio-api/internal/core/forms"
	"github.com/sirpyerre/portfolio-api/internal/core/service"
)

// CommentHandler handles the request/response side of comments: list,
// public submission, and admin deletion.
type CommentHandler struct {
	service *service.CommentService
}

func NewCommentHandler(svc *service.CommentService) *CommentHandler {
	return &CommentHandler{service: svc}
}

// List handles GET /v1/articles/:id/comments — newest first, public.
//
// @Summary      List an article's comments
// @Tags         comments
// @Produce      json
// @Param        id  path  string  true  "Article id"
// @Success      200  {array}  domain.Comment
// @Router       /v1/articles/{id}/comments [get]
func (h *CommentHandler) List(c echo.Context) error {
	comments, err := h.service.ListByArticle(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, comments)
}

// Submit handles POST /v1/articles/:id/comments — public, no account needed.
// The response carries the stored record, but the submitter's visible list
// is updated by the live feed, not by this response.
//
// @Summary      Submit a comment
// @Tags         comments
// @Accept       json
// @Produce      json
// @Param        id    path      string                true  "Article id"
// @Param        body  body      submitCommentRequest  true  "Author name and content"
// @Success      201   {object}  domain.Comment
// @Failure      422   {object}  map[string]string
// @Router       /v1/articles/{id}/comments [post]
func (h *CommentHandler) Submit(c echo.Context) error {
	var req submitCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	comment, err := h.service.Submit(c.Request().Context(), c.Param("id"), forms.CommentForm{
		AuthorName: req.AuthorName,
		Content:    req.Content,
	})
	if err != nil {
		var ve forms.ValidationErrors
		if errors.As(err, &ve) {
			metrics.CommentsSubmittedTotal.WithLabelValues("rejected").Inc()
		} else {
			metrics.CommentsSubmittedTotal.WithLabelValues("failed").Inc()
		}
		return err
	}

	metrics.CommentsSubmittedTotal.WithLabelValues("accepted").Inc()
	return c.JSON(http.StatusCreated, comment)
}

// Delete handles DELETE /v1/admin/comments/:id. Always behind the strict
// admin gate: comment deletion is admin-only by store policy, whatever the
// configured gate mode.
//
// @Summary      Delete a comment
// @Tags         admin
// @Security     BearerAuth
// @Param        id  path  string  true  "Comment id"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /v1/admin/comments/{id} [delete]
func (h *CommentHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
