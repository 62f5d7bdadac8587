package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sirpyerre/portfolio-api/internal/api/metrics"
	"github.com/sirpyerre/portfolio-api/internal/core/domain"
	"github.com/sirpyerre/portfolio-api/internal/core/forms"
	"github.com/sirpyerre/portfolio-api/internal/core/service"
)

// ArticleHandler handles HTTP requests for article operations.
type ArticleHandler struct {
	service *service.ContentService[domain.Article]
}

func NewArticleHandler(svc *service.ContentService[domain.Article]) *ArticleHandler {
	return &ArticleHandler{service: svc}
}

// ListPublic handles GET /v1/articles — published articles for the site.
//
// @Summary      List published articles
// @Tags         articles
// @Produce      json
// @Success      200  {array}  domain.Article
// @Router       /v1/articles [get]
func (h *ArticleHandler) ListPublic(c echo.Context) error {
	articles, err := h.service.ListPublished(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, articles)
}

// Get handles GET /v1/articles/:id — one article, published or not for the
// owner but only published rows are reachable for visitors (unpublished ids
// resolve to not-found through the public path).
//
// @Summary      Get an article
// @Tags         articles
// @Produce      json
// @Param        id  path  string  true  "Article id"
// @Success      200  {object}  domain.Article
// @Failure      404  {object}  map[string]string
// @Router       /v1/articles/{id} [get]
func (h *ArticleHandler) Get(c echo.Context) error {
	article, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	if !article.IsPublished {
		// Unpublished rows are filtered out by store policy for visitors.
		return domain.ErrNotFound
	}
	return c.JSON(http.StatusOK, article)
}

// List handles GET /v1/admin/articles — all articles, ascending sort order.
//
// @Summary      List all articles
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  domain.Article
// @Router       /v1/admin/articles [get]
func (h *ArticleHandler) List(c echo.Context) error {
	articles, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, articles)
}

// Create handles POST /v1/admin/articles.
//
// @Summary      Create an article
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createArticleRequest  true  "Article draft"
// @Success      201   {object}  domain.Article
// @Failure      422   {object}  map[string]string
// @Router       /v1/admin/articles [post]
func (h *ArticleHandler) Create(c echo.Context) error {
	var req createArticleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	draft, err := forms.ParseArticle(forms.ArticleForm{
		Title:       req.Title,
		Excerpt:     req.Excerpt,
		Content:     req.Content,
		Category:    req.Category,
		ReadTime:    req.ReadTime,
		URL:         req.URL,
		SortOrder:   req.SortOrder,
		IsPublished: req.IsPublished,
	})
	if err != nil {
		metrics.ContentMutationErrorsTotal.WithLabelValues("article", "create").Inc()
		return err
	}

	created, err := h.service.Create(c.Request().Context(), draft)
	if err != nil {
		metrics.ContentMutationErrorsTotal.WithLabelValues("article", "create").Inc()
		return err
	}

	metrics.ContentMutationsTotal.WithLabelValues("article", "create").Inc()
	return c.JSON(http.StatusCreated, created)
}

// Update handles PUT /v1/admin/articles/:id.
//
// @Summary      Update an article
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                true  "Article id"
// @Param        body  body      updateArticleRequest  true  "Partial patch"
// @Success      200   {object}  domain.Article
// @Failure      404   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /v1/admin/articles/{id} [put]
func (h *ArticleHandler) Update(c echo.Context) error {
	var req updateArticleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	updated, err := h.service.Update(c.Request().Context(), c.Param("id"), func(a domain.Article) domain.Article {
		if req.Title != nil {
			a.Title = *req.Title
		}
		if req.Excerpt != nil {
			a.Excerpt = *req.Excerpt
		}
		if req.Content != nil {
			a.Content = *req.Content
		}
		if req.Category != nil {
			a.Category = domain.Category(*req.Category)
		}
		if req.ReadTime != nil {
			a.ReadTime = *req.ReadTime
		}
		if req.URL != nil {
			a.URL = *req.URL
		}
		if req.SortOrder != nil {
			a.SortOrder = *req.SortOrder
		}
		if req.IsPublished != nil {
			a.IsPublished = *req.IsPublished
		}
		return a
	})
	if err != nil {
		metrics.ContentMutationErrorsTotal.WithLabelValues("article", "update").Inc()
		return err
	}

	metrics.ContentMutationsTotal.WithLabelValues("article", "update").Inc()
	return c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /v1/admin/articles/:id. Comments cascade with the
// article, matching the store's on-delete-cascade contract.
//
// @Summary      Delete an article
// @Tags         admin
// @Security     BearerAuth
// @Param        id  path  string  true  "Article id"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /v1/admin/articles/{id} [delete]
func (h *ArticleHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		metrics.ContentMutationErrorsTotal.WithLabelValues("article", "delete").Inc()
		return err
	}

	metrics.ContentMutationsTotal.WithLabelValues("article", "delete").Inc()
	return c.NoContent(http.StatusNoContent)
}
