package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sirpyerre/portfolio-api/internal/api/metrics"
	"github.com/sirpyerre/portfolio-api/internal/core/domain"
	"github.com/sirpyerre/portfolio-api/internal/core/forms"
	"github.com/sirpyerre/portfolio-api/internal/core/service"
)

// ProjectHandler handles HTTP requests for project operations.
type ProjectHandler struct {
	service *service.ContentService[domain.Project]
}

func NewProjectHandler(svc *service.ContentService[domain.Project]) *ProjectHandler {
	return &ProjectHandler{service: svc}
}

// ListPublic handles GET /v1/projects — published projects for the site.
//
// @Summary      List published projects
// @Tags         projects
// @Produce      json
// @Success      200  {array}  domain.Project
// @Router       /v1/projects [get]
func (h *ProjectHandler) ListPublic(c echo.Context) error {
	projects, err := h.service.ListPublished(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, projects)
}

// List handles GET /v1/admin/projects — all projects, ascending sort order.
//
// @Summary      List all projects
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  domain.Project
// @Router       /v1/admin/projects [get]
func (h *ProjectHandler) List(c echo.Context) error {
	projects, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, projects)
}

// Create handles POST /v1/admin/projects.
//
// @Summary      Create a project
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createProjectRequest  true  "Project draft"
// @Success      201   {object}  domain.Project
// @Failure      422   {object}  map[string]string
// @Router       /v1/admin/projects [post]
func (h *ProjectHandler) Create(c echo.Context) error {
	var req createProjectRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	draft, err := forms.ParseProject(forms.ProjectForm{
		Title:        req.Title,
		Description:  req.Description,
		Technologies: req.Technologies,
		Icon:         req.Icon,
		DemoURL:      req.DemoURL,
		RepoURL:      req.RepoURL,
		SortOrder:    req.SortOrder,
		IsPublished:  req.IsPublished,
	})
	if err != nil {
		metrics.ContentMutationErrorsTotal.WithLabelValues("project", "create").Inc()
		return err
	}

	created, err := h.service.Create(c.Request().Context(), draft)
	if err != nil {
		metrics.ContentMutationErrorsTotal.WithLabelValues("project", "create").Inc()
		return err
	}

	metrics.ContentMutationsTotal.WithLabelValues("project", "create").Inc()
	return c.JSON(http.StatusCreated, created)
}

// Update handles PUT /v1/admin/projects/:id.
//
// @Summary      Update a project
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                true  "Project id"
// @Param        body  body      updateProjectRequest  true  "Partial patch"
// @Success      200   {object}  domain.Project
// @Failure      404   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /v1/admin/projects/{id} [put]
func (h *ProjectHandler) Update(c echo.Context) error {
	var req updateProjectRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	updated, err := h.service.Update(c.Request().Context(), c.Param("id"), func(p domain.Project) domain.Project {
		if req.Title != nil {
			p.Title = *req.Title
		}
		if req.Description != nil {
			p.Description = *req.Description
		}
		if req.Technologies != nil {
			p.Technologies = forms.SplitTechnologies(*req.Technologies)
		}
		if req.Icon != nil {
			p.Icon = *req.Icon
		}
		if req.DemoURL != nil {
			p.DemoURL = *req.DemoURL
		}
		if req.RepoURL != nil {
			p.RepoURL = *req.RepoURL
		}
		if req.SortOrder != nil {
			p.SortOrder = *req.SortOrder
		}
		if req.IsPublished != nil {
			p.IsPublished = *req.IsPublished
		}
		return p
	})
	if err != nil {
		metrics.ContentMutationErrorsTotal.WithLabelValues("project", "update").Inc()
		return err
	}

	metrics.ContentMutationsTotal.WithLabelValues("project", "update").Inc()
	return c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /v1/admin/projects/:id. The interactive confirmation
// happens in the frontend; this endpoint is only called after it.
//
// @Summary      Delete a project
// @Tags         admin
// @Security     BearerAuth
// @Param        id  path  string  true  "Project id"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /v1/admin/projects/{id} [delete]
func (h *ProjectHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		metrics.ContentMutationErrorsTotal.WithLabelValues("project", "delete").Inc()
		return err
	}

	metrics.ContentMutationsTotal.WithLabelValues("project", "delete").Inc()
	return c.NoContent(http.StatusNoContent)
}
