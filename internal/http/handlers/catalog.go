package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/enrollment-backend/internal/http/response"
	"github.com/yungbote/enrollment-backend/internal/modules/catalog"
	"github.com/yungbote/enrollment-backend/internal/platform/apierr"
	"github.com/yungbote/enrollment-backend/internal/platform/logger"
)

type CatalogHandler struct {
	deps Deps
	log  *logger.Logger
}

func NewCatalogHandler(deps Deps) *CatalogHandler {
	return &CatalogHandler{deps: deps, log: deps.Log.With("handler", "CatalogHandler")}
}

// ListCourses filters by ?category= and searches by ?q=.
func (h *CatalogHandler) ListCourses(c *gin.Context) {
	category := c.DefaultQuery("category", catalog.CategoryAll)
	term := c.Query("q")
	courses := h.deps.Catalog.Browse(category, term)
	response.RespondOK(c, gin.H{
		"courses":    courses,
		"count":      len(courses),
		"no_results": len(courses) == 0,
		"categories": h.deps.Catalog.Categories(),
		"currency":   h.deps.Catalog.Currency(),
	})
}

func (h *CatalogHandler) GetCourse(c *gin.Context) {
	course, err := h.deps.Catalog.Get(c.Param("id"))
	if errors.Is(err, catalog.ErrUnknownCourse) {
		response.RespondAPIError(c, apierr.NotFound("course_not_found", err), "course_not_found")
		return
	}
	if err != nil {
		h.log.Error("load course failed", "error", err)
		response.RespondError(c, http.StatusInternalServerError, "load_course_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"course": course})
}

func (h *CatalogHandler) ListSchedules(c *gin.Context) {
	response.RespondOK(c, gin.H{"schedules": h.deps.Catalog.Schedules()})
}
