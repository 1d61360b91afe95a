package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/enrollment-backend/internal/http/response"
	"github.com/yungbote/enrollment-backend/internal/modules/carousel"
	"github.com/yungbote/enrollment-backend/internal/platform/logger"
)

type TestimonialsHandler struct {
	deps Deps
	log  *logger.Logger
}

func NewTestimonialsHandler(deps Deps) *TestimonialsHandler {
	return &TestimonialsHandler{deps: deps, log: deps.Log.With("handler", "TestimonialsHandler")}
}

func (h *TestimonialsHandler) List(c *gin.Context) {
	pos := h.deps.clientWorkspace(c).Carousel.Position()
	response.RespondOK(c, gin.H{
		"testimonials": h.deps.Catalog.Testimonials(),
		"position":     pos,
	})
}

func (h *TestimonialsHandler) Next(c *gin.Context) {
	h.move(c, (*carousel.Carousel).Next)
}

func (h *TestimonialsHandler) Prev(c *gin.Context) {
	h.move(c, (*carousel.Carousel).Prev)
}

func (h *TestimonialsHandler) Start(c *gin.Context) {
	h.move(c, (*carousel.Carousel).Start)
}

func (h *TestimonialsHandler) Pause(c *gin.Context) {
	h.move(c, (*carousel.Carousel).Pause)
}

func (h *TestimonialsHandler) move(c *gin.Context, op func(*carousel.Carousel) carousel.Position) {
	pos := op(h.deps.clientWorkspace(c).Carousel)
	response.RespondOK(c, gin.H{"position": pos})
}
