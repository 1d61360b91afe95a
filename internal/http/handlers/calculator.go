package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/enrollment-backend/internal/http/response"
	"github.com/yungbote/enrollment-backend/internal/modules/calculator"
	"github.com/yungbote/enrollment-backend/internal/modules/catalog"
	"github.com/yungbote/enrollment-backend/internal/modules/pricing"
	"github.com/yungbote/enrollment-backend/internal/platform/logger"
)

type CalculatorHandler struct {
	deps Deps
	log  *logger.Logger
}

func NewCalculatorHandler(deps Deps) *CalculatorHandler {
	return &CalculatorHandler{deps: deps, log: deps.Log.With("handler", "CalculatorHandler")}
}

type calculatorRequest struct {
	CourseIDs []string `json:"course_ids"`
	Funding   string   `json:"funding"`
}

func (h *CalculatorHandler) parse(c *gin.Context) (pricing.Selection, pricing.Funding, bool) {
	var req calculatorRequest
	if !bindJSON(c, &req) {
		return pricing.Selection{}, "", false
	}
	sel, err := h.deps.selection(req.CourseIDs)
	if err != nil {
		response.RespondAPIError(c, err, "invalid_selection")
		return pricing.Selection{}, "", false
	}
	f := pricing.FundingNone
	if req.Funding != "" {
		f, err = pricing.ParseFunding(req.Funding)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_funding", err)
			return pricing.Selection{}, "", false
		}
	}
	return sel, f, true
}

func (h *CalculatorHandler) Update(c *gin.Context) {
	h.apply(c, false)
}

func (h *CalculatorHandler) Calculate(c *gin.Context) {
	h.apply(c, true)
}

func (h *CalculatorHandler) apply(c *gin.Context, button bool) {
	sel, f, ok := h.parse(c)
	if !ok {
		return
	}
	calc := h.deps.clientWorkspace(c).Calculator
	var (
		view calculator.View
		err  error
	)
	if button {
		view, err = calc.Calculate(sel, f)
	} else {
		view, err = calc.Update(sel, f)
	}
	if err != nil {
		h.deps.respondDomainError(c, h.log, err, "calculate_failed")
		return
	}
	if view.HasQuote {
		h.deps.Metrics.IncQuote("calculator", string(view.Funding))
	}
	response.RespondOK(c, gin.H{"calculator": view})
}

func (h *CalculatorHandler) Reset(c *gin.Context) {
	view := h.deps.clientWorkspace(c).Calculator.Reset()
	response.RespondOK(c, gin.H{"calculator": view})
}

func (h *CalculatorHandler) View(c *gin.Context) {
	view := h.deps.clientWorkspace(c).Calculator.View()
	response.RespondOK(c, gin.H{"calculator": view})
}

func (h *CalculatorHandler) Save(c *gin.Context) {
	calc := h.deps.clientWorkspace(c).Calculator
	saved, err := calc.SaveQuote(c.Request.Context())
	switch {
	case errors.Is(err, calculator.ErrNoQuote):
		response.RespondError(c, http.StatusConflict, "no_quote", err)
		return
	case errors.Is(err, catalog.ErrUnknownCourse):
		h.deps.respondDomainError(c, h.log, err, "save_quote_failed")
		return
	case err != nil:
		h.log.Warn("save quote failed", "error", err)
		response.RespondError(c, http.StatusServiceUnavailable, "store_unavailable", err)
		return
	}
	h.deps.Metrics.IncSavedQuote()
	response.RespondCreated(c, gin.H{"quote": saved})
}
