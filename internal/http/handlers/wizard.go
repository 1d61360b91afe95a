package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"

	"github.com/yungbote/enrollment-backend/internal/http/response"
	"github.com/yungbote/enrollment-backend/internal/modules/catalog"
	"github.com/yungbote/enrollment-backend/internal/modules/pricing"
	"github.com/yungbote/enrollment-backend/internal/modules/review"
	"github.com/yungbote/enrollment-backend/internal/modules/validation"
	"github.com/yungbote/enrollment-backend/internal/modules/wizard"
	"github.com/yungbote/enrollment-backend/internal/observability"
	"github.com/yungbote/enrollment-backend/internal/platform/apierr"
	"github.com/yungbote/enrollment-backend/internal/platform/logger"
)

type WizardHandler struct {
	deps Deps
	log  *logger.Logger
}

func NewWizardHandler(deps Deps) *WizardHandler {
	return &WizardHandler{deps: deps, log: deps.Log.With("handler", "WizardHandler")}
}

// session returns the client's wizard, mounting one on first use.
func (h *WizardHandler) session(c *gin.Context) (*wizard.Session, bool) {
	w := h.deps.clientWorkspace(c)
	if s, ok := w.Wizard(); ok {
		return s, true
	}
	s, err := w.MountWizard()
	if err != nil {
		h.log.Error("mount wizard failed", "error", err)
		response.RespondError(c, http.StatusInternalServerError, "mount_wizard_failed", err)
		return nil, false
	}
	return s, true
}

func (h *WizardHandler) fail(c *gin.Context, err error) {
	if errors.Is(err, catalog.ErrUnknownCourse) {
		h.deps.respondDomainError(c, h.log, err, "wizard_failed")
		return
	}
	response.RespondAPIError(c, wizardError(err), "wizard_failed")
}

func wizardError(err error) error {
	switch {
	case errors.Is(err, wizard.ErrLocked):
		return apierr.Conflict("wizard_locked", err)
	case errors.Is(err, wizard.ErrLastStep):
		return apierr.Conflict("last_step", err)
	case errors.Is(err, wizard.ErrNotSubmittable):
		return apierr.Conflict("not_submittable", err)
	case errors.Is(err, wizard.ErrUnknownField):
		return apierr.BadRequest("unknown_field", err)
	case errors.Is(err, wizard.ErrUnavailable):
		return apierr.New(http.StatusServiceUnavailable, "wizard_unavailable", err)
	}
	return err
}

func (h *WizardHandler) Mount(c *gin.Context) {
	s, err := h.deps.clientWorkspace(c).MountWizard()
	if err != nil {
		h.log.Error("mount wizard failed", "error", err)
		response.RespondError(c, http.StatusInternalServerError, "mount_wizard_failed", err)
		return
	}
	response.RespondCreated(c, gin.H{"wizard": s.Snapshot()})
}

func (h *WizardHandler) Get(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	response.RespondOK(c, gin.H{"wizard": s.Snapshot()})
}

func (h *WizardHandler) PutPersonal(c *gin.Context) {
	var req validation.PersonalInfo
	if !bindJSON(c, &req) {
		return
	}
	s, ok := h.session(c)
	if !ok {
		return
	}
	if err := s.SetPersonal(req); err != nil {
		h.fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"wizard": s.Snapshot()})
}

func (h *WizardHandler) PutCourses(c *gin.Context) {
	var req struct {
		CourseIDs []string `json:"course_ids"`
	}
	if !bindJSON(c, &req) {
		return
	}
	sel, err := h.deps.selection(req.CourseIDs)
	if err != nil {
		response.RespondAPIError(c, err, "invalid_selection")
		return
	}
	s, ok := h.session(c)
	if !ok {
		return
	}
	q, err := s.SetSelection(sel)
	if err != nil {
		h.fail(c, err)
		return
	}
	if !q.Empty() {
		h.deps.Metrics.IncQuote("wizard", string(q.Funding))
	}
	response.RespondOK(c, gin.H{"wizard": s.Snapshot()})
}

func (h *WizardHandler) PutSchedule(c *gin.Context) {
	var req struct {
		Schedule string `json:"schedule"`
	}
	if !bindJSON(c, &req) {
		return
	}
	sched, err := wizard.ParseSchedule(req.Schedule)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_schedule", err)
		return
	}
	s, ok := h.session(c)
	if !ok {
		return
	}
	if err := s.SetSchedule(sched); err != nil {
		h.fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"wizard": s.Snapshot()})
}

func (h *WizardHandler) PutFunding(c *gin.Context) {
	var req struct {
		Funding string `json:"funding"`
	}
	if !bindJSON(c, &req) {
		return
	}
	f := pricing.FundingNone
	if req.Funding != "" {
		var err error
		if f, err = pricing.ParseFunding(req.Funding); err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_funding", err)
			return
		}
	}
	s, ok := h.session(c)
	if !ok {
		return
	}
	q, err := s.SetFunding(f)
	if err != nil {
		h.fail(c, err)
		return
	}
	if !q.Empty() {
		h.deps.Metrics.IncQuote("wizard", string(q.Funding))
	}
	response.RespondOK(c, gin.H{"wizard": s.Snapshot()})
}

func (h *WizardHandler) PutConsent(c *gin.Context) {
	var req wizard.Consent
	if !bindJSON(c, &req) {
		return
	}
	s, ok := h.session(c)
	if !ok {
		return
	}
	if err := s.SetConsent(req); err != nil {
		h.fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"wizard": s.Snapshot()})
}

// ValidateField is the blur check. A value in the body is stored first, an
// absent one re-checks what is already stored.
func (h *WizardHandler) ValidateField(c *gin.Context) {
	var req struct {
		Field string  `json:"field" binding:"required"`
		Value *string `json:"value"`
	}
	if !bindJSON(c, &req) {
		return
	}
	field := validation.Field(req.Field)
	if !validation.IsPersonalField(field) {
		h.fail(c, wizard.ErrUnknownField)
		return
	}
	s, ok := h.session(c)
	if !ok {
		return
	}
	var (
		res validation.Result
		err error
	)
	if req.Value != nil {
		res, err = s.SetPersonalField(field, *req.Value)
	} else {
		res, err = s.ValidateField(field)
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"field": field, "result": res, "errors": s.Snapshot().Errors})
}

func (h *WizardHandler) Advance(c *gin.Context) {
	h.transition(c, "advance", (*wizard.Session).Advance)
}

func (h *WizardHandler) Retreat(c *gin.Context) {
	h.transition(c, "retreat", (*wizard.Session).Retreat)
}

func (h *WizardHandler) Submit(c *gin.Context) {
	h.transition(c, "submit", (*wizard.Session).Submit)
}

func (h *WizardHandler) transition(c *gin.Context, action string, move func(*wizard.Session) (wizard.Outcome, error)) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	_, span := observability.StartSpan(c.Request.Context(), "wizard."+action)
	defer span.End()
	out, err := move(s)
	if err != nil {
		span.RecordError(err)
		h.deps.Metrics.IncTransition(action, false)
		h.fail(c, err)
		return
	}
	span.SetAttributes(
		attribute.Bool("wizard.ok", out.OK),
		attribute.Int("wizard.from_step", int(out.From)),
		attribute.Int("wizard.step", int(out.Step)),
		attribute.String("wizard.status", string(out.Status)),
	)
	h.deps.Metrics.IncTransition(action, out.OK)
	status := http.StatusOK
	if !out.OK {
		status = http.StatusUnprocessableEntity
	} else if action == "submit" {
		h.deps.Metrics.IncSubmission()
		status = http.StatusAccepted
	}
	c.JSON(status, gin.H{"outcome": out, "wizard": s.Snapshot()})
}

func (h *WizardHandler) Reset(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	h.deps.Metrics.IncTransition("reset", true)
	response.RespondOK(c, gin.H{"wizard": s.Reset()})
}

func (h *WizardHandler) Review(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	summary, err := review.Project(s.Snapshot(), h.deps.Catalog)
	if err != nil {
		h.deps.respondDomainError(c, h.log, err, "review_failed")
		return
	}
	response.RespondOK(c, gin.H{"review": summary})
}
