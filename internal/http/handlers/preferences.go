package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/enrollment-backend/internal/http/response"
	"github.com/yungbote/enrollment-backend/internal/modules/preferences"
	"github.com/yungbote/enrollment-backend/internal/platform/logger"
)

type PreferencesHandler struct {
	deps Deps
	log  *logger.Logger
}

func NewPreferencesHandler(deps Deps) *PreferencesHandler {
	return &PreferencesHandler{deps: deps, log: deps.Log.With("handler", "PreferencesHandler")}
}

func (h *PreferencesHandler) storeUnavailable(c *gin.Context, op string, err error) {
	h.log.Warn("preference store unavailable", "op", op, "error", err)
	response.RespondError(c, http.StatusServiceUnavailable, "store_unavailable", err)
}

func (h *PreferencesHandler) GetTheme(c *gin.Context) {
	w := h.deps.clientWorkspace(c)
	theme, err := w.Preferences.Theme(c.Request.Context())
	if err != nil {
		h.storeUnavailable(c, "get_theme", err)
		return
	}
	response.RespondOK(c, gin.H{"theme": theme})
}

func (h *PreferencesHandler) PutTheme(c *gin.Context) {
	var req struct {
		Theme string `json:"theme" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	theme, err := preferences.ParseTheme(req.Theme)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_theme", err)
		return
	}
	w := h.deps.clientWorkspace(c)
	if err := w.Preferences.SetTheme(c.Request.Context(), theme); err != nil {
		h.storeUnavailable(c, "set_theme", err)
		return
	}
	response.RespondOK(c, gin.H{"theme": theme})
}

func (h *PreferencesHandler) ToggleTheme(c *gin.Context) {
	w := h.deps.clientWorkspace(c)
	theme, err := w.Preferences.Toggle(c.Request.Context())
	if err != nil {
		h.storeUnavailable(c, "toggle_theme", err)
		return
	}
	response.RespondOK(c, gin.H{"theme": theme})
}

func (h *PreferencesHandler) ListQuotes(c *gin.Context) {
	w := h.deps.clientWorkspace(c)
	quotes, err := w.Preferences.SavedQuotes(c.Request.Context())
	if err != nil {
		h.storeUnavailable(c, "list_quotes", err)
		return
	}
	response.RespondOK(c, gin.H{"quotes": quotes})
}
