package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/enrollment-backend/internal/http/response"
	"github.com/yungbote/enrollment-backend/internal/platform/logger"
	"github.com/yungbote/enrollment-backend/internal/workspace"
)

type RealtimeHandler struct {
	deps Deps
	log  *logger.Logger
}

func NewRealtimeHandler(deps Deps) *RealtimeHandler {
	return &RealtimeHandler{deps: deps, log: deps.Log.With("handler", "RealtimeHandler")}
}

// SSEStream subscribes the caller to its own client channel. Notifications,
// wizard progress, theme and carousel events all arrive here.
func (h *RealtimeHandler) SSEStream(c *gin.Context) {
	if h.deps.Hub == nil {
		response.RespondError(c, http.StatusServiceUnavailable, "realtime_unavailable", nil)
		return
	}
	w := h.deps.clientWorkspace(c)
	client := h.deps.Hub.NewSSEClient(w.ClientID)
	h.deps.Hub.AddChannel(client, workspace.ChannelFor(w.ClientID))
	h.log.Debug("SSE stream open", "client_id", w.ClientID, "sse_client", client.ID.String())

	h.deps.Hub.ServeHTTP(c.Writer, c.Request, client)
	h.deps.Hub.CloseClient(client)
}

func (h *RealtimeHandler) Hide(c *gin.Context) {
	h.deps.clientWorkspace(c).Notifications.Hide()
	c.Status(http.StatusNoContent)
}

func (h *RealtimeHandler) Recent(c *gin.Context) {
	center := h.deps.clientWorkspace(c).Notifications
	cur, visible := center.Current()
	payload := gin.H{"notifications": center.Recent()}
	if visible {
		payload["current"] = cur
	}
	response.RespondOK(c, payload)
}
