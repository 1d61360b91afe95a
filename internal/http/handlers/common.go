package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/enrollment-backend/internal/http/response"
	"github.com/yungbote/enrollment-backend/internal/modules/catalog"
	"github.com/yungbote/enrollment-backend/internal/modules/pricing"
	"github.com/yungbote/enrollment-backend/internal/observability"
	"github.com/yungbote/enrollment-backend/internal/platform/apierr"
	"github.com/yungbote/enrollment-backend/internal/platform/ctxutil"
	"github.com/yungbote/enrollment-backend/internal/platform/logger"
	"github.com/yungbote/enrollment-backend/internal/realtime"
	"github.com/yungbote/enrollment-backend/internal/workspace"
)

// Deps is shared by every handler.
type Deps struct {
	Log        *logger.Logger
	Catalog    *catalog.Catalog
	Workspaces *workspace.Registry
	Hub        *realtime.SSEHub
	Metrics    *observability.Metrics
	// StrictInvariants turns a catalog/selection mismatch into a panic so the
	// recovery middleware surfaces it.
	StrictInvariants bool
}

// clientWorkspace returns the workspace of the calling client.
func (d Deps) clientWorkspace(c *gin.Context) *workspace.Workspace {
	id := ""
	if cd := ctxutil.GetClientData(c.Request.Context()); cd != nil {
		id = cd.ClientID
	}
	if id == "" {
		id = workspace.NewClientID()
		c.Writer.Header().Set("X-Client-Id", id)
	}
	w := d.Workspaces.Get(id)
	d.Metrics.SetWorkspaces(d.Workspaces.Len())
	return w
}

// selection validates ids against the catalog before they reach the domain.
func (d Deps) selection(ids []string) (pricing.Selection, error) {
	sel := pricing.NewSelection(ids...)
	for _, id := range sel.IDs() {
		if !d.Catalog.Has(id) {
			return pricing.Selection{}, apierr.BadRequest("unknown_course", fmt.Errorf("unknown course %q", id))
		}
	}
	return sel, nil
}

// respondDomainError maps an error coming out of a domain call. Unknown courses
// at this point mean the catalog and a stored selection disagree.
func (d Deps) respondDomainError(c *gin.Context, log *logger.Logger, err error, fallbackCode string) {
	if errors.Is(err, catalog.ErrUnknownCourse) {
		d.Metrics.IncPricingConfigError()
		log.Error("catalog invariant violated", "error", err, "path", c.FullPath())
		if d.StrictInvariants {
			panic(err)
		}
		response.RespondError(c, http.StatusInternalServerError, "configuration_error", err)
		return
	}
	response.RespondAPIError(c, err, fallbackCode)
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return false
	}
	return true
}
