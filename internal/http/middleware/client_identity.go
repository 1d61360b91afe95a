package middleware

import (
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/enrollment-backend/internal/platform/ctxutil"
)

const (
	HeaderClientID = "X-Client-Id"
	queryClientID  = "client_id"
)

var clientIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{8,64}$`)

// AttachClientIdentity resolves the browser profile id. EventSource cannot set
// headers, so the query string is accepted too. Unknown or malformed ids are
// replaced with a fresh one that the client is expected to keep.
func AttachClientIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(HeaderClientID))
		if id == "" {
			id = strings.TrimSpace(c.Query(queryClientID))
		}
		if !clientIDPattern.MatchString(id) {
			id = uuid.New().String()
		}
		ctx := ctxutil.WithClientData(c.Request.Context(), &ctxutil.ClientData{ClientID: id})
		c.Request = c.Request.WithContext(ctx)
		c.Set("client_id", id)
		c.Writer.Header().Set(HeaderClientID, id)
		c.Next()
	}
}
