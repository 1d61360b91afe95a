package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/enrollment-backend/internal/platform/ctxutil"
)

func identityRouter(seen *string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachTraceContext(), AttachClientIdentity())
	r.GET("/whoami", func(c *gin.Context) {
		if cd := ctxutil.GetClientData(c.Request.Context()); cd != nil {
			*seen = cd.ClientID
		}
		c.Status(http.StatusOK)
	})
	return r
}

func TestClientIdentityKeepsValidHeader(t *testing.T) {
	t.Parallel()
	var seen string
	r := identityRouter(&seen)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set(HeaderClientID, "browser-12345678")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if seen != "browser-12345678" || rec.Header().Get(HeaderClientID) != "browser-12345678" {
		t.Fatalf("client id: seen=%q header=%q", seen, rec.Header().Get(HeaderClientID))
	}
	if rec.Header().Get(headerRequestID) == "" || rec.Header().Get(headerTraceID) == "" {
		t.Fatalf("trace headers missing")
	}
}

func TestClientIdentityFromQueryAndGenerated(t *testing.T) {
	t.Parallel()
	var seen string
	r := identityRouter(&seen)

	req := httptest.NewRequest(http.MethodGet, "/whoami?client_id=stream-client-01", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)
	if seen != "stream-client-01" {
		t.Fatalf("query client id: got=%q", seen)
	}

	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set(HeaderClientID, "bad id!")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if seen == "bad id!" || len(seen) != 36 || rec.Header().Get(HeaderClientID) != seen {
		t.Fatalf("expected a generated uuid, got=%q", seen)
	}
}
