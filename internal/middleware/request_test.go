package middleware_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/epeers/portools/internal/middleware"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter() *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID())
	r.PUT("/upload", middleware.RequireContentLength(10), func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.String(http.StatusInternalServerError, err.Error())
			return
		}
		c.String(http.StatusOK, string(body))
	})
	return r
}

func TestRequireContentLength(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		header     string
		unknownLen bool
		want       int
	}{
		{"ok", "abc", "", false, http.StatusOK},
		{"at limit", "0123456789", "", false, http.StatusOK},
		{"missing", "abc", "", true, http.StatusLengthRequired},
		{"malformed", "abc", "three", false, http.StatusBadRequest},
		{"empty body", "", "", false, http.StatusBadRequest},
		{"too large", "0123456789a", "", false, http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPut, "/upload", strings.NewReader(tt.body))
			if tt.unknownLen {
				req.ContentLength = -1
			}
			if tt.header != "" {
				req.Header.Set("Content-Length", tt.header)
			}
			w := httptest.NewRecorder()
			newRouter().ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Errorf("expected status %d, got %d: %s", tt.want, w.Code, w.Body.String())
			}
			if tt.want == http.StatusOK && w.Body.String() != tt.body {
				t.Errorf("expected body %q to pass through, got %q", tt.body, w.Body.String())
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	req := httptest.NewRequest(http.MethodPut, "/upload", strings.NewReader("abc"))
	w := httptest.NewRecorder()
	newRouter().ServeHTTP(w, req)
	if w.Header().Get(middleware.RequestIDHeader) == "" {
		t.Error("expected a generated request id")
	}

	req = httptest.NewRequest(http.MethodPut, "/upload", strings.NewReader("abc"))
	req.Header.Set(middleware.RequestIDHeader, "caller-id")
	w = httptest.NewRecorder()
	newRouter().ServeHTTP(w, req)
	if got := w.Header().Get(middleware.RequestIDHeader); got != "caller-id" {
		t.Errorf("expected the caller's request id to be echoed, got %q", got)
	}
}
