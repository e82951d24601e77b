package requestinfo

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestMiddlewarePropagatesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())

	var got Info
	r.GET("/ping", func(c *gin.Context) {
		got = FromContext(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(HeaderRequestID, "req-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "GET", got.Method)
	assert.Equal(t, "req-123", got.APIRequestID)
	assert.NotEmpty(t, got.InvocationID)
	assert.Equal(t, "req-123", w.Header().Get(HeaderRequestID))
}

func TestMiddlewareGeneratesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())

	var got Info
	r.POST("/orders", func(c *gin.Context) {
		got = FromContext(c.Request.Context())
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/orders", nil))

	assert.NotEmpty(t, got.APIRequestID)
	assert.NotEqual(t, got.APIRequestID, got.InvocationID)
}

func TestFromContextWithoutInfo(t *testing.T) {
	assert.Equal(t, Info{}, FromContext(httptest.NewRequest(http.MethodGet, "/", nil).Context()))
}
