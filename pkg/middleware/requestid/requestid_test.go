package requestid

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestMiddlewarePropagatesID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var fromCtx, fromGin string
	router := gin.New()
	router.Use(Middleware())
	router.GET("/", func(c *gin.Context) {
		fromGin = Value(c)
		fromCtx = FromContext(c.Request.Context())
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc")
	router.ServeHTTP(w, req)

	assert.Equal(t, "abc", fromGin)
	assert.Equal(t, "abc", fromCtx)
	assert.Equal(t, "abc", w.Header().Get("X-Request-ID"))
}

func TestMiddlewareGeneratesID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Middleware())
	router.GET("/", func(c *gin.Context) {})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, w.Header().Get("X-Request-ID"), 32)
}
