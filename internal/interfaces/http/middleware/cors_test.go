package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw...)
	ok := func(c *gin.Context) { c.String(http.StatusOK, "ok") }
	r.GET("/api/v1/datasets", ok)
	r.POST("/api/v1/heatmaps", ok)
	r.OPTIONS("/api/v1/heatmaps", ok)
	return r
}

func serve(r http.Handler, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestCORS_Preflight(t *testing.T) {
	t.Parallel()
	cfg := DefaultCORSConfig()
	cfg.AllowedOrigins = []string{"https://app.example.com"}
	r := newEngine(CORS(cfg))

	w := serve(r, http.MethodOptions, "/api/v1/heatmaps", map[string]string{
		"Origin":                        "https://app.example.com",
		"Access-Control-Request-Method": "POST",
	})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
	assert.Equal(t, "86400", w.Header().Get("Access-Control-Max-Age"))
	assert.Empty(t, w.Body.String())
}

func TestCORS_Origins(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		allowed []string
		origin  string
		want    string
	}{
		{name: "exact", allowed: []string{"https://a.com"}, origin: "https://a.com", want: "https://a.com"},
		{name: "case insensitive", allowed: []string{"https://A.com"}, origin: "https://a.com", want: "https://a.com"},
		{name: "disallowed", allowed: []string{"https://a.com"}, origin: "https://evil.com", want: ""},
		{name: "any", allowed: []string{"*"}, origin: "https://x.org", want: "*"},
		{name: "subdomain", allowed: []string{"*.example.com"}, origin: "https://lab.example.com", want: "https://lab.example.com"},
		{name: "no origin", allowed: []string{"*"}, origin: "", want: ""},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultCORSConfig()
			cfg.AllowedOrigins = tt.allowed
			headers := map[string]string{}
			if tt.origin != "" {
				headers["Origin"] = tt.origin
			}

			w := serve(newEngine(CORS(cfg)), http.MethodGet, "/api/v1/datasets", headers)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.want, w.Header().Get("Access-Control-Allow-Origin"))
			if tt.want != "" {
				assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), HeaderRequestID)
			}
		})
	}
}

//Personal.AI order the ending
