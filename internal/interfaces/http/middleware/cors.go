package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// CORSConfig holds configuration for CORS middleware.
type CORSConfig struct {
	// AllowedOrigins lists exact origins, "*" for any, or "*.example.com"
	// patterns when AllowWildcard is set.
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	ExposedHeaders []string
	// MaxAge is how long, in seconds, preflight results may be cached.
	MaxAge        int
	AllowWildcard bool
}

// DefaultCORSConfig allows no origin until one is configured.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowedOrigins: []string{},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", HeaderRequestID},
		ExposedHeaders: []string{HeaderRequestID, "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		MaxAge:         86400,
		AllowWildcard:  true,
	}
}

// CORS returns middleware that answers preflight requests and sets the
// Access-Control headers for allowed origins. Disallowed origins get no CORS
// headers and the browser blocks the response.
func CORS(config CORSConfig) gin.HandlerFunc {
	allowedMethods := strings.Join(config.AllowedMethods, ", ")
	allowedHeaders := strings.Join(config.AllowedHeaders, ", ")
	exposedHeaders := strings.Join(config.ExposedHeaders, ", ")
	maxAge := strconv.Itoa(config.MaxAge)

	originSet := make(map[string]bool, len(config.AllowedOrigins))
	var suffixes []string
	allowAll := false
	for _, origin := range config.AllowedOrigins {
		switch {
		case origin == "*":
			allowAll = true
		case config.AllowWildcard && strings.HasPrefix(origin, "*."):
			suffixes = append(suffixes, strings.ToLower(origin[1:]))
		default:
			originSet[strings.ToLower(origin)] = true
		}
	}

	allowed := func(origin string) bool {
		o := strings.ToLower(origin)
		if allowAll || originSet[o] {
			return true
		}
		for _, s := range suffixes {
			if strings.HasSuffix(o, s) {
				return true
			}
		}
		return false
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin == "" || !allowed(origin) {
			c.Next()
			return
		}

		h := c.Writer.Header()
		h.Add("Vary", "Origin")
		if allowAll {
			h.Set("Access-Control-Allow-Origin", "*")
		} else {
			h.Set("Access-Control-Allow-Origin", origin)
		}

		if c.Request.Method == http.MethodOptions {
			h.Set("Access-Control-Allow-Methods", allowedMethods)
			h.Set("Access-Control-Allow-Headers", allowedHeaders)
			if config.MaxAge > 0 {
				h.Set("Access-Control-Max-Age", maxAge)
			}
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		if exposedHeaders != "" {
			h.Set("Access-Control-Expose-Headers", exposedHeaders)
		}
		c.Next()
	}
}

//Personal.AI order the ending
