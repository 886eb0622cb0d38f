package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// HeaderAPIKey carries the API key. "Authorization: Bearer <key>" is also
// accepted.
const HeaderAPIKey = "X-API-Key"

// apiKeyIDKey is the gin context key of the authenticated key id.
const apiKeyIDKey = "api_key_id"

// AuthConfig holds configuration for the API key middleware.
type AuthConfig struct {
	// Keys are the accepted API keys. An empty list disables authentication.
	Keys []string
	// SkipPaths bypass authentication.
	SkipPaths []string
}

type apiKey struct {
	digest [sha256.Size]byte
	id     string
}

// APIKeyAuth rejects requests without one of the configured keys with 401.
// Keys are compared by digest in constant time; only a short key id is kept
// on the context for logging.
func APIKeyAuth(config AuthConfig) gin.HandlerFunc {
	keys := make([]apiKey, 0, len(config.Keys))
	for _, k := range config.Keys {
		if k == "" {
			continue
		}
		d := sha256.Sum256([]byte(k))
		keys = append(keys, apiKey{digest: d, id: hex.EncodeToString(d[:4])})
	}

	return func(c *gin.Context) {
		if len(keys) == 0 || shouldSkip(config.SkipPaths, c.Request.URL.Path) {
			c.Next()
			return
		}
		presented := extractAPIKey(c.Request)
		if presented == "" {
			abortUnauthorized(c, "authentication required")
			return
		}
		d := sha256.Sum256([]byte(presented))
		for _, k := range keys {
			if subtle.ConstantTimeCompare(d[:], k.digest[:]) == 1 {
				c.Set(apiKeyIDKey, k.id)
				c.Next()
				return
			}
		}
		abortUnauthorized(c, "invalid API key")
	}
}

// GetAPIKeyID returns the id of the key that authenticated the request, or
// "" for anonymous requests.
func GetAPIKeyID(c *gin.Context) string {
	return c.GetString(apiKeyIDKey)
}

func shouldSkip(paths []string, path string) bool {
	for _, skip := range paths {
		if path == skip || strings.HasPrefix(path, skip+"/") {
			return true
		}
	}
	return false
}

// extractAPIKey reads X-API-Key, falling back to a bearer token.
func extractAPIKey(r *http.Request) string {
	if key := strings.TrimSpace(r.Header.Get(HeaderAPIKey)); key != "" {
		return key
	}
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func abortUnauthorized(c *gin.Context, message string) {
	c.Header("WWW-Authenticate", `Bearer realm="simheat"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"code":       "UNAUTHORIZED",
		"message":    message,
		"request_id": GetRequestID(c),
	})
}

//Personal.AI order the ending
