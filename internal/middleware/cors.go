package middleware

import (
	"os"
	"strings"

	"github.com/gin-gonic/gin"
)

// wildcardOrigin represents an allowed-origin pattern of the form
// "https://*.example.com". Exactly one wildcard, immediately after the
// scheme and followed by a dot, matching a single subdomain label.
type wildcardOrigin struct {
	scheme string
	suffix string
}

// parseWildcardOrigin parses an origin pattern containing a wildcard.
// Returns nil if the pattern is not a valid single-subdomain wildcard.
func parseWildcardOrigin(pattern string) *wildcardOrigin {
	var scheme string
	switch {
	case strings.HasPrefix(pattern, "https://"):
		scheme = "https://"
	case strings.HasPrefix(pattern, "http://"):
		scheme = "http://"
	default:
		return nil
	}

	rest := strings.TrimPrefix(pattern, scheme)
	if !strings.HasPrefix(rest, "*.") {
		return nil
	}

	suffix := rest[1:] // keep the leading dot
	domain := rest[2:]
	if domain == "" || strings.Contains(domain, "*") {
		return nil
	}
	// Require at least two labels after the wildcard ("example.com"),
	// so "https://*.com" is rejected.
	if len(strings.Split(domain, ".")) < 2 {
		return nil
	}

	return &wildcardOrigin{scheme: scheme, suffix: suffix}
}

// matches reports whether origin matches the wildcard pattern.
// Only a single subdomain label may replace the wildcard.
func (w *wildcardOrigin) matches(origin string) bool {
	if !strings.HasPrefix(origin, w.scheme) {
		return false
	}
	host := strings.TrimPrefix(origin, w.scheme)
	if !strings.HasSuffix(host, w.suffix) {
		return false
	}
	label := strings.TrimSuffix(host, w.suffix)
	if label == "" || strings.Contains(label, ".") || strings.Contains(label, "/") {
		return false
	}
	return true
}

// CORS middleware to handle cross-origin requests
// Reads CORS_ALLOWED_ORIGINS environment variable to restrict origins
// If not set, defaults to "*" (allow all origins)
// Entries may be exact origins or single-subdomain wildcards
// (e.g. "https://*.moodhabit.pages.dev").
func CORS() gin.HandlerFunc {
	allowedOriginsStr := os.Getenv("CORS_ALLOWED_ORIGINS")
	allowAll := allowedOriginsStr == ""

	var exactOrigins []string
	var wildcards []*wildcardOrigin
	if !allowAll {
		for _, origin := range strings.Split(allowedOriginsStr, ",") {
			origin = strings.TrimSpace(origin)
			if wc := parseWildcardOrigin(origin); wc != nil {
				wildcards = append(wildcards, wc)
			} else {
				exactOrigins = append(exactOrigins, origin)
			}
		}
	}

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		if allowAll {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		} else {
			allowed := false
			for _, allowedOrigin := range exactOrigins {
				if origin == allowedOrigin {
					allowed = true
					break
				}
			}
			if !allowed {
				for _, wc := range wildcards {
					if wc.matches(origin) {
						allowed = true
						break
					}
				}
			}

			if allowed {
				c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
				c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			} else {
				// Origin not allowed, but still need to set headers for preflight
				if c.Request.Method == "OPTIONS" {
					c.AbortWithStatus(403)
					return
				}
			}
		}

		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
