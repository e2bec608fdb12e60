package auth

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/csrf"
)

// CSRFTokenHeader is the request header clients send the token in.
const CSRFTokenHeader = "X-CSRF-Token"

const csrfContextKey = "csrf_token"

// CSRFMiddleware wraps gorilla/csrf for gin. Safe methods (GET, HEAD,
// OPTIONS, TRACE) pass through unchecked; everything else must carry a
// valid token.
func CSRFMiddleware(secret []byte, secure bool) gin.HandlerFunc {
	protect := csrf.Protect(
		secret,
		csrf.Secure(secure),
		csrf.HttpOnly(true),
		csrf.SameSite(csrf.SameSiteStrictMode),
		csrf.Path("/"),
		csrf.ErrorHandler(http.HandlerFunc(rejectCSRF)),
	)

	return func(c *gin.Context) {
		inner := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			// Stash the token so handlers can echo it to clients.
			c.Set(csrfContextKey, csrf.Token(r))
			c.Request = r
			c.Next()
		})
		protect(inner).ServeHTTP(c.Writer, c.Request)
	}
}

func rejectCSRF(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": "CSRF token invalid or missing",
	})
}

// GetCSRFToken returns the token stored by CSRFMiddleware, or "" when
// CSRF protection is not active.
func GetCSRFToken(c *gin.Context) string {
	if v, ok := c.Get(csrfContextKey); ok {
		if t, ok := v.(string); ok {
			return t
		}
	}
	return ""
}
