// Package requestutil holds small helpers shared by handlers and middleware.
package requestutil

import (
	"crypto/subtle"
	"net/http"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var requestIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

// SanitizeRequestID keeps a well-formed incoming request ID and generates one otherwise.
func SanitizeRequestID(incoming string) string {
	if requestIDPattern.MatchString(incoming) {
		return incoming
	}
	return NewRequestID()
}

// NewRequestID returns a random UUID.
func NewRequestID() string {
	return uuid.NewString()
}

// ClientIP prefers the first X-Forwarded-For hop over RemoteAddr.
func ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if first, _, _ := strings.Cut(r.Header.Get("X-Forwarded-For"), ","); strings.TrimSpace(first) != "" {
		return strings.TrimSpace(first)
	}
	return r.RemoteAddr
}

// BearerMatches reports whether the request carries "Authorization: Bearer <secret>".
// An empty secret never matches.
func BearerMatches(r *http.Request, secret string) bool {
	if r == nil || secret == "" {
		return false
	}
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(strings.TrimSpace(token)), []byte(secret)) == 1
}
