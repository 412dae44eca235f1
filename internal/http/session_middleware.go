package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"therapy-match/internal/domain"
	"therapy-match/internal/service"
)

const (
	anonymousSessionCookie = "anonymous_session"
	anonymousPatientKey    = "anonymous_patient"
)

// SessionResolver traduce un token de sesion en el paciente anonimo.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (domain.AnonymousPatient, error)
}

// AnonymousSessionMiddleware exige una sesion anonima valida (cookie o Bearer).
func AnonymousSessionMiddleware(sessions SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if sessions == nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "sessions not configured"})
			return
		}

		token := sessionToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "missing anonymous session"})
			return
		}

		patient, err := sessions.Resolve(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, service.ErrSessionTokenInvalid) || errors.Is(err, service.ErrSessionTokenExpired) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "invalid anonymous session"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "could not resolve session"})
			return
		}

		c.Set(anonymousPatientKey, patient)
		c.Next()
	}
}

// GetAnonymousPatient obtiene el paciente anonimo resuelto por el middleware.
func GetAnonymousPatient(c *gin.Context) (domain.AnonymousPatient, bool) {
	val, ok := c.Get(anonymousPatientKey)
	if !ok {
		return domain.AnonymousPatient{}, false
	}
	patient, ok := val.(domain.AnonymousPatient)
	return patient, ok
}

func sessionToken(c *gin.Context) string {
	if cookie, err := c.Cookie(anonymousSessionCookie); err == nil && strings.TrimSpace(cookie) != "" {
		return strings.TrimSpace(cookie)
	}
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(header) > len("Bearer ") && strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return strings.TrimSpace(header[len("Bearer "):])
	}
	return ""
}
