package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"therapy-match/internal/domain"
	"therapy-match/internal/service"
)

type sessionManager interface {
	Start(ctx context.Context, clientKey string) (service.AnonymousSession, error)
	End(ctx context.Context, token string) error
	Profile(ctx context.Context, anonymousPatientID uuid.UUID) (domain.AnonymousPatient, error)
	UpdateIntake(ctx context.Context, anonymousPatientID uuid.UUID, patch domain.IntakePatch) (domain.AnonymousPatient, error)
}

// SessionHandler abre sesiones anonimas y entrega la cookie.
type SessionHandler struct {
	logger       *zap.Logger
	sessions     sessionManager
	cookieSecure bool
}

func NewSessionHandler(logger *zap.Logger, sessions sessionManager, cookieSecure bool) *SessionHandler {
	return &SessionHandler{logger: logger, sessions: sessions, cookieSecure: cookieSecure}
}

// StartSession maneja POST /anonymous-sessions.
func (h *SessionHandler) StartSession(c *gin.Context) {
	session, err := h.sessions.Start(c.Request.Context(), c.ClientIP())
	if err != nil {
		if errors.Is(err, service.ErrSessionRateLimited) {
			c.JSON(http.StatusTooManyRequests, gin.H{"detail": "too many requests"})
			return
		}
		respondError(c, h.logger, err)
		return
	}

	maxAge := int(time.Until(session.ExpiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(anonymousSessionCookie, session.Token, maxAge, "/", "", h.cookieSecure, true)
	c.JSON(http.StatusCreated, gin.H{
		"anonymous_patient_id": session.Patient.ID,
		"expires_at":           session.ExpiresAt,
	})
}

// EndSession maneja DELETE /anonymous-sessions.
func (h *SessionHandler) EndSession(c *gin.Context) {
	token := sessionToken(c)
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "missing anonymous session"})
		return
	}
	if err := h.sessions.End(c.Request.Context(), token); err != nil {
		if errors.Is(err, service.ErrSessionTokenInvalid) || errors.Is(err, service.ErrSessionTokenExpired) {
			c.JSON(http.StatusUnauthorized, gin.H{"detail": "invalid anonymous session"})
			return
		}
		respondError(c, h.logger, err)
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(anonymousSessionCookie, "", -1, "/", "", h.cookieSecure, true)
	c.Status(http.StatusNoContent)
}

// intakePatchRequest acepta solo los campos del perfil; un campo ausente o null no cambia.
type intakePatchRequest struct {
	TherapyNeeds                   *[]string `json:"therapy_needs" binding:"omitempty,max=20,dive,required,max=100"`
	Description                    *string   `json:"description" binding:"omitempty,max=2000"`
	Age                            *int      `json:"age" binding:"omitempty,min=10,max=120"`
	Gender                         *string   `json:"gender" binding:"omitempty,oneof=male female non_binary prefer_not_to_say other"`
	IsLGBTQTherapistPreference     *bool     `json:"is_lgbtq_therapist_preference"`
	IsReligiousTherapistPreference *bool     `json:"is_religious_therapist_preference"`
}

func (r intakePatchRequest) toPatch() domain.IntakePatch {
	patch := domain.IntakePatch{
		TherapyNeeds:                   r.TherapyNeeds,
		Description:                    r.Description,
		Age:                            r.Age,
		IsLGBTQTherapistPreference:     r.IsLGBTQTherapistPreference,
		IsReligiousTherapistPreference: r.IsReligiousTherapistPreference,
	}
	if r.Gender != nil {
		g := domain.Gender(*r.Gender)
		patch.Gender = &g
	}
	return patch
}

// GetSession maneja GET /anonymous-sessions.
func (h *SessionHandler) GetSession(c *gin.Context) {
	patient, ok := GetAnonymousPatient(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "missing anonymous session"})
		return
	}
	profile, err := h.sessions.Profile(c.Request.Context(), patient.ID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UpdateIntake maneja PATCH /anonymous-sessions. Rechaza campos desconocidos.
func (h *SessionHandler) UpdateIntake(c *gin.Context) {
	patient, ok := GetAnonymousPatient(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "missing anonymous session"})
		return
	}

	var req intakePatchRequest
	dec := json.NewDecoder(c.Request.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid request body"})
		return
	}
	if err := binding.Validator.ValidateStruct(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": bindingDetail(err)})
		return
	}

	updated, err := h.sessions.UpdateIntake(c.Request.Context(), patient.ID, req.toPatch())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}
