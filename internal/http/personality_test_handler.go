package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"therapy-match/internal/domain"
)

// PersonalityTests es lo que los handlers necesitan del servicio de tests.
type PersonalityTests interface {
	StartAnonymousTest(ctx context.Context, anonymousPatientID uuid.UUID) (domain.PersonalityTest, error)
	GetAnonymousTest(ctx context.Context, anonymousPatientID uuid.UUID) (domain.PersonalityTest, error)
	AnswerQuestion(ctx context.Context, testID uuid.UUID, answer domain.RawAnswer) (domain.PersonalityTest, error)
	PreviewScores(ctx context.Context, testID uuid.UUID) (domain.Scores, error)
	SubmitScores(ctx context.Context, ref domain.SubjectRef, aggregate domain.AggregateScores) (domain.PersonalityTestScore, error)
	FinalizeAnonymousTest(ctx context.Context, testID uuid.UUID, ref domain.SubjectRef) (domain.PersonalityTestScore, error)
	GetSubjectScores(ctx context.Context, ref domain.SubjectRef) (domain.PersonalityTestScore, error)
	MatchTherapists(ctx context.Context, patientID uuid.UUID, limit int) ([]domain.TherapistMatch, error)
}

// PersonalityTestHandler maneja el test anonimo de la sesion actual.
type PersonalityTestHandler struct {
	logger *zap.Logger
	tests  PersonalityTests
}

func NewPersonalityTestHandler(logger *zap.Logger, tests PersonalityTests) *PersonalityTestHandler {
	return &PersonalityTestHandler{logger: logger, tests: tests}
}

type personalityTestResponse struct {
	ID       uuid.UUID                    `json:"id"`
	State    domain.TestState             `json:"state"`
	Answers  domain.TraitAnswerMap        `json:"answers"`
	Progress map[domain.TraitCategory]int `json:"progress"`
}

func newPersonalityTestResponse(test domain.PersonalityTest) personalityTestResponse {
	return personalityTestResponse{
		ID:       test.ID,
		State:    test.State(),
		Answers:  test.Answers.Normalized(),
		Progress: test.Answers.Progress(),
	}
}

// StartTest maneja POST /anonymous-sessions/personality-tests.
func (h *PersonalityTestHandler) StartTest(c *gin.Context) {
	patient, ok := GetAnonymousPatient(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "missing anonymous session"})
		return
	}
	test, err := h.tests.StartAnonymousTest(c.Request.Context(), patient.ID)
	if err != nil {
		// El duplicado del test anonimo se reporta como 400.
		if errors.Is(err, domain.ErrConflict) {
			c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
			return
		}
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, newPersonalityTestResponse(test))
}

// GetTest maneja GET /anonymous-sessions/personality-tests.
func (h *PersonalityTestHandler) GetTest(c *gin.Context) {
	test, ok := h.currentTest(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, newPersonalityTestResponse(test))
}

// AnswerQuestion maneja PATCH /anonymous-sessions/personality-tests.
func (h *PersonalityTestHandler) AnswerQuestion(c *gin.Context) {
	var req struct {
		ID       string `json:"id" binding:"required"`
		Category string `json:"category" binding:"required,trait"`
		Score    int    `json:"score" binding:"required,min=1,max=5"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid answer request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"detail": bindingDetail(err)})
		return
	}

	test, ok := h.currentTest(c)
	if !ok {
		return
	}
	updated, err := h.tests.AnswerQuestion(c.Request.Context(), test.ID, domain.RawAnswer{
		ID:       req.ID,
		Category: domain.TraitCategory(req.Category),
		Score:    req.Score,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, newPersonalityTestResponse(updated))
}

// PreviewScores maneja GET /anonymous-sessions/personality-tests/scores.
func (h *PersonalityTestHandler) PreviewScores(c *gin.Context) {
	test, ok := h.currentTest(c)
	if !ok {
		return
	}
	scores, err := h.tests.PreviewScores(c.Request.Context(), test.ID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, scores)
}

// FinalizeForPatient maneja POST /patients/:id/personality-scores/from-anonymous-test.
func (h *PersonalityTestHandler) FinalizeForPatient(c *gin.Context) {
	patientID, ok := parseIDParam(c)
	if !ok {
		return
	}
	test, ok := h.currentTest(c)
	if !ok {
		return
	}
	record, err := h.tests.FinalizeAnonymousTest(c.Request.Context(), test.ID, domain.PatientRef(patientID))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

// currentTest carga el test de la sesion; si falla ya escribio la respuesta.
func (h *PersonalityTestHandler) currentTest(c *gin.Context) (domain.PersonalityTest, bool) {
	patient, ok := GetAnonymousPatient(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "missing anonymous session"})
		return domain.PersonalityTest{}, false
	}
	test, err := h.tests.GetAnonymousTest(c.Request.Context(), patient.ID)
	if err != nil {
		respondError(c, h.logger, err)
		return domain.PersonalityTest{}, false
	}
	return test, true
}

func parseIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid id"})
		return uuid.Nil, false
	}
	return id, true
}
