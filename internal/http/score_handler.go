package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"therapy-match/internal/domain"
)

// ScoreHandler maneja los puntajes definitivos de pacientes y terapeutas.
type ScoreHandler struct {
	logger *zap.Logger
	tests  PersonalityTests
}

func NewScoreHandler(logger *zap.Logger, tests PersonalityTests) *ScoreHandler {
	return &ScoreHandler{logger: logger, tests: tests}
}

type submitScoresRequest struct {
	Extroversion      []int `json:"extroversion" binding:"dive,min=1,max=5"`
	Openness          []int `json:"openness" binding:"dive,min=1,max=5"`
	Neuroticism       []int `json:"neuroticism" binding:"dive,min=1,max=5"`
	Conscientiousness []int `json:"conscientiousness" binding:"dive,min=1,max=5"`
	Agreeableness     []int `json:"agreeableness" binding:"dive,min=1,max=5"`
}

func (r submitScoresRequest) aggregate() domain.AggregateScores {
	return domain.AggregateScores{
		Extroversion:      r.Extroversion,
		Openness:          r.Openness,
		Neuroticism:       r.Neuroticism,
		Conscientiousness: r.Conscientiousness,
		Agreeableness:     r.Agreeableness,
	}
}

// SubmitPatientScores maneja POST /patients/:id/personality-scores.
func (h *ScoreHandler) SubmitPatientScores(c *gin.Context) {
	h.submit(c, domain.SubjectPatient)
}

// SubmitTherapistScores maneja POST /therapists/:id/personality-scores.
func (h *ScoreHandler) SubmitTherapistScores(c *gin.Context) {
	h.submit(c, domain.SubjectTherapist)
}

// GetPatientScores maneja GET /patients/:id/personality-scores.
func (h *ScoreHandler) GetPatientScores(c *gin.Context) {
	h.get(c, domain.SubjectPatient)
}

// GetTherapistScores maneja GET /therapists/:id/personality-scores.
func (h *ScoreHandler) GetTherapistScores(c *gin.Context) {
	h.get(c, domain.SubjectTherapist)
}

// MatchTherapists maneja GET /patients/:id/matches?limit=N.
func (h *ScoreHandler) MatchTherapists(c *gin.Context) {
	patientID, ok := parseIDParam(c)
	if !ok {
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "limit must be a positive integer"})
			return
		}
		limit = n
	}
	matches, err := h.tests.MatchTherapists(c.Request.Context(), patientID, limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"matches": matches})
}

func (h *ScoreHandler) submit(c *gin.Context, kind domain.SubjectKind) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req submitScoresRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid submit scores request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"detail": bindingDetail(err)})
		return
	}
	record, err := h.tests.SubmitScores(c.Request.Context(), domain.SubjectRef{Kind: kind, ID: id}, req.aggregate())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

func (h *ScoreHandler) get(c *gin.Context, kind domain.SubjectKind) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	record, err := h.tests.GetSubjectScores(c.Request.Context(), domain.SubjectRef{Kind: kind, ID: id})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, record)
}
