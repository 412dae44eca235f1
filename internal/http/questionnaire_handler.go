package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"therapy-match/internal/domain"
	"therapy-match/internal/questionnaire"
)

// QuestionnaireHandler sirve el catalogo de preguntas del test.
type QuestionnaireHandler struct {
	logger  *zap.Logger
	catalog *questionnaire.Catalog
}

func NewQuestionnaireHandler(logger *zap.Logger, catalog *questionnaire.Catalog) *QuestionnaireHandler {
	return &QuestionnaireHandler{logger: logger, catalog: catalog}
}

// ListQuestions maneja GET /personality-tests/questions[?trait=...].
func (h *QuestionnaireHandler) ListQuestions(c *gin.Context) {
	raw := strings.TrimSpace(c.Query("trait"))
	if raw == "" {
		c.JSON(http.StatusOK, gin.H{"questions": h.catalog.Items})
		return
	}
	trait, err := domain.ParseTraitCategory(raw)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"questions": h.catalog.ByTrait(trait)})
}

// GetQuestion maneja GET /personality-tests/questions/:id.
func (h *QuestionnaireHandler) GetQuestion(c *gin.Context) {
	id := strings.ToUpper(strings.TrimSpace(c.Param("id")))
	item, ok := h.catalog.Lookup(id)
	if !ok {
		respondError(c, h.logger, &domain.NotFoundError{Resource: "question", ID: id})
		return
	}
	c.JSON(http.StatusOK, item)
}
