package http

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"therapy-match/internal/domain"
)

// respondError traduce errores de dominio a status HTTP con cuerpo {"detail": ...}.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrIncompleteInput):
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
	case errors.Is(err, domain.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"detail": err.Error()})
	case errors.Is(err, domain.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"detail": err.Error()})
	default:
		logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal server error"})
	}
}

// bindingDetail resume los errores del validator en un mensaje legible.
func bindingDetail(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid request body"
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fieldMessage(fe))
	}
	return strings.Join(parts, "; ")
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "trait":
		return fmt.Sprintf("%s must be one of extroversion, openness, neuroticism, conscientiousness, agreeableness", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "min", "max":
		switch {
		case fe.Kind() == reflect.String || fe.Kind() == reflect.Slice:
			return fmt.Sprintf("%s must have a length between 1 and %s", field, fe.Param())
		case field == "age":
			return fmt.Sprintf("age must be between %d and %d", domain.MinPatientAge, domain.MaxPatientAge)
		default:
			return fmt.Sprintf("%s must be between %d and %d", field, domain.MinAnswerScore, domain.MaxAnswerScore)
		}
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
