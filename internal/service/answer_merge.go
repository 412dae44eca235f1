package service

import (
	"therapy-match/internal/domain"
)

// MergeAnswer aplica upsert por id sobre el set de la categoria de la respuesta.
// Un id existente se reemplaza en su misma posicion; uno nuevo se agrega al final.
// El mapa recibido no se modifica.
func MergeAnswer(existing domain.TraitAnswerMap, answer domain.RawAnswer) (domain.TraitAnswerMap, error) {
	current, err := existing.Answers(answer.Category)
	if err != nil {
		return domain.TraitAnswerMap{}, err
	}

	updated := make(domain.TraitAnswerSet, len(current), len(current)+1)
	copy(updated, current)

	if idx := updated.IndexOf(answer.ID); idx >= 0 {
		updated[idx] = answer
	} else {
		updated = append(updated, answer)
	}

	return existing.WithAnswers(answer.Category, updated)
}

// ValidateAnswer chequea lo que el limite HTTP no garantiza: id, categoria y rango.
func ValidateAnswer(answer domain.RawAnswer) error {
	if answer.ID == "" {
		return &domain.ValidationError{Field: "id", Reason: "question id is required"}
	}
	if !answer.Category.Valid() {
		return &domain.ValidationError{Field: "category", Reason: "unknown trait category \"" + string(answer.Category) + "\""}
	}
	if answer.Score < domain.MinAnswerScore || answer.Score > domain.MaxAnswerScore {
		return &domain.ValidationError{Field: "score", Reason: "score must be between 1 and 5"}
	}
	return nil
}
