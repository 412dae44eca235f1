package domain

import "strings"

// TraitCategory identifica una de las cinco dimensiones Big Five.
type TraitCategory string

const (
	TraitExtroversion      TraitCategory = "extroversion"
	TraitOpenness          TraitCategory = "openness"
	TraitNeuroticism       TraitCategory = "neuroticism"
	TraitConscientiousness TraitCategory = "conscientiousness"
	TraitAgreeableness     TraitCategory = "agreeableness"
)

// QuestionsPerTrait es la cantidad de respuestas que exige cada formula.
const QuestionsPerTrait = 10

// Rango valido de una respuesta Likert.
const (
	MinAnswerScore = 1
	MaxAnswerScore = 5
)

// AllTraitCategories devuelve las categorias en orden fijo.
func AllTraitCategories() []TraitCategory {
	return []TraitCategory{
		TraitExtroversion,
		TraitOpenness,
		TraitNeuroticism,
		TraitConscientiousness,
		TraitAgreeableness,
	}
}

// Valid indica si la categoria es una de las cinco conocidas.
func (c TraitCategory) Valid() bool {
	switch c {
	case TraitExtroversion, TraitOpenness, TraitNeuroticism, TraitConscientiousness, TraitAgreeableness:
		return true
	}
	return false
}

// Label devuelve el nombre capitalizado usado en mensajes de error.
func (c TraitCategory) Label() string {
	if c == "" {
		return ""
	}
	s := string(c)
	return strings.ToUpper(s[:1]) + s[1:]
}

// ParseTraitCategory normaliza y valida un nombre de categoria.
func ParseTraitCategory(raw string) (TraitCategory, error) {
	c := TraitCategory(strings.ToLower(strings.TrimSpace(raw)))
	if !c.Valid() {
		return "", &ValidationError{Field: "category", Reason: "unknown trait category " + quoteOrEmpty(raw)}
	}
	return c, nil
}

func quoteOrEmpty(s string) string {
	if s == "" {
		return `""`
	}
	return `"` + s + `"`
}
