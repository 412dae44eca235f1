package domain

import pgvector "github.com/pgvector/pgvector-go"

// AggregateScores contiene las respuestas crudas de cada rasgo.
type AggregateScores struct {
	Extroversion      []int `json:"extroversion"`
	Openness          []int `json:"openness"`
	Neuroticism       []int `json:"neuroticism"`
	Conscientiousness []int `json:"conscientiousness"`
	Agreeableness     []int `json:"agreeableness"`
}

// Values devuelve la secuencia cruda de la categoria.
func (a AggregateScores) Values(c TraitCategory) []int {
	switch c {
	case TraitExtroversion:
		return a.Extroversion
	case TraitOpenness:
		return a.Openness
	case TraitNeuroticism:
		return a.Neuroticism
	case TraitConscientiousness:
		return a.Conscientiousness
	case TraitAgreeableness:
		return a.Agreeableness
	}
	return nil
}

// Scores es el resultado normalizado; solo existe completo.
type Scores struct {
	Extroversion      float64 `json:"extroversion"`
	Openness          float64 `json:"openness"`
	Neuroticism       float64 `json:"neuroticism"`
	Conscientiousness float64 `json:"conscientiousness"`
	Agreeableness     float64 `json:"agreeableness"`
}

// Vector expone los puntajes como embedding de 5 dimensiones (orden de AllTraitCategories).
func (s Scores) Vector() pgvector.Vector {
	return pgvector.NewVector([]float32{
		float32(s.Extroversion),
		float32(s.Openness),
		float32(s.Neuroticism),
		float32(s.Conscientiousness),
		float32(s.Agreeableness),
	})
}
