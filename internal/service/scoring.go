package service

import (
	"therapy-match/internal/domain"
)

// ScoringOptions reactiva dos comportamientos heredados del calculo de puntajes.
type ScoringOptions struct {
	// RejectZeroScores trata un resultado 0.0 como "no calculado".
	RejectZeroScores bool
	// RejectExtraAnswers falla si un rasgo trae mas de 10 respuestas en vez de truncar.
	RejectExtraAnswers bool
}

// Calculator convierte respuestas crudas en puntajes Big Five normalizados.
// Es puro: no guarda estado y puede compartirse entre goroutines.
type Calculator struct {
	opts ScoringOptions
}

// DefaultCalculator usa la validacion por cantidad, sin las rarezas heredadas.
var DefaultCalculator = Calculator{}

func NewCalculator(opts ScoringOptions) Calculator {
	return Calculator{opts: opts}
}

type traitFormula func(a []int) int

// Orden de evaluacion: el primer rasgo que falla es el que se reporta.
var traitFormulas = []struct {
	trait   domain.TraitCategory
	formula traitFormula
}{
	{domain.TraitExtroversion, extroversionSum},
	{domain.TraitOpenness, opennessSum},
	{domain.TraitAgreeableness, agreeablenessSum},
	{domain.TraitNeuroticism, neuroticismSum},
	{domain.TraitConscientiousness, conscientiousnessSum},
}

func extroversionSum(a []int) int {
	return 20 + a[0] - a[1] + a[2] - a[3] + a[4] - a[5] + a[6] - a[7] + a[8] - a[9]
}

func agreeablenessSum(a []int) int {
	return 14 - a[0] + a[1] - a[2] + a[3] - a[4] + a[5] - a[6] + a[7] + a[8] + a[9]
}

func opennessSum(a []int) int {
	return 8 + a[0] - a[1] + a[2] - a[3] + a[4] - a[5] + a[6] + a[7] + a[8] + a[9]
}

func neuroticismSum(a []int) int {
	return 38 - a[0] + a[1] - a[2] + a[3] - a[4] - a[5] - a[6] - a[7] - a[8] - a[9]
}

func conscientiousnessSum(a []int) int {
	return 14 + a[0] - a[1] + a[2] - a[3] + a[4] - a[5] + a[6] - a[7] + a[8] + a[9]
}

// Compute calcula los cinco rasgos. Si alguno falla no se devuelve ningun puntaje.
func (c Calculator) Compute(agg domain.AggregateScores) (domain.Scores, error) {
	var out domain.Scores
	for _, tf := range traitFormulas {
		value, err := c.computeTrait(tf.trait, agg.Values(tf.trait), tf.formula)
		if err != nil {
			return domain.Scores{}, err
		}
		switch tf.trait {
		case domain.TraitExtroversion:
			out.Extroversion = value
		case domain.TraitOpenness:
			out.Openness = value
		case domain.TraitAgreeableness:
			out.Agreeableness = value
		case domain.TraitNeuroticism:
			out.Neuroticism = value
		case domain.TraitConscientiousness:
			out.Conscientiousness = value
		}
	}
	return out, nil
}

// ComputeFromAnswers proyecta cada set a sus puntajes y calcula.
func (c Calculator) ComputeFromAnswers(answers domain.TraitAnswerMap) (domain.Scores, error) {
	return c.Compute(answers.Aggregate())
}

func (c Calculator) computeTrait(trait domain.TraitCategory, values []int, formula traitFormula) (float64, error) {
	if len(values) < domain.QuestionsPerTrait {
		return 0, &domain.IncompleteInputError{Trait: trait, Got: len(values)}
	}
	if c.opts.RejectExtraAnswers && len(values) > domain.QuestionsPerTrait {
		return 0, &domain.IncompleteInputError{Trait: trait, Got: len(values)}
	}
	sum := formula(values[:domain.QuestionsPerTrait])
	if c.opts.RejectZeroScores && sum == 0 {
		return 0, &domain.IncompleteInputError{Trait: trait, Got: len(values)}
	}
	return float64(sum) / 10, nil
}
