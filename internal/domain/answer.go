package domain

// RawAnswer es una respuesta Likert (1-5) a un item del cuestionario.
type RawAnswer struct {
	ID       string        `json:"id"`
	Category TraitCategory `json:"category"`
	Score    int           `json:"score"`
}

// TraitAnswerSet mantiene las respuestas de un rasgo en orden de insercion.
type TraitAnswerSet []RawAnswer

// IndexOf devuelve la posicion de la respuesta con ese id o -1.
func (s TraitAnswerSet) IndexOf(id string) int {
	for i, a := range s {
		if a.ID == id {
			return i
		}
	}
	return -1
}

// Scores proyecta los valores en el mismo orden.
func (s TraitAnswerSet) Scores() []int {
	out := make([]int, len(s))
	for i, a := range s {
		out[i] = a.Score
	}
	return out
}

// TraitAnswerMap agrupa un TraitAnswerSet por cada categoria.
// Se accede siempre via Answers/WithAnswers para que una categoria nueva
// sea un cambio chequeado por el compilador.
type TraitAnswerMap struct {
	Extroversion      TraitAnswerSet `json:"extroversion"`
	Openness          TraitAnswerSet `json:"openness"`
	Neuroticism       TraitAnswerSet `json:"neuroticism"`
	Conscientiousness TraitAnswerSet `json:"conscientiousness"`
	Agreeableness     TraitAnswerSet `json:"agreeableness"`
}

// Answers devuelve el set de la categoria indicada.
func (m TraitAnswerMap) Answers(c TraitCategory) (TraitAnswerSet, error) {
	switch c {
	case TraitExtroversion:
		return m.Extroversion, nil
	case TraitOpenness:
		return m.Openness, nil
	case TraitNeuroticism:
		return m.Neuroticism, nil
	case TraitConscientiousness:
		return m.Conscientiousness, nil
	case TraitAgreeableness:
		return m.Agreeableness, nil
	}
	return nil, &ValidationError{Field: "category", Reason: "unknown trait category " + quoteOrEmpty(string(c))}
}

// WithAnswers devuelve una copia del mapa con el set de la categoria reemplazado.
func (m TraitAnswerMap) WithAnswers(c TraitCategory, set TraitAnswerSet) (TraitAnswerMap, error) {
	switch c {
	case TraitExtroversion:
		m.Extroversion = set
	case TraitOpenness:
		m.Openness = set
	case TraitNeuroticism:
		m.Neuroticism = set
	case TraitConscientiousness:
		m.Conscientiousness = set
	case TraitAgreeableness:
		m.Agreeableness = set
	default:
		return TraitAnswerMap{}, &ValidationError{Field: "category", Reason: "unknown trait category " + quoteOrEmpty(string(c))}
	}
	return m, nil
}

// Normalized reemplaza sets nil por slices vacios (JSON "[]" en vez de null).
func (m TraitAnswerMap) Normalized() TraitAnswerMap {
	for _, c := range AllTraitCategories() {
		set, _ := m.Answers(c)
		if set == nil {
			m, _ = m.WithAnswers(c, TraitAnswerSet{})
		}
	}
	return m
}

// Aggregate extrae los puntajes crudos de cada rasgo.
func (m TraitAnswerMap) Aggregate() AggregateScores {
	return AggregateScores{
		Extroversion:      m.Extroversion.Scores(),
		Openness:          m.Openness.Scores(),
		Neuroticism:       m.Neuroticism.Scores(),
		Conscientiousness: m.Conscientiousness.Scores(),
		Agreeableness:     m.Agreeableness.Scores(),
	}
}

// Progress cuenta respuestas por categoria.
func (m TraitAnswerMap) Progress() map[TraitCategory]int {
	out := make(map[TraitCategory]int, 5)
	for _, c := range AllTraitCategories() {
		set, _ := m.Answers(c)
		out[c] = len(set)
	}
	return out
}

// IsComplete se deriva inspeccionando los sets; no se persiste.
func (m TraitAnswerMap) IsComplete() bool {
	for _, c := range AllTraitCategories() {
		set, _ := m.Answers(c)
		if len(set) < QuestionsPerTrait {
			return false
		}
	}
	return true
}

// IsEmpty indica que no hay ninguna respuesta registrada.
func (m TraitAnswerMap) IsEmpty() bool {
	for _, c := range AllTraitCategories() {
		set, _ := m.Answers(c)
		if len(set) > 0 {
			return false
		}
	}
	return true
}
