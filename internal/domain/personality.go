package domain

import (
	"time"

	"github.com/google/uuid"
)

// TestState se deriva de las respuestas, nunca se guarda.
type TestState string

const (
	TestStateEmpty             TestState = "EMPTY"
	TestStatePartiallyAnswered TestState = "PARTIALLY_ANSWERED"
	TestStateComplete          TestState = "COMPLETE"
)

// PersonalityTest es un test anonimo. FinalizedScoreID queda fijo cuando el test se
// convierte en el puntaje de un paciente.
type PersonalityTest struct {
	ID                 uuid.UUID      `json:"id"`
	AnonymousPatientID uuid.UUID      `json:"anonymous_patient_id"`
	Answers            TraitAnswerMap `json:"answers"`
	FinalizedScoreID   *uuid.UUID     `json:"finalized_score_id,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

// State calcula el estado a partir de las respuestas.
func (t PersonalityTest) State() TestState {
	switch {
	case t.Answers.IsComplete():
		return TestStateComplete
	case t.Answers.IsEmpty():
		return TestStateEmpty
	default:
		return TestStatePartiallyAnswered
	}
}

// PersonalityTestScore es el snapshot final asociado a un unico sujeto.
type PersonalityTestScore struct {
	ID        uuid.UUID  `json:"id"`
	Subject   SubjectRef `json:"subject"`
	Scores    Scores     `json:"scores"`
	CreatedAt time.Time  `json:"created_at"`
}

// TherapistMatch es un terapeuta candidato ordenado por distancia de personalidad.
type TherapistMatch struct {
	TherapistID uuid.UUID `json:"therapist_id"`
	DisplayName string    `json:"display_name"`
	Scores      Scores    `json:"scores"`
	Distance    float64   `json:"distance"`
}
