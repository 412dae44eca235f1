package domain

import (
	"time"

	"github.com/google/uuid"
)

// SubjectKind distingue pacientes de terapeutas.
type SubjectKind string

const (
	SubjectPatient   SubjectKind = "patient"
	SubjectTherapist SubjectKind = "therapist"
)

// Valid indica si el tipo de sujeto es conocido.
func (k SubjectKind) Valid() bool {
	return k == SubjectPatient || k == SubjectTherapist
}

// SubjectRef referencia a un sujeto por id, sin punteros al registro.
type SubjectRef struct {
	Kind SubjectKind `json:"kind"`
	ID   uuid.UUID   `json:"id"`
}

func PatientRef(id uuid.UUID) SubjectRef   { return SubjectRef{Kind: SubjectPatient, ID: id} }
func TherapistRef(id uuid.UUID) SubjectRef { return SubjectRef{Kind: SubjectTherapist, ID: id} }

func (r SubjectRef) String() string {
	return string(r.Kind) + ":" + r.ID.String()
}

// AnonymousPatient identifica una sesion anonima que aun no se registro, junto con
// el perfil de intake que completa antes de registrarse.
type AnonymousPatient struct {
	ID        uuid.UUID `json:"id"`
	SessionID string    `json:"-"`
	IntakeProfile
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Subject es la vista minima de un paciente o terapeuta.
type Subject struct {
	Ref         SubjectRef `json:"ref"`
	DisplayName string     `json:"display_name"`
	CreatedAt   time.Time  `json:"created_at"`
}
