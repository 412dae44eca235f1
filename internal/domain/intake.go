package domain

import (
	"fmt"
	"strings"
)

const (
	MinPatientAge = 10
	MaxPatientAge = 120

	maxTherapyNeeds      = 20
	maxTherapyNeedLength = 100
	maxDescriptionLength = 2000
)

// Gender es la opcion de genero que declara el paciente.
type Gender string

const (
	GenderMale           Gender = "male"
	GenderFemale         Gender = "female"
	GenderNonBinary      Gender = "non_binary"
	GenderPreferNotToSay Gender = "prefer_not_to_say"
	GenderOther          Gender = "other"
)

// Genders lista las opciones validas en orden estable.
var Genders = []Gender{GenderMale, GenderFemale, GenderNonBinary, GenderPreferNotToSay, GenderOther}

func (g Gender) Valid() bool {
	for _, known := range Genders {
		if g == known {
			return true
		}
	}
	return false
}

// IntakeProfile son las preguntas generales del paciente anonimo. Los campos nil
// todavia no fueron respondidos.
type IntakeProfile struct {
	TherapyNeeds                   []string `json:"therapy_needs"`
	Description                    *string  `json:"description"`
	Age                            *int     `json:"age"`
	Gender                         *Gender  `json:"gender"`
	IsLGBTQTherapistPreference     *bool    `json:"is_lgbtq_therapist_preference"`
	IsReligiousTherapistPreference *bool    `json:"is_religious_therapist_preference"`
}

// IntakePatch es una actualizacion parcial: solo se aplican los campos presentes.
type IntakePatch struct {
	TherapyNeeds                   *[]string
	Description                    *string
	Age                            *int
	Gender                         *Gender
	IsLGBTQTherapistPreference     *bool
	IsReligiousTherapistPreference *bool
}

// IsEmpty indica que el patch no trae ningun campo.
func (p IntakePatch) IsEmpty() bool {
	return p.TherapyNeeds == nil && p.Description == nil && p.Age == nil && p.Gender == nil &&
		p.IsLGBTQTherapistPreference == nil && p.IsReligiousTherapistPreference == nil
}

// Validate revisa rangos y enums de los campos presentes.
func (p IntakePatch) Validate() error {
	if p.Age != nil && (*p.Age < MinPatientAge || *p.Age > MaxPatientAge) {
		return &ValidationError{Field: "age", Reason: fmt.Sprintf("must be between %d and %d", MinPatientAge, MaxPatientAge)}
	}
	if p.Gender != nil && !p.Gender.Valid() {
		return &ValidationError{Field: "gender", Reason: fmt.Sprintf("unknown gender %q", *p.Gender)}
	}
	if p.Description != nil && len(*p.Description) > maxDescriptionLength {
		return &ValidationError{Field: "description", Reason: fmt.Sprintf("must be at most %d characters", maxDescriptionLength)}
	}
	if p.TherapyNeeds != nil {
		if len(*p.TherapyNeeds) > maxTherapyNeeds {
			return &ValidationError{Field: "therapy_needs", Reason: fmt.Sprintf("at most %d entries", maxTherapyNeeds)}
		}
		for _, need := range *p.TherapyNeeds {
			need = strings.TrimSpace(need)
			if need == "" || len(need) > maxTherapyNeedLength {
				return &ValidationError{Field: "therapy_needs", Reason: fmt.Sprintf("entries must have 1 to %d characters", maxTherapyNeedLength)}
			}
		}
	}
	return nil
}

// Apply copia los campos presentes sobre el perfil y devuelve el resultado.
func (p IntakePatch) Apply(profile IntakeProfile) IntakeProfile {
	if p.TherapyNeeds != nil {
		needs := make([]string, 0, len(*p.TherapyNeeds))
		for _, need := range *p.TherapyNeeds {
			needs = append(needs, strings.TrimSpace(need))
		}
		profile.TherapyNeeds = needs
	}
	if p.Description != nil {
		profile.Description = p.Description
	}
	if p.Age != nil {
		profile.Age = p.Age
	}
	if p.Gender != nil {
		profile.Gender = p.Gender
	}
	if p.IsLGBTQTherapistPreference != nil {
		profile.IsLGBTQTherapistPreference = p.IsLGBTQTherapistPreference
	}
	if p.IsReligiousTherapistPreference != nil {
		profile.IsReligiousTherapistPreference = p.IsReligiousTherapistPreference
	}
	return profile
}
