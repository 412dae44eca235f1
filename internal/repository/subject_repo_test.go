package repository

import (
	"testing"

	"therapy-match/internal/domain"
)

func TestSubjectTable(t *testing.T) {
	cases := map[domain.SubjectKind]string{
		domain.SubjectPatient:   "patients",
		domain.SubjectTherapist: "therapists",
	}
	for kind, want := range cases {
		got, err := subjectTable(kind)
		if err != nil {
			t.Fatalf("subjectTable(%s) error: %v", kind, err)
		}
		if got != want {
			t.Fatalf("expected %s, got %s", want, got)
		}
	}
	if _, err := subjectTable("admins; DROP TABLE patients"); err == nil {
		t.Fatalf("expected error for unknown subject kind")
	}
}
