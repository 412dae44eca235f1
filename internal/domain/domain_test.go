package domain

import (
	"errors"
	"fmt"
	"testing"
)

func fullSet(c TraitCategory) TraitAnswerSet {
	set := make(TraitAnswerSet, 0, QuestionsPerTrait)
	for i := 1; i <= QuestionsPerTrait; i++ {
		set = append(set, RawAnswer{ID: fmt.Sprintf("%s%d", c, i), Category: c, Score: 3})
	}
	return set
}

func TestPersonalityTestState(t *testing.T) {
	var test PersonalityTest
	if test.State() != TestStateEmpty {
		t.Fatalf("expected EMPTY, got %s", test.State())
	}

	test.Answers.Openness = TraitAnswerSet{{ID: "O1", Category: TraitOpenness, Score: 2}}
	if test.State() != TestStatePartiallyAnswered {
		t.Fatalf("expected PARTIALLY_ANSWERED, got %s", test.State())
	}

	for _, c := range AllTraitCategories() {
		var err error
		test.Answers, err = test.Answers.WithAnswers(c, fullSet(c))
		if err != nil {
			t.Fatalf("with answers: %v", err)
		}
	}
	if test.State() != TestStateComplete {
		t.Fatalf("expected COMPLETE, got %s", test.State())
	}
}

func TestTraitAnswerMapUnknownCategory(t *testing.T) {
	var m TraitAnswerMap
	if _, err := m.Answers("humour"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if _, err := m.WithAnswers("humour", nil); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestTraitAnswerMapProgressAndAggregate(t *testing.T) {
	m := TraitAnswerMap{
		Neuroticism: TraitAnswerSet{
			{ID: "N1", Category: TraitNeuroticism, Score: 4},
			{ID: "N2", Category: TraitNeuroticism, Score: 1},
		},
	}
	progress := m.Progress()
	if progress[TraitNeuroticism] != 2 || progress[TraitOpenness] != 0 || len(progress) != 5 {
		t.Fatalf("unexpected progress: %v", progress)
	}
	agg := m.Aggregate()
	if len(agg.Neuroticism) != 2 || agg.Neuroticism[0] != 4 || agg.Neuroticism[1] != 1 {
		t.Fatalf("unexpected aggregate: %+v", agg)
	}

	normalized := m.Normalized()
	if normalized.Extroversion == nil || len(normalized.Neuroticism) != 2 {
		t.Fatalf("expected normalized map to keep answers and fill empty sets")
	}
}

func TestParseTraitCategory(t *testing.T) {
	c, err := ParseTraitCategory("  Openness ")
	if err != nil || c != TraitOpenness {
		t.Fatalf("expected openness, got %q, %v", c, err)
	}
	if _, err := ParseTraitCategory("humour"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestErrorTaxonomy(t *testing.T) {
	incomplete := &IncompleteInputError{Trait: TraitConscientiousness, Got: 4}
	if incomplete.Error() != "Conscientiousness score could not be calculated due to invalid scores list." {
		t.Fatalf("unexpected message: %q", incomplete.Error())
	}
	if !errors.Is(incomplete, ErrIncompleteInput) || errors.Is(incomplete, ErrValidation) {
		t.Fatalf("incomplete input must only match ErrIncompleteInput")
	}

	conflict := &ConflictError{Reason: "Patient already has personality test scores"}
	if !errors.Is(conflict, ErrConflict) || !errors.Is(conflict, ErrValidation) {
		t.Fatalf("conflict must match ErrConflict and ErrValidation")
	}
	if errors.Is(&ValidationError{Reason: "bad"}, ErrConflict) {
		t.Fatalf("plain validation error must not match ErrConflict")
	}

	cause := errors.New("connection refused")
	storage := fmt.Errorf("wrapped: %w", &StorageError{Op: "insert", Err: cause})
	if !errors.Is(storage, ErrStorage) || !errors.Is(storage, cause) {
		t.Fatalf("storage error must match ErrStorage and unwrap its cause")
	}

	notFound := &NotFoundError{Resource: "patient", ID: "p1"}
	if notFound.Error() != "patient p1 not found" || !errors.Is(notFound, ErrNotFound) {
		t.Fatalf("unexpected not found error: %v", notFound)
	}
}

func TestScoresVectorOrder(t *testing.T) {
	s := Scores{Extroversion: 1, Openness: 2, Neuroticism: 3, Conscientiousness: 4, Agreeableness: 0.5}
	got := s.Vector().Slice()
	want := []float32{1, 2, 3, 4, 0.5}
	if len(got) != len(want) {
		t.Fatalf("expected %d dims, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("dim %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}
