package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"therapy-match/internal/domain"
	"therapy-match/internal/repository"
)

const (
	defaultMatchLimit = 10
	maxMatchLimit     = 50

	anonymousTestExistsReason = "Anonymous patient already has personality test scores"
	testFinalizedReason       = "Personality test has already been finalized"
)

// PersonalityTestService orquesta el test anonimo, el calculo y el alta de puntajes.
type PersonalityTestService struct {
	logger   *zap.Logger
	tests    repository.PersonalityTestRepository
	scores   repository.PersonalityScoreRepository
	subjects repository.SubjectRepository
	calc     Calculator
	now      func() time.Time
}

func NewPersonalityTestService(
	logger *zap.Logger,
	tests repository.PersonalityTestRepository,
	scores repository.PersonalityScoreRepository,
	subjects repository.SubjectRepository,
	calc Calculator,
) *PersonalityTestService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PersonalityTestService{
		logger:   logger,
		tests:    tests,
		scores:   scores,
		subjects: subjects,
		calc:     calc,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// StartAnonymousTest crea un test vacio; cada paciente anonimo tiene a lo sumo uno.
func (s *PersonalityTestService) StartAnonymousTest(ctx context.Context, anonymousPatientID uuid.UUID) (domain.PersonalityTest, error) {
	now := s.now()
	test := domain.PersonalityTest{
		ID:                 uuid.New(),
		AnonymousPatientID: anonymousPatientID,
		Answers:            domain.TraitAnswerMap{}.Normalized(),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.tests.Create(ctx, test); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return domain.PersonalityTest{}, &domain.ConflictError{Resource: "personality test", Reason: anonymousTestExistsReason}
		}
		return domain.PersonalityTest{}, &domain.StorageError{Op: "create personality test", Err: err}
	}
	s.logger.Info("anonymous personality test started",
		zap.String("test_id", test.ID.String()),
		zap.String("anonymous_patient_id", anonymousPatientID.String()),
	)
	return test, nil
}

func (s *PersonalityTestService) GetAnonymousTest(ctx context.Context, anonymousPatientID uuid.UUID) (domain.PersonalityTest, error) {
	test, err := s.tests.GetByAnonymousPatientID(ctx, anonymousPatientID)
	if err != nil {
		return domain.PersonalityTest{}, lookupError(err, "personality test", anonymousPatientID.String(), "get personality test")
	}
	return test, nil
}

// AnswerQuestion agrega o reemplaza una respuesta. La lectura y escritura ocurren bajo el
// lock de la fila, asi dos respuestas concurrentes no se pisan.
func (s *PersonalityTestService) AnswerQuestion(ctx context.Context, testID uuid.UUID, answer domain.RawAnswer) (domain.PersonalityTest, error) {
	if err := ValidateAnswer(answer); err != nil {
		return domain.PersonalityTest{}, err
	}
	test, err := s.tests.Update(ctx, testID, func(current domain.TraitAnswerMap) (domain.TraitAnswerMap, error) {
		return MergeAnswer(current, answer)
	})
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			return domain.PersonalityTest{}, err
		}
		return domain.PersonalityTest{}, lookupError(err, "personality test", testID.String(), "update personality test")
	}
	s.logger.Debug("personality test answer merged",
		zap.String("test_id", testID.String()),
		zap.String("question_id", answer.ID),
		zap.String("category", string(answer.Category)),
	)
	return test, nil
}

// PreviewScores calcula sin persistir.
func (s *PersonalityTestService) PreviewScores(ctx context.Context, testID uuid.UUID) (domain.Scores, error) {
	test, err := s.tests.GetByID(ctx, testID)
	if err != nil {
		return domain.Scores{}, lookupError(err, "personality test", testID.String(), "get personality test")
	}
	return s.calc.ComputeFromAnswers(test.Answers)
}

// SubmitScores calcula los puntajes de respuestas ya agregadas y los asocia al sujeto.
func (s *PersonalityTestService) SubmitScores(ctx context.Context, ref domain.SubjectRef, aggregate domain.AggregateScores) (domain.PersonalityTestScore, error) {
	if err := s.ensureSubject(ctx, ref); err != nil {
		return domain.PersonalityTestScore{}, err
	}
	scores, err := s.calc.Compute(aggregate)
	if err != nil {
		return domain.PersonalityTestScore{}, err
	}
	return s.attach(ctx, uuid.New(), ref, scores)
}

// FinalizeAnonymousTest convierte un test completo en el puntaje definitivo del sujeto.
// Un test se finaliza una sola vez: el claim se toma antes de crear el puntaje y se
// libera si el alta falla.
func (s *PersonalityTestService) FinalizeAnonymousTest(ctx context.Context, testID uuid.UUID, ref domain.SubjectRef) (domain.PersonalityTestScore, error) {
	test, err := s.tests.GetByID(ctx, testID)
	if err != nil {
		return domain.PersonalityTestScore{}, lookupError(err, "personality test", testID.String(), "get personality test")
	}
	if test.FinalizedScoreID != nil {
		return domain.PersonalityTestScore{}, &domain.ConflictError{Resource: "personality test", Reason: testFinalizedReason}
	}
	if err := s.ensureSubject(ctx, ref); err != nil {
		return domain.PersonalityTestScore{}, err
	}
	scores, err := s.calc.ComputeFromAnswers(test.Answers)
	if err != nil {
		return domain.PersonalityTestScore{}, err
	}

	scoreID := uuid.New()
	if err := s.tests.ClaimFinalization(ctx, testID, scoreID); err != nil {
		if errors.Is(err, repository.ErrAlreadyFinalized) {
			return domain.PersonalityTestScore{}, &domain.ConflictError{Resource: "personality test", Reason: testFinalizedReason}
		}
		return domain.PersonalityTestScore{}, lookupError(err, "personality test", testID.String(), "claim personality test")
	}
	record, err := s.attach(ctx, scoreID, ref, scores)
	if err != nil {
		if relErr := s.tests.ReleaseFinalization(ctx, testID, scoreID); relErr != nil {
			s.logger.Error("release personality test claim failed",
				zap.String("test_id", testID.String()),
				zap.Error(relErr),
			)
		}
		return domain.PersonalityTestScore{}, err
	}
	return record, nil
}

func (s *PersonalityTestService) GetSubjectScores(ctx context.Context, ref domain.SubjectRef) (domain.PersonalityTestScore, error) {
	if !ref.Kind.Valid() {
		return domain.PersonalityTestScore{}, &domain.ValidationError{Field: "subject", Reason: fmt.Sprintf("unknown subject kind %q", ref.Kind)}
	}
	score, err := s.scores.GetBySubject(ctx, ref)
	if err != nil {
		return domain.PersonalityTestScore{}, lookupError(err, "personality test scores", ref.String(), "get personality test scores")
	}
	return score, nil
}

// MatchTherapists devuelve los terapeutas mas cercanos al perfil del paciente.
func (s *PersonalityTestService) MatchTherapists(ctx context.Context, patientID uuid.UUID, limit int) ([]domain.TherapistMatch, error) {
	switch {
	case limit <= 0:
		limit = defaultMatchLimit
	case limit > maxMatchLimit:
		limit = maxMatchLimit
	}
	ref := domain.PatientRef(patientID)
	patientScore, err := s.scores.GetBySubject(ctx, ref)
	if err != nil {
		return nil, lookupError(err, "personality test scores", ref.String(), "get personality test scores")
	}
	matches, err := s.scores.NearestTherapists(ctx, patientScore.Scores.Vector(), limit)
	if err != nil {
		return nil, &domain.StorageError{Op: "find nearest therapists", Err: err}
	}
	if matches == nil {
		matches = []domain.TherapistMatch{}
	}
	return matches, nil
}

func (s *PersonalityTestService) ensureSubject(ctx context.Context, ref domain.SubjectRef) error {
	if !ref.Kind.Valid() {
		return &domain.ValidationError{Field: "subject", Reason: fmt.Sprintf("unknown subject kind %q", ref.Kind)}
	}
	if _, err := s.subjects.Get(ctx, ref); err != nil {
		return lookupError(err, string(ref.Kind), ref.ID.String(), "get "+string(ref.Kind))
	}
	return nil
}

func (s *PersonalityTestService) attach(ctx context.Context, id uuid.UUID, ref domain.SubjectRef, scores domain.Scores) (domain.PersonalityTestScore, error) {
	record := domain.PersonalityTestScore{
		ID:        id,
		Subject:   ref,
		Scores:    scores,
		CreatedAt: s.now(),
	}
	if err := s.scores.Create(ctx, record); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return domain.PersonalityTestScore{}, &domain.ConflictError{
				Resource: "personality test scores",
				Reason:   subjectLabel(ref.Kind) + " already has personality test scores",
			}
		}
		return domain.PersonalityTestScore{}, &domain.StorageError{Op: "create personality test scores", Err: err}
	}
	s.logger.Info("personality test scores attached",
		zap.String("subject", ref.String()),
		zap.String("score_id", record.ID.String()),
	)
	return record, nil
}

func lookupError(err error, resource, id, op string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return &domain.NotFoundError{Resource: resource, ID: id}
	}
	return &domain.StorageError{Op: op, Err: err}
}

func subjectLabel(kind domain.SubjectKind) string {
	switch kind {
	case domain.SubjectTherapist:
		return "Therapist"
	default:
		return "Patient"
	}
}
