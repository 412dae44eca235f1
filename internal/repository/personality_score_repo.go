package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"therapy-match/internal/domain"
)

type PersonalityScoreRepository interface {
	Create(ctx context.Context, score domain.PersonalityTestScore) error
	GetBySubject(ctx context.Context, ref domain.SubjectRef) (domain.PersonalityTestScore, error)
	NearestTherapists(ctx context.Context, target pgvector.Vector, limit int) ([]domain.TherapistMatch, error)
}

type PgPersonalityScoreRepository struct {
	pool *pgxpool.Pool
}

func NewPgPersonalityScoreRepository(pool *pgxpool.Pool) *PgPersonalityScoreRepository {
	return &PgPersonalityScoreRepository{pool: pool}
}

// Create inserta el snapshot; la restriccion (subject_kind, subject_id) lo hace unico por sujeto.
func (r *PgPersonalityScoreRepository) Create(ctx context.Context, score domain.PersonalityTestScore) error {
	const query = `
		INSERT INTO personality_test_scores (
			id, subject_kind, subject_id, extroversion, openness, neuroticism, conscientiousness, agreeableness, vector, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.pool.Exec(ctx, query,
		score.ID,
		string(score.Subject.Kind),
		score.Subject.ID,
		score.Scores.Extroversion,
		score.Scores.Openness,
		score.Scores.Neuroticism,
		score.Scores.Conscientiousness,
		score.Scores.Agreeableness,
		score.Scores.Vector(),
		score.CreatedAt,
	)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (r *PgPersonalityScoreRepository) GetBySubject(ctx context.Context, ref domain.SubjectRef) (domain.PersonalityTestScore, error) {
	const query = `
		SELECT id, subject_kind, subject_id, extroversion, openness, neuroticism, conscientiousness, agreeableness, created_at
		FROM personality_test_scores
		WHERE subject_kind = $1 AND subject_id = $2
	`
	var (
		score domain.PersonalityTestScore
		kind  string
	)
	err := r.pool.QueryRow(ctx, query, string(ref.Kind), ref.ID).Scan(
		&score.ID,
		&kind,
		&score.Subject.ID,
		&score.Scores.Extroversion,
		&score.Scores.Openness,
		&score.Scores.Neuroticism,
		&score.Scores.Conscientiousness,
		&score.Scores.Agreeableness,
		&score.CreatedAt,
	)
	if err != nil {
		return domain.PersonalityTestScore{}, err
	}
	score.Subject.Kind = domain.SubjectKind(kind)
	return score, nil
}

// NearestTherapists ordena terapeutas por distancia euclidea (<->) al vector dado.
func (r *PgPersonalityScoreRepository) NearestTherapists(ctx context.Context, target pgvector.Vector, limit int) ([]domain.TherapistMatch, error) {
	const query = `
		SELECT s.subject_id, t.display_name,
			s.extroversion, s.openness, s.neuroticism, s.conscientiousness, s.agreeableness,
			s.vector <-> $1 AS distance
		FROM personality_test_scores s
		JOIN therapists t ON t.id = s.subject_id
		WHERE s.subject_kind = 'therapist'
		ORDER BY s.vector <-> $1
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, target, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.TherapistMatch, error) {
		var m domain.TherapistMatch
		err := row.Scan(
			&m.TherapistID,
			&m.DisplayName,
			&m.Scores.Extroversion,
			&m.Scores.Openness,
			&m.Scores.Neuroticism,
			&m.Scores.Conscientiousness,
			&m.Scores.Agreeableness,
			&m.Distance,
		)
		return m, err
	})
	if err != nil {
		return nil, err
	}
	return matches, nil
}
