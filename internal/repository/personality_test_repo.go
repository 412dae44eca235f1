package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"therapy-match/internal/domain"
)

// AnswerMutation recibe el mapa bloqueado y devuelve el mapa a persistir.
type AnswerMutation func(current domain.TraitAnswerMap) (domain.TraitAnswerMap, error)

type PersonalityTestRepository interface {
	Create(ctx context.Context, test domain.PersonalityTest) error
	GetByID(ctx context.Context, id uuid.UUID) (domain.PersonalityTest, error)
	GetByAnonymousPatientID(ctx context.Context, anonymousPatientID uuid.UUID) (domain.PersonalityTest, error)
	Update(ctx context.Context, id uuid.UUID, mutate AnswerMutation) (domain.PersonalityTest, error)
	ClaimFinalization(ctx context.Context, id, scoreID uuid.UUID) error
	ReleaseFinalization(ctx context.Context, id, scoreID uuid.UUID) error
}

type PgPersonalityTestRepository struct {
	pool *pgxpool.Pool
}

func NewPgPersonalityTestRepository(pool *pgxpool.Pool) *PgPersonalityTestRepository {
	return &PgPersonalityTestRepository{pool: pool}
}

const selectPersonalityTest = `
	SELECT id, anonymous_patient_id, extroversion, openness, neuroticism, conscientiousness, agreeableness,
		finalized_score_id, created_at, updated_at
	FROM personality_tests
`

func (r *PgPersonalityTestRepository) Create(ctx context.Context, test domain.PersonalityTest) error {
	const query = `
		INSERT INTO personality_tests (
			id, anonymous_patient_id, extroversion, openness, neuroticism, conscientiousness, agreeableness, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	cols, err := encodeAnswerColumns(test.Answers)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, query,
		test.ID,
		test.AnonymousPatientID,
		cols[0], cols[1], cols[2], cols[3], cols[4],
		test.CreatedAt,
		test.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (r *PgPersonalityTestRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.PersonalityTest, error) {
	return scanPersonalityTest(r.pool.QueryRow(ctx, selectPersonalityTest+` WHERE id = $1`, id))
}

func (r *PgPersonalityTestRepository) GetByAnonymousPatientID(ctx context.Context, anonymousPatientID uuid.UUID) (domain.PersonalityTest, error) {
	return scanPersonalityTest(r.pool.QueryRow(ctx, selectPersonalityTest+` WHERE anonymous_patient_id = $1`, anonymousPatientID))
}

// Update bloquea la fila con FOR UPDATE, aplica mutate y guarda en la misma transaccion.
// Si mutate falla no se escribe nada.
func (r *PgPersonalityTestRepository) Update(ctx context.Context, id uuid.UUID, mutate AnswerMutation) (domain.PersonalityTest, error) {
	const update = `
		UPDATE personality_tests
		SET extroversion = $2, openness = $3, neuroticism = $4, conscientiousness = $5, agreeableness = $6, updated_at = $7
		WHERE id = $1
	`

	var updated domain.PersonalityTest
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		current, err := scanPersonalityTest(tx.QueryRow(ctx, selectPersonalityTest+` WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			return err
		}

		next, err := mutate(current.Answers)
		if err != nil {
			return err
		}
		next = next.Normalized()

		cols, err := encodeAnswerColumns(next)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		if _, err := tx.Exec(ctx, update, id, cols[0], cols[1], cols[2], cols[3], cols[4], now); err != nil {
			return err
		}

		current.Answers = next
		current.UpdatedAt = now
		updated = current
		return nil
	})
	if err != nil {
		return domain.PersonalityTest{}, err
	}
	return updated, nil
}

// ClaimFinalization reserva el test para el puntaje scoreID. Solo el primer claim gana;
// los siguientes reciben ErrAlreadyFinalized.
func (r *PgPersonalityTestRepository) ClaimFinalization(ctx context.Context, id, scoreID uuid.UUID) error {
	const claim = `
		UPDATE personality_tests
		SET finalized_score_id = $2, updated_at = now()
		WHERE id = $1 AND finalized_score_id IS NULL
	`
	tag, err := r.pool.Exec(ctx, claim, id, scoreID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM personality_tests WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return pgx.ErrNoRows
	}
	return ErrAlreadyFinalized
}

// ReleaseFinalization deshace un claim cuyo puntaje no se pudo guardar.
func (r *PgPersonalityTestRepository) ReleaseFinalization(ctx context.Context, id, scoreID uuid.UUID) error {
	const release = `
		UPDATE personality_tests
		SET finalized_score_id = NULL, updated_at = now()
		WHERE id = $1 AND finalized_score_id = $2
	`
	_, err := r.pool.Exec(ctx, release, id, scoreID)
	return err
}

func scanPersonalityTest(row pgx.Row) (domain.PersonalityTest, error) {
	var (
		test domain.PersonalityTest
		cols [5][]byte
	)
	if err := row.Scan(
		&test.ID,
		&test.AnonymousPatientID,
		&cols[0], &cols[1], &cols[2], &cols[3], &cols[4],
		&test.FinalizedScoreID,
		&test.CreatedAt,
		&test.UpdatedAt,
	); err != nil {
		return domain.PersonalityTest{}, err
	}

	answers, err := decodeAnswerColumns(cols)
	if err != nil {
		return domain.PersonalityTest{}, err
	}
	test.Answers = answers
	return test, nil
}

// Orden de columnas: extroversion, openness, neuroticism, conscientiousness, agreeableness.
func encodeAnswerColumns(answers domain.TraitAnswerMap) ([5][]byte, error) {
	answers = answers.Normalized()
	sets := [5]domain.TraitAnswerSet{
		answers.Extroversion,
		answers.Openness,
		answers.Neuroticism,
		answers.Conscientiousness,
		answers.Agreeableness,
	}
	var cols [5][]byte
	for i, set := range sets {
		raw, err := json.Marshal(set)
		if err != nil {
			return cols, fmt.Errorf("encode answers: %w", err)
		}
		cols[i] = raw
	}
	return cols, nil
}

func decodeAnswerColumns(cols [5][]byte) (domain.TraitAnswerMap, error) {
	var sets [5]domain.TraitAnswerSet
	for i, raw := range cols {
		if len(raw) == 0 {
			continue
		}
		if err := json.Unmarshal(raw, &sets[i]); err != nil {
			return domain.TraitAnswerMap{}, fmt.Errorf("decode answers: %w", err)
		}
	}
	return domain.TraitAnswerMap{
		Extroversion:      sets[0],
		Openness:          sets[1],
		Neuroticism:       sets[2],
		Conscientiousness: sets[3],
		Agreeableness:     sets[4],
	}.Normalized(), nil
}
