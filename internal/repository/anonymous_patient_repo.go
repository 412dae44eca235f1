package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"therapy-match/internal/domain"
)

// IntakeMutation recibe el perfil bloqueado y devuelve el perfil a persistir.
type IntakeMutation func(current domain.IntakeProfile) (domain.IntakeProfile, error)

type AnonymousPatientRepository interface {
	Create(ctx context.Context, patient domain.AnonymousPatient) error
	GetByID(ctx context.Context, id uuid.UUID) (domain.AnonymousPatient, error)
	GetBySessionID(ctx context.Context, sessionID string) (domain.AnonymousPatient, error)
	UpdateIntake(ctx context.Context, id uuid.UUID, mutate IntakeMutation) (domain.AnonymousPatient, error)
}

type PgAnonymousPatientRepository struct {
	pool *pgxpool.Pool
}

func NewPgAnonymousPatientRepository(pool *pgxpool.Pool) *PgAnonymousPatientRepository {
	return &PgAnonymousPatientRepository{pool: pool}
}

const selectAnonymousPatient = `
	SELECT id, session_id, therapy_needs, description, age, gender,
		is_lgbtq_therapist_preference, is_religious_therapist_preference, created_at, updated_at
	FROM anonymous_patients
`

func (r *PgAnonymousPatientRepository) Create(ctx context.Context, patient domain.AnonymousPatient) error {
	const query = `
		INSERT INTO anonymous_patients (id, session_id, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
	`
	_, err := r.pool.Exec(ctx, query, patient.ID, patient.SessionID, patient.CreatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (r *PgAnonymousPatientRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.AnonymousPatient, error) {
	return scanAnonymousPatient(r.pool.QueryRow(ctx, selectAnonymousPatient+` WHERE id = $1`, id))
}

func (r *PgAnonymousPatientRepository) GetBySessionID(ctx context.Context, sessionID string) (domain.AnonymousPatient, error) {
	return scanAnonymousPatient(r.pool.QueryRow(ctx, selectAnonymousPatient+` WHERE session_id = $1`, sessionID))
}

// UpdateIntake bloquea la fila, aplica mutate y guarda el perfil completo en la misma
// transaccion. Si mutate falla no se escribe nada.
func (r *PgAnonymousPatientRepository) UpdateIntake(ctx context.Context, id uuid.UUID, mutate IntakeMutation) (domain.AnonymousPatient, error) {
	const update = `
		UPDATE anonymous_patients
		SET therapy_needs = $2, description = $3, age = $4, gender = $5,
			is_lgbtq_therapist_preference = $6, is_religious_therapist_preference = $7, updated_at = $8
		WHERE id = $1
	`

	var updated domain.AnonymousPatient
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		current, err := scanAnonymousPatient(tx.QueryRow(ctx, selectAnonymousPatient+` WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			return err
		}

		next, err := mutate(current.IntakeProfile)
		if err != nil {
			return err
		}
		if next.TherapyNeeds == nil {
			next.TherapyNeeds = []string{}
		}

		var gender *string
		if next.Gender != nil {
			g := string(*next.Gender)
			gender = &g
		}
		now := time.Now().UTC()
		if _, err := tx.Exec(ctx, update, id,
			next.TherapyNeeds,
			next.Description,
			next.Age,
			gender,
			next.IsLGBTQTherapistPreference,
			next.IsReligiousTherapistPreference,
			now,
		); err != nil {
			return err
		}

		current.IntakeProfile = next
		current.UpdatedAt = now
		updated = current
		return nil
	})
	if err != nil {
		return domain.AnonymousPatient{}, err
	}
	return updated, nil
}

func scanAnonymousPatient(row pgx.Row) (domain.AnonymousPatient, error) {
	var (
		p      domain.AnonymousPatient
		gender *string
	)
	err := row.Scan(
		&p.ID,
		&p.SessionID,
		&p.TherapyNeeds,
		&p.Description,
		&p.Age,
		&gender,
		&p.IsLGBTQTherapistPreference,
		&p.IsReligiousTherapistPreference,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return domain.AnonymousPatient{}, err
	}
	if gender != nil {
		g := domain.Gender(*gender)
		p.Gender = &g
	}
	if p.TherapyNeeds == nil {
		p.TherapyNeeds = []string{}
	}
	return p, nil
}
