package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"therapy-match/internal/domain"
)

// SubjectRepository resuelve pacientes y terapeutas registrados.
type SubjectRepository interface {
	Get(ctx context.Context, ref domain.SubjectRef) (domain.Subject, error)
}

type PgSubjectRepository struct {
	pool *pgxpool.Pool
}

func NewPgSubjectRepository(pool *pgxpool.Pool) *PgSubjectRepository {
	return &PgSubjectRepository{pool: pool}
}

func (r *PgSubjectRepository) Get(ctx context.Context, ref domain.SubjectRef) (domain.Subject, error) {
	table, err := subjectTable(ref.Kind)
	if err != nil {
		return domain.Subject{}, err
	}
	query := `SELECT id, display_name, created_at FROM ` + table + ` WHERE id = $1`

	subject := domain.Subject{Ref: domain.SubjectRef{Kind: ref.Kind}}
	if err := r.pool.QueryRow(ctx, query, ref.ID).Scan(
		&subject.Ref.ID,
		&subject.DisplayName,
		&subject.CreatedAt,
	); err != nil {
		return domain.Subject{}, err
	}
	return subject, nil
}

// subjectTable solo acepta tipos conocidos; nunca interpola entrada libre.
func subjectTable(kind domain.SubjectKind) (string, error) {
	switch kind {
	case domain.SubjectPatient:
		return "patients", nil
	case domain.SubjectTherapist:
		return "therapists", nil
	default:
		return "", fmt.Errorf("unknown subject kind %q", kind)
	}
}
