//go:build integration

package repository

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"therapy-match/internal/db"
	"therapy-match/internal/domain"
)

// Requiere DATABASE_URL apuntando a un Postgres con pgvector:
//
//	DATABASE_URL=postgres://... go test -tags integration ./internal/repository/...
func openTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set - skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	require.NoError(t, err, "connect")
	t.Cleanup(pool.Close)
	require.NoError(t, db.Migrate(ctx, pool), "migrate")
	return pool
}

func seedAnonymousTest(t *testing.T, pool *pgxpool.Pool) (domain.AnonymousPatient, domain.PersonalityTest) {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	patient := domain.AnonymousPatient{ID: uuid.New(), SessionID: uuid.NewString(), CreatedAt: now}
	require.NoError(t, NewPgAnonymousPatientRepository(pool).Create(ctx, patient))
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), `DELETE FROM anonymous_patients WHERE id = $1`, patient.ID)
	})

	answers, err := domain.TraitAnswerMap{}.WithAnswers(domain.TraitOpenness, domain.TraitAnswerSet{
		{ID: "O1", Category: domain.TraitOpenness, Score: 4},
	})
	require.NoError(t, err)
	test := domain.PersonalityTest{
		ID:                 uuid.New(),
		AnonymousPatientID: patient.ID,
		Answers:            answers,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	require.NoError(t, NewPgPersonalityTestRepository(pool).Create(ctx, test))
	return patient, test
}

func TestPgPersonalityTestRepository_UpdateRollsBackOnMutateError(t *testing.T) {
	pool := openTestPool(t)
	repo := NewPgPersonalityTestRepository(pool)
	ctx := context.Background()
	_, test := seedAnonymousTest(t, pool)

	boom := errors.New("merge rejected")
	_, err := repo.Update(ctx, test.ID, func(current domain.TraitAnswerMap) (domain.TraitAnswerMap, error) {
		next, err := current.WithAnswers(domain.TraitOpenness, domain.TraitAnswerSet{
			{ID: "O1", Category: domain.TraitOpenness, Score: 1},
			{ID: "O2", Category: domain.TraitOpenness, Score: 2},
		})
		require.NoError(t, err)
		return next, boom
	})
	require.ErrorIs(t, err, boom)

	stored, err := repo.GetByID(ctx, test.ID)
	require.NoError(t, err)
	require.Len(t, stored.Answers.Openness, 1)
	assert.Equal(t, 4, stored.Answers.Openness[0].Score)
	assert.True(t, stored.UpdatedAt.Equal(test.UpdatedAt), "updated_at must not move when nothing is written")
}

func TestPgPersonalityTestRepository_ConcurrentUpdatesAreSerialized(t *testing.T) {
	pool := openTestPool(t)
	repo := NewPgPersonalityTestRepository(pool)
	ctx := context.Background()
	_, test := seedAnonymousTest(t, pool)

	const writers = 10
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			answer := domain.RawAnswer{ID: uuid.NewString(), Category: domain.TraitExtroversion, Score: n%5 + 1}
			_, err := repo.Update(ctx, test.ID, func(current domain.TraitAnswerMap) (domain.TraitAnswerMap, error) {
				set := append(domain.TraitAnswerSet{}, current.Extroversion...)
				return current.WithAnswers(domain.TraitExtroversion, append(set, answer))
			})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	stored, err := repo.GetByID(ctx, test.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Answers.Extroversion, writers, "every locked read-modify-write must survive")
}

func TestPgPersonalityTestRepository_ClaimFinalization(t *testing.T) {
	pool := openTestPool(t)
	repo := NewPgPersonalityTestRepository(pool)
	ctx := context.Background()
	_, test := seedAnonymousTest(t, pool)

	first, second := uuid.New(), uuid.New()
	require.NoError(t, repo.ClaimFinalization(ctx, test.ID, first))
	require.ErrorIs(t, repo.ClaimFinalization(ctx, test.ID, second), ErrAlreadyFinalized)

	stored, err := repo.GetByID(ctx, test.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.FinalizedScoreID)
	assert.Equal(t, first, *stored.FinalizedScoreID)

	require.NoError(t, repo.ReleaseFinalization(ctx, test.ID, second))
	stored, err = repo.GetByID(ctx, test.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.FinalizedScoreID, "release with a foreign score id must not clear the claim")

	require.NoError(t, repo.ReleaseFinalization(ctx, test.ID, first))
	require.NoError(t, repo.ClaimFinalization(ctx, test.ID, second))

	err = repo.ClaimFinalization(ctx, uuid.New(), first)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrAlreadyFinalized)
}

func TestPgAnonymousPatientRepository_UpdateIntake(t *testing.T) {
	pool := openTestPool(t)
	repo := NewPgAnonymousPatientRepository(pool)
	ctx := context.Background()
	patient, _ := seedAnonymousTest(t, pool)

	age := 28
	gender := domain.GenderOther
	needs := []string{"anxiety"}
	updated, err := repo.UpdateIntake(ctx, patient.ID, func(current domain.IntakeProfile) (domain.IntakeProfile, error) {
		return domain.IntakePatch{Age: &age, Gender: &gender, TherapyNeeds: &needs}.Apply(current), nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"anxiety"}, updated.TherapyNeeds)

	_, err = repo.UpdateIntake(ctx, patient.ID, func(current domain.IntakeProfile) (domain.IntakeProfile, error) {
		return current, errors.New("rejected")
	})
	require.Error(t, err)

	stored, err := repo.GetByID(ctx, patient.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Age)
	assert.Equal(t, 28, *stored.Age)
	require.NotNil(t, stored.Gender)
	assert.Equal(t, domain.GenderOther, *stored.Gender)
	assert.Nil(t, stored.Description)
	assert.Nil(t, stored.IsReligiousTherapistPreference)

	bySession, err := repo.GetBySessionID(ctx, patient.SessionID)
	require.NoError(t, err)
	assert.Equal(t, stored.ID, bySession.ID)
}
