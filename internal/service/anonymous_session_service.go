package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"therapy-match/internal/domain"
	"therapy-match/internal/repository"
)

var ErrSessionRateLimited = errors.New("too many anonymous sessions")

// AnonymousSession es lo que recibe el cliente al abrir una sesion.
type AnonymousSession struct {
	Patient   domain.AnonymousPatient
	Token     string
	ExpiresAt time.Time
}

type AnonymousSessionService struct {
	logger   *zap.Logger
	patients repository.AnonymousPatientRepository
	tokens   *SessionTokenService
	limiter  SessionRateLimiter
	revoked  SessionRevocationStore
	now      func() time.Time
}

func NewAnonymousSessionService(
	logger *zap.Logger,
	patients repository.AnonymousPatientRepository,
	tokens *SessionTokenService,
	limiter SessionRateLimiter,
	revoked SessionRevocationStore,
) *AnonymousSessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnonymousSessionService{
		logger:   logger,
		patients: patients,
		tokens:   tokens,
		limiter:  limiter,
		revoked:  revoked,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Start registra un paciente anonimo nuevo y firma su token de sesion.
func (s *AnonymousSessionService) Start(ctx context.Context, clientKey string) (AnonymousSession, error) {
	if s.limiter != nil && !s.limiter.Allow(clientKey) {
		s.logger.Warn("anonymous session rate limited", zap.String("client", clientKey))
		return AnonymousSession{}, ErrSessionRateLimited
	}

	now := s.now()
	patient := domain.AnonymousPatient{
		ID:        uuid.New(),
		SessionID: uuid.NewString(),
		CreatedAt: now,
	}
	token, err := s.tokens.Sign(patient.SessionID)
	if err != nil {
		return AnonymousSession{}, err
	}
	if err := s.patients.Create(ctx, patient); err != nil {
		return AnonymousSession{}, &domain.StorageError{Op: "create anonymous patient", Err: err}
	}

	s.logger.Info("anonymous session started", zap.String("anonymous_patient_id", patient.ID.String()))
	return AnonymousSession{
		Patient:   patient,
		Token:     token,
		ExpiresAt: now.Add(s.tokens.TTL()),
	}, nil
}

// Resolve valida el token y carga el paciente anonimo. Una sesion desconocida se
// reporta como token invalido.
func (s *AnonymousSessionService) Resolve(ctx context.Context, token string) (domain.AnonymousPatient, error) {
	sessionID, err := s.tokens.Parse(token)
	if err != nil {
		return domain.AnonymousPatient{}, err
	}
	if s.revoked != nil {
		revoked, err := s.revoked.IsRevoked(ctx, sessionID)
		if err != nil {
			s.logger.Warn("session revocation check failed", zap.Error(err))
		} else if revoked {
			return domain.AnonymousPatient{}, ErrSessionTokenInvalid
		}
	}
	patient, err := s.patients.GetBySessionID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.AnonymousPatient{}, ErrSessionTokenInvalid
		}
		return domain.AnonymousPatient{}, &domain.StorageError{Op: "get anonymous patient", Err: err}
	}
	return patient, nil
}

// End cierra la sesion; el token queda invalido aunque no haya expirado.
func (s *AnonymousSessionService) End(ctx context.Context, token string) error {
	sessionID, err := s.tokens.Parse(token)
	if err != nil {
		return err
	}
	if s.revoked == nil {
		return nil
	}
	if err := s.revoked.Revoke(ctx, sessionID, s.tokens.TTL()); err != nil {
		return &domain.StorageError{Op: "revoke anonymous session", Err: err}
	}
	s.logger.Info("anonymous session ended")
	return nil
}

// Profile relee el perfil de intake del paciente anonimo.
func (s *AnonymousSessionService) Profile(ctx context.Context, anonymousPatientID uuid.UUID) (domain.AnonymousPatient, error) {
	patient, err := s.patients.GetByID(ctx, anonymousPatientID)
	if err != nil {
		return domain.AnonymousPatient{}, lookupError(err, "anonymous patient", anonymousPatientID.String(), "get anonymous patient")
	}
	return patient, nil
}

// UpdateIntake aplica un patch parcial al perfil de intake. Los campos ausentes no cambian.
func (s *AnonymousSessionService) UpdateIntake(ctx context.Context, anonymousPatientID uuid.UUID, patch domain.IntakePatch) (domain.AnonymousPatient, error) {
	if err := patch.Validate(); err != nil {
		return domain.AnonymousPatient{}, err
	}
	if patch.IsEmpty() {
		return s.Profile(ctx, anonymousPatientID)
	}
	patient, err := s.patients.UpdateIntake(ctx, anonymousPatientID, func(current domain.IntakeProfile) (domain.IntakeProfile, error) {
		return patch.Apply(current), nil
	})
	if err != nil {
		return domain.AnonymousPatient{}, lookupError(err, "anonymous patient", anonymousPatientID.String(), "update anonymous patient")
	}
	s.logger.Info("anonymous intake updated", zap.String("anonymous_patient_id", anonymousPatientID.String()))
	return patient, nil
}
