package service

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	sessionTokenIssuer = "therapy-match"
	sessionTokenType   = "anonymous_session"
)

var (
	ErrSessionTokenInvalid = errors.New("session token invalid")
	ErrSessionTokenExpired = errors.New("session token expired")
)

// SessionClaims identifica una sesion anonima; Subject es el session id.
type SessionClaims struct {
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

// SessionTokenService firma y valida tokens de sesion anonima (HS256).
type SessionTokenService struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

func NewSessionTokenService(secret string, ttl time.Duration) *SessionTokenService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionTokenService{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: sessionTokenIssuer,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// TTL devuelve la vigencia de los tokens emitidos.
func (s *SessionTokenService) TTL() time.Duration {
	return s.ttl
}

func (s *SessionTokenService) Sign(sessionID string) (string, error) {
	if len(s.secret) == 0 || strings.TrimSpace(sessionID) == "" {
		return "", ErrSessionTokenInvalid
	}
	now := s.now()
	claims := SessionClaims{
		TokenType: sessionTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   sessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Parse valida firma, expiracion, emisor y tipo, y devuelve el session id.
func (s *SessionTokenService) Parse(tokenString string) (string, error) {
	if len(s.secret) == 0 || strings.TrimSpace(tokenString) == "" {
		return "", ErrSessionTokenInvalid
	}
	var claims SessionClaims
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	_, err := parser.ParseWithClaims(tokenString, &claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrSessionTokenExpired
		}
		return "", ErrSessionTokenInvalid
	}
	if claims.TokenType != sessionTokenType || claims.Issuer != s.issuer {
		return "", ErrSessionTokenInvalid
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return "", ErrSessionTokenInvalid
	}
	return claims.Subject, nil
}
