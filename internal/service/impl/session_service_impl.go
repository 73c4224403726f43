package impl

import (
	"context"
	"time"

	"github.com/aliumairdev/saaskit/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type SessionConfig struct {
	Issuer     string
	Audience   string
	SessionTTL time.Duration // e.g. 24h
	PendingTTL time.Duration // e.g. 5m; lifetime of the 2FA challenge slot
	SigningKey []byte        // HS256 secret
}

const (
	scopeSession    = "session"
	scopePendingOTP = "pending_2fa"
)

type sessionClaims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

// SessionServiceImpl signs and verifies HS256 session tokens. The pending
// two-factor slot is a same-key token with a different scope and a much
// shorter TTL; it never grants access on its own.
type SessionServiceImpl struct {
	cfg SessionConfig
}

func NewSessionServiceHS256(cfg SessionConfig) *SessionServiceImpl {
	return &SessionServiceImpl{cfg: cfg}
}

func (s *SessionServiceImpl) IssueSession(ctx context.Context, user *domain.User) (string, int64, error) {
	token, err := s.sign(user.ID, scopeSession, s.cfg.SessionTTL)
	if err != nil {
		return "", 0, err
	}
	return token, int64(s.cfg.SessionTTL.Seconds()), nil
}

func (s *SessionServiceImpl) VerifySession(ctx context.Context, token string) (domain.UserID, error) {
	return s.verify(token, scopeSession)
}

func (s *SessionServiceImpl) IssuePendingTwoFactor(ctx context.Context, user *domain.User) (string, error) {
	return s.sign(user.ID, scopePendingOTP, s.cfg.PendingTTL)
}

func (s *SessionServiceImpl) VerifyPendingTwoFactor(ctx context.Context, token string) (domain.UserID, error) {
	return s.verify(token, scopePendingOTP)
}

func (s *SessionServiceImpl) sign(userID domain.UserID, scope string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := sessionClaims{
		Scope: scope,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.cfg.Issuer,
			Subject:   userID.String(),
			Audience:  jwt.ClaimStrings{s.cfg.Audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.cfg.SigningKey)
}

func (s *SessionServiceImpl) verify(token, wantScope string) (domain.UserID, error) {
	claims := &sessionClaims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.cfg.Issuer),
		jwt.WithAudience(s.cfg.Audience),
	)
	tok, err := parser.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.cfg.SigningKey, nil
	})
	if err != nil || !tok.Valid {
		return uuid.Nil, ErrInvalidToken
	}
	if claims.Scope != wantScope {
		return uuid.Nil, ErrInvalidToken
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	return userID, nil
}
