package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/daykeep/backend/domain"
	"github.com/daykeep/backend/repository"
)

type UseCase struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	secret   []byte
	issuer   string
	ttl      time.Duration
	logger   *zap.Logger
}

func New(users repository.UserRepository, sessions repository.SessionRepository, secret, issuer string, ttl time.Duration, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &UseCase{
		users:    users,
		sessions: sessions,
		secret:   []byte(secret),
		issuer:   issuer,
		ttl:      ttl,
		logger:   logger,
	}
}

type LoginInput struct {
	UserID      int64
	Email       string
	DisplayName string
	TTL         time.Duration
}

// Token is an issued credential: the signed JWT plus the session it is
// bound to.
type Token struct {
	Token   string          `json:"token"`
	Session *domain.Session `json:"session"`
	User    *domain.User    `json:"user,omitempty"`
}

// Login issues a session and a signed token. An unknown user id with an
// email registers the account on the spot; without one it stays an error.
func (uc *UseCase) Login(ctx context.Context, input LoginInput) (*Token, error) {
	if input.UserID == 0 {
		return nil, domain.ErrInvalidPayload
	}

	user, err := uc.users.GetByID(ctx, input.UserID)
	if err != nil {
		if !domain.IsDomainError(err, domain.ErrCodeNotFound) || input.Email == "" {
			return nil, err
		}
		user = &domain.User{
			ID:          input.UserID,
			Email:       input.Email,
			DisplayName: input.DisplayName,
			Status:      "active",
		}
		if err := uc.users.Upsert(ctx, user); err != nil {
			return nil, err
		}
		uc.logger.Info("user registered on first login", zap.Int64("user_id", user.ID))
	}
	if !user.IsActive() {
		return nil, domain.NewError(domain.ErrCodeForbidden, "account is not active")
	}

	ttl := input.TTL
	if ttl <= 0 {
		ttl = uc.ttl
	}

	session := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(ttl),
	}
	if err := uc.sessions.Save(ctx, session); err != nil {
		return nil, err
	}

	signed, err := uc.sign(session)
	if err != nil {
		return nil, err
	}
	return &Token{Token: signed, Session: session, User: user}, nil
}

func (uc *UseCase) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	session, err := uc.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.IsExpired(time.Now()) {
		_ = uc.sessions.Delete(ctx, sessionID)
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

// RefreshSession extends a live session and re-issues its token.
func (uc *UseCase) RefreshSession(ctx context.Context, sessionID string, ttl time.Duration) (*Token, error) {
	session, err := uc.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = uc.ttl
	}
	if err := uc.sessions.Extend(ctx, sessionID, int(ttl.Seconds())); err != nil {
		return nil, err
	}
	session.ExpiresAt = time.Now().Add(ttl)

	signed, err := uc.sign(session)
	if err != nil {
		return nil, err
	}
	return &Token{Token: signed, Session: session}, nil
}

func (uc *UseCase) RevokeSession(ctx context.Context, sessionID string) error {
	return uc.sessions.Delete(ctx, sessionID)
}

func (uc *UseCase) sign(session *domain.Session) (string, error) {
	claims := jwt.MapClaims{
		"user_id":    session.UserID,
		"session_id": session.ID,
		"iss":        uc.issuer,
		"iat":        time.Now().Unix(),
		"exp":        session.ExpiresAt.Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(uc.secret)
}
