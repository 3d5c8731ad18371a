package memory

import (
	"context"
	"time"

	"github.com/daykeep/backend/domain"
	"github.com/daykeep/backend/repository"
)

type userRepository struct {
	s *Store
}

// NewUserRepository returns a map-backed UserRepository over the store.
func NewUserRepository(s *Store) repository.UserRepository {
	return &userRepository{s: s}
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	user, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	out := user
	return &out, nil
}

func (r *userRepository) Upsert(ctx context.Context, user *domain.User) error {
	if user == nil {
		return domain.ErrInvalidPayload
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if current, ok := r.s.users[user.ID]; ok {
		user.CreatedAt = current.CreatedAt
	} else if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	user.UpdatedAt = time.Now()
	r.s.users[user.ID] = *user
	return nil
}

type sessionRepository struct {
	s *Store
}

// NewSessionRepository returns a map-backed SessionRepository over the store.
func NewSessionRepository(s *Store) repository.SessionRepository {
	return &sessionRepository{s: s}
}

func (r *sessionRepository) Get(ctx context.Context, id string) (*domain.Session, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	session, ok := r.s.sessions[id]
	if !ok || session.IsExpired(time.Now()) {
		return nil, domain.ErrSessionNotFound
	}
	out := session
	return &out, nil
}

func (r *sessionRepository) Save(ctx context.Context, session *domain.Session) error {
	if session == nil || session.ID == "" {
		return domain.ErrInvalidPayload
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}
	r.s.sessions[session.ID] = *session
	return nil
}

func (r *sessionRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.sessions, id)
	return nil
}

func (r *sessionRepository) Extend(ctx context.Context, id string, ttlSeconds int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	session, ok := r.s.sessions[id]
	if !ok {
		return domain.ErrSessionNotFound
	}
	session.ExpiresAt = time.Now().Add(time.Duration(ttlSeconds) * time.Second)
	r.s.sessions[id] = session
	return nil
}
