package session

import (
	"context"
	"sync"
	"time"

	"praxis/models"
)

// MemoryStore is an in-process Store used by tests and local development.
// TTLs are honored lazily on read.
type MemoryStore struct {
	mu sync.Mutex

	registrations map[string]models.RegistrationSession
	auths         map[string]AuthSession
	credentials   map[string]PendingCredentials
	outcomes      map[string]models.PaymentReturnOutcome
	markers       map[string]time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		registrations: make(map[string]models.RegistrationSession),
		auths:         make(map[string]AuthSession),
		credentials:   make(map[string]PendingCredentials),
		outcomes:      make(map[string]models.PaymentReturnOutcome),
		markers:       make(map[string]time.Time),
	}
}

func (s *MemoryStore) SaveRegistration(_ context.Context, sess *models.RegistrationSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess.LastUpdatedAt = time.Now()
	s.registrations[sess.ID] = *sess
	return nil
}

func (s *MemoryStore) GetRegistration(_ context.Context, id string) (*models.RegistrationSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.registrations[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := sess
	return &out, nil
}

func (s *MemoryStore) DeleteRegistration(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.registrations, id)
	return nil
}

func (s *MemoryStore) SaveAuth(_ context.Context, sessionID string, auth AuthSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	auth.LastUpdatedAt = time.Now()
	s.auths[sessionID] = auth
	return nil
}

func (s *MemoryStore) GetAuth(_ context.Context, sessionID string) (*AuthSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	auth, ok := s.auths[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	out := auth
	return &out, nil
}

func (s *MemoryStore) DeleteAuth(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.auths, sessionID)
	return nil
}

func (s *MemoryStore) SavePendingCredentials(_ context.Context, sessionID string, creds PendingCredentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credentials[sessionID] = creds
	return nil
}

func (s *MemoryStore) GetPendingCredentials(_ context.Context, sessionID string) (*PendingCredentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	creds, ok := s.credentials[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	out := creds
	return &out, nil
}

func (s *MemoryStore) DeletePendingCredentials(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.credentials, sessionID)
	return nil
}

func (s *MemoryStore) SaveReturnOutcome(_ context.Context, checkoutSessionID string, outcome models.PaymentReturnOutcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outcomes[checkoutSessionID] = outcome
	return nil
}

func (s *MemoryStore) GetReturnOutcome(_ context.Context, checkoutSessionID string) (*models.PaymentReturnOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	outcome, ok := s.outcomes[checkoutSessionID]
	if !ok {
		return nil, ErrNotFound
	}
	out := outcome
	return &out, nil
}

func (s *MemoryStore) AcquireOnce(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if expiry, ok := s.markers[key]; ok && time.Now().Before(expiry) {
		return false, nil
	}
	s.markers[key] = time.Now().Add(ttl)
	return true, nil
}

func (s *MemoryStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.markers, key)
	return nil
}

func (s *MemoryStore) Close() error { return nil }
