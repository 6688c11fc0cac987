// Package session persists the state that must survive page reloads and the
// external checkout redirect: the registration wizard session, the auth
// session, and the transient pending-credentials blob.
package session

import (
	"context"
	"errors"
	"time"

	"praxis/models"
)

// ErrNotFound is returned when no value exists under the requested key.
var ErrNotFound = errors.New("session: not found")

// AuthSession is the only durable artifact of the registration subsystem.
// It is created by login or by payment verification and cleared on logout.
type AuthSession struct {
	Token         string      `json:"token"`
	User          models.User `json:"user"`
	CreatedAt     time.Time   `json:"createdAt"`
	LastUpdatedAt time.Time   `json:"lastUpdatedAt"`
}

// PendingCredentials is the fallback login material written right after
// temp-account creation on the individual flow. It is sensitive: it must be
// erased on success and on every unrecoverable failure, and it carries a TTL
// so it can never outlive the flow.
type PendingCredentials struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	AccountType string `json:"accountType"`
}

// Store is the session-scoped key/value state behind the registration and
// payment-return flows.
type Store interface {
	SaveRegistration(ctx context.Context, sess *models.RegistrationSession) error
	GetRegistration(ctx context.Context, id string) (*models.RegistrationSession, error)
	DeleteRegistration(ctx context.Context, id string) error

	SaveAuth(ctx context.Context, sessionID string, auth AuthSession) error
	GetAuth(ctx context.Context, sessionID string) (*AuthSession, error)
	DeleteAuth(ctx context.Context, sessionID string) error

	SavePendingCredentials(ctx context.Context, sessionID string, creds PendingCredentials) error
	GetPendingCredentials(ctx context.Context, sessionID string) (*PendingCredentials, error)
	DeletePendingCredentials(ctx context.Context, sessionID string) error

	// SaveReturnOutcome records the terminal outcome of a payment-return
	// resolution keyed by checkout session id, so re-invocations observe the
	// recorded result instead of repeating side effects.
	SaveReturnOutcome(ctx context.Context, checkoutSessionID string, outcome models.PaymentReturnOutcome) error
	GetReturnOutcome(ctx context.Context, checkoutSessionID string) (*models.PaymentReturnOutcome, error)

	// AcquireOnce atomically claims the given marker key. It returns true
	// for the first caller and false for everyone after, until the TTL
	// elapses or the marker is released.
	AcquireOnce(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Release drops a marker claimed with AcquireOnce.
	Release(ctx context.Context, key string) error

	Close() error
}
