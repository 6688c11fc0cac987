package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"praxis/config"
	"praxis/models"

	"github.com/go-redis/redis/v8"
)

// Key prefixes for the session database.
const (
	registrationPrefix  = "regSession:"
	authSessionPrefix   = "authSession:"
	pendingCredsPrefix  = "pendingCreds:"
	returnOutcomePrefix = "returnOutcome:"
)

// Outcome records are kept long enough for any re-render or reload of the
// return page to observe them.
const returnOutcomeTTL = time.Hour

// RedisStore is the production Store backed by a dedicated Redis database.
type RedisStore struct {
	client *redis.Client

	registrationTTL time.Duration
	credentialsTTL  time.Duration
}

// NewRedisStore wraps an existing Redis client.
func NewRedisStore(client *redis.Client, registrationTTL, credentialsTTL time.Duration) *RedisStore {
	return &RedisStore{
		client:          client,
		registrationTTL: registrationTTL,
		credentialsTTL:  credentialsTTL,
	}
}

// InitRedisStore connects to the session database configured in AppConfig.
func InitRedisStore() *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisSessionDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (sessions): %v", err)
	}
	return NewRedisStore(
		client,
		time.Duration(config.AppConfig.RegistrationSessionTTL)*time.Minute,
		time.Duration(config.AppConfig.PendingCredentialsTTL)*time.Minute,
	)
}

func (s *RedisStore) setJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	if err := s.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) getJSON(ctx context.Context, key string, out any) error {
	data, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to load %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(data), out); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) SaveRegistration(ctx context.Context, sess *models.RegistrationSession) error {
	sess.LastUpdatedAt = time.Now()
	return s.setJSON(ctx, registrationPrefix+sess.ID, sess, s.registrationTTL)
}

func (s *RedisStore) GetRegistration(ctx context.Context, id string) (*models.RegistrationSession, error) {
	var sess models.RegistrationSession
	if err := s.getJSON(ctx, registrationPrefix+id, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *RedisStore) DeleteRegistration(ctx context.Context, id string) error {
	return s.client.Del(ctx, registrationPrefix+id).Err()
}

func (s *RedisStore) SaveAuth(ctx context.Context, sessionID string, auth AuthSession) error {
	auth.LastUpdatedAt = time.Now()
	// Auth sessions live as long as the token they carry; no store-side TTL.
	return s.setJSON(ctx, authSessionPrefix+sessionID, auth, 0)
}

func (s *RedisStore) GetAuth(ctx context.Context, sessionID string) (*AuthSession, error) {
	var auth AuthSession
	if err := s.getJSON(ctx, authSessionPrefix+sessionID, &auth); err != nil {
		return nil, err
	}
	return &auth, nil
}

func (s *RedisStore) DeleteAuth(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, authSessionPrefix+sessionID).Err()
}

func (s *RedisStore) SavePendingCredentials(ctx context.Context, sessionID string, creds PendingCredentials) error {
	return s.setJSON(ctx, pendingCredsPrefix+sessionID, creds, s.credentialsTTL)
}

func (s *RedisStore) GetPendingCredentials(ctx context.Context, sessionID string) (*PendingCredentials, error) {
	var creds PendingCredentials
	if err := s.getJSON(ctx, pendingCredsPrefix+sessionID, &creds); err != nil {
		return nil, err
	}
	return &creds, nil
}

func (s *RedisStore) DeletePendingCredentials(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, pendingCredsPrefix+sessionID).Err()
}

func (s *RedisStore) SaveReturnOutcome(ctx context.Context, checkoutSessionID string, outcome models.PaymentReturnOutcome) error {
	return s.setJSON(ctx, returnOutcomePrefix+checkoutSessionID, outcome, returnOutcomeTTL)
}

func (s *RedisStore) GetReturnOutcome(ctx context.Context, checkoutSessionID string) (*models.PaymentReturnOutcome, error) {
	var outcome models.PaymentReturnOutcome
	if err := s.getJSON(ctx, returnOutcomePrefix+checkoutSessionID, &outcome); err != nil {
		return nil, err
	}
	return &outcome, nil
}

func (s *RedisStore) AcquireOnce(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire marker %s: %w", key, err)
	}
	return ok, nil
}

func (s *RedisStore) Release(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
