package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"

	"github.com/shokrpour/thesisflow/internal/models"
)

const (
	sessionTokenPrefix = "tf-"
	sessionKeyTpl      = "session:%s"
	timeFormat         = "2006-01-02 15:04:05"
)

// Session is the principal attached to a token after login. Internal
// reviewers resolve to their professor account; "reviewer" is a session
// role, not a stored account kind.
type Session struct {
	Role      models.Role
	AccountID string
}

// SessionManager hands out login tokens. Backed by Redis when a URL is
// configured, otherwise by an in-process cache with the same TTL.
type SessionManager struct {
	redis *redis.Client
	local *cache.Cache
	ttl   time.Duration
}

func NewSessionManager(config *Config) (*SessionManager, error) {
	ttl := time.Duration(config.Sessions.TTLMinutes) * time.Minute

	if config.Sessions.RedisURL == "" {
		return &SessionManager{
			local: cache.New(ttl, 2*ttl),
			ttl:   ttl,
		}, nil
	}

	opt, err := redis.ParseURL(config.Sessions.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &SessionManager{redis: client, ttl: ttl}, nil
}

func generateToken() (string, error) {
	randomBytes := make([]byte, 16)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return sessionTokenPrefix + hex.EncodeToString(randomBytes), nil
}

func (m *SessionManager) Create(ctx context.Context, role models.Role, accountID string) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}

	if m.redis == nil {
		m.local.Set(token, Session{Role: role, AccountID: accountID}, m.ttl)
		return token, nil
	}

	key := fmt.Sprintf(sessionKeyTpl, token)
	pipe := m.redis.Pipeline()
	pipe.HSet(ctx, key, map[string]interface{}{
		"role":             string(role),
		"account_id":       accountID,
		"created_dttm_utc": time.Now().UTC().Format(timeFormat),
	})
	pipe.Expire(ctx, key, m.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}
	return token, nil
}

func (m *SessionManager) Resolve(ctx context.Context, token string) (*Session, error) {
	if m.redis == nil {
		v, ok := m.local.Get(token)
		if !ok {
			return nil, fmt.Errorf("%w: unknown or expired session", models.ErrUnauthorized)
		}
		session := v.(Session)
		return &session, nil
	}

	key := fmt.Sprintf(sessionKeyTpl, token)
	fields, err := m.redis.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis error: %w", err)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: unknown or expired session", models.ErrUnauthorized)
	}
	return &Session{
		Role:      models.Role(fields["role"]),
		AccountID: fields["account_id"],
	}, nil
}

func (m *SessionManager) Drop(ctx context.Context, token string) error {
	if m.redis == nil {
		m.local.Delete(token)
		return nil
	}
	return m.redis.Del(ctx, fmt.Sprintf(sessionKeyTpl, token)).Err()
}

func (m *SessionManager) Close() error {
	if m.redis != nil {
		return m.redis.Close()
	}
	return nil
}
