package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/kendall-kelly/tailor-shop-api/logger"
	"github.com/kendall-kelly/tailor-shop-api/models"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ErrSessionNotFound is returned by Lookup for unknown or expired tokens
var ErrSessionNotFound = errors.New("session not found or expired")

// SessionStore keeps server-side login sessions keyed by an opaque token
type SessionStore interface {
	Create(ctx context.Context, ownerID string) (token string, expiresAt time.Time, err error)
	Lookup(ctx context.Context, token string) (ownerID string, err error)
	Destroy(ctx context.Context, token string) error
}

var sessionStoreInstance SessionStore

// GetSessionStore returns the session store the HTTP layer uses
func GetSessionStore() SessionStore {
	return sessionStoreInstance
}

// SetSessionStore sets the session store instance
func SetSessionStore(store SessionStore) {
	sessionStoreInstance = store
}

// newSessionToken returns 32 random bytes, base64url encoded
func newSessionToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// DBSessionStore keeps sessions in the sessions table
type DBSessionStore struct {
	db  *gorm.DB
	ttl time.Duration
	now func() time.Time
}

func NewDBSessionStore(db *gorm.DB, ttl time.Duration) *DBSessionStore {
	return &DBSessionStore{db: db, ttl: ttl, now: time.Now}
}

func (s *DBSessionStore) Create(ctx context.Context, ownerID string) (string, time.Time, error) {
	token, err := newSessionToken()
	if err != nil {
		return "", time.Time{}, err
	}

	now := s.now()
	session := models.Session{Token: token, OwnerID: ownerID, ExpiresAt: now.Add(s.ttl)}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("owner_id = ? AND expires_at <= ?", ownerID, now).Delete(&models.Session{}).Error; err != nil {
			return err
		}
		return tx.Create(&session).Error
	})
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to create session: %w", err)
	}
	return token, session.ExpiresAt, nil
}

func (s *DBSessionStore) Lookup(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrSessionNotFound
	}

	var session models.Session
	err := s.db.WithContext(ctx).Where("token = ?", token).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrSessionNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up session: %w", err)
	}

	if session.Expired(s.now()) {
		_ = s.Destroy(ctx, token)
		return "", ErrSessionNotFound
	}
	return session.OwnerID, nil
}

func (s *DBSessionStore) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.db.WithContext(ctx).Where("token = ?", token).Delete(&models.Session{}).Error; err != nil {
		return fmt.Errorf("failed to destroy session: %w", err)
	}
	return nil
}

// RedisSessionStore keeps sessions as expiring redis keys
type RedisSessionStore struct {
	rdb    *goredis.Client
	ttl    time.Duration
	prefix string
	log    *logger.Logger
}

// NewRedisSessionStore connects to addr and verifies the connection
func NewRedisSessionStore(ctx context.Context, addr string, ttl time.Duration, log *logger.Logger) (*RedisSessionStore, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return newRedisSessionStore(rdb, ttl, log), nil
}

func newRedisSessionStore(rdb *goredis.Client, ttl time.Duration, log *logger.Logger) *RedisSessionStore {
	return &RedisSessionStore{
		rdb:    rdb,
		ttl:    ttl,
		prefix: "tailor:session:",
		log:    log.With("service", "RedisSessionStore"),
	}
}

func (s *RedisSessionStore) key(token string) string {
	return s.prefix + token
}

func (s *RedisSessionStore) Create(ctx context.Context, ownerID string) (string, time.Time, error) {
	token, err := newSessionToken()
	if err != nil {
		return "", time.Time{}, err
	}
	if err := s.rdb.Set(ctx, s.key(token), ownerID, s.ttl).Err(); err != nil {
		return "", time.Time{}, fmt.Errorf("failed to create session: %w", err)
	}
	s.log.Debug("session created", "owner_id", ownerID)
	return token, time.Now().Add(s.ttl), nil
}

func (s *RedisSessionStore) Lookup(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrSessionNotFound
	}
	ownerID, err := s.rdb.Get(ctx, s.key(token)).Result()
	if errors.Is(err, goredis.Nil) {
		return "", ErrSessionNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up session: %w", err)
	}
	return ownerID, nil
}

func (s *RedisSessionStore) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.rdb.Del(ctx, s.key(token)).Err(); err != nil {
		return fmt.Errorf("failed to destroy session: %w", err)
	}
	return nil
}

// Close releases the redis connection pool
func (s *RedisSessionStore) Close() error {
	return s.rdb.Close()
}
