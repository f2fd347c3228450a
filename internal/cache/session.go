package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/agendacitas/agenda/internal/model"
	"github.com/agendacitas/agenda/internal/session"
)

// sessionPrefix is the key prefix of stored sessions. Keys are already
// token hashes (see session.Manager).
const sessionPrefix = keyNamespace + "session:"

// cachedSession is the JSON document stored per session.
type cachedSession struct {
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionStore implements session.Store on Redis. Expiry is delegated to
// the key TTL.
type SessionStore struct {
	client *redis.Client
}

var _ session.Store = (*SessionStore)(nil)

// Sessions returns a session store sharing the cache's client.
func (c *Cache) Sessions() *SessionStore {
	return &SessionStore{client: c.client}
}

// Save stores s under key for ttl.
func (s *SessionStore) Save(ctx context.Context, key string, sess *model.Session, ttl time.Duration) error {
	data, err := encodeSession(sess)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, sessionPrefix+key, data, ttl).Err()
}

// Load returns the session or session.ErrNotFound.
func (s *SessionStore) Load(ctx context.Context, key string) (*model.Session, error) {
	data, err := s.client.Get(ctx, sessionPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, session.ErrNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	sess, ok := decodeSession(data)
	if !ok {
		// A corrupted entry counts as logged out.
		return nil, session.ErrNotFound
	}
	return sess, nil
}

// Delete removes the session.
func (s *SessionStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, sessionPrefix+key).Err()
}

func encodeSession(sess *model.Session) ([]byte, error) {
	data, err := json.Marshal(cachedSession{
		UserID:    sess.UserID,
		Username:  sess.Username,
		CreatedAt: sess.CreatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal session: %w", err)
	}
	return data, nil
}

func decodeSession(data []byte) (*model.Session, bool) {
	var cached cachedSession
	if err := json.Unmarshal(data, &cached); err != nil || cached.Username == "" {
		return nil, false
	}
	return &model.Session{
		UserID:    cached.UserID,
		Username:  cached.Username,
		CreatedAt: cached.CreatedAt,
	}, true
}
