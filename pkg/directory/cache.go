package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultSessionTTL       = 300 * time.Second
	DefaultSessionNamespace = "docflow"
)

// SessionCache wraps a Directory and caches CurrentUser per session in Redis
// under "<namespace>:session:<id>". Cache failures fall through to the
// directory; they never fail the call.
type SessionCache struct {
	next      Directory
	client    redis.UniversalClient
	namespace string
	ttl       time.Duration
	logger    *slog.Logger
}

var _ Directory = (*SessionCache)(nil)

// NewRedisClient connects to the Redis instance at url and pings it.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	options, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(options)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()

		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}

func NewSessionCache(next Directory, client redis.UniversalClient, namespace string, ttl time.Duration, logger *slog.Logger) *SessionCache {
	if namespace == "" {
		namespace = DefaultSessionNamespace
	}

	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}

	return &SessionCache{
		next:      next,
		client:    client,
		namespace: namespace,
		ttl:       ttl,
		logger:    logger.With("module", "session_cache"),
	}
}

func (c *SessionCache) key(sessionID string) string {
	return c.namespace + ":session:" + sessionID
}

func (c *SessionCache) CurrentUser(ctx context.Context) (*User, error) {
	sessionID, ok := SessionFrom(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}

	key := c.key(sessionID)

	payload, err := c.client.Get(ctx, key).Bytes()

	switch {
	case err == nil:
		var user User
		if err := json.Unmarshal(payload, &user); err == nil {
			return &user, nil
		}

		c.logger.WarnContext(ctx, "Discarding malformed cached session", "key", key)
	case !errors.Is(err, redis.Nil):
		c.logger.WarnContext(ctx, "Session cache read failed", "error", err)
	}

	user, err := c.next.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}

	payload, err = json.Marshal(user)
	if err == nil {
		err = c.client.Set(ctx, key, payload, c.ttl).Err()
	}

	if err != nil {
		c.logger.WarnContext(ctx, "Session cache write failed", "error", err)
	}

	return user, nil
}

func (c *SessionCache) Users(ctx context.Context, ids []string) (map[string]*User, error) {
	return c.next.Users(ctx, ids)
}

func (c *SessionCache) Organizations(ctx context.Context, ids []string) (map[string]*Organization, error) {
	return c.next.Organizations(ctx, ids)
}

func (c *SessionCache) ExternalUsers(ctx context.Context, ids []string) (map[string]*ExternalUser, error) {
	return c.next.ExternalUsers(ctx, ids)
}

func (c *SessionCache) UserIDsByRole(ctx context.Context, role string) ([]string, error) {
	return c.next.UserIDsByRole(ctx, role)
}
