package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// StateTTL bounds how long an issued authorization state stays resolvable.
const StateTTL = 5 * time.Minute

var ErrStateNotFound = errors.New("oauth state not found or expired")

// StateStore round-trips the OAuth state parameter: an unguessable token is
// issued before the provider redirect and resolved exactly once on the
// callback. The state is the only correlation between the two steps.
type StateStore interface {
	Issue(ctx context.Context, userID uint) (string, error)
	Resolve(ctx context.Context, state string) (uint, error)
}

// GenerateStateToken returns a random URL-safe token for the state parameter.
func GenerateStateToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		logrus.WithError(err).Error("Failed to generate state token")
		return ""
	}
	return base64.URLEncoding.EncodeToString(b)
}

// RedisStateStore keeps issued states in redis so callbacks can land on any
// instance.
type RedisStateStore struct {
	client *redis.Client
}

func NewRedisStateStore(client *redis.Client) *RedisStateStore {
	return &RedisStateStore{client: client}
}

func (s *RedisStateStore) Issue(ctx context.Context, userID uint) (string, error) {
	state := GenerateStateToken()
	if state == "" {
		return "", errors.New("failed to generate state token")
	}
	key := "oauth_state:" + state
	if err := s.client.Set(ctx, key, strconv.FormatUint(uint64(userID), 10), StateTTL).Err(); err != nil {
		return "", fmt.Errorf("failed to store oauth state: %w", err)
	}
	return state, nil
}

func (s *RedisStateStore) Resolve(ctx context.Context, state string) (uint, error) {
	key := "oauth_state:" + state
	val, err := s.client.GetDel(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrStateNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to resolve oauth state: %w", err)
	}
	userID, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, ErrStateNotFound
	}
	return uint(userID), nil
}

// MemoryStateStore is a single-instance state store backed by a sync.Map.
type MemoryStateStore struct {
	states sync.Map
}

type memoryState struct {
	userID    uint
	expiresAt time.Time
}

func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{}
}

func (s *MemoryStateStore) Issue(ctx context.Context, userID uint) (string, error) {
	state := GenerateStateToken()
	if state == "" {
		return "", errors.New("failed to generate state token")
	}
	s.sweep()
	s.states.Store(state, memoryState{userID: userID, expiresAt: time.Now().Add(StateTTL)})
	return state, nil
}

// sweep drops entries past their TTL. Abandoned authorize flows are never
// resolved, so without this they would accumulate for the process lifetime.
func (s *MemoryStateStore) sweep() {
	now := time.Now()
	s.states.Range(func(key, val any) bool {
		if now.After(val.(memoryState).expiresAt) {
			s.states.Delete(key)
		}
		return true
	})
}

func (s *MemoryStateStore) Resolve(ctx context.Context, state string) (uint, error) {
	val, ok := s.states.LoadAndDelete(state)
	if !ok {
		return 0, ErrStateNotFound
	}
	entry := val.(memoryState)
	if time.Now().After(entry.expiresAt) {
		return 0, ErrStateNotFound
	}
	return entry.userID, nil
}
