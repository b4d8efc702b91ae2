// Package session persists per-session trip context snapshots in Redis.
// The engine is stateless across turns; this store is how a session's
// accumulated facts survive between messages.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"trip-context-engine/internal/common/errors"
	"trip-context-engine/internal/common/logger"
	"trip-context-engine/internal/models"
)

// DefaultTTL is how long an idle session's snapshot is kept.
const DefaultTTL = 24 * time.Hour

// ErrNotFound is returned by Get when no snapshot exists for the session.
var ErrNotFound = fmt.Errorf("session snapshot not found")

// Snapshot is what the store persists per session: the accumulated
// context plus the recent message history the classifier scans.
type Snapshot struct {
	SessionID string                   `json:"sessionId"`
	Context   models.TripContext       `json:"context"`
	History   []models.Message         `json:"history"`
	State     models.ConversationState `json:"state,omitempty"`
	UpdatedAt time.Time                `json:"updatedAt"`
}

// Store reads and writes session snapshots. Each snapshot lives under its
// own key with a sliding TTL, so abandoned sessions expire on their own.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
	log logger.Logger
}

// NewStore builds a Store over an existing Redis client. A non-positive
// ttl falls back to DefaultTTL.
func NewStore(rdb *redis.Client, ttl time.Duration, log logger.Logger) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Store{rdb: rdb, ttl: ttl, log: log}
}

func key(sessionID string) string {
	return "trip:session:" + sessionID
}

// Get loads the snapshot for a session. A missing key returns ErrNotFound;
// any transport failure maps to SESSION_STORE_UNAVAILABLE.
func (s *Store) Get(ctx context.Context, sessionID string) (Snapshot, error) {
	raw, err := s.rdb.Get(ctx, key(sessionID)).Bytes()
	if err == redis.Nil {
		return Snapshot{}, ErrNotFound
	}
	if err != nil {
		return Snapshot{}, errors.NewSessionStoreUnavailableError(err)
	}

	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return Snapshot{}, errors.NewContextDecodeFailedError(err)
	}
	return snap, nil
}

// GetOrNew loads the snapshot for a session, returning a fresh one when
// none exists yet.
func (s *Store) GetOrNew(ctx context.Context, sessionID string) (Snapshot, error) {
	snap, err := s.Get(ctx, sessionID)
	if err == ErrNotFound {
		return Snapshot{
			SessionID: sessionID,
			Context:   models.NewTripContext(),
		}, nil
	}
	return snap, err
}

// Put writes a snapshot and resets its TTL.
func (s *Store) Put(ctx context.Context, snap Snapshot) error {
	snap.UpdatedAt = time.Now().UTC()
	raw, err := json.Marshal(snap)
	if err != nil {
		return errors.NewContextPersistFailedError(snap.SessionID, err)
	}
	if err := s.rdb.Set(ctx, key(snap.SessionID), raw, s.ttl).Err(); err != nil {
		return errors.NewContextPersistFailedError(snap.SessionID, err)
	}
	s.log.Debug("session snapshot persisted", map[string]interface{}{
		"sessionId": snap.SessionID,
		"ttl":       s.ttl.String(),
	})
	return nil
}

// Delete removes a session's snapshot. Deleting a missing session is not
// an error.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	if err := s.rdb.Del(ctx, key(sessionID)).Err(); err != nil {
		return errors.NewSessionStoreUnavailableError(err)
	}
	return nil
}

// Touch extends a session's TTL without rewriting the snapshot.
func (s *Store) Touch(ctx context.Context, sessionID string) error {
	if err := s.rdb.Expire(ctx, key(sessionID), s.ttl).Err(); err != nil {
		return errors.NewSessionStoreUnavailableError(err)
	}
	return nil
}
