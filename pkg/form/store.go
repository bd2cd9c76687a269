package form

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aretw0/wayfinder/pkg/ports"
)

// ErrNoSession is returned by Store.Load when the identity has no open form.
var ErrNoSession = errors.New("no open form session")

const (
	keyPrefix  = "form:"
	defaultTTL = 24 * time.Hour
)

// Store persists one Session per identity through a ports.Cache.
type Store struct {
	cache ports.Cache
	ttl   time.Duration
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithTTL sets how long an idle session survives. Zero disables expiration.
func WithTTL(ttl time.Duration) StoreOption {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// NewStore creates a session store backed by cache.
func NewStore(cache ports.Cache, opts ...StoreOption) *Store {
	s := &Store{cache: cache, ttl: defaultTTL}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func key(externalID int64) string {
	return keyPrefix + strconv.FormatInt(externalID, 10)
}

// Load returns the open session of an identity, or ErrNoSession.
func (s *Store) Load(ctx context.Context, externalID int64) (*Session, error) {
	data, err := s.cache.Get(ctx, key(externalID))
	if err != nil {
		if errors.Is(err, ports.ErrCacheMiss) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("failed to load form session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("failed to unmarshal form session: %w", err)
	}
	if sess.Fields == nil {
		sess.Fields = map[string]Entry{}
	}
	return &sess, nil
}

// Save stores the session, refreshing its expiration.
func (s *Store) Save(ctx context.Context, externalID int64, sess *Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to marshal form session: %w", err)
	}
	if err := s.cache.Set(ctx, key(externalID), data, s.ttl); err != nil {
		return fmt.Errorf("failed to save form session: %w", err)
	}
	return nil
}

// Clear drops the open session, if any.
func (s *Store) Clear(ctx context.Context, externalID int64) error {
	if err := s.cache.Delete(ctx, key(externalID)); err != nil {
		return fmt.Errorf("failed to clear form session: %w", err)
	}
	return nil
}
