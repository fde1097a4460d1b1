package cart

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"storefront/internal/repository/cartslot"
)

var ErrSessionRequired = errors.New("session id is required")

// Sessions keeps one Store per session id. Each session's slot is read once;
// stores idle for longer than the idle timeout are dropped by Run.
type Sessions struct {
	slot   cartslot.Repository
	prefix string
	idle   time.Duration
	logger zerolog.Logger
	now    func() time.Time

	mu     sync.Mutex
	stores map[string]*Store
	loads  singleflight.Group
}

type SessionsOption func(*Sessions)

// WithClock overrides time.Now for ids and idle tracking.
func WithClock(now func() time.Time) SessionsOption {
	return func(s *Sessions) { s.now = now }
}

func NewSessions(slot cartslot.Repository, prefix string, idle time.Duration, logger zerolog.Logger, opts ...SessionsOption) *Sessions {
	if prefix == "" {
		prefix = "bt-cart"
	}
	s := &Sessions{
		slot:   slot,
		prefix: prefix,
		idle:   idle,
		logger: logger,
		now:    time.Now,
		stores: make(map[string]*Store),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SlotKey is the persistence key for sessionID.
func (s *Sessions) SlotKey(sessionID string) string {
	return s.prefix + ":" + sessionID
}

// Get returns the store for sessionID, loading it on first use.
func (s *Sessions) Get(ctx context.Context, sessionID string) (*Store, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, ErrSessionRequired
	}
	if st := s.lookup(sessionID); st != nil {
		return st, nil
	}

	v, err, _ := s.loads.Do(sessionID, func() (any, error) {
		if st := s.lookup(sessionID); st != nil {
			return st, nil
		}
		st, err := loadStore(ctx, s.SlotKey(sessionID), s.slot, s.logger, s.now)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.stores[sessionID] = st
		s.mu.Unlock()
		return st, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Store), nil
}

func (s *Sessions) lookup(sessionID string) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.stores[sessionID]
	if st != nil {
		st.touch()
	}
	return st
}

// Len returns the number of sessions held in memory.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.stores)
}

// Evict drops stores untouched since before now-idle. Stores with an
// operation in flight are kept. It returns the number dropped.
func (s *Sessions) Evict() int {
	if s.idle <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.idle)

	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, st := range s.stores {
		if st.Busy() || !st.idleSince().Before(cutoff) {
			continue
		}
		if !st.mu.TryLock() {
			continue
		}
		delete(s.stores, id)
		st.mu.Unlock()
		n++
	}
	return n
}

// Run evicts idle sessions until ctx is done.
func (s *Sessions) Run(ctx context.Context) {
	if s.idle <= 0 {
		return
	}
	interval := s.idle / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Evict(); n > 0 {
				s.logger.Debug().Int("evicted", n).Int("remaining", s.Len()).Msg("evicted idle cart sessions")
			}
		}
	}
}
