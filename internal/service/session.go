package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/utafrali/storefront/internal/repository"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/logger"
)

// session is one shopper's in-memory store instance. mu serializes commands
// for that shopper.
type session[T any] struct {
	mu       sync.Mutex
	state    T
	loaded   bool
	dirty    bool
	evicted  bool
	lastUsed time.Time
}

// registry owns the per-shopper instances of one store kind. Each instance
// is read from the blob store once, then saved after every mutating command.
type registry[T any] struct {
	store  string
	blobs  repository.BlobStore
	key    func(shopperID string) string
	empty  func() T
	logger *slog.Logger
	now    func() time.Time

	mu       sync.Mutex
	sessions map[string]*session[T]
}

func newRegistry[T any](store string, blobs repository.BlobStore, key func(string) string, empty func() T, logger *slog.Logger) *registry[T] {
	return &registry[T]{
		store:    store,
		blobs:    blobs,
		key:      key,
		empty:    empty,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[string]*session[T]),
	}
}

// acquire returns the shopper's session locked. The caller must unlock it.
func (r *registry[T]) acquire(shopperID string) *session[T] {
	for {
		r.mu.Lock()
		s, ok := r.sessions[shopperID]
		if !ok {
			s = &session[T]{}
			r.sessions[shopperID] = s
			activeSessions.WithLabelValues(r.store).Set(float64(len(r.sessions)))
		}
		r.mu.Unlock()

		s.mu.Lock()
		if !s.evicted {
			return s
		}
		s.mu.Unlock()
	}
}

// run executes cmd against the shopper's state. cmd reports whether it
// changed the state; changed or previously unsaved state is then written to
// the blob store. A failed write keeps the in-memory state, marks it dirty
// and returns an error satisfying apperrors.IsPersistence alongside
// changed=true.
func (r *registry[T]) run(ctx context.Context, shopperID string, cmd func(T) (bool, error)) (bool, error) {
	s := r.acquire(shopperID)
	defer s.mu.Unlock()
	s.lastUsed = r.now()

	if !s.loaded {
		state, err := r.load(ctx, shopperID)
		if err != nil {
			return false, err
		}
		s.state = state
		s.loaded = true
	}

	changed, err := cmd(s.state)
	if err != nil {
		return false, err
	}
	if !changed && !s.dirty {
		return false, nil
	}

	if err := r.save(ctx, shopperID, s.state); err != nil {
		s.dirty = true
		persistenceFailures.WithLabelValues(r.store).Inc()
		logger.WithContext(ctx, r.logger).WarnContext(ctx, "store state kept in memory after failed save",
			slog.String("store", r.store),
			slog.String("shopper_id", shopperID),
			slog.String("error", err.Error()),
		)
		return changed, apperrors.PersistenceFailed(r.store, err)
	}
	if s.dirty {
		logger.WithContext(ctx, r.logger).InfoContext(ctx, "pending store state saved",
			slog.String("store", r.store),
			slog.String("shopper_id", shopperID),
		)
	}
	s.dirty = false
	return changed, nil
}

// load rehydrates a shopper's state. A missing key is an empty store. An
// unreadable blob is logged and replaced by an empty store; it is
// overwritten on the next save.
func (r *registry[T]) load(ctx context.Context, shopperID string) (T, error) {
	state := r.empty()

	data, err := r.blobs.Load(ctx, r.key(shopperID))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return state, nil
		}
		logger.WithContext(ctx, r.logger).ErrorContext(ctx, "load store state",
			slog.String("store", r.store),
			slog.String("shopper_id", shopperID),
			slog.String("error", err.Error()),
		)
		var zero T
		return zero, apperrors.ServiceUnavailable(fmt.Sprintf("%s storage unavailable", r.store))
	}

	if err := json.Unmarshal(data, state); err != nil {
		logger.WithContext(ctx, r.logger).WarnContext(ctx, "discarding unreadable store blob",
			slog.String("store", r.store),
			slog.String("shopper_id", shopperID),
			slog.String("error", err.Error()),
		)
		return r.empty(), nil
	}
	return state, nil
}

func (r *registry[T]) save(ctx context.Context, shopperID string, state T) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal %s state: %w", r.store, err)
	}
	return r.blobs.Save(ctx, r.key(shopperID), data)
}

// sweep drops instances idle for longer than idle. Instances that are busy
// or still hold unsaved state are kept. It returns the number evicted.
func (r *registry[T]) sweep(idle time.Duration) int {
	cutoff := r.now().Add(-idle)

	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for id, s := range r.sessions {
		if !s.mu.TryLock() {
			continue
		}
		if !s.dirty && s.lastUsed.Before(cutoff) {
			s.evicted = true
			delete(r.sessions, id)
			evicted++
		}
		s.mu.Unlock()
	}
	activeSessions.WithLabelValues(r.store).Set(float64(len(r.sessions)))
	return evicted
}

// flush retries the save of every dirty instance. It returns the number of
// instances still unsaved.
func (r *registry[T]) flush(ctx context.Context) int {
	r.mu.Lock()
	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	r.mu.Unlock()

	pending := 0
	for _, id := range ids {
		if _, err := r.run(ctx, id, func(T) (bool, error) { return false, nil }); err != nil {
			pending++
		}
	}
	return pending
}

// size returns the number of instances held in memory.
func (r *registry[T]) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
