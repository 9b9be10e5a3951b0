package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	v1 "github.com/devstats-lab/devstats/internal/api/v1"
	"github.com/devstats-lab/devstats/internal/core/storage"
)

// Store is an in-memory EventStore and DeviceStore.
// Useful for testing and single-node development.
type Store struct {
	mu     sync.RWMutex
	events []v1.Event
	states map[string]v1.DeviceState
}

var (
	_ storage.EventStore  = (*Store)(nil)
	_ storage.DeviceStore = (*Store)(nil)
	_ storage.Pinger      = (*Store)(nil)
)

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		states: make(map[string]v1.DeviceState),
	}
}

func (s *Store) SaveEvent(ctx context.Context, event *v1.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = append(s.events, *event)
	return nil
}

// StreamEvents snapshots the range under the read lock and calls fn
// without holding it.
func (s *Store) StreamEvents(ctx context.Context, start, end time.Time, fn func(*v1.Event) error) error {
	s.mu.RLock()
	var matched []v1.Event
	for _, evt := range s.events {
		if evt.SubmittedAt.Before(start) {
			continue
		}
		if !end.IsZero() && !evt.SubmittedAt.Before(end) {
			continue
		}
		matched = append(matched, evt)
	}
	s.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].SubmittedAt.Before(matched[j].SubmittedAt)
	})

	for i := range matched {
		if err := ctx.Err(); err != nil {
			return err
		}
		evt := matched[i]
		if err := fn(&evt); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) DeleteEventsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.events[:0]
	var removed int64
	for _, evt := range s.events {
		if evt.SubmittedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, evt)
	}
	s.events = kept
	return removed, nil
}

// UpsertIfNewer holds the write lock across compare and write.
func (s *Store) UpsertIfNewer(ctx context.Context, state *v1.DeviceState) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.states[state.DeviceID]; ok && !existing.LastSeen.Before(state.LastSeen) {
		return false, nil
	}
	s.states[state.DeviceID] = *state
	return true, nil
}

func (s *Store) ScanStates(ctx context.Context, since time.Time, filter *v1.Filter, fn func(v1.DeviceState) error) error {
	s.mu.RLock()
	matched := make([]v1.DeviceState, 0, len(s.states))
	for _, st := range s.states {
		if st.LastSeen.Before(since) || !st.Matches(filter) {
			continue
		}
		matched = append(matched, st)
	}
	s.mu.RUnlock()

	for _, st := range matched {
		if err := fn(st); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) CountStates(ctx context.Context, since time.Time, filter *v1.Filter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, st := range s.states {
		if !st.LastSeen.Before(since) && st.Matches(filter) {
			n++
		}
	}
	return n, nil
}

func (s *Store) DeleteStatesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	for id, st := range s.states {
		if st.LastSeen.Before(cutoff) {
			delete(s.states, id)
			removed++
		}
	}
	return removed, nil
}

// Ping always succeeds.
func (s *Store) Ping(ctx context.Context) error {
	return nil
}

// State returns the stored state for deviceID.
func (s *Store) State(deviceID string) (v1.DeviceState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.states[deviceID]
	return st, ok
}

// EventCount returns the number of stored events.
func (s *Store) EventCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.events)
}
