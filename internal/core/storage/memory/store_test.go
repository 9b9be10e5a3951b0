package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	v1 "github.com/devstats-lab/devstats/internal/api/v1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func state(id, model string, seen time.Time) *v1.DeviceState {
	return &v1.DeviceState{DeviceID: id, Model: model, OSVersion: "14.1", Version: "14.1", Country: "US", Carrier: "T-Mobile", CarrierID: "1", LastSeen: seen}
}

func TestStore_UpsertIfNewer(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	t0 := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	written, err := s.UpsertIfNewer(ctx, state("d1", "bacon", t0))
	require.NoError(t, err)
	assert.True(t, written)

	// Older arrives late.
	written, err = s.UpsertIfNewer(ctx, state("d1", "river", t0.Add(-time.Hour)))
	require.NoError(t, err)
	assert.False(t, written)

	// Equal timestamp does not overwrite.
	written, err = s.UpsertIfNewer(ctx, state("d1", "river", t0))
	require.NoError(t, err)
	assert.False(t, written)

	got, ok := s.State("d1")
	require.True(t, ok)
	assert.Equal(t, "bacon", got.Model)

	written, err = s.UpsertIfNewer(ctx, state("d1", "river", t0.Add(time.Hour)))
	require.NoError(t, err)
	assert.True(t, written)
	got, _ = s.State("d1")
	assert.Equal(t, "river", got.Model)
}

func TestStore_UpsertIfNewer_ConcurrentConvergesToLatest(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	t0 := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.UpsertIfNewer(ctx, state("d1", fmt.Sprintf("m%02d", i), t0.Add(time.Duration(i)*time.Minute)))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	got, ok := s.State("d1")
	require.True(t, ok)
	assert.Equal(t, "m49", got.Model)
	assert.Equal(t, t0.Add(49*time.Minute), got.LastSeen)
}

func TestStore_ScanAndCountStates(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	now := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)

	_, _ = s.UpsertIfNewer(ctx, state("d1", "bacon", now))
	_, _ = s.UpsertIfNewer(ctx, state("d2", "river", now.AddDate(0, 0, -3)))
	_, _ = s.UpsertIfNewer(ctx, state("d3", "bacon", now.AddDate(0, 0, -40)))

	since := now.AddDate(0, 0, -30)
	n, err := s.CountStates(ctx, since, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = s.CountStates(ctx, since, &v1.Filter{Field: v1.DimensionModel, Value: "bacon"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	var ids []string
	err = s.ScanStates(ctx, time.Time{}, &v1.Filter{Field: v1.DimensionModel, Value: "bacon"}, func(st v1.DeviceState) error {
		ids = append(ids, st.DeviceID)
		return nil
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"d1", "d3"}, ids)

	removed, err := s.DeleteStatesBefore(ctx, since)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
	_, ok := s.State("d3")
	assert.False(t, ok)
}

func TestStore_StreamAndDeleteEvents(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	t0 := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.SaveEvent(ctx, &v1.Event{ID: "e3", SubmittedAt: t0.Add(3 * time.Hour)}))
	require.NoError(t, s.SaveEvent(ctx, &v1.Event{ID: "e1", SubmittedAt: t0.Add(time.Hour)}))
	require.NoError(t, s.SaveEvent(ctx, &v1.Event{ID: "e2", SubmittedAt: t0.Add(2 * time.Hour)}))
	require.NoError(t, s.SaveEvent(ctx, &v1.Event{ID: "e0", SubmittedAt: t0.Add(-time.Hour)}))

	var ids []string
	err := s.StreamEvents(ctx, t0, t0.Add(3*time.Hour), func(evt *v1.Event) error {
		ids = append(ids, evt.ID)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"e1", "e2"}, ids)

	removed, err := s.DeleteEventsBefore(ctx, t0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
	assert.Equal(t, 3, s.EventCount())
}
