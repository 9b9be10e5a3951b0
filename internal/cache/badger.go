package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

const (
	badgerKeyPrefix = "cache:"
	badgerGCRatio   = 0.5
)

// BadgerStore persists cache entries in BadgerDB so warmed pages survive a
// restart. Badger's own TTL drops an entry once its stale retention ends.
type BadgerStore struct {
	db             *badger.DB
	staleRetention time.Duration
	nowFn          func() time.Time
	stop           chan struct{}
	done           chan struct{}
}

// BadgerOptions configures OpenBadgerStore.
type BadgerOptions struct {
	// Path is the data directory. Empty runs badger in memory.
	Path           string
	StaleRetention time.Duration
	GCInterval     time.Duration
}

// OpenBadgerStore opens (or creates) the badger database at opts.Path.
func OpenBadgerStore(opts BadgerOptions) (*BadgerStore, error) {
	bopts := badger.DefaultOptions(opts.Path)
	if opts.Path == "" {
		bopts = bopts.WithInMemory(true)
	}
	bopts = bopts.WithLogger(badgerLogger{})

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("open badger cache: %w", err)
	}

	s := &BadgerStore{
		db:             db,
		staleRetention: opts.StaleRetention,
		nowFn:          time.Now,
		stop:           make(chan struct{}),
		done:           make(chan struct{}),
	}

	if opts.GCInterval > 0 && opts.Path != "" {
		go s.gcLoop(opts.GCInterval)
	} else {
		close(s.done)
	}

	slog.Info("[Cache] Badger store opened", "path", opts.Path, "in_memory", opts.Path == "")
	return s, nil
}

func (s *BadgerStore) Get(ctx context.Context, key string) (Entry, bool, error) {
	var entry Entry
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(badgerKeyPrefix + key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &entry)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("get cache entry %q: %w", key, err)
	}
	return entry, true, nil
}

func (s *BadgerStore) Set(ctx context.Context, key string, entry Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}

	ttl := entry.ExpiresAt.Sub(s.nowFn()) + s.staleRetention
	if ttl < time.Second {
		ttl = time.Second
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry([]byte(badgerKeyPrefix+key), data).WithTTL(ttl))
	})
	if err != nil {
		return fmt.Errorf("set cache entry %q: %w", key, err)
	}
	return nil
}

func (s *BadgerStore) gcLoop(interval time.Duration) {
	defer close(s.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			for {
				if err := s.db.RunValueLogGC(badgerGCRatio); err != nil {
					if !errors.Is(err, badger.ErrNoRewrite) {
						slog.Warn("[Cache] Badger value log GC failed", "error", err)
					}
					break
				}
			}
		}
	}
}

// Close stops the GC loop and closes the database.
func (s *BadgerStore) Close() error {
	select {
	case <-s.stop:
	default:
		close(s.stop)
	}
	<-s.done
	return s.db.Close()
}

// badgerLogger routes badger's internal logging through slog.
type badgerLogger struct{}

func (badgerLogger) Errorf(format string, args ...interface{}) {
	slog.Error("[Badger] " + fmt.Sprintf(format, args...))
}

func (badgerLogger) Warningf(format string, args ...interface{}) {
	slog.Warn("[Badger] " + fmt.Sprintf(format, args...))
}

func (badgerLogger) Infof(format string, args ...interface{}) {
	slog.Debug("[Badger] " + fmt.Sprintf(format, args...))
}

func (badgerLogger) Debugf(format string, args ...interface{}) {
	slog.Debug("[Badger] " + fmt.Sprintf(format, args...))
}
