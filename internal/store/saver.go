package store

import (
	"context"
	"sync"
	"time"

	"lunchcheck_bot/internal/logger"
)

// Saver periodically serializes the store and writes it to the backend.
// A write failure is logged and the next interval retries; it never crashes
// the process or blocks store writers beyond the serialization itself.
type Saver struct {
	store    *Store
	backend  Backend
	interval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewSaver returns a saver flushing store through backend every interval.
func NewSaver(store *Store, backend Backend, interval time.Duration) *Saver {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &Saver{store: store, backend: backend, interval: interval}
}

func (s *Saver) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.run(ctx)
	logger.L().Infof("Snapshot saver started, interval=%s", s.interval)
}

// Stop halts the periodic flush and performs one best-effort final write.
// A failed final write is logged only; bounded loss of the last interval
// is accepted.
func (s *Saver) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel == nil {
		return
	}

	s.cancel()
	<-s.done
	s.cancel = nil
	s.done = nil

	s.flush(context.Background())
	logger.L().Info("Snapshot saver stopped")
}

func (s *Saver) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.flush(ctx)
		}
	}
}

func (s *Saver) flush(ctx context.Context) {
	data, err := s.store.Snapshot()
	if err != nil {
		logger.L().Errorf("Failed to serialize snapshot: %v", err)
		return
	}
	if err := s.backend.Save(ctx, data); err != nil {
		logger.L().Errorf("Failed to write snapshot: %v", err)
	}
}
