package task

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/Faultbox/midgard-globe/internal/logger"
)

// DefaultWorkers is the worker pool size used when none is configured.
const DefaultWorkers = 4

// Service runs requests on a fixed number of goroutines. It never blocks
// the caller: a request that finds the pool full is refused.
type Service struct {
	workers int64
	sem     *semaphore.Weighted
	log     *zap.Logger

	mu     sync.Mutex
	active map[string]struct{}

	completed atomic.Uint64
	failed    atomic.Uint64
}

// NewService creates a pool of workers goroutines. A non-positive count
// selects DefaultWorkers.
func NewService(workers int) *Service {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Service{
		workers: int64(workers),
		sem:     semaphore.NewWeighted(int64(workers)),
		log:     logger.Named("task"),
		active:  make(map[string]struct{}),
	}
}

// Workers returns the pool size.
func (s *Service) Workers() int { return int(s.workers) }

// IsActive reports whether a request with key is running.
func (s *Service) IsActive(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.active[key]
	return ok
}

// IsFull reports whether every worker is busy.
func (s *Service) IsFull() bool {
	if !s.sem.TryAcquire(1) {
		return true
	}
	s.sem.Release(1)
	return false
}

// TryRun starts r on a free worker. It returns false when r is already
// running or no worker is free.
func (s *Service) TryRun(r Request) bool {
	s.mu.Lock()
	if _, ok := s.active[r.Key]; ok {
		s.mu.Unlock()
		return false
	}
	if !s.sem.TryAcquire(1) {
		s.mu.Unlock()
		return false
	}
	s.active[r.Key] = struct{}{}
	s.mu.Unlock()

	go s.run(r)
	return true
}

func (s *Service) run(r Request) {
	defer func() {
		s.mu.Lock()
		delete(s.active, r.Key)
		s.mu.Unlock()
		s.sem.Release(1)
	}()
	defer func() {
		if p := recover(); p != nil {
			s.failed.Add(1)
			s.log.Error("task panicked",
				zap.String("key", r.Key),
				zap.Error(fmt.Errorf("panic: %v", p)),
				zap.ByteString("stack", debug.Stack()))
		}
	}()

	r.Run()
	s.completed.Add(1)
}

// Drain takes every request from q and starts as many as the pool has
// room for, in priority order. The rest are discarded; callers issue them
// again on the next frame. It returns the number started.
func (s *Service) Drain(q *RequestQueue) int {
	started := 0
	for _, r := range q.Take() {
		if s.TryRun(r) {
			started++
		} else if s.IsFull() {
			break
		}
	}
	return started
}

// Wait blocks until every running request has finished or ctx is done.
func (s *Service) Wait(ctx context.Context) error {
	if err := s.sem.Acquire(ctx, s.workers); err != nil {
		return fmt.Errorf("waiting for tasks: %w", err)
	}
	s.sem.Release(s.workers)
	return nil
}

// Stats is a snapshot of the service counters.
type Stats struct {
	Active    int
	Completed uint64
	Failed    uint64
}

// Stats returns the current counters.
func (s *Service) Stats() Stats {
	s.mu.Lock()
	active := len(s.active)
	s.mu.Unlock()
	return Stats{Active: active, Completed: s.completed.Load(), Failed: s.failed.Load()}
}
