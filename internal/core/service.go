package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// AddressChecker reports addresses whose messages never need scoring
type AddressChecker interface {
	IsWhitelisted(address string) bool
}

// VerdictService makes sure every message has a verdict. It owns the
// thread index and is the only component writing to it or to the store.
type VerdictService struct {
	store   VerdictStore
	source  MessageSource
	index   *ThreadIndex
	trusted AddressChecker
	logger  *zap.Logger

	backendMu sync.RWMutex
	backend   Backend
	limiter   *rate.Limiter
	retired   []Scorer

	writeMu sync.Mutex
	flight  singleflight.Group

	// lifetime bounds shared refreshes; it ends when Run returns
	lifetime context.Context
	shutdown context.CancelFunc
}

// NewVerdictService creates a new verdict service
func NewVerdictService(
	backend Backend,
	store VerdictStore,
	source MessageSource,
	index *ThreadIndex,
	trusted AddressChecker,
	logger *zap.Logger,
) *VerdictService {
	if index == nil {
		index = NewThreadIndex(nil)
	}
	s := &VerdictService{
		store:   store,
		source:  source,
		index:   index,
		trusted: trusted,
		logger:  logger,
	}
	s.lifetime, s.shutdown = context.WithCancel(context.Background())
	s.SetBackend(backend)
	return s
}

// SetBackend replaces the scoring backend. Batches already running keep
// the backend they started with.
func (s *VerdictService) SetBackend(b Backend) {
	var limiter *rate.Limiter
	if b.networked() && b.Throttle > 0 {
		limiter = rate.NewLimiter(rate.Every(b.Throttle), 1)
	}

	s.backendMu.Lock()
	if prev := s.backend.Scorer; prev != nil && prev != b.Scorer {
		s.retired = append(s.retired, prev)
	}
	s.backend = b
	s.limiter = limiter
	s.backendMu.Unlock()

	s.logger.Info("Scoring backend configured",
		zap.String("backend", b.Kind.String()),
		zap.Duration("throttle", b.Throttle))
}

// Close closes the current scorer and every scorer it replaced. Replaced
// scorers stay open until then because a batch may still be using them.
func (s *VerdictService) Close() error {
	s.backendMu.Lock()
	scorers := append(s.retired, s.backend.Scorer)
	s.retired = nil
	s.backend = NoBackend()
	s.limiter = nil
	s.backendMu.Unlock()

	var errs []error
	for _, scorer := range scorers {
		if closer, ok := scorer.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				errs = append(errs, fmt.Errorf("failed to close %s scorer: %w", scorer.Name(), err))
			}
		}
	}
	return errors.Join(errs...)
}

// Backend returns the current scoring backend
func (s *VerdictService) Backend() Backend {
	s.backendMu.RLock()
	defer s.backendMu.RUnlock()
	return s.backend
}

func (s *VerdictService) current() (Backend, *rate.Limiter) {
	s.backendMu.RLock()
	defer s.backendMu.RUnlock()
	return s.backend, s.limiter
}

// Predict scores a single body with the current backend without touching
// the store
func (s *VerdictService) Predict(ctx context.Context, body string) Verdict {
	backend, _ := s.current()
	if !backend.Enabled() {
		return VerdictUnknown
	}
	return backend.Scorer.Score(ctx, body)
}

// ScoreBatch resolves the verdict of every unknown message and persists the
// result. Messages that already have a verdict are left alone.
func (s *VerdictService) ScoreBatch(ctx context.Context, msgs []*Message) (BatchStats, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.scoreBatch(ctx, msgs)
}

func (s *VerdictService) scoreBatch(ctx context.Context, msgs []*Message) (BatchStats, error) {
	var stats BatchStats
	backend, limiter := s.current()
	logger := s.logger.With(zap.String("run_id", uuid.NewString()), zap.String("backend", backend.Kind.String()))

	for _, msg := range msgs {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		stats.Total++

		if msg.Verdict.Known() {
			stats.Skipped++
			continue
		}

		var verdict Verdict
		if s.trusted != nil && s.trusted.IsWhitelisted(msg.Address) {
			logger.Debug("Skipping scoring for trusted address",
				zap.Int64("message_id", msg.ID),
				zap.String("address", msg.Address))
			verdict = VerdictNotSpam
		} else {
			if !backend.Enabled() {
				stats.Unresolved++
				continue
			}
			if limiter != nil {
				if err := limiter.Wait(ctx); err != nil {
					return stats, err
				}
			}
			stats.Scored++
			verdict = backend.Scorer.Score(ctx, msg.Body)
		}

		if !verdict.Known() {
			stats.Unresolved++
			continue
		}

		msg.Verdict = verdict
		stats.Resolved++
		if err := s.store.Update(ctx, msg); err != nil {
			logger.Error("Failed to persist verdict",
				zap.Int64("message_id", msg.ID),
				zap.Error(err))
		}
	}

	logger.Info("Scoring pass finished",
		zap.Int("total", stats.Total),
		zap.Int("skipped", stats.Skipped),
		zap.Int("scored", stats.Scored),
		zap.Int("resolved", stats.Resolved),
		zap.Int("unresolved", stats.Unresolved))

	return stats, nil
}

// Refresh reloads stored messages, merges new messages from the source,
// scores what is unknown and rebuilds the thread index. Concurrent calls
// share a single run. Cancelling ctx stops this caller from waiting but
// leaves the shared run going for the others.
func (s *VerdictService) Refresh(ctx context.Context) (BatchStats, error) {
	ch := s.flight.DoChan("refresh", func() (interface{}, error) {
		runCtx, cancel := s.detach(ctx)
		defer cancel()
		return s.refresh(runCtx)
	})

	select {
	case <-ctx.Done():
		return BatchStats{}, ctx.Err()
	case res := <-ch:
		if res.Shared {
			s.logger.Debug("Joined refresh already in flight")
		}
		stats, _ := res.Val.(BatchStats)
		return stats, res.Err
	}
}

// detach keeps the values of ctx but ties cancellation to the service
// lifetime instead of the caller
func (s *VerdictService) detach(ctx context.Context) (context.Context, context.CancelFunc) {
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	stop := context.AfterFunc(s.lifetime, cancel)
	return runCtx, func() {
		stop()
		cancel()
	}
}

func (s *VerdictService) refresh(ctx context.Context) (BatchStats, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	stored, err := s.store.LoadAll(ctx)
	if err != nil {
		return BatchStats{}, fmt.Errorf("failed to load stored messages: %w", err)
	}

	known := make(map[int64]struct{}, len(stored))
	for _, msg := range stored {
		known[msg.ID] = struct{}{}
	}

	msgs := stored
	if s.source != nil {
		fetched, err := s.source.Fetch(ctx)
		if err != nil {
			s.logger.Warn("Failed to fetch messages from source, using stored messages", zap.Error(err))
		}
		added := 0
		for _, msg := range fetched {
			if _, ok := known[msg.ID]; ok {
				continue
			}
			if err := s.store.Insert(ctx, msg); err != nil {
				s.logger.Error("Failed to store message", zap.Int64("message_id", msg.ID), zap.Error(err))
				continue
			}
			known[msg.ID] = struct{}{}
			msgs = append(msgs, msg)
			added++
		}
		if added > 0 {
			s.logger.Info("Stored new messages from source", zap.Int("count", added))
		}
	}

	stats, err := s.scoreBatch(ctx, msgs)
	s.index.Add(msgs...)
	if err != nil && !errors.Is(err, context.Canceled) {
		return stats, fmt.Errorf("scoring pass failed: %w", err)
	}
	return stats, err
}

// Run refreshes once, then again whenever a change signal arrives. Signals
// received while a refresh is running collapse into a single follow-up
// refresh. Run returns when ctx is cancelled, stopping any refresh still in
// flight.
func (s *VerdictService) Run(ctx context.Context, changes <-chan struct{}) error {
	defer s.shutdown()

	pending := make(chan struct{}, 1)
	pending <- struct{}{}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case <-pending:
				if _, err := s.Refresh(ctx); err != nil && ctx.Err() == nil {
					s.logger.Error("Refresh failed", zap.Error(err))
				}
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			<-done
			return nil
		case _, ok := <-changes:
			if !ok {
				changes = nil
				continue
			}
			select {
			case pending <- struct{}{}:
			default:
			}
		}
	}
}

// Reset clears the store and every thread
func (s *VerdictService) Reset(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear store: %w", err)
	}
	s.index.Reset()
	s.logger.Info("Cleared all messages")
	return nil
}

// Threads returns the thread summaries, most recent first
func (s *VerdictService) Threads() []ThreadSummary {
	return s.index.Threads()
}

// Messages returns the messages exchanged with address, oldest first
func (s *VerdictService) Messages(address string) []Message {
	return s.index.Messages(address, true)
}
