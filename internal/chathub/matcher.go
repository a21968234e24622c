package chathub

import (
	"anonpair/backend/internal/apperr"
	"anonpair/backend/internal/config"
	"anonpair/backend/internal/models"
	"anonpair/backend/internal/storage"
	"context"
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

var (
	ErrMatcherRunning    = errors.New("matcher is already running")
	ErrMatcherNotRunning = errors.New("matcher is not running")
)

// TickResult summarizes one committed tick.
type TickResult struct {
	Sessions []*models.ChatSession
	Waiting  int
}

// MatcherStats are counters since the process started.
type MatcherStats struct {
	Ticks    uint64
	Failures uint64
	Pairs    uint64
}

// MatcherService is the only creator of chat sessions. It pairs waiting
// queue entries on a fixed interval, one tick at a time.
type MatcherService struct {
	Storage  storage.Storage
	Interval time.Duration
	Now      func() time.Time

	// tickMu serializes Tick between the loop and manual callers.
	tickMu sync.Mutex

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}

	ticks    atomic.Uint64
	failures atomic.Uint64
	pairs    atomic.Uint64
}

// NewMatcherService створює новий Matcher.
func NewMatcherService(s storage.Storage, interval time.Duration) *MatcherService {
	if interval <= 0 {
		interval = config.DefaultMatchInterval
	}
	return &MatcherService{
		Storage:  s,
		Interval: interval,
		Now:      time.Now,
	}
}

// Start launches the match loop. The first tick fires one interval after
// Start; every later tick is armed only after the previous one returned.
func (m *MatcherService) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cancel != nil {
		return ErrMatcherRunning
	}
	loopCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.done = make(chan struct{})

	go m.run(loopCtx, m.done)
	return nil
}

// Stop cancels the loop and waits for an in-flight tick to finish, or for
// ctx to expire, whichever comes first.
func (m *MatcherService) Stop(ctx context.Context) error {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.cancel, m.done = nil, nil
	m.mu.Unlock()

	if cancel == nil {
		return ErrMatcherNotRunning
	}
	cancel()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stats returns the loop counters.
func (m *MatcherService) Stats() MatcherStats {
	return MatcherStats{
		Ticks:    m.ticks.Load(),
		Failures: m.failures.Load(),
		Pairs:    m.pairs.Load(),
	}
}

func (m *MatcherService) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	log.Printf("INFO: Matcher Service started (interval %s).", m.Interval)

	timer := time.NewTimer(m.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("INFO: Matcher Service stopped.")
			return
		case <-timer.C:
			// A tick is never cut short by Stop; the loop exits between ticks.
			m.safeTick(context.WithoutCancel(ctx))
			timer.Reset(m.Interval)
		}
	}
}

// safeTick runs one tick and keeps any failure, including a panic, inside it.
func (m *MatcherService) safeTick(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			m.failures.Add(1)
			log.Printf("ERROR: Match tick panicked: %v", r)
		}
	}()

	result, err := m.Tick(ctx)
	if err != nil {
		log.Printf("ERROR: Match tick failed: %v", err)
		return
	}
	if len(result.Sessions) > 0 {
		log.Printf("INFO: Match tick created %d session(s), %d user(s) still waiting", len(result.Sessions), result.Waiting)
	}
}

// Tick pairs every waiting entry in arrival order inside one transaction.
// Either every pair of the tick is committed or none is. Matched events are
// published only after the commit.
func (m *MatcherService) Tick(ctx context.Context) (*TickResult, error) {
	m.tickMu.Lock()
	defer m.tickMu.Unlock()
	m.ticks.Add(1)

	result := &TickResult{}
	err := m.Storage.Transaction(ctx, func(tx storage.Storage) error {
		result.Sessions = result.Sessions[:0]

		entries, err := tx.LockAvailableEntries(ctx)
		if err != nil {
			return err
		}

		pairings, leftover := PairEntries(entries)
		for _, p := range pairings {
			session, err := m.createSession(ctx, tx, p)
			if err != nil {
				return err
			}
			result.Sessions = append(result.Sessions, session)
		}

		result.Waiting = 0
		if leftover != nil {
			result.Waiting = 1
		}
		return nil
	})
	if err != nil {
		m.failures.Add(1)
		return nil, classify("match tick", err)
	}

	m.pairs.Add(uint64(len(result.Sessions)))
	for _, session := range result.Sessions {
		for _, userID := range []string{session.UserAID, session.UserBID} {
			publish(ctx, m.Storage, userID, models.QueueEvent{Type: models.EventMatched, ChatID: session.ChatID})
		}
	}
	return result, nil
}

func (m *MatcherService) createSession(ctx context.Context, tx storage.Storage, p Pairing) (*models.ChatSession, error) {
	pair, err := models.NewPair(p.First.UserID, p.Second.UserID)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeConflict, "cannot pair queue entries", err)
	}

	session := models.NewChatSession(pair, m.Now())
	if err := tx.SaveSession(ctx, session); err != nil {
		if errors.Is(err, storage.ErrMemberInSession) {
			return nil, apperr.Wrap(apperr.CodeConflict, "queue entry is already in a session", err)
		}
		return nil, err
	}

	for _, userID := range pair.Members() {
		claimed, err := tx.ClaimEntry(ctx, userID)
		if err != nil {
			return nil, err
		}
		if claimed == 0 {
			return nil, apperr.ErrPartnerMissing
		}
	}
	return session, nil
}
