package usecase

import (
	"fmt"
	"sync"
	"time"

	"github.com/riskibarqy/cuebook/internal/domain/user"
	"github.com/riskibarqy/cuebook/internal/infrastructure/repository/memory"
)

var (
	ownerPrincipal    = user.Principal{UserID: memory.UserIDOwner, Email: "owner@example.com"}
	alicePrincipal    = user.Principal{UserID: memory.UserIDAlice, Email: "alice@example.com"}
	bobPrincipal      = user.Principal{UserID: memory.UserIDBob, Email: "bob@example.com"}
	strangerPrincipal = user.Principal{UserID: "user-stranger", Email: "stranger@example.com"}
)

type sequenceIDs struct {
	mu     sync.Mutex
	prefix string
	next   int
}

func (g *sequenceIDs) NewID() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.next++
	return fmt.Sprintf("%s-%03d", g.prefix, g.next), nil
}

// steppingClock returns a later instant on every call.
type steppingClock struct {
	mu   sync.Mutex
	at   time.Time
	step time.Duration
}

func newSteppingClock() *steppingClock {
	return &steppingClock{
		at:   time.Date(2026, time.March, 20, 21, 0, 0, 0, time.UTC),
		step: time.Second,
	}
}

func (c *steppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.at = c.at.Add(c.step)
	return c.at
}

func (c *steppingClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.at = c.at.Add(d)
}

type testEnv struct {
	store     *memory.Store
	clock     *steppingClock
	ids       *sequenceIDs
	guard     *Guard
	auditor   *AuditRecorder
	recompute *RecomputeService
	matches   *MatchService
	seasons   *SeasonService
	players   *PlayerService
	standings *StandingService
	dashboard *DashboardService
}

func newTestEnv() *testEnv {
	return newTestEnvWith(memory.SeedDataset())
}

func newTestEnvWith(ds memory.Dataset) *testEnv {
	store := memory.NewStore(ds)
	clock := newSteppingClock()
	ids := &sequenceIDs{prefix: "id"}

	guard := NewGuard(store.Leagues, store.Players)
	auditor := NewAuditRecorder(store.Audit, ids)
	auditor.now = clock.Now

	recompute := NewRecomputeService(store.Recomputer, store.Tasks, nil, store.Dispatches, nil, ids, RecomputeConfig{
		Workers:     2,
		BatchSize:   10,
		MaxAttempts: 3,
		RetryBase:   time.Second,
		RetryMax:    4 * time.Second,
		Lease:       time.Minute,
	}, nil)
	recompute.now = clock.Now

	matches := NewMatchService(store.Matches, store.Seasons, store.Players, store.Venues, store.Audit, guard, auditor, recompute, nil)
	matches.now = clock.Now

	seasons := NewSeasonService(store.Seasons, guard, auditor, ids, nil)
	seasons.now = clock.Now

	return &testEnv{
		store:     store,
		clock:     clock,
		ids:       ids,
		guard:     guard,
		auditor:   auditor,
		recompute: recompute,
		matches:   matches,
		seasons:   seasons,
		players:   NewPlayerService(store.Players, store.Seasons, store.Standings, store.Matches, guard, auditor, ids, nil),
		standings: NewStandingService(store.Seasons, store.Standings, store.Players),
		dashboard: NewDashboardService(store.Leagues, store.Players, store.Seasons, store.Standings, store.Matches),
	}
}

func intPtr(v int) *int {
	return &v
}
