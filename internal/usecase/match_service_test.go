package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/riskibarqy/cuebook/internal/domain/audit"
	"github.com/riskibarqy/cuebook/internal/domain/match"
	"github.com/riskibarqy/cuebook/internal/domain/season"
	"github.com/riskibarqy/cuebook/internal/domain/standing"
	"github.com/riskibarqy/cuebook/internal/domain/user"
	"github.com/riskibarqy/cuebook/internal/infrastructure/repository/memory"
)

func TestMatchService_Submit_RecordsResultAndAdvancesStatus(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	ctx := context.Background()

	got, err := env.matches.Submit(ctx, alicePrincipal, SubmitResultInput{
		MatchID:  memory.MatchIDScheduled,
		PointsA:  100,
		PointsB:  87,
		Innings:  intPtr(15),
		HighRunA: intPtr(23),
		HighRunB: intPtr(18),
		Notes:    "  close one  ",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if got.Degraded {
		t.Fatalf("did not expect degraded outcome: %+v", got.ActionOutcome)
	}
	if got.Match.Status != match.StatusSubmitted {
		t.Fatalf("unexpected returned status: %s", got.Match.Status)
	}

	stored, _, _ := env.store.Matches.GetByID(ctx, memory.MatchIDScheduled)
	if stored.Status != match.StatusSubmitted {
		t.Fatalf("expected stored status submitted, got %s", stored.Status)
	}
	result, exists, _ := env.store.Matches.GetResult(ctx, memory.MatchIDScheduled)
	if !exists {
		t.Fatalf("expected result to be created")
	}
	if result.PointsA != 100 || result.PointsB != 87 || *result.Innings != 15 || *result.HighRunA != 23 || *result.HighRunB != 18 {
		t.Fatalf("unexpected stored result: %+v", result)
	}
	if result.SubmittedBy != memory.UserIDAlice || result.Notes != "close one" {
		t.Fatalf("unexpected submission metadata: %+v", result)
	}
	if result.ApprovedAt != nil || result.LockedAt != nil {
		t.Fatalf("submission must not stamp approval or lock: %+v", result)
	}

	calls := env.store.Recomputer.Calls()
	if len(calls) != 1 || calls[0] != memory.SeasonIDSpring2026 {
		t.Fatalf("expected one recompute for the season, got %v", calls)
	}
	tasks := env.store.Tasks.Tasks()
	if len(tasks) != 1 || tasks[0].Status != standing.TaskDone {
		t.Fatalf("expected the outbox task to be done, got %+v", tasks)
	}

	entries := env.store.Audit.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected one audit entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry.Action != audit.ActionSubmittedResult || entry.EntityID != memory.MatchIDScheduled || entry.ActorUserID != memory.UserIDAlice {
		t.Fatalf("unexpected audit entry: %+v", entry)
	}
	if entry.Payload["points_a"] != 100 || entry.Payload["points_b"] != 87 {
		t.Fatalf("unexpected audit payload: %+v", entry.Payload)
	}
}

func TestMatchService_Submit_OnlyFromScheduled(t *testing.T) {
	t.Parallel()

	for _, matchID := range []string{memory.MatchIDSubmitted, memory.MatchIDApproved, memory.MatchIDLocked} {
		t.Run(matchID, func(t *testing.T) {
			t.Parallel()

			env := newTestEnv()
			ctx := context.Background()
			before, _, _ := env.store.Matches.GetResult(ctx, matchID)

			_, err := env.matches.Submit(ctx, ownerPrincipal, SubmitResultInput{
				MatchID: matchID,
				PointsA: 50,
				PointsB: 40,
				Innings: intPtr(10),
			})
			if !errors.Is(err, ErrInvalidState) {
				t.Fatalf("expected ErrInvalidState, got %v", err)
			}

			after, _, _ := env.store.Matches.GetResult(ctx, matchID)
			if after.PointsA != before.PointsA || after.PointsB != before.PointsB {
				t.Fatalf("existing result must not change: before=%+v after=%+v", before, after)
			}
		})
	}
}

func TestMatchService_Submit_RejectsInvalidScoreWithoutWrites(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input SubmitResultInput
	}{
		{name: "missing innings", input: SubmitResultInput{PointsA: 100, PointsB: 87}},
		{name: "zero innings", input: SubmitResultInput{PointsA: 100, PointsB: 87, Innings: intPtr(0)}},
		{name: "negative innings", input: SubmitResultInput{PointsA: 100, PointsB: 87, Innings: intPtr(-3)}},
		{name: "negative points", input: SubmitResultInput{PointsA: -1, PointsB: 87, Innings: intPtr(15)}},
		{name: "high run above points", input: SubmitResultInput{PointsA: 100, PointsB: 87, Innings: intPtr(15), HighRunA: intPtr(101)}},
		{name: "high run b above points", input: SubmitResultInput{PointsA: 100, PointsB: 87, Innings: intPtr(15), HighRunB: intPtr(88)}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			env := newTestEnv()
			ctx := context.Background()
			tc.input.MatchID = memory.MatchIDScheduled

			_, err := env.matches.Submit(ctx, alicePrincipal, tc.input)
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}

			stored, _, _ := env.store.Matches.GetByID(ctx, memory.MatchIDScheduled)
			if stored.Status != match.StatusScheduled {
				t.Fatalf("status must remain scheduled, got %s", stored.Status)
			}
			if _, exists, _ := env.store.Matches.GetResult(ctx, memory.MatchIDScheduled); exists {
				t.Fatalf("no result may be created on validation failure")
			}
			if len(env.store.Tasks.Tasks()) != 0 || len(env.store.Audit.Entries()) != 0 {
				t.Fatalf("validation failure must not enqueue recompute or audit")
			}
		})
	}
}

func TestMatchService_Submit_HighRunEqualToPointsAccepted(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	_, err := env.matches.Submit(context.Background(), bobPrincipal, SubmitResultInput{
		MatchID:  memory.MatchIDScheduled,
		PointsA:  100,
		PointsB:  40,
		Innings:  intPtr(9),
		HighRunA: intPtr(100),
		HighRunB: intPtr(40),
	})
	if err != nil {
		t.Fatalf("expected high run equal to points to be accepted, got %v", err)
	}
}

func TestMatchService_Submit_ForbiddenForStrangerWithoutWrites(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	ctx := context.Background()

	_, err := env.matches.Submit(ctx, strangerPrincipal, SubmitResultInput{
		MatchID: memory.MatchIDScheduled,
		PointsA: 100,
		PointsB: 87,
		Innings: intPtr(15),
	})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if !strings.Contains(err.Error(), "not authorized to submit") {
		t.Fatalf("expected user-facing message, got %q", err.Error())
	}

	stored, _, _ := env.store.Matches.GetByID(ctx, memory.MatchIDScheduled)
	if stored.Status != match.StatusScheduled {
		t.Fatalf("status must remain scheduled, got %s", stored.Status)
	}
	if _, exists, _ := env.store.Matches.GetResult(ctx, memory.MatchIDScheduled); exists {
		t.Fatalf("forbidden submit must not create a result")
	}
	if len(env.store.Tasks.Tasks()) != 0 || len(env.store.Audit.Entries()) != 0 || len(env.store.Recomputer.Calls()) != 0 {
		t.Fatalf("forbidden submit must not write anything")
	}
}

func TestMatchService_Submit_Unauthenticated(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	_, err := env.matches.Submit(context.Background(), user.Principal{}, SubmitResultInput{MatchID: memory.MatchIDScheduled})
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestMatchService_Submit_UnknownMatch(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	_, err := env.matches.Submit(context.Background(), ownerPrincipal, SubmitResultInput{MatchID: "missing"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMatchService_Submit_ScorekeeperRule(t *testing.T) {
	t.Parallel()

	ds := memory.SeedDataset()
	ds.Seasons[0].SubmissionRule = season.SubmissionScorekeeperSubmits
	env := newTestEnvWith(ds)
	ctx := context.Background()
	input := SubmitResultInput{MatchID: memory.MatchIDScheduled, PointsA: 100, PointsB: 70, Innings: intPtr(20)}

	if _, err := env.matches.Submit(ctx, alicePrincipal, input); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected participant to be forbidden, got %v", err)
	}
	if _, err := env.matches.Submit(ctx, ownerPrincipal, input); err != nil {
		t.Fatalf("expected owner to submit, got %v", err)
	}
}

func TestMatchService_ApproveThenLockStampsBoth(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	ctx := context.Background()

	approved, err := env.matches.Approve(ctx, ownerPrincipal, memory.MatchIDSubmitted)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.Match.Status != match.StatusApproved {
		t.Fatalf("unexpected status after approve: %s", approved.Match.Status)
	}

	locked, err := env.matches.Lock(ctx, ownerPrincipal, memory.MatchIDSubmitted)
	if err != nil {
		t.Fatalf("lock: %v", err)
	}
	if locked.Match.Status != match.StatusLocked {
		t.Fatalf("unexpected status after lock: %s", locked.Match.Status)
	}

	result, _, _ := env.store.Matches.GetResult(ctx, memory.MatchIDSubmitted)
	if result.ApprovedBy != memory.UserIDOwner || result.LockedBy != memory.UserIDOwner {
		t.Fatalf("expected owner on both stamps: %+v", result)
	}
	if result.ApprovedAt == nil || result.LockedAt == nil {
		t.Fatalf("expected both timestamps: %+v", result)
	}
	if !result.ApprovedAt.Before(*result.LockedAt) {
		t.Fatalf("approval must precede lock: approved=%s locked=%s", result.ApprovedAt, result.LockedAt)
	}

	actions := make([]audit.Action, 0)
	for _, entry := range env.store.Audit.Entries() {
		actions = append(actions, entry.Action)
	}
	if len(actions) != 2 || actions[0] != audit.ActionApprovedResult || actions[1] != audit.ActionLockedResult {
		t.Fatalf("unexpected audit trail: %v", actions)
	}
}

func TestMatchService_LockFromSubmittedStampsApprovalAndLock(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	ctx := context.Background()

	got, err := env.matches.Lock(ctx, ownerPrincipal, memory.MatchIDSubmitted)
	if err != nil {
		t.Fatalf("lock: %v", err)
	}
	if got.Match.Status != match.StatusLocked {
		t.Fatalf("unexpected status: %s", got.Match.Status)
	}

	result, _, _ := env.store.Matches.GetResult(ctx, memory.MatchIDSubmitted)
	if result.ApprovedAt == nil || result.LockedAt == nil || result.ApprovedBy == "" || result.LockedBy == "" {
		t.Fatalf("expected approval and lock metadata: %+v", result)
	}
	if !result.ApprovedAt.Equal(*result.LockedAt) {
		t.Fatalf("expected one timestamp for both stamps: approved=%s locked=%s", result.ApprovedAt, result.LockedAt)
	}
}

func TestMatchService_ApproveTwiceIsInvalidState(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	ctx := context.Background()

	if _, err := env.matches.Approve(ctx, ownerPrincipal, memory.MatchIDSubmitted); err != nil {
		t.Fatalf("first approve: %v", err)
	}
	first, _, _ := env.store.Matches.GetResult(ctx, memory.MatchIDSubmitted)

	_, err := env.matches.Approve(ctx, ownerPrincipal, memory.MatchIDSubmitted)
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}

	second, _, _ := env.store.Matches.GetResult(ctx, memory.MatchIDSubmitted)
	if !first.ApprovedAt.Equal(*second.ApprovedAt) {
		t.Fatalf("approval timestamp changed: %s -> %s", first.ApprovedAt, second.ApprovedAt)
	}
}

func TestMatchService_ApproveRequiresOwner(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	ctx := context.Background()

	_, err := env.matches.Approve(ctx, user.Principal{UserID: memory.UserIDDave}, memory.MatchIDSubmitted)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for participant, got %v", err)
	}
	stored, _, _ := env.store.Matches.GetByID(ctx, memory.MatchIDSubmitted)
	if stored.Status != match.StatusSubmitted {
		t.Fatalf("status must not change, got %s", stored.Status)
	}
}

func TestMatchService_LockRejectsScheduledAndLocked(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	ctx := context.Background()

	for _, matchID := range []string{memory.MatchIDScheduled, memory.MatchIDLocked} {
		if _, err := env.matches.Lock(ctx, ownerPrincipal, matchID); !errors.Is(err, ErrInvalidState) {
			t.Fatalf("expected ErrInvalidState for %s, got %v", matchID, err)
		}
	}
}

func TestMatchService_ConcurrentApproveHasOneWinner(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	ctx := context.Background()

	const callers = 10
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		rejected  int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.matches.Approve(ctx, ownerPrincipal, memory.MatchIDSubmitted)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, ErrInvalidState):
				rejected++
			default:
				t.Errorf("unexpected approve error: %v", err)
			}
		}()
	}
	wg.Wait()

	if succeeded != 1 || rejected != callers-1 {
		t.Fatalf("expected one success, got succeeded=%d rejected=%d", succeeded, rejected)
	}

	approvals := 0
	for _, entry := range env.store.Audit.Entries() {
		if entry.Action == audit.ActionApprovedResult {
			approvals++
		}
	}
	if approvals != 1 {
		t.Fatalf("expected one approval audit entry, got %d", approvals)
	}
}

func TestMatchService_RecomputeFailureIsDegradedSuccess(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	ctx := context.Background()
	env.store.Recomputer.SetFailure(errors.New("connection reset"))

	got, err := env.matches.Approve(ctx, ownerPrincipal, memory.MatchIDSubmitted)
	if err != nil {
		t.Fatalf("approve should succeed despite recompute failure: %v", err)
	}
	if !got.Degraded || len(got.Warnings) != 1 {
		t.Fatalf("expected one degraded warning, got %+v", got.ActionOutcome)
	}
	if got.Warnings[0] != "Result approved but standings may be stale; they will be recomputed automatically." {
		t.Fatalf("unexpected warning: %q", got.Warnings[0])
	}

	stored, _, _ := env.store.Matches.GetByID(ctx, memory.MatchIDSubmitted)
	if stored.Status != match.StatusApproved {
		t.Fatalf("primary write must be kept, got %s", stored.Status)
	}

	tasks := env.store.Tasks.Tasks()
	if len(tasks) != 1 {
		t.Fatalf("expected one outbox task, got %d", len(tasks))
	}
	if tasks[0].Status != standing.TaskPending || !strings.Contains(tasks[0].LastError, "connection reset") {
		t.Fatalf("expected pending task with last error, got %+v", tasks[0])
	}
	if len(env.store.Audit.Entries()) != 1 {
		t.Fatalf("audit must still be written when recompute fails")
	}
}

func TestMatchService_GetIncludesHistory(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	ctx := context.Background()

	if _, err := env.matches.Approve(ctx, ownerPrincipal, memory.MatchIDSubmitted); err != nil {
		t.Fatalf("approve: %v", err)
	}

	detail, err := env.matches.Get(ctx, memory.MatchIDSubmitted)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if detail.PlayerA.ID != memory.PlayerIDCarol || detail.PlayerB.ID != memory.PlayerIDDave {
		t.Fatalf("unexpected players: %+v %+v", detail.PlayerA, detail.PlayerB)
	}
	if detail.Week.Number != 2 || detail.Season.ID != memory.SeasonIDSpring2026 {
		t.Fatalf("unexpected week or season: week=%+v season=%s", detail.Week, detail.Season.ID)
	}
	if detail.Result == nil || detail.Result.ApprovedAt == nil {
		t.Fatalf("expected approved result, got %+v", detail.Result)
	}
	if detail.Venue != nil {
		t.Fatalf("match without venue should have nil venue")
	}
	if len(detail.History) != 1 || detail.History[0].Action != audit.ActionApprovedResult {
		t.Fatalf("unexpected history: %+v", detail.History)
	}
}

func TestMatchService_ListSchedule(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	ctx := context.Background()

	all, err := env.matches.ListSchedule(ctx, memory.SeasonIDSpring2026, 0)
	if err != nil {
		t.Fatalf("list schedule: %v", err)
	}
	if len(all.Weeks) != season.WeeksPerSeason || len(all.Matches) != 4 {
		t.Fatalf("unexpected schedule size: weeks=%d matches=%d", len(all.Weeks), len(all.Matches))
	}

	week1, err := env.matches.ListSchedule(ctx, memory.SeasonIDSpring2026, 1)
	if err != nil {
		t.Fatalf("list week 1: %v", err)
	}
	if len(week1.Matches) != 2 {
		t.Fatalf("expected two week-one matches, got %d", len(week1.Matches))
	}
	for _, item := range week1.Matches {
		if item.Result == nil || item.PlayerAName == "" || item.PlayerBName == "" {
			t.Fatalf("expected summary with names and result: %+v", item)
		}
	}

	if _, err := env.matches.ListSchedule(ctx, memory.SeasonIDSpring2026, 13); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for week 13, got %v", err)
	}
}

func TestMatchService_ListPendingApprovals(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	ctx := context.Background()

	pending, err := env.matches.ListPendingApprovals(ctx, ownerPrincipal, memory.LeagueIDThursdayNine)
	if err != nil {
		t.Fatalf("list pending approvals: %v", err)
	}
	if len(pending) != 1 || pending[0].Match.ID != memory.MatchIDSubmitted {
		t.Fatalf("unexpected pending approvals: %+v", pending)
	}

	if _, err := env.matches.ListPendingApprovals(ctx, alicePrincipal, memory.LeagueIDThursdayNine); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-owner, got %v", err)
	}
}
