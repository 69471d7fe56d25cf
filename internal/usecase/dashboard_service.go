package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/riskibarqy/cuebook/internal/domain/league"
	"github.com/riskibarqy/cuebook/internal/domain/match"
	"github.com/riskibarqy/cuebook/internal/domain/player"
	"github.com/riskibarqy/cuebook/internal/domain/season"
	"github.com/riskibarqy/cuebook/internal/domain/standing"
	"github.com/riskibarqy/cuebook/internal/domain/user"
	"github.com/sourcegraph/conc/pool"
)

const upcomingMatchLimit = 5

type LeagueStanding struct {
	LeagueID string
	Season   season.Season
	Standing standing.Standing
}

type Dashboard struct {
	Players         []player.Player
	OwnedLeagues    []league.League
	UpcomingMatches []MatchSummary
	Standings       []LeagueStanding
}

type DashboardService struct {
	leagueRepo   league.Repository
	playerRepo   player.Repository
	seasonRepo   season.Repository
	standingRepo standing.Repository
	reader       matchReader
}

func NewDashboardService(
	leagueRepo league.Repository,
	playerRepo player.Repository,
	seasonRepo season.Repository,
	standingRepo standing.Repository,
	matchRepo match.Repository,
) *DashboardService {
	return &DashboardService{
		leagueRepo:   leagueRepo,
		playerRepo:   playerRepo,
		seasonRepo:   seasonRepo,
		standingRepo: standingRepo,
		reader:       matchReader{matchRepo: matchRepo, playerRepo: playerRepo},
	}
}

// Get assembles the signed-in user's home view: their player records, the
// leagues they own, upcoming matches and current-season standings.
func (s *DashboardService) Get(ctx context.Context, principal user.Principal) (Dashboard, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DashboardService.Get")
	defer span.End()

	if principal.IsZero() {
		return Dashboard{}, fmt.Errorf("%w: sign in required", ErrUnauthenticated)
	}

	var out Dashboard
	first := pool.New().WithContext(ctx).WithCancelOnError()
	first.Go(func(ctx context.Context) error {
		items, err := s.playerRepo.ListByUser(ctx, principal.UserID)
		if err != nil {
			return fmt.Errorf("list user players: %w", err)
		}
		out.Players = items
		return nil
	})
	first.Go(func(ctx context.Context) error {
		items, err := s.leagueRepo.ListByOwner(ctx, principal.UserID)
		if err != nil {
			return fmt.Errorf("list owned leagues: %w", err)
		}
		out.OwnedLeagues = items
		return nil
	})
	if err := first.Wait(); err != nil {
		return Dashboard{}, err
	}

	out.UpcomingMatches = []MatchSummary{}
	out.Standings = []LeagueStanding{}
	if len(out.Players) == 0 {
		return out, nil
	}

	playerIDs := make([]string, 0, len(out.Players))
	for _, p := range out.Players {
		playerIDs = append(playerIDs, p.ID)
	}

	var mu sync.Mutex
	second := pool.New().WithContext(ctx).WithCancelOnError()
	second.Go(func(ctx context.Context) error {
		matches, err := s.reader.matchRepo.ListByPlayers(ctx, playerIDs, []match.Status{match.StatusScheduled}, upcomingMatchLimit)
		if err != nil {
			return fmt.Errorf("list upcoming matches: %w", err)
		}
		summaries, err := s.reader.summarize(ctx, matches)
		if err != nil {
			return err
		}
		out.UpcomingMatches = summaries
		return nil
	})
	for _, p := range out.Players {
		second.Go(func(ctx context.Context) error {
			ssn, exists, err := s.seasonRepo.GetCurrent(ctx, p.LeagueID)
			if err != nil {
				return fmt.Errorf("get current season: %w", err)
			}
			if !exists {
				return nil
			}
			row, exists, err := s.standingRepo.GetForPlayer(ctx, ssn.ID, p.ID)
			if err != nil {
				return fmt.Errorf("get player standing: %w", err)
			}
			if !exists {
				return nil
			}

			mu.Lock()
			out.Standings = append(out.Standings, LeagueStanding{LeagueID: p.LeagueID, Season: ssn, Standing: row})
			mu.Unlock()
			return nil
		})
	}
	if err := second.Wait(); err != nil {
		return Dashboard{}, err
	}

	sort.SliceStable(out.Standings, func(i, j int) bool {
		return out.Standings[i].LeagueID < out.Standings[j].LeagueID
	})
	return out, nil
}
