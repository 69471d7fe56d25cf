package memory

import (
	"fmt"
	"time"

	"github.com/riskibarqy/cuebook/internal/domain/league"
	"github.com/riskibarqy/cuebook/internal/domain/match"
	"github.com/riskibarqy/cuebook/internal/domain/player"
	"github.com/riskibarqy/cuebook/internal/domain/season"
	"github.com/riskibarqy/cuebook/internal/domain/standing"
	"github.com/riskibarqy/cuebook/internal/domain/venue"
)

const (
	LeagueIDThursdayNine = "league-thursday-nine-ball"
	SeasonIDSpring2026   = "season-spring-2026"
	VenueIDCornerPocket  = "venue-corner-pocket"

	UserIDOwner = "user-owner"
	UserIDAlice = "user-alice"
	UserIDBob   = "user-bob"
	UserIDDave  = "user-dave"

	PlayerIDAlice = "player-alice"
	PlayerIDBob   = "player-bob"
	PlayerIDCarol = "player-carol"
	PlayerIDDave  = "player-dave"

	MatchIDScheduled = "match-alice-bob"
	MatchIDSubmitted = "match-carol-dave"
	MatchIDApproved  = "match-alice-dave"
	MatchIDLocked    = "match-bob-carol"
)

var seedSeasonStart = time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)

// Dataset is a small league used by the memory storage driver and tests.
type Dataset struct {
	Leagues       []league.League
	Venues        []venue.Venue
	Seasons       []season.Season
	Weeks         []season.Week
	Players       []player.Player
	SeasonPlayers []player.SeasonPlayer
	Matches       []match.Match
	Results       []match.Result
	Standings     []standing.Standing
}

func SeedDataset() Dataset {
	weekNo := 0
	weeks := season.PlanWeeks(SeasonIDSpring2026, seedSeasonStart, func() string {
		weekNo++
		return SeedWeekID(weekNo)
	})

	return Dataset{
		Leagues:       SeedLeagues(),
		Venues:        SeedVenues(),
		Seasons:       SeedSeasons(),
		Weeks:         weeks,
		Players:       SeedPlayers(),
		SeasonPlayers: SeedSeasonPlayers(),
		Matches:       SeedMatches(),
		Results:       SeedResults(),
		Standings:     SeedStandings(),
	}
}

func SeedWeekID(number int) string {
	return fmt.Sprintf("%s-week-%02d", SeasonIDSpring2026, number)
}

func SeedSeasonPlayerID(playerID string) string {
	return SeasonIDSpring2026 + ":" + playerID
}

func SeedLeagues() []league.League {
	return []league.League{
		{
			ID:          LeagueIDThursdayNine,
			Name:        "Thursday Night 9-Ball",
			OwnerUserID: UserIDOwner,
			CreatedAt:   seedSeasonStart.AddDate(0, -1, 0),
		},
	}
}

func SeedVenues() []venue.Venue {
	return []venue.Venue{
		{ID: VenueIDCornerPocket, LeagueID: LeagueIDThursdayNine, Name: "Corner Pocket", Address: "12 Main St"},
	}
}

func SeedSeasons() []season.Season {
	return []season.Season{
		season.Season{
			ID:              SeasonIDSpring2026,
			LeagueID:        LeagueIDThursdayNine,
			Name:            "Spring 2026",
			StartDate:       seedSeasonStart,
			EndDate:         seedSeasonStart.AddDate(0, 0, 7*season.WeeksPerSeason-1),
			InningsRequired: true,
			HighRunEnabled:  true,
			CreatedAt:       seedSeasonStart.AddDate(0, 0, -7),
		}.WithDefaults(),
	}
}

func SeedPlayers() []player.Player {
	return []player.Player{
		{ID: PlayerIDAlice, LeagueID: LeagueIDThursdayNine, UserID: UserIDAlice, DisplayName: "Alice"},
		{ID: PlayerIDBob, LeagueID: LeagueIDThursdayNine, UserID: UserIDBob, DisplayName: "Bob"},
		{ID: PlayerIDCarol, LeagueID: LeagueIDThursdayNine, DisplayName: "Carol"},
		{ID: PlayerIDDave, LeagueID: LeagueIDThursdayNine, UserID: UserIDDave, DisplayName: "Dave"},
	}
}

func SeedSeasonPlayers() []player.SeasonPlayer {
	out := make([]player.SeasonPlayer, 0, 4)
	for _, p := range SeedPlayers() {
		out = append(out, player.SeasonPlayer{
			ID:       SeedSeasonPlayerID(p.ID),
			SeasonID: SeasonIDSpring2026,
			PlayerID: p.ID,
			IsActive: true,
		})
	}
	return out
}

func SeedMatches() []match.Match {
	at := func(week int) *time.Time {
		t := seedSeasonStart.AddDate(0, 0, 7*(week-1)+3).Add(19 * time.Hour)
		return &t
	}
	return []match.Match{
		{ID: MatchIDLocked, SeasonID: SeasonIDSpring2026, WeekID: SeedWeekID(1), PlayerAID: PlayerIDBob, PlayerBID: PlayerIDCarol, VenueID: VenueIDCornerPocket, ScheduledAt: at(1), RaceTo: season.DefaultRaceTo, Status: match.StatusLocked, Version: 3},
		{ID: MatchIDApproved, SeasonID: SeasonIDSpring2026, WeekID: SeedWeekID(1), PlayerAID: PlayerIDAlice, PlayerBID: PlayerIDDave, VenueID: VenueIDCornerPocket, ScheduledAt: at(1), RaceTo: season.DefaultRaceTo, Status: match.StatusApproved, Version: 2},
		{ID: MatchIDSubmitted, SeasonID: SeasonIDSpring2026, WeekID: SeedWeekID(2), PlayerAID: PlayerIDCarol, PlayerBID: PlayerIDDave, ScheduledAt: at(2), RaceTo: season.DefaultRaceTo, Status: match.StatusSubmitted, Version: 1},
		{ID: MatchIDScheduled, SeasonID: SeasonIDSpring2026, WeekID: SeedWeekID(3), PlayerAID: PlayerIDAlice, PlayerBID: PlayerIDBob, VenueID: VenueIDCornerPocket, ScheduledAt: at(3), RaceTo: season.DefaultRaceTo, Status: match.StatusScheduled},
	}
}

func SeedResults() []match.Result {
	intPtr := func(v int) *int { return &v }
	week1 := seedSeasonStart.AddDate(0, 0, 4)
	week2 := seedSeasonStart.AddDate(0, 0, 11)
	return []match.Result{
		{MatchID: MatchIDLocked, PointsA: 100, PointsB: 84, Innings: intPtr(22), HighRunA: intPtr(18), HighRunB: intPtr(11), SubmittedBy: UserIDBob, SubmittedAt: week1, ApprovedBy: UserIDOwner, ApprovedAt: &week1, LockedBy: UserIDOwner, LockedAt: &week1},
		{MatchID: MatchIDApproved, PointsA: 91, PointsB: 100, Innings: intPtr(25), HighRunA: intPtr(14), HighRunB: intPtr(20), SubmittedBy: UserIDAlice, SubmittedAt: week1, ApprovedBy: UserIDOwner, ApprovedAt: &week1},
		{MatchID: MatchIDSubmitted, PointsA: 100, PointsB: 97, Innings: intPtr(30), SubmittedBy: UserIDDave, SubmittedAt: week2},
	}
}

// SeedStandings is the table the aggregation produces for the approved and
// locked seed matches.
func SeedStandings() []standing.Standing {
	updated := seedSeasonStart.AddDate(0, 0, 5)
	return []standing.Standing{
		{SeasonID: SeasonIDSpring2026, PlayerID: PlayerIDBob, MatchesPlayed: 1, Wins: 1, PointsFor: 100, PointsAgainst: 84, PointDifferential: 16, TotalInnings: 22, PPI: 4.545, HighRun: 18, UpdatedAt: updated},
		{SeasonID: SeasonIDSpring2026, PlayerID: PlayerIDDave, MatchesPlayed: 1, Wins: 1, PointsFor: 100, PointsAgainst: 91, PointDifferential: 9, TotalInnings: 25, PPI: 4.0, HighRun: 20, UpdatedAt: updated},
		{SeasonID: SeasonIDSpring2026, PlayerID: PlayerIDAlice, MatchesPlayed: 1, Losses: 1, PointsFor: 91, PointsAgainst: 100, PointDifferential: -9, TotalInnings: 25, PPI: 3.64, HighRun: 14, UpdatedAt: updated},
		{SeasonID: SeasonIDSpring2026, PlayerID: PlayerIDCarol, MatchesPlayed: 1, Losses: 1, PointsFor: 84, PointsAgainst: 100, PointDifferential: -16, TotalInnings: 22, PPI: 3.818, HighRun: 11, UpdatedAt: updated},
	}
}

// Store bundles memory repositories built from one dataset.
type Store struct {
	Leagues    *LeagueRepository
	Venues     *VenueRepository
	Seasons    *SeasonRepository
	Players    *PlayerRepository
	Matches    *MatchRepository
	Standings  *StandingRepository
	Tasks      *RecomputeTaskRepository
	Audit      *AuditRepository
	Dispatches *JobDispatchRepository
	Recomputer *Recomputer
}

func NewStore(ds Dataset) *Store {
	tasks := NewRecomputeTaskRepository()
	return &Store{
		Leagues:    NewLeagueRepository(ds.Leagues),
		Venues:     NewVenueRepository(ds.Venues),
		Seasons:    NewSeasonRepository(ds.Seasons, ds.Weeks),
		Players:    NewPlayerRepository(ds.Players, ds.SeasonPlayers),
		Matches:    NewMatchRepository(ds.Matches, ds.Results, tasks),
		Standings:  NewStandingRepository(ds.Standings),
		Tasks:      tasks,
		Audit:      NewAuditRepository(),
		Dispatches: NewJobDispatchRepository(),
		Recomputer: NewRecomputer(),
	}
}
