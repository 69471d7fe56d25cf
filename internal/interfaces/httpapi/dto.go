package httpapi

import (
	"time"

	"github.com/riskibarqy/cuebook/internal/domain/audit"
	"github.com/riskibarqy/cuebook/internal/domain/jobscheduler"
	"github.com/riskibarqy/cuebook/internal/domain/league"
	"github.com/riskibarqy/cuebook/internal/domain/match"
	"github.com/riskibarqy/cuebook/internal/domain/player"
	"github.com/riskibarqy/cuebook/internal/domain/season"
	"github.com/riskibarqy/cuebook/internal/domain/standing"
	"github.com/riskibarqy/cuebook/internal/domain/venue"
	"github.com/riskibarqy/cuebook/internal/usecase"
)

const dateLayout = "2006-01-02"

type matchDTO struct {
	ID          string     `json:"id"`
	SeasonID    string     `json:"season_id"`
	WeekID      string     `json:"week_id"`
	PlayerAID   string     `json:"player_a_id"`
	PlayerBID   string     `json:"player_b_id"`
	VenueID     string     `json:"venue_id,omitempty"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
	RaceTo      int        `json:"race_to"`
	Status      string     `json:"status"`
}

type matchResultDTO struct {
	PointsA     int        `json:"points_a"`
	PointsB     int        `json:"points_b"`
	Innings     *int       `json:"innings,omitempty"`
	HighRunA    *int       `json:"high_run_a,omitempty"`
	HighRunB    *int       `json:"high_run_b,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	SubmittedBy string     `json:"submitted_by"`
	SubmittedAt time.Time  `json:"submitted_at"`
	ApprovedBy  string     `json:"approved_by,omitempty"`
	ApprovedAt  *time.Time `json:"approved_at,omitempty"`
	LockedBy    string     `json:"locked_by,omitempty"`
	LockedAt    *time.Time `json:"locked_at,omitempty"`
}

type matchDetailDTO struct {
	Match   matchDTO        `json:"match"`
	Season  seasonDTO       `json:"season"`
	Week    weekDTO         `json:"week"`
	PlayerA playerDTO       `json:"player_a"`
	PlayerB playerDTO       `json:"player_b"`
	Venue   *venueDTO       `json:"venue,omitempty"`
	Result  *matchResultDTO `json:"result,omitempty"`
	History []auditEntryDTO `json:"history"`
}

type matchSummaryDTO struct {
	Match       matchDTO        `json:"match"`
	PlayerAName string          `json:"player_a_name"`
	PlayerBName string          `json:"player_b_name"`
	Result      *matchResultDTO `json:"result,omitempty"`
}

type scheduleDTO struct {
	Season  seasonDTO         `json:"season"`
	Weeks   []weekDTO         `json:"weeks"`
	Matches []matchSummaryDTO `json:"matches"`
}

type seasonDTO struct {
	ID              string    `json:"id"`
	LeagueID        string    `json:"league_id"`
	Name            string    `json:"name"`
	StartDate       string    `json:"start_date"`
	EndDate         string    `json:"end_date"`
	RaceToDefault   int       `json:"race_to_default"`
	InningsRequired bool      `json:"innings_required"`
	HighRunEnabled  bool      `json:"high_run_enabled"`
	HandicapMethod  string    `json:"handicap_method"`
	SubmissionRule  string    `json:"submission_rule"`
	CreatedAt       time.Time `json:"created_at"`
}

type weekDTO struct {
	ID        string `json:"id"`
	Number    int    `json:"number"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type playerDTO struct {
	ID          string `json:"id"`
	LeagueID    string `json:"league_id"`
	UserID      string `json:"user_id,omitempty"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
}

type seasonPlayerDTO struct {
	ID             string   `json:"id"`
	SeasonID       string   `json:"season_id"`
	PlayerID       string   `json:"player_id"`
	HandicapPoints int      `json:"handicap_points"`
	Rating         *float64 `json:"rating,omitempty"`
	IsActive       bool     `json:"is_active"`
}

type venueDTO struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	Notes   string `json:"notes,omitempty"`
}

type leagueDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type auditEntryDTO struct {
	ID          string         `json:"id"`
	ActorUserID string         `json:"actor_user_id"`
	Action      string         `json:"action"`
	Payload     map[string]any `json:"payload,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

type standingDTO struct {
	SeasonID          string    `json:"season_id"`
	PlayerID          string    `json:"player_id"`
	MatchesPlayed     int       `json:"matches_played"`
	Wins              int       `json:"wins"`
	Losses            int       `json:"losses"`
	PointsFor         int       `json:"points_for"`
	PointsAgainst     int       `json:"points_against"`
	PointDifferential int       `json:"point_differential"`
	TotalInnings      int       `json:"total_innings"`
	PPI               float64   `json:"ppi"`
	HighRun           int       `json:"high_run"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type standingRowDTO struct {
	Rank       int    `json:"rank"`
	PlayerName string `json:"player_name"`
	standingDTO
}

type standingTableDTO struct {
	Season seasonDTO        `json:"season"`
	Rows   []standingRowDTO `json:"rows"`
}

type leagueStandingDTO struct {
	LeagueID string      `json:"league_id"`
	Season   seasonDTO   `json:"season"`
	Standing standingDTO `json:"standing"`
}

type dashboardDTO struct {
	Players         []playerDTO         `json:"players"`
	OwnedLeagues    []leagueDTO         `json:"owned_leagues"`
	UpcomingMatches []matchSummaryDTO   `json:"upcoming_matches"`
	Standings       []leagueStandingDTO `json:"standings"`
}

type playerProfileDTO struct {
	Player        playerDTO         `json:"player"`
	CurrentSeason *seasonDTO        `json:"current_season,omitempty"`
	Standing      *standingDTO      `json:"standing,omitempty"`
	RecentMatches []matchSummaryDTO `json:"recent_matches"`
}

func matchToDTO(v match.Match) matchDTO {
	return matchDTO{
		ID:          v.ID,
		SeasonID:    v.SeasonID,
		WeekID:      v.WeekID,
		PlayerAID:   v.PlayerAID,
		PlayerBID:   v.PlayerBID,
		VenueID:     v.VenueID,
		ScheduledAt: v.ScheduledAt,
		RaceTo:      v.RaceTo,
		Status:      string(v.Status),
	}
}

func matchResultToDTO(v match.Result) matchResultDTO {
	return matchResultDTO{
		PointsA:     v.PointsA,
		PointsB:     v.PointsB,
		Innings:     v.Innings,
		HighRunA:    v.HighRunA,
		HighRunB:    v.HighRunB,
		Notes:       v.Notes,
		SubmittedBy: v.SubmittedBy,
		SubmittedAt: v.SubmittedAt,
		ApprovedBy:  v.ApprovedBy,
		ApprovedAt:  v.ApprovedAt,
		LockedBy:    v.LockedBy,
		LockedAt:    v.LockedAt,
	}
}

func optionalResultToDTO(v *match.Result) *matchResultDTO {
	if v == nil {
		return nil
	}
	out := matchResultToDTO(*v)
	return &out
}

func matchSummariesToDTO(items []usecase.MatchSummary) []matchSummaryDTO {
	out := make([]matchSummaryDTO, 0, len(items))
	for _, item := range items {
		out = append(out, matchSummaryDTO{
			Match:       matchToDTO(item.Match),
			PlayerAName: item.PlayerAName,
			PlayerBName: item.PlayerBName,
			Result:      optionalResultToDTO(item.Result),
		})
	}
	return out
}

func matchDetailToDTO(v usecase.MatchDetail) matchDetailDTO {
	out := matchDetailDTO{
		Match:   matchToDTO(v.Match),
		Season:  seasonToDTO(v.Season),
		Week:    weekToDTO(v.Week),
		PlayerA: playerToDTO(v.PlayerA),
		PlayerB: playerToDTO(v.PlayerB),
		Result:  optionalResultToDTO(v.Result),
		History: make([]auditEntryDTO, 0, len(v.History)),
	}
	if v.Venue != nil {
		out.Venue = venuePtrToDTO(*v.Venue)
	}
	for _, entry := range v.History {
		out.History = append(out.History, auditEntryToDTO(entry))
	}
	return out
}

func scheduleToDTO(v usecase.Schedule) scheduleDTO {
	return scheduleDTO{
		Season:  seasonToDTO(v.Season),
		Weeks:   weeksToDTO(v.Weeks),
		Matches: matchSummariesToDTO(v.Matches),
	}
}

func seasonToDTO(v season.Season) seasonDTO {
	return seasonDTO{
		ID:              v.ID,
		LeagueID:        v.LeagueID,
		Name:            v.Name,
		StartDate:       v.StartDate.Format(dateLayout),
		EndDate:         v.EndDate.Format(dateLayout),
		RaceToDefault:   v.RaceToDefault,
		InningsRequired: v.InningsRequired,
		HighRunEnabled:  v.HighRunEnabled,
		HandicapMethod:  string(v.HandicapMethod),
		SubmissionRule:  string(v.SubmissionRule),
		CreatedAt:       v.CreatedAt,
	}
}

func weekToDTO(v season.Week) weekDTO {
	return weekDTO{
		ID:        v.ID,
		Number:    v.Number,
		StartDate: v.StartDate.Format(dateLayout),
		EndDate:   v.EndDate.Format(dateLayout),
	}
}

func weeksToDTO(items []season.Week) []weekDTO {
	out := make([]weekDTO, 0, len(items))
	for _, item := range items {
		out = append(out, weekToDTO(item))
	}
	return out
}

func playerToDTO(v player.Player) playerDTO {
	return playerDTO{
		ID:          v.ID,
		LeagueID:    v.LeagueID,
		UserID:      v.UserID,
		DisplayName: v.DisplayName,
		Email:       v.Email,
		Phone:       v.Phone,
	}
}

func playersToDTO(items []player.Player) []playerDTO {
	out := make([]playerDTO, 0, len(items))
	for _, item := range items {
		out = append(out, playerToDTO(item))
	}
	return out
}

func seasonPlayerToDTO(v player.SeasonPlayer) seasonPlayerDTO {
	return seasonPlayerDTO{
		ID:             v.ID,
		SeasonID:       v.SeasonID,
		PlayerID:       v.PlayerID,
		HandicapPoints: v.HandicapPoints,
		Rating:         v.Rating,
		IsActive:       v.IsActive,
	}
}

func venuePtrToDTO(v venue.Venue) *venueDTO {
	return &venueDTO{
		ID:      v.ID,
		Name:    v.Name,
		Address: v.Address,
		Notes:   v.Notes,
	}
}

func leagueToDTO(v league.League) leagueDTO {
	return leagueDTO{
		ID:        v.ID,
		Name:      v.Name,
		CreatedAt: v.CreatedAt,
	}
}

func auditEntryToDTO(v audit.Entry) auditEntryDTO {
	return auditEntryDTO{
		ID:          v.ID,
		ActorUserID: v.ActorUserID,
		Action:      string(v.Action),
		Payload:     v.Payload,
		CreatedAt:   v.CreatedAt,
	}
}

func standingToDTO(v standing.Standing) standingDTO {
	return standingDTO{
		SeasonID:          v.SeasonID,
		PlayerID:          v.PlayerID,
		MatchesPlayed:     v.MatchesPlayed,
		Wins:              v.Wins,
		Losses:            v.Losses,
		PointsFor:         v.PointsFor,
		PointsAgainst:     v.PointsAgainst,
		PointDifferential: v.PointDifferential,
		TotalInnings:      v.TotalInnings,
		PPI:               v.PPI,
		HighRun:           v.HighRun,
		UpdatedAt:         v.UpdatedAt,
	}
}

func standingTableToDTO(v usecase.StandingTable) standingTableDTO {
	rows := make([]standingRowDTO, 0, len(v.Rows))
	for _, row := range v.Rows {
		rows = append(rows, standingRowDTO{
			Rank:        row.Rank,
			PlayerName:  row.PlayerName,
			standingDTO: standingToDTO(row.Standing),
		})
	}
	return standingTableDTO{Season: seasonToDTO(v.Season), Rows: rows}
}

func dashboardToDTO(v usecase.Dashboard) dashboardDTO {
	out := dashboardDTO{
		Players:         playersToDTO(v.Players),
		OwnedLeagues:    make([]leagueDTO, 0, len(v.OwnedLeagues)),
		UpcomingMatches: matchSummariesToDTO(v.UpcomingMatches),
		Standings:       make([]leagueStandingDTO, 0, len(v.Standings)),
	}
	for _, l := range v.OwnedLeagues {
		out.OwnedLeagues = append(out.OwnedLeagues, leagueToDTO(l))
	}
	for _, s := range v.Standings {
		out.Standings = append(out.Standings, leagueStandingDTO{
			LeagueID: s.LeagueID,
			Season:   seasonToDTO(s.Season),
			Standing: standingToDTO(s.Standing),
		})
	}
	return out
}

func playerProfileToDTO(v usecase.PlayerProfile) playerProfileDTO {
	out := playerProfileDTO{
		Player:        playerToDTO(v.Player),
		RecentMatches: matchSummariesToDTO(v.RecentMatches),
	}
	if v.CurrentSeason != nil {
		s := seasonToDTO(*v.CurrentSeason)
		out.CurrentSeason = &s
	}
	if v.Standing != nil {
		s := standingToDTO(*v.Standing)
		out.Standing = &s
	}
	return out
}

func matchActionToDTO(v usecase.MatchActionResult) actionResultDTO {
	m := matchToDTO(v.Match)
	r := matchResultToDTO(v.Result)
	return actionResultDTO{
		Success:  true,
		Degraded: v.Degraded,
		Warnings: v.Warnings,
		Match:    &m,
		Result:   &r,
	}
}

type jobDispatchDTO struct {
	DispatchID  string         `json:"dispatch_id"`
	JobName     string         `json:"job_name"`
	JobPath     string         `json:"job_path"`
	SeasonID    string         `json:"season_id,omitempty"`
	Status      string         `json:"status"`
	Payload     map[string]any `json:"payload,omitempty"`
	LastError   string         `json:"last_error,omitempty"`
	SentAt      *time.Time     `json:"sent_at,omitempty"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	FailedAt    *time.Time     `json:"failed_at,omitempty"`
	TraceID     string         `json:"trace_id,omitempty"`
}

func jobDispatchToDTO(v jobscheduler.Dispatch) jobDispatchDTO {
	return jobDispatchDTO{
		DispatchID:  v.DispatchID,
		JobName:     v.JobName,
		JobPath:     v.JobPath,
		SeasonID:    v.SeasonID,
		Status:      string(v.Status),
		Payload:     v.Payload,
		LastError:   v.LastError,
		SentAt:      v.SentAt,
		CompletedAt: v.CompletedAt,
		FailedAt:    v.FailedAt,
		TraceID:     v.TraceID,
	}
}
