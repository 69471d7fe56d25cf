package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/cuebook/internal/domain/league"
	"github.com/riskibarqy/cuebook/internal/domain/match"
	"github.com/riskibarqy/cuebook/internal/domain/player"
	"github.com/riskibarqy/cuebook/internal/domain/user"
)

// Role is the relationship of a caller to a match.
type Role string

const (
	RoleOwner       Role = "owner"
	RoleParticipant Role = "participant"
)

// Guard answers authorization questions by reading league ownership and
// player account links. It never writes.
type Guard struct {
	leagueRepo league.Repository
	playerRepo player.Repository
}

func NewGuard(leagueRepo league.Repository, playerRepo player.Repository) *Guard {
	return &Guard{
		leagueRepo: leagueRepo,
		playerRepo: playerRepo,
	}
}

func (g *Guard) RequireLeagueOwner(ctx context.Context, principal user.Principal, leagueID string) (league.League, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.Guard.RequireLeagueOwner")
	defer span.End()

	if principal.IsZero() {
		return league.League{}, fmt.Errorf("%w: sign in required", ErrUnauthenticated)
	}

	item, err := g.loadLeague(ctx, leagueID)
	if err != nil {
		return league.League{}, err
	}
	if !item.IsOwnedBy(principal.UserID) {
		return league.League{}, fmt.Errorf("%w: user=%s is not the owner of league=%s", ErrForbidden, principal.UserID, item.ID)
	}

	return item, nil
}

// RequireMatchParticipantOrOwner resolves whether the caller plays in the
// match or owns its league. Owners win when both hold.
func (g *Guard) RequireMatchParticipantOrOwner(ctx context.Context, principal user.Principal, m match.Match, leagueID string) (Role, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.Guard.RequireMatchParticipantOrOwner")
	defer span.End()

	if principal.IsZero() {
		return "", fmt.Errorf("%w: sign in required", ErrUnauthenticated)
	}

	item, err := g.loadLeague(ctx, leagueID)
	if err != nil {
		return "", err
	}
	if item.IsOwnedBy(principal.UserID) {
		return RoleOwner, nil
	}

	players, err := g.playerRepo.GetByIDs(ctx, m.PlayerIDs())
	if err != nil {
		return "", fmt.Errorf("get match players: %w", err)
	}
	for _, p := range players {
		if p.IsLinkedTo(principal.UserID) {
			return RoleParticipant, nil
		}
	}

	return "", fmt.Errorf("%w: user=%s is not a participant of match=%s", ErrForbidden, principal.UserID, m.ID)
}

func (g *Guard) loadLeague(ctx context.Context, leagueID string) (league.League, error) {
	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		return league.League{}, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}

	item, exists, err := g.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		return league.League{}, fmt.Errorf("get league: %w", err)
	}
	if !exists {
		return league.League{}, fmt.Errorf("%w: league=%s", ErrNotFound, leagueID)
	}

	return item, nil
}
