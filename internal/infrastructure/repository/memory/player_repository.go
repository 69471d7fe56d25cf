package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/riskibarqy/cuebook/internal/domain/player"
)

type PlayerRepository struct {
	mu            sync.RWMutex
	players       map[string]player.Player
	orders        []string
	seasonPlayers map[string]player.SeasonPlayer
}

func NewPlayerRepository(players []player.Player, seasonPlayers []player.SeasonPlayer) *PlayerRepository {
	r := &PlayerRepository{
		players:       make(map[string]player.Player, len(players)),
		seasonPlayers: make(map[string]player.SeasonPlayer, len(seasonPlayers)),
	}
	for _, p := range players {
		r.players[p.ID] = p
		r.orders = append(r.orders, p.ID)
	}
	for _, sp := range seasonPlayers {
		r.seasonPlayers[sp.ID] = sp
	}
	return r
}

func (r *PlayerRepository) Create(_ context.Context, p player.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.players[p.ID]; exists {
		return fmt.Errorf("player id=%s already exists", p.ID)
	}
	if p.UserID != "" {
		for _, existing := range r.players {
			if existing.LeagueID == p.LeagueID && existing.UserID == p.UserID {
				return fmt.Errorf("%w: league_id=%s", player.ErrDuplicate, p.LeagueID)
			}
		}
	}

	r.players[p.ID] = p
	r.orders = append(r.orders, p.ID)
	return nil
}

func (r *PlayerRepository) GetByID(_ context.Context, playerID string) (player.Player, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.players[playerID]
	return p, ok, nil
}

func (r *PlayerRepository) GetByIDs(_ context.Context, playerIDs []string) ([]player.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]player.Player, 0, len(playerIDs))
	for _, id := range playerIDs {
		p, ok := r.players[id]
		if !ok {
			continue
		}
		out = append(out, p)
	}

	return out, nil
}

func (r *PlayerRepository) ListByLeague(_ context.Context, leagueID string) ([]player.Player, error) {
	return r.filter(func(p player.Player) bool { return p.LeagueID == leagueID }), nil
}

func (r *PlayerRepository) ListByUser(_ context.Context, userID string) ([]player.Player, error) {
	return r.filter(func(p player.Player) bool { return p.IsLinkedTo(userID) }), nil
}

func (r *PlayerRepository) GetSeasonPlayer(_ context.Context, seasonPlayerID string) (player.SeasonPlayer, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sp, ok := r.seasonPlayers[seasonPlayerID]
	return sp, ok, nil
}

func (r *PlayerRepository) UpdateHandicap(_ context.Context, seasonPlayerID string, handicapPoints int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	sp, ok := r.seasonPlayers[seasonPlayerID]
	if !ok {
		return fmt.Errorf("update handicap season_player_id=%s: no rows updated", seasonPlayerID)
	}
	sp.HandicapPoints = handicapPoints
	r.seasonPlayers[seasonPlayerID] = sp
	return nil
}

func (r *PlayerRepository) filter(keep func(player.Player) bool) []player.Player {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]player.Player, 0)
	for _, id := range r.orders {
		if p := r.players[id]; keep(p) {
			out = append(out, p)
		}
	}
	return out
}
