package usecase

import (
	"context"
	"fmt"

	"github.com/riskibarqy/cuebook/internal/domain/match"
	"github.com/riskibarqy/cuebook/internal/domain/player"
)

// MatchSummary is a match with the names and score needed by list views.
type MatchSummary struct {
	Match       match.Match
	PlayerAName string
	PlayerBName string
	Result      *match.Result
}

// matchReader joins matches with their players and results.
type matchReader struct {
	matchRepo  match.Repository
	playerRepo player.Repository
}

func (r matchReader) summarize(ctx context.Context, matches []match.Match) ([]MatchSummary, error) {
	if len(matches) == 0 {
		return []MatchSummary{}, nil
	}

	playerIDs := make([]string, 0, len(matches)*2)
	matchIDs := make([]string, 0, len(matches))
	seen := make(map[string]struct{}, len(matches)*2)
	for _, m := range matches {
		matchIDs = append(matchIDs, m.ID)
		for _, playerID := range m.PlayerIDs() {
			if _, ok := seen[playerID]; ok {
				continue
			}
			seen[playerID] = struct{}{}
			playerIDs = append(playerIDs, playerID)
		}
	}

	players, err := r.playerRepo.GetByIDs(ctx, playerIDs)
	if err != nil {
		return nil, fmt.Errorf("get match players: %w", err)
	}
	names := make(map[string]string, len(players))
	for _, p := range players {
		names[p.ID] = p.DisplayName
	}

	results, err := r.matchRepo.ListResults(ctx, matchIDs)
	if err != nil {
		return nil, fmt.Errorf("list match results: %w", err)
	}
	resultByMatch := make(map[string]match.Result, len(results))
	for _, res := range results {
		resultByMatch[res.MatchID] = res
	}

	out := make([]MatchSummary, 0, len(matches))
	for _, m := range matches {
		item := MatchSummary{
			Match:       m,
			PlayerAName: names[m.PlayerAID],
			PlayerBName: names[m.PlayerBID],
		}
		if res, ok := resultByMatch[m.ID]; ok {
			item.Result = &res
		}
		out = append(out, item)
	}
	return out, nil
}
