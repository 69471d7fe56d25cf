package player

import (
	"errors"
	"fmt"
	"strings"
)

// ErrDuplicate is returned when the account is already linked to another
// player in the same league.
var ErrDuplicate = errors.New("player already exists in league")

// Player is a league member who can be scheduled into matches. A player may
// exist before the person signs up, so the account link is optional.
type Player struct {
	ID          string
	LeagueID    string
	UserID      string
	DisplayName string
	Email       string
	Phone       string
}

func (p Player) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("player id is required")
	}
	if p.LeagueID == "" {
		return fmt.Errorf("player league id is required")
	}
	if strings.TrimSpace(p.DisplayName) == "" {
		return fmt.Errorf("player display name is required")
	}

	return nil
}

// IsLinkedTo reports whether the player record belongs to the given account.
func (p Player) IsLinkedTo(userID string) bool {
	return userID != "" && p.UserID == userID
}

// SeasonPlayer is a player's enrollment in one season. Handicap is tracked
// per season.
type SeasonPlayer struct {
	ID             string
	SeasonID       string
	PlayerID       string
	HandicapPoints int
	Rating         *float64
	IsActive       bool
}
