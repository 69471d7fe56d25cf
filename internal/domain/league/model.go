package league

import (
	"fmt"
	"strings"
	"time"
)

// League is a recreational pool league run by a single owner.
type League struct {
	ID          string
	Name        string
	OwnerUserID string
	CreatedAt   time.Time
}

func (l League) Validate() error {
	if l.ID == "" {
		return fmt.Errorf("league id is required")
	}
	if strings.TrimSpace(l.Name) == "" {
		return fmt.Errorf("league name is required")
	}
	if l.OwnerUserID == "" {
		return fmt.Errorf("league owner is required")
	}

	return nil
}

func (l League) IsOwnedBy(userID string) bool {
	return userID != "" && l.OwnerUserID == userID
}
