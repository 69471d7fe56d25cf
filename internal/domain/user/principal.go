package user

import "strings"

// Principal is the authenticated caller of an action.
type Principal struct {
	UserID string
	Email  string
}

func (p Principal) IsZero() bool {
	return strings.TrimSpace(p.UserID) == ""
}
