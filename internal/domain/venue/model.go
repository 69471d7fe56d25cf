package venue

// Venue is a pool hall where league matches are played.
type Venue struct {
	ID       string
	LeagueID string
	Name     string
	Address  string
	Notes    string
}
