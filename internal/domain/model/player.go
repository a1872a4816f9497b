package model

// PlayoffPlayer is a participant as known to the gamification system.
type PlayoffPlayer struct {
	ID    string `json:"id"`
	Alias string `json:"alias"`
	// Raw keeps the full response body for operator output.
	Raw map[string]any `json:"-"`
}

// PlayoffID addresses a member inside the gamification system.
func PlayoffID(prefix, memberID string) string {
	return prefix + memberID
}
