package models

// Group is one lunch group inside a committed round.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Position is the group's index within its round, starting at zero.
	Position int

	// Members is the list of usernames in the group, in the order they were
	// assigned.
	Members []string
}

// Pairs returns every unordered pair of members in the group.
func (g Group) Pairs() [][2]string {
	var pairs [][2]string
	for i, a := range g.Members {
		for _, b := range g.Members[i+1:] {
			pairs = append(pairs, [2]string{a, b})
		}
	}
	return pairs
}
