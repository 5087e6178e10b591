package models

import "time"

// Round is one committed formation of lunch groups.
// Every pair of members sharing a group becomes a previous match dated
// FormationDate for later rounds.
type Round struct {
	// ID is the unique identifier for the round (UUID format).
	ID string

	// FormationDate is the day the groups were formed (UTC midnight).
	FormationDate time.Time

	// Groups are the lunch groups in output order.
	Groups []Group

	// CreatedAt is the Unix timestamp when the round was committed.
	CreatedAt int64
}

// MemberCount returns the number of members across all groups.
func (r *Round) MemberCount() int {
	n := 0
	for _, g := range r.Groups {
		n += len(g.Members)
	}
	return n
}

// RoundSummary is the list view of a round.
type RoundSummary struct {
	ID            string
	FormationDate time.Time
	GroupCount    int
	MemberCount   int
	CreatedAt     int64
}
