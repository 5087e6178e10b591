// Package api defines the request and response messages of the
// lunchclub.v1.LunchService Connect service.
//
// Messages are plain structs encoded as JSON; see package apiconnect for the
// handler and client glue.
package api

// Member is one roster entry.
type Member struct {
	Username   string `json:"username"`
	Department string `json:"department"`
}

// Group is one formed lunch group.
type Group struct {
	Members []Member `json:"members"`
}

// RoundGroup is one lunch group of a committed round.
type RoundGroup struct {
	ID      string   `json:"id"`
	Members []string `json:"members"`
}

// Round is a committed formation of lunch groups.
type Round struct {
	ID string `json:"id"`
	// FormationDate uses the YYYYMMDD layout.
	FormationDate string       `json:"formation_date"`
	Groups        []RoundGroup `json:"groups"`
	CreatedAt     int64        `json:"created_at"`
}

// RoundSummary is the list view of a round.
type RoundSummary struct {
	ID            string `json:"id"`
	FormationDate string `json:"formation_date"`
	GroupCount    int    `json:"group_count"`
	MemberCount   int    `json:"member_count"`
	CreatedAt     int64  `json:"created_at"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}

type ImportRosterRequest struct {
	Members []Member `json:"members"`
}

type ImportRosterResponse struct {
	MemberCount int `json:"member_count"`
}

type ListMembersRequest struct{}

type ListMembersResponse struct {
	Members []Member `json:"members"`
}

// FormGroupsRequest previews a formation. Nothing is persisted.
type FormGroupsRequest struct {
	// MinGroupSize overrides the configured minimum group size when positive.
	MinGroupSize int `json:"min_group_size,omitempty"`

	// Seed makes the formation reproducible. A random seed is used when nil.
	Seed *uint64 `json:"seed,omitempty"`

	// FormationDate (YYYYMMDD) ends the history window. Defaults to today.
	FormationDate string `json:"formation_date,omitempty"`
}

type FormGroupsResponse struct {
	Groups      []Group `json:"groups"`
	RepeatPairs int     `json:"repeat_pairs"`
	Seed        uint64  `json:"seed"`
}

// CommitRoundRequest stores groups, usually the output of FormGroups, as a round.
type CommitRoundRequest struct {
	FormationDate string     `json:"formation_date"`
	Groups        [][]string `json:"groups"`
}

type CommitRoundResponse struct {
	Round *Round `json:"round"`
}

type GetRoundRequest struct {
	RoundID string `json:"round_id"`
}

type GetRoundResponse struct {
	Round *Round `json:"round"`
}

type ListRoundsRequest struct{}

type ListRoundsResponse struct {
	Rounds []RoundSummary `json:"rounds"`
}
