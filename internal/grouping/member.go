package grouping

import "time"

// Roster maps a username to its department tag.
type Roster map[string]string

// PreviousMatch records that a member was grouped with Username on Date.
type PreviousMatch struct {
	Date     time.Time
	Username string
}

// History maps a username to the people they were grouped with inside the
// recency window. The window is applied by whoever builds the History.
type History map[string][]PreviousMatch

// Member is one person on the roster.
type Member struct {
	Username   string
	Department string

	// PreviousMatches maps another username to the date the two were last
	// grouped together. Empty when no history was supplied.
	PreviousMatches map[string]time.Time
}

// NewMember creates a member with no previous matches.
func NewMember(username, department string) *Member {
	return &Member{
		Username:        username,
		Department:      department,
		PreviousMatches: make(map[string]time.Time),
	}
}

// AddPreviousMatches records past co-groupings. When the same person appears
// more than once, the most recent date is kept.
func (m *Member) AddPreviousMatches(matches []PreviousMatch) {
	for _, pm := range matches {
		if last, ok := m.PreviousMatches[pm.Username]; ok && !pm.Date.After(last) {
			continue
		}
		m.PreviousMatches[pm.Username] = pm.Date
	}
}

// HasMatched reports whether m was previously grouped with username.
func (m *Member) HasMatched(username string) bool {
	_, ok := m.PreviousMatches[username]
	return ok
}

// String renders the member as username|department.
func (m *Member) String() string {
	return m.Username + "|" + m.Department
}
