package grouping

import "strings"

// Group is one lunch group being built up. Members are only ever appended.
type Group struct {
	members []*Member
}

// NewGroup creates a group seeded with the given members.
func NewGroup(members ...*Member) *Group {
	g := &Group{}
	for _, m := range members {
		g.Add(m)
	}
	return g
}

// Add appends a member to the group.
func (g *Group) Add(m *Member) {
	g.members = append(g.members, m)
}

// Size returns the current member count.
func (g *Group) Size() int {
	return len(g.members)
}

// Members returns the members in the order they joined.
func (g *Group) Members() []*Member {
	return g.members
}

// Departments returns the set of department tags represented in the group.
func (g *Group) Departments() map[string]struct{} {
	depts := make(map[string]struct{}, len(g.members))
	for _, m := range g.members {
		depts[m.Department] = struct{}{}
	}
	return depts
}

// HasDepartment reports whether any member belongs to dept.
func (g *Group) HasDepartment(dept string) bool {
	for _, m := range g.members {
		if m.Department == dept {
			return true
		}
	}
	return false
}

// Usernames returns the usernames in join order.
func (g *Group) Usernames() []string {
	names := make([]string, len(g.members))
	for i, m := range g.members {
		names[i] = m.Username
	}
	return names
}

// Line renders the group as a single tab-joined line.
func (g *Group) Line(showDepartment bool) string {
	parts := make([]string, len(g.members))
	for i, m := range g.members {
		if showDepartment {
			parts[i] = m.String()
		} else {
			parts[i] = m.Username
		}
	}
	return strings.Join(parts, "\t")
}

// overlap counts the members of g who were previously grouped with username.
func (g *Group) overlap(username string) int {
	score := 0
	for _, m := range g.members {
		if m.HasMatched(username) {
			score++
		}
	}
	return score
}

// Sizes returns the size of every group, in order.
func Sizes(groups []*Group) []int {
	sizes := make([]int, len(groups))
	for i, g := range groups {
		sizes[i] = g.Size()
	}
	return sizes
}

// RepeatPairs counts the pairs of members sharing a group who had already
// been grouped together before.
func RepeatPairs(groups []*Group) int {
	repeats := 0
	for _, g := range groups {
		for i, a := range g.members {
			for _, b := range g.members[i+1:] {
				if a.HasMatched(b.Username) || b.HasMatched(a.Username) {
					repeats++
				}
			}
		}
	}
	return repeats
}
