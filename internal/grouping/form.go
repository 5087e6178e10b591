// Package grouping forms lunch groups from a roster of people tagged with
// departments.
//
// The algorithm is a single-pass greedy heuristic:
//  1. number of groups = floor(roster size / minimum group size)
//  2. every group is seeded with a random member of the currently largest department
//  3. the smallest group (random among ties) repeatedly receives a member from
//     the largest department not yet represented in it, or from the largest
//     department overall when every remaining department is represented
//  4. within the chosen department, the member least previously paired with
//     the group is picked (random among ties)
//
// Growing the smallest group first keeps group sizes within one of each other
// at every step.
package grouping

import (
	"cmp"
	"fmt"
	"math/rand/v2"
	"slices"
)

// Step describes one assignment made by the main loop.
type Step struct {
	// Target is the group that received Member.
	Target *Group
	Member *Member

	// Available names the departments that still had members before the pick,
	// largest first.
	Available []string

	// Groups is every group in creation order, after the assignment.
	Groups []*Group
}

// Option customizes Form.
type Option func(*formOptions)

type formOptions struct {
	observer func(Step)
}

// WithObserver registers a callback invoked after every main-loop assignment.
// The callback must not mutate the groups.
func WithObserver(fn func(Step)) Option {
	return func(o *formOptions) {
		o.observer = fn
	}
}

// Form splits roster into floor(len(roster)/minGroupSize) groups.
//
// history may be nil. rng drives every random tie-break; pass a seeded
// generator for reproducible results. A nil rng is replaced by a freshly
// seeded one.
func Form(roster Roster, minGroupSize int, history History, rng *rand.Rand, opts ...Option) ([]*Group, error) {
	if minGroupSize <= 0 {
		return nil, fmt.Errorf("min group size %d: %w", minGroupSize, ErrInvalidGroupSize)
	}
	numberOfGroups := len(roster) / minGroupSize
	if numberOfGroups == 0 {
		return nil, fmt.Errorf("%d members, min group size %d: %w", len(roster), minGroupSize, ErrRosterTooSmall)
	}

	o := &formOptions{}
	for _, opt := range opts {
		opt(o)
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	departments := Partition(roster, history)

	groups, err := seedGroups(numberOfGroups, departments, rng)
	if err != nil {
		return nil, err
	}

	for !allEmpty(departments) {
		target, err := randomSmallest(groups, rng)
		if err != nil {
			return nil, err
		}

		available := largestFirst(departments)
		member, err := pickDepartment(available, target).ExtractOptimal(target, rng)
		if err != nil {
			return nil, err
		}
		target.Add(member)

		if o.observer != nil {
			names := make([]string, len(available))
			for i, d := range available {
				names[i] = d.Name
			}
			o.observer(Step{Target: target, Member: member, Available: names, Groups: groups})
		}
	}

	return groups, nil
}

// Partition inverts roster into one department per tag. Departments are
// ordered by name and their members by username, so a fixed seed always
// produces the same grouping.
func Partition(roster Roster, history History) []*Department {
	byDept := make(map[string][]*Member)
	for username, dept := range roster {
		m := NewMember(username, dept)
		if matches, ok := history[username]; ok {
			m.AddPreviousMatches(matches)
		}
		byDept[dept] = append(byDept[dept], m)
	}

	departments := make([]*Department, 0, len(byDept))
	for name, members := range byDept {
		slices.SortFunc(members, func(a, b *Member) int {
			return cmp.Compare(a.Username, b.Username)
		})
		departments = append(departments, NewDepartment(name, members))
	}
	slices.SortFunc(departments, func(a, b *Department) int {
		return cmp.Compare(a.Name, b.Name)
	})
	return departments
}

// seedGroups starts n singleton groups, each with a random member of the
// department that is largest at that moment.
func seedGroups(n int, departments []*Department, rng *rand.Rand) ([]*Group, error) {
	groups := make([]*Group, 0, n)
	for range n {
		largest := largestFirst(departments)
		if len(largest) == 0 {
			return nil, fmt.Errorf("seed group %d: %w", len(groups)+1, ErrEmptyDepartment)
		}
		member, err := largest[0].ExtractRandom(rng)
		if err != nil {
			return nil, err
		}
		groups = append(groups, NewGroup(member))
	}
	return groups, nil
}

// randomSmallest picks uniformly among the groups with the fewest members.
func randomSmallest(groups []*Group, rng *rand.Rand) (*Group, error) {
	if len(groups) == 0 {
		return nil, ErrNoGroups
	}

	smallest := groups[0].Size()
	for _, g := range groups[1:] {
		smallest = min(smallest, g.Size())
	}

	var candidates []*Group
	for _, g := range groups {
		if g.Size() == smallest {
			candidates = append(candidates, g)
		}
	}
	return candidates[rng.IntN(len(candidates))], nil
}

// pickDepartment returns the first department in available not yet
// represented in target, falling back to the largest one. available must be
// non-empty and ordered largest first.
func pickDepartment(available []*Department, target *Group) *Department {
	for _, d := range available {
		if !target.HasDepartment(d.Name) {
			return d
		}
	}
	return available[0]
}

// largestFirst returns the non-empty departments ordered by remaining size,
// largest first. Equal sizes keep their partition order.
func largestFirst(departments []*Department) []*Department {
	out := make([]*Department, 0, len(departments))
	for _, d := range departments {
		if !d.IsEmpty() {
			out = append(out, d)
		}
	}
	slices.SortStableFunc(out, func(a, b *Department) int {
		return cmp.Compare(b.Size(), a.Size())
	})
	return out
}

func allEmpty(departments []*Department) bool {
	for _, d := range departments {
		if !d.IsEmpty() {
			return false
		}
	}
	return true
}
