package grouping

import (
	"fmt"
	"math/rand/v2"
	"slices"
)

// Department is the pool of not yet assigned members sharing one tag.
// It only ever shrinks.
type Department struct {
	Name    string
	members []*Member
}

// NewDepartment creates a department owning the given members.
func NewDepartment(name string, members []*Member) *Department {
	return &Department{Name: name, members: members}
}

// Size returns the number of members left in the pool.
func (d *Department) Size() int {
	return len(d.members)
}

// IsEmpty reports whether every member has been extracted.
func (d *Department) IsEmpty() bool {
	return len(d.members) == 0
}

// ExtractRandom removes and returns a uniformly chosen member.
func (d *Department) ExtractRandom(rng *rand.Rand) (*Member, error) {
	if d.IsEmpty() {
		return nil, fmt.Errorf("extract random from %q: %w", d.Name, ErrEmptyDepartment)
	}
	return d.remove(rng.IntN(len(d.members))), nil
}

// ExtractOptimal removes and returns the member least previously paired with
// the current members of target. Ties are broken uniformly at random.
func (d *Department) ExtractOptimal(target *Group, rng *rand.Rand) (*Member, error) {
	if d.IsEmpty() {
		return nil, fmt.Errorf("extract optimal from %q: %w", d.Name, ErrEmptyDepartment)
	}

	best := -1
	var candidates []int
	for i, m := range d.members {
		score := target.overlap(m.Username)
		switch {
		case best == -1 || score < best:
			best = score
			candidates = append(candidates[:0], i)
		case score == best:
			candidates = append(candidates, i)
		}
	}

	return d.remove(candidates[rng.IntN(len(candidates))]), nil
}

func (d *Department) remove(i int) *Member {
	m := d.members[i]
	d.members = slices.Delete(d.members, i, i+1)
	return m
}
