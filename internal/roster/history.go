package roster

import (
	"github.com/mmynk/lunchclub/internal/grouping"
	"github.com/mmynk/lunchclub/internal/models"
)

// HistoryFromRounds records every pair of members that shared a group as a
// previous match in both directions, dated at the round's formation date.
// Callers choose which rounds fall inside the recency window.
func HistoryFromRounds(rounds []models.Round) grouping.History {
	history := make(grouping.History)
	for _, round := range rounds {
		for _, g := range round.Groups {
			for _, pair := range g.Pairs() {
				a, b := pair[0], pair[1]
				history[a] = append(history[a], grouping.PreviousMatch{Date: round.FormationDate, Username: b})
				history[b] = append(history[b], grouping.PreviousMatch{Date: round.FormationDate, Username: a})
			}
		}
	}
	return history
}
