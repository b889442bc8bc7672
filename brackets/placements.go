package brackets

import "github.com/Dosada05/bracket-engine/models"

const podiumSize = 4

// ComputePlacements derives the top four once the final is decided.
//
// First place is the final's winner. Places 2-4 are the most recently eliminated entrants
// in global tournament order (last, second to last, third to last), not the semifinal
// losers specifically. Fillers are never placed: a slot that would hold only fillers is
// left out and later slots keep their place numbers.
func ComputePlacements(winner models.Unit, eliminated []models.Entrant) []models.Placement {
	placements := make([]models.Placement, 0, podiumSize)

	if members := winner.RealMembers(); len(members) > 0 {
		placements = append(placements, models.Placement{Place: 1, Entrants: members})
	}

	for place := 2; place <= podiumSize; place++ {
		idx := len(eliminated) - (place - 1)
		if idx < 0 {
			break
		}
		e := eliminated[idx]
		if e.IsFiller() {
			continue
		}
		placements = append(placements, models.Placement{Place: place, Entrants: models.Unit{e}})
	}
	return placements
}
