package brackets

import (
	"fmt"

	"github.com/Dosada05/bracket-engine/models"
)

// TeammateLookup resolves the registered teammate of a player, if any.
type TeammateLookup func(playerID string) (models.Entrant, bool)

// PartitionUnits groups the registration pool into bracket units.
//
// In 1v1 every entrant is its own unit. In 2v2 registered teams whose both members are
// in the pool form a unit; the remaining entrants are paired in pool order and an odd
// leftover is completed with a filler.
func PartitionUnits(mode models.Mode, pool []models.Entrant, teammateOf TeammateLookup, nextFiller func() models.Entrant) []models.Unit {
	if mode.UnitSize() == 1 {
		units := make([]models.Unit, 0, len(pool))
		for _, e := range pool {
			units = append(units, models.Unit{e})
		}
		return units
	}

	byID := make(map[string]models.Entrant, len(pool))
	for _, e := range pool {
		byID[e.ID] = e
	}

	used := make(map[string]bool, len(pool))
	units := make([]models.Unit, 0, len(pool)/2+1)
	leftovers := make([]models.Entrant, 0)

	for _, e := range pool {
		if used[e.ID] {
			continue
		}
		used[e.ID] = true
		if !e.IsFiller() && teammateOf != nil {
			if mate, ok := teammateOf(e.ID); ok && !used[mate.ID] {
				if registered, inPool := byID[mate.ID]; inPool {
					used[mate.ID] = true
					units = append(units, models.Unit{e, registered})
					continue
				}
			}
		}
		leftovers = append(leftovers, e)
	}

	for i := 0; i < len(leftovers); i += 2 {
		if i+1 < len(leftovers) {
			units = append(units, models.Unit{leftovers[i], leftovers[i+1]})
		} else {
			units = append(units, models.Unit{leftovers[i], nextFiller()})
		}
	}
	return units
}

// PadUnits appends filler units until the unit count is even.
func PadUnits(units []models.Unit, newFillerUnit func() models.Unit) []models.Unit {
	for len(units)%2 != 0 {
		units = append(units, newFillerUnit())
	}
	return units
}

func Flatten(units []models.Unit) []models.Entrant {
	entrants := make([]models.Entrant, 0, len(units)*2)
	for _, u := range units {
		entrants = append(entrants, u...)
	}
	return entrants
}

// PairRound pairs adjacent units in array order. The unit count must be even and no
// entrant may appear twice; both are engine invariants and violating them panics.
func PairRound(round int, units []models.Unit) []models.Match {
	if len(units)%2 != 0 {
		panic(fmt.Sprintf("brackets: round %d generated from odd unit count %d", round, len(units)))
	}
	assertDisjoint(round, units)

	matches := make([]models.Match, 0, len(units)/2)
	for i := 0; i < len(units); i += 2 {
		matches = append(matches, models.Match{
			Round: round,
			Index: i/2 + 1,
			Home:  units[i].Clone(),
			Away:  units[i+1].Clone(),
		})
	}
	return matches
}

func assertDisjoint(round int, units []models.Unit) {
	seen := make(map[string]struct{}, len(units)*2)
	for _, u := range units {
		for _, e := range u {
			if _, dup := seen[e.ID]; dup {
				panic(fmt.Sprintf("brackets: entrant %s appears twice in round %d", e.ID, round))
			}
			seen[e.ID] = struct{}{}
		}
	}
}
