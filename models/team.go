package models

import "time"

// Team is a pair of distinct real players of one tenant.
type Team struct {
	ID        string     `json:"id"`
	Members   [2]Entrant `json:"members"`
	CreatedAt time.Time  `json:"created_at"`
}

// Teammate returns the member that is not playerID.
func (t *Team) Teammate(playerID string) (Entrant, bool) {
	switch playerID {
	case t.Members[0].ID:
		return t.Members[1], true
	case t.Members[1].ID:
		return t.Members[0], true
	default:
		return Entrant{}, false
	}
}

func (t *Team) Unit() Unit {
	return Unit{t.Members[0], t.Members[1]}
}

type Invitation struct {
	Inviter Entrant   `json:"inviter"`
	Invitee Entrant   `json:"invitee"`
	SentAt  time.Time `json:"sent_at"`
}
