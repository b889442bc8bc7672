package models

// HostRoster collects the staff volunteering to host matches of a guild.
type HostRoster struct {
	Open     bool      `json:"open"`
	Capacity int       `json:"capacity"`
	Hosts    []Entrant `json:"hosts"`
}

func (r *HostRoster) IndexOf(id string) int {
	for i, h := range r.Hosts {
		if h.ID == id {
			return i
		}
	}
	return -1
}
