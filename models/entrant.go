package models

import (
	"fmt"
	"strconv"
	"strings"
)

// EntrantKind отличает реального участника от бота-заполнителя.
type EntrantKind string

const (
	EntrantPlayer EntrantKind = "player"
	EntrantFiller EntrantKind = "filler"
)

// fillerIDBase keeps filler ids in the same numeric space the bot always used for its bots.
const fillerIDBase int64 = 761557952975420886

// Entrant occupies one bracket slot: a real platform user or a synthetic filler (bye).
type Entrant struct {
	Kind EntrantKind `json:"kind"`
	ID   string      `json:"id"`
	Name string      `json:"name"`
}

func NewPlayer(id, name string) Entrant {
	return Entrant{Kind: EntrantPlayer, ID: id, Name: name}
}

// NewFiller builds the n-th filler of a tenant. n comes from Tournament.FillerCount.
func NewFiller(n int) Entrant {
	return Entrant{
		Kind: EntrantFiller,
		ID:   strconv.FormatInt(fillerIDBase+int64(n), 10),
		Name: fmt.Sprintf("Bot%d", n),
	}
}

func (e Entrant) IsFiller() bool {
	return e.Kind == EntrantFiller
}

// Is reports identity equality; display names are ignored.
func (e Entrant) Is(other Entrant) bool {
	return e.Kind == other.Kind && e.ID == other.ID
}

func (e Entrant) DisplayName() string {
	if e.IsFiller() {
		return "None"
	}
	return e.Name
}

// Unit is the indivisible bracket grouping: one player in 1v1, a pair in 2v2.
type Unit []Entrant

func (u Unit) Contains(entrantID string) bool {
	return u.index(entrantID) >= 0
}

func (u Unit) index(entrantID string) int {
	for i, e := range u {
		if e.ID == entrantID {
			return i
		}
	}
	return -1
}

// IsFiller is true when every member is a filler.
func (u Unit) IsFiller() bool {
	if len(u) == 0 {
		return false
	}
	for _, e := range u {
		if !e.IsFiller() {
			return false
		}
	}
	return true
}

// RealMembers drops filler members.
func (u Unit) RealMembers() Unit {
	members := make(Unit, 0, len(u))
	for _, e := range u {
		if !e.IsFiller() {
			members = append(members, e)
		}
	}
	return members
}

func (u Unit) DisplayName() string {
	names := make([]string, 0, len(u))
	for _, e := range u {
		names = append(names, e.DisplayName())
	}
	return strings.Join(names, " & ")
}

func (u Unit) Clone() Unit {
	if u == nil {
		return nil
	}
	c := make(Unit, len(u))
	copy(c, u)
	return c
}
