package model

import "fmt"

// UnitID identifies a unit within one match. Tag is the replay's unit tag
// (index<<18 | recycle), unique per match; Type is the unit type name.
type UnitID struct {
	Type string
	Tag  uint32
}

// NewUnitID builds a UnitID from the tag index/recycle pair found in tracker events.
func NewUnitID(typeName string, index, recycle uint32) UnitID {
	return UnitID{Type: typeName, Tag: index<<18 | recycle}
}

// Index returns the tag index half of the unit tag.
func (u UnitID) Index() uint32 { return u.Tag >> 18 }

// Key is the per-match join key, rendered as it appears in the output tables.
func (u UnitID) Key() string {
	return fmt.Sprintf("[%08X]", u.Tag)
}

func (u UnitID) String() string {
	return u.Type + " " + u.Key()
}

// ---- Events emitted by the parser ----

// Event is one tracker event of a match. The set of implementations is closed:
// UnitBorn, UnitInit, UpgradeComplete, PlayerStats, UnitPositions, UnitDied.
type Event interface {
	// Second is the match-relative time in whole game seconds.
	Second() int
	isEvent()
}

// At is embedded by every event to carry its timestamp.
type At struct {
	Sec int
}

func (a At) Second() int { return a.Sec }
func (At) isEvent() {}

// UnitBorn is emitted when a trained or spawned unit appears.
type UnitBorn struct {
	At
	Unit   UnitID
	Player int // controlling player
	X, Y   int
}

// UnitInit is emitted when a structure is placed (construction started).
type UnitInit struct {
	At
	Unit   UnitID
	Player int
	X, Y   int
}

// UnitDied is emitted on unit death. Killer is 0 when no player is credited.
type UnitDied struct {
	At
	Unit   UnitID
	Killer int
	X, Y   int
}

// UnitPosition is one entry of a positions snapshot.
type UnitPosition struct {
	Unit UnitID
	X, Y int
}

// UnitPositions is a periodic snapshot of every live unit, all players included.
type UnitPositions struct {
	At
	Units []UnitPosition
}

// PlayerStats is the periodic economy sample for one player.
type PlayerStats struct {
	At
	Player   int
	Minerals int
	Vespene  int
	Workers  int
}

// UpgradeComplete is emitted when a research finishes.
type UpgradeComplete struct {
	At
	Player int
	Name   string
}

// Replay is the decoded event stream of one replay file.
type Replay struct {
	Info   ReplayInfo
	Events []Event
}

// ReplayInfo holds file-level metadata.
type ReplayInfo struct {
	Path    string
	Name    string // base file name, used as the block marker in output tables
	Hash    string // sha256 of the file bytes
	MapName string
}

// ---- Derived records ----

// CombatRecord is a unit's state in the combat table.
type CombatRecord struct {
	Second  int // -1 when the unit is reported alive at its spawn point
	Counter int
	Unit    UnitID
	X, Y    int
}

// Category classifies an action.
type Category int

const (
	CategoryEconomy Category = iota
	CategoryArmy
	CategoryTech
	CategoryOther
)

func (c Category) String() string {
	switch c {
	case CategoryEconomy:
		return "Economy"
	case CategoryArmy:
		return "Army"
	case CategoryTech:
		return "Tech"
	default:
		return "Other"
	}
}

// ActionRecord is one build/train/upgrade command on a player's timeline.
type ActionRecord struct {
	Second   int
	Counter  int
	Label    string
	Category Category
}

// ResourceRecord is one economy sample, optionally annotated with the
// upgrades completed up to its ten-second bucket.
type ResourceRecord struct {
	Second   int
	Counter  int
	Minerals int
	Vespene  int
	Workers  int
	Upgrades string // empty when no upgrade bucket matches Second
}

// MatchSummary is the ledger entry for one processed replay.
type MatchSummary struct {
	Hash         string
	Name         string
	MapName      string
	ProcessedAt  string
	CounterStart int // player 1's counter
	CounterStep  int // player 2's counter is CounterStart + CounterStep
	CombatRows   int
	ActionRows   int
	ResourceRows int
	CombatWinner int // player whose engagement rows were written; 0 if combat was not run
}
