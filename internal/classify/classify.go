// Package classify partitions a match's event stream by event kind.
package classify

import "github.com/pable/go-sc2-metrics/internal/model"

// Groups holds one slice per event kind, each in stream order.
// A kind absent from the stream is a nil slice.
type Groups struct {
	Born      []model.UnitBorn
	Init      []model.UnitInit
	Upgrades  []model.UpgradeComplete
	Stats     []model.PlayerStats
	Positions []model.UnitPositions
	Died      []model.UnitDied
}

// Classify partitions events by kind. Nothing is filtered or reordered.
func Classify(events []model.Event) Groups {
	var g Groups
	for _, e := range events {
		switch ev := e.(type) {
		case model.UnitBorn:
			g.Born = append(g.Born, ev)
		case model.UnitInit:
			g.Init = append(g.Init, ev)
		case model.UpgradeComplete:
			g.Upgrades = append(g.Upgrades, ev)
		case model.PlayerStats:
			g.Stats = append(g.Stats, ev)
		case model.UnitPositions:
			g.Positions = append(g.Positions, ev)
		case model.UnitDied:
			g.Died = append(g.Died, ev)
		}
	}
	return g
}

// Len returns the total number of classified events.
func (g Groups) Len() int {
	return len(g.Born) + len(g.Init) + len(g.Upgrades) + len(g.Stats) + len(g.Positions) + len(g.Died)
}
