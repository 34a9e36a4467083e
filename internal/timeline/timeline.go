// Package timeline builds per-player command timelines (train, build, upgrade).
package timeline

import (
	"sort"

	"github.com/pable/go-sc2-metrics/internal/classify"
	"github.com/pable/go-sc2-metrics/internal/model"
)

// Build returns the player's actions sorted by second. Ties keep emission
// order: trains, then builds, then upgrades.
func Build(g classify.Groups, player, counter int, cat Catalog) []model.ActionRecord {
	var out []model.ActionRecord

	for _, b := range g.Born {
		if b.Sec <= 0 || b.Player != player {
			continue
		}
		c := model.CategoryArmy
		if cat.Workers[b.Unit.Type] {
			c = model.CategoryEconomy
		}
		out = append(out, model.ActionRecord{Second: b.Sec, Counter: counter, Label: "Train " + b.Unit.Type, Category: c})
	}

	// Structures placed at second 0 are kept; only trains and upgrades skip the start.
	for _, in := range g.Init {
		if in.Player != player {
			continue
		}
		c, ok := cat.structure(in.Unit.Type)
		if !ok {
			continue
		}
		out = append(out, model.ActionRecord{Second: in.Sec, Counter: counter, Label: "Build " + in.Unit.Type, Category: c})
	}

	for _, u := range g.Upgrades {
		if u.Sec <= 0 || u.Player != player {
			continue
		}
		out = append(out, model.ActionRecord{Second: u.Sec, Counter: counter, Label: "Upgrade " + u.Name, Category: model.CategoryTech})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Second < out[j].Second })
	return out
}
