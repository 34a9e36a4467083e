package combat

import (
	"github.com/pable/go-sc2-metrics/internal/classify"
	"github.com/pable/go-sc2-metrics/internal/model"
)

// Alive is the Second value of a record whose unit never died.
const Alive = -1

// InitialState reports every unit the player produced after the match start:
// a unit that died is reported at its death second and position, a unit that
// survived keeps the Alive sentinel and its spawn position. Rows follow birth order.
func InitialState(g classify.Groups, player, counter int) []model.CombatRecord {
	var out []model.CombatRecord
	for _, b := range g.Born {
		if b.Player != player || b.Sec <= 0 {
			continue
		}
		rec := model.CombatRecord{Second: Alive, Counter: counter, Unit: b.Unit, X: b.X, Y: b.Y}
		// Deaths are matched regardless of who owned or killed the unit; first match wins.
		for _, d := range g.Died {
			if d.Unit.Tag == b.Unit.Tag {
				rec = model.CombatRecord{Second: d.Sec, Counter: counter, Unit: d.Unit, X: d.X, Y: d.Y}
				break
			}
		}
		out = append(out, rec)
	}
	return out
}

// SurvivorSet returns the tags of units the player produced after the match
// start that were not killed by killer. Deaths credited to anyone else,
// including no one, do not remove a unit from the set.
func SurvivorSet(g classify.Groups, player, killer int) map[uint32]struct{} {
	diedToKiller := make(map[uint32]struct{})
	for _, d := range g.Died {
		if d.Sec > 0 && d.Killer == killer {
			diedToKiller[d.Unit.Tag] = struct{}{}
		}
	}

	survivors := make(map[uint32]struct{})
	for _, b := range g.Born {
		if b.Sec <= 0 || b.Player != player {
			continue
		}
		if _, dead := diedToKiller[b.Unit.Tag]; dead {
			continue
		}
		survivors[b.Unit.Tag] = struct{}{}
	}
	return survivors
}

// Engagement returns one record per survivor per positions snapshot, in
// snapshot order and then in the snapshot's own order. A survivor therefore
// appears once per tick it was sampled in: the result is a trajectory.
func Engagement(g classify.Groups, player, killer, counter int) []model.CombatRecord {
	if len(g.Positions) == 0 {
		return nil
	}
	survivors := SurvivorSet(g, player, killer)

	var out []model.CombatRecord
	for _, snap := range g.Positions {
		for _, p := range snap.Units {
			if _, ok := survivors[p.Unit.Tag]; !ok {
				continue
			}
			out = append(out, model.CombatRecord{
				Second:  snap.Sec,
				Counter: counter,
				Unit:    p.Unit,
				X:       p.X,
				Y:       p.Y,
			})
		}
	}
	return out
}

// LastPositions reduces a trajectory to the final sample of each unit,
// ordered by the unit's first appearance.
func LastPositions(records []model.CombatRecord) []model.CombatRecord {
	idx := make(map[uint32]int)
	var out []model.CombatRecord
	for _, r := range records {
		if i, ok := idx[r.Unit.Tag]; ok {
			out[i] = r
			continue
		}
		idx[r.Unit.Tag] = len(out)
		out = append(out, r)
	}
	return out
}

// SelectWinner picks the engagement rows to write for a match: the longer
// list wins and a tie goes to player 2. Row count stands in for "had more
// units alive for longer"; it is not a verified match result.
func SelectWinner(p1, p2 []model.CombatRecord) ([]model.CombatRecord, int) {
	if len(p1) > len(p2) {
		return p1, 1
	}
	return p2, 2
}
