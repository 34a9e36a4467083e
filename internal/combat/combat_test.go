package combat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pable/go-sc2-metrics/internal/classify"
	"github.com/pable/go-sc2-metrics/internal/model"
)

const (
	player1 = 1
	player2 = 2
	counter = 791
)

func unit(typeName string, index uint32) model.UnitID {
	return model.NewUnitID(typeName, index, 1)
}

func born(sec int, u model.UnitID, player, x, y int) model.Event {
	return model.UnitBorn{At: model.At{Sec: sec}, Unit: u, Player: player, X: x, Y: y}
}

func died(sec int, u model.UnitID, killer, x, y int) model.Event {
	return model.UnitDied{At: model.At{Sec: sec}, Unit: u, Killer: killer, X: x, Y: y}
}

func snapshot(sec int, units ...model.UnitPosition) model.Event {
	return model.UnitPositions{At: model.At{Sec: sec}, Units: units}
}

func at(u model.UnitID, x, y int) model.UnitPosition {
	return model.UnitPosition{Unit: u, X: x, Y: y}
}

var (
	marineA1 = unit("Marine", 10)
	marineA2 = unit("Marine", 11)
	zealotB1 = unit("Zealot", 20)
	scvStart = unit("SCV", 1)
)

// ---- Survivor set ----

// TestSurvivorSet_KilledUnitRemoved: player1 born {A1,A2}, player2 kills A1 → {A2}.
func TestSurvivorSet_KilledUnitRemoved(t *testing.T) {
	g := classify.Classify([]model.Event{
		born(10, marineA1, player1, 1, 1),
		born(12, marineA2, player1, 2, 2),
		died(40, marineA1, player2, 5, 5),
	})

	got := SurvivorSet(g, player1, player2)
	assert.Equal(t, map[uint32]struct{}{marineA2.Tag: {}}, got)
}

// TestSurvivorSet_DisjointFromKillerDeaths: no survivor was killed by killer.
func TestSurvivorSet_DisjointFromKillerDeaths(t *testing.T) {
	var events []model.Event
	for i := uint32(0); i < 20; i++ {
		u := unit("Marine", 100+i)
		events = append(events, born(int(i)+1, u, player1, 0, 0))
		if i%3 == 0 {
			events = append(events, died(int(i)+50, u, player2, 0, 0))
		}
	}
	g := classify.Classify(events)

	survivors := SurvivorSet(g, player1, player2)
	for _, d := range g.Died {
		if d.Killer != player2 {
			continue
		}
		_, ok := survivors[d.Unit.Tag]
		assert.False(t, ok, "unit %s died to killer but is a survivor", d.Unit)
	}
	assert.Len(t, survivors, 13)
}

// TestSurvivorSet_OtherKillerStillSurvives: deaths credited to a third party
// or to nobody do not remove the unit.
func TestSurvivorSet_OtherKillerStillSurvives(t *testing.T) {
	g := classify.Classify([]model.Event{
		born(10, marineA1, player1, 1, 1),
		born(12, marineA2, player1, 2, 2),
		died(40, marineA1, 0, 5, 5),
		died(41, marineA2, player1, 6, 6),
	})

	got := SurvivorSet(g, player1, player2)
	assert.Len(t, got, 2)
}

// TestSurvivorSet_IgnoresStartingUnits: second 0 units are not counted.
func TestSurvivorSet_IgnoresStartingUnits(t *testing.T) {
	g := classify.Classify([]model.Event{
		born(0, scvStart, player1, 1, 1),
		born(5, marineA1, player1, 1, 1),
	})

	got := SurvivorSet(g, player1, player2)
	assert.Equal(t, map[uint32]struct{}{marineA1.Tag: {}}, got)
}

// ---- Engagement ----

// TestEngagement_SnapshotOrder: one snapshot at t=50 with A2 at (10,20) and A1 at (5,5).
func TestEngagement_SnapshotOrder(t *testing.T) {
	g := classify.Classify([]model.Event{
		born(10, marineA1, player1, 1, 1),
		born(12, marineA2, player1, 2, 2),
		died(40, marineA1, player2, 5, 5),
		snapshot(50, at(marineA2, 10, 20), at(marineA1, 5, 5)),
	})

	got := Engagement(g, player1, player2, counter)
	want := []model.CombatRecord{{Second: 50, Counter: counter, Unit: marineA2, X: 10, Y: 20}}
	assert.Equal(t, want, got)
}

// TestEngagement_NoSnapshots: survivors without snapshots produce nothing.
func TestEngagement_NoSnapshots(t *testing.T) {
	g := classify.Classify([]model.Event{
		born(10, marineA1, player1, 1, 1),
		born(12, marineA2, player1, 2, 2),
	})

	assert.Empty(t, Engagement(g, player1, player2, counter))
}

// TestEngagement_Trajectory: a survivor appears once per snapshot, in order.
func TestEngagement_Trajectory(t *testing.T) {
	g := classify.Classify([]model.Event{
		born(10, marineA1, player1, 1, 1),
		born(11, zealotB1, player2, 9, 9),
		snapshot(15, at(zealotB1, 9, 9), at(marineA1, 1, 2)),
		snapshot(30, at(marineA1, 3, 4), at(zealotB1, 8, 8)),
		snapshot(45, at(marineA1, 5, 6)),
	})

	got := Engagement(g, player1, player2, counter)
	require.Len(t, got, 3)
	assert.Equal(t, []int{15, 30, 45}, []int{got[0].Second, got[1].Second, got[2].Second})
	assert.Equal(t, 5, got[2].X)
	for _, r := range got {
		assert.Equal(t, marineA1.Tag, r.Unit.Tag)
		assert.Equal(t, counter, r.Counter)
	}
}

// TestEngagement_OpponentUnitsExcluded: snapshot entries of the other player
// never join the survivor set.
func TestEngagement_OpponentUnitsExcluded(t *testing.T) {
	g := classify.Classify([]model.Event{
		born(11, zealotB1, player2, 9, 9),
		snapshot(15, at(zealotB1, 9, 9)),
	})

	assert.Empty(t, Engagement(g, player1, player2, counter))
}

// TestLastPositions: only the final sample per unit survives the reduction.
func TestLastPositions(t *testing.T) {
	g := classify.Classify([]model.Event{
		born(10, marineA1, player1, 1, 1),
		born(12, marineA2, player1, 2, 2),
		snapshot(15, at(marineA1, 1, 2), at(marineA2, 2, 2)),
		snapshot(30, at(marineA1, 3, 4)),
	})

	got := LastPositions(Engagement(g, player1, player2, counter))
	want := []model.CombatRecord{
		{Second: 30, Counter: counter, Unit: marineA1, X: 3, Y: 4},
		{Second: 15, Counter: counter, Unit: marineA2, X: 2, Y: 2},
	}
	assert.Equal(t, want, got)
}

// ---- Initial state ----

// TestInitialState_DeathReplacesSpawn: dead units take their death row in
// their birth slot; survivors keep the sentinel.
func TestInitialState_DeathReplacesSpawn(t *testing.T) {
	g := classify.Classify([]model.Event{
		born(0, scvStart, player1, 1, 1),
		born(10, marineA1, player1, 1, 1),
		born(12, marineA2, player1, 2, 2),
		born(13, zealotB1, player2, 9, 9),
		died(40, marineA1, 0, 5, 5),
	})

	got := InitialState(g, player1, counter)
	want := []model.CombatRecord{
		{Second: 40, Counter: counter, Unit: marineA1, X: 5, Y: 5},
		{Second: Alive, Counter: counter, Unit: marineA2, X: 2, Y: 2},
	}
	assert.Equal(t, want, got)
}

// TestInitialState_FirstDeathWins: a duplicated death record does not
// produce a second row.
func TestInitialState_FirstDeathWins(t *testing.T) {
	g := classify.Classify([]model.Event{
		born(10, marineA1, player1, 1, 1),
		died(40, marineA1, player2, 5, 5),
		died(41, marineA1, player2, 7, 7),
	})

	got := InitialState(g, player1, counter)
	require.Len(t, got, 1)
	assert.Equal(t, 40, got[0].Second)
}

// TestInitialState_Bounds: output length never exceeds the player's births
// after second 0, and equals it when nothing died.
func TestInitialState_Bounds(t *testing.T) {
	g := classify.Classify([]model.Event{
		born(0, scvStart, player1, 1, 1),
		born(10, marineA1, player1, 1, 1),
		born(12, marineA2, player1, 2, 2),
	})

	got := InitialState(g, player1, counter)
	assert.Len(t, got, 2)
	for _, r := range got {
		assert.Equal(t, Alive, r.Second)
	}
	assert.Empty(t, InitialState(g, player2, counter))
}

// ---- Winner selection ----

func TestSelectWinner(t *testing.T) {
	one := []model.CombatRecord{{Second: 1}}
	two := []model.CombatRecord{{Second: 1}, {Second: 2}}
	other := []model.CombatRecord{{Second: 9}}

	got, winner := SelectWinner(two, one)
	assert.Equal(t, two, got)
	assert.Equal(t, 1, winner)

	got, winner = SelectWinner(one, two)
	assert.Equal(t, two, got)
	assert.Equal(t, 2, winner)

	// Tie goes to player 2.
	got, winner = SelectWinner(one, other)
	assert.Equal(t, other, got)
	assert.Equal(t, 2, winner)

	got, winner = SelectWinner(nil, nil)
	assert.Empty(t, got)
	assert.Equal(t, 2, winner)
}
