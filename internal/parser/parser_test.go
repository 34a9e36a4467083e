package parser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/icza/s2prot"
	"github.com/icza/s2prot/rep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pable/go-sc2-metrics/internal/model"
)

// makeEvt builds a tracker event of the given kind at the given game loop.
func makeEvt(id int, loop int64, fields s2prot.Struct) s2prot.Event {
	fields["loop"] = loop
	return s2prot.Event{Struct: fields, EvtType: &s2prot.EvtType{ID: id}}
}

func bornEvt(loop int64, typeName string, index, recycle, player, x, y int64) s2prot.Event {
	return makeEvt(rep.TrackerEvtIDUnitBorn, loop, s2prot.Struct{
		"unitTagIndex":    index,
		"unitTagRecycle":  recycle,
		"unitTypeName":    typeName,
		"controlPlayerId": player,
		"x":               x,
		"y":               y,
	})
}

func TestDecodeTracker_UnitLifecycle(t *testing.T) {
	evts := []s2prot.Event{
		bornEvt(320, "Marine", 10, 1, 1, 40, 50),
		makeEvt(trackerEvtIDUnitDied, 800, s2prot.Struct{
			"unitTagIndex":   int64(10),
			"unitTagRecycle": int64(1),
			"killerPlayerId": int64(2),
			"x":              int64(44),
			"y":              int64(55),
		}),
	}

	got := DecodeTracker(evts)
	require.Len(t, got, 2)

	b, ok := got[0].(model.UnitBorn)
	require.True(t, ok)
	assert.Equal(t, 20, b.Second())
	assert.Equal(t, model.NewUnitID("Marine", 10, 1), b.Unit)
	assert.Equal(t, 1, b.Player)
	assert.Equal(t, [2]int{40, 50}, [2]int{b.X, b.Y})

	d, ok := got[1].(model.UnitDied)
	require.True(t, ok)
	assert.Equal(t, 50, d.Second())
	assert.Equal(t, b.Unit, d.Unit)
	assert.Equal(t, 2, d.Killer)
}

// TestDecodeTracker_DiedWithoutKiller: a missing killerPlayerId decodes as 0.
func TestDecodeTracker_DiedWithoutKiller(t *testing.T) {
	evts := []s2prot.Event{
		bornEvt(16, "Marine", 10, 1, 1, 0, 0),
		makeEvt(trackerEvtIDUnitDied, 32, s2prot.Struct{
			"unitTagIndex":   int64(10),
			"unitTagRecycle": int64(1),
			"killerPlayerId": nil,
		}),
	}

	got := DecodeTracker(evts)
	require.Len(t, got, 2)
	assert.Equal(t, 0, got[1].(model.UnitDied).Killer)
}

// TestDecodeTracker_Positions: delta-encoded triples resolve through the unit
// index; unknown indexes are skipped.
func TestDecodeTracker_Positions(t *testing.T) {
	evts := []s2prot.Event{
		bornEvt(16, "Marine", 10, 1, 1, 0, 0),
		bornEvt(16, "Zealot", 12, 1, 2, 0, 0),
		makeEvt(trackerEvtIDUnitPositions, 960, s2prot.Struct{
			"firstUnitIndex": int64(10),
			"items": []interface{}{
				int64(0), int64(10), int64(20), // index 10
				int64(1), int64(1), int64(1),   // index 11, unknown
				int64(1), int64(30), int64(40), // index 12
			},
		}),
	}

	got := DecodeTracker(evts)
	require.Len(t, got, 3)
	snap, ok := got[2].(model.UnitPositions)
	require.True(t, ok)
	assert.Equal(t, 60, snap.Second())
	want := []model.UnitPosition{
		{Unit: model.NewUnitID("Marine", 10, 1), X: 40, Y: 80},
		{Unit: model.NewUnitID("Zealot", 12, 1), X: 120, Y: 160},
	}
	assert.Equal(t, want, snap.Units)
}

// TestDecodeTracker_TypeChange: morphs rename the unit for later snapshots
// while the tag stays the join key.
func TestDecodeTracker_TypeChange(t *testing.T) {
	evts := []s2prot.Event{
		bornEvt(16, "SiegeTank", 10, 1, 1, 0, 0),
		makeEvt(trackerEvtIDUnitTypeChange, 32, s2prot.Struct{
			"unitTagIndex":   int64(10),
			"unitTagRecycle": int64(1),
			"unitTypeName":   "SiegeTankSieged",
		}),
		makeEvt(trackerEvtIDUnitPositions, 48, s2prot.Struct{
			"firstUnitIndex": int64(10),
			"items":          []interface{}{int64(0), int64(1), int64(2)},
		}),
	}

	got := DecodeTracker(evts)
	require.Len(t, got, 2)
	born := got[0].(model.UnitBorn)
	snap := got[1].(model.UnitPositions)
	require.Len(t, snap.Units, 1)
	assert.Equal(t, "SiegeTankSieged", snap.Units[0].Unit.Type)
	assert.Equal(t, born.Unit.Tag, snap.Units[0].Unit.Tag)
}

func TestDecodeTracker_StatsAndUpgrades(t *testing.T) {
	evts := []s2prot.Event{
		makeEvt(rep.TrackerEvtIDPlayerStats, 160, s2prot.Struct{
			"playerId": int64(2),
			"stats": s2prot.Struct{
				"scoreValueMineralsCurrent":    int64(150),
				"scoreValueVespeneCurrent":     int64(25),
				"scoreValueWorkersActiveCount": int64(14),
			},
		}),
		makeEvt(trackerEvtIDUpgrade, 3200, s2prot.Struct{
			"playerId":        int64(1),
			"upgradeTypeName": "Stimpack",
			"count":           int64(1),
		}),
		makeEvt(rep.TrackerEvtIDPlayerSetup, 0, s2prot.Struct{"playerId": int64(1)}),
	}

	got := DecodeTracker(evts)
	require.Len(t, got, 2)
	assert.Equal(t, model.PlayerStats{At: model.At{Sec: 10}, Player: 2, Minerals: 150, Vespene: 25, Workers: 14}, got[0])
	assert.Equal(t, model.UpgradeComplete{At: model.At{Sec: 200}, Player: 1, Name: "Stimpack"}, got[1])
}

func TestParseReplay_NotAReplay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.SC2Replay")
	require.NoError(t, os.WriteFile(path, []byte("not an mpq archive"), 0o644))

	_, err := ParseReplay(path)
	assert.Error(t, err)
}

func TestParseReplay_Missing(t *testing.T) {
	_, err := ParseReplay(filepath.Join(t.TempDir(), "missing.SC2Replay"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
