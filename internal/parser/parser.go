package parser

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/icza/s2prot"
	"github.com/icza/s2prot/rep"

	"github.com/pable/go-sc2-metrics/internal/model"
)

// ErrNoTrackerEvents is returned for replays recorded before tracker events existed.
var ErrNoTrackerEvents = errors.New("replay has no tracker events")

// loopsPerSecond is the number of game loops in one game second.
const loopsPerSecond = 16

// positionScale converts UnitPositions items to map coordinates.
const positionScale = 4

// Tracker event IDs that s2prot's rep package does not export.
const (
	trackerEvtIDUnitDied       = 2
	trackerEvtIDUnitTypeChange = 4
	trackerEvtIDUpgrade        = 5
	trackerEvtIDUnitInit       = 6
	trackerEvtIDUnitPositions  = 8
)

// Decoder reads replay files from disk.
type Decoder struct{}

// Hash returns the content hash of the replay at path.
func (Decoder) Hash(path string) (string, error) { return HashFile(path) }

// Decode parses the replay at path.
func (Decoder) Decode(path string) (*model.Replay, error) { return ParseReplay(path) }

// HashFile returns the hex sha256 of the file, used as the replay's idempotency key.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open replay: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash replay: %w", err)
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

// ParseReplay decodes the replay at path into a typed event stream.
func ParseReplay(path string) (*model.Replay, error) {
	hash, err := HashFile(path)
	if err != nil {
		return nil, err
	}

	// Game and message events are not needed, only tracker events.
	r, err := rep.NewFromFileEvts(path, false, false, true)
	if err != nil {
		return nil, fmt.Errorf("decode replay: %w", err)
	}
	defer r.Close()

	if r.TrackerEvts == nil || len(r.TrackerEvts.Evts) == 0 {
		return nil, ErrNoTrackerEvents
	}

	return &model.Replay{
		Info: model.ReplayInfo{
			Path:    path,
			Name:    filepath.Base(path),
			Hash:    hash,
			MapName: r.Details.Title(),
		},
		Events: DecodeTracker(r.TrackerEvts.Evts),
	}, nil
}

// DecodeTracker converts raw tracker events to model events, in stream order.
// Tracker event kinds without a model counterpart are consumed only to keep
// the unit index current and are otherwise dropped.
func DecodeTracker(evts []s2prot.Event) []model.Event {
	d := &trackerDecoder{units: make(map[uint32]model.UnitID)}
	out := make([]model.Event, 0, len(evts))
	for i := range evts {
		if ev, ok := d.decode(&evts[i]); ok {
			out = append(out, ev)
		}
	}
	return out
}

// trackerDecoder tracks the live unit behind each unit tag index, which is
// how UnitPositions entries refer to units.
type trackerDecoder struct {
	units map[uint32]model.UnitID
}

func (d *trackerDecoder) decode(e *s2prot.Event) (model.Event, bool) {
	at := model.At{Sec: int(e.Loop() / loopsPerSecond)}

	switch e.ID {
	case rep.TrackerEvtIDUnitBorn:
		u := d.register(e)
		return model.UnitBorn{
			At:     at,
			Unit:   u,
			Player: int(e.Int("controlPlayerId")),
			X:      int(e.Int("x")),
			Y:      int(e.Int("y")),
		}, true

	case trackerEvtIDUnitInit:
		u := d.register(e)
		return model.UnitInit{
			At:     at,
			Unit:   u,
			Player: int(e.Int("controlPlayerId")),
			X:      int(e.Int("x")),
			Y:      int(e.Int("y")),
		}, true

	case trackerEvtIDUnitTypeChange:
		idx := uint32(e.Int("unitTagIndex"))
		if u, ok := d.units[idx]; ok {
			u.Type = e.Stringv("unitTypeName")
			d.units[idx] = u
		}
		return nil, false

	case trackerEvtIDUnitDied:
		idx := uint32(e.Int("unitTagIndex"))
		u, ok := d.units[idx]
		if !ok {
			u = model.NewUnitID("", idx, uint32(e.Int("unitTagRecycle")))
		}
		return model.UnitDied{
			At:     at,
			Unit:   u,
			Killer: int(e.Int("killerPlayerId")),
			X:      int(e.Int("x")),
			Y:      int(e.Int("y")),
		}, true

	case trackerEvtIDUnitPositions:
		return model.UnitPositions{At: at, Units: d.positions(e)}, true

	case rep.TrackerEvtIDPlayerStats:
		stats := e.Structv("stats")
		return model.PlayerStats{
			At:       at,
			Player:   int(e.Int("playerId")),
			Minerals: int(stats.Int("scoreValueMineralsCurrent")),
			Vespene:  int(stats.Int("scoreValueVespeneCurrent")),
			Workers:  int(stats.Int("scoreValueWorkersActiveCount")),
		}, true

	case trackerEvtIDUpgrade:
		return model.UpgradeComplete{
			At:     at,
			Player: int(e.Int("playerId")),
			Name:   e.Stringv("upgradeTypeName"),
		}, true
	}
	return nil, false
}

func (d *trackerDecoder) register(e *s2prot.Event) model.UnitID {
	idx := uint32(e.Int("unitTagIndex"))
	u := model.NewUnitID(e.Stringv("unitTypeName"), idx, uint32(e.Int("unitTagRecycle")))
	d.units[idx] = u
	return u
}

// positions decodes the delta-encoded (index, x, y) triples of a UnitPositions
// event. Entries whose index was never registered are skipped.
func (d *trackerDecoder) positions(e *s2prot.Event) []model.UnitPosition {
	items := e.Array("items")
	idx := e.Int("firstUnitIndex")

	var out []model.UnitPosition
	for i := 0; i+2 < len(items); i += 3 {
		delta, _ := items[i].(int64)
		x, _ := items[i+1].(int64)
		y, _ := items[i+2].(int64)
		idx += delta
		u, ok := d.units[uint32(idx)]
		if !ok {
			continue
		}
		out = append(out, model.UnitPosition{Unit: u, X: int(x * positionScale), Y: int(y * positionScale)})
	}
	return out
}
