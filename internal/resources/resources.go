// Package resources builds per-player economy snapshots annotated with the
// upgrades completed so far.
package resources

import (
	"github.com/pable/go-sc2-metrics/internal/classify"
	"github.com/pable/go-sc2-metrics/internal/model"
)

// BucketSeconds is the width of the upgrade time buckets.
const BucketSeconds = 10

// UpgradeBucket is the cumulative upgrade list as of a bucket boundary.
type UpgradeBucket struct {
	Second   int
	Upgrades string // every upgrade name so far, each followed by a space
}

// Build returns one row per PlayerStats sample of the player after second 0.
// A row whose second equals an upgrade bucket boundary carries that bucket's
// cumulative upgrade names.
func Build(g classify.Groups, player, counter int) []model.ResourceRecord {
	var out []model.ResourceRecord
	for _, s := range g.Stats {
		if s.Player != player || s.Sec <= 0 {
			continue
		}
		out = append(out, model.ResourceRecord{
			Second:   s.Sec,
			Counter:  counter,
			Minerals: s.Minerals,
			Vespene:  s.Vespene,
			Workers:  s.Workers,
		})
	}

	annotations := make(map[int]string)
	for _, b := range Buckets(g, player) {
		if _, seen := annotations[b.Second]; !seen {
			annotations[b.Second] = b.Upgrades
		}
	}
	for i := range out {
		if up, ok := annotations[out[i].Second]; ok {
			out[i].Upgrades = up
		}
	}
	return out
}

// Buckets returns the player's upgrade buckets. Each completed upgrade is
// placed in the next multiple of BucketSeconds and a bucket equal to the one
// just before it is dropped, so only the first cumulative string of a run of
// same-bucket upgrades is kept. Dedup relies on the upgrades arriving in time
// order; non-adjacent repeats of a bucket are not merged.
func Buckets(g classify.Groups, player int) []UpgradeBucket {
	var (
		out      []UpgradeBucket
		upgrades string
		prev     = -1
	)
	for _, u := range g.Upgrades {
		if u.Player != player || u.Sec <= 0 {
			continue
		}
		upgrades += u.Name + " "
		bucket := ceilBucket(u.Sec)
		if bucket != prev {
			out = append(out, UpgradeBucket{Second: bucket, Upgrades: upgrades})
		}
		prev = bucket
	}
	return out
}

func ceilBucket(sec int) int {
	return (sec + BucketSeconds - 1) / BucketSeconds * BucketSeconds
}
