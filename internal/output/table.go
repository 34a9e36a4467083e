// Package output appends extracted records to headerless CSV tables.
package output

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pable/go-sc2-metrics/internal/model"
)

// EndMarker closes the initial-state section of a combat block.
const EndMarker = "End"

// Table file names, one per analysis pass.
const (
	CombatFile   = "ArmiesRepository.csv"
	ActionsFile  = "CommandRepository.csv"
	ResourceFile = "ResourceRepository.csv"
)

// Block buffers the rows of one match for one table. Nothing reaches the
// file until the block is appended as a whole.
type Block struct {
	buf  bytes.Buffer
	w    *csv.Writer
	rows int
}

// NewBlock starts a block with the match's file-name marker line.
func NewBlock(marker string) *Block {
	b := &Block{}
	b.w = csv.NewWriter(&b.buf)
	b.Marker(marker)
	return b
}

// Marker writes a delimiter line that is not a data row. Markers are written
// verbatim, without CSV quoting, so a file name is its own line as-is.
func (b *Block) Marker(s string) {
	b.w.Flush()
	b.buf.WriteString(s)
	b.buf.WriteByte('\n')
}

// Rows returns the number of data rows written so far.
func (b *Block) Rows() int { return b.rows }

// Combat writes combat rows: second, counter, unit key, unit type, x, y.
func (b *Block) Combat(recs []model.CombatRecord) {
	for _, r := range recs {
		b.row(itoa(r.Second), itoa(r.Counter), r.Unit.Key(), r.Unit.Type, itoa(r.X), itoa(r.Y))
	}
}

// Actions writes action rows: second, counter, label, category.
func (b *Block) Actions(recs []model.ActionRecord) {
	for _, r := range recs {
		b.row(itoa(r.Second), itoa(r.Counter), r.Label, r.Category.String())
	}
}

// Resources writes resource rows: second, counter, minerals, vespene, workers
// and, when present, the upgrade annotation as a sixth column.
func (b *Block) Resources(recs []model.ResourceRecord) {
	for _, r := range recs {
		fields := []string{itoa(r.Second), itoa(r.Counter), itoa(r.Minerals), itoa(r.Vespene), itoa(r.Workers)}
		if r.Upgrades != "" {
			fields = append(fields, r.Upgrades)
		}
		b.row(fields...)
	}
}

func (b *Block) row(fields ...string) {
	_ = b.w.Write(fields)
	b.rows++
}

// Bytes flushes the block and returns its encoded content.
func (b *Block) Bytes() ([]byte, error) {
	b.w.Flush()
	if err := b.w.Error(); err != nil {
		return nil, fmt.Errorf("encode block: %w", err)
	}
	return b.buf.Bytes(), nil
}

// Table is an append-only CSV file.
type Table struct {
	f *os.File
}

// OpenTable opens (or creates) the table at path for appending.
func OpenTable(path string) (*Table, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("open table: %w", err)
	}
	return &Table{f: f}, nil
}

// Label writes a free-standing label line, e.g. a league name heading a run.
func (t *Table) Label(s string) error {
	b := &Block{}
	b.w = csv.NewWriter(&b.buf)
	b.Marker(s)
	return t.Append(b)
}

// Append writes the whole block in a single write call.
func (t *Table) Append(b *Block) error {
	data, err := b.Bytes()
	if err != nil {
		return err
	}
	if _, err := t.f.Write(data); err != nil {
		return fmt.Errorf("append %s: %w", filepath.Base(t.f.Name()), err)
	}
	return nil
}

// Size returns the current length of the table file.
func (t *Table) Size() (int64, error) {
	fi, err := t.f.Stat()
	if err != nil {
		return 0, fmt.Errorf("stat %s: %w", filepath.Base(t.f.Name()), err)
	}
	return fi.Size(), nil
}

// Truncate cuts the table back to size, discarding anything appended after it.
func (t *Table) Truncate(size int64) error {
	if err := t.f.Truncate(size); err != nil {
		return fmt.Errorf("truncate %s: %w", filepath.Base(t.f.Name()), err)
	}
	return nil
}

// Close closes the underlying file.
func (t *Table) Close() error {
	return t.f.Close()
}

func itoa(n int) string { return strconv.Itoa(n) }
