package sim

import (
	"slices"

	"github.com/sirupsen/logrus"
)

// Occupancy is the per-block resident item count after eviction, sorted
// ascending so that index 0 is the worst-utilized block.
type Occupancy struct {
	Blocks    []int `json:"blocks"`
	BlockSize int   `json:"block_size"`
	Evicted   int   `json:"evicted"`
}

// MinUtilization returns Blocks[0] / BlockSize.
func (o Occupancy) MinUtilization() float64 {
	if len(o.Blocks) == 0 || o.BlockSize == 0 {
		return 0
	}
	return float64(o.Blocks[0]) / float64(o.BlockSize)
}

// Utilization returns the fill ratio of the block at rank i.
func (o Occupancy) Utilization(i int) float64 {
	return float64(o.Blocks[i]) / float64(o.BlockSize)
}

// Resident returns the number of items still resident across all blocks.
func (o Occupancy) Resident() int {
	total := 0
	for _, n := range o.Blocks {
		total += n
	}
	return total
}

// Clone returns a copy whose Blocks do not alias engine buffers.
func (o Occupancy) Clone() Occupancy {
	o.Blocks = slices.Clone(o.Blocks)
	return o
}

// Result is the output of one recompute.
type Result struct {
	Config     Config          `json:"config"`
	Occupancy  Occupancy       `json:"occupancy"`
	Population PopulationStats `json:"population"`
}

// Buffers holds the scratch space of one engine. Slices are regrown only
// when a recompute needs more capacity than they hold, otherwise they are
// resliced and overwritten.
type Buffers struct {
	items   []int
	records []accessRecord
	blocks  []int
}

func (b *Buffers) resize(cfg Config) {
	itemCount := cfg.ItemCount()
	b.items = grow(b.items, itemCount)
	if cfg.Model() == ModelRecency {
		b.records = grow(b.records, itemCount)
	}
	b.blocks = grow(b.blocks, cfg.BlockCount)
}

func grow[T any](s []T, n int) []T {
	if cap(s) < n {
		return make([]T, n)
	}
	return s[:n]
}

// Recompute rebuilds the item population for cfg, evicts the first
// EvictedCount items of its eviction-priority order and returns the sorted
// occupancy. cfg must be valid. The returned Occupancy.Blocks aliases buf
// and is overwritten by the next Recompute on the same buffers.
func Recompute(buf *Buffers, cfg Config, rng Source) Result {
	buf.resize(cfg)

	var stats PopulationStats
	switch cfg.Model() {
	case ModelUniform:
		stats = fillUniform(buf.items, cfg.BlockSize, cfg.BlockCount, rng)
	default:
		stats = fillRecency(buf.items, buf.records, cfg.BlockSize, cfg.WriteRate, rng)
	}

	evicted := cfg.EvictedCount()
	blocks := buf.blocks
	for i := range blocks {
		blocks[i] = cfg.BlockSize
	}
	for _, b := range buf.items[:evicted] {
		blocks[b]--
	}
	slices.Sort(blocks)

	logrus.Debugf("recompute: model=%s items=%d evicted=%d ticks=%d touches=%d min=%d",
		stats.Model, cfg.ItemCount(), evicted, stats.Ticks, stats.Touches, blocks[0])

	return Result{
		Config:     cfg,
		Occupancy:  Occupancy{Blocks: blocks, BlockSize: cfg.BlockSize, Evicted: evicted},
		Population: stats,
	}
}

// Engine pairs a random source with the buffers it recomputes into.
// Not safe for concurrent use; callers serialize Recompute.
type Engine struct {
	rng Source
	buf Buffers
}

// NewEngine returns an engine drawing from rng.
func NewEngine(rng Source) *Engine {
	return &Engine{rng: rng}
}

// Recompute runs Recompute on the engine's own buffers.
func (e *Engine) Recompute(cfg Config) Result {
	return Recompute(&e.buf, cfg, e.rng)
}

// SetSource replaces the random source used by later recomputes.
func (e *Engine) SetSource(rng Source) {
	e.rng = rng
}
