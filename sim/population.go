package sim

import (
	"cmp"
	"slices"
)

// Source supplies the uniform random draws the population generators need.
// *math/rand.Rand satisfies it.
type Source interface {
	// Intn returns a uniform integer in [0, n).
	Intn(n int) int
	// Float64 returns a uniform real in [0, 1).
	Float64() float64
}

// accessRecord is one item of the recency model: the block it was written
// to and the tick it was last written or touched.
type accessRecord struct {
	Block int
	Stamp int64
}

// compareRecords orders by Stamp, then Block.
func compareRecords(a, b accessRecord) int {
	if c := cmp.Compare(a.Stamp, b.Stamp); c != 0 {
		return c
	}
	return cmp.Compare(a.Block, b.Block)
}

// PopulationStats describes how the eviction-priority order was produced.
type PopulationStats struct {
	Model   PopulationModel `json:"model"`
	Ticks   int64           `json:"ticks"`   // recency model only
	Writes  int             `json:"writes"`  // items placed
	Touches int64           `json:"touches"` // recency refreshes, recency model only
}

// fillUniform writes the eviction-priority order of the uniform model into
// items: every block id appears blockSize times, then the slice is shuffled
// with Fisher-Yates.
func fillUniform(items []int, blockSize, blockCount int, rng Source) PopulationStats {
	pos := 0
	for b := 0; b < blockCount; b++ {
		for j := 0; j < blockSize; j++ {
			items[pos] = b
			pos++
		}
	}

	for i := len(items); i > 1; i-- {
		j := rng.Intn(i)
		items[i-1], items[j] = items[j], items[i-1]
	}

	return PopulationStats{Model: ModelUniform, Writes: len(items)}
}

// fillRecency runs the write/touch process until len(records) items have
// been written, sorts the records by recency and copies the resulting block
// order into items. Blocks fill sequentially; a touch refreshes the stamp
// of a uniformly chosen item that has already been written.
func fillRecency(items []int, records []accessRecord, blockSize int, writeRate float64, rng Source) PopulationStats {
	itemCount := len(records)
	stats := PopulationStats{Model: ModelRecency}

	currentBlock := 0
	remaining := blockSize
	written := 0
	var now int64

	for written < itemCount {
		// The draw happens on every tick so the stream stays aligned with
		// the tick counter; the first tick is always a write.
		isWrite := rng.Float64() < writeRate || written == 0
		if isWrite {
			records[written] = accessRecord{Block: currentBlock, Stamp: now}
			written++
			remaining--
			if remaining == 0 {
				currentBlock++
				remaining = blockSize
			}
		} else {
			records[rng.Intn(written)].Stamp = now
			stats.Touches++
		}
		now++
	}

	stats.Ticks = now
	stats.Writes = written

	slices.SortFunc(records, compareRecords)
	for i, r := range records {
		items[i] = r.Block
	}
	return stats
}
