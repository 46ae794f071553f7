// Summarizes an occupancy distribution: fill ratios, spread and extremes.

package sim

import (
	"fmt"
	"io"

	"gonum.org/v1/gonum/stat"
)

// Summary aggregates statistics about an Occupancy for reporting.
// Utilization values are fractions of BlockSize in [0,1].
type Summary struct {
	Blocks         int     `json:"blocks"`
	Resident       int     `json:"resident"`
	Evicted        int     `json:"evicted"`
	MinUtilization float64 `json:"min_utilization"`
	MaxUtilization float64 `json:"max_utilization"`
	MeanUtil       float64 `json:"mean_utilization"`
	StdDevUtil     float64 `json:"stddev_utilization"`
	P10Util        float64 `json:"p10_utilization"`
	P50Util        float64 `json:"p50_utilization"`
	P90Util        float64 `json:"p90_utilization"`
	EmptyBlocks    int     `json:"empty_blocks"`
	FullBlocks     int     `json:"full_blocks"`
}

// Summarize computes a Summary. occ.Blocks must be sorted ascending.
func Summarize(occ Occupancy) Summary {
	s := Summary{Blocks: len(occ.Blocks), Evicted: occ.Evicted}
	if len(occ.Blocks) == 0 || occ.BlockSize == 0 {
		return s
	}

	utils := make([]float64, len(occ.Blocks))
	for i, n := range occ.Blocks {
		utils[i] = float64(n) / float64(occ.BlockSize)
		s.Resident += n
		switch n {
		case 0:
			s.EmptyBlocks++
		case occ.BlockSize:
			s.FullBlocks++
		}
	}

	s.MinUtilization = utils[0]
	s.MaxUtilization = utils[len(utils)-1]
	s.MeanUtil, s.StdDevUtil = stat.MeanStdDev(utils, nil)
	if len(utils) < 2 {
		s.StdDevUtil = 0
	}
	s.P10Util = stat.Quantile(0.10, stat.Empirical, utils, nil)
	s.P50Util = stat.Quantile(0.50, stat.Empirical, utils, nil)
	s.P90Util = stat.Quantile(0.90, stat.Empirical, utils, nil)
	return s
}

// Print writes a human-readable report of r to w.
func (r Result) Print(w io.Writer) {
	s := Summarize(r.Occupancy)
	fmt.Fprintln(w, "=== Occupancy ===")
	fmt.Fprintf(w, "Model                : %s\n", r.Population.Model)
	fmt.Fprintf(w, "Block Size           : %d\n", r.Config.BlockSize)
	fmt.Fprintf(w, "Block Count          : %d\n", r.Config.BlockCount)
	fmt.Fprintf(w, "Eviction Rate        : %.0f%%\n", r.Config.EvictionRate*100)
	fmt.Fprintf(w, "Write Rate           : %.0f%%\n", r.Config.WriteRate*100)
	fmt.Fprintf(w, "Evicted Items        : %d of %d\n", s.Evicted, r.Config.ItemCount())
	if r.Population.Model == ModelRecency {
		fmt.Fprintf(w, "Ticks / Touches      : %d / %d\n", r.Population.Ticks, r.Population.Touches)
	}
	fmt.Fprintf(w, "Min Utilization      : %.4f\n", s.MinUtilization)
	fmt.Fprintf(w, "Mean Utilization     : %.4f (stddev %.4f)\n", s.MeanUtil, s.StdDevUtil)
	fmt.Fprintf(w, "P10 / P50 / P90      : %.4f / %.4f / %.4f\n", s.P10Util, s.P50Util, s.P90Util)
	fmt.Fprintf(w, "Max Utilization      : %.4f\n", s.MaxUtilization)
	fmt.Fprintf(w, "Empty / Full Blocks  : %d / %d\n", s.EmptyBlocks, s.FullBlocks)
}
