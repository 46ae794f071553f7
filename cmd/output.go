package cmd

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/inference-sim/sshape/sim"
)

// resultJSON is the JSON shape shared by `run --output json` and the
// HTTP endpoint.
type resultJSON struct {
	RunID          string              `json:"run_id,omitempty"`
	Config         sim.Config          `json:"config"`
	Blocks         []int               `json:"blocks"`
	MinUtilization float64             `json:"min_utilization"`
	Summary        sim.Summary         `json:"summary"`
	Population     sim.PopulationStats `json:"population"`
}

func newResultJSON(runID string, res sim.Result) resultJSON {
	return resultJSON{
		RunID:          runID,
		Config:         res.Config,
		Blocks:         res.Occupancy.Blocks,
		MinUtilization: res.Occupancy.MinUtilization(),
		Summary:        sim.Summarize(res.Occupancy),
		Population:     res.Population,
	}
}

// writeResult renders res to w in the named format.
func writeResult(w io.Writer, res sim.Result, format string) error {
	switch format {
	case "", "text":
		res.Print(w)
		return nil
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(newResultJSON("", res))
	case "csv":
		return writeCSV(w, res.Occupancy)
	default:
		return fmt.Errorf("unknown output format %q; valid: text, json, csv", format)
	}
}

// writeCSV emits one row per block in sorted order.
func writeCSV(w io.Writer, occ sim.Occupancy) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"rank", "occupancy", "utilization"}); err != nil {
		return err
	}
	for i, n := range occ.Blocks {
		row := []string{
			strconv.Itoa(i),
			strconv.Itoa(n),
			strconv.FormatFloat(occ.Utilization(i), 'f', 6, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
