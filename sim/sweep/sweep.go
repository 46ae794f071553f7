// Package sweep recomputes the occupancy engine across a range of one
// parameter and aggregates the per-point results.
package sweep

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/sshape/sim"
)

// Point is the outcome of one recompute within a sweep.
type Point struct {
	Index          int                 `json:"index"`
	Value          float64             `json:"value"`
	Config         sim.Config          `json:"config"`
	MinUtilization float64             `json:"min_utilization"`
	Summary        sim.Summary         `json:"summary"`
	Population     sim.PopulationStats `json:"population"`
}

// Report collects every point of a sweep in axis order.
type Report struct {
	Axis   Axis    `json:"axis"`
	Seed   int64   `json:"seed"`
	Points []Point `json:"points"`
}

// Run validates spec and recomputes every point on a single engine. Each
// point draws from its own PartitionedRNG subsystem, so a point's result
// does not depend on how many points precede it.
func Run(spec *Spec) (*Report, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	rng := sim.NewPartitionedRNG(sim.NewSimulationKey(spec.Seed))
	engine := sim.NewEngine(nil)
	report := &Report{Axis: spec.Axis, Seed: spec.Seed}

	for i, v := range spec.Values() {
		cfg := spec.PointConfig(v)
		engine.SetSource(rng.ForSubsystem(sim.SubsystemSweepPoint(i)))
		res := engine.Recompute(cfg)

		p := Point{
			Index:          i,
			Value:          v,
			Config:         cfg,
			MinUtilization: res.Occupancy.MinUtilization(),
			Summary:        sim.Summarize(res.Occupancy),
			Population:     res.Population,
		}
		logrus.Infof("sweep point %d: %s=%.4f min_utilization=%.4f", i, spec.Axis, v, p.MinUtilization)
		report.Points = append(report.Points, p)
	}
	return report, nil
}

// ReportSummary aggregates a Report.
type ReportSummary struct {
	Points              int     `json:"points"`
	WorstIndex          int     `json:"worst_index"`
	WorstValue          float64 `json:"worst_value"`
	WorstMinUtilization float64 `json:"worst_min_utilization"`
	MeanMinUtilization  float64 `json:"mean_min_utilization"`
}

// Summarize computes aggregate statistics from a Report.
// Safe for nil or empty reports (returns zero-value fields).
func Summarize(r *Report) *ReportSummary {
	summary := &ReportSummary{}
	if r == nil || len(r.Points) == 0 {
		return summary
	}

	summary.Points = len(r.Points)
	worst := r.Points[0]
	total := 0.0
	for _, p := range r.Points {
		total += p.MinUtilization
		if p.MinUtilization < worst.MinUtilization {
			worst = p
		}
	}
	summary.WorstIndex = worst.Index
	summary.WorstValue = worst.Value
	summary.WorstMinUtilization = worst.MinUtilization
	summary.MeanMinUtilization = total / float64(len(r.Points))
	return summary
}

// Print writes the report as a fixed-width table followed by its summary.
func (r *Report) Print(w io.Writer) {
	fmt.Fprintln(w, "=== Sweep ===")
	fmt.Fprintf(w, "%5s  %13s  %8s  %8s  %8s  %8s\n", "point", r.Axis, "min", "p10", "p50", "mean")
	for _, p := range r.Points {
		fmt.Fprintf(w, "%5d  %13.4f  %8.4f  %8.4f  %8.4f  %8.4f\n",
			p.Index, p.Value, p.MinUtilization, p.Summary.P10Util, p.Summary.P50Util, p.Summary.MeanUtil)
	}
	s := Summarize(r)
	fmt.Fprintf(w, "Worst point          : %d (%s=%.4f, min utilization %.4f)\n",
		s.WorstIndex, r.Axis, s.WorstValue, s.WorstMinUtilization)
	fmt.Fprintf(w, "Mean min utilization : %.4f\n", s.MeanMinUtilization)
}
