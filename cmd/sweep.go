package cmd

import (
	"encoding/json"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/sshape/sim/sweep"
)

var (
	sweepSpecPath string  // Optional YAML sweep spec
	sweepAxis     string  // eviction_rate or write_rate
	sweepFrom     float64 // First axis value
	sweepTo       float64 // Last axis value
	sweepSteps    int     // Number of points
	sweepOutput   string  // text or json
)

// sweepCmd recomputes across a range of one parameter
var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Recompute across a range of eviction or write rates",
	Run: func(cmd *cobra.Command, args []string) {
		spec, err := buildSweepSpec(cmd)
		if err != nil {
			logrus.Fatalf("Invalid sweep: %v", err)
		}

		report, err := sweep.Run(spec)
		if err != nil {
			logrus.Fatalf("Invalid sweep: %v", err)
		}

		switch sweepOutput {
		case "json":
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(struct {
				*sweep.Report
				Summary *sweep.ReportSummary `json:"summary"`
			}{report, sweep.Summarize(report)}); err != nil {
				logrus.Fatalf("Failed to write sweep: %v", err)
			}
		default:
			report.Print(os.Stdout)
		}
	},
}

// buildSweepSpec loads --spec when given, otherwise assembles a spec from
// the axis flags on top of the resolved base configuration. A --seed flag
// or SSHAPE_SEED overrides the spec file's seed.
func buildSweepSpec(cmd *cobra.Command) (*sweep.Spec, error) {
	settings, err := resolveSettings(cmd)
	if err != nil {
		return nil, err
	}

	if sweepSpecPath != "" {
		spec, err := sweep.LoadSpec(sweepSpecPath)
		if err != nil {
			return nil, err
		}
		v, err := newViper(cmd)
		if err != nil {
			return nil, err
		}
		if v.IsSet("seed") {
			spec.Seed = settings.Seed
		}
		return spec, nil
	}

	return &sweep.Spec{
		Seed:  settings.Seed,
		Base:  settings.Config,
		Axis:  sweep.Axis(sweepAxis),
		From:  sweepFrom,
		To:    sweepTo,
		Steps: sweepSteps,
	}, nil
}

// addSweepFlags registers the configuration and axis flags on c.
func addSweepFlags(c *cobra.Command) {
	addSimulationFlags(c)
	c.Flags().StringVar(&sweepSpecPath, "spec", "", "YAML sweep spec (overrides the axis flags)")
	c.Flags().StringVar(&sweepAxis, "axis", string(sweep.AxisEvictionRate), "Swept parameter (eviction_rate, write_rate)")
	c.Flags().Float64Var(&sweepFrom, "from", 0, "First axis value, in [0, 1]")
	c.Flags().Float64Var(&sweepTo, "to", 1, "Last axis value, in [0, 1]")
	c.Flags().IntVar(&sweepSteps, "steps", 11, "Number of evenly spaced points")
}

func init() {
	addSweepFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepOutput, "output", "text", "Output format (text, json)")
}
