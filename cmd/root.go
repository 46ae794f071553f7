package cmd

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/sshape/sim"
	"github.com/inference-sim/sshape/sim/plot"
)

var (
	// CLI flags shared by run, sweep and serve
	seed         int64   // Seed for population generation
	logLevel     string  // Log verbosity level
	configPath   string  // Optional YAML scenario file
	blockSize    int     // Capacity of each block, in items
	blockCount   int     // Number of blocks
	evictionRate float64 // Fraction of items evicted
	writeRate    float64 // Probability a tick is a write; 0 selects the uniform model

	// CLI flags for run output
	outputFormat string // text, json or csv
	plotPath     string // Optional S-curve image path
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "sshape",
	Short: "Simulates how unevenly fixed-size blocks stay filled after eviction",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
	},
}

// runCmd recomputes the occupancy distribution once and prints it
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Recompute the occupancy distribution for one configuration",
	Run: func(cmd *cobra.Command, args []string) {
		settings, err := resolveSettings(cmd)
		if err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}
		cfg := settings.Config
		if err := cfg.ValidateInteractive(); err != nil {
			logrus.Warnf("Configuration outside the interactive range, recompute may be slow: %v", err)
		}

		if plotPath != "" {
			if err := plot.CheckPath(plotPath); err != nil {
				logrus.Fatalf("Invalid --plot: %v", err)
			}
		}

		logrus.Infof("Starting recompute: model=%s block_size=%d block_count=%d eviction=%.2f write=%.2f seed=%d",
			cfg.Model(), cfg.BlockSize, cfg.BlockCount, cfg.EvictionRate, cfg.WriteRate, settings.Seed)

		startTime := time.Now()
		rng := sim.NewPartitionedRNG(sim.NewSimulationKey(settings.Seed))
		engine := sim.NewEngine(rng.ForSubsystem(sim.SubsystemPopulation))
		res := engine.Recompute(cfg)
		logrus.Infof("Recompute finished in %v", time.Since(startTime))

		if err := writeResult(os.Stdout, res, outputFormat); err != nil {
			logrus.Fatalf("Failed to write result: %v", err)
		}
		if plotPath != "" {
			if err := plot.Save(res.Occupancy, plot.Title(res), plotPath); err != nil {
				logrus.Fatalf("Failed to write plot: %v", err)
			}
			logrus.Infof("S-curve written to %s", plotPath)
		}
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// addSimulationFlags registers the configuration flags on c.
func addSimulationFlags(c *cobra.Command) {
	defaults := sim.DefaultConfig()
	c.Flags().Int64Var(&seed, "seed", 42, "Seed for population generation")
	c.Flags().StringVar(&configPath, "config", "", "YAML scenario file (block_size, block_count, eviction_rate, write_rate, seed)")
	c.Flags().IntVar(&blockSize, "block-size", defaults.BlockSize, "Capacity of each block, in items")
	c.Flags().IntVar(&blockCount, "block-count", defaults.BlockCount, "Number of blocks")
	c.Flags().Float64Var(&evictionRate, "eviction-rate", defaults.EvictionRate, "Fraction of the item population evicted, in [0, 1]")
	c.Flags().Float64Var(&writeRate, "write-rate", defaults.WriteRate, "Probability a tick writes a new item rather than touching one, in [0, 1]; 0 selects the uniform model")
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")

	addSimulationFlags(runCmd)
	runCmd.Flags().StringVar(&outputFormat, "output", "text", "Output format (text, json, csv)")
	runCmd.Flags().StringVar(&plotPath, "plot", "", "Write the S-curve to this file; the extension picks the format (png, svg, pdf)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(serveCmd)
}
