// Package sim provides the block occupancy simulation engine for sshape.
//
// # Reading Guide
//
//   - config.go: Config, its validated setters and derived counts
//   - population.go: the two eviction-priority generators (uniform shuffle, recency process)
//   - engine.go: Buffers, Recompute and the Engine wrapper
//   - metrics.go: Summary statistics and the text report
//   - rng.go: PartitionedRNG for reproducible, isolated random streams
//
// # Pipeline
//
// A caller mutates a Config, calls Recompute and renders the returned
// Occupancy. The engine never validates, never blocks and never shares
// state; sub-packages build on it:
//   - sim/sweep/: sweeps one parameter across a range and reports each point
//   - sim/plot/: renders an Occupancy as an S-curve image
package sim
