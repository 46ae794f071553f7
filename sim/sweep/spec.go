package sweep

import (
	"bytes"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/inference-sim/sshape/sim"
)

// Axis names the Config field a sweep varies.
type Axis string

const (
	AxisEvictionRate Axis = "eviction_rate"
	AxisWriteRate    Axis = "write_rate"
)

var validAxes = map[Axis]bool{
	AxisEvictionRate: true,
	AxisWriteRate:    true,
}

// validVersions maps accepted spec versions; empty means the current one.
var validVersions = map[string]bool{
	"":  true,
	"1": true,
}

// IsValidAxis returns true if the given name is a recognized sweep axis.
func IsValidAxis(name string) bool {
	return validAxes[Axis(name)]
}

// Spec describes a one-dimensional parameter sweep.
// Base supplies every field except the swept one, which takes Steps
// evenly spaced values from From to To inclusive.
type Spec struct {
	Version string     `yaml:"version"`
	Seed    int64      `yaml:"seed"`
	Base    sim.Config `yaml:"base"`
	Axis    Axis       `yaml:"axis"`
	From    float64    `yaml:"from"`
	To      float64    `yaml:"to"`
	Steps   int        `yaml:"steps"`
}

// LoadSpec reads and parses a YAML sweep specification file.
// Uses strict parsing: unrecognized keys (typos) are rejected.
func LoadSpec(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading sweep spec: %w", err)
	}
	var spec Spec
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&spec); err != nil {
		return nil, fmt.Errorf("parsing sweep spec: %w", err)
	}
	return &spec, nil
}

// Validate checks that all fields in the spec are valid.
func (s *Spec) Validate() error {
	if !validVersions[s.Version] {
		return fmt.Errorf("unknown version %q; valid: 1", s.Version)
	}
	if !validAxes[s.Axis] {
		return fmt.Errorf("unknown axis %q; valid: eviction_rate, write_rate", s.Axis)
	}
	if err := validateEndpoint("from", s.From); err != nil {
		return err
	}
	if err := validateEndpoint("to", s.To); err != nil {
		return err
	}
	if s.Steps < 1 {
		return fmt.Errorf("steps must be at least 1, got %d", s.Steps)
	}
	for i, v := range s.Values() {
		if err := s.PointConfig(v).Validate(); err != nil {
			return fmt.Errorf("point %d: %w", i, err)
		}
	}
	return nil
}

// Values returns the swept axis values in order.
func (s *Spec) Values() []float64 {
	if s.Steps < 1 {
		return nil
	}
	if s.Steps == 1 {
		return []float64{s.From}
	}
	values := make([]float64, s.Steps)
	step := (s.To - s.From) / float64(s.Steps-1)
	for i := range values {
		values[i] = s.From + float64(i)*step
	}
	values[len(values)-1] = s.To
	return values
}

// PointConfig returns Base with the swept field set to v.
func (s *Spec) PointConfig(v float64) sim.Config {
	cfg := s.Base
	switch s.Axis {
	case AxisEvictionRate:
		cfg.EvictionRate = v
	case AxisWriteRate:
		cfg.WriteRate = v
	}
	return cfg
}

func validateEndpoint(name string, v float64) error {
	if math.IsNaN(v) || v < 0 || v > 1 {
		return fmt.Errorf("%s must be in [0, 1], got %v", name, v)
	}
	return nil
}
