package sim

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidConfig is wrapped by every configuration validation error.
var ErrInvalidConfig = errors.New("invalid config")

// Interactive parameter ranges exposed to callers that drive recomputes
// from user input (sliders, query strings).
const (
	MaxInteractiveBlockSize  = 2000
	MaxInteractiveBlockCount = 2000

	// MinInteractiveWriteRate is the smallest nonzero write rate (1%). The
	// recency model runs about ItemCount/WriteRate ticks.
	MinInteractiveWriteRate = 0.01
)

// PopulationModel names the algorithm used to order the item population.
type PopulationModel string

const (
	// ModelUniform shuffles the population uniformly at random (write rate 0).
	ModelUniform PopulationModel = "uniform"
	// ModelRecency orders the population by a write/touch process (write rate > 0).
	ModelRecency PopulationModel = "recency"
)

// Config holds the four simulation parameters.
// Mutate it only through the setters or validate it with Validate before
// handing it to Recompute; the engine assumes valid input.
type Config struct {
	BlockSize    int     `json:"block_size" yaml:"block_size"`       // capacity of each block, in items (≥ 1)
	BlockCount   int     `json:"block_count" yaml:"block_count"`     // number of blocks (≥ 1)
	EvictionRate float64 `json:"eviction_rate" yaml:"eviction_rate"` // fraction of items evicted, [0,1]
	WriteRate    float64 `json:"write_rate" yaml:"write_rate"`       // probability a tick is a write, [0,1]; 0 = uniform model
}

// DefaultConfig returns the configuration the CLI starts from.
func DefaultConfig() Config {
	return Config{
		BlockSize:    100,
		BlockCount:   1000,
		EvictionRate: 0.5,
		WriteRate:    0,
	}
}

// NewConfig builds a Config and validates it.
func NewConfig(blockSize, blockCount int, evictionRate, writeRate float64) (Config, error) {
	cfg := Config{
		BlockSize:    blockSize,
		BlockCount:   blockCount,
		EvictionRate: evictionRate,
		WriteRate:    writeRate,
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ItemCount is the total population size, BlockSize * BlockCount.
func (c Config) ItemCount() int {
	return c.BlockSize * c.BlockCount
}

// EvictedCount is floor(ItemCount * EvictionRate).
func (c Config) EvictedCount() int {
	return int(math.Floor(float64(c.ItemCount()) * c.EvictionRate))
}

// Model returns the population model selected by WriteRate.
func (c Config) Model() PopulationModel {
	if c.WriteRate == 0 {
		return ModelUniform
	}
	return ModelRecency
}

// SetBlockSize stores n if n ≥ 1.
func (c *Config) SetBlockSize(n int) error {
	if err := validateCount("block_size", n); err != nil {
		return err
	}
	c.BlockSize = n
	return nil
}

// SetBlockCount stores n if n ≥ 1.
func (c *Config) SetBlockCount(n int) error {
	if err := validateCount("block_count", n); err != nil {
		return err
	}
	c.BlockCount = n
	return nil
}

// SetEvictionRate stores r if r is in [0,1].
func (c *Config) SetEvictionRate(r float64) error {
	if err := validateRate("eviction_rate", r); err != nil {
		return err
	}
	c.EvictionRate = r
	return nil
}

// SetWriteRate stores r if r is in [0,1].
func (c *Config) SetWriteRate(r float64) error {
	if err := validateRate("write_rate", r); err != nil {
		return err
	}
	c.WriteRate = r
	return nil
}

// Validate checks every field and rejects item counts that overflow int.
func (c Config) Validate() error {
	if err := validateCount("block_size", c.BlockSize); err != nil {
		return err
	}
	if err := validateCount("block_count", c.BlockCount); err != nil {
		return err
	}
	if err := validateRate("eviction_rate", c.EvictionRate); err != nil {
		return err
	}
	if err := validateRate("write_rate", c.WriteRate); err != nil {
		return err
	}
	if c.BlockSize > math.MaxInt/c.BlockCount {
		return fmt.Errorf("%w: block_size*block_count overflows (%d*%d)", ErrInvalidConfig, c.BlockSize, c.BlockCount)
	}
	return nil
}

// ValidateInteractive is Validate plus the interactive bounds: block size
// and count capped, and a nonzero write rate of at least 1%.
func (c Config) ValidateInteractive() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.BlockSize > MaxInteractiveBlockSize {
		return fmt.Errorf("%w: block_size must be at most %d, got %d", ErrInvalidConfig, MaxInteractiveBlockSize, c.BlockSize)
	}
	if c.BlockCount > MaxInteractiveBlockCount {
		return fmt.Errorf("%w: block_count must be at most %d, got %d", ErrInvalidConfig, MaxInteractiveBlockCount, c.BlockCount)
	}
	if c.WriteRate > 0 && c.WriteRate < MinInteractiveWriteRate {
		return fmt.Errorf("%w: write_rate must be 0 or at least %v, got %v", ErrInvalidConfig, MinInteractiveWriteRate, c.WriteRate)
	}
	return nil
}

func validateCount(name string, n int) error {
	if n < 1 {
		return fmt.Errorf("%w: %s must be at least 1, got %d", ErrInvalidConfig, name, n)
	}
	return nil
}

func validateRate(name string, r float64) error {
	if math.IsNaN(r) || r < 0 || r > 1 {
		return fmt.Errorf("%w: %s must be in [0, 1], got %v", ErrInvalidConfig, name, r)
	}
	return nil
}
