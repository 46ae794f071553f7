package sim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 100_000, cfg.ItemCount())
	assert.Equal(t, ModelUniform, cfg.Model())
}

func TestNewConfig_FieldEquivalence(t *testing.T) {
	got, err := NewConfig(2, 3, 0.25, 0.5)
	require.NoError(t, err)
	want := Config{BlockSize: 2, BlockCount: 3, EvictionRate: 0.25, WriteRate: 0.5}
	assert.Equal(t, want, got)
	assert.Equal(t, 6, got.ItemCount())
	assert.Equal(t, ModelRecency, got.Model())
}

func TestNewConfig_Invalid_ReturnsZeroConfig(t *testing.T) {
	got, err := NewConfig(0, 3, 0.25, 0.5)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.Equal(t, Config{}, got)
}

func TestConfig_Setters_RejectOutOfRange(t *testing.T) {
	tests := []struct {
		name string
		set  func(c *Config) error
	}{
		{"block size zero", func(c *Config) error { return c.SetBlockSize(0) }},
		{"block size negative", func(c *Config) error { return c.SetBlockSize(-5) }},
		{"block count zero", func(c *Config) error { return c.SetBlockCount(0) }},
		{"eviction rate negative", func(c *Config) error { return c.SetEvictionRate(-0.01) }},
		{"eviction rate above one", func(c *Config) error { return c.SetEvictionRate(1.01) }},
		{"eviction rate NaN", func(c *Config) error { return c.SetEvictionRate(math.NaN()) }},
		{"write rate above one", func(c *Config) error { return c.SetWriteRate(2) }},
		{"write rate NaN", func(c *Config) error { return c.SetWriteRate(math.NaN()) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// GIVEN a valid config
			cfg := DefaultConfig()
			before := cfg

			// WHEN an out-of-range value is set
			err := tt.set(&cfg)

			// THEN it is rejected and the config is unchanged
			assert.ErrorIs(t, err, ErrInvalidConfig)
			assert.Equal(t, before, cfg)
		})
	}
}

func TestConfig_Setters_AcceptBoundaries(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.SetBlockSize(1))
	require.NoError(t, cfg.SetBlockCount(1))
	require.NoError(t, cfg.SetEvictionRate(0))
	require.NoError(t, cfg.SetEvictionRate(1))
	require.NoError(t, cfg.SetWriteRate(0))
	require.NoError(t, cfg.SetWriteRate(1))
	assert.Equal(t, Config{BlockSize: 1, BlockCount: 1, EvictionRate: 1, WriteRate: 1}, cfg)
}

func TestConfig_Validate_RejectsItemCountOverflow(t *testing.T) {
	cfg := Config{BlockSize: math.MaxInt / 2, BlockCount: 3}
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
}

func TestConfig_ValidateInteractive_EnforcesUpperBounds(t *testing.T) {
	ok := Config{BlockSize: MaxInteractiveBlockSize, BlockCount: MaxInteractiveBlockCount}
	assert.NoError(t, ok.ValidateInteractive())

	tooBig := Config{BlockSize: MaxInteractiveBlockSize + 1, BlockCount: 1}
	assert.NoError(t, tooBig.Validate())
	assert.ErrorIs(t, tooBig.ValidateInteractive(), ErrInvalidConfig)

	tooMany := Config{BlockSize: 1, BlockCount: MaxInteractiveBlockCount + 1}
	assert.ErrorIs(t, tooMany.ValidateInteractive(), ErrInvalidConfig)
}

func TestConfig_EvictedCount_Floors(t *testing.T) {
	tests := []struct {
		cfg  Config
		want int
	}{
		{Config{BlockSize: 2, BlockCount: 2, EvictionRate: 0.5}, 2},
		{Config{BlockSize: 3, BlockCount: 1, EvictionRate: 0.5}, 1},
		{Config{BlockSize: 7, BlockCount: 3, EvictionRate: 0.99}, 20},
		{Config{BlockSize: 5, BlockCount: 5, EvictionRate: 0}, 0},
		{Config{BlockSize: 5, BlockCount: 5, EvictionRate: 1}, 25},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.cfg.EvictedCount(), "config %+v", tt.cfg)
	}
}

func TestConfig_ValidateInteractive_RejectsTinyWriteRate(t *testing.T) {
	// GIVEN a write rate that would need about ItemCount/1e-12 ticks
	tiny := Config{BlockSize: 1, BlockCount: 2, WriteRate: 1e-12}

	// THEN it is a valid config but outside the interactive range
	assert.NoError(t, tiny.Validate())
	assert.ErrorIs(t, tiny.ValidateInteractive(), ErrInvalidConfig)

	for _, wr := range []float64{0, MinInteractiveWriteRate, 0.5, 1} {
		cfg := Config{BlockSize: 1, BlockCount: 2, WriteRate: wr}
		assert.NoError(t, cfg.ValidateInteractive(), "write rate %v", wr)
	}
}
