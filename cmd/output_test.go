package cmd

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/sshape/sim"
)

func sampleResult() sim.Result {
	cfg := sim.Config{BlockSize: 4, BlockCount: 3, EvictionRate: 0.5}
	return sim.NewEngine(rand.New(rand.NewSource(1))).Recompute(cfg)
}

func TestWriteResult_Text(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeResult(&buf, sampleResult(), "text"))
	assert.Contains(t, buf.String(), "=== Occupancy ===")
	assert.Contains(t, buf.String(), "Min Utilization")
}

func TestWriteResult_JSON(t *testing.T) {
	res := sampleResult()

	var buf bytes.Buffer
	require.NoError(t, writeResult(&buf, res, "json"))

	var got resultJSON
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, res.Occupancy.Blocks, got.Blocks)
	assert.Equal(t, res.Occupancy.MinUtilization(), got.MinUtilization)
	assert.Equal(t, res.Config, got.Config)
	assert.Equal(t, 6, got.Summary.Resident)
	assert.Empty(t, got.RunID)
}

func TestWriteResult_CSV(t *testing.T) {
	res := sampleResult()

	var buf bytes.Buffer
	require.NoError(t, writeResult(&buf, res, "csv"))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"rank", "occupancy", "utilization"}, rows[0])
	assert.Equal(t, "0", rows[1][0])
}

func TestWriteResult_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorContains(t, writeResult(&buf, sampleResult(), "xml"), "unknown output format")
}
