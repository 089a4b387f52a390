package telemetry

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Record(t *testing.T) {
	m := NewMetrics()

	m.NodesFlattened.Set(4)
	m.BehaviorsTotal.WithLabelValues("mapped").Set(3)
	m.BehaviorsTotal.WithLabelValues("unmapped").Set(1)
	m.ObserveStage("flatten", 1500*time.Millisecond)
	m.Finish(true, time.Unix(1700000000, 0))

	assert.Equal(t, 4.0, testutil.ToFloat64(m.NodesFlattened))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.BehaviorsTotal.WithLabelValues("mapped")))
	assert.Equal(t, 1.5, testutil.ToFloat64(m.StageDuration.WithLabelValues("flatten")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LastRunSuccessful))
	assert.Equal(t, 1700000000.0, testutil.ToFloat64(m.LastRunTimestamp))

	m.Finish(false, time.Unix(1700000001, 0))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.LastRunSuccessful))
}

func TestMetrics_WriteTextfile(t *testing.T) {
	m := NewMetrics()
	m.MappingEntries.Set(12)

	path := filepath.Join(t.TempDir(), "textfile", "rulemap.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "rulemap_mapping_entries 12")
	assert.Contains(t, string(data), "# HELP rulemap_nodes_flattened")
}
