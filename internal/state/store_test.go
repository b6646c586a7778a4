package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/loglines/pkg/core"
)

func shape() core.QueryShape {
	return core.QueryShape{
		Dimensions: []core.Field{{Name: "msg"}},
		Measures:   []core.Field{{Name: "bytes"}},
	}
}

func TestNew(t *testing.T) {
	vs := New(core.DefaultVisConfig())

	assert.Equal(t, FilterAll, vs.FilterField)
	assert.True(t, vs.ShowRowNumbers)
	assert.False(t, vs.ShowSparklines)
	assert.False(t, vs.HasData())
	assert.Nil(t, vs.Fields())
}

func TestSetData_RecomputesStats(t *testing.T) {
	vs := New(core.DefaultVisConfig())

	vs.SetData([]core.Row{{"bytes": {Value: 10.0}}, {"bytes": {Value: 2.0}}}, shape())
	require.Contains(t, vs.Stats, "bytes")
	assert.Equal(t, core.MeasureStats{Min: 2, Max: 10}, vs.Stats["bytes"])
	assert.Equal(t, uint64(1), vs.Generation)

	vs.SetData([]core.Row{{"bytes": {Value: 5.0}}}, shape())
	assert.Equal(t, core.MeasureStats{Min: 5, Max: 5}, vs.Stats["bytes"])
	assert.Equal(t, uint64(2), vs.Generation)
}

func TestSetData_ResetsUnknownFilterField(t *testing.T) {
	vs := New(core.DefaultVisConfig())
	vs.SetData(nil, shape())
	vs.SetFilterField("msg")
	assert.Equal(t, "msg", vs.FilterField)

	vs.SetData(nil, core.QueryShape{Dimensions: []core.Field{{Name: "other"}}})
	assert.Equal(t, FilterAll, vs.FilterField)
}

func TestSetFilterField(t *testing.T) {
	vs := New(core.DefaultVisConfig())
	vs.SetData(nil, shape())

	vs.SetFilterField("bytes")
	assert.Equal(t, "bytes", vs.FilterField)
	vs.SetFilterField("missing")
	assert.Equal(t, FilterAll, vs.FilterField)
	vs.SetFilterField("")
	assert.Equal(t, FilterAll, vs.FilterField)
}

func TestFilterTargets(t *testing.T) {
	vs := New(core.DefaultVisConfig())
	vs.SetData(nil, shape())

	assert.Equal(t, []string{FilterAll, "msg", "bytes"}, vs.FilterTargets())
}

func TestApplyConfig_SparklineToggleRecomputes(t *testing.T) {
	vs := New(core.DefaultVisConfig())
	vs.SetData([]core.Row{{"bytes": {Value: 1.0}}}, shape())
	vs.Stats = nil

	vs.ApplyConfig(core.VisConfig{ShowRowNumbers: false, ShowMeasureSparklines: true})

	assert.False(t, vs.ShowRowNumbers)
	assert.True(t, vs.ShowSparklines)
	assert.Contains(t, vs.Stats, "bytes")
}

func TestClone(t *testing.T) {
	vs := New(core.DefaultVisConfig())
	vs.SetData([]core.Row{{"bytes": {Value: 1.0}}}, shape())

	c := vs.Clone()
	c.FilterText = "x"
	c.Stats["bytes"] = core.MeasureStats{Min: 9, Max: 9}

	assert.Empty(t, vs.FilterText)
	assert.Equal(t, core.MeasureStats{Min: 1, Max: 1}, vs.Stats["bytes"])
}
