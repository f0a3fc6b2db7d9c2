package aggregate_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/meshstats-cli/internal/aggregate"
	"github.com/KaramelBytes/meshstats-cli/internal/stats"
)

func rec(v float64) *stats.Record {
	return &stats.Record{Count: 1, Min: v, Max: v, Mean: v}
}

func TestStoreSortedEnumeration(t *testing.T) {
	s := aggregate.New()
	s.Record("jawROI", "distance", "shapeB", rec(2))
	s.Record("Entire Shape", "thickness", "shapeA", rec(1))
	s.Record("Entire Shape", "distance", "shapeC", rec(3))
	s.Record("Entire Shape", "distance", "shapeA", rec(4))

	assert.Equal(t, []string{"Entire Shape", "jawROI"}, s.Regions())
	assert.Equal(t, []string{"distance", "thickness"}, s.Fields("Entire Shape"))
	assert.Equal(t, []string{"shapeA", "shapeC"}, s.Shapes("Entire Shape", "distance"))
	assert.Equal(t, 4, s.Len())

	got, ok := s.Get("jawROI", "distance", "shapeB")
	require.True(t, ok)
	assert.Equal(t, 2.0, got.Min)

	_, ok = s.Get("jawROI", "distance", "shapeA")
	assert.False(t, ok)
	assert.Empty(t, s.Fields("missing"))
	assert.Nil(t, s.Region("missing"))
}

func TestStoreLastWriteWins(t *testing.T) {
	var s aggregate.Store
	s.Record("r", "f", "s", rec(1))
	s.Record("r", "f", "s", rec(9))

	got, ok := s.Get("r", "f", "s")
	require.True(t, ok)
	assert.Equal(t, 9.0, got.Min)
	assert.Equal(t, 1, s.Len())
}

func TestStoreClear(t *testing.T) {
	s := aggregate.New()
	s.Record("r", "f", "s", rec(1))
	s.Clear()
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.Regions())
}

func TestStoreJSONRoundTrip(t *testing.T) {
	s := aggregate.New()
	s.Record("Entire Shape", "distance", "shapeA", &stats.Record{
		Count: 3, Min: 1, Max: 3, Mean: 2, Std: 0.816,
		Percentiles: []stats.Percentile{{Threshold: 50, Value: 2}},
	})

	b, err := json.Marshal(s)
	require.NoError(t, err)

	back := aggregate.New()
	require.NoError(t, json.Unmarshal(b, back))
	got, ok := back.Get("Entire Shape", "distance", "shapeA")
	require.True(t, ok)
	v, ok := got.Percentile(50)
	require.True(t, ok)
	assert.Equal(t, 2.0, v)
	assert.Equal(t, 0.816, got.Std)
}
