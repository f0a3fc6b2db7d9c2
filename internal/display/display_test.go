package display_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/meshstats-cli/internal/aggregate"
	"github.com/KaramelBytes/meshstats-cli/internal/display"
	"github.com/KaramelBytes/meshstats-cli/internal/mesh"
	"github.com/KaramelBytes/meshstats-cli/internal/stats"
)

func TestRender(t *testing.T) {
	store := aggregate.New()
	for _, name := range []string{"zeta", "alpha"} {
		rec, err := stats.Summarize([]float64{1, 2, 3, 4}, stats.DefaultOptions())
		require.NoError(t, err)
		store.Record(mesh.EntireShape, "distance", name, rec)
	}

	var b strings.Builder
	require.NoError(t, display.Render(&b, store, stats.DefaultPercentiles))
	out := b.String()

	assert.Contains(t, out, "Entire Shape / distance")
	assert.Contains(t, out, "95th centile")
	assert.Contains(t, out, "Total: 2 shapes")
	assert.Less(t, strings.Index(out, "alpha"), strings.Index(out, "zeta"))
}

func TestRenderEmpty(t *testing.T) {
	var b strings.Builder
	require.NoError(t, display.Render(&b, aggregate.New(), nil))
	assert.Equal(t, "No statistics recorded\n", b.String())
}

func TestCatalog(t *testing.T) {
	p := mesh.NewPolyData("jaw", 12345)
	require.NoError(t, p.AddArray(&mesh.Array{Name: "distance", Components: 1, Values: make([]float64, 12345)}))
	cat := mesh.Classify([]mesh.Shape{p}, mesh.DefaultRegionSuffix)

	var b strings.Builder
	require.NoError(t, display.Catalog(&b, []mesh.Shape{p}, cat))
	out := b.String()
	assert.Contains(t, out, "12,345")
	assert.Contains(t, out, "distance")
	assert.Contains(t, out, "1 fields, 1 regions")
}
