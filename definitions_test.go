package motionsvd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yyyoichi/facemap_motionsvd/spec"
)

func TestExtensions(t *testing.T) {
	types := Extensions()
	require.NoError(t, spec.Validate(types))
	require.Len(t, types, 2)

	series := types[0]
	assert.Equal(t, SeriesType, series.NeurodataTypeDef)
	assert.Equal(t, "TimeSeries", series.NeurodataTypeInc)
	data, ok := series.Dataset("data")
	require.True(t, ok)
	assert.Equal(t, "float", data.DType)
	assert.Equal(t, "[null, null]", data.Shape.String())
	region, ok := series.Dataset(RegionName)
	require.True(t, ok)
	assert.Equal(t, "DynamicTableRegion", region.NeurodataTypeInc)

	masks := types[1]
	assert.Equal(t, MasksType, masks.NeurodataTypeDef)
	assert.Equal(t, "DynamicTable", masks.NeurodataTypeInc)
	test := []struct {
		attr  string
		shape string
	}{
		{"downsampling_factor", "[]"},
		{"mask_coordinates", "[4]"},
		{"processed_frame_dimension", "[2]"},
	}
	for _, tt := range test {
		t.Run(tt.attr, func(t *testing.T) {
			a, ok := masks.Attribute(tt.attr)
			require.True(t, ok)
			assert.Equal(t, "float", a.DType)
			assert.Equal(t, tt.shape, a.Shape.String())
		})
	}
}

func TestExportDefinitions(t *testing.T) {
	b, err := NewNamespaceBuilder()
	require.NoError(t, err)
	dir := filepath.Join(t.TempDir(), "spec")
	require.NoError(t, spec.Export(b, Extensions(), dir))

	nsDoc, err := os.ReadFile(filepath.Join(dir, "ndx-facemap-motionsvd.namespace.yaml"))
	require.NoError(t, err)
	ns, err := spec.ParseNamespace(nsDoc)
	require.NoError(t, err)
	assert.Equal(t, NamespaceName, ns.Name)
	assert.Equal(t, NamespaceVersion, ns.Version)
	assert.Equal(t, []spec.SchemaEntry{
		{Namespace: "core"},
		{Source: "ndx-facemap-motionsvd.extensions.yaml"},
	}, ns.Schema)

	extDoc, err := os.ReadFile(filepath.Join(dir, "ndx-facemap-motionsvd.extensions.yaml"))
	require.NoError(t, err)
	types, err := spec.ParseExtensions(extDoc)
	require.NoError(t, err)
	assert.NoError(t, spec.CompareTypes(Extensions(), types))
}
