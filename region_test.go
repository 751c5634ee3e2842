package motionsvd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// newTestMasks returns a table whose row i holds an h x w mask filled with i.
func newTestMasks(t *testing.T, rows, h, w int) *MotionSVDMasks {
	t.Helper()
	m, err := NewMotionSVDMasks("MotionSVDMasks", "motion masks", 4, []float64{0, float64(w), float64(h), 0}, []float64{float64(w), float64(h)})
	require.NoError(t, err)
	for i := range rows {
		data := make([]float64, h*w)
		for j := range data {
			data[j] = float64(i)
		}
		_, err := m.AddRow(mat.NewDense(h, w, data))
		require.NoError(t, err)
	}
	return m
}

func TestRegion(t *testing.T) {
	table := newTestMasks(t, 5, 3, 2)

	t.Run("New", func(t *testing.T) {
		test := []struct {
			name  string
			table *MotionSVDMasks
			rows  []int
			ok    bool
		}{
			{"all rows", table, []int{0, 1, 2, 3, 4}, true},
			{"subset out of order", table, []int{4, 0, 2}, true},
			{"repeated row", table, []int{1, 1}, true},
			{"nil table", nil, []int{0}, false},
			{"no rows", table, nil, false},
			{"negative row", table, []int{-1}, false},
			{"row past end", table, []int{0, 5}, false},
		}
		for _, tt := range test {
			t.Run(tt.name, func(t *testing.T) {
				r, err := NewRegion(tt.table, tt.rows, "masks")
				if tt.ok {
					require.NoError(t, err)
					assert.Equal(t, len(tt.rows), r.Len())
					return
				}
				assert.Nil(t, r)
				assert.ErrorIs(t, err, ErrReference)
			})
		}
	})

	t.Run("resolve", func(t *testing.T) {
		rows := []int{4, 0, 2}
		r, err := NewRegion(table, rows, "some masks")
		require.NoError(t, err)
		rows[0] = 1
		assert.Equal(t, []int{4, 0, 2}, r.Rows())
		assert.Equal(t, RegionName, r.Name())
		assert.Equal(t, "some masks", r.Description())
		assert.Same(t, table, r.Table())

		masks, err := r.Masks()
		require.NoError(t, err)
		require.Len(t, masks, 3)
		for i, want := range []float64{4, 0, 2} {
			assert.Equal(t, want, masks[i].At(0, 0))
			h, w := masks[i].Dims()
			assert.Equal(t, 3, h)
			assert.Equal(t, 2, w)
		}

		_, err = r.Mask(3)
		assert.ErrorIs(t, err, ErrIndex)
	})

	t.Run("stays valid as the table grows", func(t *testing.T) {
		table := newTestMasks(t, 2, 2, 2)
		r, err := NewRegion(table, []int{1}, "")
		require.NoError(t, err)
		_, err = table.AddRow(mat.NewDense(1, 1, []float64{9}))
		require.NoError(t, err)
		m, err := r.Mask(0)
		require.NoError(t, err)
		assert.Equal(t, 1.0, m.At(1, 1))
	})
}
