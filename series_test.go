package motionsvd

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

func randomDense(r, c int) *mat.Dense {
	data := make([]float64, r*c)
	for i := range data {
		data[i] = math.Sin(float64(i)) * 10
	}
	return mat.NewDense(r, c, data)
}

func linspace(start, stop float64, n int) []float64 {
	out := make([]float64, n)
	return floats.Span(out, start, stop)
}

func TestMotionSVDSeries(t *testing.T) {
	table := newTestMasks(t, 10, 4, 4)
	all, err := NewRegion(table, table.IDs(), "all the mask")
	require.NoError(t, err)
	three, err := NewRegion(table, []int{7, 3, 5}, "three masks")
	require.NoError(t, err)

	t.Run("time base", func(t *testing.T) {
		test := []struct {
			name    string
			opts    []SeriesOption
			wantErr error
		}{
			{"rate", []SeriesOption{WithRate(1000)}, nil},
			{"rate and starting time", []SeriesOption{WithRate(30), WithStartingTime(2.5)}, nil},
			{"timestamps", []SeriesOption{WithTimestamps(linspace(0, 100, 100))}, nil},
			{"neither", nil, ErrConfig},
			{"starting time only", []SeriesOption{WithStartingTime(1)}, ErrConfig},
			{"both", []SeriesOption{WithRate(1000), WithTimestamps(linspace(0, 100, 100))}, ErrConfig},
			{"both reversed", []SeriesOption{WithTimestamps(linspace(0, 100, 100)), WithRate(1000)}, ErrConfig},
			{"timestamps and starting time", []SeriesOption{WithTimestamps(linspace(0, 100, 100)), WithStartingTime(1)}, ErrConfig},
			{"zero rate", []SeriesOption{WithRate(0)}, ErrConfig},
			{"negative rate", []SeriesOption{WithRate(-30)}, ErrConfig},
			{"infinite rate", []SeriesOption{WithRate(math.Inf(1))}, ErrConfig},
			{"NaN starting time", []SeriesOption{WithRate(30), WithStartingTime(math.NaN())}, ErrConfig},
			{"NaN timestamp", []SeriesOption{WithTimestamps([]float64{0, math.NaN()})}, ErrConfig},
			{"infinite timestamp", []SeriesOption{WithTimestamps(append(linspace(0, 100, 99), math.Inf(1)))}, ErrConfig},
			{"negative infinite timestamp", []SeriesOption{WithTimestamps(append([]float64{math.Inf(-1)}, linspace(0, 100, 99)...))}, ErrConfig},
			{"short timestamps", []SeriesOption{WithTimestamps(linspace(0, 100, 99))}, ErrShape},
			{"empty timestamps", []SeriesOption{WithTimestamps([]float64{})}, ErrShape},
		}
		for _, tt := range test {
			t.Run(tt.name, func(t *testing.T) {
				s, err := NewMotionSVDSeries("MotionSVDSeries", "description", randomDense(100, 10), all, "n.a.", tt.opts...)
				if tt.wantErr == nil {
					require.NoError(t, err)
					assert.Equal(t, s.NumComponents(), s.MotionMasks().Len())
					return
				}
				assert.Nil(t, s)
				assert.True(t, errors.Is(err, tt.wantErr), "error should wrap expected, got %v", err)
			})
		}
	})

	t.Run("arguments", func(t *testing.T) {
		test := []struct {
			name    string
			series  string
			data    mat.Matrix
			region  *Region
			unit    string
			opts    []SeriesOption
			wantErr error
		}{
			{"columns match region", "s", randomDense(20, 3), three, "n.a.", nil, nil},
			{"too many columns", "s", randomDense(20, 4), three, "n.a.", nil, ErrShape},
			{"too few columns", "s", randomDense(20, 9), all, "n.a.", nil, ErrShape},
			{"nil data", "s", nil, three, "n.a.", nil, ErrShape},
			{"empty data", "s", &mat.Dense{}, three, "n.a.", nil, ErrShape},
			{"nil region", "s", randomDense(20, 3), nil, "n.a.", nil, ErrReference},
			{"zero region", "s", randomDense(20, 3), &Region{}, "n.a.", nil, ErrReference},
			{"no name", "", randomDense(20, 3), three, "n.a.", nil, ErrConfig},
			{"name with slash", "a/b", randomDense(20, 3), three, "n.a.", nil, ErrConfig},
			{"parent name", "..", randomDense(20, 3), three, "n.a.", nil, ErrConfig},
			{"escaping name", "../evil", randomDense(20, 3), three, "n.a.", nil, ErrConfig},
			{"control description only", "s", randomDense(20, 3), three, "n.a.", []SeriesOption{WithControl(nil, []string{"good", "bad"})}, nil},
			{"no unit", "s", randomDense(20, 3), three, "", nil, ErrConfig},
			{"control", "s", randomDense(20, 3), three, "n.a.", []SeriesOption{WithControl(make([]uint8, 20), []string{"ok"})}, nil},
			{"short control", "s", randomDense(20, 3), three, "n.a.", []SeriesOption{WithControl(make([]uint8, 19), nil)}, ErrShape},
		}
		for _, tt := range test {
			t.Run(tt.name, func(t *testing.T) {
				opts := append([]SeriesOption{WithRate(30)}, tt.opts...)
				s, err := NewMotionSVDSeries(tt.series, "", tt.data, tt.region, tt.unit, opts...)
				if tt.wantErr == nil {
					require.NoError(t, err)
					assert.Equal(t, s.NumComponents(), s.MotionMasks().Len())
					return
				}
				assert.Nil(t, s)
				assert.True(t, errors.Is(err, tt.wantErr), "error should wrap expected, got %v", err)
			})
		}
	})

	t.Run("constructor sets values", func(t *testing.T) {
		data := randomDense(100, 10)
		s, err := NewMotionSVDSeries("MotionSVDSeries", "description", data, all, "n.a.", WithRate(1000.0))
		require.NoError(t, err)

		assert.Equal(t, "MotionSVDSeries", s.Name())
		assert.Equal(t, "description", s.Description())
		assert.Equal(t, SeriesType, s.NeurodataType())
		assert.True(t, mat.Equal(data, s.Data()))
		assert.Equal(t, 1000.0, s.Rate())
		assert.Equal(t, 0.0, s.StartingTime())
		assert.False(t, s.HasTimestamps())
		assert.Nil(t, s.Timestamps())
		assert.Same(t, all, s.MotionMasks())
		assert.Equal(t, "n.a.", s.Unit())
		assert.Equal(t, "no comments", s.Comments())
		assert.Equal(t, -1.0, s.Resolution())
		assert.Equal(t, 1.0, s.Conversion())
		assert.Equal(t, 0.0, s.Offset())
		assert.Nil(t, s.Control())
		assert.Equal(t, 100, s.NumSamples())
		assert.Equal(t, 10, s.NumComponents())
		assert.Len(t, s.ObjectID(), 36)

		// data is copied in and out
		data.Set(0, 0, 1e9)
		assert.NotEqual(t, 1e9, s.Data().At(0, 0))
		s.Data().Set(0, 0, 1e9)
		assert.NotEqual(t, 1e9, s.Data().At(0, 0))
	})

	t.Run("options", func(t *testing.T) {
		control := []uint8{0, 1, 0, 1}
		s, err := NewMotionSVDSeries("s", "", randomDense(4, 3), three, "a.u.",
			WithTimestamps([]float64{0.5, 1, 1.5, 2}),
			WithComments("from facemap"),
			WithResolution(0.01),
			WithConversion(2),
			WithOffset(-1),
			WithControl(control, []string{"still", "moving"}),
		)
		require.NoError(t, err)
		control[0] = 9
		assert.Equal(t, "no description", s.Description())
		assert.Equal(t, "from facemap", s.Comments())
		assert.Equal(t, 0.01, s.Resolution())
		assert.Equal(t, 2.0, s.Conversion())
		assert.Equal(t, -1.0, s.Offset())
		assert.True(t, s.HasTimestamps())
		assert.Equal(t, 0.0, s.Rate())
		assert.Equal(t, []float64{0.5, 1, 1.5, 2}, s.Timestamps())
		assert.Equal(t, []uint8{0, 1, 0, 1}, s.Control())
		assert.Equal(t, []string{"still", "moving"}, s.ControlDescription())
	})

	t.Run("SampleTimes", func(t *testing.T) {
		s, err := NewMotionSVDSeries("s", "", randomDense(4, 3), three, "n.a.", WithRate(4), WithStartingTime(10))
		require.NoError(t, err)
		assert.Equal(t, []float64{10, 10.25, 10.5, 10.75}, s.SampleTimes())

		s, err = NewMotionSVDSeries("s", "", randomDense(3, 3), three, "n.a.", WithTimestamps([]float64{1, 2, 4}))
		require.NoError(t, err)
		assert.Equal(t, []float64{1, 2, 4}, s.SampleTimes())
	})
}
