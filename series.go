package motionsvd

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"
)

const (
	defaultDescription = "no description"
	defaultComments    = "no comments"
)

var _ Container = (*MotionSVDSeries)(nil)

// MotionSVDSeries holds the motion SVD temporal components. Rows of data are
// time points and column i holds the component of the mask at position i of
// the motion_masks region.
type MotionSVDSeries struct {
	name        string
	description string
	comments    string
	unit        string
	objectID    string

	resolution float64
	conversion float64
	offset     float64

	data *mat.Dense

	timestamps      []float64
	rate            float64
	startingTime    float64
	hasTimestamps   bool
	hasRate         bool
	hasStartingTime bool

	control            []uint8
	controlDescription []string

	motionMasks *Region
}

// NewMotionSVDSeries creates a series from data (time x components) whose
// columns correspond to the rows referenced by motionMasks.
//
// Exactly one time base must be given, either WithTimestamps or WithRate
// (optionally with WithStartingTime).
func NewMotionSVDSeries(name, description string, data mat.Matrix, motionMasks *Region, unit string, opts ...SeriesOption) (*MotionSVDSeries, error) {
	s := &MotionSVDSeries{
		name:        name,
		description: description,
		unit:        unit,
		comments:    defaultComments,
		resolution:  -1,
		conversion:  1,
	}
	if err := s.init(data, motionMasks, opts...); err != nil {
		return nil, err
	}
	s.objectID = uuid.NewString()
	return s, nil
}

func (s *MotionSVDSeries) init(data mat.Matrix, motionMasks *Region, opts ...SeriesOption) error {
	if err := checkName(SeriesType, s.name); err != nil {
		return err
	}
	if s.description == "" {
		s.description = defaultDescription
	}
	if s.unit == "" {
		return fmt.Errorf("%w: series %s has no unit", ErrConfig, s.name)
	}
	if data == nil {
		return fmt.Errorf("%w: series %s has no data", ErrShape, s.name)
	}
	rows, cols := data.Dims()
	if rows < 1 || cols < 1 {
		return fmt.Errorf("%w: series %s data is empty (%dx%d)", ErrShape, s.name, rows, cols)
	}
	if motionMasks == nil || motionMasks.table == nil {
		return fmt.Errorf("%w: series %s has no motion masks", ErrReference, s.name)
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return err
		}
	}

	switch {
	case s.hasTimestamps && s.hasRate:
		return fmt.Errorf("%w: series %s has both timestamps and a rate", ErrConfig, s.name)
	case !s.hasTimestamps && !s.hasRate:
		return fmt.Errorf("%w: series %s needs timestamps or a rate", ErrConfig, s.name)
	case s.hasTimestamps && s.hasStartingTime:
		return fmt.Errorf("%w: series %s has both timestamps and a starting time", ErrConfig, s.name)
	}
	if s.hasTimestamps && len(s.timestamps) != rows {
		return fmt.Errorf("%w: series %s has %d timestamps for %d rows", ErrShape, s.name, len(s.timestamps), rows)
	}
	if cols != motionMasks.Len() {
		return fmt.Errorf("%w: series %s has %d components but references %d masks", ErrShape, s.name, cols, motionMasks.Len())
	}
	if s.control != nil && len(s.control) != rows {
		return fmt.Errorf("%w: series %s has %d control values for %d rows", ErrShape, s.name, len(s.control), rows)
	}

	s.data = mat.DenseCopyOf(data)
	s.motionMasks = motionMasks
	return nil
}

func (s *MotionSVDSeries) Name() string { return s.name }

func (s *MotionSVDSeries) Description() string { return s.description }

func (s *MotionSVDSeries) Comments() string { return s.comments }

// Unit returns the unit of data after conversion.
func (s *MotionSVDSeries) Unit() string { return s.unit }

// ObjectID returns the UUID that identifies the series within a file.
func (s *MotionSVDSeries) ObjectID() string { return s.objectID }

func (s *MotionSVDSeries) NeurodataType() string { return SeriesType }

// Resolution returns the smallest meaningful difference in data, -1 if unknown.
func (s *MotionSVDSeries) Resolution() float64 { return s.resolution }

// Conversion returns the scalar that converts data to Unit.
func (s *MotionSVDSeries) Conversion() float64 { return s.conversion }

// Offset returns the scalar added to data after conversion.
func (s *MotionSVDSeries) Offset() float64 { return s.offset }

// Data returns a copy of the components, time x components.
func (s *MotionSVDSeries) Data() *mat.Dense { return mat.DenseCopyOf(s.data) }

// NumSamples returns the number of time points.
func (s *MotionSVDSeries) NumSamples() int {
	r, _ := s.data.Dims()
	return r
}

// NumComponents returns the number of components, equal to MotionMasks().Len().
func (s *MotionSVDSeries) NumComponents() int {
	_, c := s.data.Dims()
	return c
}

// MotionMasks returns the region this series references.
func (s *MotionSVDSeries) MotionMasks() *Region { return s.motionMasks }

// HasTimestamps reports whether the series uses explicit timestamps rather
// than a fixed rate.
func (s *MotionSVDSeries) HasTimestamps() bool { return s.hasTimestamps }

// Timestamps returns the explicit timestamps, or nil for a fixed-rate series.
func (s *MotionSVDSeries) Timestamps() []float64 { return slices.Clone(s.timestamps) }

// Rate returns the sampling rate in Hz, or 0 when timestamps are used.
func (s *MotionSVDSeries) Rate() float64 { return s.rate }

// StartingTime returns the time of the first sample of a fixed-rate series.
func (s *MotionSVDSeries) StartingTime() float64 { return s.startingTime }

// SampleTimes returns the time of every row, derived from the rate when no
// timestamps are stored.
func (s *MotionSVDSeries) SampleTimes() []float64 {
	if s.hasTimestamps {
		return slices.Clone(s.timestamps)
	}
	times := make([]float64, s.NumSamples())
	for i := range times {
		times[i] = s.startingTime + float64(i)/s.rate
	}
	return times
}

// Control returns the per-row labels, or nil.
func (s *MotionSVDSeries) Control() []uint8 { return slices.Clone(s.control) }

// ControlDescription explains each Control label value.
func (s *MotionSVDSeries) ControlDescription() []string { return slices.Clone(s.controlDescription) }
