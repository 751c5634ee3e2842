package motionsvd

import (
	"fmt"
	"math"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// DefaultMasksName is used when NewMotionSVDMasks receives an empty name.
const DefaultMasksName = "MotionSVDMasks"

var _ Container = (*MotionSVDMasks)(nil)

// MotionSVDMasks is an append-only table holding one 2-D mask per row.
// Row ids are assigned in insertion order starting at 0.
type MotionSVDMasks struct {
	name        string
	description string
	objectID    string

	downsamplingFactor      float64
	maskCoordinates         [4]float64
	processedFrameDimension [2]float64

	masks []*mat.Dense
}

// NewMotionSVDMasks creates an empty mask table.
//
// maskCoordinates is the mask location in the downsampled frame
// (top, right, bottom, left) and must hold exactly 4 values.
// processedFrameDimension is the processed frame (width, height) and must
// hold exactly 2 values. downsamplingFactor must be positive.
func NewMotionSVDMasks(name, description string, downsamplingFactor float64, maskCoordinates, processedFrameDimension []float64) (*MotionSVDMasks, error) {
	if name == "" {
		name = DefaultMasksName
	}
	if err := checkName(MasksType, name); err != nil {
		return nil, err
	}
	if math.IsNaN(downsamplingFactor) || math.IsInf(downsamplingFactor, 0) || downsamplingFactor <= 0 {
		return nil, fmt.Errorf("%w: downsampling factor must be positive, got %v", ErrConfig, downsamplingFactor)
	}
	if len(maskCoordinates) != 4 {
		return nil, fmt.Errorf("%w: mask coordinates need 4 values (top, right, bottom, left), got %d", ErrShape, len(maskCoordinates))
	}
	if len(processedFrameDimension) != 2 {
		return nil, fmt.Errorf("%w: processed frame dimension needs 2 values (width, height), got %d", ErrShape, len(processedFrameDimension))
	}
	if floats.HasNaN(maskCoordinates) || floats.HasNaN(processedFrameDimension) {
		return nil, fmt.Errorf("%w: mask coordinates and frame dimension must not be NaN", ErrConfig)
	}
	m := &MotionSVDMasks{
		name:               name,
		description:        description,
		objectID:           uuid.NewString(),
		downsamplingFactor: downsamplingFactor,
	}
	copy(m.maskCoordinates[:], maskCoordinates)
	copy(m.processedFrameDimension[:], processedFrameDimension)
	return m, nil
}

// AddRow appends a copy of mask and returns its row id.
func (m *MotionSVDMasks) AddRow(mask mat.Matrix) (int, error) {
	if mask == nil {
		return 0, fmt.Errorf("%w: mask is nil", ErrShape)
	}
	if r, c := mask.Dims(); r < 1 || c < 1 {
		return 0, fmt.Errorf("%w: mask is empty (%dx%d)", ErrShape, r, c)
	}
	m.masks = append(m.masks, mat.DenseCopyOf(mask))
	return len(m.masks) - 1, nil
}

// Len returns the number of rows.
func (m *MotionSVDMasks) Len() int {
	return len(m.masks)
}

// IDs returns the row ids in order.
func (m *MotionSVDMasks) IDs() []int {
	ids := make([]int, len(m.masks))
	for i := range ids {
		ids[i] = i
	}
	return ids
}

// Mask returns a copy of the mask stored at row id.
func (m *MotionSVDMasks) Mask(id int) (*mat.Dense, error) {
	if id < 0 || id >= len(m.masks) {
		return nil, fmt.Errorf("%w: row %d of %s with %d rows", ErrIndex, id, m.name, len(m.masks))
	}
	return mat.DenseCopyOf(m.masks[id]), nil
}

func (m *MotionSVDMasks) Name() string { return m.name }

func (m *MotionSVDMasks) Description() string { return m.description }

// ObjectID returns the UUID that identifies the table within a file.
func (m *MotionSVDMasks) ObjectID() string { return m.objectID }

func (m *MotionSVDMasks) NeurodataType() string { return MasksType }

// DownsamplingFactor returns the factor the video was downsampled by before processing.
func (m *MotionSVDMasks) DownsamplingFactor() float64 { return m.downsamplingFactor }

// MaskCoordinates returns (top, right, bottom, left).
func (m *MotionSVDMasks) MaskCoordinates() []float64 {
	return append([]float64(nil), m.maskCoordinates[:]...)
}

// ProcessedFrameDimension returns (width, height).
func (m *MotionSVDMasks) ProcessedFrameDimension() []float64 {
	return append([]float64(nil), m.processedFrameDimension[:]...)
}
