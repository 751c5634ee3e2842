package motionsvd

import (
	"fmt"
	"slices"

	"gonum.org/v1/gonum/mat"
)

// RegionName is the name of the region dataset inside a MotionSVDSeries.
const RegionName = "motion_masks"

// Region is an ordered selection of rows of one MotionSVDMasks table.
// It does not own the table.
type Region struct {
	description string
	table       *MotionSVDMasks
	rows        []int
}

// NewRegion references rows of table in the given order. Every row must
// already exist in table.
func NewRegion(table *MotionSVDMasks, rows []int, description string) (*Region, error) {
	if table == nil {
		return nil, fmt.Errorf("%w: region has no table", ErrReference)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: region selects no rows of %s", ErrReference, table.Name())
	}
	for _, row := range rows {
		if row < 0 || row >= table.Len() {
			return nil, fmt.Errorf("%w: row %d is outside %s with %d rows", ErrReference, row, table.Name(), table.Len())
		}
	}
	return &Region{
		description: description,
		table:       table,
		rows:        slices.Clone(rows),
	}, nil
}

// Name returns RegionName.
func (r *Region) Name() string { return RegionName }

func (r *Region) Description() string { return r.description }

// Table returns the referenced table.
func (r *Region) Table() *MotionSVDMasks { return r.table }

// Rows returns the referenced row ids in order.
func (r *Region) Rows() []int { return slices.Clone(r.rows) }

// Len returns the number of referenced rows.
func (r *Region) Len() int { return len(r.rows) }

// Mask resolves position i of the region to its mask.
func (r *Region) Mask(i int) (*mat.Dense, error) {
	if i < 0 || i >= len(r.rows) {
		return nil, fmt.Errorf("%w: position %d of region with %d rows", ErrIndex, i, len(r.rows))
	}
	return r.table.Mask(r.rows[i])
}

// Masks resolves every referenced row in order.
func (r *Region) Masks() ([]*mat.Dense, error) {
	masks := make([]*mat.Dense, len(r.rows))
	for i := range r.rows {
		m, err := r.Mask(i)
		if err != nil {
			return nil, err
		}
		masks[i] = m
	}
	return masks, nil
}
