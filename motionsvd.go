// Package motionsvd stores the motion SVD output of FaceMap as two NWB
// neurodata types: MotionSVDMasks, a table of spatial masks, and
// MotionSVDSeries, the temporal components whose columns reference rows of
// that table.
package motionsvd

import "errors"

var (
	// ErrShape is returned when an array or vector has the wrong arity or
	// dimensions.
	ErrShape = errors.New("shape mismatch")
	// ErrConfig is returned for an invalid or contradictory construction
	// argument, such as supplying both timestamps and a rate.
	ErrConfig = errors.New("invalid configuration")
	// ErrReference is returned when a region does not resolve to rows of a
	// single MotionSVDMasks table.
	ErrReference = errors.New("invalid reference")
	// ErrCompatibility is returned when a file does not match the type
	// definitions of this package.
	ErrCompatibility = errors.New("incompatible file")
	// ErrIndex is returned for a row id outside the table.
	ErrIndex = errors.New("index out of range")
)

const (
	// NamespaceName identifies the extension in schema documents and files.
	NamespaceName = "ndx-facemap-motionsvd"
	// NamespaceVersion is the version of the type definitions.
	NamespaceVersion = "0.1.0"

	MasksType  = "MotionSVDMasks"
	SeriesType = "MotionSVDSeries"

	coreNamespace   = "core"
	commonNamespace = "hdmf-common"
)
