package store

import (
	"errors"
	"fmt"

	"github.com/yyyoichi/facemap_motionsvd/internal/arrays"
)

var (
	ErrNotFound     = errors.New("object not found")
	ErrExists       = errors.New("object already exists")
	ErrType         = errors.New("unexpected data type")
	ErrNotContainer = errors.New("not a container file")
)

type (
	// Kind tells groups from datasets.
	Kind string

	// DType is the element type of a dataset or attribute payload.
	DType string
)

const (
	GroupKind   Kind = "group"
	DatasetKind Kind = "dataset"

	Float64 DType = "float64"
	Int64   DType = "int64"
	Uint8   DType = "uint8"
	Text    DType = "text"
	// Ref holds the absolute path of another object.
	Ref DType = "ref"
)

type (
	// Node is one group or dataset of the hierarchy.
	Node struct {
		ID     int64
		Path   string // Unique, absolute
		Parent string // "" for the root group
		Kind   Kind
		DType  DType
		Shape  []int
		Data   []byte
	}

	// Attribute is a small named value attached to a node.
	Attribute struct {
		Name  string
		DType DType
		Shape []int
		Data  []byte
	}
)

// Float64Dataset describes a float64 dataset at path.
func Float64Dataset(path string, data []float64, shape []int) Node {
	return Node{Path: path, Kind: DatasetKind, DType: Float64, Shape: shape, Data: arrays.Float64sToBytes(data)}
}

// Int64Dataset describes an int64 dataset at path.
func Int64Dataset(path string, data []int64, shape []int) Node {
	return Node{Path: path, Kind: DatasetKind, DType: Int64, Shape: shape, Data: arrays.Int64sToBytes(data)}
}

// Uint8Dataset describes a one-dimensional uint8 dataset at path.
func Uint8Dataset(path string, data []uint8) Node {
	return Node{Path: path, Kind: DatasetKind, DType: Uint8, Shape: []int{len(data)}, Data: append([]byte(nil), data...)}
}

// TextDataset describes a one-dimensional text dataset at path.
func TextDataset(path string, data []string) Node {
	return Node{Path: path, Kind: DatasetKind, DType: Text, Shape: []int{len(data)}, Data: arrays.StringsToBytes(data)}
}

func (n *Node) Float64s() ([]float64, error) {
	if err := n.expect(Float64); err != nil {
		return nil, err
	}
	return arrays.BytesToFloat64s(n.Data)
}

func (n *Node) Int64s() ([]int64, error) {
	if err := n.expect(Int64); err != nil {
		return nil, err
	}
	return arrays.BytesToInt64s(n.Data)
}

func (n *Node) Uint8s() ([]uint8, error) {
	if err := n.expect(Uint8); err != nil {
		return nil, err
	}
	return append([]uint8(nil), n.Data...), nil
}

func (n *Node) Texts() ([]string, error) {
	if err := n.expect(Text); err != nil {
		return nil, err
	}
	return arrays.BytesToStrings(n.Data)
}

func (n *Node) expect(dtype DType) error {
	if n.Kind != DatasetKind {
		return fmt.Errorf("%w: %s is a %s", ErrType, n.Path, n.Kind)
	}
	if n.DType != dtype {
		return fmt.Errorf("%w: %s holds %s, want %s", ErrType, n.Path, n.DType, dtype)
	}
	return nil
}

func TextAttr(name, v string) Attribute {
	return Attribute{Name: name, DType: Text, Data: []byte(v)}
}

func TextsAttr(name string, v []string) Attribute {
	return Attribute{Name: name, DType: Text, Shape: []int{len(v)}, Data: arrays.StringsToBytes(v)}
}

func FloatAttr(name string, v float64) Attribute {
	return Attribute{Name: name, DType: Float64, Data: arrays.Float64sToBytes([]float64{v})}
}

func FloatsAttr(name string, v []float64) Attribute {
	return Attribute{Name: name, DType: Float64, Shape: []int{len(v)}, Data: arrays.Float64sToBytes(v)}
}

func IntAttr(name string, v int64) Attribute {
	return Attribute{Name: name, DType: Int64, Data: arrays.Int64sToBytes([]int64{v})}
}

// RefAttr points at the object stored under target.
func RefAttr(name, target string) Attribute {
	return Attribute{Name: name, DType: Ref, Data: []byte(target)}
}

func (a Attribute) Text() (string, error) {
	if err := a.expectScalar(Text); err != nil {
		return "", err
	}
	return string(a.Data), nil
}

func (a Attribute) Texts() ([]string, error) {
	if err := a.expect(Text); err != nil {
		return nil, err
	}
	return arrays.BytesToStrings(a.Data)
}

func (a Attribute) Float() (float64, error) {
	if err := a.expectScalar(Float64); err != nil {
		return 0, err
	}
	v, err := arrays.BytesToFloat64s(a.Data)
	if err != nil {
		return 0, err
	}
	if len(v) != 1 {
		return 0, fmt.Errorf("%w: attribute %s holds %d values", ErrType, a.Name, len(v))
	}
	return v[0], nil
}

func (a Attribute) Floats() ([]float64, error) {
	if err := a.expect(Float64); err != nil {
		return nil, err
	}
	return arrays.BytesToFloat64s(a.Data)
}

func (a Attribute) Int() (int64, error) {
	if err := a.expectScalar(Int64); err != nil {
		return 0, err
	}
	v, err := arrays.BytesToInt64s(a.Data)
	if err != nil {
		return 0, err
	}
	if len(v) != 1 {
		return 0, fmt.Errorf("%w: attribute %s holds %d values", ErrType, a.Name, len(v))
	}
	return v[0], nil
}

func (a Attribute) Ref() (string, error) {
	if err := a.expectScalar(Ref); err != nil {
		return "", err
	}
	return string(a.Data), nil
}

func (a Attribute) expect(dtype DType) error {
	if a.DType != dtype {
		return fmt.Errorf("%w: attribute %s holds %s, want %s", ErrType, a.Name, a.DType, dtype)
	}
	return nil
}

func (a Attribute) expectScalar(dtype DType) error {
	if err := a.expect(dtype); err != nil {
		return err
	}
	if len(a.Shape) != 0 {
		return fmt.Errorf("%w: attribute %s has shape %v, want scalar", ErrType, a.Name, a.Shape)
	}
	return nil
}
