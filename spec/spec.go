// Package spec describes neurodata types in the NWB schema language and
// exports them as YAML namespace and extension documents.
package spec

import "errors"

var (
	// ErrInvalid is returned for a definition that cannot be exported.
	ErrInvalid = errors.New("invalid specification")
	// ErrMismatch is returned when two descriptions of a type disagree.
	ErrMismatch = errors.New("specification mismatch")
)

// Shape lists dimension lengths. A nil entry is an unbounded dimension and
// is written as null.
type Shape []*int

// Dim returns a fixed dimension length for use in a Shape.
func Dim(n int) *int {
	return &n
}

// Any is an unbounded dimension.
var Any *int

// Quantity values used by the schema language.
const (
	Optional   = "?"
	ZeroOrMany = "*"
	OneOrMany  = "+"
)

type (
	// GroupSpec describes a group, usually a new neurodata type.
	GroupSpec struct {
		NeurodataTypeDef string          `yaml:"neurodata_type_def,omitempty"`
		NeurodataTypeInc string          `yaml:"neurodata_type_inc,omitempty"`
		Name             string          `yaml:"name,omitempty"`
		DefaultName      string          `yaml:"default_name,omitempty"`
		Doc              string          `yaml:"doc"`
		Quantity         string          `yaml:"quantity,omitempty"`
		Attributes       []AttributeSpec `yaml:"attributes,omitempty"`
		Datasets         []DatasetSpec   `yaml:"datasets,omitempty"`
		Groups           []GroupSpec     `yaml:"groups,omitempty"`
	}

	// DatasetSpec describes an n-dimensional array inside a group.
	DatasetSpec struct {
		NeurodataTypeDef string          `yaml:"neurodata_type_def,omitempty"`
		NeurodataTypeInc string          `yaml:"neurodata_type_inc,omitempty"`
		Name             string          `yaml:"name,omitempty"`
		Doc              string          `yaml:"doc"`
		DType            string          `yaml:"dtype,omitempty"`
		Dims             []string        `yaml:"dims,omitempty"`
		Shape            Shape           `yaml:"shape,omitempty"`
		Quantity         string          `yaml:"quantity,omitempty"`
		Attributes       []AttributeSpec `yaml:"attributes,omitempty"`
	}

	// AttributeSpec describes a small named value on a group or dataset.
	AttributeSpec struct {
		Name     string   `yaml:"name"`
		Doc      string   `yaml:"doc"`
		DType    string   `yaml:"dtype"`
		Dims     []string `yaml:"dims,omitempty"`
		Shape    Shape    `yaml:"shape,omitempty"`
		Required *bool    `yaml:"required,omitempty"`
	}
)

// IsRequired reports whether the attribute must be present. Attributes are
// required unless stated otherwise.
func (a AttributeSpec) IsRequired() bool {
	return a.Required == nil || *a.Required
}

// Dataset returns the dataset named name.
func (g GroupSpec) Dataset(name string) (DatasetSpec, bool) {
	for _, d := range g.Datasets {
		if d.Name == name {
			return d, true
		}
	}
	return DatasetSpec{}, false
}

// Attribute returns the attribute named name.
func (g GroupSpec) Attribute(name string) (AttributeSpec, bool) {
	for _, a := range g.Attributes {
		if a.Name == name {
			return a, true
		}
	}
	return AttributeSpec{}, false
}
