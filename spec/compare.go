package spec

import (
	"fmt"
	"slices"
)

// CompareNamespace reports whether got identifies the same namespace and
// version as want, built on the same included namespaces.
func CompareNamespace(want, got Namespace) error {
	if want.Name != got.Name {
		return fmt.Errorf("%w: namespace %q, want %q", ErrMismatch, got.Name, want.Name)
	}
	if want.Version != got.Version {
		return fmt.Errorf("%w: namespace %s version %q, want %q", ErrMismatch, want.Name, got.Version, want.Version)
	}
	if w, g := want.Includes(), got.Includes(); !slices.Equal(w, g) {
		return fmt.Errorf("%w: namespace %s includes %v, want %v", ErrMismatch, want.Name, g, w)
	}
	return nil
}

// CompareTypes reports the first structural difference between two sets of
// type definitions. Documentation text is not compared.
func CompareTypes(want, got []GroupSpec) error {
	if len(want) != len(got) {
		return fmt.Errorf("%w: %d types, want %d", ErrMismatch, len(got), len(want))
	}
	byDef := make(map[string]GroupSpec, len(got))
	for _, g := range got {
		byDef[g.NeurodataTypeDef] = g
	}
	for _, w := range want {
		g, ok := byDef[w.NeurodataTypeDef]
		if !ok {
			return fmt.Errorf("%w: type %s is not defined", ErrMismatch, w.NeurodataTypeDef)
		}
		if err := compareGroup(w.NeurodataTypeDef, w, g); err != nil {
			return err
		}
	}
	return nil
}

func compareGroup(where string, want, got GroupSpec) error {
	if want.NeurodataTypeInc != got.NeurodataTypeInc {
		return mismatch(where, "neurodata_type_inc", got.NeurodataTypeInc, want.NeurodataTypeInc)
	}
	if want.Name != got.Name {
		return mismatch(where, "name", got.Name, want.Name)
	}
	if want.DefaultName != got.DefaultName {
		return mismatch(where, "default_name", got.DefaultName, want.DefaultName)
	}
	if want.Quantity != got.Quantity {
		return mismatch(where, "quantity", got.Quantity, want.Quantity)
	}
	if err := compareAttributes(where, want.Attributes, got.Attributes); err != nil {
		return err
	}
	if len(want.Datasets) != len(got.Datasets) {
		return mismatch(where, "datasets", len(got.Datasets), len(want.Datasets))
	}
	for i, w := range want.Datasets {
		if err := compareDataset(where+"/"+w.Name, w, got.Datasets[i]); err != nil {
			return err
		}
	}
	if len(want.Groups) != len(got.Groups) {
		return mismatch(where, "groups", len(got.Groups), len(want.Groups))
	}
	for i, w := range want.Groups {
		if err := compareGroup(where+"/"+w.Name, w, got.Groups[i]); err != nil {
			return err
		}
	}
	return nil
}

func compareDataset(where string, want, got DatasetSpec) error {
	switch {
	case want.Name != got.Name:
		return mismatch(where, "name", got.Name, want.Name)
	case want.NeurodataTypeDef != got.NeurodataTypeDef:
		return mismatch(where, "neurodata_type_def", got.NeurodataTypeDef, want.NeurodataTypeDef)
	case want.NeurodataTypeInc != got.NeurodataTypeInc:
		return mismatch(where, "neurodata_type_inc", got.NeurodataTypeInc, want.NeurodataTypeInc)
	case want.DType != got.DType:
		return mismatch(where, "dtype", got.DType, want.DType)
	case !slices.Equal(want.Dims, got.Dims):
		return mismatch(where, "dims", got.Dims, want.Dims)
	case !want.Shape.Equal(got.Shape):
		return mismatch(where, "shape", got.Shape, want.Shape)
	case want.Quantity != got.Quantity:
		return mismatch(where, "quantity", got.Quantity, want.Quantity)
	}
	return compareAttributes(where, want.Attributes, got.Attributes)
}

func compareAttributes(where string, want, got []AttributeSpec) error {
	if len(want) != len(got) {
		return mismatch(where, "attributes", len(got), len(want))
	}
	for i, w := range want {
		g := got[i]
		at := where + "." + w.Name
		switch {
		case w.Name != g.Name:
			return mismatch(where, "attribute", g.Name, w.Name)
		case w.DType != g.DType:
			return mismatch(at, "dtype", g.DType, w.DType)
		case !slices.Equal(w.Dims, g.Dims):
			return mismatch(at, "dims", g.Dims, w.Dims)
		case !w.Shape.Equal(g.Shape):
			return mismatch(at, "shape", g.Shape, w.Shape)
		case w.IsRequired() != g.IsRequired():
			return mismatch(at, "required", g.IsRequired(), w.IsRequired())
		}
	}
	return nil
}

func mismatch(where, field string, got, want any) error {
	return fmt.Errorf("%w: %s %s is %v, want %v", ErrMismatch, where, field, got, want)
}

// Equal reports whether both shapes have the same rank and dimensions.
func (s Shape) Equal(o Shape) bool {
	return slices.EqualFunc(s, o, func(a, b *int) bool {
		if a == nil || b == nil {
			return a == b
		}
		return *a == *b
	})
}

// String renders unbounded dimensions as "null".
func (s Shape) String() string {
	out := "["
	for i, d := range s {
		if i > 0 {
			out += ", "
		}
		if d == nil {
			out += "null"
		} else {
			out += fmt.Sprint(*d)
		}
	}
	return out + "]"
}
