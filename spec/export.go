package spec

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type namespaceDocument struct {
	Namespaces []Namespace `yaml:"namespaces"`
}

type extensionsDocument struct {
	Groups []GroupSpec `yaml:"groups"`
}

// Documents renders the namespace document and the extension document that
// defines types.
func (b *NamespaceBuilder) Documents(types []GroupSpec) (namespace, extensions []byte, err error) {
	if err := Validate(types); err != nil {
		return nil, nil, err
	}
	if namespace, err = marshal(namespaceDocument{Namespaces: []Namespace{b.Namespace()}}); err != nil {
		return nil, nil, fmt.Errorf("failed to marshal namespace: %w", err)
	}
	if extensions, err = marshal(extensionsDocument{Groups: types}); err != nil {
		return nil, nil, fmt.Errorf("failed to marshal extensions: %w", err)
	}
	return namespace, extensions, nil
}

// Export writes the namespace and extension documents into dir, creating it
// when missing.
func Export(b *NamespaceBuilder, types []GroupSpec, dir string) error {
	namespace, extensions, err := b.Documents(types)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, b.ExtensionsFile()), extensions, 0644); err != nil {
		return fmt.Errorf("failed to write extensions: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, b.NamespaceFile()), namespace, 0644); err != nil {
		return fmt.Errorf("failed to write namespace: %w", err)
	}
	return nil
}

// ParseNamespace reads a namespace document holding exactly one namespace.
func ParseNamespace(data []byte) (Namespace, error) {
	var doc namespaceDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Namespace{}, fmt.Errorf("failed to parse namespace: %w", err)
	}
	if len(doc.Namespaces) != 1 {
		return Namespace{}, fmt.Errorf("%w: expected one namespace, found %d", ErrInvalid, len(doc.Namespaces))
	}
	return doc.Namespaces[0], nil
}

// ParseExtensions reads the group types of an extension document.
func ParseExtensions(data []byte) ([]GroupSpec, error) {
	var doc extensionsDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse extensions: %w", err)
	}
	return doc.Groups, nil
}

// Validate checks that every type is defined once, documented, and holds
// uniquely named members.
func Validate(types []GroupSpec) error {
	seen := make(map[string]bool, len(types))
	for _, g := range types {
		if g.NeurodataTypeDef == "" {
			return fmt.Errorf("%w: group %q does not define a type", ErrInvalid, g.Name)
		}
		if seen[g.NeurodataTypeDef] {
			return fmt.Errorf("%w: type %s defined twice", ErrInvalid, g.NeurodataTypeDef)
		}
		seen[g.NeurodataTypeDef] = true
		if err := validateGroup(g.NeurodataTypeDef, g); err != nil {
			return err
		}
	}
	return nil
}

func validateGroup(where string, g GroupSpec) error {
	if g.Doc == "" {
		return fmt.Errorf("%w: %s has no doc", ErrInvalid, where)
	}
	names := make(map[string]bool)
	for _, d := range g.Datasets {
		if d.Name == "" && d.NeurodataTypeInc == "" && d.NeurodataTypeDef == "" {
			return fmt.Errorf("%w: %s holds an unnamed untyped dataset", ErrInvalid, where)
		}
		if d.Doc == "" {
			return fmt.Errorf("%w: %s/%s has no doc", ErrInvalid, where, d.Name)
		}
		if len(d.Dims) > 0 && len(d.Shape) > 0 && len(d.Dims) != len(d.Shape) {
			return fmt.Errorf("%w: %s/%s has %d dims but shape of rank %d", ErrInvalid, where, d.Name, len(d.Dims), len(d.Shape))
		}
		if d.Name != "" {
			if names[d.Name] {
				return fmt.Errorf("%w: %s holds %s twice", ErrInvalid, where, d.Name)
			}
			names[d.Name] = true
		}
		if err := validateAttributes(where+"/"+d.Name, d.Attributes); err != nil {
			return err
		}
	}
	for _, sub := range g.Groups {
		if sub.Name != "" {
			if names[sub.Name] {
				return fmt.Errorf("%w: %s holds %s twice", ErrInvalid, where, sub.Name)
			}
			names[sub.Name] = true
		}
		if err := validateGroup(where+"/"+sub.Name, sub); err != nil {
			return err
		}
	}
	return validateAttributes(where, g.Attributes)
}

func validateAttributes(where string, attrs []AttributeSpec) error {
	names := make(map[string]bool, len(attrs))
	for _, a := range attrs {
		if a.Name == "" || a.DType == "" {
			return fmt.Errorf("%w: %s holds an attribute without name or dtype", ErrInvalid, where)
		}
		if names[a.Name] {
			return fmt.Errorf("%w: %s holds attribute %s twice", ErrInvalid, where, a.Name)
		}
		names[a.Name] = true
		if len(a.Dims) > 0 && len(a.Shape) > 0 && len(a.Dims) != len(a.Shape) {
			return fmt.Errorf("%w: attribute %s.%s has %d dims but shape of rank %d", ErrInvalid, where, a.Name, len(a.Dims), len(a.Shape))
		}
	}
	return nil
}

func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
