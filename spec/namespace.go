package spec

import (
	"fmt"
	"slices"
)

// Namespace is the identity and version of a set of extension types.
type Namespace struct {
	Name     string        `yaml:"name"`
	FullName string        `yaml:"full_name,omitempty"`
	Doc      string        `yaml:"doc"`
	Author   []string      `yaml:"author,omitempty"`
	Contact  []string      `yaml:"contact,omitempty"`
	Version  string        `yaml:"version"`
	Schema   []SchemaEntry `yaml:"schema"`
}

// SchemaEntry is either an included namespace or a source document.
type SchemaEntry struct {
	Namespace string `yaml:"namespace,omitempty"`
	Source    string `yaml:"source,omitempty"`
}

// Includes lists the namespaces this one builds on.
func (n Namespace) Includes() []string {
	var out []string
	for _, e := range n.Schema {
		if e.Namespace != "" {
			out = append(out, e.Namespace)
		}
	}
	return out
}

type NamespaceOption func(*NamespaceBuilder) error

// NamespaceBuilder collects the metadata of a namespace before export.
type NamespaceBuilder struct {
	ns       Namespace
	includes []string
}

// NewNamespaceBuilder initializes a builder. name and version are required.
func NewNamespaceBuilder(name, version, doc string, opts ...NamespaceOption) (*NamespaceBuilder, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: namespace name is empty", ErrInvalid)
	}
	if version == "" {
		return nil, fmt.Errorf("%w: namespace %s has no version", ErrInvalid, name)
	}
	b := &NamespaceBuilder{ns: Namespace{Name: name, Version: version, Doc: doc}}
	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// WithAuthor appends authors to the namespace.
func WithAuthor(author ...string) NamespaceOption {
	return func(b *NamespaceBuilder) error {
		b.ns.Author = append(b.ns.Author, author...)
		return nil
	}
}

// WithContact appends contact addresses, one per author.
func WithContact(contact ...string) NamespaceOption {
	return func(b *NamespaceBuilder) error {
		b.ns.Contact = append(b.ns.Contact, contact...)
		return nil
	}
}

func WithFullName(fullName string) NamespaceOption {
	return func(b *NamespaceBuilder) error {
		b.ns.FullName = fullName
		return nil
	}
}

// WithInclude makes the types of another namespace available, e.g. "core".
func WithInclude(namespace string) NamespaceOption {
	return func(b *NamespaceBuilder) error {
		if namespace == "" {
			return fmt.Errorf("%w: included namespace is empty", ErrInvalid)
		}
		if !slices.Contains(b.includes, namespace) {
			b.includes = append(b.includes, namespace)
		}
		return nil
	}
}

// Name returns the namespace name.
func (b *NamespaceBuilder) Name() string { return b.ns.Name }

// Version returns the namespace version.
func (b *NamespaceBuilder) Version() string { return b.ns.Version }

// NamespaceFile is the file name of the namespace document.
func (b *NamespaceBuilder) NamespaceFile() string { return b.ns.Name + ".namespace.yaml" }

// ExtensionsFile is the file name of the extension document.
func (b *NamespaceBuilder) ExtensionsFile() string { return b.ns.Name + ".extensions.yaml" }

// Namespace returns the namespace with its schema entries filled in.
func (b *NamespaceBuilder) Namespace() Namespace {
	ns := b.ns
	ns.Author = slices.Clone(b.ns.Author)
	ns.Contact = slices.Clone(b.ns.Contact)
	ns.Schema = make([]SchemaEntry, 0, len(b.includes)+1)
	for _, inc := range b.includes {
		ns.Schema = append(ns.Schema, SchemaEntry{Namespace: inc})
	}
	ns.Schema = append(ns.Schema, SchemaEntry{Source: b.ExtensionsFile()})
	return ns
}
