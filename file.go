package motionsvd

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Container is a named object stored in a processing module.
type Container interface {
	Name() string
	ObjectID() string
	NeurodataType() string
}

// File is the session-level grouping written to and read from disk.
type File struct {
	identifier         string
	sessionDescription string
	sessionStartTime   time.Time
	objectID           string

	modules []*ProcessingModule
}

// NewFile creates an empty session. identifier should be unique to the
// session; sessionDescription must not be empty.
func NewFile(sessionDescription, identifier string, sessionStartTime time.Time) (*File, error) {
	if sessionDescription == "" {
		return nil, fmt.Errorf("%w: session description is empty", ErrConfig)
	}
	if identifier == "" {
		return nil, fmt.Errorf("%w: identifier is empty", ErrConfig)
	}
	return &File{
		identifier:         identifier,
		sessionDescription: sessionDescription,
		sessionStartTime:   sessionStartTime,
		objectID:           uuid.NewString(),
	}, nil
}

// Identifier returns the unique session identifier.
func (f *File) Identifier() string { return f.identifier }

func (f *File) SessionDescription() string { return f.sessionDescription }

// SessionStartTime returns the time the recording session started.
func (f *File) SessionStartTime() time.Time { return f.sessionStartTime }

func (f *File) ObjectID() string { return f.objectID }

// CreateProcessingModule adds a new, empty processing module.
func (f *File) CreateProcessingModule(name, description string) (*ProcessingModule, error) {
	if err := checkName("processing module", name); err != nil {
		return nil, err
	}
	if _, ok := f.ProcessingModule(name); ok {
		return nil, fmt.Errorf("%w: processing module %s already exists", ErrConfig, name)
	}
	m := &ProcessingModule{
		name:        name,
		description: description,
		objectID:    uuid.NewString(),
	}
	f.modules = append(f.modules, m)
	return m, nil
}

// ProcessingModule returns the module called name.
func (f *File) ProcessingModule(name string) (*ProcessingModule, bool) {
	for _, m := range f.modules {
		if m.name == name {
			return m, true
		}
	}
	return nil, false
}

// ProcessingModules returns the modules in creation order.
func (f *File) ProcessingModules() []*ProcessingModule {
	return append([]*ProcessingModule(nil), f.modules...)
}

// ProcessingModule groups processed data of one kind, e.g. "behavior".
type ProcessingModule struct {
	name        string
	description string
	objectID    string

	containers []Container
}

func (m *ProcessingModule) Name() string { return m.name }

func (m *ProcessingModule) Description() string { return m.description }

func (m *ProcessingModule) ObjectID() string { return m.objectID }

// Add stores c under its name. Names are unique within a module.
func (m *ProcessingModule) Add(c Container) error {
	if c == nil {
		return fmt.Errorf("%w: container is nil", ErrConfig)
	}
	if err := checkName(c.NeurodataType(), c.Name()); err != nil {
		return err
	}
	if _, ok := m.Get(c.Name()); ok {
		return fmt.Errorf("%w: %s already holds %s", ErrConfig, m.name, c.Name())
	}
	m.containers = append(m.containers, c)
	return nil
}

// Get returns the container called name.
func (m *ProcessingModule) Get(name string) (Container, bool) {
	for _, c := range m.containers {
		if c.Name() == name {
			return c, true
		}
	}
	return nil, false
}

// Containers returns the containers in insertion order.
func (m *ProcessingModule) Containers() []Container {
	return append([]Container(nil), m.containers...)
}

// Masks returns the MotionSVDMasks called name.
func (m *ProcessingModule) Masks(name string) (*MotionSVDMasks, bool) {
	c, ok := m.Get(name)
	if !ok {
		return nil, false
	}
	masks, ok := c.(*MotionSVDMasks)
	return masks, ok
}

// Series returns the MotionSVDSeries called name.
func (m *ProcessingModule) Series(name string) (*MotionSVDSeries, bool) {
	c, ok := m.Get(name)
	if !ok {
		return nil, false
	}
	series, ok := c.(*MotionSVDSeries)
	return series, ok
}

// checkName accepts names usable as a single path element.
func checkName(kind, name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: %s name is empty", ErrConfig, kind)
	case name == "." || name == "..", strings.Contains(name, "/"):
		return fmt.Errorf("%w: %s name %q is not a single path element", ErrConfig, kind, name)
	}
	return nil
}
