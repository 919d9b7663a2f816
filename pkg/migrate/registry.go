package migrate

import (
	"github.com/pkg/errors"
)

// ErrUnknownMigration is returned when a Factory has nothing registered for a descriptor.
var ErrUnknownMigration = errors.New("unknown migration")

// Factory turns a descriptor into an executable migration. The Manager calls
// Resolve once per pending migration and discards the result after use.
type Factory interface {
	Resolve(d Descriptor) (Migration, error)
}

// FactoryFunc adapts a function to the Factory interface.
type FactoryFunc func(d Descriptor) (Migration, error)

// Resolve calls f(d).
func (f FactoryFunc) Resolve(d Descriptor) (Migration, error) {
	return f(d)
}

// Constructor builds a fresh migration instance.
type Constructor func() (Migration, error)

// Registry is a Factory backed by a map of constructors. It also remembers
// registration order so it can serve as the migration list.
type Registry struct {
	constructors map[Descriptor]Constructor
	order        []Descriptor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{constructors: make(map[Descriptor]Constructor)}
}

// Register adds a constructor for d. Registering the same descriptor twice is an error.
func (r *Registry) Register(d Descriptor, c Constructor) error {
	if d == "" {
		return errors.New("migration descriptor must not be empty")
	}
	if c == nil {
		return errors.Errorf("migration %s has no constructor", d)
	}
	if _, ok := r.constructors[d]; ok {
		return errors.Errorf("migration %s is already registered", d)
	}
	r.constructors[d] = c
	r.order = append(r.order, d)
	return nil
}

// RegisterFunc registers a stateless function migration.
func (r *Registry) RegisterFunc(d Descriptor, f Func) error {
	if f == nil {
		return errors.Errorf("migration %s has no function", d)
	}
	return r.Register(d, func() (Migration, error) { return f, nil })
}

// Resolve implements Factory.
func (r *Registry) Resolve(d Descriptor) (Migration, error) {
	c, ok := r.constructors[d]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownMigration, "%s", d)
	}
	m, err := c()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to construct migration %s", d)
	}
	if m == nil {
		return nil, errors.Errorf("constructor for migration %s returned nil", d)
	}
	return m, nil
}

// Descriptors returns the registered descriptors in registration order.
func (r *Registry) Descriptors() []Descriptor {
	out := make([]Descriptor, len(r.order))
	copy(out, r.order)
	return out
}
