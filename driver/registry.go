package driver

import "fmt"

// None is the registry index meaning no driver is selected
const None uint8 = 0

// Factory constructs a backend
type Factory func(env Env) (Driver, error)

type Registration struct {
	Name string
	New  Factory
}

// Registry is the ordered list of selectable backends. Index 0 is always
// the "None" entry, which has no factory.
type Registry []Registration

// Default lists the backends built into the instrument
var Default = Registry{
	{Name: "None"},
	{Name: "PPM", New: NewPPM},
	{Name: "BLDriver", New: NewBLDriver},
	{Name: "BLCtrl1.2", New: NewBLCtrl},
}

func (r Registry) Names() []string {
	names := make([]string, len(r))
	for i, reg := range r {
		names[i] = reg.Name
	}
	return names
}

// Name returns the display name of index i, or "" when it is out of range
func (r Registry) Name(i uint8) string {
	if int(i) >= len(r) {
		return ""
	}
	return r[i].Name
}

// Index finds the entry whose name matches exactly
func (r Registry) Index(name string) (uint8, bool) {
	for i, reg := range r {
		if reg.Name == name {
			return uint8(i), true
		}
	}
	return None, false
}

// New constructs the backend at index i. Index 0 yields no driver and no error.
func (r Registry) New(i uint8, env Env) (Driver, error) {
	if i == None {
		return nil, nil
	}
	if int(i) >= len(r) || r[i].New == nil {
		return nil, fmt.Errorf("%w: index %d", ErrUnknownDriver, i)
	}

	d, err := r[i].New(env)
	if err != nil {
		return nil, fmt.Errorf("error creating %s driver: %w", r[i].Name, err)
	}
	return d, nil
}
