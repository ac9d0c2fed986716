package appointment

import "strings"

// PhysicianDirectory answers whether a physician identifier can be booked.
type PhysicianDirectory interface {
	Known(name string) bool
}

var defaultPhysicians = []string{
	"Dr. Green",
	"Dr. Cameron",
	"Dr. Livingston",
	"Dr. Peter",
	"Dr. Powell",
	"Dr. Ramirez",
	"Dr. Lee",
	"Dr. Cruz",
	"Dr. Sharma",
}

// Roster is a fixed, in-memory physician directory.
type Roster struct {
	names []string
	index map[string]struct{}
}

func NewRoster(names []string) *Roster {
	r := &Roster{index: make(map[string]struct{}, len(names))}
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, dup := r.index[n]; dup {
			continue
		}
		r.index[n] = struct{}{}
		r.names = append(r.names, n)
	}
	return r
}

// DefaultRoster returns the clinic's standard physician list.
func DefaultRoster() *Roster {
	return NewRoster(defaultPhysicians)
}

func (r *Roster) Known(name string) bool {
	_, ok := r.index[name]
	return ok
}

// Names returns the roster in its configured order.
func (r *Roster) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}
