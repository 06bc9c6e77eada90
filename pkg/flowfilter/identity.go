package flowfilter

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/luscis/vtn/pkg/libol"
	"github.com/luscis/vtn/pkg/schema"
	"github.com/luscis/vtn/pkg/vnode"
)

// Direction is the traffic direction a list applies to.
type Direction int

const (
	Inbound Direction = iota + 1
	Outbound
)

func (d Direction) String() string {
	switch d {
	case Inbound:
		return "IN"
	case Outbound:
		return "OUT"
	default:
		return fmt.Sprintf("UNKNOWN (%d)", int(d))
	}
}

// Wire returns the lower case form used in urls.
func (d Direction) Wire() string {
	switch d {
	case Inbound:
		return schema.DirectionIn
	case Outbound:
		return schema.DirectionOut
	default:
		return ""
	}
}

func ParseDirection(value string) (Direction, error) {
	switch strings.ToLower(value) {
	case "in", "input", "inbound":
		return Inbound, nil
	case "out", "output", "outbound":
		return Outbound, nil
	default:
		return 0, libol.NewErr("invalid direction %q", value)
	}
}

// Identity names the list attached to one direction of one node.
//
// The canonical string is built on first use and kept in a write-once
// cell. Concurrent first callers may each build it, only the first store
// wins and every caller returns that stored string.
type Identity struct {
	owner     vnode.Path
	direction Direction
	canonical atomic.Pointer[string]
}

func NewIdentity(owner vnode.Path, direction Direction) *Identity {
	return &Identity{
		owner:     owner,
		direction: direction,
	}
}

// ParseIdentity inverts String.
func ParseIdentity(value string) (*Identity, error) {
	pos := strings.LastIndex(value, "%")
	if pos < 0 {
		return nil, libol.NewErr("ParseIdentity %q: no direction", value)
	}
	owner, err := vnode.Parse(value[:pos])
	if err != nil {
		return nil, err
	}
	var direction Direction
	switch value[pos+1:] {
	case "IN":
		direction = Inbound
	case "OUT":
		direction = Outbound
	default:
		return nil, libol.NewErr("ParseIdentity %q: invalid direction", value)
	}
	return NewIdentity(owner, direction), nil
}

func (i *Identity) Owner() vnode.Path {
	return i.owner
}

func (i *Identity) Direction() Direction {
	return i.direction
}

func (i *Identity) format() string {
	return i.owner.String() + "%" + i.direction.String()
}

// String returns "<owner>%IN" or "<owner>%OUT".
func (i *Identity) String() string {
	if s := i.canonical.Load(); s != nil {
		return *s
	}
	s := i.format()
	i.canonical.CompareAndSwap(nil, &s)
	return *i.canonical.Load()
}

// FilterPath returns "<owner>%<DIR>.<index>", the path of one rule.
func (i *Identity) FilterPath(index uint16) string {
	return fmt.Sprintf("%s.%d", i.String(), index)
}

// Equal compares owner and direction only.
func (i *Identity) Equal(o *Identity) bool {
	if i == nil || o == nil {
		return i == o
	}
	if i.direction != o.direction {
		return false
	}
	if i.owner == nil || o.owner == nil {
		return i.owner == nil && o.owner == nil
	}
	return i.owner.String() == o.owner.String()
}
