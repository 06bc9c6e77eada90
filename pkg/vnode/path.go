// Package vnode names the virtual nodes of a tenant: the tenant itself,
// its bridges and terminals, and the interfaces hosted by them.
//
// Every identifier is a small comparable value, two identifiers are the
// same node when they compare equal with ==.
package vnode

import (
	"regexp"
	"strings"

	"github.com/luscis/vtn/pkg/libol"
)

// Terminal names are marked with this prefix in the string form.
const TerminalMark = "~"

const maxNameLen = 31

var nameRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// Kind is the type of node hosting an interface.
type Kind int

const (
	Bridge Kind = iota + 1
	Terminal
)

func (k Kind) String() string {
	switch k {
	case Bridge:
		return "vbridge"
	case Terminal:
		return "vterminal"
	default:
		return "unknown"
	}
}

// Path identifies a virtual node.
type Path interface {
	String() string
	TenantName() string
}

type TenantPath struct {
	Tenant string
}

func (p TenantPath) String() string {
	return p.Tenant
}

func (p TenantPath) TenantName() string {
	return p.Tenant
}

type BridgePath struct {
	Tenant string
	Bridge string
}

func (p BridgePath) String() string {
	return p.Tenant + "/" + p.Bridge
}

func (p BridgePath) TenantName() string {
	return p.Tenant
}

type TerminalPath struct {
	Tenant   string
	Terminal string
}

func (p TerminalPath) String() string {
	return p.Tenant + "/" + TerminalMark + p.Terminal
}

func (p TerminalPath) TenantName() string {
	return p.Tenant
}

// InterfacePath is an interface on a bridge or a terminal.
type InterfacePath struct {
	Tenant    string
	Kind      Kind
	Node      string
	Interface string
}

func NewBridgeInterface(tenant, bridge, iface string) InterfacePath {
	return InterfacePath{Tenant: tenant, Kind: Bridge, Node: bridge, Interface: iface}
}

func NewTerminalInterface(tenant, terminal, iface string) InterfacePath {
	return InterfacePath{Tenant: tenant, Kind: Terminal, Node: terminal, Interface: iface}
}

func (p InterfacePath) String() string {
	return p.NodePath().String() + "/" + p.Interface
}

func (p InterfacePath) TenantName() string {
	return p.Tenant
}

// NodePath returns the path of the node hosting the interface.
func (p InterfacePath) NodePath() Path {
	if p.Kind == Terminal {
		return TerminalPath{Tenant: p.Tenant, Terminal: p.Node}
	}
	return BridgePath{Tenant: p.Tenant, Bridge: p.Node}
}

// SameInterface reports whether both paths name the same interface of the
// same node, the tenant is not compared.
func (p InterfacePath) SameInterface(o InterfacePath) bool {
	return p.Kind == o.Kind && p.Node == o.Node && p.Interface == o.Interface
}

// InterfaceOf returns the interface named by p, if p is an interface.
func InterfaceOf(p Path) (InterfacePath, bool) {
	switch v := p.(type) {
	case InterfacePath:
		return v, true
	case *InterfacePath:
		if v != nil {
			return *v, true
		}
	}
	return InterfacePath{}, false
}

func CheckName(name string) error {
	if name == "" {
		return libol.NewErr("empty name")
	}
	if len(name) > maxNameLen {
		return libol.NewErr("name %q longer than %d", name, maxNameLen)
	}
	if !nameRe.MatchString(name) {
		return libol.NewErr("invalid name %q", name)
	}
	return nil
}

// Parse inverts the String form of every path type.
func Parse(value string) (Path, error) {
	elems := strings.Split(value, "/")
	if len(elems) > 3 {
		return nil, libol.NewErr("Parse %q: too many elements", value)
	}
	if err := CheckName(elems[0]); err != nil {
		return nil, libol.Wrap(err, "Parse %q", value)
	}
	tenant := elems[0]
	if len(elems) == 1 {
		return TenantPath{Tenant: tenant}, nil
	}
	kind := Bridge
	node := elems[1]
	if strings.HasPrefix(node, TerminalMark) {
		kind = Terminal
		node = strings.TrimPrefix(node, TerminalMark)
	}
	if err := CheckName(node); err != nil {
		return nil, libol.Wrap(err, "Parse %q", value)
	}
	if len(elems) == 2 {
		if kind == Terminal {
			return TerminalPath{Tenant: tenant, Terminal: node}, nil
		}
		return BridgePath{Tenant: tenant, Bridge: node}, nil
	}
	if err := CheckName(elems[2]); err != nil {
		return nil, libol.Wrap(err, "Parse %q", value)
	}
	return InterfacePath{Tenant: tenant, Kind: kind, Node: node, Interface: elems[2]}, nil
}
