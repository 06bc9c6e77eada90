package flowfilter

import (
	"fmt"

	"github.com/luscis/vtn/pkg/schema"
	"github.com/luscis/vtn/pkg/vnode"
)

// Disposition is what a rule does with a matched packet once its actions
// have been applied.
type Disposition int

const (
	Pass Disposition = iota + 1
	Drop
	Redirect
)

func (d Disposition) String() string {
	switch d {
	case Pass:
		return schema.FilterPass
	case Drop:
		return schema.FilterDrop
	case Redirect:
		return schema.FilterRedirect
	default:
		return fmt.Sprintf("UNKNOWN (%d)", int(d))
	}
}

// Filter holds the disposition of a rule and the fields only that
// disposition has. The set of implementations is closed.
type Filter interface {
	Disposition() Disposition
	// CanApplyTo checks the filter may be attached to owner.
	CanApplyTo(owner vnode.Path) error
	wire(w *schema.FlowFilter)
	equal(o Filter) bool
}

type PassFilter struct{}

func (PassFilter) Disposition() Disposition {
	return Pass
}

func (PassFilter) CanApplyTo(vnode.Path) error {
	return nil
}

func (PassFilter) wire(w *schema.FlowFilter) {
	w.Type = schema.FilterPass
}

func (PassFilter) equal(o Filter) bool {
	_, ok := o.(PassFilter)
	return ok
}

type DropFilter struct{}

func (DropFilter) Disposition() Disposition {
	return Drop
}

func (DropFilter) CanApplyTo(vnode.Path) error {
	return nil
}

func (DropFilter) wire(w *schema.FlowFilter) {
	w.Type = schema.FilterDrop
}

func (DropFilter) equal(o Filter) bool {
	_, ok := o.(DropFilter)
	return ok
}

// RedirectFilter forwards matched packets to an interface of the same
// tenant. Output selects the output side of that interface instead of the
// input side.
type RedirectFilter struct {
	kind   vnode.Kind
	node   string
	iface  string
	output bool
}

func (r RedirectFilter) Disposition() Disposition {
	return Redirect
}

// Destination returns the target interface within tenant.
func (r RedirectFilter) Destination(tenant string) vnode.InterfacePath {
	return vnode.InterfacePath{
		Tenant:    tenant,
		Kind:      r.kind,
		Node:      r.node,
		Interface: r.iface,
	}
}

func (r RedirectFilter) Output() bool {
	return r.output
}

func (r RedirectFilter) CanApplyTo(owner vnode.Path) error {
	if owner == nil {
		return nil
	}
	iface, ok := vnode.InterfaceOf(owner)
	if !ok {
		return nil
	}
	if r.Destination(iface.Tenant).SameInterface(iface) {
		return newError(SelfRedirection, owner.String(),
			"Self redirection is not allowed: %s", owner)
	}
	return nil
}

func (r RedirectFilter) wire(w *schema.FlowFilter) {
	w.Type = schema.FilterRedirect
	dst := &schema.RedirectDestination{Interface: r.iface}
	if r.kind == vnode.Terminal {
		dst.Terminal = r.node
	} else {
		dst.Bridge = r.node
	}
	w.Redirect = &schema.RedirectFilter{
		Destination: dst,
		Output:      schema.Bool(r.output),
	}
}

func (r RedirectFilter) equal(o Filter) bool {
	v, ok := o.(RedirectFilter)
	return ok && v == r
}

func (r RedirectFilter) String() string {
	side := "in"
	if r.output {
		side = "out"
	}
	return fmt.Sprintf("%s %s/%s (%s)", r.kind, r.node, r.iface, side)
}

func parseFilter(w *schema.FlowFilter) (Filter, error) {
	switch w.Type {
	case "":
		return nil, newError(MissingFilterType, nil, "Flow filter type cannot be null")
	case schema.FilterPass:
		return PassFilter{}, nil
	case schema.FilterDrop:
		return DropFilter{}, nil
	case schema.FilterRedirect:
		return parseRedirect(w.Redirect)
	default:
		return nil, newError(UnknownFilterType, w.Type, "Unexpected flow filter type: %q", w.Type)
	}
}

func parseRedirect(w *schema.RedirectFilter) (Filter, error) {
	if w == nil || w.Destination == nil {
		return nil, newError(MissingDestination, nil, "Redirect destination cannot be null")
	}
	dst := w.Destination
	r := RedirectFilter{iface: dst.Interface}
	switch {
	case dst.Bridge != "" && dst.Terminal != "":
		return nil, newError(InvalidDestination, *dst,
			"Redirect destination names both bridge %q and terminal %q", dst.Bridge, dst.Terminal)
	case dst.Bridge != "":
		r.kind, r.node = vnode.Bridge, dst.Bridge
	case dst.Terminal != "":
		r.kind, r.node = vnode.Terminal, dst.Terminal
	default:
		return nil, newError(InvalidDestination, *dst, "Redirect destination node cannot be null")
	}
	if err := vnode.CheckName(r.node); err != nil {
		return nil, newError(InvalidDestination, *dst, "Invalid redirect destination node: %s", err)
	}
	if dst.Interface == "" {
		return nil, newError(InvalidDestination, *dst, "Redirect destination interface cannot be null")
	}
	if err := vnode.CheckName(dst.Interface); err != nil {
		return nil, newError(InvalidDestination, *dst, "Invalid redirect destination interface: %s", err)
	}
	if w.Output != nil {
		r.output = *w.Output
	}
	return r, nil
}
