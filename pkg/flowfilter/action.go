package flowfilter

import (
	"fmt"
	"net"
	"net/netip"
	"strings"

	"github.com/luscis/vtn/pkg/schema"
)

const MaxOrder = 65535

// ActionKind is the header field an Action rewrites.
type ActionKind int

const (
	SetEthSrc ActionKind = iota + 1
	SetEthDst
	SetIpSrc
	SetIpDst
	SetIpDscp
	SetTransportSrcPort
	SetTransportDstPort
	SetIcmpType
	SetIcmpCode
	SetVlanPriority
)

type payload int

const (
	payloadMac payload = iota
	payloadIPv4
	payloadNumber
)

type actionInfo struct {
	wire    string
	title   string
	payload payload
	max     int
}

var actionInfos = map[ActionKind]actionInfo{
	SetEthSrc:           {wire: schema.ActionSetDlSrc, title: "source MAC address", payload: payloadMac},
	SetEthDst:           {wire: schema.ActionSetDlDst, title: "destination MAC address", payload: payloadMac},
	SetIpSrc:            {wire: schema.ActionSetInetSrc, title: "source IP address", payload: payloadIPv4},
	SetIpDst:            {wire: schema.ActionSetInetDst, title: "destination IP address", payload: payloadIPv4},
	SetIpDscp:           {wire: schema.ActionSetDscp, title: "DSCP value", payload: payloadNumber, max: 63},
	SetTransportSrcPort: {wire: schema.ActionSetPortSrc, title: "source port", payload: payloadNumber, max: 65535},
	SetTransportDstPort: {wire: schema.ActionSetPortDst, title: "destination port", payload: payloadNumber, max: 65535},
	SetIcmpType:         {wire: schema.ActionSetIcmpType, title: "ICMP type", payload: payloadNumber, max: 255},
	SetIcmpCode:         {wire: schema.ActionSetIcmpCode, title: "ICMP code", payload: payloadNumber, max: 255},
	SetVlanPriority:     {wire: schema.ActionSetVlanPcp, title: "VLAN priority", payload: payloadNumber, max: 7},
}

var actionKinds = func() map[string]ActionKind {
	kinds := make(map[string]ActionKind, len(actionInfos))
	for k, info := range actionInfos {
		kinds[info.wire] = k
	}
	return kinds
}()

func (k ActionKind) String() string {
	if info, ok := actionInfos[k]; ok {
		return info.wire
	}
	return fmt.Sprintf("UNKNOWN (%d)", int(k))
}

// Max returns the largest value a numeric action accepts, 0 for address
// actions.
func (k ActionKind) Max() int {
	return actionInfos[k].max
}

// ParseActionKind maps a wire action type to its kind.
func ParseActionKind(value string) (ActionKind, bool) {
	k, ok := actionKinds[value]
	return k, ok
}

// Action is one header rewrite of a rule. It is immutable once parsed.
type Action struct {
	order uint16
	kind  ActionKind
	mac   net.HardwareAddr
	addr  netip.Addr
	value int
}

// ParseAction validates one wire action.
func ParseAction(w *schema.FlowAction) (*Action, error) {
	if w == nil || w.Order == nil {
		return nil, newError(MissingOrder, nil, "Action order cannot be null")
	}
	order := *w.Order
	if order < 0 || order > MaxOrder {
		return nil, newError(InvalidRange, order, "Invalid action order: %d", order)
	}
	kind, ok := actionKinds[w.Type]
	if !ok {
		return nil, newError(UnsupportedAction, w.Type, "Unsupported flow action: %q", w.Type)
	}
	a := &Action{order: uint16(order), kind: kind}
	info := actionInfos[kind]
	switch info.payload {
	case payloadMac:
		if w.Address == "" {
			return nil, newError(InvalidValue, nil, "%s: %s cannot be null", kind, info.title)
		}
		hw, err := net.ParseMAC(w.Address)
		if err != nil || len(hw) != 6 {
			return nil, newError(InvalidValue, w.Address, "%s: invalid %s: %s", kind, info.title, w.Address)
		}
		a.mac = hw
	case payloadIPv4:
		if w.Address == "" {
			return nil, newError(InvalidValue, nil, "%s: %s cannot be null", kind, info.title)
		}
		addr, err := netip.ParseAddr(w.Address)
		if err != nil || !addr.Is4() {
			return nil, newError(InvalidValue, w.Address, "%s: invalid %s: %s", kind, info.title, w.Address)
		}
		a.addr = addr
	default:
		if w.Value == nil {
			return nil, newError(InvalidValue, nil, "%s: %s cannot be null", kind, info.title)
		}
		value := *w.Value
		if value < 0 || value > info.max {
			return nil, newError(InvalidRange, value, "%s: invalid %s: %d", kind, info.title, value)
		}
		a.value = value
	}
	return a, nil
}

func (a *Action) Order() uint16 {
	return a.order
}

func (a *Action) Kind() ActionKind {
	return a.kind
}

// MAC returns the address of SetEthSrc and SetEthDst.
func (a *Action) MAC() net.HardwareAddr {
	if a.mac == nil {
		return nil
	}
	hw := make(net.HardwareAddr, len(a.mac))
	copy(hw, a.mac)
	return hw
}

// Addr returns the address of SetIpSrc and SetIpDst.
func (a *Action) Addr() netip.Addr {
	return a.addr
}

// Value returns the payload of the numeric actions.
func (a *Action) Value() int {
	return a.value
}

// Literal is the payload in its wire text form.
func (a *Action) Literal() string {
	switch actionInfos[a.kind].payload {
	case payloadMac:
		return strings.ToLower(a.mac.String())
	case payloadIPv4:
		return a.addr.String()
	default:
		return fmt.Sprintf("%d", a.value)
	}
}

func (a *Action) Wire() schema.FlowAction {
	w := schema.FlowAction{
		Order: schema.Int(int(a.order)),
		Type:  a.kind.String(),
	}
	switch actionInfos[a.kind].payload {
	case payloadMac, payloadIPv4:
		w.Address = a.Literal()
	default:
		w.Value = schema.Int(a.value)
	}
	return w
}

func (a *Action) Equal(o *Action) bool {
	if a == nil || o == nil {
		return a == o
	}
	return a.order == o.order && a.kind == o.kind && a.Literal() == o.Literal()
}

func (a *Action) String() string {
	return fmt.Sprintf("%d:%s=%s", a.order, a.kind, a.Literal())
}
