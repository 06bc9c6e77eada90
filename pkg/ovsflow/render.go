package ovsflow

import (
	"hash/fnv"
	"net"
	"strconv"

	"github.com/digitalocean/go-openvswitch/ovs"
	"github.com/luscis/vtn/pkg/config"
	"github.com/luscis/vtn/pkg/flowfilter"
	"github.com/luscis/vtn/pkg/libol"
	"github.com/luscis/vtn/pkg/vnode"
)

const (
	// Priority of the rule with index 0, the lowest index wins.
	basePriority = 65536
	CookieMask   = uint64(0xffffffff00000000)
	// StageCookie marks the table-miss flows of the stages.
	StageCookie = CookieMask
)

// Stages of the filter pipeline, one table each counted from
// Renderer.Table. Within a stage every packet carries a single scope, so
// the lists of two owners never compete for the same packet.
const (
	TenantStage = iota
	NodeStage
	InputStage
	OutputStage
	Stages
)

// The classifier in front of the pipeline loads the scope of a packet
// into metadata: the tenant id, the id of the bridge or terminal and
// whether the packet leaves the node. The output port it resolved goes
// into OutPortField.
const (
	TenantShift  = 48
	NodeShift    = 32
	TenantMask   = uint64(0xffff) << TenantShift
	NodeMask     = uint64(0xffff) << NodeShift
	OutgoingBit  = uint64(1)
	OutPortField = "reg6"
)

var protocols = map[string]ovs.Protocol{
	"ip":   ovs.ProtocolIPv4,
	"tcp":  ovs.ProtocolTCPv4,
	"udp":  ovs.ProtocolUDPv4,
	"icmp": ovs.ProtocolICMPv4,
	"arp":  ovs.ProtocolARP,
}

// Renderer translates filter lists into OpenFlow flows.
type Renderer struct {
	Table      int
	Conditions map[string]*config.FlowCondition
	Ports      map[string]int
	Scopes     map[string]int
	out        *libol.SubLogger
}

func NewRenderer(c *config.Controller) *Renderer {
	return &Renderer{
		Table:      c.Table,
		Conditions: c.Conditions,
		Ports:      c.Ports,
		Scopes:     c.Scopes,
		out:        libol.NewSubLogger("ovsflow"),
	}
}

// Cookie returns the cookie shared by the flows of id. The rule index goes
// into the lower half.
func Cookie(id *flowfilter.Identity) uint64 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id.String()))
	return uint64(h.Sum32()) << 32
}

func (r *Renderer) port(path vnode.InterfacePath) (int, bool) {
	port, ok := r.Ports[path.String()]
	return port, ok
}

func (r *Renderer) scopeId(path vnode.Path) (uint64, error) {
	id, ok := r.Scopes[path.String()]
	if !ok {
		return 0, libol.NewErr("unknown scope of %s", path)
	}
	return uint64(id), nil
}

// Stage returns the stage the lists of owner in dir are rendered into.
func Stage(owner vnode.Path, dir flowfilter.Direction) int {
	switch owner.(type) {
	case vnode.TenantPath:
		return TenantStage
	case vnode.InterfacePath:
		if dir == flowfilter.Outbound {
			return OutputStage
		}
		return InputStage
	default:
		return NodeStage
	}
}

// scope returns a flow holding the table and the matches that limit a
// flow to the packets of id.
func (r *Renderer) scope(id *flowfilter.Identity) (*ovs.Flow, error) {
	owner := id.Owner()
	stage := Stage(owner, id.Direction())
	flow := &ovs.Flow{Table: r.Table + stage}
	switch v := owner.(type) {
	case vnode.InterfacePath:
		port, ok := r.port(v)
		if !ok {
			return nil, libol.NewErr("unknown port of %s", v)
		}
		if stage == InputStage {
			flow.InPort = port
		} else {
			flow.Matches = append(flow.Matches, ovs.FieldMatch(OutPortField, strconv.Itoa(port)))
		}
		return flow, nil
	case vnode.TenantPath, vnode.BridgePath, vnode.TerminalPath:
		tenant, err := r.scopeId(vnode.TenantPath{Tenant: owner.TenantName()})
		if err != nil {
			return nil, err
		}
		data := tenant << TenantShift
		mask := TenantMask | OutgoingBit
		if stage == NodeStage {
			node, err := r.scopeId(owner)
			if err != nil {
				return nil, err
			}
			data |= node << NodeShift
			mask |= NodeMask
		}
		if id.Direction() == flowfilter.Outbound {
			data |= OutgoingBit
		}
		flow.Matches = append(flow.Matches, ovs.MetadataWithMask(data, mask))
		return flow, nil
	default:
		return nil, libol.NewErr("cannot scope %s", owner)
	}
}

// Render returns one flow per rule of l in ascending index order.
func (r *Renderer) Render(id *flowfilter.Identity, l *flowfilter.List) ([]*ovs.Flow, error) {
	if l.IsEmpty() {
		return []*ovs.Flow{}, nil
	}
	scope, err := r.scope(id)
	if err != nil {
		return nil, libol.Wrap(err, "%s", id)
	}
	cookie := Cookie(id)
	stage := scope.Table - r.Table
	flows := make([]*ovs.Flow, 0, l.Len())
	for _, rule := range l.Rules() {
		flow, err := r.flow(id.Owner(), stage, rule)
		if err != nil {
			return nil, libol.Wrap(err, "%s", id.FilterPath(rule.Index()))
		}
		flow.Table = scope.Table
		flow.InPort = scope.InPort
		flow.Matches = append(append([]ovs.Match{}, scope.Matches...), flow.Matches...)
		flow.Priority = basePriority - int(rule.Index())
		flow.Cookie = cookie | uint64(rule.Index())
		flows = append(flows, flow)
	}
	r.out.Debug("Renderer.Render %s %d flows", id, len(flows))
	return flows, nil
}

// next is the action that hands a passed packet to the following stage.
func (r *Renderer) next(stage int) ovs.Action {
	if stage+1 < Stages {
		return ovs.Resubmit(0, r.Table+stage+1)
	}
	return ovs.Normal()
}

// Defaults returns the table-miss flow of every stage.
func (r *Renderer) Defaults() []*ovs.Flow {
	flows := make([]*ovs.Flow, 0, Stages)
	for stage := 0; stage < Stages; stage++ {
		flows = append(flows, &ovs.Flow{
			Table:   r.Table + stage,
			Cookie:  StageCookie | uint64(stage),
			Actions: []ovs.Action{r.next(stage)},
		})
	}
	return flows
}

func (r *Renderer) flow(owner vnode.Path, stage int, rule *flowfilter.Rule) (*ovs.Flow, error) {
	cond, ok := r.Conditions[rule.Condition()]
	if !ok || cond == nil {
		return nil, libol.NewErr("unknown flow condition %q", rule.Condition())
	}
	flow := &ovs.Flow{}
	if err := match(flow, cond); err != nil {
		return nil, err
	}
	// Rewrites are meaningless on dropped packets and drop must be the
	// only action of a flow.
	if rule.Disposition() == flowfilter.Drop {
		flow.Actions = []ovs.Action{ovs.Drop()}
		return flow, nil
	}
	for _, a := range rule.Actions() {
		flow.Actions = append(flow.Actions, action(a))
	}
	switch rule.Disposition() {
	case flowfilter.Pass:
		flow.Actions = append(flow.Actions, r.next(stage))
	case flowfilter.Redirect:
		redirect, _ := rule.Redirect()
		dst := redirect.Destination(owner.TenantName())
		port, ok := r.port(dst)
		if !ok {
			return nil, libol.NewErr("unknown port of %s", dst)
		}
		if redirect.Output() {
			flow.Actions = append(flow.Actions, ovs.Output(port))
		} else {
			// Received again on dst, its inbound list applies.
			flow.Actions = append(flow.Actions, ovs.Resubmit(port, r.Table+InputStage))
		}
	}
	return flow, nil
}

func match(flow *ovs.Flow, cond *config.FlowCondition) error {
	if cond.Protocol != "" {
		proto, ok := protocols[cond.Protocol]
		if !ok {
			return libol.NewErr("unsupported protocol %q", cond.Protocol)
		}
		flow.Protocol = proto
	}
	if cond.SrcMac != "" {
		flow.Matches = append(flow.Matches, ovs.DataLinkSource(cond.SrcMac))
	}
	if cond.DstMac != "" {
		flow.Matches = append(flow.Matches, ovs.DataLinkDestination(cond.DstMac))
	}
	if cond.Source != "" {
		flow.Matches = append(flow.Matches, ovs.NetworkSource(cond.Source))
	}
	if cond.Destination != "" {
		flow.Matches = append(flow.Matches, ovs.NetworkDestination(cond.Destination))
	}
	if cond.SrcPort > 0 {
		flow.Matches = append(flow.Matches, ovs.TransportSourcePort(uint16(cond.SrcPort)))
	}
	if cond.DstPort > 0 {
		flow.Matches = append(flow.Matches, ovs.TransportDestinationPort(uint16(cond.DstPort)))
	}
	if cond.IcmpType != nil {
		flow.Matches = append(flow.Matches, ovs.ICMPType(uint8(*cond.IcmpType)))
	}
	return nil
}

func action(a *flowfilter.Action) ovs.Action {
	switch a.Kind() {
	case flowfilter.SetEthSrc:
		return ovs.ModDataLinkSource(a.MAC())
	case flowfilter.SetEthDst:
		return ovs.ModDataLinkDestination(a.MAC())
	case flowfilter.SetIpSrc:
		return ovs.ModNetworkSource(net.IP(a.Addr().AsSlice()))
	case flowfilter.SetIpDst:
		return ovs.ModNetworkDestination(net.IP(a.Addr().AsSlice()))
	case flowfilter.SetTransportSrcPort:
		return ovs.ModTransportSourcePort(uint16(a.Value()))
	case flowfilter.SetTransportDstPort:
		return ovs.ModTransportDestinationPort(uint16(a.Value()))
	case flowfilter.SetIpDscp:
		return ovs.SetField(strconv.Itoa(a.Value()), "ip_dscp")
	case flowfilter.SetIcmpType:
		return ovs.SetField(strconv.Itoa(a.Value()), "icmp_type")
	case flowfilter.SetIcmpCode:
		return ovs.SetField(strconv.Itoa(a.Value()), "icmp_code")
	default:
		return ovs.SetField(strconv.Itoa(a.Value()), "vlan_pcp")
	}
}

// Text returns the ovs-ofctl form of flows, one line each.
func Text(flows []*ovs.Flow) ([]string, error) {
	lines := make([]string, 0, len(flows))
	for _, flow := range flows {
		data, err := flow.MarshalText()
		if err != nil {
			return nil, err
		}
		lines = append(lines, string(data))
	}
	return lines, nil
}
