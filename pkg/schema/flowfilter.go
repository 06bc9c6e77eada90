package schema

// Dispositions carried by FlowFilter.Type.
const (
	FilterPass     = "pass"
	FilterDrop     = "drop"
	FilterRedirect = "redirect"
)

// Action types carried by FlowAction.Type.
const (
	ActionSetDlSrc    = "set-dl-src"
	ActionSetDlDst    = "set-dl-dst"
	ActionSetInetSrc  = "set-inet-src"
	ActionSetInetDst  = "set-inet-dst"
	ActionSetDscp     = "set-inet-dscp"
	ActionSetPortSrc  = "set-port-src"
	ActionSetPortDst  = "set-port-dst"
	ActionSetIcmpType = "set-icmp-type"
	ActionSetIcmpCode = "set-icmp-code"
	ActionSetVlanPcp  = "set-vlan-pcp"
)

// Directions carried in urls and FlowFilterState.
const (
	DirectionIn  = "in"
	DirectionOut = "out"
)

type FlowFilterList struct {
	Filters []FlowFilter `json:"filters,omitempty" yaml:"filters,omitempty"`
}

type FlowFilter struct {
	Index     *int            `json:"index,omitempty" yaml:"index,omitempty"`
	Condition *string         `json:"condition,omitempty" yaml:"condition,omitempty"`
	Type      string          `json:"type,omitempty" yaml:"type,omitempty"`
	Redirect  *RedirectFilter `json:"redirect,omitempty" yaml:"redirect,omitempty"`
	Actions   []FlowAction    `json:"actions,omitempty" yaml:"actions,omitempty"`
}

type RedirectFilter struct {
	Destination *RedirectDestination `json:"destination,omitempty" yaml:"destination,omitempty"`
	Output      *bool                `json:"output,omitempty" yaml:"output,omitempty"`
}

type RedirectDestination struct {
	Bridge    string `json:"bridge,omitempty" yaml:"bridge,omitempty"`
	Terminal  string `json:"terminal,omitempty" yaml:"terminal,omitempty"`
	Interface string `json:"interface,omitempty" yaml:"interface,omitempty"`
}

// FlowAction is one header rewrite. Address carries MAC and IPv4
// literals, Value the numeric payloads.
type FlowAction struct {
	Order   *int   `json:"order,omitempty" yaml:"order,omitempty"`
	Type    string `json:"type,omitempty" yaml:"type,omitempty"`
	Address string `json:"address,omitempty" yaml:"address,omitempty"`
	Value   *int   `json:"value,omitempty" yaml:"value,omitempty"`
}

// FlowFilterState is a list as attached to a node.
type FlowFilterState struct {
	Node      string          `json:"node" yaml:"node"`
	Direction string          `json:"direction" yaml:"direction"`
	Id        string          `json:"id" yaml:"id"`
	Digest    string          `json:"digest,omitempty" yaml:"digest,omitempty"`
	List      *FlowFilterList `json:"list,omitempty" yaml:"list,omitempty"`
}

type FlowText struct {
	Bridge string   `json:"bridge" yaml:"bridge"`
	Flows  []string `json:"flows" yaml:"flows"`
}

func Int(v int) *int {
	return &v
}

func String(v string) *string {
	return &v
}

func Bool(v bool) *bool {
	return &v
}

// Len returns the number of rules in the state.
func (s FlowFilterState) Len() int {
	if s.List == nil {
		return 0
	}
	return len(s.List.Filters)
}
