package config

import "strings"

// FlowCondition is a named packet match referenced by flow filters.
type FlowCondition struct {
	Name        string `json:"-" yaml:"-"`
	Protocol    string `json:"protocol,omitempty" yaml:"protocol,omitempty"` // ip, tcp, udp, icmp or arp.
	SrcMac      string `json:"srcMac,omitempty" yaml:"srcMac,omitempty"`
	DstMac      string `json:"dstMac,omitempty" yaml:"dstMac,omitempty"`
	Source      string `json:"source,omitempty" yaml:"source,omitempty"`
	Destination string `json:"destination,omitempty" yaml:"destination,omitempty"`
	SrcPort     int    `json:"sport,omitempty" yaml:"sport,omitempty"`
	DstPort     int    `json:"dport,omitempty" yaml:"dport,omitempty"`
	IcmpType    *int   `json:"icmpType,omitempty" yaml:"icmpType,omitempty"`
}

func (fc *FlowCondition) Correct() {
	fc.Protocol = strings.ToLower(fc.Protocol)
	fc.SrcMac = strings.ToLower(fc.SrcMac)
	fc.DstMac = strings.ToLower(fc.DstMac)
	if fc.Protocol == "" && (fc.SrcPort > 0 || fc.DstPort > 0) {
		fc.Protocol = "tcp"
	}
	if fc.Protocol == "" && (fc.Source != "" || fc.Destination != "") {
		fc.Protocol = "ip"
	}
	if fc.Protocol == "" && fc.IcmpType != nil {
		fc.Protocol = "icmp"
	}
}
