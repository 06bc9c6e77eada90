package ovsflow

import (
	"fmt"
	"net"
	"strings"
	"testing"

	"github.com/digitalocean/go-openvswitch/ovs"
	"github.com/luscis/vtn/pkg/config"
	"github.com/luscis/vtn/pkg/flowfilter"
	"github.com/luscis/vtn/pkg/schema"
	"github.com/luscis/vtn/pkg/vnode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRenderer() *Renderer {
	c := &config.Controller{
		Table: 5,
		Conditions: map[string]*config.FlowCondition{
			"web": {DstPort: 80},
			"arp": {Protocol: "arp", SrcMac: "00:11:22:33:44:55"},
			"bad": {Protocol: "sctp"},
		},
		Ports: map[string]int{
			"vtn_1/vbr_1/if_1":  1,
			"vtn_1/vbr_1/if_2":  2,
			"vtn_1/~vtm_1/if_1": 3,
			"vtn_2/vbr_9/if_1":  4,
		},
		Scopes: map[string]int{
			"vtn_1":        1,
			"vtn_1/vbr_1":  1,
			"vtn_1/~vtm_1": 2,
			"vtn_2":        2,
			"vtn_2/vbr_9":  1,
		},
	}
	c.Correct()
	return NewRenderer(c)
}

func newList(t *testing.T, filters ...schema.FlowFilter) *flowfilter.List {
	l, err := flowfilter.NewList(&schema.FlowFilterList{Filters: filters}, true)
	require.NoError(t, err)
	return l
}

func dropWeb(t *testing.T) *flowfilter.List {
	return newList(t, schema.FlowFilter{
		Index:     schema.Int(1),
		Condition: schema.String("web"),
		Type:      schema.FilterDrop,
	})
}

func TestRenderer_Render(t *testing.T) {
	r := newRenderer()
	owner := vnode.NewBridgeInterface("vtn_1", "vbr_1", "if_1")
	id := flowfilter.NewIdentity(owner, flowfilter.Inbound)
	l := newList(t,
		schema.FlowFilter{
			Index:     schema.Int(20),
			Condition: schema.String("arp"),
			Type:      schema.FilterDrop,
		},
		schema.FlowFilter{
			Index:     schema.Int(10),
			Condition: schema.String("web"),
			Type:      schema.FilterPass,
			Actions: []schema.FlowAction{
				{Order: schema.Int(2), Type: schema.ActionSetDscp, Value: schema.Int(10)},
				{Order: schema.Int(1), Type: schema.ActionSetInetDst, Address: "10.0.0.1"},
			},
		},
		schema.FlowFilter{
			Index:     schema.Int(30),
			Condition: schema.String("web"),
			Type:      schema.FilterRedirect,
			Redirect: &schema.RedirectFilter{
				Destination: &schema.RedirectDestination{Terminal: "vtm_1", Interface: "if_1"},
				Output:      schema.Bool(true),
			},
		},
	)
	flows, err := r.Render(id, l)
	require.NoError(t, err)
	require.Len(t, flows, 3)

	cookie := Cookie(id)
	pass := flows[0]
	assert.Equal(t, 5+InputStage, pass.Table, "be the same.")
	assert.Equal(t, 65526, pass.Priority, "be the same.")
	assert.Equal(t, cookie|10, pass.Cookie, "be the same.")
	assert.Equal(t, 1, pass.InPort, "be the same.")
	assert.Equal(t, ovs.ProtocolTCPv4, pass.Protocol, "be the same.")
	assert.Equal(t, []ovs.Match{ovs.TransportDestinationPort(80)}, pass.Matches, "be the same.")
	assert.Equal(t, []ovs.Action{
		ovs.ModNetworkDestination(net.IPv4(10, 0, 0, 1).To4()),
		ovs.SetField("10", "ip_dscp"),
		ovs.Resubmit(0, 5+OutputStage),
	}, pass.Actions, "be the same.")

	drop := flows[1]
	assert.Equal(t, 65516, drop.Priority, "be the same.")
	assert.Equal(t, ovs.ProtocolARP, drop.Protocol, "be the same.")
	assert.Equal(t, []ovs.Action{ovs.Drop()}, drop.Actions, "be the same.")

	redirect := flows[2]
	assert.Equal(t, []ovs.Action{ovs.Output(3)}, redirect.Actions, "be the same.")

	lines, err := Text(flows)
	require.NoError(t, err)
	assert.Len(t, lines, 3)
	for _, line := range lines {
		assert.True(t, strings.Contains(line, "in_port=1"), line)
		assert.True(t, strings.Contains(line, "actions="), line)
	}
}

func TestRenderer_Scope(t *testing.T) {
	r := newRenderer()
	cases := []struct {
		id    *flowfilter.Identity
		stage int
		match string
	}{
		{
			id:    flowfilter.NewIdentity(vnode.TenantPath{Tenant: "vtn_1"}, flowfilter.Inbound),
			stage: TenantStage,
			match: "metadata=0x1000000000000/0xffff000000000001",
		},
		{
			id:    flowfilter.NewIdentity(vnode.TenantPath{Tenant: "vtn_1"}, flowfilter.Outbound),
			stage: TenantStage,
			match: "metadata=0x1000000000001/0xffff000000000001",
		},
		{
			id:    flowfilter.NewIdentity(vnode.BridgePath{Tenant: "vtn_1", Bridge: "vbr_1"}, flowfilter.Inbound),
			stage: NodeStage,
			match: "metadata=0x1000100000000/0xffffffff00000001",
		},
		{
			id:    flowfilter.NewIdentity(vnode.TerminalPath{Tenant: "vtn_1", Terminal: "vtm_1"}, flowfilter.Outbound),
			stage: NodeStage,
			match: "metadata=0x1000200000001/0xffffffff00000001",
		},
		{
			id:    flowfilter.NewIdentity(vnode.NewBridgeInterface("vtn_1", "vbr_1", "if_2"), flowfilter.Outbound),
			stage: OutputStage,
			match: "reg6=2",
		},
	}
	for _, c := range cases {
		flows, err := r.Render(c.id, dropWeb(t))
		require.NoError(t, err, c.id.String())
		require.Len(t, flows, 1)
		assert.Equal(t, 5+c.stage, flows[0].Table, c.id.String())
		lines, err := Text(flows)
		require.NoError(t, err)
		assert.Contains(t, lines[0], c.match, c.id.String())
	}
}

func TestRenderer_ScopeUnique(t *testing.T) {
	r := newRenderer()
	owners := []vnode.Path{
		vnode.TenantPath{Tenant: "vtn_1"},
		vnode.TenantPath{Tenant: "vtn_2"},
		vnode.BridgePath{Tenant: "vtn_1", Bridge: "vbr_1"},
		vnode.BridgePath{Tenant: "vtn_2", Bridge: "vbr_9"},
		vnode.TerminalPath{Tenant: "vtn_1", Terminal: "vtm_1"},
		vnode.NewBridgeInterface("vtn_1", "vbr_1", "if_1"),
		vnode.NewBridgeInterface("vtn_1", "vbr_1", "if_2"),
		vnode.NewTerminalInterface("vtn_1", "vtm_1", "if_1"),
		vnode.NewBridgeInterface("vtn_2", "vbr_9", "if_1"),
	}
	seen := make(map[string]string, 2*len(owners))
	for _, owner := range owners {
		for _, dir := range []flowfilter.Direction{flowfilter.Inbound, flowfilter.Outbound} {
			id := flowfilter.NewIdentity(owner, dir)
			flows, err := r.Render(id, dropWeb(t))
			require.NoError(t, err, id.String())
			require.Len(t, flows, 1)
			flow := flows[0]
			matches := make([]string, 0, len(flow.Matches))
			for _, m := range flow.Matches {
				data, err := m.MarshalText()
				require.NoError(t, err)
				matches = append(matches, string(data))
			}
			key := fmt.Sprintf("table=%d,priority=%d,%s,in_port=%d,%s",
				flow.Table, flow.Priority, flow.Protocol, flow.InPort, strings.Join(matches, ","))
			if other, ok := seen[key]; ok {
				t.Errorf("%s and %s render the same match %s", other, id, key)
			}
			seen[key] = id.String()
		}
	}
	assert.Len(t, seen, 2*len(owners))
}

func TestRenderer_RedirectInput(t *testing.T) {
	r := newRenderer()
	id := flowfilter.NewIdentity(vnode.BridgePath{Tenant: "vtn_1", Bridge: "vbr_1"}, flowfilter.Inbound)
	flows, err := r.Render(id, newList(t, schema.FlowFilter{
		Index:     schema.Int(1),
		Condition: schema.String("web"),
		Type:      schema.FilterRedirect,
		Redirect: &schema.RedirectFilter{
			Destination: &schema.RedirectDestination{Bridge: "vbr_1", Interface: "if_2"},
		},
	}))
	require.NoError(t, err)
	require.Len(t, flows, 1)
	assert.Equal(t, []ovs.Action{ovs.Resubmit(2, 5+InputStage)}, flows[0].Actions, "be the same.")
	lines, err := Text(flows)
	require.NoError(t, err)
	assert.Contains(t, lines[0], "actions=resubmit(2,7)")
}

func TestRenderer_Errors(t *testing.T) {
	r := newRenderer()
	id := flowfilter.NewIdentity(vnode.TenantPath{Tenant: "vtn_1"}, flowfilter.Inbound)

	_, err := r.Render(id, newList(t, schema.FlowFilter{
		Index:     schema.Int(1),
		Condition: schema.String("none"),
		Type:      schema.FilterPass,
	}))
	assert.Error(t, err, "unknown condition")

	_, err = r.Render(id, newList(t, schema.FlowFilter{
		Index:     schema.Int(1),
		Condition: schema.String("bad"),
		Type:      schema.FilterPass,
	}))
	assert.Error(t, err, "unsupported protocol")

	_, err = r.Render(id, newList(t, schema.FlowFilter{
		Index:     schema.Int(1),
		Condition: schema.String("web"),
		Type:      schema.FilterRedirect,
		Redirect: &schema.RedirectFilter{
			Destination: &schema.RedirectDestination{Bridge: "vbr_9", Interface: "if_1"},
		},
	}))
	assert.Error(t, err, "unknown port")

	unscoped := []vnode.Path{
		vnode.TenantPath{Tenant: "vtn_3"},
		vnode.BridgePath{Tenant: "vtn_1", Bridge: "vbr_2"},
		vnode.NewBridgeInterface("vtn_1", "vbr_1", "if_9"),
	}
	for _, owner := range unscoped {
		_, err = r.Render(flowfilter.NewIdentity(owner, flowfilter.Outbound), dropWeb(t))
		assert.Error(t, err, owner.String())
	}
}

func TestRenderer_Empty(t *testing.T) {
	r := newRenderer()
	id := flowfilter.NewIdentity(vnode.TenantPath{Tenant: "vtn_3"}, flowfilter.Inbound)
	flows, err := r.Render(id, nil)
	require.NoError(t, err)
	assert.Empty(t, flows)
}

func TestRenderer_Defaults(t *testing.T) {
	r := newRenderer()
	flows := r.Defaults()
	require.Len(t, flows, Stages)
	for stage, flow := range flows {
		assert.Equal(t, 5+stage, flow.Table, "be the same.")
		assert.Equal(t, 0, flow.Priority, "be the same.")
		assert.Equal(t, StageCookie|uint64(stage), flow.Cookie, "be the same.")
	}
	assert.Equal(t, []ovs.Action{ovs.Resubmit(0, 6)}, flows[TenantStage].Actions, "be the same.")
	assert.Equal(t, []ovs.Action{ovs.Normal()}, flows[OutputStage].Actions, "be the same.")
}

func TestCookie(t *testing.T) {
	a := flowfilter.NewIdentity(vnode.TenantPath{Tenant: "vtn_1"}, flowfilter.Inbound)
	b := flowfilter.NewIdentity(vnode.TenantPath{Tenant: "vtn_1"}, flowfilter.Outbound)
	assert.Equal(t, Cookie(a), Cookie(a), "be the same.")
	assert.NotEqual(t, Cookie(a), Cookie(b), "be different.")
	assert.Equal(t, uint64(0), Cookie(a)&^CookieMask, "lower half is free")
}
