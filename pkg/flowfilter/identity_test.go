package flowfilter

import (
	"strings"
	"sync"
	"testing"
	"unsafe"

	"github.com/luscis/vtn/pkg/vnode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityString(t *testing.T) {
	id := NewIdentity(vnode.NewBridgeInterface("vtn_1", "vbr_1", "if_2"), Inbound)
	s1 := id.String()
	s2 := id.String()
	assert.Equal(t, "vtn_1/vbr_1/if_2%IN", s1, "be the same.")
	assert.True(t, unsafe.StringData(s1) == unsafe.StringData(s2), "must be the cached string")

	out := NewIdentity(vnode.TerminalPath{Tenant: "vtn_1", Terminal: "vt_1"}, Outbound)
	assert.Equal(t, "vtn_1/~vt_1%OUT", out.String(), "be the same.")
}

func TestIdentityFilterPath(t *testing.T) {
	id := NewIdentity(vnode.BridgePath{Tenant: "vtn_1", Bridge: "vbr_1"}, Outbound)
	assert.Equal(t, "vtn_1/vbr_1%OUT.5", id.FilterPath(5), "be the same.")
	assert.Equal(t, "vtn_1/vbr_1%OUT.9", id.FilterPath(9), "be the same.")
	assert.Equal(t, "vtn_1/vbr_1%OUT.65535", id.FilterPath(65535), "be the same.")
}

func TestIdentityConcurrent(t *testing.T) {
	id := NewIdentity(vnode.TenantPath{Tenant: "vtn_1"}, Inbound)
	values := make([]string, 16)
	var wg sync.WaitGroup
	for i := range values {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			values[i] = id.String()
		}(i)
	}
	wg.Wait()
	for _, v := range values {
		assert.Equal(t, "vtn_1%IN", v, "be the same.")
		assert.True(t, unsafe.StringData(values[0]) == unsafe.StringData(v), "must be the cached string")
	}
}

func TestIdentityEqual(t *testing.T) {
	owner := vnode.NewBridgeInterface("vtn_1", "vbr_1", "if_2")
	a := NewIdentity(owner, Inbound)
	b := NewIdentity(owner, Inbound)
	_ = a.String()
	assert.True(t, a.Equal(b), "cache state must not matter")
	assert.True(t, b.Equal(a))

	assert.False(t, a.Equal(NewIdentity(owner, Outbound)))
	assert.False(t, a.Equal(NewIdentity(vnode.NewBridgeInterface("vtn_1", "vbr_1", "if_3"), Inbound)))
	assert.False(t, a.Equal(nil))
	assert.Equal(t, Inbound, a.Direction(), "be the same.")
	assert.Equal(t, vnode.Path(owner), a.Owner(), "be the same.")
}

func TestParseDirection(t *testing.T) {
	for value, want := range map[string]Direction{
		"in": Inbound, "IN": Inbound, "inbound": Inbound,
		"out": Outbound, "OUT": Outbound, "output": Outbound,
	} {
		d, err := ParseDirection(value)
		require.NoError(t, err)
		assert.Equal(t, want, d, "be the same.")
	}
	_, err := ParseDirection("both")
	assert.Error(t, err)
	assert.Equal(t, "in", Inbound.Wire(), "be the same.")
	assert.Equal(t, "OUT", Outbound.String(), "be the same.")
}

func TestParseIdentity(t *testing.T) {
	for _, id := range []*Identity{
		NewIdentity(vnode.TenantPath{Tenant: "vtn_1"}, Inbound),
		NewIdentity(vnode.BridgePath{Tenant: "vtn_1", Bridge: "vbr_1"}, Outbound),
		NewIdentity(vnode.TerminalPath{Tenant: "vtn_1", Terminal: "vt_1"}, Outbound),
		NewIdentity(vnode.NewTerminalInterface("vtn_1", "vt_1", "if_2"), Inbound),
	} {
		assert.Equal(t, 1, strings.Count(id.String(), "%"), id.String())
		v, err := ParseIdentity(id.String())
		require.NoError(t, err)
		assert.True(t, id.Equal(v), id.String())
		assert.Equal(t, id.Owner(), v.Owner(), "be the same.")
	}

	for _, value := range []string{
		"", "vtn_1", "vtn_1%", "vtn_1%in", "vtn_1%BOTH", "vtn_1/%vt_1%IN", "%IN",
	} {
		_, err := ParseIdentity(value)
		assert.Error(t, err, value)
	}
}
