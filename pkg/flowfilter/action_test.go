package flowfilter

import (
	"errors"
	"testing"

	"github.com/luscis/vtn/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func numberAction(order int, typ string, value int) *schema.FlowAction {
	return &schema.FlowAction{Order: schema.Int(order), Type: typ, Value: schema.Int(value)}
}

func addressAction(order int, typ string, address string) *schema.FlowAction {
	return &schema.FlowAction{Order: schema.Int(order), Type: typ, Address: address}
}

func assertKind(t *testing.T, err error, kind ErrorKind) *Error {
	t.Helper()
	require.Error(t, err)
	var e *Error
	require.True(t, errors.As(err, &e), "must be a validation error: %v", err)
	assert.Equal(t, kind, e.Kind, "be the same.")
	return e
}

func TestParseActionRanges(t *testing.T) {
	cases := []struct {
		typ  string
		max  int
		kind ActionKind
	}{
		{schema.ActionSetDscp, 63, SetIpDscp},
		{schema.ActionSetVlanPcp, 7, SetVlanPriority},
		{schema.ActionSetIcmpType, 255, SetIcmpType},
		{schema.ActionSetIcmpCode, 255, SetIcmpCode},
		{schema.ActionSetPortSrc, 65535, SetTransportSrcPort},
		{schema.ActionSetPortDst, 65535, SetTransportDstPort},
	}
	for _, c := range cases {
		t.Run(c.typ, func(t *testing.T) {
			a, err := ParseAction(numberAction(3, c.typ, 0))
			require.NoError(t, err)
			assert.Equal(t, c.kind, a.Kind(), "be the same.")
			assert.Equal(t, 0, a.Value(), "be the same.")

			a, err = ParseAction(numberAction(3, c.typ, c.max))
			require.NoError(t, err)
			assert.Equal(t, c.max, a.Value(), "be the same.")
			assert.Equal(t, c.max, c.kind.Max(), "be the same.")

			_, err = ParseAction(numberAction(3, c.typ, c.max+1))
			e := assertKind(t, err, InvalidRange)
			assert.Equal(t, c.max+1, e.Value, "be the same.")

			_, err = ParseAction(numberAction(3, c.typ, -1))
			assertKind(t, err, InvalidRange)

			_, err = ParseAction(&schema.FlowAction{Order: schema.Int(3), Type: c.typ})
			assertKind(t, err, InvalidValue)
		})
	}
}

func TestParseActionVlanPriority(t *testing.T) {
	_, err := ParseAction(numberAction(0, schema.ActionSetVlanPcp, 8))
	e := assertKind(t, err, InvalidRange)
	assert.Equal(t, 8, e.Value, "be the same.")
	assert.Contains(t, e.Error(), "VLAN priority")
}

func TestParseActionOrder(t *testing.T) {
	_, err := ParseAction(&schema.FlowAction{Type: schema.ActionSetVlanPcp, Value: schema.Int(1)})
	assertKind(t, err, MissingOrder)

	_, err = ParseAction(nil)
	assertKind(t, err, MissingOrder)

	_, err = ParseAction(numberAction(-1, schema.ActionSetVlanPcp, 1))
	assertKind(t, err, InvalidRange)

	_, err = ParseAction(numberAction(65536, schema.ActionSetVlanPcp, 1))
	assertKind(t, err, InvalidRange)

	a, err := ParseAction(numberAction(65535, schema.ActionSetVlanPcp, 1))
	require.NoError(t, err)
	assert.Equal(t, uint16(65535), a.Order(), "be the same.")
}

func TestParseActionUnsupported(t *testing.T) {
	for _, typ := range []string{"push-vlan", "pop-vlan", "drop", ""} {
		_, err := ParseAction(&schema.FlowAction{Order: schema.Int(1), Type: typ})
		e := assertKind(t, err, UnsupportedAction)
		assert.Equal(t, typ, e.Value, "be the same.")
	}
	// the order is checked first
	_, err := ParseAction(&schema.FlowAction{Type: "push-vlan"})
	assertKind(t, err, MissingOrder)
}

func TestParseActionMac(t *testing.T) {
	a, err := ParseAction(addressAction(1, schema.ActionSetDlSrc, "00:1B:21:3C:4D:5E"))
	require.NoError(t, err)
	assert.Equal(t, SetEthSrc, a.Kind(), "be the same.")
	assert.Equal(t, "00:1b:21:3c:4d:5e", a.Literal(), "be the same.")
	assert.Equal(t, "00:1b:21:3c:4d:5e", a.MAC().String(), "be the same.")

	w := a.Wire()
	assert.Equal(t, "00:1b:21:3c:4d:5e", w.Address, "be the same.")
	assert.Nil(t, w.Value)

	_, err = ParseAction(addressAction(1, schema.ActionSetDlDst, "00:1b:21"))
	assertKind(t, err, InvalidValue)

	_, err = ParseAction(addressAction(1, schema.ActionSetDlDst, "00:00:00:00:fe:80:00:00:00:00:00:00:02:00:5e:10:00:00:00:01"))
	assertKind(t, err, InvalidValue)

	_, err = ParseAction(addressAction(1, schema.ActionSetDlDst, ""))
	assertKind(t, err, InvalidValue)
}

func TestParseActionIPv4(t *testing.T) {
	a, err := ParseAction(addressAction(2, schema.ActionSetInetDst, "192.168.10.1"))
	require.NoError(t, err)
	assert.Equal(t, SetIpDst, a.Kind(), "be the same.")
	assert.Equal(t, "192.168.10.1", a.Addr().String(), "be the same.")
	assert.Equal(t, "2:set-inet-dst=192.168.10.1", a.String(), "be the same.")

	_, err = ParseAction(addressAction(2, schema.ActionSetInetSrc, "fe80::1"))
	assertKind(t, err, InvalidValue)

	_, err = ParseAction(addressAction(2, schema.ActionSetInetSrc, "192.168.10.256"))
	assertKind(t, err, InvalidValue)
}

func TestActionKindNames(t *testing.T) {
	for _, typ := range []string{
		schema.ActionSetDlSrc, schema.ActionSetDlDst,
		schema.ActionSetInetSrc, schema.ActionSetInetDst, schema.ActionSetDscp,
		schema.ActionSetPortSrc, schema.ActionSetPortDst,
		schema.ActionSetIcmpType, schema.ActionSetIcmpCode, schema.ActionSetVlanPcp,
	} {
		k, ok := ParseActionKind(typ)
		assert.True(t, ok, typ)
		assert.Equal(t, typ, k.String(), "be the same.")
	}
	assert.Equal(t, "UNKNOWN (99)", ActionKind(99).String(), "be the same.")
}
