package ovsflow

import (
	"github.com/digitalocean/go-openvswitch/ovs"
	"github.com/luscis/vtn/pkg/flowfilter"
	"github.com/luscis/vtn/pkg/libol"
)

// Bridge programs rendered flows into an Open vSwitch bridge. Every change
// goes into one bundle, so a failed change leaves the bridge as it was.
type Bridge struct {
	name string
	cli  *ovs.Client
	out  *libol.SubLogger
}

func NewBridge(name string, options ...ovs.OptionFunc) *Bridge {
	options = append([]ovs.OptionFunc{ovs.Protocols([]string{ovs.ProtocolOpenFlow14})}, options...)
	return &Bridge{
		name: name,
		cli:  ovs.New(options...),
		out:  libol.NewSubLogger(name),
	}
}

func (o *Bridge) Name() string {
	return o.name
}

func (o *Bridge) bundle(del *ovs.MatchFlow, flows []*ovs.Flow) error {
	err := o.cli.OpenFlow.AddFlowBundle(o.name, func(tx *ovs.FlowTransaction) error {
		tx.Delete(del)
		tx.Add(flows...)
		return tx.Commit()
	})
	if err != nil {
		o.out.Warn("Bridge.bundle %s", err)
		return err
	}
	return nil
}

func matchCookie(cookie uint64) *ovs.MatchFlow {
	return &ovs.MatchFlow{
		Table:      ovs.AnyTable,
		Cookie:     cookie,
		CookieMask: CookieMask,
	}
}

// Setup replaces the table-miss flows of the stages.
func (o *Bridge) Setup(flows []*ovs.Flow) error {
	if err := o.bundle(matchCookie(StageCookie), flows); err != nil {
		return err
	}
	o.out.Info("Bridge.Setup %d stages", len(flows))
	return nil
}

// Clear removes every flow of id.
func (o *Bridge) Clear(id *flowfilter.Identity) error {
	return o.Replace(id, nil)
}

// Replace removes the flows of id and adds flows in their place.
func (o *Bridge) Replace(id *flowfilter.Identity, flows []*ovs.Flow) error {
	if err := o.bundle(matchCookie(Cookie(id)), flows); err != nil {
		return err
	}
	o.out.Info("Bridge.Replace %s %d flows", id, len(flows))
	return nil
}
