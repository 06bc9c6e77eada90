package controller

import (
	"sync"
	"time"

	"github.com/digitalocean/go-openvswitch/ovs"
	"github.com/luscis/vtn/pkg/cache"
	co "github.com/luscis/vtn/pkg/config"
	"github.com/luscis/vtn/pkg/flowfilter"
	"github.com/luscis/vtn/pkg/libol"
	"github.com/luscis/vtn/pkg/ovsflow"
	"github.com/luscis/vtn/pkg/schema"
	"github.com/luscis/vtn/pkg/vnode"
)

// flowBridge replaces the flows of a list as one transaction.
type flowBridge interface {
	Setup(flows []*ovs.Flow) error
	Clear(id *flowfilter.Identity) error
	Replace(id *flowfilter.Identity, flows []*ovs.Flow) error
}

type Controller struct {
	cfg    *co.Controller
	render *ovsflow.Renderer
	bridge flowBridge
	http   *Http
	out    *libol.SubLogger
	lock   sync.Mutex
	uptime int64
}

func NewController(c *co.Controller) *Controller {
	v := &Controller{
		cfg:    c,
		render: ovsflow.NewRenderer(c),
		out:    libol.NewSubLogger("controller"),
	}
	if c.Apply {
		v.bridge = ovsflow.NewBridge(c.Bridge)
	}
	return v
}

func (v *Controller) Initialize() {
	v.lock.Lock()
	defer v.lock.Unlock()

	if v.bridge != nil {
		if err := v.bridge.Setup(v.render.Defaults()); err != nil {
			v.out.Error("Controller.Initialize %s", err)
		}
	}
	if v.cfg.Http != nil {
		v.http = NewHttp(v, v.cfg.Http.Listen)
		v.http.Initialize()
	}
}

func (v *Controller) Start() {
	v.lock.Lock()
	defer v.lock.Unlock()

	v.out.Info("Controller.Start")
	v.uptime = time.Now().Unix()
	if v.http != nil {
		v.http.Start()
	}
}

func (v *Controller) Stop() {
	v.lock.Lock()
	defer v.lock.Unlock()

	v.out.Info("Controller.Stop")
	if v.http != nil {
		v.http.Shutdown()
	}
}

func (v *Controller) Alias() string {
	return v.cfg.Alias
}

func (v *Controller) UpTime() int64 {
	if v.uptime == 0 {
		return 0
	}
	return time.Now().Unix() - v.uptime
}

func (v *Controller) Config() *co.Controller {
	return v.cfg
}

func (v *Controller) state(id *flowfilter.Identity, l *flowfilter.List) *schema.FlowFilterState {
	state := &schema.FlowFilterState{
		Node:      id.Owner().String(),
		Direction: id.Direction().Wire(),
		Id:        id.String(),
		Digest:    l.Digest(),
	}
	// Lists in the registry were checked against their owner already.
	state.List, _ = l.Wire(nil)
	return state
}

func (v *Controller) apply(id *flowfilter.Identity, l *flowfilter.List) error {
	if v.bridge == nil {
		return nil
	}
	if l.IsEmpty() {
		return v.bridge.Clear(id)
	}
	flows, err := v.render.Render(id, l)
	if err != nil {
		return err
	}
	return v.bridge.Replace(id, flows)
}

func (v *Controller) SetFilter(owner vnode.Path, dir flowfilter.Direction, data *schema.FlowFilterList) (*schema.FlowFilterState, error) {
	v.lock.Lock()
	defer v.lock.Unlock()

	id := flowfilter.NewIdentity(owner, dir)
	l, err := flowfilter.NewList(data, true)
	if err != nil {
		recordError(err)
		v.out.Warn("Controller.SetFilter %s: %s", id, err)
		return nil, err
	}
	if _, err := l.Wire(owner); err != nil {
		recordError(err)
		v.out.Warn("Controller.SetFilter %s: %s", id, err)
		return nil, err
	}
	if err := v.apply(id, l); err != nil {
		recordError(err)
		v.out.Error("Controller.SetFilter %s: %s", id, err)
		return nil, err
	}
	cache.FlowFilter.Set(id, l)
	updateMetric.Inc()
	v.out.Info("Controller.SetFilter %s %d rules", id, l.Len())
	return v.state(id, l), nil
}

func (v *Controller) GetFilter(owner vnode.Path, dir flowfilter.Direction) (*schema.FlowFilterState, bool) {
	id := flowfilter.NewIdentity(owner, dir)
	l := cache.FlowFilter.Get(id)
	if l == nil {
		return nil, false
	}
	return v.state(id, l), true
}

// DelFilter keeps the list when its flows cannot be removed.
func (v *Controller) DelFilter(owner vnode.Path, dir flowfilter.Direction) (bool, error) {
	v.lock.Lock()
	defer v.lock.Unlock()

	id := flowfilter.NewIdentity(owner, dir)
	if cache.FlowFilter.Get(id) == nil {
		return false, nil
	}
	if err := v.apply(id, nil); err != nil {
		recordError(err)
		v.out.Error("Controller.DelFilter %s: %s", id, err)
		return true, err
	}
	cache.FlowFilter.Del(id)
	updateMetric.Inc()
	v.out.Info("Controller.DelFilter %s", id)
	return true, nil
}

// ListFilters returns every configured list ordered by identity.
func (v *Controller) ListFilters() []schema.FlowFilterState {
	items := make([]schema.FlowFilterState, 0, cache.FlowFilter.Len())
	for l := range cache.FlowFilter.List() {
		if l == nil {
			break
		}
		items = append(items, *v.state(l.Identity(), l))
	}
	return items
}

func (v *Controller) RenderFilter(owner vnode.Path, dir flowfilter.Direction) (*schema.FlowText, error) {
	id := flowfilter.NewIdentity(owner, dir)
	text := &schema.FlowText{
		Bridge: v.cfg.Bridge,
		Flows:  []string{},
	}
	l := cache.FlowFilter.Get(id)
	if l == nil {
		return text, nil
	}
	flows, err := v.render.Render(id, l)
	if err != nil {
		return nil, err
	}
	lines, err := ovsflow.Text(flows)
	if err != nil {
		return nil, err
	}
	text.Flows = lines
	return text, nil
}

// ValidateFilter checks data without attaching it to a node and returns
// the normalized form.
func (v *Controller) ValidateFilter(data *schema.FlowFilterList) (*schema.FlowFilterList, error) {
	l, err := flowfilter.NewList(data, false)
	if err != nil {
		recordError(err)
		return nil, err
	}
	ret, _ := l.Wire(nil)
	if ret == nil {
		ret = &schema.FlowFilterList{}
	}
	return ret, nil
}
