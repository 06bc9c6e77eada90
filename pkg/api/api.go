package api

import (
	"github.com/luscis/vtn/pkg/flowfilter"
	"github.com/luscis/vtn/pkg/schema"
	"github.com/luscis/vtn/pkg/vnode"
)

type FlowFilterer interface {
	// SetFilter replaces the list of owner in direction, an empty list
	// removes it.
	SetFilter(owner vnode.Path, dir flowfilter.Direction, data *schema.FlowFilterList) (*schema.FlowFilterState, error)
	GetFilter(owner vnode.Path, dir flowfilter.Direction) (*schema.FlowFilterState, bool)
	// DelFilter reports whether a list existed. The list is kept when
	// its flows could not be removed.
	DelFilter(owner vnode.Path, dir flowfilter.Direction) (bool, error)
	ListFilters() []schema.FlowFilterState
	RenderFilter(owner vnode.Path, dir flowfilter.Direction) (*schema.FlowText, error)
	ValidateFilter(data *schema.FlowFilterList) (*schema.FlowFilterList, error)
}

type Controller interface {
	FlowFilterer
	Alias() string
	UpTime() int64
}
