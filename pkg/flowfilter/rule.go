package flowfilter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/luscis/vtn/pkg/schema"
	"github.com/luscis/vtn/pkg/vnode"
)

const (
	MinIndex = 1
	MaxIndex = 65535
)

// Rule is one entry of a flow filter list: packets matching the named
// condition get the actions applied in ascending order and are then
// handled by the filter's disposition.
type Rule struct {
	index     uint16
	condition string
	filter    Filter
	actions   []*Action
}

// NewRule validates one wire entry. Actions are sorted by their order
// whatever their order on the wire.
func NewRule(w *schema.FlowFilter) (*Rule, error) {
	if w == nil || w.Index == nil {
		return nil, newError(MissingIndex, nil, "Filter index cannot be null")
	}
	index := *w.Index
	if index < MinIndex || index > MaxIndex {
		return nil, newError(InvalidIndex, index, "Invalid filter index: %d", index)
	}
	if w.Condition == nil || *w.Condition == "" {
		return nil, newError(MissingCondition, nil, "Flow condition name cannot be null")
	}
	filter, err := parseFilter(w)
	if err != nil {
		return nil, err
	}
	actions, err := parseActions(w.Actions)
	if err != nil {
		return nil, err
	}
	return &Rule{
		index:     uint16(index),
		condition: *w.Condition,
		filter:    filter,
		actions:   actions,
	}, nil
}

func parseActions(ws []schema.FlowAction) ([]*Action, error) {
	actions := make([]*Action, 0, len(ws))
	for i := range ws {
		a, err := ParseAction(&ws[i])
		if err != nil {
			return nil, err
		}
		actions = append(actions, a)
	}
	sort.SliceStable(actions, func(i, j int) bool {
		return actions[i].order < actions[j].order
	})
	for i := 1; i < len(actions); i++ {
		if order := actions[i].order; order == actions[i-1].order {
			return nil, newError(DuplicateActionOrder, order, "Duplicate action order: %d", order)
		}
	}
	return actions, nil
}

func (r *Rule) Index() uint16 {
	return r.index
}

func (r *Rule) Condition() string {
	return r.condition
}

func (r *Rule) Disposition() Disposition {
	return r.filter.Disposition()
}

func (r *Rule) Filter() Filter {
	return r.filter
}

// Redirect returns the redirect variant, if the rule redirects.
func (r *Rule) Redirect() (RedirectFilter, bool) {
	v, ok := r.filter.(RedirectFilter)
	return v, ok
}

// Actions returns the actions in ascending order.
func (r *Rule) Actions() []*Action {
	actions := make([]*Action, len(r.actions))
	copy(actions, r.actions)
	return actions
}

func (r *Rule) CanApplyTo(owner vnode.Path) error {
	return r.filter.CanApplyTo(owner)
}

// Wire returns the wire entry with the actions in ascending order.
func (r *Rule) Wire() schema.FlowFilter {
	w := schema.FlowFilter{
		Index:     schema.Int(int(r.index)),
		Condition: schema.String(r.condition),
	}
	r.filter.wire(&w)
	if len(r.actions) > 0 {
		w.Actions = make([]schema.FlowAction, 0, len(r.actions))
		for _, a := range r.actions {
			w.Actions = append(w.Actions, a.Wire())
		}
	}
	return w
}

func (r *Rule) Equal(o *Rule) bool {
	if r == nil || o == nil {
		return r == o
	}
	if r.index != o.index || r.condition != o.condition {
		return false
	}
	if !r.filter.equal(o.filter) {
		return false
	}
	if len(r.actions) != len(o.actions) {
		return false
	}
	for i, a := range r.actions {
		if !a.Equal(o.actions[i]) {
			return false
		}
	}
	return true
}

func (r *Rule) String() string {
	actions := make([]string, 0, len(r.actions))
	for _, a := range r.actions {
		actions = append(actions, a.String())
	}
	return fmt.Sprintf("%d %s %s [%s]", r.index, r.condition, r.filter.Disposition(), strings.Join(actions, " "))
}
