package flowfilter

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"

	"github.com/luscis/vtn/pkg/libol"
	"github.com/luscis/vtn/pkg/schema"
	"github.com/luscis/vtn/pkg/vnode"
)

var out = libol.NewSubLogger("flowfilter")

// List is the ordered set of rules attached to one direction of a node.
// A list is replaced as a whole, never modified in place.
//
// A nil *List means no list is configured. All read methods accept a nil
// receiver and treat it like an empty list.
type List struct {
	id      *Identity
	entries map[uint16]*Rule
	indices []uint16
}

// NewList validates every entry of w. The first invalid entry fails the
// whole list. When w holds no entries the result is nil if
// allowEmptyAsNull is set, otherwise an empty list.
func NewList(w *schema.FlowFilterList, allowEmptyAsNull bool) (*List, error) {
	if w == nil || len(w.Filters) == 0 {
		if allowEmptyAsNull {
			return nil, nil
		}
		return &List{entries: map[uint16]*Rule{}}, nil
	}
	entries := make(map[uint16]*Rule, len(w.Filters))
	for i := range w.Filters {
		rule, err := NewRule(&w.Filters[i])
		if err != nil {
			return nil, err
		}
		if _, ok := entries[rule.index]; ok {
			return nil, newError(DuplicateIndex, rule.index, "Duplicate flow filter index: %d", rule.index)
		}
		entries[rule.index] = rule
	}
	indices := make([]uint16, 0, len(entries))
	for index := range entries {
		indices = append(indices, index)
	}
	sort.Slice(indices, func(i, j int) bool {
		return indices[i] < indices[j]
	})
	out.Debug("NewList %d rules", len(indices))
	return &List{entries: entries, indices: indices}, nil
}

// Bind returns a copy of the list carrying id.
func (l *List) Bind(id *Identity) *List {
	if l == nil {
		return nil
	}
	return &List{id: id, entries: l.entries, indices: l.indices}
}

// Identity returns the identity the list is bound to, nil if unbound.
func (l *List) Identity() *Identity {
	if l == nil {
		return nil
	}
	return l.id
}

func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return len(l.indices)
}

func (l *List) IsEmpty() bool {
	return l.Len() == 0
}

// Rules returns the rules in ascending index order.
func (l *List) Rules() []*Rule {
	if l == nil {
		return nil
	}
	rules := make([]*Rule, 0, len(l.indices))
	for _, index := range l.indices {
		rules = append(rules, l.entries[index])
	}
	return rules
}

func (l *List) Get(index uint16) (*Rule, bool) {
	if l == nil {
		return nil, false
	}
	r, ok := l.entries[index]
	return r, ok
}

func (l *List) wire() *schema.FlowFilterList {
	if l.IsEmpty() {
		return nil
	}
	w := &schema.FlowFilterList{
		Filters: make([]schema.FlowFilter, 0, len(l.indices)),
	}
	for _, rule := range l.Rules() {
		w.Filters = append(w.Filters, rule.Wire())
	}
	return w
}

// Wire checks every rule may be attached to owner and returns the wire
// form, nil for an empty list.
func (l *List) Wire(owner vnode.Path) (*schema.FlowFilterList, error) {
	for _, rule := range l.Rules() {
		if err := rule.CanApplyTo(owner); err != nil {
			return nil, err
		}
	}
	return l.wire(), nil
}

// Equal compares the rules of both lists, the identity is ignored.
func (l *List) Equal(o *List) bool {
	if l.Len() != o.Len() {
		return false
	}
	for _, rule := range l.Rules() {
		r, ok := o.Get(rule.index)
		if !ok || !r.Equal(rule) {
			return false
		}
	}
	return true
}

// Digest returns the sha256 of the normalized wire form, equal lists have
// equal digests. It is empty for an empty list.
func (l *List) Digest() string {
	w := l.wire()
	if w == nil {
		return ""
	}
	data, err := json.Marshal(w)
	if err != nil {
		out.Error("List.Digest %s", err)
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
