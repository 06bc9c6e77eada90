package cache

import (
	"github.com/luscis/vtn/pkg/flowfilter"
	"github.com/luscis/vtn/pkg/libol"
)

type flowFilter struct {
	Lists *libol.SafeStrMap
}

// Set replaces the list of id as a whole. A nil or empty list removes it.
func (f *flowFilter) Set(id *flowfilter.Identity, l *flowfilter.List) {
	if l.IsEmpty() {
		f.Del(id)
		return
	}
	if err := f.Lists.Mod(id.String(), l.Bind(id)); err != nil {
		libol.Warn("FlowFilter.Set %s: %s", id, err)
	}
}

func (f *flowFilter) Get(id *flowfilter.Identity) *flowfilter.List {
	if v, ok := f.Lists.GetEx(id.String()); ok {
		return v.(*flowfilter.List)
	}
	return nil
}

func (f *flowFilter) Del(id *flowfilter.Identity) {
	f.Lists.Del(id.String())
}

func (f *flowFilter) Len() int {
	return f.Lists.Len()
}

func (f *flowFilter) Clear() {
	f.Lists.Clear()
}

// List returns the lists ordered by identity.
func (f *flowFilter) List() <-chan *flowfilter.List {
	c := make(chan *flowfilter.List, 128)

	go func() {
		for _, key := range f.Lists.Keys() {
			if v := f.Lists.Get(key); v != nil {
				c <- v.(*flowfilter.List)
			}
		}
		c <- nil //Finish channel by nil.
	}()
	return c
}

var FlowFilter = flowFilter{
	Lists: libol.NewSafeStrMap(0),
}
