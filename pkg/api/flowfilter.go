package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/luscis/vtn/pkg/flowfilter"
	"github.com/luscis/vtn/pkg/libol"
	"github.com/luscis/vtn/pkg/schema"
	"github.com/luscis/vtn/pkg/vnode"
)

var ownerRoutes = []string{
	"/api/vtn/{tenant}",
	"/api/vtn/{tenant}/vbridge/{bridge}",
	"/api/vtn/{tenant}/vbridge/{bridge}/interface/{interface}",
	"/api/vtn/{tenant}/vterminal/{terminal}/interface/{interface}",
}

// GetOwner builds the node path from the route variables.
func GetOwner(vars map[string]string) (vnode.Path, error) {
	for _, key := range []string{"tenant", "bridge", "terminal", "interface"} {
		if value, ok := vars[key]; ok {
			if err := vnode.CheckName(value); err != nil {
				return nil, libol.NewErr("%s: %s", key, err)
			}
		}
	}
	tenant := vars["tenant"]
	bridge, isBridge := vars["bridge"]
	terminal, isTerminal := vars["terminal"]
	iface := vars["interface"]
	switch {
	case isTerminal:
		return vnode.NewTerminalInterface(tenant, terminal, iface), nil
	case isBridge && iface != "":
		return vnode.NewBridgeInterface(tenant, bridge, iface), nil
	case isBridge:
		return vnode.BridgePath{Tenant: tenant, Bridge: bridge}, nil
	default:
		return vnode.TenantPath{Tenant: tenant}, nil
	}
}

type FlowFilter struct {
	Filterer FlowFilterer
}

func (h FlowFilter) Router(router *mux.Router) {
	router.HandleFunc("/api/flowfilter", h.List).Methods("GET")
	router.HandleFunc("/api/flowfilter/validate", h.Validate).Methods("POST")
	router.HandleFunc("/api/flowfilter/{id:.+}", h.Lookup).Methods("GET")
	for _, prefix := range ownerRoutes {
		router.HandleFunc(prefix+"/flowfilter/{direction}", h.Get).Methods("GET")
		router.HandleFunc(prefix+"/flowfilter/{direction}", h.Set).Methods("PUT")
		router.HandleFunc(prefix+"/flowfilter/{direction}", h.Del).Methods("DELETE")
		router.HandleFunc(prefix+"/flowfilter/{direction}/flows", h.Flows).Methods("GET")
	}
}

func (h FlowFilter) target(w http.ResponseWriter, r *http.Request) (vnode.Path, flowfilter.Direction, bool) {
	vars := mux.Vars(r)
	owner, err := GetOwner(vars)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, 0, false
	}
	dir, err := flowfilter.ParseDirection(vars["direction"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, 0, false
	}
	return owner, dir, true
}

func (h FlowFilter) List(w http.ResponseWriter, r *http.Request) {
	items := h.Filterer.ListFilters()
	tenant := GetQueryOne(r, "tenant")
	if tenant == "" {
		ResponseJson(w, items)
		return
	}
	matched := make([]schema.FlowFilterState, 0, len(items))
	for _, item := range items {
		if owner, err := vnode.Parse(item.Node); err == nil && owner.TenantName() == tenant {
			matched = append(matched, item)
		}
	}
	ResponseJson(w, matched)
}

// Lookup finds a list by the id ListFilters returns.
func (h FlowFilter) Lookup(w http.ResponseWriter, r *http.Request) {
	id, err := flowfilter.ParseIdentity(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	state, ok := h.Filterer.GetFilter(id.Owner(), id.Direction())
	if !ok {
		http.Error(w, "Flow filter not found", http.StatusNotFound)
		return
	}
	ResponseJson(w, state)
}

func (h FlowFilter) Get(w http.ResponseWriter, r *http.Request) {
	owner, dir, ok := h.target(w, r)
	if !ok {
		return
	}
	state, ok := h.Filterer.GetFilter(owner, dir)
	if !ok {
		http.Error(w, "Flow filter not found", http.StatusNotFound)
		return
	}
	ResponseJson(w, state)
}

func (h FlowFilter) Set(w http.ResponseWriter, r *http.Request) {
	owner, dir, ok := h.target(w, r)
	if !ok {
		return
	}
	data := &schema.FlowFilterList{}
	if err := GetData(r, data); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	state, err := h.Filterer.SetFilter(owner, dir, data)
	if err != nil {
		ResponseError(w, http.StatusInternalServerError, err)
		return
	}
	ResponseJson(w, state)
}

func (h FlowFilter) Del(w http.ResponseWriter, r *http.Request) {
	owner, dir, ok := h.target(w, r)
	if !ok {
		return
	}
	found, err := h.Filterer.DelFilter(owner, dir)
	if err != nil {
		ResponseError(w, http.StatusInternalServerError, err)
		return
	}
	if !found {
		http.Error(w, "Flow filter not found", http.StatusNotFound)
		return
	}
	ResponseMsg(w, 0, "")
}

func (h FlowFilter) Flows(w http.ResponseWriter, r *http.Request) {
	owner, dir, ok := h.target(w, r)
	if !ok {
		return
	}
	if _, ok := h.Filterer.GetFilter(owner, dir); !ok {
		http.Error(w, "Flow filter not found", http.StatusNotFound)
		return
	}
	text, err := h.Filterer.RenderFilter(owner, dir)
	if err != nil {
		ResponseError(w, http.StatusInternalServerError, err)
		return
	}
	ResponseJson(w, text)
}

func (h FlowFilter) Validate(w http.ResponseWriter, r *http.Request) {
	data := &schema.FlowFilterList{}
	if err := GetData(r, data); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	list, err := h.Filterer.ValidateFilter(data)
	if err != nil {
		ResponseError(w, http.StatusInternalServerError, err)
		return
	}
	ResponseJson(w, list)
}
