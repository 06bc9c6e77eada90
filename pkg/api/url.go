package api

import "github.com/gorilla/mux"

func Add(router *mux.Router, ctrl Controller) {
	FlowFilter{Filterer: ctrl}.Router(router)
	Log{}.Router(router)
	Version{}.Router(router)
}
