package controller

import (
	"context"
	"fmt"
	"net/http"
	"net/http/pprof"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/luscis/vtn/pkg/api"
	"github.com/luscis/vtn/pkg/libol"
	"github.com/luscis/vtn/pkg/schema"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NotFound(w http.ResponseWriter, r *http.Request) {
	http.Error(w, "Oops!", http.StatusNotFound)
}

func NotAllowed(w http.ResponseWriter, r *http.Request) {
	http.Error(w, "Oops!", http.StatusMethodNotAllowed)
}

type Http struct {
	ctrl   api.Controller
	listen string
	server *http.Server
	router *mux.Router
}

func NewHttp(ctrl api.Controller, listen string) *Http {
	return &Http{
		ctrl:   ctrl,
		listen: listen,
	}
}

func (h *Http) Initialize() {
	r := h.Router()
	if h.server == nil {
		h.server = &http.Server{
			Addr:         h.listen,
			Handler:      r,
			ReadTimeout:  5 * time.Minute,
			WriteTimeout: 10 * time.Minute,
		}
	}
	h.LoadRouter()
}

func (h *Http) PProf(r *mux.Router) {
	if r != nil {
		r.HandleFunc("/debug/pprof/", pprof.Index)
		r.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		r.HandleFunc("/debug/pprof/profile", pprof.Profile)
		r.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		r.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}
}

func (h *Http) Prome(r *mux.Router) {
	if r != nil {
		handler := promhttp.HandlerFor(metrics, promhttp.HandlerOpts{})
		r.Handle("/metrics", handler)
	}
}

func (h *Http) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		libol.Info("Http.Middleware %s %s", r.Method, r.URL.Path)
		latst := time.Now().Unix()
		next.ServeHTTP(w, r)
		dt := time.Now().Unix() - latst
		if dt > 2 {
			libol.Warn("Http.Middleware %s %s long time %d", r.Method, r.URL.Path, dt)
		}
	})
}

func (h *Http) Router() *mux.Router {
	if h.router == nil {
		h.router = mux.NewRouter()
		h.router.NotFoundHandler = http.HandlerFunc(NotFound)
		h.router.MethodNotAllowedHandler = http.HandlerFunc(NotAllowed)
		h.router.Use(h.Middleware)
	}

	return h.router
}

func (h *Http) LoadRouter() {
	router := h.Router()

	h.PProf(router)
	h.Prome(router)
	router.HandleFunc("/api/index", h.GetIndex).Methods("GET")
	router.HandleFunc("/api/urls", h.GetApi).Methods("GET")
	api.Add(router, h.ctrl)
}

func (h *Http) Start() {
	libol.Info("Http.Start %s", h.listen)
	promise := &libol.Promise{
		First:  time.Second * 2,
		MaxInt: time.Minute,
		MinInt: time.Second * 10,
	}
	promise.Go(func() error {
		err := h.server.ListenAndServe()
		if err == nil || err == http.ErrServerClosed {
			return nil
		}
		libol.Error("Http.Start on %s: %s", h.listen, err)
		return err
	})
}

func (h *Http) Shutdown() {
	libol.Info("Http.Shutdown %s", h.listen)
	if err := h.server.Shutdown(context.Background()); err != nil {
		// Error from closing listeners, or context timeout:
		libol.Error("Http.Shutdown: %v", err)
	}
}

func (h *Http) getIndex(body *schema.Index) *schema.Index {
	body.Version = schema.NewVersionSchema()
	body.Alias = h.ctrl.Alias()
	body.Uptime = h.ctrl.UpTime()
	body.Filters = h.ctrl.ListFilters()
	return body
}

func (h *Http) GetIndex(w http.ResponseWriter, r *http.Request) {
	body := schema.Index{}
	h.getIndex(&body)
	api.ResponseJson(w, body)
}

func (h *Http) GetApi(w http.ResponseWriter, r *http.Request) {
	var urls []string
	_ = h.router.Walk(func(route *mux.Route, router *mux.Router, ancestors []*mux.Route) error {
		path, err := route.GetPathTemplate()
		if err != nil || !strings.HasPrefix(path, "/api") {
			return nil
		}
		methods, err := route.GetMethods()
		if err != nil {
			return nil
		}
		for _, m := range methods {
			urls = append(urls, fmt.Sprintf("%-6s %s", m, path))
		}
		return nil
	})
	api.ResponseYaml(w, urls)
}
