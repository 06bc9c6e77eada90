package controller

import (
	"github.com/luscis/vtn/pkg/cache"
	"github.com/luscis/vtn/pkg/flowfilter"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	metrics      = prometheus.NewRegistry()
	updateMetric = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vtn_flowfilter_updates_total",
		Help: "The total number of flow filter changes",
	})
	errorMetric = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vtn_flowfilter_errors_total",
		Help: "The total number of rejected flow filters",
	}, []string{"kind"})
	listMetric = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "vtn_flowfilter_lists",
		Help: "The number of configured flow filter lists",
	}, func() float64 {
		return float64(cache.FlowFilter.Len())
	})
)

func recordError(err error) {
	kind := "Internal"
	if k, ok := flowfilter.KindOf(err); ok {
		kind = k.String()
	}
	errorMetric.WithLabelValues(kind).Inc()
}

func init() {
	metrics.MustRegister(updateMetric)
	metrics.MustRegister(errorMetric)
	metrics.MustRegister(listMetric)
}
