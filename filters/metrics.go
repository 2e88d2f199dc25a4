package filters

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	metricsOnce sync.Once
	installed   prometheus.Gauge
)

func filtersInstalled() prometheus.Gauge {
	metricsOnce.Do(func() {
		installed = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sethrpc_filters_installed",
			Help: "Number of filters currently installed.",
		})
		prometheus.MustRegister(installed)
	})
	return installed
}
