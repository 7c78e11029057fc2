package coremain

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/pmkol/poollist/pkg/list"
	"github.com/pmkol/poollist/pkg/script"
)

// metrics are updated after each script run, never while a context is in
// use, so collecting them does not race with list operations.
type metrics struct {
	slotsInUse    *prometheus.GaugeVec
	slotsCapacity *prometheus.GaugeVec
	steps         *prometheus.CounterVec
	runs          *prometheus.CounterVec
}

func newMetricsReg() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	reg.MustRegister(collectors.NewGoCollector())
	return reg
}

func newMetrics(reg prometheus.Registerer) *metrics {
	reg = prometheus.WrapRegistererWithPrefix("poollist_", reg)
	m := &metrics{
		slotsInUse: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "pool_slots_in_use",
			Help: "Allocated slots of a list context pool.",
		}, []string{"context", "pool"}),
		slotsCapacity: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "pool_slots_capacity",
			Help: "Capacity of a list context pool.",
		}, []string{"context", "pool"}),
		steps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "script_steps_total",
			Help: "Script steps executed successfully.",
		}, []string{"script"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "script_runs_total",
			Help: "Script runs by result.",
		}, []string{"result"}),
	}
	reg.MustRegister(m.slotsInUse, m.slotsCapacity, m.steps, m.runs)
	return m
}

func (m *metrics) observeStats(context string, st list.Stats) {
	m.slotsInUse.WithLabelValues(context, "heads").Set(float64(st.Lists))
	m.slotsInUse.WithLabelValues(context, "nodes").Set(float64(st.Nodes))
	m.slotsCapacity.WithLabelValues(context, "heads").Set(float64(st.MaxLists))
	m.slotsCapacity.WithLabelValues(context, "nodes").Set(float64(st.MaxNodes))
}

func (m *metrics) observeRun(context string, res *script.Result, err error) {
	result := "ok"
	if err != nil {
		result = "failed"
	}
	m.runs.WithLabelValues(result).Inc()
	if res == nil {
		return
	}
	m.steps.WithLabelValues(res.Name).Add(float64(res.Steps))
	m.observeStats(context, res.Stats)
}
