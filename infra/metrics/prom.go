// Package metrics implements the core metrics sinks.
package metrics

import (
	"math"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/lbarthe/socwatch/core/metrics"
)

// PromSink exposes the latest estimate through Prometheus metrics.
type PromSink struct {
	evaluations *prometheus.CounterVec
	soc         prometheus.Gauge
	netPower    prometheus.Gauge
	remaining   prometheus.Gauge
	headroom    prometheus.Gauge
	timeToFull  prometheus.Gauge
	timeToEmpty prometheus.Gauge
}

// NewPromSink registers the estimator metrics on the default Prometheus
// registerer.
func NewPromSink(cfg coremetrics.Config) (*PromSink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(_ coremetrics.Config, reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	evaluations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "estimate_evaluations_total",
		Help: "Total number of model evaluations",
	}, []string{"status", "source"})
	soc := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "battery_soc_percent",
		Help: "Current state of charge in percent",
	})
	netPower := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "battery_net_power_kw",
		Help: "Net power flow in kW, positive while charging",
	})
	remaining := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "battery_remaining_kwh",
		Help: "Usable energy above the reserve floor in kWh",
	})
	headroom := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "battery_headroom_kwh",
		Help: "Energy needed to reach the max-SoC ceiling in kWh",
	})
	timeToFull := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "battery_time_to_full_hours",
		Help: "Estimated hours until full, only set while computable",
	})
	timeToEmpty := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "battery_time_to_empty_hours",
		Help: "Estimated hours until empty, only set while computable",
	})

	collectors := []prometheus.Collector{evaluations, soc, netPower, remaining, headroom, timeToFull, timeToEmpty}
	for i, c := range collectors {
		if err := reg.Register(c); err != nil {
			are, ok := err.(prometheus.AlreadyRegisteredError)
			if !ok {
				return nil, err
			}
			collectors[i] = are.ExistingCollector
		}
	}
	return &PromSink{
		evaluations: collectors[0].(*prometheus.CounterVec),
		soc:         collectors[1].(prometheus.Gauge),
		netPower:    collectors[2].(prometheus.Gauge),
		remaining:   collectors[3].(prometheus.Gauge),
		headroom:    collectors[4].(prometheus.Gauge),
		timeToFull:  collectors[5].(prometheus.Gauge),
		timeToEmpty: collectors[6].(prometheus.Gauge),
	}, nil
}

// RecordEvaluation updates the gauges and increments the evaluation counter.
// Infinite time estimates reset their gauge to zero instead of exporting
// +Inf.
func (s *PromSink) RecordEvaluation(ev coremetrics.EvaluationEvent) error {
	s.evaluations.WithLabelValues(ev.Estimate.Status.String(), ev.Source).Inc()
	s.soc.Set(ev.Estimate.GaugePercent)
	s.netPower.Set(ev.Estimate.NetPowerKW)
	s.remaining.Set(ev.Estimate.RemainingKWh)
	s.headroom.Set(ev.Estimate.HeadroomKWh)
	s.timeToFull.Set(finiteOrZero(ev.Estimate.TimeToFullHours))
	s.timeToEmpty.Set(finiteOrZero(ev.Estimate.TimeToEmptyHours))
	return nil
}

func finiteOrZero(v float64) float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0
	}
	return v
}
