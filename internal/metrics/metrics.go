// Package metrics exports firmware telemetry as Prometheus metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"therapy/firmware/telemetry"
)

const namespace = "therapy"

var counterHelp = map[string]string{
	telemetry.Samples:              "PPG samples processed.",
	telemetry.SensorErrors:         "Sensor reads that returned an error.",
	telemetry.SignalLost:           "Samples outside the valid IR range; each resets the estimator.",
	telemetry.BeatsAccepted:        "Beats accepted by the detector.",
	telemetry.BeatsRejected:        "Beat candidates rejected inside the refractory window.",
	telemetry.VitalsEmitted:        "Vitals updates published.",
	telemetry.FramesDropped:        "IPC messages dropped because a mailbox was full.",
	telemetry.CommandsRejected:     "Command frames that were malformed or refused.",
	telemetry.NotificationsSent:    "Notification frames sent on the link.",
	telemetry.NotificationsDropped: "Notification frames dropped while the link was down.",
	telemetry.CuesPlayed:           "Audio cues rendered.",
	telemetry.CuesDropped:          "Audio cues dropped because the queue was full.",
	telemetry.SessionsStarted:      "Therapy sessions started.",
	telemetry.SessionsCompleted:    "Therapy sessions that ran to completion.",
}

var labelledHelp = map[string]struct {
	help  string
	label string
}{
	telemetry.Commands: {"Command frames received, by opcode.", "op"},
}

var gaugeHelp = map[string]string{
	telemetry.HeartRate:        "Last published heart rate, bpm (0 when not ready).",
	telemetry.SpO2:             "Last published SpO2, percent (0 when not ready).",
	telemetry.Level:            "Commanded intensity level.",
	telemetry.SessionRemaining: "Seconds left in the running session.",
}

// Recorder implements telemetry.Recorder on a private registry.
// Unknown names are ignored.
type Recorder struct {
	reg      *prometheus.Registry
	counters map[string]prometheus.Counter
	vecs     map[string]*prometheus.CounterVec
	gauges   map[string]prometheus.Gauge
}

var _ telemetry.Recorder = (*Recorder)(nil)

func New() *Recorder {
	r := &Recorder{
		reg:      prometheus.NewRegistry(),
		counters: make(map[string]prometheus.Counter, len(counterHelp)),
		vecs:     make(map[string]*prometheus.CounterVec, len(labelledHelp)),
		gauges:   make(map[string]prometheus.Gauge, len(gaugeHelp)),
	}
	for name, help := range counterHelp {
		c := prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      name + "_total",
			Help:      help,
		})
		r.reg.MustRegister(c)
		r.counters[name] = c
	}
	for name, h := range labelledHelp {
		v := prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      name + "_total",
			Help:      h.help,
		}, []string{h.label})
		r.reg.MustRegister(v)
		r.vecs[name] = v
	}
	for name, help := range gaugeHelp {
		g := prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		})
		r.reg.MustRegister(g)
		r.gauges[name] = g
	}
	r.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

func (r *Recorder) Inc(counter string) {
	if r == nil {
		return
	}
	if c, ok := r.counters[counter]; ok {
		c.Inc()
	}
}

func (r *Recorder) IncLabel(counter, label string) {
	if r == nil {
		return
	}
	if v, ok := r.vecs[counter]; ok {
		v.WithLabelValues(label).Inc()
	}
}

func (r *Recorder) Set(gauge string, v float64) {
	if r == nil {
		return
	}
	if g, ok := r.gauges[gauge]; ok {
		g.Set(v)
	}
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.reg }

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}
