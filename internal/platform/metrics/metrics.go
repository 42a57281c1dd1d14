// Package metrics holds the Prometheus collectors of the gallery manager.
package metrics

import (
	"sort"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder is a set of gallery collectors registered on its own registry,
// so several managers (and parallel tests) never collide on the global one.
type Recorder struct {
	Registry *prometheus.Registry

	mutations       *prometheus.CounterVec
	persistFailures *prometheus.CounterVec
	photos          prometheus.Gauge
}

// NewRecorder creates and registers the gallery collectors.
func NewRecorder() *Recorder {
	r := &Recorder{
		Registry: prometheus.NewRegistry(),
		mutations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gallery",
				Name:      "mutations_total",
				Help:      "Collection and selection mutations applied, by operation.",
			},
			[]string{"op"},
		),
		persistFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gallery",
				Name:      "persist_failures_total",
				Help:      "Slot loads and saves that failed and were swallowed, by operation.",
			},
			[]string{"op"},
		),
		photos: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "gallery",
				Name:      "photos",
				Help:      "Number of photos in the collection.",
			},
		),
	}
	r.Registry.MustRegister(r.mutations, r.persistFailures, r.photos)
	return r
}

// Mutation counts one applied mutation.
func (r *Recorder) Mutation(op string) {
	if r == nil {
		return
	}
	r.mutations.WithLabelValues(op).Inc()
}

// PersistFailure counts one swallowed persistence failure.
func (r *Recorder) PersistFailure(op string) {
	if r == nil {
		return
	}
	r.persistFailures.WithLabelValues(op).Inc()
}

// Photos records the current collection size.
func (r *Recorder) Photos(n int) {
	if r == nil {
		return
	}
	r.photos.Set(float64(n))
}

// Sample is one gathered metric value with its labels flattened.
type Sample struct {
	Name   string
	Labels map[string]string
	Value  float64
}

// Snapshot gathers all counters and gauges, sorted by name.
func (r *Recorder) Snapshot() ([]Sample, error) {
	families, err := r.Registry.Gather()
	if err != nil {
		return nil, err
	}

	var out []Sample
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			labels := make(map[string]string, len(m.GetLabel()))
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			var v float64
			switch {
			case m.GetCounter() != nil:
				v = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				v = m.GetGauge().GetValue()
			}
			out = append(out, Sample{Name: mf.GetName(), Labels: labels, Value: v})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
