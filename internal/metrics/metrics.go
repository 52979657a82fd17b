// Package metrics holds the prometheus collectors shared by the decode path,
// the worker pool and the RPC service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "slidewin"

// Decode groups the decode collectors. A nil *Decode is valid and records nothing.
type Decode struct {
	Shots        prometheus.Counter
	Windows      prometheus.Counter
	MatcherCalls prometheus.Counter
	Errors       *prometheus.CounterVec
	BatchSeconds prometheus.Histogram
}

// NewDecode creates the decode collectors and registers them on reg.
func NewDecode(reg prometheus.Registerer) (*Decode, error) {
	d := &Decode{
		Shots: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shots_decoded_total",
			Help:      "Shots decoded into a logical prediction.",
		}),
		Windows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "windows_decoded_total",
			Help:      "Decoding windows submitted to the matcher.",
		}),
		MatcherCalls: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matcher_calls_total",
			Help:      "Batch calls made to the matcher.",
		}),
		Errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decode_errors_total",
			Help:      "Decode failures by class.",
		}, []string{"class"}),
		BatchSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_decode_seconds",
			Help:      "Wall time of one bit-packed batch decode.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 10),
		}),
	}
	for _, c := range []prometheus.Collector{d.Shots, d.Windows, d.MatcherCalls, d.Errors, d.BatchSeconds} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func (d *Decode) AddShots(n int) {
	if d != nil {
		d.Shots.Add(float64(n))
	}
}

func (d *Decode) AddWindows(n int) {
	if d != nil {
		d.Windows.Add(float64(n))
	}
}

func (d *Decode) IncMatcherCalls() {
	if d != nil {
		d.MatcherCalls.Inc()
	}
}

func (d *Decode) IncError(class string) {
	if d != nil {
		d.Errors.WithLabelValues(class).Inc()
	}
}

// ObserveBatch records the time since start.
func (d *Decode) ObserveBatch(start time.Time) {
	if d != nil {
		d.BatchSeconds.Observe(time.Since(start).Seconds())
	}
}

// WriteTextfile dumps every metric gathered by g to path in the text exposition format.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g)
}
