// Package metrics exports state machine dispatches as Prometheus metrics.
package metrics

import (
	"errors"

	"github.com/enetx/hsm"
	"github.com/prometheus/client_golang/prometheus"
)

// Collector counts transitions and rejections and times dispatches. Attach it
// to machines with hsm.WithObserver and register it with a Prometheus registry.
type Collector struct {
	transitions *prometheus.CounterVec
	rejected    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

var (
	_ hsm.Observer         = (*Collector)(nil)
	_ prometheus.Collector = (*Collector)(nil)
)

// NewCollector returns a collector whose metric names start with namespace.
func NewCollector(namespace string) *Collector {
	return &Collector{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transitions_total",
			Help:      "Total number of completed state machine dispatches",
		}, []string{"machine", "event", "from", "to", "kind"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rejected_total",
			Help:      "Total number of failed state machine dispatches",
		}, []string{"machine", "event", "reason"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dispatch_duration_seconds",
			Help:      "Time spent dispatching an event, hooks included",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
		}, []string{"machine"}),
	}
}

// Register adds the collector to reg.
func (c *Collector) Register(reg prometheus.Registerer) error { return reg.Register(c) }

// OnDispatch implements hsm.Observer.
func (c *Collector) OnDispatch(rec hsm.DispatchRecord) {
	c.duration.WithLabelValues(rec.Machine).Observe(rec.Duration.Seconds())

	if rec.Err != nil {
		c.rejected.WithLabelValues(rec.Machine, string(rec.Event), Reason(rec.Err)).Inc()
		return
	}

	c.transitions.WithLabelValues(rec.Machine, string(rec.Event), string(rec.From), string(rec.To),
		rec.Kind.String()).Inc()
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.transitions.Describe(ch)
	c.rejected.Describe(ch)
	c.duration.Describe(ch)
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.transitions.Collect(ch)
	c.rejected.Collect(ch)
	c.duration.Collect(ch)
}

// Reason maps a dispatch error to the rejected_total reason label.
func Reason(err error) string {
	var (
		invalid *hsm.ErrInvalidTransition
		cb      *hsm.ErrCallback
		broken  *hsm.ErrBrokenHierarchy
	)

	switch {
	case errors.As(err, &invalid):
		return invalid.Reason.String()
	case errors.As(err, &cb):
		return "callback"
	case errors.As(err, &broken):
		return "broken_hierarchy"
	case errors.Is(err, hsm.ErrReentrantDispatch):
		return "reentrant"
	default:
		return "error"
	}
}
