package preimage

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespacePreimage = "preimage"
	subsystemSessions = "sessions"
	subsystemSponge   = "sponge"
)

// Metrics receives registry events.
type Metrics interface {
	SessionOpened()
	SessionFinalized()
	SessionReaped()
	// SessionRejected is reported when Init fails at capacity.
	SessionRejected()
	BytesAbsorbed(n int)
	BlocksPermuted(n int)
	OpenSessions(n int)
}

// NoopMetrics discards all events.
type NoopMetrics struct{}

var _ Metrics = NoopMetrics{}

func (NoopMetrics) SessionOpened()     {}
func (NoopMetrics) SessionFinalized()  {}
func (NoopMetrics) SessionReaped()     {}
func (NoopMetrics) SessionRejected()   {}
func (NoopMetrics) BytesAbsorbed(int)  {}
func (NoopMetrics) BlocksPermuted(int) {}
func (NoopMetrics) OpenSessions(int)   {}

// Collector reports registry events to Prometheus.
type Collector struct {
	opened    prometheus.Counter
	finalized prometheus.Counter
	reaped    prometheus.Counter
	rejected  prometheus.Counter
	bytes     prometheus.Counter
	blocks    prometheus.Counter
	open      prometheus.Gauge
}

var _ Metrics = (*Collector)(nil)

// NewCollector registers the registry metrics on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		opened: factory.NewCounter(prometheus.CounterOpts{
			Name:      "opened_total",
			Namespace: namespacePreimage,
			Subsystem: subsystemSessions,
			Help:      "number of sessions opened",
		}),
		finalized: factory.NewCounter(prometheus.CounterOpts{
			Name:      "finalized_total",
			Namespace: namespacePreimage,
			Subsystem: subsystemSessions,
			Help:      "number of sessions finalized into a digest",
		}),
		reaped: factory.NewCounter(prometheus.CounterOpts{
			Name:      "reaped_total",
			Namespace: namespacePreimage,
			Subsystem: subsystemSessions,
			Help:      "number of idle sessions dropped without a digest",
		}),
		rejected: factory.NewCounter(prometheus.CounterOpts{
			Name:      "rejected_total",
			Namespace: namespacePreimage,
			Subsystem: subsystemSessions,
			Help:      "number of session opens rejected at capacity",
		}),
		open: factory.NewGauge(prometheus.GaugeOpts{
			Name:      "open",
			Namespace: namespacePreimage,
			Subsystem: subsystemSessions,
			Help:      "number of currently open sessions",
		}),
		bytes: factory.NewCounter(prometheus.CounterOpts{
			Name:      "absorbed_bytes_total",
			Namespace: namespacePreimage,
			Subsystem: subsystemSponge,
			Help:      "bytes absorbed across all sessions",
		}),
		blocks: factory.NewCounter(prometheus.CounterOpts{
			Name:      "permutations_total",
			Namespace: namespacePreimage,
			Subsystem: subsystemSponge,
			Help:      "keccak-f[1600] permutations run across all sessions",
		}),
	}
}

func (c *Collector) SessionOpened()    { c.opened.Inc() }
func (c *Collector) SessionFinalized() { c.finalized.Inc() }
func (c *Collector) SessionReaped()    { c.reaped.Inc() }
func (c *Collector) SessionRejected()  { c.rejected.Inc() }

func (c *Collector) BytesAbsorbed(n int) {
	c.bytes.Add(float64(n))
}

func (c *Collector) BlocksPermuted(n int) {
	c.blocks.Add(float64(n))
}

func (c *Collector) OpenSessions(n int) {
	c.open.Set(float64(n))
}
