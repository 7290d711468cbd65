// Package metrics exposes the state of the ledger to Prometheus.
package metrics

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "powledger"

// Chain represents the read behavior the collector needs from the ledger.
type Chain interface {
	QueryHeight() uint64
	QueryPendingLength() int
	Difficulty() uint
}

// Collector reports chain gauges on every scrape and counts mining outcomes.
type Collector struct {
	chain Chain

	height     *prometheus.Desc
	pending    *prometheus.Desc
	difficulty *prometheus.Desc

	mined     prometheus.Counter
	cancelled prometheus.Counter
}

// New constructs a collector over the specified chain.
func New(chain Chain) *Collector {
	return &Collector{
		chain: chain,
		height: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "chain", "height"),
			"Number of blocks after the genesis block.",
			nil, nil,
		),
		pending: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "mempool", "pending"),
			"Number of transactions waiting to be mined.",
			nil, nil,
		),
		difficulty: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "chain", "difficulty"),
			"Number of leading zeros a block hash requires.",
			nil, nil,
		),
		mined: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mining",
			Name:      "blocks_total",
			Help:      "Number of blocks mined by this node.",
		}),
		cancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mining",
			Name:      "cancelled_total",
			Help:      "Number of mining rounds cancelled or timed out.",
		}),
	}
}

// MinedBlock records a successful mining round.
func (c *Collector) MinedBlock() {
	c.mined.Inc()
}

// CancelledMining records a mining round that was cancelled or timed out.
func (c *Collector) CancelledMining() {
	c.cancelled.Inc()
}

// ObserveRound records the outcome of a mining round. Rounds that failed
// for any reason other than cancellation aren't counted.
func (c *Collector) ObserveRound(err error) {
	switch {
	case err == nil:
		c.MinedBlock()
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		c.CancelledMining()
	}
}

// Describe implements the prometheus.Collector interface.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.height
	ch <- c.pending
	ch <- c.difficulty
	c.mined.Describe(ch)
	c.cancelled.Describe(ch)
}

// Collect implements the prometheus.Collector interface.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.height, prometheus.GaugeValue, float64(c.chain.QueryHeight()))
	ch <- prometheus.MustNewConstMetric(c.pending, prometheus.GaugeValue, float64(c.chain.QueryPendingLength()))
	ch <- prometheus.MustNewConstMetric(c.difficulty, prometheus.GaugeValue, float64(c.chain.Difficulty()))
	c.mined.Collect(ch)
	c.cancelled.Collect(ch)
}
