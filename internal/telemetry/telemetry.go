// Package telemetry exports simulation progress as Prometheus metrics.
package telemetry

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/san-kum/barneshut/internal/sim"
)

const namespace = "barneshut"

// Collector records every completed step. It implements sim.Observer and is
// safe for concurrent use, so one Collector may observe a whole sweep.
type Collector struct {
	registry     *prometheus.Registry
	steps        prometheus.Counter
	stepDuration prometheus.Histogram
	bodies       prometheus.Gauge
	nodes        prometheus.Gauge
	depth        prometheus.Gauge
	simTime      prometheus.Gauge
}

var _ sim.Observer = (*Collector)(nil)

func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		steps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "steps_total",
			Help:      "Number of completed simulation steps.",
		}),
		stepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "step_duration_seconds",
			Help:      "Wall time of one step including tree construction.",
			Buckets:   prometheus.ExponentialBuckets(1e-5, 4, 10),
		}),
		bodies: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "bodies",
			Help:      "Bodies advanced by the last step.",
		}),
		nodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tree_nodes",
			Help:      "Quadtree nodes built by the last step.",
		}),
		depth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tree_depth",
			Help:      "Deepest quadtree level reached by the last step.",
		}),
		simTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "simulated_time",
			Help:      "Simulated time reached by the last step.",
		}),
	}

	c.registry.MustRegister(
		c.steps, c.stepDuration, c.bodies, c.nodes, c.depth, c.simTime,
		collectors.NewGoCollector(),
	)
	return c
}

func (c *Collector) OnStep(info sim.StepInfo) {
	c.steps.Inc()
	c.stepDuration.Observe(info.Duration.Seconds())
	c.bodies.Set(float64(info.Bodies))
	c.nodes.Set(float64(info.Tree.Nodes))
	c.depth.Set(float64(info.Tree.MaxDepth))
	c.simTime.Set(info.Time)
}

// Registry exposes the collector's registry, mostly for tests.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Handler serves the collector's metrics in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done, then shuts the server
// down gracefully. A bind failure is returned immediately.
func (c *Collector) Serve(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return c.serve(ctx, ln)
}

func (c *Collector) serve(ctx context.Context, ln net.Listener) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())

	server := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	done := make(chan error, 1)
	go func() {
		done <- server.Serve(ln)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-done; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
