// Package metrics exposes Prometheus counters for owner queries and updates.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/oshokin/owner-guard/internal/domain/owner"
)

const (
	namespace = "owner_guard"

	// resultOK labels calls that returned no error.
	resultOK = "ok"

	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Metrics holds the collectors of one server process.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// registry owns every collector below.
	registry *prometheus.Registry
	// updates counts update calls by event and result.
	updates *prometheus.CounterVec
	// queries counts read calls by method and result.
	queries *prometheus.CounterVec
	// throttled counts updates rejected by the rate limiter.
	throttled prometheus.Counter
}

// New creates a registry with process, Go runtime and owner collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		updates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "updates_total",
			Help:      "Owner record update calls by event and result.",
		}, []string{"event", "result"}),
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Owner record read calls by method and result.",
		}, []string{"method", "result"}),
		throttled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "updates_throttled_total",
			Help:      "Update calls rejected by the per-caller rate limiter.",
		}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.updates,
		m.queries,
		m.throttled,
	)

	return m
}

// ObserveUpdate records one update call.
func (m *Metrics) ObserveUpdate(event string, err error) {
	if m == nil {
		return
	}

	m.updates.WithLabelValues(event, result(err)).Inc()
}

// ObserveQuery records one read call.
func (m *Metrics) ObserveQuery(method string, err error) {
	if m == nil {
		return
	}

	m.queries.WithLabelValues(method, result(err)).Inc()
}

// ObserveThrottled records an update rejected by the rate limiter.
func (m *Metrics) ObserveThrottled() {
	if m == nil {
		return
	}

	m.throttled.Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on address until ctx is canceled.
func (m *Metrics) Serve(ctx context.Context, address string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	server := &http.Server{
		Addr:              address,
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		_ = server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve metrics: %w", err)
	}

	return nil
}

// result converts an error into a low-cardinality label value.
func result(err error) string {
	if err == nil {
		return resultOK
	}

	return owner.KindOf(err).String()
}
