package sockets

import (
	"context"
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// DeprecationNotifier records invocations of legacy procedures that have a
// newer request-response replacement. It is pure instrumentation: it never
// blocks or alters the call's outcome.
type DeprecationNotifier struct {
	counter metric.Int64Counter
	warned  sync.Map
}

// NewDeprecationNotifier builds a notifier on the global meter provider.
func NewDeprecationNotifier() *DeprecationNotifier {
	meter := otel.GetMeterProvider().Meter("nodebb/sockets")
	counter, err := meter.Int64Counter("socket_deprecated_calls_total",
		metric.WithDescription("Calls to deprecated socket procedures, by procedure."))
	if err != nil {
		log.Printf("sockets: deprecation counter unavailable: %v", err)
	}
	return &DeprecationNotifier{counter: counter}
}

// Notify records one invocation of the deprecated procedure. Every call is
// counted; the replacement hint is logged once per procedure to keep server
// logs readable.
func (n *DeprecationNotifier) Notify(ctx context.Context, procedure, replacement string) {
	if n == nil {
		return
	}
	if n.counter != nil {
		n.counter.Add(ctx, 1, metric.WithAttributes(attribute.String("procedure", procedure)))
	}
	if _, seen := n.warned.LoadOrStore(procedure, struct{}{}); !seen {
		log.Printf("sockets: procedure %s is deprecated, use %s instead", procedure, replacement)
	}
}
