package agentstatus

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/ayutaki/agenthub/pkg/observability"
)

// Aggregator fans probes out over a set of endpoints.
type Aggregator struct {
	prober *Prober

	// maxConcurrent bounds parallel probes. Zero means unbounded.
	maxConcurrent int
}

type AggregatorOption func(*Aggregator)

// WithMaxConcurrent caps how many probes run at once.
func WithMaxConcurrent(n int) AggregatorOption {
	return func(a *Aggregator) {
		a.maxConcurrent = n
	}
}

func NewAggregator(prober *Prober, opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{prober: prober}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Aggregate probes every descriptor concurrently and returns exactly one
// report per descriptor, in input order. Probes are isolated: one endpoint
// failing, hanging, or panicking into an offline state never affects the
// reports of the others. Aggregate waits for all probes before returning.
func (a *Aggregator) Aggregate(ctx context.Context, descs []Descriptor) []Report {
	ctx, span := observability.GetTracer("agentstatus").Start(ctx, "aggregate_probes",
		trace.WithAttributes(attribute.Int("agent.count", len(descs))))
	defer span.End()

	reports := make([]Report, len(descs))

	g := new(errgroup.Group)
	if a.maxConcurrent > 0 {
		g.SetLimit(a.maxConcurrent)
	}

	for i, desc := range descs {
		g.Go(func() error {
			reports[i] = a.prober.Probe(ctx, desc)
			return nil
		})
	}

	// Probes report failures in-band, so this never returns an error.
	_ = g.Wait()

	return reports
}
