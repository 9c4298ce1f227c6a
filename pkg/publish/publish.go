// Package publish writes analysis reports to their destinations.
//
// A [Sink] receives a [Bundle]: the report plus the problem records it was
// computed from. [DirSink] writes the CSV/JSON publication directory that
// the static site reads; [MongoSink] upserts the report into a MongoDB
// collection for the hosted dashboard.
package publish

import (
	"context"

	"github.com/matzehuels/stratum/pkg/core/triage"
	"github.com/matzehuels/stratum/pkg/errors"
	"github.com/matzehuels/stratum/pkg/pipeline"
	"github.com/matzehuels/stratum/pkg/schema"
)

// Sink publishes a bundle.
type Sink interface {
	Publish(ctx context.Context, b *Bundle) error
}

// Bundle is everything a sink may publish.
type Bundle struct {
	Report *pipeline.Report

	// Problems are the input records, in input order. They become the
	// enriched problems table.
	Problems []schema.Problem

	// InputDir holds the source tables copied alongside the outputs. Empty
	// skips copying.
	InputDir string
}

// Routes returns the route of every problem, index-aligned with Problems,
// under the report's thresholds.
func (b *Bundle) Routes() []triage.Route {
	th := b.Report.Thresholds
	out := make([]triage.Route, len(b.Problems))
	for i := range b.Problems {
		a := b.Problems[i].Assessment()
		out[i] = triage.Assign(a.Impact, a.Uncertainty, th)
	}
	return out
}

func (b *Bundle) check() error {
	if b == nil || b.Report == nil {
		return errors.New(errors.ErrCodeInvalidInput, "nothing to publish: report is required")
	}
	return nil
}

// Multi fans a bundle out to several sinks in order and stops at the first
// failure.
type Multi []Sink

// Publish implements Sink.
func (m Multi) Publish(ctx context.Context, b *Bundle) error {
	for _, s := range m {
		if err := s.Publish(ctx, b); err != nil {
			return err
		}
	}
	return nil
}
