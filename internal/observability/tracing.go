// SPDX-License-Identifier: MIT

package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/katalvlaran/lvlot/problem"

// StartSpan starts a span for one sub-problem operation on the global tracer
// provider. source and target are optional attributes.
func StartSpan(ctx context.Context, name, source, target string, extra ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs := make([]attribute.KeyValue, 0, len(extra)+2)
	if source != "" {
		attrs = append(attrs, attribute.String("ot.source", source))
	}
	if target != "" {
		attrs = append(attrs, attribute.String("ot.target", target))
	}
	attrs = append(attrs, extra...)

	return otel.Tracer(tracerName).Start(ctx, name, trace.WithAttributes(attrs...))
}

// EndSpan records err on span (when non-nil) and ends it.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
