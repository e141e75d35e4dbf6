package observability

import (
	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// TracingPublisherDecorator injects the current trace context into message
// metadata so consumers can continue the trace across the broker.
type TracingPublisherDecorator struct {
	message.Publisher
}

func (d TracingPublisherDecorator) Publish(topic string, messages ...*message.Message) error {
	for i := range messages {
		ctx, span := otel.Tracer("watermill").Start(
			messages[i].Context(),
			"publish "+topic,
			trace.WithSpanKind(trace.SpanKindProducer),
		)

		otel.GetTextMapPropagator().Inject(ctx, propagation.MapCarrier(messages[i].Metadata))

		messages[i].SetContext(ctx)
		span.End()
	}

	return d.Publisher.Publish(topic, messages...)
}
