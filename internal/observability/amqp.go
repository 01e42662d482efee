package observability

import (
	"context"
)

// Publisher sends a JSON document to the domain events exchange.
type Publisher interface {
	PublishJSON(ctx context.Context, routingKey string, message interface{}, headers map[string]string) error
}

var defaultPublisher Publisher

// SetPublisher installs the process-wide domain event publisher. Nil disables publishing.
func SetPublisher(publisher Publisher) {
	defaultPublisher = publisher
}

func PublishEvent(ctx context.Context, routingKey string, message interface{}, headers map[string]string) error {
	if defaultPublisher == nil {
		return nil
	}

	err := defaultPublisher.PublishJSON(ctx, routingKey, message, headers)
	if err != nil {
		IncAMQPPublishError()
	}
	return err
}

// PublishDomainEvent wraps payload in an envelope and publishes it under name,
// carrying request and trace ids from ctx.
func PublishDomainEvent(ctx context.Context, name string, payload interface{}) error {
	return PublishEvent(ctx, name, NewEvent(name, payload), HeadersFromContext(ctx))
}
