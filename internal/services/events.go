package services

import (
	"encoding/json"
	"time"

	"go.uber.org/zap"
)

// Routing keys of the domain events published by the services.
const (
	EventOrderCreated           = "order.created"
	EventPasswordResetRequested = "user.password_reset_requested"
)

// EventPublisher delivers a serialized event under routingKey.
type EventPublisher interface {
	Publish(routingKey string, body []byte) error
}

type OrderCreatedEvent struct {
	OrderID    string    `json:"orderId"`
	UserID     string    `json:"userId"`
	TotalPrice float64   `json:"totalPrice"`
	Items      int       `json:"items"`
	OrderedOn  time.Time `json:"orderedOn"`
}

// PasswordResetRequestedEvent carries the reset link to the mail consumer.
// It is the only place the raw token leaves the service.
type PasswordResetRequestedEvent struct {
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	ResetURL  string    `json:"resetUrl"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// publishEvent marshals event and hands it to pub. Failures are logged and
// reported but never undo the write that produced the event.
func publishEvent(pub EventPublisher, routingKey string, event interface{}) error {
	if pub == nil {
		zap.L().Debug("event publisher not configured, skipping event", zap.String("routing_key", routingKey))
		return nil
	}
	body, err := json.Marshal(event)
	if err != nil {
		zap.L().Error("failed to marshal event", zap.String("routing_key", routingKey), zap.Error(err))
		return err
	}
	if err := pub.Publish(routingKey, body); err != nil {
		zap.L().Warn("failed to publish event", zap.String("routing_key", routingKey), zap.Error(err))
		return err
	}
	return nil
}
