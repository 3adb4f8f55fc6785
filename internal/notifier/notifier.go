// Package notifier delivers operator notifications. Delivery failures
// are reported to the caller but must never crash the monitoring loop.
package notifier

import "context"

// Notifier accepts a formatted text message for delivery.
type Notifier interface {
	Send(ctx context.Context, message string) error
}

// NoopNotifier discards messages. Used when no transport is configured
// so one-off commands still work without credentials.
type NoopNotifier struct{}

// Send discards the message.
func (NoopNotifier) Send(ctx context.Context, message string) error {
	return nil
}
