// Package notification delivers short status messages to a user, such as
// progress of a long-running balance repair.
package notification

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Message is the payload delivered to a user
type Message struct {
	UserID    uuid.UUID      `json:"user_id"`
	Kind      string         `json:"kind"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Progress  map[string]any `json:"progress,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// NopNotifier drops every message
type NopNotifier struct{}

// Notify implements the notifier contract
func (NopNotifier) Notify(context.Context, uuid.UUID, string, string, string, map[string]any) error {
	return nil
}

// LogNotifier writes messages to the structured log
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a LogNotifier
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger}
}

// Notify logs the message at info level
func (n *LogNotifier) Notify(_ context.Context, userID uuid.UUID, kind, title, message string, progress map[string]any) error {
	n.logger.Info("Notification",
		zap.String("user_id", userID.String()),
		zap.String("kind", kind),
		zap.String("title", title),
		zap.String("message", message),
		zap.Any("progress", progress),
	)
	return nil
}

// Sink is anything that accepts a notification
type Sink interface {
	Notify(ctx context.Context, userID uuid.UUID, kind, title, message string, progress map[string]any) error
}

// MultiNotifier fans a message out to several sinks. Every sink is attempted;
// the errors are joined.
type MultiNotifier struct {
	sinks []Sink
}

// NewMultiNotifier creates a MultiNotifier. nil sinks are skipped.
func NewMultiNotifier(sinks ...Sink) *MultiNotifier {
	m := &MultiNotifier{}
	for _, s := range sinks {
		if s != nil {
			m.sinks = append(m.sinks, s)
		}
	}
	return m
}

// Notify delivers to every sink
func (m *MultiNotifier) Notify(ctx context.Context, userID uuid.UUID, kind, title, message string, progress map[string]any) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Notify(ctx, userID, kind, title, message, progress); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
