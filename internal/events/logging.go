// Package events provides publisher decorators shared by every backend.
package events

import (
	"github.com/quorumledger/joint-account-ledger/internal/interfaces"
	"go.uber.org/zap"
)

// LoggingPublisher logs failed publishes and swallows the error. Event
// emission is best-effort relative to the already-committed state
// mutation, so a delivery failure must not surface as a call failure.
type LoggingPublisher struct {
	next interfaces.EventPublisher
	log  *zap.Logger
}

func NewLoggingPublisher(next interfaces.EventPublisher, log *zap.Logger) *LoggingPublisher {
	return &LoggingPublisher{next: next, log: log}
}

func (p *LoggingPublisher) Publish(topic string, event any) error {
	if err := p.next.Publish(topic, event); err != nil {
		p.log.Error("publish event failed",
			zap.String("topic", topic),
			zap.Error(err),
		)
	}
	return nil
}

var _ interfaces.EventPublisher = (*LoggingPublisher)(nil)
