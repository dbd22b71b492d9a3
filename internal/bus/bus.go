// Package bus provides the in-process event bus connecting the ledger
// services to their observers. Delivery is synchronous and in subscribe
// order; a panicking handler is contained so the remaining handlers still
// run.
package bus

import (
	"sync"

	"github.com/goodnatureofminers/pocketledger/internal/ledger/model"
	"go.uber.org/zap"
)

// Handler consumes one published event.
type Handler func(event any)

type Bus struct {
	logger *zap.Logger

	mu       sync.RWMutex
	handlers map[model.Topic][]Handler
}

func New(logger *zap.Logger) *Bus {
	return &Bus{
		logger:   logger,
		handlers: make(map[model.Topic][]Handler),
	}
}

// Subscribe registers handler for every future publish on topic.
func (b *Bus) Subscribe(topic model.Topic, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[topic] = append(b.handlers[topic], handler)
}

// Publish delivers event to every handler subscribed to topic. Handlers
// run on the caller's goroutine; Subscribe calls made from inside a
// handler take effect for later publishes only.
func (b *Bus) Publish(topic model.Topic, event any) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[topic]))
	copy(handlers, b.handlers[topic])
	b.mu.RUnlock()

	for _, handler := range handlers {
		b.dispatch(topic, handler, event)
	}
}

func (b *Bus) dispatch(topic model.Topic, handler Handler, event any) {
	defer func() {
		if recoverErr := recover(); recoverErr != nil {
			b.logger.Error("event handler panicked",
				zap.String("topic", string(topic)),
				zap.Any("panic", recoverErr),
			)
		}
	}()

	handler(event)
}
