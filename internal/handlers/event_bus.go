package handlers

import (
	"sync"

	"go.uber.org/zap"

	"github.com/Alexander-D-Karpov/sonicflow/internal/logging"
)

const (
	EventTrackChanged  = "track_changed"
	EventPlayState     = "play_state"
	EventQueueChanged  = "queue_changed"
	EventCatalogLoaded = "catalog_loaded"
)

type EventBus struct {
	subscribers map[string][]EventHandler
	mutex       sync.RWMutex
	inflight    sync.WaitGroup
	logger      *zap.Logger
}

type EventHandler func(data interface{})

type Event struct {
	Type string
	Data interface{}
}

func NewEventBus(logger *zap.Logger) *EventBus {
	return &EventBus{
		subscribers: make(map[string][]EventHandler),
		logger:      logging.OrNop(logger).Named("bus"),
	}
}

func (bus *EventBus) Subscribe(eventType string, handler EventHandler) {
	bus.mutex.Lock()
	defer bus.mutex.Unlock()
	bus.subscribers[eventType] = append(bus.subscribers[eventType], handler)
}

// Publish runs every handler on its own goroutine. A panicking handler is
// logged and does not affect the others.
func (bus *EventBus) Publish(eventType string, data interface{}) {
	bus.mutex.RLock()
	handlers := bus.subscribers[eventType]
	bus.mutex.RUnlock()

	for _, handler := range handlers {
		bus.inflight.Add(1)
		go func(h EventHandler) {
			defer bus.inflight.Done()
			defer func() {
				if r := recover(); r != nil {
					bus.logger.Error("event handler panicked",
						zap.String("event", eventType),
						zap.Any("panic", r))
				}
			}()
			h(data)
		}(handler)
	}
}

func (bus *EventBus) Unsubscribe(eventType string) {
	bus.mutex.Lock()
	defer bus.mutex.Unlock()
	delete(bus.subscribers, eventType)
}

// Wait blocks until every handler started so far has returned.
func (bus *EventBus) Wait() {
	bus.inflight.Wait()
}
