package handlers

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestEventBus_PublishReachesSubscribers(t *testing.T) {
	bus := NewEventBus(zap.NewNop())

	var mu sync.Mutex
	var got []interface{}
	record := func(data interface{}) {
		mu.Lock()
		got = append(got, data)
		mu.Unlock()
	}

	bus.Subscribe(EventTrackChanged, record)
	bus.Subscribe(EventTrackChanged, record)
	bus.Subscribe(EventQueueChanged, record)

	bus.Publish(EventTrackChanged, "a")
	bus.Wait()

	assert.Equal(t, []interface{}{"a", "a"}, got)
}

func TestEventBus_UnsubscribeStopsDelivery(t *testing.T) {
	bus := NewEventBus(nil)

	calls := 0
	bus.Subscribe(EventPlayState, func(interface{}) { calls++ })
	bus.Unsubscribe(EventPlayState)

	bus.Publish(EventPlayState, true)
	bus.Wait()

	assert.Zero(t, calls)
}

func TestEventBus_PanicIsContained(t *testing.T) {
	bus := NewEventBus(zap.NewNop())

	done := make(chan struct{})
	bus.Subscribe(EventCatalogLoaded, func(interface{}) { panic("boom") })
	bus.Subscribe(EventCatalogLoaded, func(interface{}) { close(done) })

	assert.NotPanics(t, func() {
		bus.Publish(EventCatalogLoaded, nil)
		bus.Wait()
	})
	<-done
}
