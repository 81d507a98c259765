package websocket

import (
	"sync"
	"sync/atomic"

	"github.com/klipseyuw/INFO-492-Demo-sub000/internal/logger"
	"github.com/klipseyuw/INFO-492-Demo-sub000/pkg/models"
)

// EventBridge relays scheduler events onto hub topics. Events with no
// topic mapping are skipped, and nothing is encoded while the hub has no
// clients.
type EventBridge struct {
	hub       *Hub
	events    <-chan *models.Event
	done      chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
	forwarded atomic.Uint64
}

func NewEventBridge(hub *Hub, events <-chan *models.Event) *EventBridge {
	return &EventBridge{
		hub:    hub,
		events: events,
		done:   make(chan struct{}),
	}
}

func (b *EventBridge) Start() {
	b.wg.Add(1)
	go b.run()
	logger.Info("WebSocket event bridge started")
}

// Stop is safe to call more than once.
func (b *EventBridge) Stop() {
	b.stopOnce.Do(func() {
		close(b.done)
		b.wg.Wait()
		logger.WithField("forwarded", b.Forwarded()).Info("WebSocket event bridge stopped")
	})
}

// Forwarded counts the messages handed to the hub.
func (b *EventBridge) Forwarded() uint64 {
	return b.forwarded.Load()
}

func (b *EventBridge) run() {
	defer b.wg.Done()
	for {
		select {
		case <-b.done:
			return
		case event, ok := <-b.events:
			if !ok {
				logger.Info("Event channel closed, stopping bridge")
				return
			}
			b.forward(event)
		}
	}
}

func (b *EventBridge) forward(event *models.Event) {
	if b.hub.ClientCount() == 0 {
		return
	}

	msg := NewMessage(event)
	if msg == nil {
		return
	}

	data, err := msg.JSON()
	if err != nil {
		logger.Errorf("Failed to marshal WebSocket message for %s: %v", event.Type, err)
		return
	}

	b.hub.Broadcast(msg.Type, data)
	b.forwarded.Add(1)
}
