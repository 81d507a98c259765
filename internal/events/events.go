package events

import (
	"sync"

	"github.com/klipseyuw/INFO-492-Demo-sub000/internal/logger"
	"github.com/klipseyuw/INFO-492-Demo-sub000/pkg/models"
)

// EventBus fans events out to buffered subscriber channels. Publish never
// blocks: a subscriber whose buffer is full misses the event and the drop
// handler, if any, is told.
type EventBus struct {
	mu         sync.RWMutex
	byType     map[models.EventType][]chan *models.Event
	all        []chan *models.Event
	bufferSize int
	closed     bool
	onDrop     func(models.EventType)
}

func NewEventBus(bufferSize int) *EventBus {
	if bufferSize <= 0 {
		bufferSize = 100
	}
	return &EventBus{
		byType:     make(map[models.EventType][]chan *models.Event),
		bufferSize: bufferSize,
	}
}

// OnDrop registers fn to be called for every undelivered event.
func (b *EventBus) OnDrop(fn func(models.EventType)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onDrop = fn
}

func (b *EventBus) Subscribe(eventType models.EventType) <-chan *models.Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := b.newChan()
	b.byType[eventType] = append(b.byType[eventType], ch)
	return ch
}

func (b *EventBus) SubscribeAll() <-chan *models.Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := b.newChan()
	b.all = append(b.all, ch)
	return ch
}

// newChan returns an already closed channel once the bus is closed so
// late subscribers do not block forever.
func (b *EventBus) newChan() chan *models.Event {
	ch := make(chan *models.Event, b.bufferSize)
	if b.closed {
		close(ch)
	}
	return ch
}

func (b *EventBus) Publish(event *models.Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}

	b.deliver(b.byType[event.Type], event)
	b.deliver(b.all, event)
}

func (b *EventBus) deliver(chans []chan *models.Event, event *models.Event) {
	for _, ch := range chans {
		select {
		case ch <- event:
		default:
			logger.Warnf("Event channel full, dropping event: %s", event.Type)
			if b.onDrop != nil {
				b.onDrop(event.Type)
			}
		}
	}
}

func (b *EventBus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true

	for _, chans := range b.byType {
		for _, ch := range chans {
			close(ch)
		}
	}
	for _, ch := range b.all {
		close(ch)
	}

	b.byType = nil
	b.all = nil
}

func AllEventTypes() []models.EventType {
	return []models.EventType{
		models.EventTypePredictionComputed,
		models.EventTypeDelayAlert,
		models.EventTypeAnomalyDetected,
		models.EventTypeEvaluationFailed,
	}
}
