package events

import (
	"context"
	"sync"

	"github.com/klipseyuw/INFO-492-Demo-sub000/internal/logger"
	"github.com/klipseyuw/INFO-492-Demo-sub000/pkg/database"
	"github.com/klipseyuw/INFO-492-Demo-sub000/pkg/database/queries"
	"github.com/klipseyuw/INFO-492-Demo-sub000/pkg/models"
)

// Store persists engine outputs. InsertAnomaly reports false when an
// equivalent record already exists.
type Store interface {
	InsertAnomaly(ctx context.Context, record models.AnomalyRecord) (bool, error)
	InsertPrediction(ctx context.Context, result *models.PredictionResult) error
}

type databaseStore struct {
	anomalies   *queries.AnomalyRepository
	predictions *queries.PredictionRepository
}

func NewDatabaseStore(db *database.DB) Store {
	return &databaseStore{
		anomalies:   queries.NewAnomalyRepository(db.DB),
		predictions: queries.NewPredictionRepository(db.DB),
	}
}

func (s *databaseStore) InsertAnomaly(ctx context.Context, record models.AnomalyRecord) (bool, error) {
	return s.anomalies.Insert(ctx, record)
}

func (s *databaseStore) InsertPrediction(ctx context.Context, result *models.PredictionResult) error {
	return s.predictions.Insert(ctx, result)
}

type EventLogger struct {
	store     Store
	eventChan <-chan *models.Event
	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
	startOnce sync.Once
}

// NewEventLogger logs every event from eventChan. A nil store disables
// persistence.
func NewEventLogger(store Store, eventChan <-chan *models.Event) *EventLogger {
	ctx, cancel := context.WithCancel(context.Background())
	return &EventLogger{
		store:     store,
		eventChan: eventChan,
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
}

func (l *EventLogger) Start() {
	l.startOnce.Do(func() {
		go l.run()
	})
}

// Stop cancels processing and waits for the worker to exit.
func (l *EventLogger) Stop() {
	l.cancel()
	l.startOnce.Do(func() { close(l.done) })
	<-l.done
}

func (l *EventLogger) run() {
	defer close(l.done)
	for {
		select {
		case <-l.ctx.Done():
			return
		case event, ok := <-l.eventChan:
			if !ok {
				return
			}
			l.processEvent(event)
		}
	}
}

func (l *EventLogger) processEvent(event *models.Event) {
	entry := logger.WithFields(map[string]interface{}{
		"event_type": event.Type,
		"subject":    event.Subject,
		"severity":   event.Severity,
		"trace_id":   event.TraceID,
	})

	switch event.Severity {
	case models.EventSeverityCritical:
		entry.Error(event.Message)
	case models.EventSeverityWarning:
		entry.Warn(event.Message)
	default:
		entry.Info(event.Message)
	}

	if l.store == nil {
		return
	}

	switch event.Type {
	case models.EventTypeAnomalyDetected:
		l.persistAnomaly(event)
	case models.EventTypePredictionComputed:
		l.persistPrediction(event)
	}
}

func (l *EventLogger) persistAnomaly(event *models.Event) {
	record, ok := event.Data.(models.AnomalyRecord)
	if !ok {
		return
	}

	inserted, err := l.store.InsertAnomaly(l.ctx, record)
	if err != nil {
		logger.Errorf("Failed to persist anomaly: %v", err)
		return
	}
	if !inserted {
		logger.WithAccount(record.Account()).Debugf("Anomaly %s already recorded for this minute", record.Kind)
	}
}

func (l *EventLogger) persistPrediction(event *models.Event) {
	result, ok := event.Data.(*models.PredictionResult)
	if !ok {
		return
	}

	if err := l.store.InsertPrediction(l.ctx, result); err != nil {
		logger.Errorf("Failed to persist prediction: %v", err)
	}
}
