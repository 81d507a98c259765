package events

import (
	"fmt"
	"time"

	"github.com/klipseyuw/INFO-492-Demo-sub000/pkg/models"
)

type Publisher struct {
	bus     *EventBus
	traceID string
}

func NewPublisher(bus *EventBus) *Publisher {
	return &Publisher{bus: bus}
}

func (p *Publisher) WithTraceID(traceID string) *Publisher {
	return &Publisher{
		bus:     p.bus,
		traceID: traceID,
	}
}

func (p *Publisher) publish(event *models.Event) {
	if p.traceID != "" {
		event.TraceID = p.traceID
	}
	p.bus.Publish(event)
}

func (p *Publisher) PredictionComputed(result *models.PredictionResult) {
	msg := fmt.Sprintf("Predicted delay %.2f min (%s confidence)", result.PredictedDelayMinutes, result.Confidence)
	event := models.NewEvent(models.EventTypePredictionComputed, result.ShipmentID, msg, result.AsOf).
		WithData(result)
	p.publish(event)
}

func (p *Publisher) DelayAlert(result *models.PredictionResult) {
	deviation := 0.0
	if result.CurrentDeviationMinutes != nil {
		deviation = *result.CurrentDeviationMinutes
	}
	msg := fmt.Sprintf(
		"Shipment %s deviates %.2f min from its predicted delay (threshold %.2f)",
		result.ShipmentID, deviation, result.ThresholdMinutes,
	)
	event := models.NewEvent(models.EventTypeDelayAlert, result.ShipmentID, msg, result.AsOf).
		WithSeverity(models.EventSeverityWarning).
		WithData(result)
	p.publish(event)
}

func (p *Publisher) AnomalyDetected(record models.AnomalyRecord) {
	event := models.NewEvent(models.EventTypeAnomalyDetected, record.Account(), record.Description, record.DetectedAt).
		WithSeverity(models.EventSeverityFor(record.Severity)).
		WithData(record)
	p.publish(event)
}

func (p *Publisher) EvaluationFailed(engine string, at time.Time, err error) {
	msg := "Evaluation failed: " + engine
	event := models.NewEvent(models.EventTypeEvaluationFailed, engine, msg, at).
		WithSeverity(models.EventSeverityCritical).
		WithData(map[string]interface{}{
			"engine": engine,
			"error":  err.Error(),
		})
	p.publish(event)
}
