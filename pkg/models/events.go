package models

import "time"

type EventType string

const (
	EventTypePredictionComputed EventType = "prediction_computed"
	EventTypeDelayAlert         EventType = "delay_alert"
	EventTypeAnomalyDetected    EventType = "anomaly_detected"
	EventTypeEvaluationFailed   EventType = "evaluation_failed"
)

type EventSeverity string

const (
	EventSeverityInfo     EventSeverity = "info"
	EventSeverityWarning  EventSeverity = "warning"
	EventSeverityCritical EventSeverity = "critical"
)

// Event represents an internal system event
type Event struct {
	ID        string        `json:"id"`
	Type      EventType     `json:"type"`
	Severity  EventSeverity `json:"severity"`
	Subject   string        `json:"subject,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
	Message   string        `json:"message"`
	Data      interface{}   `json:"data,omitempty"`
	TraceID   string        `json:"trace_id,omitempty"`
}

// NewEvent stamps the event with the evaluation time it belongs to.
func NewEvent(eventType EventType, subject, message string, at time.Time) *Event {
	return &Event{
		ID:        NewUUID(),
		Type:      eventType,
		Severity:  EventSeverityInfo,
		Subject:   subject,
		Timestamp: at,
		Message:   message,
	}
}

func (e *Event) WithSeverity(severity EventSeverity) *Event {
	e.Severity = severity
	return e
}

func (e *Event) WithData(data interface{}) *Event {
	e.Data = data
	return e
}

func (e *Event) WithTraceID(traceID string) *Event {
	e.TraceID = traceID
	return e
}

// EventSeverityFor maps an anomaly severity onto the event scale.
func EventSeverityFor(s Severity) EventSeverity {
	switch s {
	case SeverityCritical, SeverityHigh:
		return EventSeverityCritical
	case SeverityMedium:
		return EventSeverityWarning
	default:
		return EventSeverityInfo
	}
}
