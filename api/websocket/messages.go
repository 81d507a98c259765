package websocket

import (
	"encoding/json"
	"time"

	"github.com/klipseyuw/INFO-492-Demo-sub000/pkg/models"
)

// Topic is what a dashboard client subscribes to.
type Topic string

const (
	TopicPrediction       Topic = "prediction"
	TopicDelayAlert       Topic = "delay_alert"
	TopicAnomaly          Topic = "anomaly_detected"
	TopicEvaluationFailed Topic = "evaluation_failed"
)

// DefaultTopics are delivered to clients that never send a subscribe.
var DefaultTopics = []Topic{TopicDelayAlert, TopicAnomaly}

func (t Topic) Valid() bool {
	switch t {
	case TopicPrediction, TopicDelayAlert, TopicAnomaly, TopicEvaluationFailed:
		return true
	default:
		return false
	}
}

// TopicFor returns the topic an internal event is published under, or ""
// for events that stay internal.
func TopicFor(eventType models.EventType) Topic {
	switch eventType {
	case models.EventTypePredictionComputed:
		return TopicPrediction
	case models.EventTypeDelayAlert:
		return TopicDelayAlert
	case models.EventTypeAnomalyDetected:
		return TopicAnomaly
	case models.EventTypeEvaluationFailed:
		return TopicEvaluationFailed
	default:
		return ""
	}
}

type OutgoingMessage struct {
	Type      Topic       `json:"type"`
	Subject   string      `json:"subject,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Severity  string      `json:"severity,omitempty"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

func NewMessage(event *models.Event) *OutgoingMessage {
	topic := TopicFor(event.Type)
	if topic == "" {
		return nil
	}
	return &OutgoingMessage{
		Type:      topic,
		Subject:   event.Subject,
		Timestamp: event.Timestamp,
		Severity:  string(event.Severity),
		Message:   event.Message,
		Data:      event.Data,
	}
}

func (m *OutgoingMessage) JSON() ([]byte, error) {
	return json.Marshal(m)
}

type IncomingMessage struct {
	Type   string  `json:"type"`
	Topics []Topic `json:"topics,omitempty"`
}

type subscriptionUpdate struct {
	Type      string    `json:"type"`
	Action    string    `json:"action"`
	Topics    []Topic   `json:"topics"`
	Timestamp time.Time `json:"timestamp"`
}
