package models

import "time"

type ShipmentStatus string

const (
	ShipmentInTransit ShipmentStatus = "in_transit"
	ShipmentDelivered ShipmentStatus = "delivered"
	ShipmentDelayed   ShipmentStatus = "delayed"
	ShipmentCancelled ShipmentStatus = "cancelled"
)

// Shipment is a tracked consignment. ActualTime stays nil while the
// shipment is still in flight.
type Shipment struct {
	ID           string         `json:"id"`
	RouteCode    string         `json:"route_code"`
	Origin       string         `json:"origin"`
	Destination  string         `json:"destination"`
	Status       ShipmentStatus `json:"status"`
	ExpectedTime time.Time      `json:"expected_time"`
	ActualTime   *time.Time     `json:"actual_time,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

func (s *Shipment) IsActive() bool {
	return s.ActualTime == nil && s.Status != ShipmentCancelled
}

// DelaySample returns the completed observation for this shipment, or
// false if it has not arrived yet.
func (s *Shipment) DelaySample() (HistoricalDelaySample, bool) {
	if s.ActualTime == nil {
		return HistoricalDelaySample{}, false
	}
	return HistoricalDelaySample{
		ShipmentID:   s.ID,
		ExpectedTime: s.ExpectedTime,
		ActualTime:   *s.ActualTime,
	}, true
}

// ActiveSample returns the in-flight view of the shipment used for
// deviation checks.
func (s *Shipment) ActiveSample() *ActiveShipment {
	return &ActiveShipment{
		ShipmentID:   s.ID,
		ExpectedTime: s.ExpectedTime,
	}
}

// HistoricalDelaySample is one completed shipment observation.
type HistoricalDelaySample struct {
	ShipmentID   string    `json:"shipment_id,omitempty"`
	ExpectedTime time.Time `json:"expected_time"`
	ActualTime   time.Time `json:"actual_time"`
}

// ActiveShipment is an in-flight shipment for which only the expected
// arrival is known.
type ActiveShipment struct {
	ShipmentID   string    `json:"shipment_id,omitempty"`
	ExpectedTime time.Time `json:"expected_time"`
}
