package services

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/yeremiapane/commerce-admin/models"
)

// ShipmentRequest is what the carrier needs to produce a label.
type ShipmentRequest struct {
	Carrier    string  `json:"carrier"`
	WeightKg   float64 `json:"weight_kg"`
	Dimensions string  `json:"dimensions"`
}

// ShipmentInfo is the carrier's answer. The core treats both as opaque.
type ShipmentInfo struct {
	TrackingNumber string `json:"tracking_number"`
	LabelURL       string `json:"label_url"`
}

// CarrierService creates shipments with an external carrier.
type CarrierService interface {
	CreateShipment(order *models.Order, req ShipmentRequest) (*ShipmentInfo, error)
}

// StubCarrier stands in for a real carrier integration. It hands out
// tracking numbers that look like the real thing so the rest of the
// workflow can be exercised end to end.
type StubCarrier struct{}

func NewStubCarrier() *StubCarrier {
	return &StubCarrier{}
}

func (c *StubCarrier) CreateShipment(order *models.Order, req ShipmentRequest) (*ShipmentInfo, error) {
	if strings.TrimSpace(req.Carrier) == "" {
		return nil, fmt.Errorf("carrier name is required")
	}
	code := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:12]
	return &ShipmentInfo{
		TrackingNumber: fmt.Sprintf("%s-%s", strings.ToUpper(req.Carrier[:min(3, len(req.Carrier))]), code),
		LabelURL:       fmt.Sprintf("https://labels.example.com/%s/%s.pdf", strings.ToLower(req.Carrier), code),
	}, nil
}
