package services

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"

	"github.com/yeremiapane/commerce-admin/events"
	"github.com/yeremiapane/commerce-admin/models"
	"github.com/yeremiapane/commerce-admin/utils"
)

// Notifier is the dispatch collaborator. Delivery (email/SMS) happens
// elsewhere; the core fires the request and moves on. Double delivery is
// acceptable, which is why callers never retry through the core.
type Notifier interface {
	Notify(customerID uint, kind string, payload map[string]interface{}) error
}

// RecordingNotifier is the default Notifier: it stores the dispatch
// request as a Notification row, logs it and broadcasts it to connected
// dashboard clients.
type RecordingNotifier struct {
	db *gorm.DB
}

func NewRecordingNotifier(db *gorm.DB) *RecordingNotifier {
	return &RecordingNotifier{db: db}
}

func (n *RecordingNotifier) Notify(customerID uint, kind string, payload map[string]interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	notif := models.Notification{
		CustomerID: customerID,
		Kind:       kind,
		Payload:    string(raw),
		CreatedAt:  time.Now(),
	}
	if err := n.db.Create(&notif).Error; err != nil {
		return err
	}
	utils.InfoLogger.Printf("notification requested: customer=%d kind=%s", customerID, kind)
	events.BroadcastNotification(notif)
	return nil
}
