package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/commerce-admin/models"
)

func TestOrderTotalsScenario(t *testing.T) {
	db := setupTestDB(t)
	customer := seedCustomer(t, db)
	svc := NewOrderService(db, NewRecordingNotifier(db))

	order, err := svc.CreateOrder(CreateOrderInput{
		Code:       "ORD-1",
		CustomerID: customer.ID,
		Items: []OrderItemInput{
			{Name: "Espresso Blend 1kg", Price: 24.50, Quantity: 1},
			{Name: "Pour-Over Kettle", Price: 21.45, Quantity: 1},
		},
		DiscountCode:    "WELCOME10",
		DiscountAmount:  4.60,
		Tax:             3.41,
		DeliveryFee:     3.99,
		Tip:             5.00,
		FulfillmentType: models.FulfillmentDelivery,
		Address:         "12 Harbor Street",
	})
	require.NoError(t, err)

	assert.Equal(t, 45.95, order.Subtotal)
	assert.Equal(t, 53.75, order.Total)
	assert.NoError(t, CheckTotals(order))
}

func TestCreateOrderValidation(t *testing.T) {
	db := setupTestDB(t)
	customer := seedCustomer(t, db)
	svc := NewOrderService(db, NewRecordingNotifier(db))

	tests := []struct {
		name string
		in   CreateOrderInput
	}{
		{
			name: "zero quantity",
			in: CreateOrderInput{
				CustomerID: customer.ID,
				Items:      []OrderItemInput{{Name: "Mug", Price: 5, Quantity: 0}},
				Address:    "somewhere",
			},
		},
		{
			name: "negative price",
			in: CreateOrderInput{
				CustomerID: customer.ID,
				Items:      []OrderItemInput{{Name: "Mug", Price: -1, Quantity: 1}},
				Address:    "somewhere",
			},
		},
		{
			name: "discount exceeds subtotal",
			in: CreateOrderInput{
				CustomerID:     customer.ID,
				Items:          []OrderItemInput{{Name: "Mug", Price: 5, Quantity: 1}},
				DiscountAmount: 10,
				Address:        "somewhere",
			},
		},
		{
			name: "delivery without address",
			in: CreateOrderInput{
				CustomerID: customer.ID,
				Items:      []OrderItemInput{{Name: "Mug", Price: 5, Quantity: 1}},
			},
		},
		{
			name: "no items",
			in:   CreateOrderInput{CustomerID: customer.ID, Address: "somewhere"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateOrder(tc.in)
			assert.Error(t, err)
		})
	}
}

func TestDeliveryTransitionSequence(t *testing.T) {
	db := setupTestDB(t)
	customer := seedCustomer(t, db)
	svc := NewOrderService(db, NewRecordingNotifier(db))
	order := newDeliveryOrder(t, svc, customer.ID)

	sequence := []string{
		models.OrderStatusConfirmed,
		models.OrderStatusPreparing,
		models.OrderStatusReady,
		models.OrderStatusOutForDelivery,
		models.OrderStatusDelivered,
		models.OrderStatusCompleted,
	}

	for n, status := range sequence {
		updated, err := svc.Transition(order.ID, status, "step")
		require.NoError(t, err, "transition to %s", status)
		assert.Equal(t, status, updated.Status)

		// The "placed" creation entry plus one entry per transition.
		reloaded, err := svc.GetOrder(order.ID)
		require.NoError(t, err)
		require.Len(t, reloaded.Timeline, n+2)
		assert.Equal(t, status, reloaded.Timeline[n+1].Status)
	}
}

func TestReadyToDeliveredDirectlyFails(t *testing.T) {
	db := setupTestDB(t)
	customer := seedCustomer(t, db)
	svc := NewOrderService(db, NewRecordingNotifier(db))
	order := newDeliveryOrder(t, svc, customer.ID)
	advanceTo(t, svc, order, models.OrderStatusReady)

	_, err := svc.Transition(order.ID, models.OrderStatusDelivered, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestPickupBranchSkipsDelivery(t *testing.T) {
	db := setupTestDB(t)
	customer := seedCustomer(t, db)
	svc := NewOrderService(db, NewRecordingNotifier(db))

	order, err := svc.CreateOrder(CreateOrderInput{
		CustomerID:      customer.ID,
		Items:           []OrderItemInput{{Name: "Gift Card", Price: 25, Quantity: 1}},
		FulfillmentType: models.FulfillmentPickup,
	})
	require.NoError(t, err)
	advanceTo(t, svc, order, models.OrderStatusReady)

	// ready -> out_for_delivery is a delivery-only branch
	_, err = svc.Transition(order.ID, models.OrderStatusOutForDelivery, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	updated, err := svc.Transition(order.ID, models.OrderStatusPickedUp, "handed over")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPickedUp, updated.Status)
}

func TestCancelLegalFromAnyNonTerminalState(t *testing.T) {
	db := setupTestDB(t)
	customer := seedCustomer(t, db)
	svc := NewOrderService(db, NewRecordingNotifier(db))

	for _, status := range []string{
		models.OrderStatusPlaced,
		models.OrderStatusConfirmed,
		models.OrderStatusPreparing,
		models.OrderStatusReady,
		models.OrderStatusOutForDelivery,
		models.OrderStatusDelivered,
	} {
		order := newDeliveryOrder(t, svc, customer.ID)
		if status != models.OrderStatusPlaced {
			advanceTo(t, svc, order, status)
		}
		_, err := svc.Cancel(order.ID, "changed their mind")
		assert.NoError(t, err, "cancel from %s", status)
	}
}

func TestCancelFailsFromTerminalStates(t *testing.T) {
	db := setupTestDB(t)
	customer := seedCustomer(t, db)
	svc := NewOrderService(db, NewRecordingNotifier(db))

	completed := newDeliveryOrder(t, svc, customer.ID)
	advanceTo(t, svc, completed, models.OrderStatusCompleted)
	_, err := svc.Cancel(completed.ID, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	cancelled := newDeliveryOrder(t, svc, customer.ID)
	_, err = svc.Cancel(cancelled.ID, "")
	require.NoError(t, err)
	_, err = svc.Cancel(cancelled.ID, "again")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestTerminalTransitionsRequestNotification(t *testing.T) {
	db := setupTestDB(t)
	customer := seedCustomer(t, db)
	svc := NewOrderService(db, NewRecordingNotifier(db))
	order := newDeliveryOrder(t, svc, customer.ID)
	advanceTo(t, svc, order, models.OrderStatusDelivered)

	var notifs []models.Notification
	require.NoError(t, db.Where("customer_id = ?", customer.ID).Find(&notifs).Error)

	kinds := make(map[string]bool)
	for _, n := range notifs {
		kinds[n.Kind] = true
	}
	assert.True(t, kinds[models.NotifOrderShipped])
	assert.True(t, kinds[models.NotifOrderDelivered])
}

func TestAddNoteIsAppendOnly(t *testing.T) {
	db := setupTestDB(t)
	customer := seedCustomer(t, db)
	svc := NewOrderService(db, NewRecordingNotifier(db))
	order := newDeliveryOrder(t, svc, customer.ID)

	_, err := svc.AddNote(order.ID, "dispatch", "fragile, double-box")
	require.NoError(t, err)
	_, err = svc.AddNote(order.ID, "dispatch", "customer called")
	require.NoError(t, err)
	_, err = svc.AddNote(order.ID, "dispatch", "  ")
	assert.Error(t, err)

	reloaded, err := svc.GetOrder(order.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.Notes, 2)
	assert.Equal(t, "fragile, double-box", reloaded.Notes[0].Message)
}
