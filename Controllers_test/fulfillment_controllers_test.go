package Controllers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/commerce-admin/models"
)

func TestFulfillmentPipelineOverHTTP(t *testing.T) {
	r, db := setupTestRouter(t)
	orderID := createOrderViaAPI(t, r)
	transitionViaAPI(t, r, orderID, "confirmed")

	// Enqueue with rush priority
	code, resp := doJSON(t, r, "POST", fmt.Sprintf("/api/v1/fulfillment/queue/%d", orderID),
		map[string]interface{}{"priority": "rush"})
	require.Equal(t, http.StatusCreated, code, "enqueue: %v", resp)

	// The queue reports urgency per entry
	code, resp = doJSON(t, r, "GET", "/api/v1/fulfillment/queue", nil)
	require.Equal(t, http.StatusOK, code)
	entries, ok := resp["data"].([]interface{})
	require.True(t, ok)
	require.Len(t, entries, 1)
	entry := entries[0].(map[string]interface{})
	assert.Contains(t, []interface{}{"normal", "urgent", "overdue"}, entry["urgency"])

	// Start picking
	code, resp = doJSON(t, r, "POST", fmt.Sprintf("/api/v1/fulfillment/start/%d", orderID),
		map[string]interface{}{"worker": "rosa"})
	require.Equal(t, http.StatusCreated, code, "start: %v", resp)
	task := dataOf(t, resp)
	taskID := uint(task["id"].(float64))
	items := task["items"].([]interface{})
	require.Len(t, items, 2)

	// Advancing with unpicked items is refused
	code, _ = doJSON(t, r, "POST", fmt.Sprintf("/api/v1/fulfillment/tasks/%d/advance", taskID), nil)
	assert.Equal(t, http.StatusConflict, code)

	for _, raw := range items {
		item := raw.(map[string]interface{})
		orderItemID := uint(item["order_item_id"].(float64))
		code, resp = doJSON(t, r, "POST",
			fmt.Sprintf("/api/v1/fulfillment/tasks/%d/items/%d/picked", taskID, orderItemID), nil)
		require.Equal(t, http.StatusOK, code, "pick item: %v", resp)
	}

	// picking -> packing -> labeling
	for _, stage := range []string{"packing", "labeling"} {
		code, resp = doJSON(t, r, "POST", fmt.Sprintf("/api/v1/fulfillment/tasks/%d/advance", taskID), nil)
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, stage, dataOf(t, resp)["stage"])
	}

	// Final step: only the carrier name is supplied, the stub carrier
	// resolves the tracking number.
	code, resp = doJSON(t, r, "POST", fmt.Sprintf("/api/v1/fulfillment/tasks/%d/advance", taskID),
		map[string]interface{}{"carrier": "UPS", "weight_kg": 1.2})
	require.Equal(t, http.StatusOK, code, "ship: %v", resp)

	var shipment models.Shipment
	require.NoError(t, db.Where("order_id = ?", orderID).First(&shipment).Error)
	assert.Equal(t, "UPS", shipment.Carrier)
	assert.NotEmpty(t, shipment.TrackingNumber)
	assert.Equal(t, 2, shipment.ItemsCount)

	code, resp = doJSON(t, r, "GET", fmt.Sprintf("/api/v1/orders/%d", orderID), nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "out_for_delivery", dataOf(t, resp)["status"])

	code, resp = doJSON(t, r, "GET", "/api/v1/fulfillment/shipments", nil)
	require.Equal(t, http.StatusOK, code)
	shipments, ok := resp["data"].([]interface{})
	require.True(t, ok)
	assert.Len(t, shipments, 1)
}

func TestGetTaskByOrder(t *testing.T) {
	r, _ := setupTestRouter(t)
	orderID := createOrderViaAPI(t, r)
	transitionViaAPI(t, r, orderID, "confirmed")

	// No active task yet
	code, _ := doJSON(t, r, "GET", fmt.Sprintf("/api/v1/fulfillment/tasks/by-order/%d", orderID), nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = doJSON(t, r, "POST", fmt.Sprintf("/api/v1/fulfillment/queue/%d", orderID), nil)
	require.Equal(t, http.StatusCreated, code)
	code, _ = doJSON(t, r, "POST", fmt.Sprintf("/api/v1/fulfillment/start/%d", orderID),
		map[string]interface{}{"worker": "rosa"})
	require.Equal(t, http.StatusCreated, code)

	code, resp := doJSON(t, r, "GET", fmt.Sprintf("/api/v1/fulfillment/tasks/by-order/%d", orderID), nil)
	require.Equal(t, http.StatusOK, code)
	task := dataOf(t, resp)
	assert.Equal(t, "picking", task["stage"])
	assert.EqualValues(t, orderID, task["order_id"])
}

func TestCancelClearsFulfillmentOverHTTP(t *testing.T) {
	r, db := setupTestRouter(t)
	orderID := createOrderViaAPI(t, r)
	transitionViaAPI(t, r, orderID, "confirmed")

	code, _ := doJSON(t, r, "POST", fmt.Sprintf("/api/v1/fulfillment/queue/%d", orderID), nil)
	require.Equal(t, http.StatusCreated, code)
	code, _ = doJSON(t, r, "POST", fmt.Sprintf("/api/v1/fulfillment/start/%d", orderID),
		map[string]interface{}{"worker": "rosa"})
	require.Equal(t, http.StatusCreated, code)

	code, resp := doJSON(t, r, "POST", fmt.Sprintf("/api/v1/orders/%d/cancel", orderID),
		map[string]interface{}{"note": "fraud review"})
	require.Equal(t, http.StatusOK, code, "cancel: %v", resp)

	var taskCount int64
	db.Model(&models.FulfillmentTask{}).Where("order_id = ?", orderID).Count(&taskCount)
	assert.EqualValues(t, 0, taskCount)

	code, _ = doJSON(t, r, "GET", fmt.Sprintf("/api/v1/fulfillment/tasks/by-order/%d", orderID), nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestStartUnqueuedOrderReturns404(t *testing.T) {
	r, _ := setupTestRouter(t)
	orderID := createOrderViaAPI(t, r)

	code, _ := doJSON(t, r, "POST", fmt.Sprintf("/api/v1/fulfillment/start/%d", orderID),
		map[string]interface{}{"worker": "rosa"})
	assert.Equal(t, http.StatusNotFound, code)
}

func TestStartAllAndPickListsOverHTTP(t *testing.T) {
	r, _ := setupTestRouter(t)

	queued := createOrderViaAPI(t, r)
	transitionViaAPI(t, r, queued, "confirmed")
	code, _ := doJSON(t, r, "POST", fmt.Sprintf("/api/v1/fulfillment/queue/%d", queued), nil)
	require.Equal(t, http.StatusCreated, code)

	unqueued := createOrderViaAPI(t, r)

	code, resp := doJSON(t, r, "POST", "/api/v1/fulfillment/start-all", map[string]interface{}{
		"order_ids": []uint{queued, unqueued},
		"worker":    "rosa",
	})
	require.Equal(t, http.StatusOK, code)
	data := dataOf(t, resp)
	assert.Len(t, data["started"].([]interface{}), 1)
	assert.Len(t, data["failed"].([]interface{}), 1)

	code, resp = doJSON(t, r, "POST", "/api/v1/fulfillment/pick-lists", map[string]interface{}{
		"order_ids": []uint{queued, unqueued},
	})
	require.Equal(t, http.StatusOK, code)
	lists := dataOf(t, resp)["lists"].([]interface{})
	assert.Len(t, lists, 2)
}
