package Controllers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndGetOrder(t *testing.T) {
	r, _ := setupTestRouter(t)

	orderID := createOrderViaAPI(t, r)

	code, resp := doJSON(t, r, "GET", fmt.Sprintf("/api/v1/orders/%d", orderID), nil)
	require.Equal(t, http.StatusOK, code)
	data := dataOf(t, resp)
	assert.Equal(t, "placed", data["status"])
	assert.Equal(t, 69.99, data["subtotal"])
	assert.Equal(t, 79.58, data["total"])

	timeline, ok := data["timeline"].([]interface{})
	require.True(t, ok)
	require.Len(t, timeline, 1)
}

func TestUpdateOrderStatusRejectsIllegalJump(t *testing.T) {
	r, _ := setupTestRouter(t)
	orderID := createOrderViaAPI(t, r)

	code, resp := doJSON(t, r, "PATCH", fmt.Sprintf("/api/v1/orders/%d/status", orderID),
		map[string]interface{}{"status": "delivered"})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, false, resp["status"])
}

func TestOrderLifecycleOverHTTP(t *testing.T) {
	r, _ := setupTestRouter(t)
	orderID := createOrderViaAPI(t, r)

	for _, status := range []string{"confirmed", "preparing", "ready", "out_for_delivery", "delivered", "completed"} {
		transitionViaAPI(t, r, orderID, status)
	}

	code, resp := doJSON(t, r, "GET", fmt.Sprintf("/api/v1/orders/%d/timeline", orderID), nil)
	require.Equal(t, http.StatusOK, code)
	timeline, ok := resp["data"].([]interface{})
	require.True(t, ok)
	assert.Len(t, timeline, 7) // placed + 6 transitions
}

func TestCancelOrderTwiceFails(t *testing.T) {
	r, _ := setupTestRouter(t)
	orderID := createOrderViaAPI(t, r)

	code, _ := doJSON(t, r, "POST", fmt.Sprintf("/api/v1/orders/%d/cancel", orderID),
		map[string]interface{}{"note": "customer request"})
	require.Equal(t, http.StatusOK, code)

	code, _ = doJSON(t, r, "POST", fmt.Sprintf("/api/v1/orders/%d/cancel", orderID), nil)
	assert.Equal(t, http.StatusConflict, code)
}

func TestAddOrderNote(t *testing.T) {
	r, _ := setupTestRouter(t)
	orderID := createOrderViaAPI(t, r)

	code, _ := doJSON(t, r, "POST", fmt.Sprintf("/api/v1/orders/%d/notes", orderID),
		map[string]interface{}{"author": "dispatch", "message": "fragile, double-box"})
	require.Equal(t, http.StatusCreated, code)

	code, resp := doJSON(t, r, "GET", fmt.Sprintf("/api/v1/orders/%d", orderID), nil)
	require.Equal(t, http.StatusOK, code)
	notes, ok := dataOf(t, resp)["notes"].([]interface{})
	require.True(t, ok)
	assert.Len(t, notes, 1)
}

func TestBulkActionOverHTTP(t *testing.T) {
	r, _ := setupTestRouter(t)

	a := createOrderViaAPI(t, r)
	b := createOrderViaAPI(t, r)
	for _, status := range []string{"confirmed", "preparing", "ready", "out_for_delivery", "delivered"} {
		transitionViaAPI(t, r, a, status)
	}
	code, _ := doJSON(t, r, "POST", fmt.Sprintf("/api/v1/orders/%d/cancel", b), nil)
	require.Equal(t, http.StatusOK, code)

	code, resp := doJSON(t, r, "POST", "/api/v1/orders/bulk", map[string]interface{}{
		"action":    map[string]interface{}{"type": "update_status", "new_status": "completed"},
		"order_ids": []uint{a, b},
	})
	require.Equal(t, http.StatusOK, code)

	data := dataOf(t, resp)
	succeeded, ok := data["succeeded"].([]interface{})
	require.True(t, ok)
	assert.Len(t, succeeded, 1)
	failed, ok := data["failed"].([]interface{})
	require.True(t, ok)
	assert.Len(t, failed, 1)
}

func TestGetCustomerWithOrders(t *testing.T) {
	r, _ := setupTestRouter(t)
	createOrderViaAPI(t, r)

	code, resp := doJSON(t, r, "GET", "/api/v1/customers/1", nil)
	require.Equal(t, http.StatusOK, code)
	data := dataOf(t, resp)
	customer, ok := data["customer"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Ava Thompson", customer["name"])
	orders, ok := data["orders"].([]interface{})
	require.True(t, ok)
	assert.Len(t, orders, 1)
}
