package controllers_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"foodbuddies/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterSellerSyncsBuyer(t *testing.T) {
	db := setupTestDB(t)
	router := newTestRouter()

	seedBuyer(t, db, "300", "Ravi", "Old Address", "Oldtown")

	rec := performMultipart(router, http.MethodPost, "/sellers/register-seller", map[string]string{
		"seller_name":    "Ravi Kitchen",
		"seller_phone":   "300",
		"seller_address": "9 Main St",
		"seller_upi":     "ravi@upi",
		"community":      "Greenview",
		"delivery_type":  "pickup",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var seller models.Seller
	require.NoError(t, db.Get(&seller,
		"SELECT seller_phone, seller_name, seller_rating, seller_no_of_rating, seller_membership_status FROM sellers WHERE seller_phone = $1", "300"))
	assert.Equal(t, "Ravi Kitchen", seller.Name)
	assert.Zero(t, seller.Rating)
	assert.True(t, seller.MembershipStatus)

	// The pre-existing buyer profile follows the seller registration
	var buyer models.Buyer
	require.NoError(t, db.Get(&buyer, "SELECT buyer_phone, buyer_name, buyer_address, community FROM buyers WHERE buyer_phone = $1", "300"))
	assert.Equal(t, "Ravi Kitchen", buyer.Name)
	assert.Equal(t, "9 Main St", buyer.Address)
	assert.Equal(t, "Greenview", buyer.Community)
}

func TestRegisterSellerMissingFields(t *testing.T) {
	db := setupTestDB(t)
	router := newTestRouter()

	rec := performMultipart(router, http.MethodPost, "/sellers/register-seller", map[string]string{
		"seller_name": "Ravi Kitchen",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, countRows(t, db, "sellers"))
}

func TestAddItemAndGetItems(t *testing.T) {
	db := setupTestDB(t)
	router := newTestRouter()

	seedSeller(t, db, "300", "Ravi", "Greenview", true)

	start := time.Now().UTC().Format(time.RFC3339)
	end := time.Now().UTC().Add(48 * time.Hour).Format(time.RFC3339)
	rec := performMultipart(router, http.MethodPost, "/sellers/items", map[string]string{
		"seller_phone":             "300",
		"item_name":                "Dosa",
		"item_desc":                "Crispy",
		"item_quantity":            "10",
		"item_price":               "12.5",
		"item_del_start_timestamp": start,
		"item_del_end_timestamp":   end,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = performJSON(router, http.MethodGet, "/sellers/items?sellerPhone=300", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var items []models.Item
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "Dosa", items[0].Name)
	assert.Equal(t, 12.5, items[0].Price)
	// No photo uploaded, the placeholder is served instead
	assert.Equal(t, "https://i.imgur.com/bOCEVJg.png", items[0].Photo)
}

func TestAddItemRejectsBadFields(t *testing.T) {
	db := setupTestDB(t)
	router := newTestRouter()

	seedSeller(t, db, "300", "Ravi", "Greenview", true)

	rec := performMultipart(router, http.MethodPost, "/sellers/items", map[string]string{
		"seller_phone":             "300",
		"item_name":                "Dosa",
		"item_desc":                "Crispy",
		"item_quantity":            "not-a-number",
		"item_price":               "12.5",
		"item_del_start_timestamp": time.Now().UTC().Format(time.RFC3339),
		"item_del_end_timestamp":   time.Now().UTC().Add(time.Hour).Format(time.RFC3339),
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, countRows(t, db, "items"))
}

func TestUpdateItem(t *testing.T) {
	db := setupTestDB(t)
	router := newTestRouter()

	seedSeller(t, db, "300", "Ravi", "Greenview", true)
	item := seedItem(t, db, "300", "Dosa", 10, 10, time.Now().UTC().Add(48*time.Hour))

	rec := performMultipart(router, http.MethodPost, "/sellers/updateItem/"+itoa(item), map[string]string{
		"item_name":                "Masala Dosa",
		"item_desc":                "Extra crispy",
		"item_quantity":            "7",
		"item_price":               "15",
		"item_del_start_timestamp": time.Now().UTC().Format(time.RFC3339),
		"item_del_end_timestamp":   time.Now().UTC().Add(72 * time.Hour).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got models.Item
	require.NoError(t, db.Get(&got, "SELECT item_id, item_name, item_quantity, item_price FROM items WHERE item_id = $1", item))
	assert.Equal(t, "Masala Dosa", got.Name)
	assert.Equal(t, 7, got.Quantity)
	assert.Equal(t, 15.0, got.Price)
}

func TestSellerProfileUpdateSyncsBuyer(t *testing.T) {
	db := setupTestDB(t)
	router := newTestRouter()

	seedSeller(t, db, "555", "Ravi", "Greenview", true)
	seedBuyer(t, db, "555", "Ravi", "9 Main St", "Greenview")

	rec := performJSON(router, http.MethodPut, "/sellers/seller/555", map[string]string{
		"seller_name":    "Ravi K",
		"seller_address": "14 Hill Rd",
		"seller_upi":     "ravik@upi",
		"community":      "Riverside",
		"delivery_type":  "delivery",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var buyer models.Buyer
	require.NoError(t, db.Get(&buyer, "SELECT buyer_phone, buyer_name, buyer_address, community FROM buyers WHERE buyer_phone = $1", "555"))
	assert.Equal(t, "Ravi K", buyer.Name)
	assert.Equal(t, "14 Hill Rd", buyer.Address)
	assert.Equal(t, "Riverside", buyer.Community)
}

func TestGetSellerProfile(t *testing.T) {
	db := setupTestDB(t)
	router := newTestRouter()

	seedSeller(t, db, "300", "Ravi", "Greenview", true)

	rec := performJSON(router, http.MethodGet, "/sellers/seller/300", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var seller models.Seller
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &seller))
	assert.Equal(t, "Ravi", seller.Name)

	rec = performJSON(router, http.MethodGet, "/sellers/seller/404", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSellerOrderLifecycle(t *testing.T) {
	db := setupTestDB(t)
	router := newTestRouter()

	seedBuyer(t, db, "111", "Asha", "12 Lake Rd", "Greenview")
	seedSeller(t, db, "222", "Ravi", "Greenview", true)
	item := seedItem(t, db, "222", "Dosa", 10, 10, time.Now().UTC().Add(48*time.Hour))

	rec := performJSON(router, http.MethodPost, "/buyers/placeOrder", models.OrderRequest{
		BuyerPhone: "111", BuyerRole: "buyer", SellerPhone: "222",
		Items: []models.OrderLine{{ItemID: item, Quantity: 2}},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var placed struct {
		OrderID int64 `json:"order_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &placed))

	// The seller sees the order with the buyer's details
	rec = performJSON(router, http.MethodGet, "/sellers/orders/222", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var orders []models.SellerOrder
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &orders))
	require.Len(t, orders, 1)
	assert.Equal(t, "Asha", orders[0].BuyerName)
	assert.Equal(t, 20.0, orders[0].TotalPrice)
	assert.False(t, orders[0].Delivered)

	// Line items joined with item name and price
	rec = performJSON(router, http.MethodGet, "/sellers/orders/items/"+itoa(placed.OrderID), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var lines []models.OrderItemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &lines))
	require.Len(t, lines, 1)
	assert.Equal(t, "Dosa", lines[0].ItemName)
	assert.Equal(t, 2, lines[0].Quantity)

	// Delivery type then delivered flag
	rec = performJSON(router, http.MethodPost, "/sellers/orders/delivery-type/"+itoa(placed.OrderID), map[string]string{
		"delivery_type": "doorstep",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = performJSON(router, http.MethodPut, "/sellers/orders/"+itoa(placed.OrderID)+"/delivered", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var order models.Order
	require.NoError(t, db.Get(&order,
		"SELECT order_id, order_delivered, delivery_type FROM orders WHERE order_id = $1", placed.OrderID))
	assert.True(t, order.Delivered)
	assert.Equal(t, "doorstep", order.DeliveryType)
}
