package controllers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"foodbuddies/models"
	"foodbuddies/utils"

	"github.com/Masterminds/squirrel"
)

// Shown for items uploaded without a photo
const defaultItemPhoto = "https://i.imgur.com/bOCEVJg.png"

// RegisterSeller creates the seller row and, when a buyer already exists
// with the same phone, syncs that buyer's profile fields in the same
// transaction.
func RegisterSeller(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		utils.HandleError(w, http.StatusBadRequest, "Invalid form data")
		return
	}

	seller := models.Seller{
		Name:         r.FormValue("seller_name"),
		Phone:        r.FormValue("seller_phone"),
		Address:      r.FormValue("seller_address"),
		UPI:          r.FormValue("seller_upi"),
		Community:    r.FormValue("community"),
		DeliveryType: r.FormValue("delivery_type"),
	}

	if seller.Name == "" || seller.Phone == "" || seller.Address == "" ||
		seller.UPI == "" || seller.Community == "" || seller.DeliveryType == "" {
		utils.HandleError(w, http.StatusBadRequest, "All fields are required.")
		return
	}

	// Photo is optional
	file, handler, err := r.FormFile("image")
	if err == nil {
		defer file.Close()

		imgPath, err := utils.SaveImageFile(file, "sellers", handler.Filename)
		if err != nil {
			utils.HandleError(w, http.StatusInternalServerError, "Failed to save image")
			log.Println(utils.ErrorWithTrace(err, err.Error()))
			return
		}
		seller.Photo = strings.ReplaceAll(imgPath, "\\", "/")
	}

	tx, err := db.Beginx()
	if err != nil {
		utils.HandleError(w, http.StatusInternalServerError, "Failed to register seller.")
		log.Println(utils.ErrorWithTrace(err, err.Error()))
		return
	}
	defer tx.Rollback()

	query, args, err := QB.Insert("sellers").
		Columns("seller_name", "seller_phone", "seller_address", "seller_upi", "seller_photo",
			"seller_rating", "seller_no_of_rating", "seller_membership_status", "community", "delivery_type").
		Values(seller.Name, seller.Phone, seller.Address, seller.UPI, seller.Photo,
			0.0, 0, true, seller.Community, seller.DeliveryType).
		ToSql()
	if err != nil {
		utils.HandleError(w, http.StatusInternalServerError, "Failed to register seller.")
		log.Println(utils.ErrorWithTrace(err, err.Error()))
		return
	}
	if _, err := tx.Exec(query, args...); err != nil {
		utils.HandleError(w, http.StatusInternalServerError, "Failed to register seller.")
		log.Println(utils.ErrorWithTrace(err, err.Error()))
		return
	}

	// Keep an existing buyer profile with this phone consistent
	query, args, err = QB.Update("buyers").
		Set("buyer_name", seller.Name).
		Set("buyer_address", seller.Address).
		Set("community", seller.Community).
		Where(squirrel.Eq{"buyer_phone": seller.Phone}).
		ToSql()
	if err != nil {
		utils.HandleError(w, http.StatusInternalServerError, "Failed to register seller.")
		log.Println(utils.ErrorWithTrace(err, err.Error()))
		return
	}
	if _, err := tx.Exec(query, args...); err != nil {
		utils.HandleError(w, http.StatusInternalServerError, "Failed to register seller.")
		log.Println(utils.ErrorWithTrace(err, err.Error()))
		return
	}

	if err := tx.Commit(); err != nil {
		utils.HandleError(w, http.StatusInternalServerError, "Failed to register seller.")
		log.Println(utils.ErrorWithTrace(err, err.Error()))
		return
	}

	utils.SendJSONResponse(w, http.StatusOK, map[string]string{
		"status":  "Success",
		"message": "Seller registered successfully",
	})
}

func AddItem(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		utils.HandleError(w, http.StatusBadRequest, "Invalid form data")
		return
	}

	sellerPhone := r.FormValue("seller_phone")
	itemName := r.FormValue("item_name")
	itemDesc := r.FormValue("item_desc")
	if sellerPhone == "" || itemName == "" || itemDesc == "" {
		utils.HandleError(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	quantity, err := strconv.Atoi(r.FormValue("item_quantity"))
	if err != nil || quantity < 0 {
		utils.HandleError(w, http.StatusBadRequest, "Invalid item quantity")
		return
	}
	price, err := strconv.ParseFloat(r.FormValue("item_price"), 64)
	if err != nil {
		utils.HandleError(w, http.StatusBadRequest, "Invalid item price")
		return
	}
	delStart, err := time.Parse(time.RFC3339, r.FormValue("item_del_start_timestamp"))
	if err != nil {
		utils.HandleError(w, http.StatusBadRequest, "Invalid delivery start timestamp")
		return
	}
	delEnd, err := time.Parse(time.RFC3339, r.FormValue("item_del_end_timestamp"))
	if err != nil {
		utils.HandleError(w, http.StatusBadRequest, "Invalid delivery end timestamp")
		return
	}

	var photo string
	file, handler, err := r.FormFile("item_photo")
	if err == nil {
		defer file.Close()

		imgPath, err := utils.SaveImageFile(file, "items", handler.Filename)
		if err != nil {
			utils.HandleError(w, http.StatusInternalServerError, "Failed to save image")
			log.Println(utils.ErrorWithTrace(err, err.Error()))
			return
		}
		photo = strings.ReplaceAll(imgPath, "\\", "/")
	}

	query, args, err := QB.Insert("items").
		Columns("seller_phone", "item_name", "item_desc", "item_quantity", "item_price",
			"item_photo", "item_del_start_timestamp", "item_del_end_timestamp").
		Values(sellerPhone, itemName, itemDesc, quantity, price, photo, delStart, delEnd).
		ToSql()
	if err != nil {
		utils.HandleError(w, http.StatusInternalServerError, "Failed to add item")
		log.Println(utils.ErrorWithTrace(err, err.Error()))
		return
	}
	if _, err := db.Exec(query, args...); err != nil {
		utils.HandleError(w, http.StatusInternalServerError, "Failed to add item")
		log.Println(utils.ErrorWithTrace(err, err.Error()))
		return
	}

	utils.SendJSONResponse(w, http.StatusCreated, map[string]string{
		"status":  "Success",
		"message": "Item added successfully",
	})
}

func UpdateItem(w http.ResponseWriter, r *http.Request) {
	itemID := r.PathValue("itemId")
	if itemID == "" {
		utils.HandleError(w, http.StatusBadRequest, "Item ID is required")
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		utils.HandleError(w, http.StatusBadRequest, "Invalid form data")
		return
	}

	itemName := r.FormValue("item_name")
	itemDesc := r.FormValue("item_desc")
	if itemName == "" || itemDesc == "" {
		utils.HandleError(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	quantity, err := strconv.Atoi(r.FormValue("item_quantity"))
	if err != nil || quantity < 0 {
		utils.HandleError(w, http.StatusBadRequest, "Invalid item quantity")
		return
	}
	price, err := strconv.ParseFloat(r.FormValue("item_price"), 64)
	if err != nil {
		utils.HandleError(w, http.StatusBadRequest, "Invalid item price")
		return
	}
	delStart, err := time.Parse(time.RFC3339, r.FormValue("item_del_start_timestamp"))
	if err != nil {
		utils.HandleError(w, http.StatusBadRequest, "Invalid delivery start timestamp")
		return
	}
	delEnd, err := time.Parse(time.RFC3339, r.FormValue("item_del_end_timestamp"))
	if err != nil {
		utils.HandleError(w, http.StatusBadRequest, "Invalid delivery end timestamp")
		return
	}

	update := QB.Update("items").
		Set("item_name", itemName).
		Set("item_desc", itemDesc).
		Set("item_quantity", quantity).
		Set("item_price", price).
		Set("item_del_start_timestamp", delStart).
		Set("item_del_end_timestamp", delEnd)

	// Photo only changes when a new one is uploaded
	file, handler, err := r.FormFile("item_photo")
	if err == nil {
		defer file.Close()

		// Drop the replaced image from the uploads folder
		query, args, err := QB.Select("item_photo").From("items").Where(squirrel.Eq{"item_id": itemID}).ToSql()
		if err == nil {
			var oldPhoto string
			if err := db.Get(&oldPhoto, query, args...); err == nil && oldPhoto != "" {
				if err := utils.DeleteImageFile(oldPhoto); err != nil {
					log.Println(utils.ErrorWithTrace(err, err.Error()))
				}
			}
		}

		imgPath, err := utils.SaveImageFile(file, "items", handler.Filename)
		if err != nil {
			utils.HandleError(w, http.StatusInternalServerError, "Failed to save image")
			log.Println(utils.ErrorWithTrace(err, err.Error()))
			return
		}
		update = update.Set("item_photo", strings.ReplaceAll(imgPath, "\\", "/"))
	}

	query, args, err := update.Where(squirrel.Eq{"item_id": itemID}).ToSql()
	if err != nil {
		utils.HandleError(w, http.StatusInternalServerError, "Failed to update item")
		log.Println(utils.ErrorWithTrace(err, err.Error()))
		return
	}
	if _, err := db.Exec(query, args...); err != nil {
		utils.HandleError(w, http.StatusInternalServerError, "Failed to update item")
		log.Println(utils.ErrorWithTrace(err, err.Error()))
		return
	}

	utils.SendJSONResponse(w, http.StatusOK, map[string]string{
		"status":  "Success",
		"message": "Item updated successfully",
	})
}

func GetItems(w http.ResponseWriter, r *http.Request) {
	sellerPhone := r.URL.Query().Get("sellerPhone")
	if sellerPhone == "" {
		utils.HandleError(w, http.StatusBadRequest, "Missing seller phone number")
		return
	}

	query, args, err := QB.Select("item_id", "seller_phone", "item_name", "item_desc",
		"item_quantity", "item_price",
		"COALESCE(NULLIF(item_photo, ''), '"+defaultItemPhoto+"') AS item_photo",
		"item_del_start_timestamp", "item_del_end_timestamp").
		From("items").
		Where(squirrel.Eq{"seller_phone": sellerPhone}).
		ToSql()
	if err != nil {
		utils.HandleError(w, http.StatusInternalServerError, "Failed to fetch items")
		log.Println(utils.ErrorWithTrace(err, err.Error()))
		return
	}

	items := []models.Item{}
	if err := db.Select(&items, query, args...); err != nil {
		utils.HandleError(w, http.StatusInternalServerError, "Failed to fetch items")
		log.Println(utils.ErrorWithTrace(err, err.Error()))
		return
	}

	utils.SendJSONResponse(w, http.StatusOK, items)
}

func GetSellerProfile(w http.ResponseWriter, r *http.Request) {
	phone := r.PathValue("phone")
	if phone == "" {
		utils.HandleError(w, http.StatusBadRequest, "Phone number is required")
		return
	}

	query, args, err := QB.Select("seller_name", "seller_phone", "seller_address",
		"seller_upi", "community", "delivery_type").
		From("sellers").
		Where(squirrel.Eq{"seller_phone": phone}).
		ToSql()
	if err != nil {
		utils.HandleError(w, http.StatusInternalServerError, "Failed to fetch seller profile")
		log.Println(utils.ErrorWithTrace(err, err.Error()))
		return
	}

	var seller models.Seller
	if err := db.Get(&seller, query, args...); err != nil {
		utils.HandleError(w, http.StatusNotFound, "Seller not found")
		return
	}

	utils.SendJSONResponse(w, http.StatusOK, seller)
}

// UpdateSellerProfile mirrors UpdateBuyerProfile: the seller row and a buyer
// row sharing the phone are updated in one transaction.
func UpdateSellerProfile(w http.ResponseWriter, r *http.Request) {
	phone := r.PathValue("phone")
	if phone == "" {
		utils.HandleError(w, http.StatusBadRequest, "Phone number is required")
		return
	}

	var body struct {
		Name         string `json:"seller_name"`
		Address      string `json:"seller_address"`
		UPI          string `json:"seller_upi"`
		Community    string `json:"community"`
		DeliveryType string `json:"delivery_type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.HandleError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	tx, err := db.Beginx()
	if err != nil {
		utils.HandleError(w, http.StatusInternalServerError, "Failed to update seller profile")
		log.Println(utils.ErrorWithTrace(err, err.Error()))
		return
	}
	defer tx.Rollback()

	query, args, err := QB.Update("sellers").
		Set("seller_name", body.Name).
		Set("seller_address", body.Address).
		Set("seller_upi", body.UPI).
		Set("community", body.Community).
		Set("delivery_type", body.DeliveryType).
		Where(squirrel.Eq{"seller_phone": phone}).
		ToSql()
	if err != nil {
		utils.HandleError(w, http.StatusInternalServerError, "Failed to update seller profile")
		log.Println(utils.ErrorWithTrace(err, err.Error()))
		return
	}
	if _, err := tx.Exec(query, args...); err != nil {
		utils.HandleError(w, http.StatusInternalServerError, "Failed to update seller profile")
		log.Println(utils.ErrorWithTrace(err, err.Error()))
		return
	}

	query, args, err = QB.Update("buyers").
		Set("buyer_name", body.Name).
		Set("buyer_address", body.Address).
		Set("community", body.Community).
		Where(squirrel.Eq{"buyer_phone": phone}).
		ToSql()
	if err != nil {
		utils.HandleError(w, http.StatusInternalServerError, "Failed to update seller profile")
		log.Println(utils.ErrorWithTrace(err, err.Error()))
		return
	}
	if _, err := tx.Exec(query, args...); err != nil {
		utils.HandleError(w, http.StatusInternalServerError, "Failed to update seller profile")
		log.Println(utils.ErrorWithTrace(err, err.Error()))
		return
	}

	if err := tx.Commit(); err != nil {
		utils.HandleError(w, http.StatusInternalServerError, "Failed to update seller profile")
		log.Println(utils.ErrorWithTrace(err, err.Error()))
		return
	}

	utils.SendJSONResponse(w, http.StatusOK, map[string]string{
		"message": "Seller profile updated successfully",
	})
}

func GetSellerOrders(w http.ResponseWriter, r *http.Request) {
	phone := r.PathValue("phone")
	if phone == "" {
		utils.HandleError(w, http.StatusBadRequest, "Missing seller phone number")
		return
	}

	query, args, err := QB.Select("o.order_id", "o.buyer_phone", "o.order_total_price",
		"b.buyer_name", "b.buyer_address", "o.order_delivered", "o.delivery_type").
		From("orders o").
		Join("buyers b ON o.buyer_phone = b.buyer_phone").
		Where(squirrel.Eq{"o.seller_phone": phone}).
		ToSql()
	if err != nil {
		utils.HandleError(w, http.StatusInternalServerError, "Failed to fetch orders for seller")
		log.Println(utils.ErrorWithTrace(err, err.Error()))
		return
	}

	orders := []models.SellerOrder{}
	if err := db.Select(&orders, query, args...); err != nil {
		utils.HandleError(w, http.StatusInternalServerError, "Failed to fetch orders for seller")
		log.Println(utils.ErrorWithTrace(err, err.Error()))
		return
	}

	utils.SendJSONResponse(w, http.StatusOK, orders)
}

func GetOrderItems(w http.ResponseWriter, r *http.Request) {
	orderID := r.PathValue("orderId")
	if orderID == "" {
		utils.HandleError(w, http.StatusBadRequest, "Order ID is required")
		return
	}

	query, args, err := QB.Select("oi.item_id", "i.item_name", "oi.item_quantity", "i.item_price").
		From("order_items oi").
		Join("items i ON oi.item_id = i.item_id").
		Where(squirrel.Eq{"oi.order_id": orderID}).
		ToSql()
	if err != nil {
		utils.HandleError(w, http.StatusInternalServerError, "Failed to fetch order items")
		log.Println(utils.ErrorWithTrace(err, err.Error()))
		return
	}

	items := []models.OrderItemDetail{}
	if err := db.Select(&items, query, args...); err != nil {
		utils.HandleError(w, http.StatusInternalServerError, "Failed to fetch order items")
		log.Println(utils.ErrorWithTrace(err, err.Error()))
		return
	}

	utils.SendJSONResponse(w, http.StatusOK, items)
}

func MarkOrderDelivered(w http.ResponseWriter, r *http.Request) {
	orderID := r.PathValue("orderId")
	if orderID == "" {
		utils.HandleError(w, http.StatusBadRequest, "Order ID is required")
		return
	}

	query, args, err := QB.Update("orders").
		Set("order_delivered", true).
		Where(squirrel.Eq{"order_id": orderID}).
		ToSql()
	if err != nil {
		utils.HandleError(w, http.StatusInternalServerError, "Failed to mark order as delivered")
		log.Println(utils.ErrorWithTrace(err, err.Error()))
		return
	}
	if _, err := db.Exec(query, args...); err != nil {
		utils.HandleError(w, http.StatusInternalServerError, "Failed to mark order as delivered")
		log.Println(utils.ErrorWithTrace(err, err.Error()))
		return
	}

	utils.SendJSONResponse(w, http.StatusOK, map[string]string{
		"message": "Order marked as delivered",
	})
}

func UpdateOrderDeliveryType(w http.ResponseWriter, r *http.Request) {
	orderID := r.PathValue("orderId")
	if orderID == "" {
		utils.HandleError(w, http.StatusBadRequest, "Order ID is required")
		return
	}

	var body struct {
		DeliveryType string `json:"delivery_type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.DeliveryType == "" {
		utils.HandleError(w, http.StatusBadRequest, "Delivery type is required")
		return
	}

	query, args, err := QB.Update("orders").
		Set("delivery_type", body.DeliveryType).
		Where(squirrel.Eq{"order_id": orderID}).
		ToSql()
	if err != nil {
		utils.HandleError(w, http.StatusInternalServerError, "Failed to update delivery type")
		log.Println(utils.ErrorWithTrace(err, err.Error()))
		return
	}
	if _, err := db.Exec(query, args...); err != nil {
		utils.HandleError(w, http.StatusInternalServerError, "Failed to update delivery type")
		log.Println(utils.ErrorWithTrace(err, err.Error()))
		return
	}

	utils.SendJSONResponse(w, http.StatusOK, map[string]string{
		"message": "Delivery type updated successfully",
	})
}
