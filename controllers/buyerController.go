package controllers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"foodbuddies/models"
	"foodbuddies/utils"

	"github.com/Masterminds/squirrel"
)

type sellerItemRow struct {
	SellerName  string    `db:"seller_name"`
	SellerPhone string    `db:"seller_phone"`
	Rating      float64   `db:"seller_rating"`
	Photo       string    `db:"seller_photo"`
	ItemName    string    `db:"item_name"`
	Price       float64   `db:"item_price"`
	Description string    `db:"item_desc"`
	Quantity    int       `db:"item_quantity"`
	ItemPhoto   string    `db:"item_photo"`
	DelStart    time.Time `db:"item_del_start_timestamp"`
	DelEnd      time.Time `db:"item_del_end_timestamp"`
	ItemID      int64     `db:"item_id"`
}

func SellersWithItems(w http.ResponseWriter, r *http.Request) {
	sellersWithItems(w, r.URL.Query().Get("community"))
}

func SellersByCommunity(w http.ResponseWriter, r *http.Request) {
	sellersWithItems(w, r.URL.Query().Get("community"))
}

// sellersWithItems returns active sellers in a community, each with their
// currently orderable items (delivery window still open, stock left).
func sellersWithItems(w http.ResponseWriter, community string) {
	query, args, err := QB.Select(
		"s.seller_name",
		"s.seller_phone",
		"s.seller_rating",
		"s.seller_photo",
		"i.item_name",
		"i.item_price",
		"i.item_desc",
		"i.item_quantity",
		"i.item_photo",
		"i.item_del_start_timestamp",
		"i.item_del_end_timestamp",
		"i.item_id").
		From("sellers s").
		Join("items i ON s.seller_phone = i.seller_phone").
		Where(squirrel.Eq{"s.community": community}).
		Where(squirrel.Eq{"s.seller_membership_status": true}).
		Where(squirrel.Gt{"i.item_del_end_timestamp": time.Now()}).
		Where(squirrel.Gt{"i.item_quantity": 0}).
		ToSql()
	if err != nil {
		utils.HandleError(w, http.StatusInternalServerError, "Failed to fetch sellers")
		log.Println(utils.ErrorWithTrace(err, err.Error()))
		return
	}

	var rows []sellerItemRow
	if err := db.Select(&rows, query, args...); err != nil {
		utils.HandleError(w, http.StatusInternalServerError, "Failed to fetch sellers")
		log.Println(utils.ErrorWithTrace(err, err.Error()))
		return
	}

	// Group the flat join rows one seller to many items
	sellers := []models.SellerWithItems{}
	index := map[string]int{}
	for _, row := range rows {
		item := models.SellerItem{
			Name:        row.ItemName,
			Price:       row.Price,
			Description: row.Description,
			Quantity:    row.Quantity,
			ImageURL:    row.ItemPhoto,
			DelStart:    row.DelStart,
			DelEnd:      row.DelEnd,
			ItemID:      row.ItemID,
			SellerPhone: row.SellerPhone,
		}
		if i, ok := index[row.SellerPhone]; ok {
			sellers[i].AllItems = append(sellers[i].AllItems, item)
			continue
		}
		index[row.SellerPhone] = len(sellers)
		sellers = append(sellers, models.SellerWithItems{
			Name:        row.SellerName,
			SellerPhone: row.SellerPhone,
			Rating:      row.Rating,
			PhotoURL:    row.Photo,
			AllItems:    []models.SellerItem{item},
		})
	}

	utils.SendJSONResponse(w, http.StatusOK, sellers)
}

func RegisterBuyer(w http.ResponseWriter, r *http.Request) {
	var buyer models.Buyer
	if err := json.NewDecoder(r.Body).Decode(&buyer); err != nil {
		utils.HandleError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if buyer.Name == "" || buyer.Phone == "" || buyer.Address == "" || buyer.Community == "" {
		utils.HandleError(w, http.StatusBadRequest, "All fields are required.")
		return
	}

	query, args, err := QB.Insert("buyers").
		Columns("buyer_name", "buyer_phone", "buyer_address", "community").
		Values(buyer.Name, buyer.Phone, buyer.Address, buyer.Community).
		ToSql()
	if err != nil {
		utils.HandleError(w, http.StatusInternalServerError, "Failed to register buyer.")
		log.Println(utils.ErrorWithTrace(err, err.Error()))
		return
	}

	if _, err := db.Exec(query, args...); err != nil {
		utils.HandleError(w, http.StatusInternalServerError, "Failed to register buyer.")
		log.Println(utils.ErrorWithTrace(err, err.Error()))
		return
	}

	utils.SendJSONResponse(w, http.StatusOK, map[string]string{
		"status":  "Success",
		"message": "Buyer registered successfully",
	})
}

func GetBuyerProfile(w http.ResponseWriter, r *http.Request) {
	phone := r.PathValue("phone")
	if phone == "" {
		utils.HandleError(w, http.StatusBadRequest, "Phone number is required")
		return
	}

	query, args, err := QB.Select("buyer_phone", "buyer_name", "buyer_address", "community").
		From("buyers").
		Where(squirrel.Eq{"buyer_phone": phone}).
		ToSql()
	if err != nil {
		utils.HandleError(w, http.StatusInternalServerError, "Failed to fetch buyer profile")
		log.Println(utils.ErrorWithTrace(err, err.Error()))
		return
	}

	var buyer models.Buyer
	if err := db.Get(&buyer, query, args...); err != nil {
		utils.HandleError(w, http.StatusNotFound, "Buyer not found")
		return
	}

	utils.SendJSONResponse(w, http.StatusOK, buyer)
}

// UpdateBuyerProfile updates the buyer row and keeps a seller row sharing
// the same phone in sync. Both writes commit together.
func UpdateBuyerProfile(w http.ResponseWriter, r *http.Request) {
	phone := r.PathValue("phone")
	if phone == "" {
		utils.HandleError(w, http.StatusBadRequest, "Phone number is required")
		return
	}

	var body struct {
		Name      string `json:"buyer_name"`
		Address   string `json:"buyer_address"`
		Community string `json:"community"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.HandleError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	tx, err := db.Beginx()
	if err != nil {
		utils.HandleError(w, http.StatusInternalServerError, "Failed to update buyer profile")
		log.Println(utils.ErrorWithTrace(err, err.Error()))
		return
	}
	defer tx.Rollback()

	query, args, err := QB.Update("buyers").
		Set("buyer_name", body.Name).
		Set("buyer_address", body.Address).
		Set("community", body.Community).
		Where(squirrel.Eq{"buyer_phone": phone}).
		ToSql()
	if err != nil {
		utils.HandleError(w, http.StatusInternalServerError, "Failed to update buyer profile")
		log.Println(utils.ErrorWithTrace(err, err.Error()))
		return
	}
	if _, err := tx.Exec(query, args...); err != nil {
		utils.HandleError(w, http.StatusInternalServerError, "Failed to update buyer profile")
		log.Println(utils.ErrorWithTrace(err, err.Error()))
		return
	}

	query, args, err = QB.Update("sellers").
		Set("seller_name", body.Name).
		Set("seller_address", body.Address).
		Set("community", body.Community).
		Where(squirrel.Eq{"seller_phone": phone}).
		ToSql()
	if err != nil {
		utils.HandleError(w, http.StatusInternalServerError, "Failed to update buyer profile")
		log.Println(utils.ErrorWithTrace(err, err.Error()))
		return
	}
	if _, err := tx.Exec(query, args...); err != nil {
		utils.HandleError(w, http.StatusInternalServerError, "Failed to update buyer profile")
		log.Println(utils.ErrorWithTrace(err, err.Error()))
		return
	}

	if err := tx.Commit(); err != nil {
		utils.HandleError(w, http.StatusInternalServerError, "Failed to update buyer profile")
		log.Println(utils.ErrorWithTrace(err, err.Error()))
		return
	}

	utils.SendJSONResponse(w, http.StatusOK, map[string]string{
		"message": "Buyer profile updated successfully",
	})
}

// PlaceOrder validates the purchase, computes the total from current prices
// and records the order, its line items and the stock decrements in a single
// transaction. Any failure rolls the whole order back.
func PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req models.OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.HandleError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.BuyerPhone == "" || req.SellerPhone == "" || len(req.Items) == 0 {
		utils.HandleError(w, http.StatusBadRequest, "Make sure you fill all fields")
		return
	}

	// Identity validation, nothing written yet
	switch req.BuyerRole {
	case "buyer":
		query, args, err := QB.Select("buyer_phone").From("buyers").Where(squirrel.Eq{"buyer_phone": req.BuyerPhone}).ToSql()
		if err != nil {
			utils.HandleError(w, http.StatusInternalServerError, "Failed to place order")
			log.Println(utils.ErrorWithTrace(err, err.Error()))
			return
		}
		var phone string
		if err := db.Get(&phone, query, args...); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				utils.HandleError(w, http.StatusBadRequest, "Buyer does not exist")
				return
			}
			utils.HandleError(w, http.StatusInternalServerError, "Failed to place order")
			log.Println(utils.ErrorWithTrace(err, err.Error()))
			return
		}
	case "seller":
		query, args, err := QB.Select("seller_phone").From("sellers").Where(squirrel.Eq{"seller_phone": req.SellerPhone}).ToSql()
		if err != nil {
			utils.HandleError(w, http.StatusInternalServerError, "Failed to place order")
			log.Println(utils.ErrorWithTrace(err, err.Error()))
			return
		}
		var phone string
		if err := db.Get(&phone, query, args...); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				utils.HandleError(w, http.StatusBadRequest, "Seller does not exist")
				return
			}
			utils.HandleError(w, http.StatusInternalServerError, "Failed to place order")
			log.Println(utils.ErrorWithTrace(err, err.Error()))
			return
		}
	default:
		utils.HandleError(w, http.StatusBadRequest, "Invalid buyer role")
		return
	}

	// Pricing pass, still read-only. The delivery window is only enforced
	// in discovery; an order placed against a closed-window item goes through.
	var total float64
	for _, line := range req.Items {
		if line.Quantity <= 0 {
			utils.HandleError(w, http.StatusBadRequest, fmt.Sprintf("Invalid quantity for item %d", line.ItemID))
			return
		}
		query, args, err := QB.Select("item_price").From("items").Where(squirrel.Eq{"item_id": line.ItemID}).ToSql()
		if err != nil {
			utils.HandleError(w, http.StatusInternalServerError, "Failed to place order")
			log.Println(utils.ErrorWithTrace(err, err.Error()))
			return
		}
		var price float64
		if err := db.Get(&price, query, args...); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				utils.HandleError(w, http.StatusBadRequest, fmt.Sprintf("Item with id %d does not exist", line.ItemID))
				return
			}
			utils.HandleError(w, http.StatusInternalServerError, "Failed to place order")
			log.Println(utils.ErrorWithTrace(err, err.Error()))
			return
		}
		total += price * float64(line.Quantity)
	}

	// Order row, line items and stock decrements commit or roll back together
	tx, err := db.Beginx()
	if err != nil {
		utils.HandleError(w, http.StatusInternalServerError, "Failed to place order")
		log.Println(utils.ErrorWithTrace(err, err.Error()))
		return
	}
	defer tx.Rollback()

	query, args, err := QB.Insert("orders").
		Columns("buyer_phone", "buyer_role", "seller_phone", "order_total_price",
			"order_completed", "order_delivered", "order_rating", "order_review", "delivery_type").
		Values(req.BuyerPhone, req.BuyerRole, req.SellerPhone, total, false, false, 0, "", "").
		Suffix("RETURNING order_id").
		ToSql()
	if err != nil {
		utils.HandleError(w, http.StatusInternalServerError, "Failed to place order")
		log.Println(utils.ErrorWithTrace(err, err.Error()))
		return
	}

	var orderID int64
	if err := tx.QueryRowx(query, args...).Scan(&orderID); err != nil {
		utils.HandleError(w, http.StatusInternalServerError, "Failed to place order")
		log.Println(utils.ErrorWithTrace(err, err.Error()))
		return
	}

	for _, line := range req.Items {
		query, args, err = QB.Insert("order_items").
			Columns("order_id", "item_id", "item_quantity").
			Values(orderID, line.ItemID, line.Quantity).
			ToSql()
		if err != nil {
			utils.HandleError(w, http.StatusInternalServerError, "Failed to place order")
			log.Println(utils.ErrorWithTrace(err, err.Error()))
			return
		}
		if _, err := tx.Exec(query, args...); err != nil {
			utils.HandleError(w, http.StatusInternalServerError, "Failed to place order")
			log.Println(utils.ErrorWithTrace(err, err.Error()))
			return
		}

		// Guarded decrement: stock can never go negative, and two
		// concurrent orders cannot both take the last unit
		query, args, err = QB.Update("items").
			Set("item_quantity", squirrel.Expr("item_quantity - ?", line.Quantity)).
			Where(squirrel.Eq{"item_id": line.ItemID}).
			Where(squirrel.GtOrEq{"item_quantity": line.Quantity}).
			ToSql()
		if err != nil {
			utils.HandleError(w, http.StatusInternalServerError, "Failed to place order")
			log.Println(utils.ErrorWithTrace(err, err.Error()))
			return
		}
		res, err := tx.Exec(query, args...)
		if err != nil {
			utils.HandleError(w, http.StatusInternalServerError, "Failed to place order")
			log.Println(utils.ErrorWithTrace(err, err.Error()))
			return
		}
		affected, err := res.RowsAffected()
		if err != nil {
			utils.HandleError(w, http.StatusInternalServerError, "Failed to place order")
			log.Println(utils.ErrorWithTrace(err, err.Error()))
			return
		}
		if affected == 0 {
			// Deferred rollback drops the order row and every decrement so far
			utils.HandleError(w, http.StatusBadRequest, fmt.Sprintf("Insufficient quantity for item %d", line.ItemID))
			return
		}
	}

	if err := tx.Commit(); err != nil {
		utils.HandleError(w, http.StatusInternalServerError, "Failed to place order")
		log.Println(utils.ErrorWithTrace(err, err.Error()))
		return
	}

	utils.SendJSONResponse(w, http.StatusOK, map[string]interface{}{
		"message":  "Order placed successfully",
		"order_id": orderID,
	})
}

func GetItemDetails(w http.ResponseWriter, r *http.Request) {
	itemID := r.PathValue("itemId")
	if itemID == "" {
		utils.HandleError(w, http.StatusBadRequest, "Item ID is required")
		return
	}

	query, args, err := QB.Select("item_id", "seller_phone", "item_name", "item_desc",
		"item_quantity", "item_price", "item_photo",
		"item_del_start_timestamp", "item_del_end_timestamp").
		From("items").
		Where(squirrel.Eq{"item_id": itemID}).
		ToSql()
	if err != nil {
		utils.HandleError(w, http.StatusInternalServerError, "Failed to fetch item details")
		log.Println(utils.ErrorWithTrace(err, err.Error()))
		return
	}

	var item models.Item
	if err := db.Get(&item, query, args...); err != nil {
		utils.HandleError(w, http.StatusNotFound, "Item not found")
		return
	}

	utils.SendJSONResponse(w, http.StatusOK, item)
}

func GetBuyerOrders(w http.ResponseWriter, r *http.Request) {
	phone := r.PathValue("phone")
	if phone == "" {
		utils.HandleError(w, http.StatusBadRequest, "Missing buyer phone number")
		return
	}

	query, args, err := QB.Select("o.order_id", "o.buyer_phone", "o.buyer_role", "o.seller_phone",
		"o.order_total_price", "o.order_completed", "o.order_delivered",
		"o.order_rating", "o.order_review", "o.delivery_type", "s.seller_name").
		From("orders o").
		Join("sellers s ON o.seller_phone = s.seller_phone").
		Where(squirrel.Eq{"o.buyer_phone": phone}).
		ToSql()
	if err != nil {
		utils.HandleError(w, http.StatusInternalServerError, "Failed to fetch orders")
		log.Println(utils.ErrorWithTrace(err, err.Error()))
		return
	}

	orders := []models.BuyerOrder{}
	if err := db.Select(&orders, query, args...); err != nil {
		utils.HandleError(w, http.StatusInternalServerError, "Failed to fetch orders")
		log.Println(utils.ErrorWithTrace(err, err.Error()))
		return
	}

	utils.SendJSONResponse(w, http.StatusOK, orders)
}
