package models

import "time"

type Buyer struct {
	Phone     string `json:"buyer_phone" db:"buyer_phone"`
	Name      string `json:"buyer_name" db:"buyer_name"`
	Address   string `json:"buyer_address" db:"buyer_address"`
	Community string `json:"community" db:"community"`
}

type Seller struct {
	Phone            string  `json:"seller_phone" db:"seller_phone"`
	Name             string  `json:"seller_name" db:"seller_name"`
	Address          string  `json:"seller_address" db:"seller_address"`
	UPI              string  `json:"seller_upi" db:"seller_upi"`
	Photo            string  `json:"seller_photo,omitempty" db:"seller_photo"`
	Rating           float64 `json:"seller_rating" db:"seller_rating"`
	NoOfRating       int     `json:"seller_no_of_rating" db:"seller_no_of_rating"`
	MembershipStatus bool    `json:"seller_membership_status" db:"seller_membership_status"`
	Community        string  `json:"community" db:"community"`
	DeliveryType     string  `json:"delivery_type" db:"delivery_type"`
}

type Item struct {
	ID          int64     `json:"item_id" db:"item_id"`
	SellerPhone string    `json:"seller_phone" db:"seller_phone"`
	Name        string    `json:"item_name" db:"item_name"`
	Description string    `json:"item_desc" db:"item_desc"`
	Quantity    int       `json:"item_quantity" db:"item_quantity"`
	Price       float64   `json:"item_price" db:"item_price"`
	Photo       string    `json:"item_photo" db:"item_photo"`
	DelStart    time.Time `json:"item_del_start_timestamp" db:"item_del_start_timestamp"`
	DelEnd      time.Time `json:"item_del_end_timestamp" db:"item_del_end_timestamp"`
}

type Order struct {
	ID           int64   `json:"order_id" db:"order_id"`
	BuyerPhone   string  `json:"buyer_phone" db:"buyer_phone"`
	BuyerRole    string  `json:"buyer_role" db:"buyer_role"`
	SellerPhone  string  `json:"seller_phone" db:"seller_phone"`
	TotalPrice   float64 `json:"order_total_price" db:"order_total_price"`
	Completed    bool    `json:"order_completed" db:"order_completed"`
	Delivered    bool    `json:"order_delivered" db:"order_delivered"`
	Rating       int     `json:"order_rating" db:"order_rating"`
	Review       string  `json:"order_review" db:"order_review"`
	DeliveryType string  `json:"delivery_type" db:"delivery_type"`
}

type OrderItem struct {
	OrderID  int64 `json:"order_id" db:"order_id"`
	ItemID   int64 `json:"item_id" db:"item_id"`
	Quantity int   `json:"item_quantity" db:"item_quantity"`
}

type Community struct {
	Name string `json:"community_name" db:"community_name"`
}

// OrderRequest is the body of POST /buyers/placeOrder.
type OrderRequest struct {
	BuyerPhone  string      `json:"buyer_phone"`
	BuyerRole   string      `json:"buyer_role"`
	SellerPhone string      `json:"seller_phone"`
	Items       []OrderLine `json:"items"`
}

type OrderLine struct {
	ItemID   int64 `json:"item_id"`
	Quantity int   `json:"quantity"`
}

// SellerWithItems groups one seller's orderable items for the discovery endpoints.
type SellerWithItems struct {
	Name        string       `json:"name"`
	SellerPhone string       `json:"seller_phone"`
	Rating      float64      `json:"rating"`
	PhotoURL    string       `json:"photoUrl"`
	AllItems    []SellerItem `json:"allItems"`
}

type SellerItem struct {
	Name        string    `json:"name"`
	Price       float64   `json:"price"`
	Description string    `json:"description"`
	Quantity    int       `json:"quantity"`
	ImageURL    string    `json:"imageUrl"`
	DelStart    time.Time `json:"item_del_start_timestamp"`
	DelEnd      time.Time `json:"item_del_end_timestamp"`
	ItemID      int64     `json:"item_id"`
	SellerPhone string    `json:"seller_phone"`
}

// BuyerOrder is an order row joined with the seller's name.
type BuyerOrder struct {
	Order
	SellerName string `json:"seller_name" db:"seller_name"`
}

// SellerOrder is what a seller sees in their order list.
type SellerOrder struct {
	OrderID      int64   `json:"order_id" db:"order_id"`
	BuyerPhone   string  `json:"buyer_phone" db:"buyer_phone"`
	TotalPrice   float64 `json:"order_total_price" db:"order_total_price"`
	BuyerName    string  `json:"buyer_name" db:"buyer_name"`
	BuyerAddress string  `json:"buyer_address" db:"buyer_address"`
	Delivered    bool    `json:"order_delivered" db:"order_delivered"`
	DeliveryType string  `json:"delivery_type" db:"delivery_type"`
}

// OrderItemDetail is a line item joined with its item's name and price.
type OrderItemDetail struct {
	ItemID   int64   `json:"item_id" db:"item_id"`
	ItemName string  `json:"item_name" db:"item_name"`
	Quantity int     `json:"item_quantity" db:"item_quantity"`
	Price    float64 `json:"item_price" db:"item_price"`
}
