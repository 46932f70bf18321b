package controllers_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"foodbuddies/auth"
	"foodbuddies/controllers"

	"github.com/go-michi/michi"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

// SQLite stand-in for the Postgres schema in database/migrations
const testSchema = `
CREATE TABLE buyers (
	buyer_phone TEXT PRIMARY KEY,
	buyer_name TEXT NOT NULL,
	buyer_address TEXT NOT NULL,
	community TEXT NOT NULL
);

CREATE TABLE sellers (
	seller_phone TEXT PRIMARY KEY,
	seller_name TEXT NOT NULL,
	seller_address TEXT NOT NULL,
	seller_upi TEXT NOT NULL,
	seller_photo TEXT NOT NULL DEFAULT '',
	seller_rating REAL NOT NULL DEFAULT 0,
	seller_no_of_rating INTEGER NOT NULL DEFAULT 0,
	seller_membership_status BOOLEAN NOT NULL DEFAULT 1,
	community TEXT NOT NULL,
	delivery_type TEXT NOT NULL
);

CREATE TABLE items (
	item_id INTEGER PRIMARY KEY AUTOINCREMENT,
	seller_phone TEXT NOT NULL,
	item_name TEXT NOT NULL,
	item_desc TEXT NOT NULL,
	item_quantity INTEGER NOT NULL CHECK (item_quantity >= 0),
	item_price REAL NOT NULL,
	item_photo TEXT NOT NULL DEFAULT '',
	item_del_start_timestamp TIMESTAMP NOT NULL,
	item_del_end_timestamp TIMESTAMP NOT NULL
);

CREATE TABLE orders (
	order_id INTEGER PRIMARY KEY AUTOINCREMENT,
	buyer_phone TEXT NOT NULL,
	buyer_role TEXT NOT NULL,
	seller_phone TEXT NOT NULL,
	order_total_price REAL NOT NULL,
	order_completed BOOLEAN NOT NULL DEFAULT 0,
	order_delivered BOOLEAN NOT NULL DEFAULT 0,
	order_rating INTEGER NOT NULL DEFAULT 0,
	order_review TEXT NOT NULL DEFAULT '',
	delivery_type TEXT NOT NULL DEFAULT ''
);

CREATE TABLE order_items (
	order_id INTEGER NOT NULL,
	item_id INTEGER NOT NULL,
	item_quantity INTEGER NOT NULL
);

CREATE TABLE communities (
	community_name TEXT PRIMARY KEY
);
`

func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := sqlx.Connect("sqlite", ":memory:")
	require.NoError(t, err)
	// In-memory SQLite exists per connection; keep the pool on one
	db.SetMaxOpenConns(1)
	db.MustExec(testSchema)

	controllers.SetDB(db)
	controllers.SetAuthServices(auth.NewOTPService("test-secret"), auth.NewTokenService("test-secret"))

	t.Cleanup(func() { db.Close() })
	return db
}

// newTestRouter mirrors the route table in main.go.
func newTestRouter() *michi.Router {
	r := michi.NewRouter()
	r.Route("/users", func(sub *michi.Router) {
		sub.HandleFunc("POST otpLogin", controllers.OtpLogin)
		sub.HandleFunc("POST verifyOTP", controllers.VerifyOtp)
		sub.HandleFunc("POST check-user-type", controllers.CheckUserType)
		sub.HandleFunc("GET communities", controllers.GetCommunities)
	})
	r.Route("/buyers", func(sub *michi.Router) {
		sub.HandleFunc("GET seller-with-items", controllers.SellersWithItems)
		sub.HandleFunc("GET by-community", controllers.SellersByCommunity)
		sub.HandleFunc("POST register-buyer", controllers.RegisterBuyer)
		sub.HandleFunc("GET buyer/{phone}", controllers.GetBuyerProfile)
		sub.HandleFunc("PUT buyer/{phone}", controllers.UpdateBuyerProfile)
		sub.HandleFunc("POST placeOrder", controllers.PlaceOrder)
		sub.HandleFunc("GET items/{itemId}", controllers.GetItemDetails)
		sub.HandleFunc("GET orders/{phone}", controllers.GetBuyerOrders)
	})
	r.Route("/sellers", func(sub *michi.Router) {
		sub.HandleFunc("POST register-seller", controllers.RegisterSeller)
		sub.HandleFunc("POST items", controllers.AddItem)
		sub.HandleFunc("GET items", controllers.GetItems)
		sub.HandleFunc("POST updateItem/{itemId}", controllers.UpdateItem)
		sub.HandleFunc("GET seller/{phone}", controllers.GetSellerProfile)
		sub.HandleFunc("PUT seller/{phone}", controllers.UpdateSellerProfile)
		sub.HandleFunc("GET orders/{phone}", controllers.GetSellerOrders)
		sub.HandleFunc("PUT orders/{orderId}/delivered", controllers.MarkOrderDelivered)
		sub.HandleFunc("GET orders/items/{orderId}", controllers.GetOrderItems)
		sub.HandleFunc("POST orders/delivery-type/{orderId}", controllers.UpdateOrderDeliveryType)
	})
	return r
}

func performJSON(router *michi.Router, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reqBody []byte
	if body != nil {
		reqBody, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewBuffer(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func seedBuyer(t *testing.T, db *sqlx.DB, phone, name, address, community string) {
	t.Helper()
	db.MustExec(`INSERT INTO buyers (buyer_phone, buyer_name, buyer_address, community) VALUES ($1, $2, $3, $4)`,
		phone, name, address, community)
}

func seedSeller(t *testing.T, db *sqlx.DB, phone, name, community string, member bool) {
	t.Helper()
	db.MustExec(`INSERT INTO sellers (seller_phone, seller_name, seller_address, seller_upi, seller_membership_status, community, delivery_type)
		VALUES ($1, $2, 'some address', $3, $4, $5, 'pickup')`,
		phone, name, name+"@upi", member, community)
}

func seedItem(t *testing.T, db *sqlx.DB, sellerPhone, name string, quantity int, price float64, delEnd time.Time) int64 {
	t.Helper()
	var id int64
	err := db.QueryRowx(`INSERT INTO items (seller_phone, item_name, item_desc, item_quantity, item_price, item_del_start_timestamp, item_del_end_timestamp)
		VALUES ($1, $2, 'tasty', $3, $4, $5, $6) RETURNING item_id`,
		sellerPhone, name, quantity, price, time.Now().UTC().Add(-time.Hour), delEnd).Scan(&id)
	require.NoError(t, err)
	return id
}

func performMultipart(router *michi.Router, method, path string, fields map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	mw.Close()

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}

func countRows(t *testing.T, db *sqlx.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.Get(&n, "SELECT COUNT(*) FROM "+table))
	return n
}
