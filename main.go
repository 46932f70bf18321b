package main

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"

	"foodbuddies/auth"
	"foodbuddies/controllers"
	"foodbuddies/middlewares"
	"foodbuddies/utils"

	"github.com/go-michi/michi"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/gorilla/handlers"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// Routes the token gate skips entirely
var publicRoutes = []string{
	"/users/otpLogin",
	"/users/verifyOTP",
	"/users/check-user-type",
	"/users/communities",
	"/buyers/seller-with-items",
	"/buyers/by-community",
	"/buyers/register-buyer",
}

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %s", err.Error())
	}

	connStr := os.Getenv("DATABASE_CONNECTION_STR")
	if connStr == "" {
		log.Fatal("DATABASE_CONNECTION_STR not set in .env file")
	}
	tokenSecret := os.Getenv("TOKEN_SECRET")
	if tokenSecret == "" {
		log.Fatal("TOKEN_SECRET not set in .env file")
	}
	migRoot := os.Getenv("MIGRATIONS_ROOT")
	if migRoot == "" {
		migRoot = "database/migrations"
	}
	port := os.Getenv("PORT")
	if port == "" {
		port = "4000"
	}

	// Connect to the database
	db, err := sqlx.Connect("postgres", connStr)
	if err != nil {
		log.Fatal(utils.ErrorWithTrace(err, err.Error()))
	}
	defer db.Close()

	// Set global db variable in controllers
	tokenService := auth.NewTokenService(tokenSecret)
	controllers.SetDB(db)
	controllers.SetAuthServices(auth.NewOTPService(tokenSecret), tokenService)

	// Handle migrations
	mig, err := migrate.New("file://"+migRoot, connStr)
	if err != nil {
		log.Fatal(utils.ErrorWithTrace(err, err.Error()))
	}
	if err := mig.Up(); err != nil {
		if !errors.Is(err, migrate.ErrNoChange) {
			log.Fatal(utils.ErrorWithTrace(err, err.Error()))
		}
		log.Printf("migrations: %s", err.Error())
	}

	// Initialize the router and define routes
	r := michi.NewRouter()
	r.Handle("/uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir("./uploads"))))
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

	// Token gate wraps everything except the public routes
	gate := middlewares.TokenGate(tokenService, publicRoutes)

	// Enable CORS
	corsOptions := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)

	fmt.Printf("Server running on port %s 🚀\n", port)
	if err := http.ListenAndServe(":"+port, corsOptions(gate(r))); err != nil {
		log.Fatal(utils.ErrorWithTrace(err, err.Error()))
	}
}
