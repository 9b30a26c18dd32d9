package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"poi-server/handlers"
	"poi-server/middleware"
	"poi-server/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment configuration")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET environment variable is not set")
	}

	mongoURI := os.Getenv("MONGODB_URI")
	if mongoURI == "" {
		log.Fatal("MONGODB_URI environment variable is not set")
	}
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(mongoURI))
	if err != nil {
		log.Fatalf("MongoDB connection failed: %v", err)
	}
	if err := client.Ping(context.Background(), nil); err != nil {
		log.Fatalf("Failed to ping MongoDB: %v", err)
	}
	log.Println("Connected to MongoDB")
	db := client.Database("poi_db")

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		log.Fatal("REDIS_ADDR environment variable is not set")
	}
	redisDB := 0
	if redisDBStr := os.Getenv("REDIS_DB"); redisDBStr != "" {
		redisDB, err = strconv.Atoi(redisDBStr)
		if err != nil {
			log.Fatalf("Invalid REDIS_DB value: %v", err)
		}
	}
	redisClient := redis.NewClient(&redis.Options{
		Addr: redisAddr,
		DB:   redisDB,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	var overpassEndpoints []string
	if raw := os.Getenv("OVERPASS_ENDPOINTS"); raw != "" {
		for _, endpoint := range strings.Split(raw, ",") {
			if endpoint = strings.TrimSpace(endpoint); endpoint != "" {
				overpassEndpoints = append(overpassEndpoints, endpoint)
			}
		}
	}

	// Initialize services and handlers
	overpassService := services.NewOverpassService(overpassEndpoints)
	geocodeService := services.NewGeocodeService(os.Getenv("NOMINATIM_URL"), redisClient)
	bookmarkService := services.NewBookmarkService(db)
	reconciler := services.NewReconcilerService(bookmarkService)
	searchService := services.NewSearchService(geocodeService, overpassService, reconciler, redisClient)
	userService := services.NewUserService(db, redisClient, jwtSecret)

	searchHandler := handlers.NewSearchHandler(searchService)
	geocodeHandler := handlers.NewGeocodeHandler(geocodeService)
	bookmarkHandler := handlers.NewBookmarkHandler(bookmarkService, reconciler)
	authHandler := handlers.NewAuthHandler(userService, jwtSecret)

	r := mux.NewRouter()

	// CORS middleware
	allowedOrigins := []string{"http://localhost:3000", "http://localhost:5173"}
	r.Use(middleware.CORSMiddleware(allowedOrigins))
	r.Use(middleware.ErrorMiddleware())

	// Auth routes
	authRouter := r.PathPrefix("/auth").Subrouter()
	authRouter.HandleFunc("/register", authHandler.RegisterUser).Methods("POST", "OPTIONS")
	authRouter.HandleFunc("/login", authHandler.LoginUser).Methods("POST", "OPTIONS")

	// Bookmark routes
	bookmarkRouter := r.PathPrefix("/bookmarks").Subrouter()
	bookmarkRouter.Use(middleware.JWTMiddleware(jwtSecret))
	bookmarkRouter.HandleFunc("/get", bookmarkHandler.GetBookmarks).Methods("GET", "OPTIONS")
	bookmarkRouter.HandleFunc("/pois", bookmarkHandler.GetBookmarkPOIs).Methods("GET", "OPTIONS")
	bookmarkRouter.HandleFunc("/add", bookmarkHandler.AddBookmark).Methods("POST", "OPTIONS")
	bookmarkRouter.HandleFunc("/remove", bookmarkHandler.RemoveBookmark).Methods("POST", "OPTIONS")
	bookmarkRouter.HandleFunc("/check_exists", bookmarkHandler.CheckBookmarkExists).Methods("POST", "OPTIONS")

	// Search routes
	poiRouter := r.PathPrefix("/pois").Subrouter()
	poiRouter.Use(middleware.JWTMiddleware(jwtSecret))
	poiRouter.HandleFunc("", searchHandler.GetPOIs).Methods("GET", "OPTIONS")
	poiRouter.HandleFunc("/suggestions", searchHandler.PostSuggestions).Methods("POST", "OPTIONS")

	// Geocode passthrough
	r.HandleFunc("/geocode", geocodeHandler.Search).Methods("GET", "OPTIONS")

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Server starting on :%s", port)
	log.Fatal(http.ListenAndServe(":"+port, r))
}
