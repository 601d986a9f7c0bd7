package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go_canteen/canteenapi/chat"
	"go_canteen/canteenapi/config"
	"go_canteen/canteenapi/genai"
	"go_canteen/canteenapi/handlers"
	"go_canteen/canteenapi/middleware"
	"go_canteen/canteenapi/middleware/logkafka"
	"go_canteen/canteenapi/notify"
	"go_canteen/canteenapi/store"
	"go_canteen/canteenapi/telem"
	"go_canteen/canteenapi/utils"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()

	// Initialize MongoDB client
	client, err := utils.InitMongoClient(cfg.MongoURI)
	if err != nil {
		logrus.Fatalf("mongo connect: %v", err)
	}
	defer client.Disconnect(context.TODO())

	// Get database collections
	usersCollection := utils.GetCollection(client, cfg.Database, "users")
	ordersCollection := utils.GetCollection(client, cfg.Database, "orders")
	menuCollection := utils.GetCollection(client, cfg.Database, "menu")
	chatHistoryCollection := utils.GetCollection(client, cfg.Database, "chat_history")

	menuStore := &store.MenuStore{Collection: menuCollection}
	orderStore := &store.OrderStore{Collection: ordersCollection}
	chatLogStore := &store.ChatLogStore{Collection: chatHistoryCollection}
	hub := notify.NewHub()

	resolver := &chat.Resolver{
		Menu:     menuStore,
		Orders:   orderStore,
		Log:      chatLogStore,
		Fallback: genai.NewClient(cfg.GroqBaseURL, cfg.GroqAPIKey, cfg.GroqModel),
		Sessions: chat.NewSessionStore(cfg.ChatSessionTTL, cfg.ChatSessionCap),
	}

	db := &handlers.DB{
		Users:     usersCollection,
		Menu:      menuStore,
		Orders:    orderStore,
		ChatLog:   chatLogStore,
		Resolver:  resolver,
		Hub:       hub,
		StripeKey: cfg.StripeSecretKey,
	}

	// Metrics and tracing
	handlers.Init()
	shutdownMetrics, err := telem.InitMetrics("canteen-api", cfg.MetricsAddr)
	if err != nil {
		logrus.Fatalf("metrics init: %v", err)
	}
	shutdownTracing, err := telem.InitTracing("canteen-api", cfg.OTLPEndpoint)
	if err != nil {
		logrus.Fatalf("tracing init: %v", err)
	}

	// Request logging to Kafka, with the optional Elasticsearch indexer
	logkafka.InitKafkaWriter(cfg.KafkaBrokers, cfg.KafkaTopic)
	defer logkafka.CloseKafkaWriter()

	indexerCtx, stopIndexer := context.WithCancel(context.Background())
	defer stopIndexer()
	if cfg.EnableLogES {
		go func() {
			if err := utils.StartLogIndexer(indexerCtx, cfg.KafkaBrokers, cfg.KafkaTopic); err != nil && err != context.Canceled {
				logrus.Warnf("log indexer stopped: %v", err)
			}
		}()
	}

	mainRouter := mux.NewRouter()
	mainRouter.Use(logkafka.LoggingMiddleware)

	mainRouter.HandleFunc("/health", db.HealthHandler).Methods("GET")
	mainRouter.HandleFunc("/login", db.LoginHandler).Methods("POST")
	mainRouter.HandleFunc("/menu", db.GetMenuHandler).Methods("GET")
	mainRouter.HandleFunc("/place-order", db.PlaceOrderHandler).Methods("POST")
	mainRouter.HandleFunc("/orders/pending", db.PendingOrdersHandler).Methods("GET")
	mainRouter.HandleFunc("/orders/history/{studentId}", db.OrderHistoryHandler).Methods("GET")
	mainRouter.HandleFunc("/orders/ready/{orderId}", db.MarkReadyHandler).Methods("POST")
	mainRouter.HandleFunc("/orders/pay", db.PayOrderHandler).Methods("POST")
	mainRouter.HandleFunc("/menu/update", db.UpdateMenuHandler).Methods("POST")
	mainRouter.HandleFunc("/menu/remove", db.RemoveMenuHandler).Methods("POST")
	mainRouter.HandleFunc("/menu/special", db.ManageSpecialHandler).Methods("GET", "POST")
	mainRouter.HandleFunc("/chat", db.ChatHandler).Methods("POST")
	mainRouter.HandleFunc("/seed", db.SeedHandler).Methods("GET")
	mainRouter.HandleFunc("/ws/{studentId}", db.WSHandler)

	//Define routes that require RequestBody validation
	validationRouter := mainRouter.NewRoute().Subrouter()
	validationRouter.Use(middleware.ValidateSignupBody)
	validationRouter.HandleFunc("/signup", db.SignupHandler).Methods("POST")

	// Define routes that require the current user from the token
	currentUserRouter := mainRouter.PathPrefix("/api").Subrouter()
	currentUserRouter.Use(middleware.SetCurrentUserMiddleware)
	currentUserRouter.HandleFunc("/users/me", db.GetCurrentUserHandler).Methods("GET")

	srv := &http.Server{
		Handler:      mainRouter,
		Addr:         cfg.Addr,
		WriteTimeout: 60 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	go func() {
		logrus.Infof("canteen API listening on %s", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logrus.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Warnf("server shutdown: %v", err)
	}
	if err := shutdownMetrics(shutdownCtx); err != nil {
		logrus.Warnf("metrics shutdown: %v", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logrus.Warnf("tracing shutdown: %v", err)
	}
}
