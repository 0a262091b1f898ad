package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"quill-notes/quill/broker"
	"quill-notes/quill/config"
	"quill-notes/quill/database"
	"quill-notes/quill/middleware"
	"quill-notes/quill/routes"
	"quill-notes/quill/services"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()

	db, err := database.Setup(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// The broker is optional: without it, notification emails and
	// cross-instance broadcasts are disabled but the API keeps working.
	producer, err := broker.InitProducer(cfg)
	if err != nil {
		log.Printf("Warning: failed to connect to NATS: %v", err)
		log.Println("Notification email enqueueing is disabled")
	} else {
		broker.DefaultProducer = producer
		defer producer.Close()
	}

	webSocketService := services.NewWebSocketService()
	services.WebSocketServiceInstance = webSocketService
	webSocketService.Start(cfg)
	defer webSocketService.Stop()

	authService := services.NewAuthService(cfg.JWTSecret, cfg.JWTExpirationHours)
	services.AuthServiceInstance = authService

	userService := services.NewUserService(authService)
	services.UserServiceInstance = userService

	router := gin.Default()
	router.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	routes.RegisterAuthRoutes(router, db, authService, userService)
	routes.RegisterWebSocketRoutes(router, authService, webSocketService)

	authorized := router.Group("/api/v1")
	authorized.Use(middleware.AuthMiddleware(authService))
	{
		routes.RegisterNoteRoutes(authorized, db, services.NoteServiceInstance, services.ShareServiceInstance)
		routes.RegisterNotificationRoutes(authorized, db, services.NotificationServiceInstance)
		routes.RegisterUserRoutes(authorized, db, userService)
	}

	admin := router.Group("/api/v1")
	admin.Use(middleware.AuthMiddleware(authService), middleware.AdminMiddleware(db))
	{
		routes.RegisterAdminRoutes(admin, db, userService, services.NoteServiceInstance)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-quit
		log.Println("Shutting down server...")
		webSocketService.Stop()
		if producer != nil {
			producer.Close()
		}
		os.Exit(0)
	}()

	log.Printf("API server is running on port %s", cfg.AppPort)
	if err := http.ListenAndServe(":"+cfg.AppPort, router); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
