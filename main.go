package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jogakzip/config"
	"jogakzip/controllers"
	"jogakzip/database"
	"jogakzip/database/memory"
	"jogakzip/eventbroker"
	"jogakzip/handlers"
	"jogakzip/middleware"
	"jogakzip/routes"
	"jogakzip/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "jogakzip/docs"
)

// @title Jogakzip API
// @version 1.0
// @description Group memory sharing API. Groups, posts and comments are each protected by their own password.

// @contact.name API Support
// @contact.url http://www.swagger.io/support
// @contact.email support@swagger.io

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /api

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	store, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Failed to open %s store: %v", cfg.StorageDriver, err)
	}
	defer store.Close()

	hubService := services.NewHubService()
	publishers := services.Publishers{hubService}

	if cfg.NatsURL != "" {
		nc, err := eventbroker.Connect(cfg.NatsURL)
		if err != nil {
			log.Fatalf("Failed to connect to NATS: %v", err)
		}
		defer nc.Drain()
		publishers = append(publishers, eventbroker.NewNatsPublisher(nc, eventbroker.DefaultSubjectPrefix))
		log.Printf("Publishing events to NATS at %s", cfg.NatsURL)
	}

	groupService := services.NewGroupService(store, publishers)
	postService := services.NewPostService(store, publishers)
	commentService := services.NewCommentService(store, publishers)

	if !cfg.IsLocal() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(middleware.ErrorHandler())

	groupController := controllers.NewGroupController(groupService)
	postController := controllers.NewPostController(postService)
	commentController := controllers.NewCommentController(commentService)
	imageController := controllers.NewImageController(cfg.UploadDir, cfg.PublicBaseURL, cfg.MaxUploadBytes())
	wsHandler := handlers.NewWebSocketHandler(hubService, groupService, cfg.AllowedOrigins)

	routes.SetupRoutes(r, groupController, postController, commentController, imageController, wsHandler)

	r.Static("/uploads", cfg.UploadDir)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Server starting on port %s (storage: %s)", cfg.Port, cfg.StorageDriver)
		log.Printf("Swagger docs available at: %s/swagger/index.html", cfg.PublicBaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
}

func openStore(cfg *config.Config) (database.Store, error) {
	if cfg.StorageDriver == "memory" {
		log.Println("Using in-memory storage; data is lost on restart")
		return memory.New(), nil
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, err
	}
	return database.NewGormStore(db), nil
}
