package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	redisDriver "github.com/redis/go-redis/v9"

	"matchflix/internal/config"
	"matchflix/internal/handlers/apiserver"
	appKafka "matchflix/internal/kafka"
	"matchflix/internal/middleware"
	appRedis "matchflix/internal/redis"
	"matchflix/internal/services"
	"matchflix/internal/storage"
)

func main() {
	// 1. Configuration
	cfg, err := config.LoadConfig("")
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	log.Printf("%s API server starting (version %s)", cfg.AppName, cfg.AppVersion)

	// 2. Database
	db, err := storage.InitDB(cfg.Database)
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}
	if err := storage.AutoMigrateTables(db); err != nil {
		log.Fatalf("failed to migrate database tables: %v", err)
	}

	// 3. Redis
	redisClient := redisDriver.NewClient(&redisDriver.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		log.Fatalf("failed to connect to Redis: %v", err)
	}
	unreadCache := appRedis.NewRedisUnreadCountCache(redisClient)

	// 4. Kafka producer (message delivery topic)
	producer, err := appKafka.NewConfluentKafkaProducer(cfg.Kafka)
	if err != nil {
		log.Fatalf("failed to create Kafka producer: %v", err)
	}
	defer producer.Close()

	// 5. Repositories
	userRepo := storage.NewGormUserRepository(db)
	interactionRepo := storage.NewGormInteractionRepository(db)
	matchRepo := storage.NewGormMatchRepository(db)
	messageRepo := storage.NewGormMessageRepository(db)

	// 6. Services
	authService := services.NewAuthService(userRepo, cfg.Auth)
	matchService := services.NewMatchService(interactionRepo, matchRepo, messageRepo, userRepo, unreadCache)
	messageService := services.NewMessageService(messageRepo, matchRepo, userRepo, unreadCache, producer, cfg.Kafka)
	discoveryService := services.NewDiscoveryService(userRepo, interactionRepo, matchRepo)
	profileService := services.NewProfileService(userRepo)

	// 7. Handlers
	authHandler := apiserver.NewAuthHandler(authService)
	matchHandler := apiserver.NewMatchHandler(matchService)
	messageHandler := apiserver.NewMessageHandler(messageService)
	profileHandler := apiserver.NewProfileHandler(profileService, discoveryService)

	// 8. Routes
	r := mux.NewRouter()

	authRouter := r.PathPrefix("/api/auth").Subrouter()
	authRouter.HandleFunc("/register", authHandler.RegisterHandler).Methods(http.MethodPost)
	authRouter.HandleFunc("/login", authHandler.LoginHandler).Methods(http.MethodPost)

	apiRouter := r.PathPrefix("/api").Subrouter()
	apiRouter.Use(func(next http.Handler) http.Handler {
		return middleware.AuthMiddleware(next, cfg.Auth)
	})

	apiRouter.HandleFunc("/likes", matchHandler.LikeHandler).Methods(http.MethodPost)
	apiRouter.HandleFunc("/likes/received", matchHandler.ListAdmirersHandler).Methods(http.MethodGet)
	apiRouter.HandleFunc("/passes", matchHandler.PassHandler).Methods(http.MethodPost)
	apiRouter.HandleFunc("/matches", matchHandler.ListMatchesHandler).Methods(http.MethodGet)
	apiRouter.HandleFunc("/matches/like/{userId}", matchHandler.LegacyLikeHandler).Methods(http.MethodPost)
	apiRouter.HandleFunc("/matches/pass/{userId}", matchHandler.LegacyPassHandler).Methods(http.MethodPost)
	apiRouter.HandleFunc("/matches/{userId}", matchHandler.UnmatchHandler).Methods(http.MethodDelete)

	// Fixed message routes register before the {matchId} catch-all.
	apiRouter.HandleFunc("/messages", messageHandler.SendMessageHandler).Methods(http.MethodPost)
	apiRouter.HandleFunc("/messages/conversations", messageHandler.ListConversationsHandler).Methods(http.MethodGet)
	apiRouter.HandleFunc("/messages/unread/count", messageHandler.UnreadCountHandler).Methods(http.MethodGet)
	apiRouter.HandleFunc("/messages/{matchId}", messageHandler.ListMessagesHandler).Methods(http.MethodGet)

	apiRouter.HandleFunc("/discover", profileHandler.DiscoverHandler).Methods(http.MethodGet)
	apiRouter.HandleFunc("/profile", profileHandler.GetOwnProfileHandler).Methods(http.MethodGet)
	apiRouter.HandleFunc("/profile", profileHandler.UpdateProfileHandler).Methods(http.MethodPut)
	apiRouter.HandleFunc("/users/{userId}/profile", profileHandler.GetUserProfileHandler).Methods(http.MethodGet)

	// 9. CORS
	corsOptions := []handlers.CORSOption{
		handlers.AllowedOrigins(cfg.APIServer.CORS.AllowedOrigins),
		handlers.AllowedMethods(cfg.APIServer.CORS.AllowedMethods),
		handlers.AllowedHeaders(cfg.APIServer.CORS.AllowedHeaders),
	}
	if cfg.APIServer.CORS.AllowCredentials {
		corsOptions = append(corsOptions, handlers.AllowCredentials())
	}
	corsHandler := handlers.CORS(corsOptions...)(r)

	// 10. HTTP server with graceful shutdown
	serverAddr := fmt.Sprintf("%s:%s", cfg.APIServer.Host, cfg.APIServer.Port)
	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      corsHandler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("API server listening on %s", serverAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("API server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutdown signal received, stopping API server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("API server forced to shut down: %v", err)
	}
	log.Println("API server stopped")
}
