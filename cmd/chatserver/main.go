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

	"github.com/google/uuid"
	redisDriver "github.com/redis/go-redis/v9"

	"matchflix/internal/config"
	"matchflix/internal/handlers/chatserver"
	appKafka "matchflix/internal/kafka"
	kafkaHandlers "matchflix/internal/kafka/handlers"
	appRedis "matchflix/internal/redis"
	"matchflix/internal/services"
	"matchflix/internal/storage"
	"matchflix/internal/websocket"
)

func main() {
	// 1. Configuration
	cfg, err := config.LoadConfig("")
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	log.Printf("%s chat server starting (version %s)", cfg.AppName, cfg.AppVersion)

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

	// 4. Kafka producer, so relay sends flow through the same delivery topic
	producer, err := appKafka.NewConfluentKafkaProducer(cfg.Kafka)
	if err != nil {
		log.Fatalf("failed to create Kafka producer: %v", err)
	}
	defer producer.Close()

	// 5. Repositories and services
	userRepo := storage.NewGormUserRepository(db)
	matchRepo := storage.NewGormMatchRepository(db)
	messageRepo := storage.NewGormMessageRepository(db)
	messageService := services.NewMessageService(messageRepo, matchRepo, userRepo, unreadCache, producer, cfg.Kafka)

	// 6. Hub
	hub := websocket.NewHub()
	go hub.Run()

	// 7. WebSocket handler
	wsHandler := chatserver.NewWebSocketHandler(hub, messageService, cfg)

	// 8. Delivery topic consumer. Every chat server instance must see every
	// delivery, so each instance consumes under its own group ID.
	deliveryConsumer, err := appKafka.NewConfluentKafkaConsumer(cfg.Kafka)
	if err != nil {
		log.Fatalf("failed to create delivery consumer: %v", err)
	}
	defer deliveryConsumer.Close()

	deliveryHandler := kafkaHandlers.NewMessageDeliveryHandler(hub)
	consumerCtx, cancelConsumers := context.WithCancel(context.Background())
	defer cancelConsumers()

	go func() {
		groupID := fmt.Sprintf("%s-%s", cfg.Kafka.ConsumerGroup, uuid.NewString())
		topics := []string{cfg.Kafka.DeliveryTopic}
		if err := deliveryConsumer.Consume(consumerCtx, topics, groupID, deliveryHandler.Handle); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("delivery consumer error: %v", err)
		}
	}()

	// 9. HTTP server
	httpMux := http.NewServeMux()
	httpMux.HandleFunc(cfg.Server.WebSocketPath, wsHandler.ServeWS)

	serverAddr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:        serverAddr,
		Handler:     httpMux,
		ReadTimeout: cfg.Server.ReadTimeout,
		// No WriteTimeout: WebSocket connections are long-lived.
	}

	go func() {
		log.Printf("chat server listening on %s (websocket path %s)", serverAddr, cfg.Server.WebSocketPath)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("chat server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutdown signal received, stopping chat server...")

	cancelConsumers()

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("chat server forced to shut down: %v", err)
	}
	log.Println("chat server stopped")
}
