package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Eray464646/Algorithmen/config"
	"github.com/Eray464646/Algorithmen/internal/cache"
	"github.com/Eray464646/Algorithmen/internal/service"
	"github.com/Eray464646/Algorithmen/internal/store"
	"github.com/Eray464646/Algorithmen/internal/transport/rest"
	"github.com/Eray464646/Algorithmen/internal/transport/ws"
)

func main() {
	log.Println("started")
	ctx := context.Background()

	cfg := config.Load()

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer mongoClient.Disconnect(ctx)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		log.Fatal("Failed to ping MongoDB:", err)
	}
	log.Println("Connected to MongoDB")

	// Redis connection
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	defer rdb.Close()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatal("Failed to ping Redis:", err)
	}
	log.Println("Connected to Redis")

	// Room store: Mongo persistence, Redis change feed.
	roomStore := store.NewMongoStore(mongoClient, rdb, cfg.MongoDatabase)

	leaderboard := cache.NewLeaderboardCache(rdb)
	authSvc := service.NewAuthService(cfg.JWTSecret)
	roomSvc := service.NewRoomService(roomStore, leaderboard, authSvc)

	wsHub := ws.NewHub()

	container := &rest.Container{
		AuthService: authSvc,
		RoomService: roomSvc,
		WSHub:       wsHub,
	}
	router := rest.NewRouter(container)

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.HTTPPort)
		log.Println("Endpoints:")
		log.Println("  POST /v1/rooms")
		log.Println("  POST /v1/rooms/{code}/join")
		log.Println("  POST /v1/rooms/{code}/ready|answers|start|next|reset|leave")
		log.Println("  GET  /v1/rooms/{code}/leaderboard")
		log.Println("  WS   /v1/ws/rooms/{code}")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe:", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
