package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"sociogo/backend/internal/api/handler"
	"sociogo/backend/internal/chathub"
	"sociogo/backend/internal/config"
	"sociogo/backend/internal/friends"
	"sociogo/backend/internal/models"
	"sociogo/backend/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupDependencies(cfg config.Config) (*gorm.DB, *redis.Client) {
	// 1. PostgreSQL. TranslateError дає gorm.ErrDuplicatedKey замість
	// сирої помилки драйвера — на цьому тримається детекція конфліктів.
	db, err := gorm.Open(postgres.Open(cfg.PostgresDSN), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("Failed to connect PostgreSQL: %v", err)
	}

	// 2. Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})

	// Перевірка з'єднання Redis
	ctx := context.Background()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect Redis: %v", err)
	}

	// 3. Міграції (Створення таблиць)
	err = db.AutoMigrate(
		&models.User{},
		&models.Message{},
		&models.GroupMessage{},
		&models.Friendship{},
		&models.Group{},
		&models.GroupMember{},
	)
	if err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Database and Redis connections established, migrations complete.")
	return db, rdb
}

func main() {
	log.Println("Starting SocioGo Backend...")

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}
	cfg := config.Load()

	// 1. Ініціалізація залежностей
	db, rdb := setupDependencies(cfg)
	s := storage.NewStorageService(db, rdb)
	cache := storage.NewHistoryCache(&storage.RedisCache{Client: rdb}, config.HistoryCacheTTL)

	// 2. Ініціалізація realtime-ядра
	registry := chathub.NewSessionRegistry()
	router := chathub.NewRoomRouter()
	dispatcher := chathub.NewDispatcherService(s, cache, router, registry, uuid.New().String())
	hub := chathub.NewHub(s, registry, router, dispatcher)
	friendsSvc := friends.NewService(s, dispatcher)

	// 3. Запуск головного диспетчера
	go hub.Run()

	// 4. Налаштування Gin та роутингу
	r := gin.Default()
	h := handler.NewHandler(hub, dispatcher, friendsSvc, s, cache, []byte(cfg.JWTSecret))

	r.POST("/register", h.Register)
	r.POST("/login", h.Login)

	auth := r.Group("/", h.AuthRequired)
	auth.GET("/ws", h.ServeWebSocket) // WebSocket Upgrade

	auth.POST("/friends/requests", h.SendFriendRequest)
	auth.POST("/friends/requests/:id/accept", h.AcceptFriendRequest)
	auth.POST("/friends/requests/:id/reject", h.RejectFriendRequest)
	auth.POST("/friends/requests/:id/cancel", h.CancelFriendRequest)
	auth.GET("/friends", h.ListFriends)
	auth.GET("/friends/requests/received", h.ListPendingReceived)
	auth.GET("/friends/requests/sent", h.ListPendingSent)
	auth.GET("/friends/suggestions", h.ListSuggestions)

	auth.POST("/messages", h.SendDirectMessage)
	auth.GET("/messages/:peerID", h.GetDirectHistory)

	auth.POST("/groups", h.CreateGroup)
	auth.GET("/groups", h.ListGroups)
	auth.POST("/groups/:id/members", h.AddGroupMembers)
	auth.POST("/groups/:id/messages", h.SendGroupMessage)
	auth.GET("/groups/:id/messages", h.GetGroupHistory)

	// Запуск HTTP-сервера
	server := &http.Server{
		Addr:           cfg.Addr,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	log.Fatal(server.ListenAndServe())
}
