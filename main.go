package main

import (
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"banter/middleware"
	"banter/pkg/agent"
	"banter/pkg/cache"
	"banter/pkg/config"
	"banter/pkg/services"
	"banter/pkg/session"
	"banter/pkg/store"
	"banter/routes"
)

func main() {
	db, err := gorm.Open(sqlite.Open(config.DBPath), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	snapshots := cache.New(config.ChatCacheMaxItems)
	defer snapshots.Close()

	st := store.New(db, store.WithCache(snapshots, time.Duration(config.ChatCacheTTLSeconds)*time.Second))
	if err := st.Migrate(); err != nil {
		log.Fatalf("failed migrate: %v", err)
	}
	if config.SeedDemoData {
		if err := st.SeedIfEmpty(); err != nil {
			log.Fatalf("failed to seed demo data: %v", err)
		}
	}

	images, err := services.NewImageService(config.UploadsDir)
	if err != nil {
		log.Fatalf("failed to init image storage: %v", err)
	}

	mgr := session.NewManager(st, images, agent.DefaultOptions())
	defer mgr.Close()

	middleware.SetRateLimitConfig(
		time.Duration(config.RateLimitWindowSeconds)*time.Second,
		config.RateLimitCapacity,
	)

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000", "http://localhost:5173", "http://127.0.0.1:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, st, mgr, config.UploadsDir)

	if err := r.Run(":" + config.Port); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
