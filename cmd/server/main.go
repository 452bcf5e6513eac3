package main

import (
	"log"

	"github.com/CodeIvet/patanaa/internal/cache"
	"github.com/CodeIvet/patanaa/internal/config"
	"github.com/CodeIvet/patanaa/internal/database"
	"github.com/CodeIvet/patanaa/internal/server"
)

func main() {
	// load configuration
	cfg := config.Load()

	// connect database
	db, err := database.ConnectDB()
	if err != nil {
		log.Fatalf("❌ Database connection failed: %v", err)
	}
	defer database.Close(db)

	if err := database.Ping(db); err != nil {
		log.Fatalf("❌ Database ping failed: %v", err)
	}
	log.Printf("✅ Database connected successfully")

	// optional display name cache
	var nameCache *cache.DisplayNameCache
	if cfg.Redis.Addr != "" {
		nameCache, err = cache.NewDisplayNameCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Printf("⚠️ Redis connection failed: %v (display name caching disabled)", err)
			nameCache = nil
		}
	} else {
		log.Println("ℹ️ Redis not configured (display name caching disabled)")
	}

	// create and configure server
	srv := server.New(cfg, db, nameCache)
	srv.SetupMiddleware()
	srv.SetupRoutes()

	// start server
	if err := srv.Start(); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
