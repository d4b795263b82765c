package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wikimasters/internal/cache"
	"github.com/wikimasters/internal/config"
	"github.com/wikimasters/internal/db"
	"github.com/wikimasters/internal/handler"
	"github.com/wikimasters/internal/router"
)

func main() {
	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	// 初始化数据库
	if err := db.Init(cfg.DatabasePath); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	if err := db.EnsureUser(cfg.SuperRootName, cfg.SuperRootEmail, cfg.SuperRootPassword); err != nil {
		log.Fatalf("failed to ensure root user: %v", err)
	}

	// 缓存不可用不拦截启动：读路径会自动回源数据库
	store := cache.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	defer store.Close()

	pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	if err := store.Ping(pingCtx); err != nil {
		log.Printf("[CACHE] redis at %s unreachable: %v", cfg.RedisAddr, err)
	}
	cancel()

	api := handler.NewAPI(db.DB, store, cfg)

	// 设置并运行 Gin 服务器
	r := router.SetupRouter(api, cfg.SessionSecret, cfg.UploadURLPath, cfg.UploadDir)
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("failed to run server: %v", err)
	}
}
