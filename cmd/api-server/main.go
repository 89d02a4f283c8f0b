// Package main API Server 入口
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shop-admin/internal/apiserver/auth"
	"shop-admin/internal/apiserver/server"
	"shop-admin/internal/config"
	"shop-admin/internal/shared/cache/redis"
	"shop-admin/internal/shared/mail"
	"shop-admin/internal/shared/storage/dbutil"
	"shop-admin/internal/shared/storage/driver/postgres"
	"shop-admin/internal/shared/storage/driver/sqlite"
	"shop-admin/internal/shared/storage/repository"
)

func main() {
	// 加载配置（自动加载 .env，根据 APP_ENV 切换数据库和 Redis）
	cfg := config.Load()

	log.Printf("Starting API Server... [env=%s]", cfg.Env)
	log.Printf("Config: %s", cfg.String())

	// 初始化数据库
	var (
		db      *sql.DB
		dialect dbutil.Dialect
		err     error
	)
	switch cfg.DatabaseDriver {
	case "sqlite":
		db, err = sqlite.Open(cfg.DatabaseURL)
		dialect = sqlite.NewDialect()
	default:
		db, err = postgres.Open(cfg.DatabaseURL)
		dialect = postgres.NewDialect()
	}
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	if err := dialect.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	store := repository.NewStore(db, dialect)
	defer store.Close()
	log.Printf("Connected to database [driver=%s]", cfg.DatabaseDriver)

	// 初始化 Redis（可选：密码找回限流）
	var redisStore *redis.Store
	if cfg.RedisURL != "" {
		redisStore, err = redis.NewStoreFromURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisStore.Close()
		log.Println("Connected to Redis")
	}

	// 初始化邮件投递：未配置 SMTP 时退化为日志输出
	var mailer mail.Mailer
	if cfg.SMTP.Host != "" {
		mailer = mail.NewSMTPMailer(mail.SMTPConfig(cfg.SMTP))
	} else {
		mailer = mail.NewLogMailer()
		log.Println("SMTP not configured, recovery codes will be logged")
	}

	authCfg := auth.Config{
		JWTSecret: cfg.JWTSecret,
		TokenTTL:  cfg.TokenTTL,
	}

	h := server.NewHandler(store, mailer, redisStore, authCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      h.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 优雅关闭
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	log.Printf("API Server listening on :%s", cfg.APIPort)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}

	fmt.Println("Server stopped")
}
