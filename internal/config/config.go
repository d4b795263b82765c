package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr        string
	Port              string
	DatabasePath      string
	SessionSecret     string
	GinMode           string
	UploadDir         string
	UploadURLPath     string
	SiteBaseURL       string
	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	ArticleCacheTTL   time.Duration
	CelebrationStep   uint64
	MailAPIKey        string
	MailFrom          string
	SummaryAPIKey     string
	SummaryBaseURL    string
	SummaryModel      string
	SuperRootName     string
	SuperRootEmail    string
	SuperRootPassword string
}

// Load 从环境变量读取应用配置，并为缺失项提供安全的默认值。
func Load() AppConfig {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	listenAddr := strings.TrimSpace(os.Getenv("LISTEN_ADDR"))
	if listenAddr == "" {
		listenAddr = fmt.Sprintf(":%s", port)
	}

	databasePath := strings.TrimSpace(os.Getenv("DATABASE_PATH"))
	if databasePath == "" {
		databasePath = "wikimasters.db"
	}

	sessionSecret := strings.TrimSpace(os.Getenv("SESSION_SECRET"))
	if sessionSecret == "" {
		sessionSecret = "wikimasters-dev-secret"
	}

	ginMode := strings.TrimSpace(os.Getenv("GIN_MODE"))
	if ginMode == "" {
		ginMode = "release"
	}

	uploadDir := strings.TrimSpace(os.Getenv("UPLOAD_DIR"))
	if uploadDir == "" {
		uploadDir = "web/static/uploads"
	}

	uploadURLPath := strings.TrimSpace(os.Getenv("UPLOAD_URL_PATH"))
	if uploadURLPath == "" {
		uploadURLPath = "/static/uploads"
	}

	siteBaseURL := strings.TrimSpace(os.Getenv("SITE_BASE_URL"))
	if siteBaseURL == "" {
		siteBaseURL = "http://localhost:8080"
	}

	redisAddr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	cacheTTL := parsePositiveInt(os.Getenv("ARTICLE_CACHE_TTL_SECONDS"), 60)

	celebrationStep := parsePositiveInt(os.Getenv("CELEBRATION_STEP"), 100)

	mailFrom := strings.TrimSpace(os.Getenv("MAIL_FROM"))
	if mailFrom == "" {
		mailFrom = "Wikimasters <onboarding@resend.dev>"
	}

	summaryBaseURL := strings.TrimSpace(os.Getenv("SUMMARY_BASE_URL"))
	if summaryBaseURL == "" {
		summaryBaseURL = "https://openrouter.ai/api/v1"
	}

	summaryModel := strings.TrimSpace(os.Getenv("SUMMARY_MODEL"))
	if summaryModel == "" {
		summaryModel = "deepseek/deepseek-chat"
	}

	return AppConfig{
		ListenAddr:        listenAddr,
		Port:              port,
		DatabasePath:      databasePath,
		SessionSecret:     sessionSecret,
		GinMode:           ginMode,
		UploadDir:         uploadDir,
		UploadURLPath:     uploadURLPath,
		SiteBaseURL:       siteBaseURL,
		RedisAddr:         redisAddr,
		RedisPassword:     strings.TrimSpace(os.Getenv("REDIS_PASSWORD")),
		RedisDB:           int(parsePositiveInt(os.Getenv("REDIS_DB"), 0)),
		ArticleCacheTTL:   time.Duration(cacheTTL) * time.Second,
		CelebrationStep:   celebrationStep,
		MailAPIKey:        strings.TrimSpace(os.Getenv("MAIL_API_KEY")),
		MailFrom:          mailFrom,
		SummaryAPIKey:     strings.TrimSpace(os.Getenv("SUMMARY_API_KEY")),
		SummaryBaseURL:    summaryBaseURL,
		SummaryModel:      summaryModel,
		SuperRootName:     strings.TrimSpace(os.Getenv("SUPER_ROOT_NAME")),
		SuperRootEmail:    strings.TrimSpace(os.Getenv("SUPER_ROOT_EMAIL")),
		SuperRootPassword: strings.TrimSpace(os.Getenv("SUPER_ROOT_PASSWORD")),
	}
}

func parsePositiveInt(raw string, fallback uint64) uint64 {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return fallback
	}
	parsed, err := strconv.ParseUint(trimmed, 10, 64)
	if err != nil {
		return fallback
	}
	return parsed
}
