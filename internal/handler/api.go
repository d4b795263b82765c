package handler

import (
	"github.com/wikimasters/internal/cache"
	"github.com/wikimasters/internal/config"
	"github.com/wikimasters/internal/service"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db        *gorm.DB
	articles  *service.ArticleService
	pageviews *service.PageviewService
	summaries service.SummaryGenerator
	uploadDir string
	uploadURL string
}

// NewAPI constructs a handler set with shared services wired from config.
func NewAPI(gdb *gorm.DB, store cache.Store, cfg config.AppConfig) *API {
	articles := service.NewArticleService(gdb, store).
		WithCacheTTL(cfg.ArticleCacheTTL)

	var summaries service.SummaryGenerator
	if cfg.SummaryAPIKey != "" {
		summaryService := service.NewAISummaryService(cfg.SummaryAPIKey, cfg.SummaryBaseURL, cfg.SummaryModel)
		summaries = summaryService
		articles.WithSummaryGenerator(summaryService)
	}

	mailer := service.NewMailClient(cfg.MailAPIKey, cfg.MailFrom)
	notifier := service.NewEmailCelebrationNotifier(gdb, mailer, cfg.SiteBaseURL)
	pageviews := service.NewPageviewService(store, notifier).
		WithCelebrationStep(cfg.CelebrationStep)

	return &API{
		db:        gdb,
		articles:  articles,
		pageviews: pageviews,
		summaries: summaries,
		uploadDir: cfg.UploadDir,
		uploadURL: cfg.UploadURLPath,
	}
}

// DB exposes the underlying gorm instance for legacy paths.
func (a *API) DB() *gorm.DB {
	return a.db
}
