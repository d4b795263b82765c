package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode"

	"github.com/wikimasters/internal/cache"
	"github.com/wikimasters/internal/db"
	"gorm.io/gorm"
)

var (
	ErrArticleNotFound = errors.New("article not found")
	ErrTitleRequired   = errors.New("article title is required")
	ErrContentRequired = errors.New("article content is required")
)

// ArticleListCacheKey 是文章列表快照的固定缓存键。
const ArticleListCacheKey = "articles:all"

const defaultArticleCacheTTL = 60 * time.Second

// ArticleService wraps article related database operations and keeps the
// list cache consistent with writes.
type ArticleService struct {
	db        *gorm.DB
	cache     cache.Store
	ttl       time.Duration
	summaries SummaryGenerator
}

// ArticleListEntry is the denormalized projection cached under
// ArticleListCacheKey: one article joined with its author's display name.
type ArticleListEntry struct {
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	Summary   string    `json:"summary"`
	Content   string    `json:"content"`
	Author    string    `json:"author"`
	ImageURL  string    `json:"imageUrl"`
}

// ArticleInput represents fields accepted when creating or updating an article.
type ArticleInput struct {
	Title     string
	Content   string
	Summary   string
	ImageURL  string
	Published bool
	UserID    uint
}

// NewArticleService creates an ArticleService instance. cache may be nil, in
// which case every list read goes to the store.
func NewArticleService(gdb *gorm.DB, store cache.Store) *ArticleService {
	return &ArticleService{db: gdb, cache: store, ttl: defaultArticleCacheTTL}
}

// WithCacheTTL 允许覆盖列表缓存的过期时间。
func (s *ArticleService) WithCacheTTL(ttl time.Duration) *ArticleService {
	if ttl > 0 {
		s.ttl = ttl
	}
	return s
}

// WithSummaryGenerator injects an optional summarizer used on writes.
func (s *ArticleService) WithSummaryGenerator(generator SummaryGenerator) *ArticleService {
	s.summaries = generator
	return s
}

// List returns the article list snapshot, served from the cache when a valid
// entry exists and refreshed from the store otherwise. A malformed cached
// value or a cache error counts as a miss; a failed cache populate is logged
// and the freshly fetched data is returned regardless.
func (s *ArticleService) List(ctx context.Context) ([]ArticleListEntry, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, ArticleListCacheKey)
		switch {
		case err == nil:
			var entries []ArticleListEntry
			if decodeErr := json.Unmarshal([]byte(cached), &entries); decodeErr == nil {
				return entries, nil
			}
			log.Printf("[CACHE] malformed value for %s, treating as miss", ArticleListCacheKey)
		case errors.Is(err, cache.ErrCacheMiss):
			// 正常未命中，回源查询
		default:
			log.Printf("[CACHE] read %s failed: %v", ArticleListCacheKey, err)
		}
	}

	entries, err := s.queryList()
	if err != nil {
		return nil, err
	}

	s.populateListCache(ctx, entries)
	return entries, nil
}

// Get fetches an article by id with its author preloaded. The list cache is
// never consulted here: detail reads are always fresh.
func (s *ArticleService) Get(id uint) (*db.Article, error) {
	var article db.Article
	if err := s.db.Preload("User").First(&article, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, err
	}
	return &article, nil
}

// Create persists an article with a slug derived from its title and
// invalidates the list cache.
func (s *ArticleService) Create(ctx context.Context, input ArticleInput) (*db.Article, error) {
	title := strings.TrimSpace(input.Title)
	content := strings.TrimSpace(input.Content)
	if title == "" {
		return nil, ErrTitleRequired
	}
	if content == "" {
		return nil, ErrContentRequired
	}

	slug, err := s.uniqueSlug(title, 0)
	if err != nil {
		return nil, err
	}

	article := db.Article{
		Title:     title,
		Slug:      slug,
		Content:   content,
		Summary:   strings.TrimSpace(input.Summary),
		ImageURL:  strings.TrimSpace(input.ImageURL),
		Published: input.Published,
		UserID:    input.UserID,
	}

	if article.Summary == "" {
		article.Summary = s.generateSummary(ctx, title, content)
	}

	if err := s.db.Create(&article).Error; err != nil {
		return nil, err
	}

	s.invalidateListCache(ctx)
	return &article, nil
}

// Update applies updates to an existing article. The slug is regenerated only
// when the title changes, so existing links keep working across edits.
func (s *ArticleService) Update(ctx context.Context, id uint, input ArticleInput) (*db.Article, error) {
	var existing db.Article
	if err := s.db.First(&existing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, err
	}

	title := strings.TrimSpace(input.Title)
	content := strings.TrimSpace(input.Content)
	if title == "" {
		return nil, ErrTitleRequired
	}
	if content == "" {
		return nil, ErrContentRequired
	}

	if title != existing.Title {
		slug, err := s.uniqueSlug(title, existing.ID)
		if err != nil {
			return nil, err
		}
		existing.Slug = slug
	}

	existing.Title = title
	existing.Content = content
	existing.Summary = strings.TrimSpace(input.Summary)
	existing.ImageURL = strings.TrimSpace(input.ImageURL)
	existing.Published = input.Published

	if existing.Summary == "" {
		existing.Summary = s.generateSummary(ctx, title, content)
	}

	if err := s.db.Save(&existing).Error; err != nil {
		return nil, err
	}

	s.invalidateListCache(ctx)
	return &existing, nil
}

// Delete removes an article by id and invalidates the list cache.
func (s *ArticleService) Delete(ctx context.Context, id uint) error {
	result := s.db.Delete(&db.Article{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrArticleNotFound
	}

	s.invalidateListCache(ctx)
	return nil
}

func (s *ArticleService) queryList() ([]ArticleListEntry, error) {
	entries := make([]ArticleListEntry, 0)
	if err := s.db.Model(&db.Article{}).
		Select("articles.id, articles.title, articles.created_at, articles.summary, articles.content, articles.image_url, users.name AS author").
		Joins("LEFT JOIN users ON users.id = articles.user_id").
		Order("articles.created_at desc, articles.id desc").
		Scan(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *ArticleService) populateListCache(ctx context.Context, entries []ArticleListEntry) {
	if s.cache == nil {
		return
	}

	encoded, err := json.Marshal(entries)
	if err != nil {
		log.Printf("[CACHE] encode %s failed: %v", ArticleListCacheKey, err)
		return
	}

	if err := s.cache.Set(ctx, ArticleListCacheKey, string(encoded), s.ttl); err != nil {
		log.Printf("[CACHE] populate %s failed: %v", ArticleListCacheKey, err)
	}
}

func (s *ArticleService) invalidateListCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, ArticleListCacheKey); err != nil {
		log.Printf("[CACHE] invalidate %s failed: %v", ArticleListCacheKey, err)
	}
}

// generateSummary 在未提供摘要时尽力生成一份，失败只记录日志，不阻塞写入。
func (s *ArticleService) generateSummary(ctx context.Context, title, content string) string {
	if s.summaries == nil {
		return ""
	}

	result, err := s.summaries.GenerateSummary(ctx, SummaryInput{Title: title, Content: content})
	if err != nil {
		log.Printf("[SUMMARY] generate for %q failed: %v", title, err)
		return ""
	}
	return strings.TrimSpace(result.Summary)
}

// uniqueSlug derives a slug from title and suffixes it with a counter until
// no other article (excluding excludeID) claims it.
func (s *ArticleService) uniqueSlug(title string, excludeID uint) (string, error) {
	base := slugify(title)

	candidate := base
	for i := 2; ; i++ {
		query := s.db.Model(&db.Article{}).Where("slug = ?", candidate)
		if excludeID > 0 {
			query = query.Where("id <> ?", excludeID)
		}

		var count int64
		if err := query.Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

func slugify(title string) string {
	var builder strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			builder.WriteRune(r)
			lastDash = false
		case !lastDash:
			builder.WriteByte('-')
			lastDash = true
		}
	}

	slug := strings.Trim(builder.String(), "-")
	if slug == "" {
		slug = "article"
	}
	return slug
}
