package handler

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"github.com/wikimasters/internal/db"
	"github.com/wikimasters/internal/service"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	markdownEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify, extension.Table),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML()),
	)
	sanitizer = bluemonday.UGCPolicy()
)

type articleRequest struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	Summary   string `json:"summary"`
	ImageURL  string `json:"imageUrl"`
	Published bool   `json:"published"`
}

// ListArticles 返回文章列表快照（缓存优先）。
func (a *API) ListArticles(c *gin.Context) {
	entries, err := a.articles.List(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load articles")
		return
	}

	c.JSON(http.StatusOK, gin.H{"articles": entries})
}

// GetArticle 返回单篇文章，包含渲染并消毒后的 HTML。
func (a *API) GetArticle(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid article id")
		return
	}

	article, err := a.articles.Get(id)
	if err != nil {
		if errors.Is(err, service.ErrArticleNotFound) {
			respondError(c, http.StatusNotFound, "article not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "failed to load article")
		return
	}

	c.JSON(http.StatusOK, gin.H{"article": articleResponse(article)})
}

// CreateArticle 创建新文章，作者取自当前会话。
func (a *API) CreateArticle(c *gin.Context) {
	var req articleRequest
	if !bindJSON(c, &req, "invalid article payload") {
		return
	}

	article, err := a.articles.Create(c.Request.Context(), service.ArticleInput{
		Title:     req.Title,
		Content:   req.Content,
		Summary:   req.Summary,
		ImageURL:  req.ImageURL,
		Published: req.Published,
		UserID:    currentUserID(c),
	})
	if err != nil {
		if errors.Is(err, service.ErrTitleRequired) || errors.Is(err, service.ErrContentRequired) {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "failed to create article")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"article": articleResponse(article)})
}

// UpdateArticle 更新现有文章，仅允许作者本人操作。
func (a *API) UpdateArticle(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid article id")
		return
	}

	if !a.authorizeAuthor(c, id) {
		return
	}

	var req articleRequest
	if !bindJSON(c, &req, "invalid article payload") {
		return
	}

	article, err := a.articles.Update(c.Request.Context(), id, service.ArticleInput{
		Title:     req.Title,
		Content:   req.Content,
		Summary:   req.Summary,
		ImageURL:  req.ImageURL,
		Published: req.Published,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrArticleNotFound):
			respondError(c, http.StatusNotFound, "article not found")
		case errors.Is(err, service.ErrTitleRequired) || errors.Is(err, service.ErrContentRequired):
			respondError(c, http.StatusBadRequest, err.Error())
		default:
			respondError(c, http.StatusInternalServerError, "failed to update article")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"article": articleResponse(article)})
}

// DeleteArticle 删除文章，仅允许作者本人操作。
func (a *API) DeleteArticle(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid article id")
		return
	}

	if !a.authorizeAuthor(c, id) {
		return
	}

	if err := a.articles.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrArticleNotFound) {
			respondError(c, http.StatusNotFound, "article not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "failed to delete article")
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// GenerateSummary 为编辑器提供摘要预览。
func (a *API) GenerateSummary(c *gin.Context) {
	if a.summaries == nil {
		respondError(c, http.StatusServiceUnavailable, "summarizer is not configured")
		return
	}

	var req struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if !bindJSON(c, &req, "invalid summary payload") {
		return
	}

	result, err := a.summaries.GenerateSummary(c.Request.Context(), service.SummaryInput{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		respondError(c, http.StatusBadGateway, "failed to generate summary")
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": result.Summary})
}

// authorizeAuthor 校验当前会话用户是否为文章作者。
func (a *API) authorizeAuthor(c *gin.Context, articleID uint) bool {
	article, err := a.articles.Get(articleID)
	if err != nil {
		if errors.Is(err, service.ErrArticleNotFound) {
			respondError(c, http.StatusNotFound, "article not found")
			return false
		}
		respondError(c, http.StatusInternalServerError, "failed to load article")
		return false
	}

	if article.UserID != currentUserID(c) {
		respondError(c, http.StatusForbidden, "only the author can modify this article")
		return false
	}
	return true
}

func articleResponse(article *db.Article) gin.H {
	return gin.H{
		"id":        article.ID,
		"title":     article.Title,
		"slug":      article.Slug,
		"content":   article.Content,
		"html":      renderMarkdown(article.Content),
		"summary":   article.Summary,
		"imageUrl":  article.ImageURL,
		"published": article.Published,
		"author":    article.User.Name,
		"createdAt": article.CreatedAt,
		"updatedAt": article.UpdatedAt,
	}
}

func renderMarkdown(content string) string {
	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(content), &buf); err != nil {
		return ""
	}
	return sanitizer.Sanitize(buf.String())
}
