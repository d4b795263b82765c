package service

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log"

	"github.com/wikimasters/internal/db"
	"gorm.io/gorm"
)

// CelebrationNotifier is invoked when an article's pageview counter crosses a
// celebration threshold. Implementations swallow their own failures: a missed
// celebration must never surface to the read path.
type CelebrationNotifier interface {
	Notify(ctx context.Context, articleID uint, pageviews uint64)
}

var celebrationTemplate = template.Must(template.New("celebration").Parse(`<div>
  <h1>Congratulations, {{.Name}}! 🎉</h1>
  <p>Your article <a href="{{.ArticleURL}}">{{.ArticleTitle}}</a> just reached <strong>{{.Pageviews}}</strong> views.</p>
  <p>Keep writing — your readers are showing up.</p>
</div>`))

// EmailCelebrationNotifier 在阈值触达时给文章作者发送一封庆祝邮件。
type EmailCelebrationNotifier struct {
	db      *gorm.DB
	mailer  Mailer
	baseURL string
}

// NewEmailCelebrationNotifier creates an EmailCelebrationNotifier.
func NewEmailCelebrationNotifier(gdb *gorm.DB, mailer Mailer, baseURL string) *EmailCelebrationNotifier {
	return &EmailCelebrationNotifier{db: gdb, mailer: mailer, baseURL: baseURL}
}

// Notify resolves the article's author and sends the celebration email. A
// missing author email skips the send; lookup and delivery failures are
// logged and dropped.
func (n *EmailCelebrationNotifier) Notify(ctx context.Context, articleID uint, pageviews uint64) {
	var recipient struct {
		Email string
		Name  string
		Title string
	}

	if err := n.db.Model(&db.Article{}).
		Select("users.email, users.name, articles.title").
		Joins("LEFT JOIN users ON users.id = articles.user_id").
		Where("articles.id = ?", articleID).
		Scan(&recipient).Error; err != nil {
		log.Printf("[CELEBRATE] lookup author for article %d failed: %v", articleID, err)
		return
	}

	if recipient.Email == "" {
		log.Printf("[CELEBRATE] skipping %d views on article %d, could not find author email", pageviews, articleID)
		return
	}

	name := recipient.Name
	if name == "" {
		name = "Friend"
	}

	var body bytes.Buffer
	if err := celebrationTemplate.Execute(&body, map[string]any{
		"Name":         name,
		"ArticleTitle": recipient.Title,
		"ArticleURL":   fmt.Sprintf("%s/wiki/%d", n.baseURL, articleID),
		"Pageviews":    pageviews,
	}); err != nil {
		log.Printf("[CELEBRATE] render email for article %d failed: %v", articleID, err)
		return
	}

	email := Email{
		To:      recipient.Email,
		Subject: fmt.Sprintf("✨ Your article got %d views! ✨", pageviews),
		HTML:    body.String(),
	}

	if err := n.mailer.Send(ctx, email); err != nil {
		log.Printf("[CELEBRATE] send %d-view celebration for article %d failed: %v", pageviews, articleID, err)
		return
	}

	log.Printf("[CELEBRATE] sent %s a celebration for %d views on article %d", recipient.Email, pageviews, articleID)
}
