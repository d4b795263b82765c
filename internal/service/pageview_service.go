package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/wikimasters/internal/cache"
)

const defaultCelebrationStep = 100

// PageviewService 负责文章浏览计数及庆祝阈值判定。
//
// Counters live in the key-value store, independent of the relational store:
// one atomic increment per rendered detail view, no viewer deduplication.
type PageviewService struct {
	counters cache.Store
	step     uint64
	notifier CelebrationNotifier
}

// NewPageviewService creates a PageviewService with the default celebration
// step. notifier may be nil to disable celebrations entirely.
func NewPageviewService(counters cache.Store, notifier CelebrationNotifier) *PageviewService {
	return &PageviewService{counters: counters, step: defaultCelebrationStep, notifier: notifier}
}

// WithCelebrationStep 允许覆盖庆祝阈值步长，0 保持默认值。
func (s *PageviewService) WithCelebrationStep(step uint64) *PageviewService {
	if step > 0 {
		s.step = step
	}
	return s
}

// Increment adds one view to the article's counter and returns the new total.
// Landing exactly on a multiple of the celebration step triggers the notifier;
// notification failures never affect the returned count.
func (s *PageviewService) Increment(ctx context.Context, articleID uint) (uint64, error) {
	if articleID == 0 {
		return 0, errors.New("invalid article id")
	}

	count, err := s.counters.Incr(ctx, PageviewKey(articleID))
	if err != nil {
		return 0, err
	}

	if s.notifier != nil && s.step > 0 && count%s.step == 0 {
		s.notifier.Notify(ctx, articleID, count)
	}

	return count, nil
}

// PageviewKey 返回指定文章的计数器键。
func PageviewKey(articleID uint) string {
	return fmt.Sprintf("pageviews:article:%d", articleID)
}
