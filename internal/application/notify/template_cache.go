package notify

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"respa-server/internal/domain/notification"
)

// DefaultTemplateTTL テンプレートをキャッシュする期間
// 他のインスタンスでの更新はこの期間内に反映される
const DefaultTemplateTTL = time.Minute

type cachedTemplate struct {
	tmpl     *notification.Template
	loadedAt time.Time
}

// templateCache 通知テンプレートのキャッシュ。同時の読み込みは1回にまとめる
type templateCache struct {
	repo  notification.TemplateRepository
	ttl   time.Duration
	now   func() time.Time
	mu    sync.RWMutex
	items map[notification.NotificationType]cachedTemplate
	// generations 無効化ごとに増え、無効化前に始まった読み込み結果の保存を防ぐ
	generations map[notification.NotificationType]uint64
	group       singleflight.Group
}

func newTemplateCache(repo notification.TemplateRepository, ttl time.Duration) *templateCache {
	return &templateCache{
		repo:        repo,
		ttl:         ttl,
		now:         time.Now,
		items:       make(map[notification.NotificationType]cachedTemplate),
		generations: make(map[notification.NotificationType]uint64),
	}
}

func (c *templateCache) get(ctx context.Context, t notification.NotificationType) (*notification.Template, error) {
	c.mu.RLock()
	item, ok := c.items[t]
	c.mu.RUnlock()
	if ok && c.now().Sub(item.loadedAt) < c.ttl {
		return item.tmpl, nil
	}

	v, err, _ := c.group.Do(t.String(), func() (interface{}, error) {
		c.mu.RLock()
		gen := c.generations[t]
		c.mu.RUnlock()

		tmpl, err := c.repo.FindByType(ctx, t)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		if c.generations[t] == gen {
			c.items[t] = cachedTemplate{tmpl: tmpl, loadedAt: c.now()}
		}
		c.mu.Unlock()
		return tmpl, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*notification.Template), nil
}

func (c *templateCache) invalidate(t notification.NotificationType) {
	c.mu.Lock()
	delete(c.items, t)
	c.generations[t]++
	c.mu.Unlock()
	c.group.Forget(t.String())
}
