package store

import (
	"sync/atomic"
	"time"

	"github.com/iWorld-y/news_radar/internal/model"
)

// generation 一代完整的文章集合，map 与有序列表总是一起重建
type generation struct {
	byID      map[string]model.Article
	ordered   []model.Article
	updatedAt time.Time
}

// Store 进程内文章缓存。
// 写入只发生在一轮流水线的最后一步，通过整代原子替换完成；
// 任意数量的并发读取方看到的都是完整的一代，不存在新旧混合。
type Store struct {
	gen atomic.Pointer[generation]
}

// NewStore 创建空缓存
func NewStore() *Store {
	s := &Store{}
	s.gen.Store(&generation{byID: map[string]model.Article{}})
	return s
}

// ReplaceAll 用新一代文章整体替换缓存
func (s *Store) ReplaceAll(articles []model.Article, now time.Time) {
	g := &generation{
		byID:      make(map[string]model.Article, len(articles)),
		ordered:   make([]model.Article, len(articles)),
		updatedAt: now,
	}
	copy(g.ordered, articles)
	for _, a := range articles {
		g.byID[a.ID] = a
	}
	s.gen.Store(g)
}

// Get 按 ID 查找文章
func (s *Store) Get(id string) (model.Article, bool) {
	a, ok := s.gen.Load().byID[id]
	return a, ok
}

// List 返回当前代的有序文章快照
func (s *Store) List() []model.Article {
	return s.gen.Load().ordered
}

// Count 当前代文章数量
func (s *Store) Count() int {
	return len(s.gen.Load().ordered)
}

// LastUpdate 最近一次整体替换的时间，从未替换过时为零值
func (s *Store) LastUpdate() time.Time {
	return s.gen.Load().updatedAt
}

// ListByCategory 按缓存顺序线性扫描同分类文章，排除指定 ID，至多返回 limit 条
func (s *Store) ListByCategory(category model.Category, excludeID string, limit int) []model.Article {
	var matched []model.Article
	for _, a := range s.gen.Load().ordered {
		if a.ID == excludeID || a.Category != category {
			continue
		}
		matched = append(matched, a)
		if len(matched) >= limit {
			break
		}
	}
	return matched
}
