package service

import (
	"encoding/json"
	nethttp "net/http"
	"strings"
	"time"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/news_radar/internal/model"
	"github.com/iWorld-y/news_radar/internal/notify"
	"github.com/iWorld-y/news_radar/internal/pipeline"
	"github.com/iWorld-y/news_radar/internal/store"
)

// 相关文章最多返回的条数
const maxRelatedArticles = 3

// NewsService 对外的新闻查询与刷新服务
type NewsService struct {
	store    *store.Store
	pipe     *pipeline.Pipeline
	notifier *notify.Notifier
	log      *log.Helper
}

// NewNewsService 创建服务实例
func NewNewsService(s *store.Store, p *pipeline.Pipeline, n *notify.Notifier, logger log.Logger) *NewsService {
	return &NewsService{
		store:    s,
		pipe:     p,
		notifier: n,
		log:      log.NewHelper(logger),
	}
}

type response struct {
	Success    bool        `json:"success"`
	Data       interface{} `json:"data,omitempty"`
	Count      *int        `json:"count,omitempty"`
	LastUpdate string      `json:"last_update,omitempty"`
	Error      string      `json:"error,omitempty"`
}

// HandleNews 获取新闻列表。缓存为空时先同步执行一轮刷新
func (s *NewsService) HandleNews(w nethttp.ResponseWriter, r *nethttp.Request) {
	if s.store.Count() == 0 {
		if _, err := s.pipe.RunManual(r.Context()); err != nil {
			s.log.Warnf("首次加载刷新失败: %v", err)
		}
	}

	articles := s.store.List()
	count := len(articles)
	writeJSON(w, nethttp.StatusOK, response{
		Success:    true,
		Data:       articles,
		Count:      &count,
		LastUpdate: formatUpdate(s.store.LastUpdate()),
	})
}

// HandleRefresh 手动触发一轮完整刷新，失败以结构化结果返回
func (s *NewsService) HandleRefresh(w nethttp.ResponseWriter, r *nethttp.Request) {
	articles, err := s.pipe.RunManual(r.Context())
	if err != nil {
		s.log.Errorf("手动刷新失败: %v", err)
		writeJSON(w, nethttp.StatusInternalServerError, response{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	count := len(articles)
	writeJSON(w, nethttp.StatusOK, response{
		Success:    true,
		Data:       articles,
		Count:      &count,
		LastUpdate: formatUpdate(s.store.LastUpdate()),
	})
}

// HandleArticle 按 ID 获取单篇文章
func (s *NewsService) HandleArticle(w nethttp.ResponseWriter, r *nethttp.Request) {
	id := pathParam(r.URL.Path, "/api/article/")
	article, ok := s.store.Get(id)
	if !ok {
		writeJSON(w, nethttp.StatusNotFound, response{Success: false, Error: "文章不存在"})
		return
	}
	writeJSON(w, nethttp.StatusOK, response{Success: true, Data: article})
}

// HandleRelated 获取同分类的相关文章，不包含查询的文章本身
func (s *NewsService) HandleRelated(w nethttp.ResponseWriter, r *nethttp.Request) {
	id := pathParam(r.URL.Path, "/api/related-articles/")
	article, ok := s.store.Get(id)
	if !ok {
		writeJSON(w, nethttp.StatusNotFound, response{Success: false, Error: "文章不存在"})
		return
	}

	related := s.store.ListByCategory(article.Category, article.ID, maxRelatedArticles)
	if related == nil {
		related = []model.Article{}
	}
	writeJSON(w, nethttp.StatusOK, response{Success: true, Data: related})
}

// HandleStream 更新事件推送流。连接建立后先发一条心跳，
// 之后每次缓存换代推送一条消息，直到客户端断开。
func (s *NewsService) HandleStream(w nethttp.ResponseWriter, r *nethttp.Request) {
	flusher, ok := w.(nethttp.Flusher)
	if !ok {
		nethttp.Error(w, "streaming unsupported", nethttp.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	sub := s.notifier.Subscribe()
	defer s.notifier.Unsubscribe(sub)

	writeEvent(w, notify.Event{
		Type:      "heartbeat",
		Timestamp: time.Now(),
		Count:     s.store.Count(),
	})
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case event := <-sub.C():
			if err := writeEvent(w, event); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeEvent(w nethttp.ResponseWriter, event notify.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = w.Write(append(append([]byte("data: "), data...), '\n', '\n'))
	return err
}

func writeJSON(w nethttp.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func pathParam(path, prefix string) string {
	return strings.Trim(strings.TrimPrefix(path, prefix), "/")
}

func formatUpdate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04:05")
}
