package service

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/news_radar/internal/model"
	"github.com/iWorld-y/news_radar/internal/notify"
	"github.com/iWorld-y/news_radar/internal/pipeline"
	"github.com/iWorld-y/news_radar/internal/store"
)

type stubFetcher struct {
	candidates []model.Candidate
}

func (f *stubFetcher) Fetch(ctx context.Context) []model.Candidate {
	return f.candidates
}

type stubTransformer struct{}

func (stubTransformer) Enabled() bool { return false }
func (stubTransformer) TransformBatch(ctx context.Context, candidates []model.Candidate) string {
	return ""
}

func newTestService(candidates []model.Candidate) (*NewsService, *store.Store, *notify.Notifier) {
	st := store.NewStore()
	nt := notify.NewNotifier()
	p := pipeline.NewPipeline(&stubFetcher{candidates: candidates}, stubTransformer{}, st, nt)
	return NewNewsService(st, p, nt, log.DefaultLogger), st, nt
}

func seedStore(st *store.Store) {
	st.ReplaceAll([]model.Article{
		{ID: "1", Title: "文章一", Category: model.CategoryFunding},
		{ID: "2", Title: "文章二", Category: model.CategoryPolicy},
		{ID: "3", Title: "文章三", Category: model.CategoryFunding},
		{ID: "4", Title: "文章四", Category: model.CategoryFunding},
	}, time.Now())
}

func TestHandleNews(t *testing.T) {
	svc, st, _ := newTestService(nil)
	seedStore(st)

	w := httptest.NewRecorder()
	svc.HandleNews(w, httptest.NewRequest("GET", "/api/news", nil))

	require.Equal(t, 200, w.Code)

	var resp struct {
		Success    bool            `json:"success"`
		Data       []model.Article `json:"data"`
		Count      int             `json:"count"`
		LastUpdate string          `json:"last_update"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.True(t, resp.Success)
	assert.Equal(t, 4, resp.Count)
	assert.Len(t, resp.Data, 4)
	assert.NotEmpty(t, resp.LastUpdate)
}

func TestHandleNewsLazyRefresh(t *testing.T) {
	// 缓存为空时先同步拉取一轮
	svc, st, _ := newTestService([]model.Candidate{
		{Seq: 1, Title: "新文章", Summary: "摘要", URL: "https://a.example.com", SiteName: "来源A"},
	})

	w := httptest.NewRecorder()
	svc.HandleNews(w, httptest.NewRequest("GET", "/api/news", nil))

	require.Equal(t, 200, w.Code)
	assert.Equal(t, 1, st.Count())
}

func TestHandleRefreshFailure(t *testing.T) {
	// 抓取不到候选时，手动刷新以结构化失败结果返回
	svc, _, _ := newTestService(nil)

	w := httptest.NewRecorder()
	svc.HandleRefresh(w, httptest.NewRequest("GET", "/api/refresh", nil))

	require.Equal(t, 500, w.Code)

	var resp struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.Error)
}

func TestHandleArticle(t *testing.T) {
	svc, st, _ := newTestService(nil)
	seedStore(st)

	w := httptest.NewRecorder()
	svc.HandleArticle(w, httptest.NewRequest("GET", "/api/article/2", nil))
	require.Equal(t, 200, w.Code)

	var resp struct {
		Success bool          `json:"success"`
		Data    model.Article `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "文章二", resp.Data.Title)

	w = httptest.NewRecorder()
	svc.HandleArticle(w, httptest.NewRequest("GET", "/api/article/999", nil))
	assert.Equal(t, 404, w.Code)
}

func TestHandleRelatedExcludesSelf(t *testing.T) {
	svc, st, _ := newTestService(nil)
	seedStore(st)

	w := httptest.NewRecorder()
	svc.HandleRelated(w, httptest.NewRequest("GET", "/api/related-articles/1", nil))
	require.Equal(t, 200, w.Code)

	var resp struct {
		Success bool            `json:"success"`
		Data    []model.Article `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	// 同分类文章中不包含查询的文章本身
	require.Len(t, resp.Data, 2)
	for _, a := range resp.Data {
		assert.NotEqual(t, "1", a.ID)
		assert.Equal(t, model.CategoryFunding, a.Category)
	}
}

func TestHandleStream(t *testing.T) {
	svc, st, nt := newTestService(nil)
	seedStore(st)

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest("GET", "/api/stream", nil).WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		svc.HandleStream(w, req)
		close(done)
	}()

	// 等订阅建立后发布一条更新事件
	require.Eventually(t, func() bool { return nt.SubscriberCount() == 1 },
		time.Second, 10*time.Millisecond)
	nt.Publish(notify.Event{Type: pipeline.EventRefresh, Timestamp: time.Now(), Count: 4})

	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	body := w.Body.String()
	assert.Contains(t, body, `"type":"heartbeat"`)
	assert.Contains(t, body, `"type":"refresh"`)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))

	// 断开后订阅者被注销
	assert.Zero(t, nt.SubscriberCount())
}
