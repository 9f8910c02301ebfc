package fetcher

import (
	"context"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"

	"github.com/iWorld-y/news_radar/internal/config"
	"github.com/iWorld-y/news_radar/internal/logger"
	"github.com/iWorld-y/news_radar/internal/model"
	"github.com/iWorld-y/news_radar/internal/search"
)

// Fetcher 调用搜索后端获取一批原始新闻候选
type Fetcher struct {
	searcher search.Searcher
	query    config.QueryConfig
}

// NewFetcher 创建抓取器
func NewFetcher(searcher search.Searcher, query config.QueryConfig) *Fetcher {
	return &Fetcher{searcher: searcher, query: query}
}

// Fetch 执行一次搜索并返回候选列表。
// 任何传输错误或响应格式异常都只记录日志并返回空列表，
// 本轮无新数据时上一代缓存保持可见，重试策略只存在于 LLM 调用层。
func (f *Fetcher) Fetch(ctx context.Context) []model.Candidate {
	if f.searcher == nil {
		logger.Log.Warn("未配置搜索后端，跳过本轮抓取")
		return nil
	}

	req := &search.Request{
		Query:        f.query.Text,
		Freshness:    f.query.Freshness,
		MaxResults:   f.query.MaxCount,
		ExcludeSites: f.query.ExcludeSites,
		WithSummary:  true,
	}

	resp, err := f.searcher.Search(ctx, req)
	if err != nil {
		logger.Log.Errorf("搜索调用失败: %v", err)
		return nil
	}

	candidates := make([]model.Candidate, 0, len(resp.Results))
	for i, r := range resp.Results {
		summary := r.Summary
		if summary == "" && f.query.EnrichContent {
			summary = fetchPageSummary(r.URL)
		}
		candidates = append(candidates, model.Candidate{
			Seq:      i + 1,
			Title:    r.Name,
			Summary:  summary,
			URL:      r.URL,
			SiteName: r.SiteName,
		})
	}

	logger.Log.Infof("搜索成功，返回 %d 条候选新闻", len(candidates))
	return candidates
}

// fetchPageSummary 抓取原文并提取正文开头作为摘要补充
func fetchPageSummary(url string) string {
	if url == "" {
		return ""
	}
	article, err := readability.FromURL(url, 30*time.Second)
	if err != nil {
		logger.Log.Warnf("原文抓取失败 [%s]: %v", url, err)
		return ""
	}
	text := strings.TrimSpace(article.TextContent)
	if r := []rune(text); len(r) > 500 {
		text = string(r[:500])
	}
	return text
}
