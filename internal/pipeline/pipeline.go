package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/iWorld-y/news_radar/internal/logger"
	"github.com/iWorld-y/news_radar/internal/model"
	"github.com/iWorld-y/news_radar/internal/notify"
	"github.com/iWorld-y/news_radar/internal/parser"
	"github.com/iWorld-y/news_radar/internal/store"
	"github.com/iWorld-y/news_radar/internal/transform"
)

// EventRefresh 缓存整体更新事件类型
const EventRefresh = "refresh"

// Transformer 流水线依赖的 LLM 转换能力
type Transformer interface {
	Enabled() bool
	TransformBatch(ctx context.Context, candidates []model.Candidate) string
}

// Fetcher 流水线依赖的抓取能力
type Fetcher interface {
	Fetch(ctx context.Context) []model.Candidate
}

// Pipeline 一轮完整的刷新流程：抓取 → 批量转换 → 解析 → 换代 → 通知。
// 定时触发与手动触发共用同一个 singleflight，重叠触发不会交错写缓存。
type Pipeline struct {
	fetcher     Fetcher
	transformer Transformer
	store       *store.Store
	notifier    *notify.Notifier
	sf          singleflight.Group
}

// NewPipeline 创建流水线
func NewPipeline(f Fetcher, t Transformer, s *store.Store, n *notify.Notifier) *Pipeline {
	return &Pipeline{fetcher: f, transformer: t, store: s, notifier: n}
}

// RunScheduled 定时路径：失败由调用方记录日志后静默吞掉，旧缓存保持可见
func (p *Pipeline) RunScheduled(ctx context.Context) error {
	_, err := p.run(ctx, false)
	return err
}

// RunManual 手动路径：失败作为结构化结果上报给调用方。
// LLM 批量调用失败时退化为本地逐条启发式加工，而非直接放弃。
func (p *Pipeline) RunManual(ctx context.Context) ([]model.Article, error) {
	return p.run(ctx, true)
}

func (p *Pipeline) run(ctx context.Context, manual bool) ([]model.Article, error) {
	v, err, _ := p.sf.Do("refresh", func() (interface{}, error) {
		return p.runCycle(ctx, manual)
	})
	if err != nil {
		return nil, err
	}
	return v.([]model.Article), nil
}

// runCycle 严格顺序执行一轮流水线，内部不做并行。
// 任何一步失败都不触碰当前缓存代。
func (p *Pipeline) runCycle(ctx context.Context, manual bool) ([]model.Article, error) {
	now := time.Now()

	candidates := p.fetcher.Fetch(ctx)
	if len(candidates) == 0 {
		return nil, fmt.Errorf("本轮未获取到候选新闻")
	}

	var articles []model.Article
	if !p.transformer.Enabled() {
		// 未配置 LLM：跳过解析，原始结果直通
		articles = parser.FromCandidates(candidates, now)
	} else {
		raw := p.transformer.TransformBatch(ctx, candidates)
		if raw == "" {
			if !manual {
				return nil, fmt.Errorf("LLM 批量转换未产出内容")
			}
			logger.Log.Warn("LLM 批量转换失败，退化为本地逐条加工")
			raw = fallbackBatch(candidates)
		}
		articles = parser.Parse(raw, candidates, now)
	}

	if len(articles) == 0 {
		return nil, fmt.Errorf("解析后没有有效新闻，保留上一代缓存")
	}

	p.store.ReplaceAll(articles, now)
	p.notifier.Publish(notify.Event{
		Type:      EventRefresh,
		Timestamp: now,
		Count:     len(articles),
	})

	logger.Log.Infof("刷新完成，本代共 %d 篇文章", len(articles))
	return articles, nil
}

// fallbackBatch 对每条候选做本地启发式加工，拼成与 LLM 批量输出同构的文本
func fallbackBatch(candidates []model.Candidate) string {
	blocks := make([]string, 0, len(candidates))
	for _, c := range candidates {
		blocks = append(blocks, transform.FallbackProcess(c.Title+"\n"+c.Summary))
	}
	return strings.Join(blocks, "\n\n")
}
