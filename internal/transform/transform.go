package transform

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"golang.org/x/time/rate"

	"github.com/iWorld-y/news_radar/internal/config"
	"github.com/iWorld-y/news_radar/internal/logger"
	dm "github.com/iWorld-y/news_radar/internal/model"
	"github.com/iWorld-y/news_radar/internal/retry"
)

const batchSystemPrompt = "你是一个专业的AI新闻编辑，负责对AI相关新闻进行筛选、提炼和专业化加工。" +
	"请根据以下原始新闻内容，筛选出与AI相关且有价值的新闻，去除无关内容。" +
	"每条新闻请根据其摘要内容自动生成一个吸引人且与AI强相关的标题（不要直接使用原文标题），让用户一看就知道和AI有关并有兴趣点击。" +
	"摘要部分请对原文summary进行总结和概括。" +
	"每条新闻请严格输出如下格式：" +
	"原始序号：[数字]" +
	"标题：[自动生成的AI相关标题]" +
	"摘要：[对summary的总结概括]" +
	"分类：[技术突破/产品发布/行业动态/投资融资/政策法规]" +
	"请输出多条新闻时，每条新闻之间用两个换行分隔。"

const singleSystemPrompt = "你是一个专业的AI新闻编辑，负责对AI相关的新闻内容进行二次加工。" +
	"你需要从原始内容中提取关键信息，生成简洁明了的标题、摘要和分类。" +
	"分类必须从以下5个选项中选择一个：技术突破、产品发布、行业动态、投资融资、政策法规。" +
	"必须严格按照以下格式返回，不要添加其他内容：\n" +
	"标题：[生成的标题]\n" +
	"摘要：[生成的摘要]\n" +
	"分类：[生成的分类]"

// Transformer 批量调用 LLM 将原始搜索结果加工为结构化新闻文本。
// 未配置 LLM 时处于降级模式：批量路径返回空串，单条路径走本地启发式处理。
type Transformer struct {
	cm      model.ChatModel
	limiter *rate.Limiter
	policy  retry.Policy
}

// NewTransformer 创建转换器。LLM 凭证缺失时返回降级实例而非报错
func NewTransformer(ctx context.Context, cfg *config.Config) (*Transformer, error) {
	t := &Transformer{
		limiter: rate.NewLimiter(rate.Limit(float64(cfg.Concurrency.RPM)/60.0), cfg.Concurrency.QPS),
		policy: retry.Policy{
			MaxAttempts: 3,
			Backoff:     retry.Exponential(time.Second),
		},
	}

	if !cfg.LLM.Enabled() {
		logger.Log.Warn("未配置 LLM 凭证，转换器以降级模式运行")
		return t, nil
	}

	cm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL: cfg.LLM.BaseURL,
		APIKey:  cfg.LLM.APIKey,
		Model:   cfg.LLM.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM 初始化失败: %w", err)
	}
	t.cm = cm
	return t, nil
}

// Enabled LLM 是否可用
func (t *Transformer) Enabled() bool {
	return t.cm != nil
}

// TransformBatch 将全部候选拼进一次 LLM 调用并返回原始文本。
// 重试耗尽或未配置 LLM 时返回空串，调用方应将其视为本轮没有产出。
func (t *Transformer) TransformBatch(ctx context.Context, candidates []dm.Candidate) string {
	if t.cm == nil || len(candidates) == 0 {
		return ""
	}

	var sb strings.Builder
	for _, c := range candidates {
		fmt.Fprintf(&sb, "原始内容%d：\n标题：%s\n内容：%s\n\n", c.Seq, c.Title, c.Summary)
	}

	userPrompt := fmt.Sprintf(
		"请根据以下原始新闻内容，筛选、提炼并生成结构化AI新闻，去除无关内容。\n\n%s\n"+
			"请严格按照如下格式输出：\n"+
			"原始序号：[数字]\n标题：[自动生成的AI相关标题]\n摘要：[对summary的总结概括]\n分类：[技术突破/产品发布/行业动态/投资融资/政策法规]\n"+
			"多条新闻之间用两个换行分隔。",
		sb.String(),
	)

	result, err := t.generate(ctx, batchSystemPrompt, userPrompt)
	if err != nil {
		logger.Log.Errorf("LLM 批量调用失败: %v", err)
		return ""
	}
	return result
}

// TransformOne 单条加工路径。LLM 不可用或重试耗尽时退化为本地启发式处理
func (t *Transformer) TransformOne(ctx context.Context, content string) string {
	if t.cm == nil {
		return FallbackProcess(content)
	}

	userPrompt := fmt.Sprintf(
		"请对以下AI相关新闻内容进行二次加工，生成标题、摘要和分类：\n\n原始内容：%s\n\n"+
			"请严格按照以下格式返回（不要添加其他内容）：\n"+
			"标题：[生成的标题]\n摘要：[生成的摘要]\n分类：[技术突破/产品发布/行业动态/投资融资/政策法规]",
		content,
	)

	result, err := t.generate(ctx, singleSystemPrompt, userPrompt)
	if err != nil {
		logger.Log.Warnf("LLM 单条调用失败，使用本地启发式处理: %v", err)
		return FallbackProcess(content)
	}
	return result
}

// generate 在限流与重试策略下执行一次对话补全。
// 成功但取不到内容的响应同样计为失败并触发重试。
func (t *Transformer) generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	messages := []*schema.Message{
		{Role: schema.System, Content: systemPrompt},
		{Role: schema.User, Content: userPrompt},
	}

	var result string
	err := t.policy.Do(ctx, func(ctx context.Context) error {
		if err := t.limiter.Wait(ctx); err != nil {
			return err
		}

		resp, err := t.cm.Generate(ctx, messages)
		if err != nil {
			return err
		}
		content := strings.TrimSpace(resp.Content)
		if content == "" {
			return fmt.Errorf("empty completion content")
		}
		result = content
		return nil
	})
	if err != nil {
		return "", err
	}
	return result, nil
}
