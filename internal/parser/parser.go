package parser

import (
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/iWorld-y/news_radar/internal/model"
)

// LLM 批量输出的行标签
const (
	labelSeq      = "原始序号"
	labelTitle    = "标题"
	labelSummary  = "摘要"
	labelCategory = "分类"
)

// Parse 将 LLM 批量返回的自由文本解析为文章列表。
// 文本以空行分隔为多个块，每块对应一篇文章；块内按标签前缀识别字段，
// 无法识别的行被忽略。url/来源优先按块中声明的原始序号回填到 candidates，
// 序号缺失或越界时退化为标题子串匹配，仍失败则留空。
// 文章 ID 为块在解析结果中的序号（从 1 开始），与原始序号无关。
func Parse(raw string, candidates []model.Candidate, now time.Time) []model.Article {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	var articles []model.Article
	for _, block := range splitBlocks(raw) {
		var title, summary, category, rawSeq string
		for _, line := range strings.Split(block, "\n") {
			line = strings.TrimSpace(line)
			switch {
			case hasLabel(line, labelSeq):
				rawSeq = digitsOnly(line)
			case hasLabel(line, labelTitle):
				title = labelValue(line, labelTitle)
			case hasLabel(line, labelSummary):
				summary = labelValue(line, labelSummary)
			case hasLabel(line, labelCategory):
				category = labelValue(line, labelCategory)
			}
		}

		url, source := alignCandidate(rawSeq, title, candidates)

		article := model.Article{
			ID:       strconv.Itoa(len(articles) + 1),
			Title:    title,
			Summary:  summary,
			URL:      url,
			Source:   source,
			Category: model.ParseCategory(category),
		}
		article.Timestamps(now)
		articles = append(articles, article)
	}
	return articles
}

// FromCandidates 未配置 LLM 时的直通路径：原始结果 1:1 映射为文章
func FromCandidates(candidates []model.Candidate, now time.Time) []model.Article {
	articles := make([]model.Article, 0, len(candidates))
	for i, c := range candidates {
		article := model.Article{
			ID:       strconv.Itoa(i + 1),
			Title:    c.Title,
			Summary:  c.Summary,
			URL:      c.URL,
			Source:   c.SiteName,
			Category: model.DefaultCategory,
		}
		article.Timestamps(now)
		articles = append(articles, article)
	}
	return articles
}

// alignCandidate 回填 url/来源：优先原始序号，其次标题子串匹配
func alignCandidate(rawSeq, title string, candidates []model.Candidate) (string, string) {
	if rawSeq != "" {
		if n, err := strconv.Atoi(rawSeq); err == nil && n >= 1 && n <= len(candidates) {
			return candidates[n-1].URL, candidates[n-1].SiteName
		}
	}
	if title != "" {
		for _, c := range candidates {
			if strings.Contains(c.Title, title) {
				return c.URL, c.SiteName
			}
		}
	}
	return "", ""
}

func splitBlocks(raw string) []string {
	// 统一换行后按空行切块
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	var blocks []string
	for _, b := range strings.Split(raw, "\n\n") {
		if b = strings.TrimSpace(b); b != "" {
			blocks = append(blocks, b)
		}
	}
	return blocks
}

// hasLabel 判断行是否以指定标签开头，兼容全角与半角冒号
func hasLabel(line, label string) bool {
	return strings.HasPrefix(line, label+"：") || strings.HasPrefix(line, label+":")
}

// labelValue 提取标签后的内容
func labelValue(line, label string) string {
	v := strings.TrimPrefix(line, label)
	v = strings.TrimPrefix(v, "：")
	v = strings.TrimPrefix(v, ":")
	return strings.TrimSpace(v)
}

// digitsOnly 去除所有非数字字符
func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
