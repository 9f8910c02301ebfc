package model

import "time"

// Candidate 一条原始搜索结果，尚未经过 LLM 加工。
// Seq 为本次抓取中的序号（从 1 开始），是后续解析时对齐 url/来源的依据。
type Candidate struct {
	Seq      int
	Title    string
	Summary  string
	URL      string
	SiteName string
}

// Category 新闻分类，取值固定为五种中文标签
type Category string

const (
	CategoryTechBreakthrough Category = "技术突破"
	CategoryProductLaunch    Category = "产品发布"
	CategoryIndustryMove     Category = "行业动态"
	CategoryFunding          Category = "投资融资"
	CategoryPolicy           Category = "政策法规"
)

// DefaultCategory 无法识别分类时的默认值
const DefaultCategory = CategoryTechBreakthrough

var validCategories = map[Category]bool{
	CategoryTechBreakthrough: true,
	CategoryProductLaunch:    true,
	CategoryIndustryMove:     true,
	CategoryFunding:          true,
	CategoryPolicy:           true,
}

// ParseCategory 将 LLM 输出的分类文本归一到五种分类之一。
// 先去除包裹的括号字符，无法匹配时返回默认分类。
func ParseCategory(s string) Category {
	trimmed := trimBrackets(s)
	c := Category(trimmed)
	if validCategories[c] {
		return c
	}
	return DefaultCategory
}

func trimBrackets(s string) string {
	for len(s) > 0 {
		r := []rune(s)
		switch r[0] {
		case '[', '【', '（', '(', ' ', '\t':
			s = string(r[1:])
			continue
		}
		switch r[len(r)-1] {
		case ']', '】', '）', ')', ' ', '\t':
			s = string(r[:len(r)-1])
			continue
		}
		break
	}
	return s
}

// Article 经过加工后对外展示的文章。
// ID 在一代缓存内稳定，为解析顺序中的序号（从 1 开始）。
type Article struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Summary   string   `json:"summary"`
	URL       string   `json:"url"`
	Source    string   `json:"source"`
	Category  Category `json:"category"`
	Time      string   `json:"time"`
	CreatedAt string   `json:"created_at"`
}

// Timestamps 填充文章的时间字段，格式与前端约定保持一致
func (a *Article) Timestamps(now time.Time) {
	a.Time = now.Format("2006-01-02 15:04")
	a.CreatedAt = now.Format("2006-01-02 15:04:05")
}
