package search

import "context"

// Searcher 定义通用的新闻搜索接口
type Searcher interface {
	Search(ctx context.Context, req *Request) (*Response, error)
}

// Request 通用搜索请求
type Request struct {
	Query        string
	Freshness    string // 如 "oneDay"
	MaxResults   int
	ExcludeSites string // 以 | 分隔的站点列表
	WithSummary  bool
}

// Response 通用搜索响应
type Response struct {
	Results []Result
}

// Result 单条搜索结果
type Result struct {
	Name     string // 原始标题
	Summary  string
	URL      string
	SiteName string
}
