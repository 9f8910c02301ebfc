package bocha

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/iWorld-y/news_radar/internal/search"
)

const defaultEndpoint = "https://api.bochaai.com/v1/web-search"

// Client 博查 Web Search API 客户端
type Client struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

// NewClient 创建一个新的博查客户端，请求超时固定为 30 秒
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:   apiKey,
		endpoint: defaultEndpoint,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Ensure Client implements search.Searcher
var _ search.Searcher = (*Client)(nil)

type searchRequest struct {
	Query        string `json:"query"`
	Freshness    string `json:"freshness,omitempty"`
	Summary      bool   `json:"summary"`
	Count        int    `json:"count,omitempty"`
	ExcludeSites string `json:"exclude_sites,omitempty"`
}

type searchResponse struct {
	Data *struct {
		WebPages *struct {
			Value []webPage `json:"value"`
		} `json:"webPages"`
	} `json:"data"`
}

type webPage struct {
	Name     string `json:"name"`
	Summary  string `json:"summary"`
	URL      string `json:"url"`
	SiteName string `json:"siteName"`
}

// Search 执行搜索。响应中缺少 data.webPages 视为格式异常，由调用方决定降级策略
func (c *Client) Search(ctx context.Context, req *search.Request) (*search.Response, error) {
	payload, err := json.Marshal(searchRequest{
		Query:        req.Query,
		Freshness:    req.Freshness,
		Summary:      req.WithSummary,
		Count:        req.MaxResults,
		ExcludeSites: req.ExcludeSites,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request failed: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	res, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read body failed: %w", err)
	}

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bocha api error (status %d): %s", res.StatusCode, string(body))
	}

	var searchResp searchResponse
	if err := json.Unmarshal(body, &searchResp); err != nil {
		return nil, fmt.Errorf("unmarshal response failed: %w", err)
	}

	// 响应格式校验：缺少嵌套的 webPages 集合时不视为致命错误
	if searchResp.Data == nil || searchResp.Data.WebPages == nil {
		return nil, fmt.Errorf("unexpected response shape: missing data.webPages")
	}

	results := make([]search.Result, 0, len(searchResp.Data.WebPages.Value))
	for _, page := range searchResp.Data.WebPages.Value {
		results = append(results, search.Result{
			Name:     page.Name,
			Summary:  page.Summary,
			URL:      page.URL,
			SiteName: page.SiteName,
		})
	}

	return &search.Response{Results: results}, nil
}
