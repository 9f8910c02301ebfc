package factory

import (
	"fmt"

	"github.com/iWorld-y/news_radar/internal/config"
	"github.com/iWorld-y/news_radar/internal/search"
	"github.com/iWorld-y/news_radar/internal/search/bocha"
	"github.com/iWorld-y/news_radar/internal/search/searxng"
)

// NewSearcher 根据配置创建搜索实例
func NewSearcher(cfg *config.Config) (search.Searcher, error) {
	provider := cfg.Search.Provider
	if provider == "" {
		// 默认回退逻辑：配置了博查 key 则使用博查
		if cfg.Search.Bocha.APIKey != "" {
			provider = "bocha"
		} else {
			return nil, fmt.Errorf("search provider not configured")
		}
	}

	switch provider {
	case "bocha":
		if cfg.Search.Bocha.APIKey == "" {
			return nil, fmt.Errorf("bocha api key is missing")
		}
		return bocha.NewClient(cfg.Search.Bocha.APIKey), nil

	case "searxng":
		if cfg.Search.SearXNG.BaseURL == "" {
			return nil, fmt.Errorf("searxng base url is missing")
		}
		return searxng.NewClient(cfg.Search.SearXNG.BaseURL, cfg.Search.SearXNG.Timeout), nil

	default:
		return nil, fmt.Errorf("unknown search provider: %s", provider)
	}
}
