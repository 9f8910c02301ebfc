package server

import (
	nethttp "net/http"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/middleware/recovery"
	"github.com/go-kratos/kratos/v2/transport/http"

	"github.com/iWorld-y/news_radar/internal/config"
	"github.com/iWorld-y/news_radar/internal/service"
)

// NewHTTPServer 创建 HTTP 服务并注册全部路由
func NewHTTPServer(cfg *config.Config, s *service.NewsService, logger log.Logger) *http.Server {
	var opts = []http.ServerOption{
		http.Middleware(
			recovery.Recovery(),
		),
	}
	if cfg.Server.Addr != "" {
		opts = append(opts, http.Address(cfg.Server.Addr))
	}
	// 事件流是长连接，默认不设置全局请求超时
	timeout := time.Duration(0)
	if cfg.Server.Timeout != "" {
		if d, err := time.ParseDuration(cfg.Server.Timeout); err == nil {
			timeout = d
		}
	}
	opts = append(opts, http.Timeout(timeout))

	srv := http.NewServer(opts...)

	srv.HandleFunc("/api/news", s.HandleNews)
	srv.HandleFunc("/api/refresh", s.HandleRefresh)
	srv.HandleFunc("/api/stream", s.HandleStream)
	srv.HandlePrefix("/api/article/", nethttp.HandlerFunc(s.HandleArticle))
	srv.HandlePrefix("/api/related-articles/", nethttp.HandlerFunc(s.HandleRelated))

	return srv
}
