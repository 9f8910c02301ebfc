package main

import (
	"context"
	"flag"
	"os"

	"github.com/go-kratos/kratos/v2"
	klog "github.com/go-kratos/kratos/v2/log"
	"github.com/joho/godotenv"

	"github.com/iWorld-y/news_radar/internal/config"
	"github.com/iWorld-y/news_radar/internal/fetcher"
	"github.com/iWorld-y/news_radar/internal/logger"
	"github.com/iWorld-y/news_radar/internal/notify"
	"github.com/iWorld-y/news_radar/internal/pipeline"
	"github.com/iWorld-y/news_radar/internal/scheduler"
	"github.com/iWorld-y/news_radar/internal/search"
	"github.com/iWorld-y/news_radar/internal/search/factory"
	"github.com/iWorld-y/news_radar/internal/server"
	"github.com/iWorld-y/news_radar/internal/service"
	"github.com/iWorld-y/news_radar/internal/store"
	"github.com/iWorld-y/news_radar/internal/transform"
)

// go build -ldflags "-X main.Version=x.y.z"
var (
	// Name 是服务的名称
	Name string = "news_radar"
	// Version 是服务的版本号
	Version string
	// flagconf 是配置文件的路径命令行参数
	flagconf string

	id, _ = os.Hostname()
)

func init() {
	flag.StringVar(&flagconf, "conf", "configs/config.yaml", "config path, eg: -conf config.yaml")
}

func main() {
	flag.Parse()

	// .env 不存在时忽略，凭证也可以直接来自进程环境
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(flagconf)
	if err != nil {
		panic(err)
	}

	if err := logger.InitLogger(cfg.Log.Level, cfg.Log.File); err != nil {
		panic(err)
	}

	klogger := klog.With(klog.NewStdLogger(os.Stdout),
		"ts", klog.DefaultTimestamp,
		"caller", klog.DefaultCaller,
		"service.id", id,
		"service.name", Name,
		"service.version", Version,
	)

	ctx := context.Background()

	// 搜索后端缺少凭证时降级运行，只影响刷新产出，不阻止进程启动
	var searcher search.Searcher
	if s, err := factory.NewSearcher(cfg); err != nil {
		logger.Log.Warnf("搜索后端不可用: %v", err)
	} else {
		searcher = s
	}

	transformer, err := transform.NewTransformer(ctx, cfg)
	if err != nil {
		logger.Log.Fatalf("转换器初始化失败: %v", err)
	}

	st := store.NewStore()
	notifier := notify.NewNotifier()
	pipe := pipeline.NewPipeline(
		fetcher.NewFetcher(searcher, cfg.Query),
		transformer,
		st,
		notifier,
	)

	svc := service.NewNewsService(st, pipe, notifier, klogger)
	hs := server.NewHTTPServer(cfg, svc, klogger)
	driver := scheduler.NewDriver(scheduler.NewSchedule(cfg.Refresh), pipe.RunScheduled)

	app := kratos.New(
		kratos.ID(id),
		kratos.Name(Name),
		kratos.Version(Version),
		kratos.Metadata(map[string]string{}),
		kratos.Logger(klogger),
		kratos.Server(hs, driver),
	)

	if err := app.Run(); err != nil {
		panic(err)
	}
}
