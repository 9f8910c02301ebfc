package config

import (
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config 项目配置结构体。
// 支持从 yaml 文件加载，环境变量始终优先于文件中的同名配置。
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	LLM         LLMConfig         `yaml:"llm"`
	Search      SearchConfig      `yaml:"search"`
	Refresh     RefreshConfig     `yaml:"refresh"`
	Query       QueryConfig       `yaml:"query"`
	Log         LogConfig         `yaml:"log"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
}

// ServerConfig HTTP 服务相关配置
type ServerConfig struct {
	Addr    string `yaml:"addr"`
	Timeout string `yaml:"timeout"`
}

// LLMConfig LLM 相关配置
type LLMConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
}

// Enabled LLM 是否可用，未配置凭证时整体降级而非报错
func (c LLMConfig) Enabled() bool {
	return c.APIKey != "" && c.Model != ""
}

// SearchConfig 搜索相关配置
type SearchConfig struct {
	Provider string        `yaml:"provider"`
	Bocha    BochaConfig   `yaml:"bocha"`
	SearXNG  SearXNGConfig `yaml:"searxng"`
}

// BochaConfig 博查配置
type BochaConfig struct {
	APIKey string `yaml:"api_key"`
}

// SearXNGConfig SearXNG 配置
type SearXNGConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout int    `yaml:"timeout"`
}

// RefreshConfig 定时刷新配置。
// Time 形如 "HH:MM"，设置后覆盖单独给出的 Hour/Minute。
type RefreshConfig struct {
	Time          string `yaml:"time"`
	Hour          int    `yaml:"hour"`
	Minute        int    `yaml:"minute"`
	IntervalHours int    `yaml:"interval_hours"`
	Timezone      string `yaml:"timezone"`
}

// QueryConfig 新闻搜索查询配置
type QueryConfig struct {
	Text          string `yaml:"text"`
	ExcludeSites  string `yaml:"exclude_sites"`
	Freshness     string `yaml:"freshness"`
	MaxCount      int    `yaml:"max_count"`
	EnrichContent bool   `yaml:"enrich_content"`
}

// LogConfig 日志相关配置
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// ConcurrencyConfig LLM 调用限流配置
type ConcurrencyConfig struct {
	QPS int `yaml:"qps"`
	RPM int `yaml:"rpm"`
}

const (
	defaultQuery = "全球范围内关于AI人工智能的最新动态新闻，重点关注具有行业影响力的技术突破、产品发布、行业趋势、投资融资和政策法规等方面的内容"

	defaultExcludeSites = "tech.gmw.cn|m.gmw.cn"
)

// LoadConfig 从指定路径加载配置并应用环境变量覆盖。
// 配置文件不存在不视为错误，此时配置完全来自环境变量与默认值。
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, err
			}
		} else if !os.IsNotExist(err) {
			return nil, err
		}
	}

	cfg.applyEnv()
	cfg.normalize()
	return &cfg, nil
}

func (c *Config) applyEnv() {
	setString(&c.Search.Bocha.APIKey, "BOCHA_API_KEY")
	setString(&c.Search.Provider, "SEARCH_PROVIDER")
	setString(&c.Search.SearXNG.BaseURL, "SEARXNG_BASE_URL")

	setString(&c.LLM.APIKey, "VOLCENGINE_API_KEY")
	setString(&c.LLM.Model, "VOLCENGINE_ENDPOINT_ID")
	setString(&c.LLM.BaseURL, "VOLCENGINE_BASE_URL")

	setString(&c.Refresh.Time, "REFRESH_TIME")
	setInt(&c.Refresh.Hour, "REFRESH_HOUR")
	setInt(&c.Refresh.Minute, "REFRESH_MINUTE")
	setInt(&c.Refresh.IntervalHours, "REFRESH_INTERVAL_HOURS")
	setString(&c.Refresh.Timezone, "REFRESH_TIMEZONE")

	setString(&c.Server.Addr, "HTTP_ADDR")
	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Log.File, "LOG_FILE")
}

// normalize 填充默认值并纠正越界配置
func (c *Config) normalize() {
	// 刷新锚点时间："HH:MM" 覆盖单独配置的小时/分钟
	if c.Refresh.Time != "" {
		parts := strings.SplitN(c.Refresh.Time, ":", 2)
		if len(parts) == 2 {
			if h, err := strconv.Atoi(strings.TrimSpace(parts[0])); err == nil {
				c.Refresh.Hour = h
			}
			if m, err := strconv.Atoi(strings.TrimSpace(parts[1])); err == nil {
				c.Refresh.Minute = m
			}
		}
	}
	if c.Refresh.Hour < 0 || c.Refresh.Hour > 23 {
		c.Refresh.Hour = 0
	}
	if c.Refresh.Minute < 0 || c.Refresh.Minute > 59 {
		c.Refresh.Minute = 0
	}
	if c.Refresh.IntervalHours < 1 {
		c.Refresh.IntervalHours = 4
	}

	if c.Query.Text == "" {
		c.Query.Text = defaultQuery
	}
	if c.Query.ExcludeSites == "" {
		c.Query.ExcludeSites = defaultExcludeSites
	}
	if c.Query.Freshness == "" {
		c.Query.Freshness = "oneDay"
	}
	if c.Query.MaxCount <= 0 {
		c.Query.MaxCount = 50
	}

	if c.Server.Addr == "" {
		c.Server.Addr = ":5000"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}

	if c.Concurrency.QPS <= 0 {
		c.Concurrency.QPS = 1
	}
	if c.Concurrency.RPM <= 0 {
		c.Concurrency.RPM = 30
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
