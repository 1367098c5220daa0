package social_sdk

import (
	"net/http"
	"time"

	"github.com/cydxin/social-sdk/alert"
	"github.com/cydxin/social-sdk/push"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

type Config struct {
	BaseURL    string
	UserID     uint64
	HTTPClient *http.Client

	// Push 为空且配置了 RDB 时使用 Redis Pub/Sub；都为空则只靠轮询
	Push push.Channel
	RDB  *redis.Client

	Logger *zap.Logger
	Alert  alert.Sink

	PollInterval   time.Duration
	PageSize       int
	SearchDebounce time.Duration
}

type Option func(*Config)

// WithBaseURL 后端地址，例如 http://localhost:6789/api/v1
func WithBaseURL(url string) Option {
	return func(c *Config) {
		c.BaseURL = url
	}
}

// WithUserID 当前登录用户
func WithUserID(uid uint64) Option {
	return func(c *Config) {
		c.UserID = uid
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Config) {
		c.HTTPClient = hc
	}
}

// WithPushChannel 注入推送通道；Engine 不负责关闭外部传入的通道
func WithPushChannel(ch push.Channel) Option {
	return func(c *Config) {
		c.Push = ch
	}
}

// WithRedis 最近搜索持久化；未注入推送通道时也用于订阅推送
func WithRedis(rdb *redis.Client) Option {
	return func(c *Config) {
		c.RDB = rdb
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithAlertSink 全局错误提示出口，默认只写日志
func WithAlertSink(sink alert.Sink) Option {
	return func(c *Config) {
		c.Alert = sink
	}
}

// WithPollInterval 未读数轮询间隔，默认 30s
func WithPollInterval(d time.Duration) Option {
	return func(c *Config) {
		c.PollInterval = d
	}
}

// WithPageSize 通知分页大小，默认 20
func WithPageSize(n int) Option {
	return func(c *Config) {
		c.PageSize = n
	}
}

// WithSearchDebounce 搜索输入防抖，默认 300ms
func WithSearchDebounce(d time.Duration) Option {
	return func(c *Config) {
		c.SearchDebounce = d
	}
}
