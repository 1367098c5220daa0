package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	social_sdk "github.com/cydxin/social-sdk"
	"github.com/cydxin/social-sdk/alert"
	"github.com/cydxin/social-sdk/config"
	"github.com/cydxin/social-sdk/cons"
	"github.com/cydxin/social-sdk/push"
	"github.com/cydxin/social-sdk/server"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "配置加载失败:", err)
		os.Exit(1)
	}
	logger := newLogger(cfg)
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("devserver 退出", zap.Error(err))
	}
}

func newLogger(cfg *config.Config) *zap.Logger {
	zcfg := zap.NewProductionConfig()
	if cfg.Debug {
		zcfg = zap.NewDevelopmentConfig()
	}
	if lvl, err := zapcore.ParseLevel(cfg.LogLevel); err == nil {
		zcfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	logger, err := zcfg.Build()
	if err != nil {
		return zap.NewExample()
	}
	return logger
}

func run(cfg *config.Config, logger *zap.Logger) error {
	// 1. 初始化数据库连接
	db, err := gorm.Open(mysql.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("数据库连接失败: %w", err)
	}

	opts := []server.Option{
		server.WithLogger(logger),
		server.WithUploadDir(cfg.UploadDir, cfg.UploadURLPrefix),
	}
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		defer func() { _ = rdb.Close() }()
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			return fmt.Errorf("redis 连接失败: %w", err)
		}
		opts = append(opts, server.WithRedis(rdb))
	}
	if cfg.Swagger {
		opts = append(opts, server.WithSwagger(""))
	}

	// 2. 参考后端
	srv := server.New(db, opts...)
	if cfg.AutoMigrate {
		if err := srv.AutoMigrate(); err != nil {
			return fmt.Errorf("AutoMigrate failed: %w", err)
		}
	}
	srv.Start()
	defer srv.Stop()

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	httpSrv := &http.Server{Addr: cfg.Addr, Handler: srv.Handler()}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("devserver 启动", zap.String("addr", cfg.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. 可选：以某个用户身份连上自己，打印收到的推送
	if cfg.DemoUserID != 0 {
		closeDemo, err := startDemoSession(ctx, cfg, rdb, logger.Named("demo"))
		if err != nil {
			logger.Warn("演示会话启动失败", zap.Error(err))
		} else {
			defer closeDemo()
		}
	}

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

func startDemoSession(ctx context.Context, cfg *config.Config, rdb *redis.Client, logger *zap.Logger) (func(), error) {
	base := "http://127.0.0.1" + cfg.Addr
	if !strings.HasPrefix(cfg.Addr, ":") {
		base = "http://" + cfg.Addr
	}

	var ch push.Channel
	var err error
	// 等 http 服务就绪
	for i := 0; i < 10; i++ {
		ch, err = push.DialWs(ctx, "ws"+strings.TrimPrefix(base, "http")+"/ws?uid="+strconv.FormatUint(cfg.DemoUserID, 10), nil, logger)
		if err == nil {
			break
		}
		time.Sleep(200 * time.Millisecond)
	}
	if err != nil {
		return nil, err
	}

	e, err := social_sdk.NewEngine(
		social_sdk.WithBaseURL(base),
		social_sdk.WithUserID(cfg.DemoUserID),
		social_sdk.WithPushChannel(ch),
		social_sdk.WithRedis(rdb),
		social_sdk.WithLogger(logger),
		social_sdk.WithPollInterval(cfg.PollInterval),
		social_sdk.WithAlertSink(alert.LogSink{Logger: logger}),
	)
	if err != nil {
		_ = ch.Close()
		return nil, err
	}
	if err := e.Start(ctx); err != nil {
		_ = e.Close()
		_ = ch.Close()
		return nil, err
	}
	if _, err := ch.Subscribe(cons.NotificationTopic(cfg.DemoUserID), func(topic string, payload []byte) {
		logger.Info("收到通知", zap.String("topic", topic), zap.ByteString("payload", payload), zap.Int64("unread", e.UnreadCounter.Count()))
	}); err != nil {
		logger.Warn("订阅失败", zap.Error(err))
	}
	return func() {
		_ = e.Close()
		_ = ch.Close()
	}, nil
}
