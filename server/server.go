package server

import (
	"context"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/cydxin/social-sdk/middleware"
	"github.com/cydxin/social-sdk/models"
	"github.com/cydxin/social-sdk/push"
	"github.com/cydxin/social-sdk/repository"
	"github.com/cydxin/social-sdk/response"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultUploadDir = "uploads/comment"

// Server 参考后端：REST 接口 + /ws 主题推送。
// 身份只认 X-User-ID（或 ws 的 uid 参数），不做鉴权。
type Server struct {
	db *gorm.DB

	users         *repository.UserDAO
	posts         *repository.PostDAO
	comments      *repository.CommentDAO
	reactions     *repository.ReactionDAO
	notifications *repository.NotificationDAO
	friendships   *repository.FriendshipDAO

	Hub      *WsHub
	notifier *Notifier
	rdb      *redis.Client

	uploadDir       string
	uploadURLPrefix string
	swaggerPath     string
	logger          *zap.Logger
}

type Option func(*Server)

// WithRedis 推送同时发布到 Redis，供多实例或直接订阅 Redis 的客户端使用
func WithRedis(rdb *redis.Client) Option {
	return func(s *Server) {
		s.rdb = rdb
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithUploadDir 评论图片的落盘目录与对外 URL 前缀
func WithUploadDir(dir, urlPrefix string) Option {
	return func(s *Server) {
		if strings.TrimSpace(dir) != "" {
			s.uploadDir = dir
		}
		if strings.TrimSpace(urlPrefix) != "" {
			s.uploadURLPrefix = urlPrefix
		}
	}
}

// New 创建参考后端；调用方负责 Start/Stop 推送 hub
func New(db *gorm.DB, opts ...Option) *Server {
	s := &Server{
		db:              db,
		users:           repository.NewUserDAO(db),
		posts:           repository.NewPostDAO(db),
		comments:        repository.NewCommentDAO(db),
		reactions:       repository.NewReactionDAO(db),
		notifications:   repository.NewNotificationDAO(db),
		friendships:     repository.NewFriendshipDAO(db),
		uploadDir:       defaultUploadDir,
		uploadURLPrefix: "/" + defaultUploadDir,
		logger:          zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.Hub = NewWsHub(s.logger.Named("ws"))
	pubs := fanout{s.Hub}
	if s.rdb != nil {
		pubs = append(pubs, redisPublisher{s.rdb})
	}
	s.notifier = NewNotifier(s.notifications, pubs, s.logger.Named("notify"))
	return s
}

// Start 启动推送 hub
func (s *Server) Start() {
	go s.Hub.Run()
}

// Stop 断开所有 ws 连接
func (s *Server) Stop() {
	s.Hub.Stop()
}

func (s *Server) AutoMigrate() error {
	s.logger.Info("AutoMigrate...")
	return s.db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.Reaction{},
		&models.Notification{},
		&models.Friendship{},
	)
}

// RegisterRoutes 挂载全部接口
func (s *Server) RegisterRoutes(r gin.IRouter) {
	g := r.Group("", middleware.GinIdentityMiddleware(nil))

	g.GET("/ws", s.GinHandleWs)

	g.POST("/reaction/:postId", s.GinHandleToggleReaction)
	g.GET("/reaction/:postId", s.GinHandleReactionDetail)
	g.GET("/reaction/check/:postId", s.GinHandleCheckReaction)

	g.POST("/comment", s.GinHandleAddComment)
	g.GET("/comment/:postId", s.GinHandleListComments)
	g.GET("/comment/replies/:parentId", s.GinHandleListReplies)
	g.DELETE("/comment/:commentId", s.GinHandleDeleteComment)

	g.GET("/notification/:userId", s.GinHandleListNotifications)
	g.GET("/notification/count/:userId", s.GinHandleUnreadCount)
	g.PUT("/notification/:notificationId", s.GinHandleMarkRead)
	g.DELETE("/notification/:notificationId", s.GinHandleDeleteNotification)
	g.DELETE("/notification/all/:userId", s.GinHandleDeleteAllNotifications)

	g.GET("/friend/status/:userId", s.GinHandleFriendStatus)
	g.POST("/friend/request/:userId", s.GinHandleSendFriendRequest)
	g.DELETE("/friend/request/:userId", s.GinHandleCancelFriendRequest)
	g.POST("/friend/accept/:userId", s.GinHandleAcceptFriend)
	g.POST("/friend/reject/:userId", s.GinHandleRejectFriend)
	g.DELETE("/friend/:userId", s.GinHandleUnfriend)

	g.GET("/user/search", s.GinHandleSearchUsers)
}

// Handler 完整的 gin 引擎，带 panic 恢复、静态图片目录和可选的 Swagger UI
func (s *Server) Handler() *gin.Engine {
	r := gin.New()
	r.Use(s.recovery())
	r.Static(s.uploadURLPrefix, s.uploadDir)
	if s.swaggerPath != "" {
		RegisterSwagger(r, s.swaggerPath)
	}
	s.RegisterRoutes(r)
	return r
}

func (s *Server) recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("发生panic",
					zap.Any("error", r),
					zap.String("stack", string(debug.Stack())))
				c.AbortWithStatusJSON(http.StatusInternalServerError, response.Error(response.CodeInternalError, "系统内部错误"))
			}
		}()
		c.Next()
	}
}

// fanout 依次发布到多个通道，返回第一个错误
type fanout []push.Publisher

func (f fanout) Publish(ctx context.Context, topic string, payload []byte) error {
	var first error
	for _, p := range f {
		if err := p.Publish(ctx, topic, payload); err != nil && first == nil {
			first = err
		}
	}
	return first
}

type redisPublisher struct {
	rdb *redis.Client
}

func (p redisPublisher) Publish(ctx context.Context, topic string, payload []byte) error {
	return p.rdb.Publish(ctx, topic, payload).Err()
}
