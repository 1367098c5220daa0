package service

import (
	"errors"
	"sync"

	"github.com/cydxin/social-sdk/alert"
	"github.com/cydxin/social-sdk/api"
	"github.com/cydxin/social-sdk/errs"
	"github.com/cydxin/social-sdk/push"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Service 基础依赖，各 store 内嵌使用
type Service struct {
	API    *api.Client
	Push   push.Channel // 可为空：不订阅推送
	Alert  alert.Sink
	Logger *zap.Logger
	UserID uint64
}

// ErrInFlight 同一资源的请求仍在进行中（只读请求去重时返回）
var ErrInFlight = errors.New("request already in flight")

func (s *Service) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

// fail 把错误交给全局提示出口；消息优先取服务端返回
func (s *Service) fail(op string, err error, fallback string) {
	msg := errs.UserMessage(err, fallback)
	s.logger().Warn("操作失败", zap.String("op", op), zap.String("message", msg), zap.Error(err))
	if s.Alert != nil {
		s.Alert.Alert(alert.Alert{Op: op, Message: msg, Err: err})
	}
}

// failGeneric 只展示通用文案（加载类操作）
func (s *Service) failGeneric(op string, err error, msg string) {
	s.logger().Warn("加载失败", zap.String("op", op), zap.Error(err))
	if s.Alert != nil {
		s.Alert.Alert(alert.Alert{Op: op, Message: msg, Err: err})
	}
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
	})
	return validate
}

// validateStruct 把 validator 的错误转换成 errs.KindValidation
func validateStruct(v any) error {
	if err := validatorInstance().Struct(v); err != nil {
		var ves validator.ValidationErrors
		if errors.As(err, &ves) && len(ves) > 0 {
			fe := ves[0]
			return &errs.AppError{Kind: errs.KindValidation, Message: fe.Namespace() + " 校验失败: " + fe.Tag(), Err: err}
		}
		return &errs.AppError{Kind: errs.KindValidation, Message: "参数错误", Err: err}
	}
	return nil
}
