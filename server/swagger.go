package server

import (
	_ "github.com/cydxin/social-sdk/docs"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const defaultSwaggerPath = "/swagger/*any"

// RegisterSwagger 在 Gin 路由上注册 Swagger UI，不经过身份中间件。
// 默认路由：/swagger/*any
//
// 使用示例：
//
//	r := gin.Default()
//	server.RegisterSwagger(r, "")
//	srv.RegisterRoutes(r)
//
// 访问：http://localhost:6789/swagger/index.html
func RegisterSwagger(r gin.IRouter, path string) {
	if path == "" {
		path = defaultSwaggerPath
	}
	r.GET(path, ginSwagger.WrapHandler(swaggerFiles.Handler))
}

// WithSwagger Handler() 额外挂载 Swagger UI；path 为空时用 /swagger/*any
func WithSwagger(path string) Option {
	return func(s *Server) {
		if path == "" {
			path = defaultSwaggerPath
		}
		s.swaggerPath = path
	}
}
