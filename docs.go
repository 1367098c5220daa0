// Package social_sdk 社交功能客户端 SDK：评论、点赞、通知、好友、用户搜索
//
// 一个 Engine 对应一个登录用户的会话：
//   - 会话级：未读数（推送 + 轮询）、通知列表、最近搜索
//   - 页面级：评论区、点赞按钮、好友关系按钮、搜索框，用完各自 Close
//
// 所有失败都会交给 alert.Sink；乐观更新失败时恢复到请求前的快照。
// 参考后端见 server 包，本地联调用 cmd/devserver。
//
// 以下为参考后端的 Swagger 信息，生成命令：
//
//	swag init -g docs.go -d ./,./server,./models,./response
//
// @title Social SDK API
// @version 1.0
// @description 评论、点赞、通知、好友、用户搜索的参考后端，SDK 的 api 包与之一一对应
// @description
// @description ## 身份
// @description 所有接口通过请求头 X-User-ID 识别调用方；/ws 也可用 ?uid= 传递
// @description
// @description ## 业务状态码说明
// @description | Code | 说明 |
// @description |------|------|
// @description | 0 | 成功 |
// @description | 10001 | 参数错误 |
// @description | 10002 | 用户不存在 |
// @description | 10003 | 资源不存在 |
// @description | 10004 | 未识别用户 |
// @description | 10005 | 权限不足 |
// @description | 10006 | 状态冲突 |
// @description | 99999 | 内部错误 |
// @description
// @description ## 响应格式
// @description ```json
// @description {"code": 0, "msg": "success", "data": {}}
// @description ```
//
// @termsOfService https://github.com/cydxin/social-sdk
//
// @contact.name API Support
// @contact.url https://github.com/cydxin/social-sdk/issues
//
// @license.name MIT
// @license.url https://opensource.org/licenses/MIT
//
// @BasePath /
//
// @securityDefinitions.apikey UserID
// @in header
// @name X-User-ID
// @description 调用方用户ID
package social_sdk
