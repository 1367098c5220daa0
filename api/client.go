package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cydxin/social-sdk/errs"
	"github.com/cydxin/social-sdk/response"
	"go.uber.org/zap"
)

const (
	// HeaderUserID 调用者身份（鉴权不在本 SDK 范围内）
	HeaderUserID = "X-User-ID"

	defaultTimeout = 15 * time.Second
	maxBodySize    = 4 << 20
)

// Config REST 客户端配置
type Config struct {
	BaseURL    string       // 例如 http://localhost:6789/api/v1
	UserID     uint64       // 当前登录用户
	HTTPClient *http.Client // 为空时使用带 15s 超时的默认 client
	Logger     *zap.Logger
}

// Client 后端 REST 接口的薄封装。
// 不做重试，超时交给 http.Client。
type Client struct {
	baseURL string
	userID  uint64
	http    *http.Client
	logger  *zap.Logger
}

func NewClient(cfg Config) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: defaultTimeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		userID:  cfg.UserID,
		http:    hc,
		logger:  logger,
	}
}

// UserID 当前用户
func (c *Client) UserID() uint64 { return c.userID }

func (c *Client) url(path string) string {
	return c.baseURL + path
}

// do 发起请求并解析统一响应结构，out 为 nil 时忽略 data。
// 错误分类：传输失败 -> errs.KindNetwork；非 2xx 或 code != 0 -> errs.KindServer。
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.url(path), body)
	if err != nil {
		return fmt.Errorf("build request %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.userID != 0 {
		req.Header.Set(HeaderUserID, strconv.FormatUint(c.userID, 10))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("请求失败", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return errs.Network(err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return errs.Network(err)
	}

	var env response.Envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		code := resp.StatusCode
		msg := ""
		if decodeErr == nil {
			if env.Code != 0 {
				code = env.Code
			}
			msg = env.Msg
		}
		e := errs.Server(code, msg)
		e.Forbidden = resp.StatusCode == http.StatusForbidden || code == response.CodePermissionDeny
		return e
	}
	if decodeErr != nil {
		return &errs.AppError{Kind: errs.KindServer, Err: fmt.Errorf("decode response: %w", decodeErr)}
	}
	if env.Code != response.CodeSuccess {
		e := errs.Server(env.Code, env.Msg)
		e.Forbidden = env.Code == response.CodePermissionDeny
		return e
	}
	if out == nil || len(env.Data) == 0 || bytes.Equal(env.Data, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &errs.AppError{Kind: errs.KindServer, Err: fmt.Errorf("decode data: %w", err)}
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, "", out)
}
