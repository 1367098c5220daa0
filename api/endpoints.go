package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"

	"github.com/cydxin/social-sdk/models"
	"github.com/cydxin/social-sdk/push"
)

// -------------------- 点赞 --------------------

// ToggleReaction POST /reaction/{postId}，返回值无意义，新状态由客户端推断
func (c *Client) ToggleReaction(ctx context.Context, postID uint64) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/reaction/%d", postID), nil, "", nil)
}

// ReactionDetail GET /reaction/{postId} 点赞用户列表
func (c *Client) ReactionDetail(ctx context.Context, postID uint64) ([]models.UserBrief, error) {
	var users []models.UserBrief
	if err := c.getJSON(ctx, fmt.Sprintf("/reaction/%d", postID), &users); err != nil {
		return nil, err
	}
	return users, nil
}

// CheckReaction GET /reaction/check/{postId} 当前用户是否已点赞
func (c *Client) CheckReaction(ctx context.Context, postID uint64) (bool, error) {
	var loved bool
	err := c.getJSON(ctx, fmt.Sprintf("/reaction/check/%d", postID), &loved)
	return loved, err
}

// -------------------- 评论 --------------------

// Attachment 随评论上传的图片
type Attachment struct {
	Filename    string `validate:"required"`
	ContentType string
	Data        []byte `validate:"required"`
}

// AddCommentReq POST /comment 的 multipart 字段
type AddCommentReq struct {
	PostID     uint64
	Content    string
	MentionIDs []uint64
	ParentID   *uint64
	Images     []Attachment
}

// AddComment POST /comment（multipart: postId, content, mentionIds, parentId?, images?）
func (c *Client) AddComment(ctx context.Context, req AddCommentReq) (*models.Comment, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := [][2]string{
		{"postId", strconv.FormatUint(req.PostID, 10)},
		{"content", req.Content},
	}
	for _, id := range req.MentionIDs {
		fields = append(fields, [2]string{"mentionIds", strconv.FormatUint(id, 10)})
	}
	if req.ParentID != nil {
		fields = append(fields, [2]string{"parentId", strconv.FormatUint(*req.ParentID, 10)})
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, err
		}
	}
	for _, img := range req.Images {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="images"; filename=%q`, img.Filename))
		ct := img.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, err
		}
		if _, err := part.Write(img.Data); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	var created models.Comment
	if err := c.do(ctx, http.MethodPost, "/comment", &buf, w.FormDataContentType(), &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// ListComments GET /comment/{postId} 顶级评论
func (c *Client) ListComments(ctx context.Context, postID uint64) ([]models.Comment, error) {
	var list []models.Comment
	if err := c.getJSON(ctx, fmt.Sprintf("/comment/%d", postID), &list); err != nil {
		return nil, err
	}
	return list, nil
}

// ListReplies GET /comment/replies/{parentId}
func (c *Client) ListReplies(ctx context.Context, parentID uint64) ([]models.Comment, error) {
	var list []models.Comment
	if err := c.getJSON(ctx, fmt.Sprintf("/comment/replies/%d", parentID), &list); err != nil {
		return nil, err
	}
	return list, nil
}

// DeleteComment DELETE /comment/{commentId}
func (c *Client) DeleteComment(ctx context.Context, commentID uint64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/comment/%d", commentID), nil, "", nil)
}

// -------------------- 通知 --------------------

// ListNotifications GET /notification/{userId}?page&size，页码从 1 开始
func (c *Client) ListNotifications(ctx context.Context, userID uint64, page, size int) (*models.NotificationPage, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))
	var p models.NotificationPage
	if err := c.getJSON(ctx, fmt.Sprintf("/notification/%d?%s", userID, q.Encode()), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UnreadCount GET /notification/count/{userId}
// data 的形态与未读数推送一致（数字或 {count}），统一走 push.ParseCount。
func (c *Client) UnreadCount(ctx context.Context, userID uint64) (int64, error) {
	var raw json.RawMessage
	if err := c.getJSON(ctx, fmt.Sprintf("/notification/count/%d", userID), &raw); err != nil {
		return 0, err
	}
	p, err := push.ParseCount(raw)
	if err != nil {
		return 0, err
	}
	return p.Count, nil
}

// MarkNotificationRead PUT /notification/{notificationId}
func (c *Client) MarkNotificationRead(ctx context.Context, id uint64) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/notification/%d", id), nil, "", nil)
}

// DeleteNotification DELETE /notification/{id}
func (c *Client) DeleteNotification(ctx context.Context, id uint64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/notification/%d", id), nil, "", nil)
}

// DeleteAllNotifications DELETE /notification/all/{userId}
func (c *Client) DeleteAllNotifications(ctx context.Context, userID uint64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/notification/all/%d", userID), nil, "", nil)
}

// -------------------- 好友 --------------------

type friendStatusResp struct {
	Status models.FriendStatus `json:"status"`
}

// FriendStatus GET /friend/status/{userId}
func (c *Client) FriendStatus(ctx context.Context, peerID uint64) (models.FriendStatus, error) {
	var r friendStatusResp
	if err := c.getJSON(ctx, fmt.Sprintf("/friend/status/%d", peerID), &r); err != nil {
		return "", err
	}
	if !r.Status.Valid() {
		return "", fmt.Errorf("unknown friend status %q", r.Status)
	}
	return r.Status, nil
}

// SendFriendRequest POST /friend/request/{userId}
func (c *Client) SendFriendRequest(ctx context.Context, peerID uint64) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/friend/request/%d", peerID), nil, "", nil)
}

// CancelFriendRequest DELETE /friend/request/{userId}
func (c *Client) CancelFriendRequest(ctx context.Context, peerID uint64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/friend/request/%d", peerID), nil, "", nil)
}

// AcceptFriendRequest POST /friend/accept/{userId}
func (c *Client) AcceptFriendRequest(ctx context.Context, peerID uint64) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/friend/accept/%d", peerID), nil, "", nil)
}

// RejectFriendRequest POST /friend/reject/{userId}
func (c *Client) RejectFriendRequest(ctx context.Context, peerID uint64) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/friend/reject/%d", peerID), nil, "", nil)
}

// Unfriend DELETE /friend/{userId}
func (c *Client) Unfriend(ctx context.Context, peerID uint64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/friend/%d", peerID), nil, "", nil)
}

// -------------------- 用户搜索 --------------------

// SearchUsers GET /user/search?keyword=
func (c *Client) SearchUsers(ctx context.Context, keyword string) ([]models.UserBrief, error) {
	var users []models.UserBrief
	if err := c.getJSON(ctx, "/user/search?keyword="+url.QueryEscape(keyword), &users); err != nil {
		return nil, err
	}
	return users, nil
}
