package errs

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf_Wrapped(t *testing.T) {
	base := Server(10001, "内容不能为空")
	wrapped := fmt.Errorf("submit comment: %w", base)

	if KindOf(wrapped) != KindServer {
		t.Fatalf("expected server kind, got %s", KindOf(wrapped))
	}
	if !Is(wrapped, KindServer) {
		t.Fatalf("expected Is(server)")
	}
	if Is(nil, KindServer) {
		t.Fatalf("nil must not match")
	}
	if KindOf(errors.New("plain")) != KindUnknown {
		t.Fatalf("plain error should be unknown")
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(Server(1, "帖子不存在"), "操作失败"); got != "帖子不存在" {
		t.Fatalf("expected server message, got %q", got)
	}
	if got := UserMessage(Network(errors.New("dial tcp")), "操作失败"); got != "操作失败" {
		t.Fatalf("expected fallback, got %q", got)
	}
	if got := UserMessage(errors.New("x"), "操作失败"); got != "操作失败" {
		t.Fatalf("expected fallback, got %q", got)
	}
}

func TestIsAuthorization(t *testing.T) {
	forbidden := &AppError{Kind: KindServer, Code: 10005, Message: "无权删除", Forbidden: true}
	if !IsAuthorization(fmt.Errorf("delete: %w", forbidden)) {
		t.Fatalf("expected authorization error")
	}
	if !Is(forbidden, KindServer) {
		t.Fatalf("authorization error must stay a server error")
	}
	if IsAuthorization(Server(10003, "评论不存在")) || IsAuthorization(nil) {
		t.Fatalf("plain server error is not authorization")
	}
}
