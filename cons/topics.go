package cons

import (
	"fmt"
	"strconv"
	"strings"
)

// 推送主题
const (
	TopicNotificationPrefix      = "/topic/notification/"       // 完整通知
	TopicNotificationCountPrefix = "/topic/notification/count/" // 只携带未读数
)

// NotificationTopic 用户完整通知主题
func NotificationTopic(userID uint64) string {
	return fmt.Sprintf("%s%d", TopicNotificationPrefix, userID)
}

// NotificationCountTopic 用户未读数主题
func NotificationCountTopic(userID uint64) string {
	return fmt.Sprintf("%s%d", TopicNotificationCountPrefix, userID)
}

// TopicOwner 解析用户私有主题的所属用户；不是用户主题时 ok=false
func TopicOwner(topic string) (uint64, bool) {
	rest := ""
	switch {
	case strings.HasPrefix(topic, TopicNotificationCountPrefix):
		rest = strings.TrimPrefix(topic, TopicNotificationCountPrefix)
	case strings.HasPrefix(topic, TopicNotificationPrefix):
		rest = strings.TrimPrefix(topic, TopicNotificationPrefix)
	default:
		return 0, false
	}
	uid, err := strconv.ParseUint(rest, 10, 64)
	if err != nil || uid == 0 {
		return 0, false
	}
	return uid, true
}
