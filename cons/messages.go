package cons

// 兜底提示文案（服务端没有返回消息时使用）
const (
	MsgGenericError      = "操作失败，请稍后重试"
	MsgLoadCommentsError = "加载评论失败"
	MsgLoadRepliesError  = "加载回复失败"
	MsgSubmitError       = "评论发送失败"
	MsgDeleteError       = "删除失败"
	MsgReactionError     = "点赞失败"
	MsgNotificationError = "加载通知失败"
	MsgFriendError       = "好友操作失败"
	MsgSearchError       = "搜索失败"

	MsgEmptyComment  = "评论内容和图片不能同时为空"
	MsgUnknownParent = "回复的评论不存在"
	MsgInvalidAction = "当前状态不允许该操作"
	MsgBlocked       = "对方不可见"
)

// 通知文案（参考后端生成通知时使用）
const (
	NoticeCommented     = "%s 评论了你的帖子"
	NoticeReplied       = "%s 回复了你的评论"
	NoticeLoved         = "%s 赞了你的帖子"
	NoticeMentioned     = "%s 在评论中提到了你"
	NoticeFriendRequest = "%s 请求添加你为好友"
	NoticeFriendAccept  = "%s 接受了你的好友请求"
)
