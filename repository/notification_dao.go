package repository

import (
	"time"

	"github.com/cydxin/social-sdk/models"
	"gorm.io/gorm"
)

// NotificationDAO 用户通知的存取
type NotificationDAO struct {
	db *gorm.DB
}

func NewNotificationDAO(db *gorm.DB) *NotificationDAO {
	return &NotificationDAO{db: db}
}

func (dao *NotificationDAO) WithDB(db *gorm.DB) *NotificationDAO {
	if db == nil {
		return dao
	}
	return &NotificationDAO{db: db}
}

func (dao *NotificationDAO) Create(n *models.Notification) error {
	return dao.db.Create(n).Error
}

// ListPage 分页查询，page 从 1 开始，最新在前。返回当页数据与总条数。
func (dao *NotificationDAO) ListPage(userID uint64, page, size int) ([]models.Notification, int64, error) {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}

	var total int64
	if err := dao.db.Model(&models.Notification{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	list := make([]models.Notification, 0, size)
	if total == 0 {
		return list, 0, nil
	}
	err := dao.db.Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(size).
		Offset((page - 1) * size).
		Find(&list).Error
	return list, total, err
}

// CountUnread 未读数
func (dao *NotificationDAO) CountUnread(userID uint64) (int64, error) {
	var n int64
	err := dao.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&n).Error
	return n, err
}

// MarkRead 标记已读；返回是否真的从未读变成已读（重复标记幂等）
func (dao *NotificationDAO) MarkRead(id, userID uint64, now time.Time) (bool, error) {
	res := dao.db.Model(&models.Notification{}).
		Where("id = ? AND user_id = ? AND is_read = ?", id, userID, false).
		Updates(map[string]any{"is_read": true, "read_at": now})
	return res.RowsAffected > 0, res.Error
}

// Delete 删除一条属于 userID 的通知，返回影响行数
func (dao *NotificationDAO) Delete(id, userID uint64) (int64, error) {
	res := dao.db.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Notification{})
	return res.RowsAffected, res.Error
}

// DeleteAll 清空用户全部通知
func (dao *NotificationDAO) DeleteAll(userID uint64) error {
	return dao.db.Where("user_id = ?", userID).Delete(&models.Notification{}).Error
}
