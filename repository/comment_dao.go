package repository

import (
	"errors"

	"github.com/cydxin/social-sdk/models"
	"gorm.io/gorm"
)

// CommentDAO 封装 Comment 相关的数据库操作
//
// 约定：
// - 只做数据访问，权限判断与通知投递由 server 层完成。
// - 事务边界由调用方控制；如需在事务中执行，请使用 WithDB(tx)。
type CommentDAO struct {
	db *gorm.DB
}

func NewCommentDAO(db *gorm.DB) *CommentDAO {
	return &CommentDAO{db: db}
}

// WithDB 用于在事务（tx）中复用 DAO
func (dao *CommentDAO) WithDB(db *gorm.DB) *CommentDAO {
	if db == nil {
		return dao
	}
	return &CommentDAO{db: db}
}

func (dao *CommentDAO) Create(c *models.Comment) error {
	return dao.db.Create(c).Error
}

// GetByID 不存在时返回 (nil, nil)
func (dao *CommentDAO) GetByID(id uint64) (*models.Comment, error) {
	var c models.Comment
	err := dao.db.Where("id = ?", id).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListTopLevel 帖子的顶级评论，最新在前
func (dao *CommentDAO) ListTopLevel(postID uint64) ([]models.Comment, error) {
	list := make([]models.Comment, 0)
	err := dao.db.Where("post_id = ? AND parent_id IS NULL", postID).
		Order("created_at DESC, id DESC").
		Find(&list).Error
	return list, err
}

// ListReplies 某条顶级评论下的回复，按时间正序
func (dao *CommentDAO) ListReplies(parentID uint64) ([]models.Comment, error) {
	list := make([]models.Comment, 0)
	err := dao.db.Where("parent_id = ?", parentID).
		Order("created_at ASC, id ASC").
		Find(&list).Error
	return list, err
}

// AdjustRepliesCount 原子增减回复数，最小为 0
func (dao *CommentDAO) AdjustRepliesCount(id uint64, delta int) error {
	return dao.db.Model(&models.Comment{}).
		Where("id = ?", id).
		UpdateColumn("replies_count", gorm.Expr("GREATEST(replies_count + ?, 0)", delta)).Error
}

// Delete 软删除评论；顶级评论连同其回复一起删除
func (dao *CommentDAO) Delete(c *models.Comment) error {
	if c.IsTopLevel() {
		if err := dao.db.Where("parent_id = ?", c.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
	}
	return dao.db.Where("id = ?", c.ID).Delete(&models.Comment{}).Error
}
