package repository

import (
	"github.com/cydxin/social-sdk/models"
	"gorm.io/gorm"
)

type ReactionDAO struct {
	db *gorm.DB
}

func NewReactionDAO(db *gorm.DB) *ReactionDAO {
	return &ReactionDAO{db: db}
}

func (dao *ReactionDAO) WithDB(db *gorm.DB) *ReactionDAO {
	if db == nil {
		return dao
	}
	return &ReactionDAO{db: db}
}

// Exists 用户是否已点赞
func (dao *ReactionDAO) Exists(postID, userID uint64) (bool, error) {
	var n int64
	err := dao.db.Model(&models.Reaction{}).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Count(&n).Error
	return n > 0, err
}

func (dao *ReactionDAO) Create(postID, userID uint64) error {
	return dao.db.Create(&models.Reaction{PostID: postID, UserID: userID}).Error
}

// Delete 取消点赞，返回影响行数
func (dao *ReactionDAO) Delete(postID, userID uint64) (int64, error) {
	res := dao.db.Where("post_id = ? AND user_id = ?", postID, userID).Delete(&models.Reaction{})
	return res.RowsAffected, res.Error
}

// ListUsers 点赞用户，按点赞时间倒序
func (dao *ReactionDAO) ListUsers(postID uint64) ([]models.UserBrief, error) {
	out := make([]models.UserBrief, 0)
	err := dao.db.Table(models.Reaction{}.TableName()+" AS r").
		Select("u.id, u.username, u.nickname, u.avatar").
		Joins("JOIN "+models.User{}.TableName()+" AS u ON u.id = r.user_id AND u.deleted_at IS NULL").
		Where("r.post_id = ?", postID).
		Order("r.created_at DESC").
		Scan(&out).Error
	return out, err
}

// Count 帖子点赞总数
func (dao *ReactionDAO) Count(postID uint64) (int64, error) {
	var n int64
	err := dao.db.Model(&models.Reaction{}).Where("post_id = ?", postID).Count(&n).Error
	return n, err
}
