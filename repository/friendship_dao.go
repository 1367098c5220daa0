package repository

import (
	"errors"

	"github.com/cydxin/social-sdk/models"
	"gorm.io/gorm"
)

// FriendshipDAO 好友关系。一对用户只有一行，方向由 requester/addressee 表示。
type FriendshipDAO struct {
	db *gorm.DB
}

func NewFriendshipDAO(db *gorm.DB) *FriendshipDAO {
	return &FriendshipDAO{db: db}
}

func (dao *FriendshipDAO) WithDB(db *gorm.DB) *FriendshipDAO {
	if db == nil {
		return dao
	}
	return &FriendshipDAO{db: db}
}

// FindPair 查询两人之间的关系（不区分方向），不存在时返回 (nil, nil)
func (dao *FriendshipDAO) FindPair(a, b uint64) (*models.Friendship, error) {
	var f models.Friendship
	err := dao.db.Where("(requester_id = ? AND addressee_id = ?) OR (requester_id = ? AND addressee_id = ?)", a, b, b, a).
		First(&f).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (dao *FriendshipDAO) Create(f *models.Friendship) error {
	return dao.db.Create(f).Error
}

func (dao *FriendshipDAO) UpdateStatus(id uint64, status uint8) error {
	return dao.db.Model(&models.Friendship{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// DeleteByID 拒绝/取消/删除好友直接删行
func (dao *FriendshipDAO) DeleteByID(id uint64) error {
	return dao.db.Where("id = ?", id).Delete(&models.Friendship{}).Error
}
