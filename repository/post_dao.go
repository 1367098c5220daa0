package repository

import (
	"errors"

	"github.com/cydxin/social-sdk/models"
	"gorm.io/gorm"
)

type PostDAO struct {
	db *gorm.DB
}

func NewPostDAO(db *gorm.DB) *PostDAO {
	return &PostDAO{db: db}
}

func (dao *PostDAO) WithDB(db *gorm.DB) *PostDAO {
	if db == nil {
		return dao
	}
	return &PostDAO{db: db}
}

func (dao *PostDAO) Create(p *models.Post) error {
	return dao.db.Create(p).Error
}

// GetByID 不存在时返回 (nil, nil)
func (dao *PostDAO) GetByID(id uint64) (*models.Post, error) {
	var p models.Post
	err := dao.db.Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
