package repository

import (
	"errors"
	"strings"

	"github.com/cydxin/social-sdk/models"
	"gorm.io/gorm"
)

type UserDAO struct {
	db *gorm.DB
}

func NewUserDAO(db *gorm.DB) *UserDAO {
	return &UserDAO{db: db}
}

func (dao *UserDAO) WithDB(db *gorm.DB) *UserDAO {
	if db == nil {
		return dao
	}
	return &UserDAO{db: db}
}

func (dao *UserDAO) Create(u *models.User) error {
	return dao.db.Create(u).Error
}

// GetByID 不存在时返回 (nil, nil)
func (dao *UserDAO) GetByID(id uint64) (*models.User, error) {
	var u models.User
	err := dao.db.Where("id = ?", id).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Search 按用户名/昵称模糊搜索；空关键字直接返回空列表
func (dao *UserDAO) Search(keyword string, limit int) ([]models.UserBrief, error) {
	out := make([]models.UserBrief, 0)
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return out, nil
	}
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	like := "%" + escapeLike(keyword) + "%"

	var users []models.User
	if err := dao.db.Where("username LIKE ? OR nickname LIKE ?", like, like).
		Order("id ASC").
		Limit(limit).
		Find(&users).Error; err != nil {
		return nil, err
	}
	for _, u := range users {
		out = append(out, u.Brief())
	}
	return out, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
