package repository

import (
	"context"
	"errors"

	"github.com/bitfantasy/potrack/internal/entity"
	"gorm.io/gorm"
)

// UserRepository 用户仓库
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindAll 组织内用户列表
func (r *UserRepository) FindAll(ctx context.Context, orgID string) ([]entity.User, error) {
	users := make([]entity.User, 0)
	err := r.db.WithContext(ctx).
		Where("org_id = ?", orgID).
		Order("created_at ASC").
		Find(&users).Error
	return users, err
}

// FindByID 组织内根据ID查找用户
func (r *UserRepository) FindByID(ctx context.Context, orgID, id string) (*entity.User, error) {
	var user entity.User
	err := r.db.WithContext(ctx).
		Where("id = ? AND org_id = ?", id, orgID).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindByEmail 根据邮箱查找用户（登录用，跨组织唯一）
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var user entity.User
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// Create 创建用户
func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// Update 保存用户
func (r *UserRepository) Update(ctx context.Context, tx *gorm.DB, user *entity.User) error {
	return tx.WithContext(ctx).Save(user).Error
}
