package service

import (
	"context"
	"fmt"

	"github.com/bitfantasy/potrack/internal/apperr"
	"github.com/bitfantasy/potrack/internal/entity"
	"github.com/bitfantasy/potrack/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserService 组织内用户管理（仅Admin），每次变更连同审计日志一起提交
type UserService struct {
	userRepo  *repository.UserRepository
	auditRepo *repository.AuditLogRepository
	db        *gorm.DB
}

func NewUserService(repos *repository.Repositories, db *gorm.DB) *UserService {
	return &UserService{
		userRepo:  repos.User,
		auditRepo: repos.AuditLog,
		db:        db,
	}
}

// ListUsers 组织内用户列表
func (s *UserService) ListUsers(ctx context.Context, actor entity.Actor) ([]entity.User, error) {
	if !entity.CanPerform(actor.Role, entity.OpManageUsers) {
		return nil, apperr.Authorization("only Admin can manage users", nil)
	}
	users, err := s.userRepo.FindAll(ctx, actor.OrgID)
	if err != nil {
		return nil, apperr.Unexpected("failed to list users", err)
	}
	return users, nil
}

// ChangeRole 调整用户角色
func (s *UserService) ChangeRole(ctx context.Context, actor entity.Actor, userID, role string) (*entity.User, error) {
	if !entity.CanPerform(actor.Role, entity.OpManageUsers) {
		return nil, apperr.Authorization("only Admin can manage users", nil)
	}
	if !entity.IsValidRole(role) {
		return nil, apperr.Validation("unknown role", nil)
	}
	user, err := s.userRepo.FindByID(ctx, actor.OrgID, userID)
	if err != nil {
		return nil, wrapLookup(err, "user not found")
	}
	user.Role = role
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.userRepo.Update(ctx, tx, user); err != nil {
			return apperr.Unexpected("failed to update user", err)
		}
		s.auditRepo.Log(ctx, tx, actor.OrgID, actor.UserID, entity.ActionUpdateUser,
			"user", user.ID, fmt.Sprintf(`{"role":%q}`, role))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// SetActive 启用/停用用户，管理员不能停用自己
func (s *UserService) SetActive(ctx context.Context, actor entity.Actor, userID string, active bool) (*entity.User, error) {
	if !entity.CanPerform(actor.Role, entity.OpManageUsers) {
		return nil, apperr.Authorization("only Admin can manage users", nil)
	}
	if userID == actor.UserID && !active {
		return nil, apperr.Validation("you cannot deactivate your own account", nil)
	}
	user, err := s.userRepo.FindByID(ctx, actor.OrgID, userID)
	if err != nil {
		return nil, wrapLookup(err, "user not found")
	}
	user.IsActive = active
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.userRepo.Update(ctx, tx, user); err != nil {
			return apperr.Unexpected("failed to update user", err)
		}
		s.auditRepo.Log(ctx, tx, actor.OrgID, actor.UserID, entity.ActionUpdateUser,
			"user", user.ID, fmt.Sprintf(`{"is_active":%t}`, active))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// ResetPassword 重置用户密码（bcrypt，至少6位）
func (s *UserService) ResetPassword(ctx context.Context, actor entity.Actor, userID, password string) error {
	if !entity.CanPerform(actor.Role, entity.OpManageUsers) {
		return apperr.Authorization("only Admin can manage users", nil)
	}
	if len(password) < 6 {
		return apperr.Validation("password must be at least 6 characters", nil)
	}
	user, err := s.userRepo.FindByID(ctx, actor.OrgID, userID)
	if err != nil {
		return wrapLookup(err, "user not found")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return apperr.Unexpected("failed to hash password", err)
	}
	user.PasswordHash = string(hash)
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.userRepo.Update(ctx, tx, user); err != nil {
			return apperr.Unexpected("failed to update user", err)
		}
		s.auditRepo.Log(ctx, tx, actor.OrgID, actor.UserID, entity.ActionUpdateUser,
			"user", user.ID, `{"password_reset":true}`)
		return nil
	})
}
