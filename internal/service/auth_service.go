package service

import (
	"context"
	"time"

	"github.com/bitfantasy/potrack/internal/apperr"
	"github.com/bitfantasy/potrack/internal/config"
	"github.com/bitfantasy/potrack/internal/entity"
	"github.com/bitfantasy/potrack/internal/middleware"
	"github.com/bitfantasy/potrack/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// AuthService 登录与令牌签发
type AuthService struct {
	userRepo *repository.UserRepository
	jwtCfg   config.JWTConfig
}

func NewAuthService(repos *repository.Repositories, jwtCfg config.JWTConfig) *AuthService {
	return &AuthService{
		userRepo: repos.User,
		jwtCfg:   jwtCfg,
	}
}

// LoginResult 登录结果
type LoginResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      entity.User `json:"user"`
}

// Login 邮箱+密码登录，停用账号不可登录
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, apperr.Authorization("invalid email or password", err)
	}
	if !user.IsActive {
		return nil, apperr.Authorization("account is deactivated", nil)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, apperr.Authorization("invalid email or password", nil)
	}

	now := time.Now()
	expiresAt := now.Add(s.jwtCfg.AccessTokenExpire)
	claims := middleware.JWTClaims{
		UserID: user.ID,
		Name:   user.FullName,
		Email:  user.Email,
		OrgID:  user.OrgID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.jwtCfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtCfg.Secret))
	if err != nil {
		return nil, apperr.Unexpected("failed to sign token", err)
	}

	return &LoginResult{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      *user,
	}, nil
}
