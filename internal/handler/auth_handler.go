package handler

import (
	"github.com/bitfantasy/potrack/internal/service"
	"github.com/gin-gonic/gin"
)

// AuthHandler 登录处理器
type AuthHandler struct {
	svc *service.AuthService
}

func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Login 登录
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	result, err := h.svc.Login(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		Error(c, 40100, "invalid email or password")
		return
	}
	Success(c, result)
}
