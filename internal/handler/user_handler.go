package handler

import (
	"github.com/bitfantasy/potrack/internal/service"
	"github.com/gin-gonic/gin"
)

// UserHandler 用户管理处理器（仅Admin）
type UserHandler struct {
	svc *service.UserService
}

func NewUserHandler(svc *service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// ListUsers 组织用户列表
// GET /api/v1/users
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.svc.ListUsers(c.Request.Context(), GetActor(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, users)
}

// ChangeRole 调整用户角色
// PATCH /api/v1/users/:id/role
func (h *UserHandler) ChangeRole(c *gin.Context) {
	var input struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	user, err := h.svc.ChangeRole(c.Request.Context(), GetActor(c), c.Param("id"), input.Role)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, user)
}

// SetActive 启用/停用用户
// PATCH /api/v1/users/:id/status
func (h *UserHandler) SetActive(c *gin.Context) {
	var input struct {
		IsActive *bool `json:"is_active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	user, err := h.svc.SetActive(c.Request.Context(), GetActor(c), c.Param("id"), *input.IsActive)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, user)
}

// ResetPassword 重置用户密码
// PATCH /api/v1/users/:id/password
func (h *UserHandler) ResetPassword(c *gin.Context) {
	var input struct {
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	if err := h.svc.ResetPassword(c.Request.Context(), GetActor(c), c.Param("id"), input.Password); err != nil {
		RespondError(c, err)
		return
	}
	Success(c, nil)
}
