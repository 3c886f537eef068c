package handler

import (
	"strconv"

	"github.com/bitfantasy/potrack/internal/apperr"
	"github.com/bitfantasy/potrack/internal/entity"
	"github.com/bitfantasy/potrack/internal/service"
	"github.com/gin-gonic/gin"
)

// Handlers 处理器集合
type Handlers struct {
	Auth      *AuthHandler
	Request   *RequestHandler
	PO        *POHandler
	Dashboard *DashboardHandler
	User      *UserHandler
}

// NewHandlers 创建处理器集合
func NewHandlers(
	authSvc *service.AuthService,
	requestSvc *service.RequestService,
	poSvc *service.POService,
	dashboardSvc *service.DashboardService,
	userSvc *service.UserService,
) *Handlers {
	return &Handlers{
		Auth:      NewAuthHandler(authSvc),
		Request:   NewRequestHandler(requestSvc),
		PO:        NewPOHandler(poSvc),
		Dashboard: NewDashboardHandler(dashboardSvc),
		User:      NewUserHandler(userSvc),
	}
}

// === 响应辅助函数 ===

type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type ListResponse struct {
	Items      interface{} `json:"items"`
	Pagination *Pagination `json:"pagination"`
}

type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

func Forbidden(c *gin.Context, message string) {
	Error(c, 40300, message)
}

func NotFound(c *gin.Context, message string) {
	Error(c, 40400, message)
}

func Conflict(c *gin.Context, message string) {
	Error(c, 40900, message)
}

func InternalError(c *gin.Context, message string) {
	Error(c, 50000, message)
}

// RespondError 应用错误按类别映射HTTP状态
func RespondError(c *gin.Context, err error) {
	message := apperr.MessageOf(err)
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		BadRequest(c, message)
	case apperr.KindAuthorization:
		Forbidden(c, message)
	case apperr.KindNotFound:
		NotFound(c, message)
	case apperr.KindStateConflict, apperr.KindIntegrity:
		Conflict(c, message)
	default:
		InternalError(c, message)
	}
}

// GetActor 从认证中间件注入的上下文取操作者
func GetActor(c *gin.Context) entity.Actor {
	actor := entity.Actor{}
	if v, ok := c.Get("user_id"); ok {
		actor.UserID, _ = v.(string)
	}
	if v, ok := c.Get("org_id"); ok {
		actor.OrgID, _ = v.(string)
	}
	if v, ok := c.Get("role"); ok {
		actor.Role, _ = v.(string)
	}
	return actor
}

func GetPagination(c *gin.Context) (page, pageSize int) {
	page = 1
	pageSize = 20

	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}

	if ps := c.Query("page_size"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
			pageSize = v
		}
	}

	return page, pageSize
}

func listOf(items interface{}, page, pageSize int, total int64) ListResponse {
	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}
	return ListResponse{
		Items: items,
		Pagination: &Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      int(total),
			TotalPages: totalPages,
		},
	}
}
