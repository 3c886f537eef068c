package handler

import (
	"github.com/bitfantasy/potrack/internal/service"
	"github.com/gin-gonic/gin"
)

// RequestHandler 采购申请处理器
type RequestHandler struct {
	svc *service.RequestService
}

func NewRequestHandler(svc *service.RequestService) *RequestHandler {
	return &RequestHandler{svc: svc}
}

// ListRequests 申请列表（角色可见范围内）
// GET /api/v1/procurement-requests?status=xxx&search=xxx
func (h *RequestHandler) ListRequests(c *gin.Context) {
	page, pageSize := GetPagination(c)
	items, total, err := h.svc.ListRequests(c.Request.Context(), GetActor(c),
		page, pageSize, c.Query("status"), c.Query("search"))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, listOf(items, page, pageSize, total))
}

// GetRequest 申请详情
// GET /api/v1/procurement-requests/:id
func (h *RequestHandler) GetRequest(c *gin.Context) {
	req, err := h.svc.GetRequest(c.Request.Context(), GetActor(c), c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, req)
}

// CreateRequest 创建申请
// POST /api/v1/procurement-requests
func (h *RequestHandler) CreateRequest(c *gin.Context) {
	var input service.CreateRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	req, err := h.svc.CreateRequest(c.Request.Context(), GetActor(c), input)
	if err != nil {
		RespondError(c, err)
		return
	}
	Created(c, req)
}

// AdminReview 管理员审批
// PATCH /api/v1/procurement-requests/:id/admin-review
func (h *RequestHandler) AdminReview(c *gin.Context) {
	var input service.AdminReviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	req, err := h.svc.AdminReview(c.Request.Context(), GetActor(c), c.Param("id"), input)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, req)
}

// SubmitVendorOptions 提交/替换供应商方案
// POST /api/v1/procurement-requests/:id/vendor-options
func (h *RequestHandler) SubmitVendorOptions(c *gin.Context) {
	var input struct {
		Options []service.VendorOptionInput `json:"options" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	req, err := h.svc.SubmitVendorOptions(c.Request.Context(), GetActor(c), c.Param("id"), input.Options)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, req)
}

// SelectVendor 选定供应商并生成订单
// POST /api/v1/procurement-requests/:id/select-vendor
func (h *RequestHandler) SelectVendor(c *gin.Context) {
	var input service.SelectVendorInput
	if err := c.ShouldBindJSON(&input); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	po, err := h.svc.SelectVendor(c.Request.Context(), GetActor(c), c.Param("id"), input)
	if err != nil {
		RespondError(c, err)
		return
	}
	Created(c, po)
}
