package handler

import (
	"fmt"
	"time"

	"github.com/bitfantasy/potrack/internal/service"
	"github.com/gin-gonic/gin"
)

// POHandler 采购订单处理器
type POHandler struct {
	svc *service.POService
}

func NewPOHandler(svc *service.POService) *POHandler {
	return &POHandler{svc: svc}
}

// ListPOs 订单列表（角色可见范围内，状态已归一化）
// GET /api/v1/purchase-orders?status=xxx&search=xxx
func (h *POHandler) ListPOs(c *gin.Context) {
	page, pageSize := GetPagination(c)
	items, total, err := h.svc.ListPOs(c.Request.Context(), GetActor(c),
		page, pageSize, c.Query("status"), c.Query("search"))
	if err != nil {
		RespondError(c, err)
		return
	}
	for i := range items {
		items[i].Status, items[i].PaymentStatus, items[i].DeliveryStatus = items[i].NormalizedStatuses()
	}
	Success(c, listOf(items, page, pageSize, total))
}

// GetPO 订单详情
// GET /api/v1/purchase-orders/:id
func (h *POHandler) GetPO(c *gin.Context) {
	po, err := h.svc.GetPO(c.Request.Context(), GetActor(c), c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}
	po.Status, po.PaymentStatus, po.DeliveryStatus = po.NormalizedStatuses()
	Success(c, po)
}

// CreatePO 直接创建订单
// POST /api/v1/purchase-orders
func (h *POHandler) CreatePO(c *gin.Context) {
	var input service.CreatePOInput
	if err := c.ShouldBindJSON(&input); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	po, err := h.svc.CreatePO(c.Request.Context(), GetActor(c), input)
	if err != nil {
		RespondError(c, err)
		return
	}
	Created(c, po)
}

// ReviewPO 部门负责人审批订单
// PATCH /api/v1/purchase-orders/:id/review
func (h *POHandler) ReviewPO(c *gin.Context) {
	var input service.ReviewPOInput
	if err := c.ShouldBindJSON(&input); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	po, err := h.svc.ReviewPO(c.Request.Context(), GetActor(c), c.Param("id"), input)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, po)
}

// UpdatePayment 更新付款状态
// PATCH /api/v1/purchase-orders/:id/payment
func (h *POHandler) UpdatePayment(c *gin.Context) {
	var input service.UpdateStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	po, err := h.svc.UpdatePayment(c.Request.Context(), GetActor(c), c.Param("id"), input)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, po)
}

// UpdateDelivery 更新收货状态
// PATCH /api/v1/purchase-orders/:id/delivery
func (h *POHandler) UpdateDelivery(c *gin.Context) {
	var input service.UpdateStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	po, err := h.svc.UpdateDelivery(c.Request.Context(), GetActor(c), c.Param("id"), input)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, po)
}

// GetPaymentHistory 付款历史
// GET /api/v1/purchase-orders/:id/payment-history
func (h *POHandler) GetPaymentHistory(c *gin.Context) {
	updates, err := h.svc.GetPaymentHistory(c.Request.Context(), GetActor(c), c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, updates)
}

// GetDeliveryHistory 收货历史
// GET /api/v1/purchase-orders/:id/delivery-history
func (h *POHandler) GetDeliveryHistory(c *gin.Context) {
	updates, err := h.svc.GetDeliveryHistory(c.Request.Context(), GetActor(c), c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, updates)
}

// ExportPOs 导出订单台账xlsx
// GET /api/v1/purchase-orders/export
func (h *POHandler) ExportPOs(c *gin.Context) {
	data, err := h.svc.ExportPOs(c.Request.Context(), GetActor(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	filename := fmt.Sprintf("purchase-orders-%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(200, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
