package service

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/bitfantasy/potrack/internal/apperr"
	"github.com/bitfantasy/potrack/internal/entity"
	"github.com/bitfantasy/potrack/internal/identifier"
	"github.com/bitfantasy/potrack/internal/repository"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// POService 采购订单：直接创建、一次性审批、付款/收货状态机、台账导出
type POService struct {
	poRepo      *repository.PORepository
	requestRepo *repository.RequestRepository
	auditRepo   *repository.AuditLogRepository
	db          *gorm.DB
}

func NewPOService(repos *repository.Repositories, db *gorm.DB) *POService {
	return &POService{
		poRepo:      repos.PO,
		requestRepo: repos.Request,
		auditRepo:   repos.AuditLog,
		db:          db,
	}
}

// CreatePOItemInput 直接创建订单的行项输入
type CreatePOItemInput struct {
	ItemName  string  `json:"item_name" binding:"required"`
	Quantity  int     `json:"quantity" binding:"required"`
	UnitPrice float64 `json:"unit_price"`
}

// CreatePOInput 直接创建订单输入
type CreatePOInput struct {
	VendorName  string              `json:"vendor_name" binding:"required"`
	ContactInfo string              `json:"contact_info"`
	Notes       string              `json:"notes"`
	Items       []CreatePOItemInput `json:"items" binding:"required"`
}

// CreatePO 物流直接创建订单：status Pending，审批字段留空待部门负责人审批
func (s *POService) CreatePO(ctx context.Context, actor entity.Actor, input CreatePOInput) (*entity.PurchaseOrder, error) {
	if !entity.CanPerform(actor.Role, entity.OpCreatePO) {
		return nil, apperr.Authorization("only Logistics can create purchase orders", nil)
	}
	if strings.TrimSpace(input.VendorName) == "" {
		return nil, apperr.Validation("vendor name is required", nil)
	}
	if len(input.Items) == 0 {
		return nil, apperr.Validation("at least one item is required", nil)
	}

	po := &entity.PurchaseOrder{
		ID:             uuid.New().String()[:32],
		OrgID:          actor.OrgID,
		PONumber:       identifier.NewPONumber(actor.OrgID),
		Status:         entity.POStatusPending,
		VendorName:     strings.TrimSpace(input.VendorName),
		ContactInfo:    input.ContactInfo,
		Notes:          input.Notes,
		PaymentStatus:  entity.PaymentStatusNotPaid,
		DeliveryStatus: entity.DeliveryStatusNotReceived,
		CreatedBy:      actor.UserID,
	}
	var total float64
	for i, item := range input.Items {
		if strings.TrimSpace(item.ItemName) == "" {
			return nil, apperr.Validation(fmt.Sprintf("item %d: name is required", i+1), nil)
		}
		if item.Quantity < 1 {
			return nil, apperr.Validation(fmt.Sprintf("item %d: quantity must be at least 1", i+1), nil)
		}
		if item.UnitPrice < 0 || math.IsNaN(item.UnitPrice) || math.IsInf(item.UnitPrice, 0) {
			return nil, apperr.Validation(fmt.Sprintf("item %d: unit price must be a non-negative number", i+1), nil)
		}
		lineTotal := item.UnitPrice * float64(item.Quantity)
		total += lineTotal
		po.Items = append(po.Items, entity.POItem{
			ID:        uuid.New().String()[:32],
			POID:      po.ID,
			ItemName:  strings.TrimSpace(item.ItemName),
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			LineTotal: lineTotal,
			SortOrder: i,
		})
	}
	po.TotalAmount = total

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.poRepo.Create(ctx, tx, po); err != nil {
			return apperr.Unexpected("failed to create purchase order", err)
		}
		s.auditRepo.Log(ctx, tx, actor.OrgID, actor.UserID, entity.ActionCreatePO,
			"purchase_order", po.ID, fmt.Sprintf(`{"po_number":%q}`, po.PONumber))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return po, nil
}

// ReviewPOInput 部门负责人审批输入
type ReviewPOInput struct {
	Status string `json:"status" binding:"required"`
	Notes  string `json:"notes"`
}

// ReviewPO 部门负责人一次性审批：仅Pending可审，结论Approved/Rejected/Hold
func (s *POService) ReviewPO(ctx context.Context, actor entity.Actor, poID string, input ReviewPOInput) (*entity.PurchaseOrder, error) {
	if !entity.CanPerform(actor.Role, entity.OpReviewPO) {
		return nil, apperr.Authorization("only Head of Department can review purchase orders", nil)
	}
	target := entity.POStatus(input.Status)
	if !entity.IsValidPOReview(target) {
		return nil, apperr.Validation("status must be Approved, Rejected or Hold", nil)
	}

	var po *entity.PurchaseOrder
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		po, err = s.poRepo.LockByID(ctx, tx, actor.OrgID, poID)
		if err != nil {
			return wrapLookup(err, "purchase order not found")
		}

		if entity.NormalizePOStatus(string(po.Status)) != entity.POStatusPending {
			return apperr.StateConflict(
				fmt.Sprintf("purchase order in status %q cannot be reviewed", po.Status), nil)
		}

		now := time.Now()
		po.Status = target
		po.ReviewedBy = &actor.UserID
		po.ReviewedAt = &now
		po.ReviewNotes = input.Notes
		if err := s.poRepo.Update(ctx, tx, po); err != nil {
			return apperr.Unexpected("failed to update purchase order", err)
		}

		s.auditRepo.Log(ctx, tx, actor.OrgID, actor.UserID, entity.ActionReviewPO,
			"purchase_order", po.ID, fmt.Sprintf(`{"status":%q}`, target))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return po, nil
}

// UpdateStatusInput 付款/收货状态更新输入
type UpdateStatusInput struct {
	Status string `json:"status" binding:"required"`
	Notes  string `json:"notes"`
}

// UpdatePayment 财务更新付款状态：仅限已批准订单，可自由改动，每次追加历史
func (s *POService) UpdatePayment(ctx context.Context, actor entity.Actor, poID string, input UpdateStatusInput) (*entity.PurchaseOrder, error) {
	if !entity.CanPerform(actor.Role, entity.OpUpdatePayment) {
		return nil, apperr.Authorization("only Finance can update payment status", nil)
	}
	target := entity.PaymentStatus(input.Status)
	if !entity.IsValidPaymentStatus(target) {
		return nil, apperr.Validation("invalid payment status", nil)
	}

	var po *entity.PurchaseOrder
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		po, err = s.poRepo.LockByID(ctx, tx, actor.OrgID, poID)
		if err != nil {
			return wrapLookup(err, "purchase order not found")
		}

		if entity.NormalizePOStatus(string(po.Status)) != entity.POStatusApproved {
			return apperr.StateConflict("payment can only be updated on an approved purchase order", nil)
		}

		old := po.PaymentStatus
		po.PaymentStatus = target
		if err := s.poRepo.Update(ctx, tx, po); err != nil {
			return apperr.Unexpected("failed to update purchase order", err)
		}
		update := &entity.PaymentUpdate{
			ID:        uuid.New().String()[:32],
			POID:      po.ID,
			OldStatus: string(old),
			NewStatus: string(target),
			Notes:     input.Notes,
			UpdatedBy: actor.UserID,
		}
		if err := s.poRepo.CreatePaymentUpdate(ctx, tx, update); err != nil {
			return apperr.Unexpected("failed to record payment update", err)
		}

		s.auditRepo.Log(ctx, tx, actor.OrgID, actor.UserID, entity.ActionUpdatePayment,
			"purchase_order", po.ID, fmt.Sprintf(`{"from":%q,"to":%q}`, old, target))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return po, nil
}

// UpdateDelivery 库房更新收货状态：已批准且至少部分付款后才可收货
func (s *POService) UpdateDelivery(ctx context.Context, actor entity.Actor, poID string, input UpdateStatusInput) (*entity.PurchaseOrder, error) {
	if !entity.CanPerform(actor.Role, entity.OpUpdateDelivery) {
		return nil, apperr.Authorization("only Stores can update delivery status", nil)
	}
	target := entity.DeliveryStatus(input.Status)
	if !entity.IsValidDeliveryStatus(target) {
		return nil, apperr.Validation("invalid delivery status", nil)
	}

	var po *entity.PurchaseOrder
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		po, err = s.poRepo.LockByID(ctx, tx, actor.OrgID, poID)
		if err != nil {
			return wrapLookup(err, "purchase order not found")
		}

		if entity.NormalizePOStatus(string(po.Status)) != entity.POStatusApproved {
			return apperr.StateConflict("delivery can only be updated on an approved purchase order", nil)
		}
		if po.PaymentStatus == entity.PaymentStatusNotPaid {
			return apperr.StateConflict("delivery cannot be updated before payment has started", nil)
		}

		old := entity.NormalizeDeliveryStatus(string(po.DeliveryStatus))
		po.DeliveryStatus = target
		if err := s.poRepo.Update(ctx, tx, po); err != nil {
			return apperr.Unexpected("failed to update purchase order", err)
		}
		update := &entity.DeliveryUpdate{
			ID:        uuid.New().String()[:32],
			POID:      po.ID,
			OldStatus: string(old),
			NewStatus: string(target),
			Notes:     input.Notes,
			UpdatedBy: actor.UserID,
		}
		if err := s.poRepo.CreateDeliveryUpdate(ctx, tx, update); err != nil {
			return apperr.Unexpected("failed to record delivery update", err)
		}

		s.auditRepo.Log(ctx, tx, actor.OrgID, actor.UserID, entity.ActionUpdateDelivery,
			"purchase_order", po.ID, fmt.Sprintf(`{"from":%q,"to":%q}`, old, target))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return po, nil
}

// ListPOs 角色可见范围内的订单列表
func (s *POService) ListPOs(ctx context.Context, actor entity.Actor, page, pageSize int, status, search string) ([]entity.PurchaseOrder, int64, error) {
	filter, ok := poScope(actor)
	if !ok {
		return nil, 0, apperr.Authorization("role cannot list purchase orders", nil)
	}
	filter.Status = status
	filter.Search = search
	items, total, err := s.poRepo.FindAll(ctx, actor.OrgID, page, pageSize, filter)
	if err != nil {
		return nil, 0, apperr.Unexpected("failed to list purchase orders", err)
	}
	return items, total, nil
}

// GetPO 可见性校验后的单个订单：组织外404，可见范围外403
func (s *POService) GetPO(ctx context.Context, actor entity.Actor, poID string) (*entity.PurchaseOrder, error) {
	po, err := s.poRepo.FindByID(ctx, actor.OrgID, poID)
	if err != nil {
		return nil, wrapLookup(err, "purchase order not found")
	}

	submittedByActor := false
	if actor.Role == entity.RoleLogistics && po.RequestID != nil {
		req, err := s.requestRepo.FindByID(ctx, actor.OrgID, *po.RequestID)
		if err == nil && req.LogisticsSubmittedBy != nil && *req.LogisticsSubmittedBy == actor.UserID {
			submittedByActor = true
		}
	}
	if !poVisible(actor, po, submittedByActor) {
		return nil, apperr.Authorization("purchase order is outside your visibility", nil)
	}
	return po, nil
}

// GetPaymentHistory 付款变更历史
func (s *POService) GetPaymentHistory(ctx context.Context, actor entity.Actor, poID string) ([]entity.PaymentUpdate, error) {
	if _, err := s.GetPO(ctx, actor, poID); err != nil {
		return nil, err
	}
	updates, err := s.poRepo.FindPaymentUpdates(ctx, poID)
	if err != nil {
		return nil, apperr.Unexpected("failed to load payment history", err)
	}
	return updates, nil
}

// GetDeliveryHistory 收货变更历史
func (s *POService) GetDeliveryHistory(ctx context.Context, actor entity.Actor, poID string) ([]entity.DeliveryUpdate, error) {
	if _, err := s.GetPO(ctx, actor, poID); err != nil {
		return nil, err
	}
	updates, err := s.poRepo.FindDeliveryUpdates(ctx, poID)
	if err != nil {
		return nil, apperr.Unexpected("failed to load delivery history", err)
	}
	return updates, nil
}

// ExportPOs 导出可见订单台账为xlsx
func (s *POService) ExportPOs(ctx context.Context, actor entity.Actor) ([]byte, error) {
	if actor.Role != entity.RoleAdmin && actor.Role != entity.RoleHeadOfDepartment {
		return nil, apperr.Authorization("only Admin or Head of Department can export the register", nil)
	}
	filter, _ := poScope(actor)
	pos, _, err := s.poRepo.FindAll(ctx, actor.OrgID, 1, 10000, filter)
	if err != nil {
		return nil, apperr.Unexpected("failed to load purchase orders", err)
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := "Purchase Orders"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"PO Number", "Vendor", "Status", "Payment", "Delivery", "Total Amount", "Created At"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}
	for row, po := range pos {
		status, payment, delivery := po.NormalizedStatuses()
		values := []interface{}{
			po.PONumber,
			po.VendorName,
			string(status),
			string(payment),
			string(delivery),
			po.TotalAmount,
			po.CreatedAt.Format("2006-01-02 15:04"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, apperr.Unexpected("failed to render export", err)
	}
	return buf.Bytes(), nil
}
