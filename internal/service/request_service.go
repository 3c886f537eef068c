package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/bitfantasy/potrack/internal/apperr"
	"github.com/bitfantasy/potrack/internal/entity"
	"github.com/bitfantasy/potrack/internal/identifier"
	"github.com/bitfantasy/potrack/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RequestService 采购申请生命周期引擎。
// 所有状态迁移在单事务内完成，写路径先对申请行加锁再判守卫。
type RequestService struct {
	requestRepo *repository.RequestRepository
	poRepo      *repository.PORepository
	auditRepo   *repository.AuditLogRepository
	db          *gorm.DB
}

func NewRequestService(repos *repository.Repositories, db *gorm.DB) *RequestService {
	return &RequestService{
		requestRepo: repos.Request,
		poRepo:      repos.PO,
		auditRepo:   repos.AuditLog,
		db:          db,
	}
}

// CreateRequestItemInput 申请行项输入
type CreateRequestItemInput struct {
	ItemName      string `json:"item_name" binding:"required"`
	Quantity      int    `json:"quantity" binding:"required"`
	Justification string `json:"justification"`
}

// CreateRequestInput 创建申请输入
type CreateRequestInput struct {
	Title         string                   `json:"title" binding:"required"`
	OverallReason string                   `json:"overall_reason"`
	Items         []CreateRequestItemInput `json:"items" binding:"required"`
}

// CreateRequest 部门负责人创建采购申请
func (s *RequestService) CreateRequest(ctx context.Context, actor entity.Actor, input CreateRequestInput) (*entity.ProcurementRequest, error) {
	if !entity.CanPerform(actor.Role, entity.OpCreateRequest) {
		return nil, apperr.Authorization("only Head of Department can create requests", nil)
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, apperr.Validation("title is required", nil)
	}
	if len(input.Items) == 0 {
		return nil, apperr.Validation("at least one item is required", nil)
	}
	for i, item := range input.Items {
		if strings.TrimSpace(item.ItemName) == "" {
			return nil, apperr.Validation(fmt.Sprintf("item %d: name is required", i+1), nil)
		}
		if item.Quantity < 1 {
			return nil, apperr.Validation(fmt.Sprintf("item %d: quantity must be at least 1", i+1), nil)
		}
	}

	req := &entity.ProcurementRequest{
		ID:            uuid.New().String()[:32],
		OrgID:         actor.OrgID,
		RequestNumber: identifier.NewRequestNumber(actor.OrgID),
		Title:         strings.TrimSpace(input.Title),
		OverallReason: input.OverallReason,
		Status:        entity.RequestStatusPendingAdminReview,
		AdminDecision: entity.AdminDecisionPending,
		RequestedBy:   actor.UserID,
	}
	for i, item := range input.Items {
		req.Items = append(req.Items, entity.RequestItem{
			ID:            uuid.New().String()[:32],
			RequestID:     req.ID,
			ItemName:      strings.TrimSpace(item.ItemName),
			Quantity:      item.Quantity,
			Justification: item.Justification,
			SortOrder:     i,
		})
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(req).Error; err != nil {
			return apperr.Unexpected("failed to create request", err)
		}
		s.auditRepo.Log(ctx, tx, actor.OrgID, actor.UserID, entity.ActionCreateRequest,
			"procurement_request", req.ID, fmt.Sprintf(`{"request_number":%q}`, req.RequestNumber))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// AdminReviewInput 管理员审批输入
type AdminReviewInput struct {
	Decision string `json:"decision" binding:"required"`
	Notes    string `json:"notes"`
}

// AdminReview 管理员审批：Approve/Reject/Hold，仅限待审或搁置状态
func (s *RequestService) AdminReview(ctx context.Context, actor entity.Actor, requestID string, input AdminReviewInput) (*entity.ProcurementRequest, error) {
	if !entity.CanPerform(actor.Role, entity.OpAdminReview) {
		return nil, apperr.Authorization("only Admin can review requests", nil)
	}

	decision := entity.AdminDecision(input.Decision)
	target, ok := entity.DecisionStatus(decision)
	if !ok {
		return nil, apperr.Validation("decision must be Approved, Rejected or Hold", nil)
	}

	var req *entity.ProcurementRequest
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		req, err = s.requestRepo.LockByID(ctx, tx, actor.OrgID, requestID)
		if err != nil {
			return wrapLookup(err, "request not found")
		}

		if !entity.CanTransition(req.Status, target) {
			return apperr.StateConflict(
				fmt.Sprintf("cannot review request in status %q", req.Status), nil)
		}

		now := time.Now()
		req.Status = target
		req.AdminDecision = decision
		req.AdminNotes = input.Notes
		req.AdminReviewedBy = &actor.UserID
		req.AdminReviewedAt = &now
		if err := s.requestRepo.Update(ctx, tx, req); err != nil {
			return apperr.Unexpected("failed to update request", err)
		}

		s.auditRepo.Log(ctx, tx, actor.OrgID, actor.UserID, entity.ActionAdminReview,
			"procurement_request", req.ID, fmt.Sprintf(`{"decision":%q}`, decision))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// VendorOptionItemInput 某申请行项的报价输入
type VendorOptionItemInput struct {
	RequestItemID string  `json:"request_item_id" binding:"required"`
	UnitPrice     float64 `json:"unit_price"`
}

// VendorOptionInput 单个供应商方案输入
type VendorOptionInput struct {
	VendorName  string                  `json:"vendor_name" binding:"required"`
	ContactInfo string                  `json:"contact_info"`
	Notes       string                  `json:"notes"`
	Items       []VendorOptionItemInput `json:"items" binding:"required"`
}

// SubmitVendorOptions 物流提交供应商方案：恰好三个，每个方案给每个行项报价一次。
// 始终整组替换；已是Vendors Submitted时为重入替换，不改状态语义。
func (s *RequestService) SubmitVendorOptions(ctx context.Context, actor entity.Actor, requestID string, options []VendorOptionInput) (*entity.ProcurementRequest, error) {
	if !entity.CanPerform(actor.Role, entity.OpSubmitVendorOptions) {
		return nil, apperr.Authorization("only Logistics can submit vendor options", nil)
	}
	if len(options) != entity.VendorOptionCount {
		return nil, apperr.Validation(
			fmt.Sprintf("exactly %d vendor options are required", entity.VendorOptionCount), nil)
	}
	for i, opt := range options {
		if strings.TrimSpace(opt.VendorName) == "" {
			return nil, apperr.Validation(fmt.Sprintf("vendor %d: name is required", i+1), nil)
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		req, err := s.requestRepo.LockByID(ctx, tx, actor.OrgID, requestID)
		if err != nil {
			return wrapLookup(err, "request not found")
		}

		if !entity.CanTransition(req.Status, entity.RequestStatusVendorsSubmitted) {
			return apperr.StateConflict(
				fmt.Sprintf("vendor options cannot be submitted in status %q", req.Status), nil)
		}

		items, err := s.requestRepo.LockItems(ctx, tx, req.ID)
		if err != nil {
			return apperr.Unexpected("failed to load request items", err)
		}
		itemByID := make(map[string]entity.RequestItem, len(items))
		for _, it := range items {
			itemByID[it.ID] = it
		}

		newOptions := make([]entity.VendorOption, 0, len(options))
		for i, opt := range options {
			if len(opt.Items) != len(items) {
				return apperr.Validation(
					fmt.Sprintf("vendor %d must price every request item", i+1), nil)
			}
			vo := entity.VendorOption{
				ID:          uuid.New().String()[:32],
				RequestID:   req.ID,
				OrgID:       actor.OrgID,
				VendorName:  strings.TrimSpace(opt.VendorName),
				ContactInfo: opt.ContactInfo,
				Notes:       opt.Notes,
				OptionIndex: i + 1,
				SubmittedBy: actor.UserID,
			}
			seen := make(map[string]bool, len(opt.Items))
			for _, priced := range opt.Items {
				item, ok := itemByID[priced.RequestItemID]
				if !ok {
					return apperr.Integrity(
						fmt.Sprintf("vendor %d prices an unknown request item", i+1), nil)
				}
				if seen[priced.RequestItemID] {
					return apperr.Integrity(
						fmt.Sprintf("vendor %d prices item %q twice", i+1, item.ItemName), nil)
				}
				seen[priced.RequestItemID] = true
				if priced.UnitPrice < 0 || math.IsNaN(priced.UnitPrice) || math.IsInf(priced.UnitPrice, 0) {
					return apperr.Validation(
						fmt.Sprintf("vendor %d: unit price for %q must be a non-negative number", i+1, item.ItemName), nil)
				}
				vo.Items = append(vo.Items, entity.VendorOptionItem{
					ID:             uuid.New().String()[:32],
					VendorOptionID: vo.ID,
					RequestItemID:  item.ID,
					UnitPrice:      priced.UnitPrice,
					Quantity:       item.Quantity,
				})
			}
			vo.ComputeTotals()
			newOptions = append(newOptions, vo)
		}

		if err := s.requestRepo.ReplaceVendorOptions(ctx, tx, req.ID, newOptions); err != nil {
			return apperr.Unexpected("failed to replace vendor options", err)
		}

		now := time.Now()
		req.Status = entity.RequestStatusVendorsSubmitted
		req.LogisticsSubmittedBy = &actor.UserID
		req.LogisticsSubmittedAt = &now
		if err := s.requestRepo.Update(ctx, tx, req); err != nil {
			return apperr.Unexpected("failed to update request", err)
		}

		s.auditRepo.Log(ctx, tx, actor.OrgID, actor.UserID, entity.ActionSubmitVendorOptions,
			"procurement_request", req.ID, fmt.Sprintf(`{"options":%d}`, len(newOptions)))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.requestRepo.FindByID(ctx, actor.OrgID, requestID)
}

// SelectVendorInput 选定供应商输入
type SelectVendorInput struct {
	VendorOptionID string `json:"vendor_option_id" binding:"required"`
}

// SelectVendor 管理员选定供应商并物化采购订单。
// 订单直接为Approved：它来自已批准的审批流，审批人即当前管理员。
func (s *RequestService) SelectVendor(ctx context.Context, actor entity.Actor, requestID string, input SelectVendorInput) (*entity.PurchaseOrder, error) {
	if !entity.CanPerform(actor.Role, entity.OpSelectVendor) {
		return nil, apperr.Authorization("only Admin can select a vendor", nil)
	}

	var po *entity.PurchaseOrder
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		req, err := s.requestRepo.LockByID(ctx, tx, actor.OrgID, requestID)
		if err != nil {
			return wrapLookup(err, "request not found")
		}

		if req.Status != entity.RequestStatusVendorsSubmitted {
			return apperr.StateConflict(
				fmt.Sprintf("vendor cannot be selected in status %q", req.Status), nil)
		}
		if req.SelectedVendorOptionID != nil {
			return apperr.StateConflict("a vendor has already been selected", nil)
		}

		option, err := s.requestRepo.FindVendorOption(ctx, tx, req.ID, input.VendorOptionID)
		if err != nil {
			return wrapLookup(err, "vendor option not found")
		}
		if len(option.Items) == 0 {
			return apperr.Integrity("selected vendor option has no priced items", nil)
		}

		items, err := s.requestRepo.FindItems(ctx, tx, req.ID)
		if err != nil {
			return apperr.Unexpected("failed to load request items", err)
		}

		po, err = s.materializePO(ctx, tx, actor, req, option, items)
		if err != nil {
			return err
		}

		if err := s.requestRepo.MarkOptionSelected(ctx, tx, option.ID); err != nil {
			return apperr.Unexpected("failed to mark option selected", err)
		}

		req.Status = entity.RequestStatusPOCreated
		req.SelectedVendorOptionID = &option.ID
		req.POID = &po.ID
		if err := s.requestRepo.Update(ctx, tx, req); err != nil {
			return apperr.Unexpected("failed to update request", err)
		}

		s.auditRepo.Log(ctx, tx, actor.OrgID, actor.UserID, entity.ActionSelectVendor,
			"procurement_request", req.ID, fmt.Sprintf(`{"vendor_option_id":%q,"po_id":%q}`, option.ID, po.ID))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return po, nil
}

// materializePO 从选定方案物化采购订单：行项名称/数量取自申请行项，单价取自报价
func (s *RequestService) materializePO(ctx context.Context, tx *gorm.DB, actor entity.Actor, req *entity.ProcurementRequest, option *entity.VendorOption, items []entity.RequestItem) (*entity.PurchaseOrder, error) {
	itemByID := make(map[string]entity.RequestItem, len(items))
	for _, it := range items {
		itemByID[it.ID] = it
	}

	now := time.Now()
	po := &entity.PurchaseOrder{
		ID:             uuid.New().String()[:32],
		OrgID:          actor.OrgID,
		PONumber:       identifier.NewPONumber(actor.OrgID),
		Status:         entity.POStatusApproved,
		RequestID:      &req.ID,
		VendorOptionID: &option.ID,
		VendorName:     option.VendorName,
		ContactInfo:    option.ContactInfo,
		Notes:          option.Notes,
		TotalAmount:    option.TotalPrice,
		ReviewedBy:     &actor.UserID,
		ReviewedAt:     &now,
		PaymentStatus:  entity.PaymentStatusNotPaid,
		DeliveryStatus: entity.DeliveryStatusNotReceived,
		CreatedBy:      actor.UserID,
	}
	for i, priced := range option.Items {
		item, ok := itemByID[priced.RequestItemID]
		if !ok {
			return nil, apperr.Integrity("vendor option references a missing request item", nil)
		}
		po.Items = append(po.Items, entity.POItem{
			ID:        uuid.New().String()[:32],
			POID:      po.ID,
			ItemName:  item.ItemName,
			Quantity:  item.Quantity,
			UnitPrice: priced.UnitPrice,
			LineTotal: priced.TotalPrice,
			SortOrder: i,
		})
	}

	if err := s.poRepo.Create(ctx, tx, po); err != nil {
		return nil, apperr.Unexpected("failed to create purchase order", err)
	}
	s.auditRepo.Log(ctx, tx, actor.OrgID, actor.UserID, entity.ActionCreatePO,
		"purchase_order", po.ID, fmt.Sprintf(`{"po_number":%q,"request_id":%q}`, po.PONumber, req.ID))
	return po, nil
}

// ListRequests 角色可见范围内的申请列表
func (s *RequestService) ListRequests(ctx context.Context, actor entity.Actor, page, pageSize int, status, search string) ([]entity.ProcurementRequest, int64, error) {
	filter, ok := requestScope(actor)
	if !ok {
		return nil, 0, apperr.Authorization("role cannot list requests", nil)
	}
	filter.Status = status
	filter.Search = search
	items, total, err := s.requestRepo.FindAll(ctx, actor.OrgID, page, pageSize, filter)
	if err != nil {
		return nil, 0, apperr.Unexpected("failed to list requests", err)
	}
	return items, total, nil
}

// GetRequest 可见性校验后的单个申请：组织外404，组织内可见范围外403
func (s *RequestService) GetRequest(ctx context.Context, actor entity.Actor, requestID string) (*entity.ProcurementRequest, error) {
	req, err := s.requestRepo.FindByID(ctx, actor.OrgID, requestID)
	if err != nil {
		return nil, wrapLookup(err, "request not found")
	}
	if !requestVisible(actor, req) {
		return nil, apperr.Authorization("request is outside your visibility", nil)
	}
	return req, nil
}

// wrapLookup 仓库查找错误转应用错误
func wrapLookup(err error, notFoundMsg string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(notFoundMsg, err)
	}
	return apperr.Unexpected("storage failure", err)
}
