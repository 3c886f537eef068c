package repository

import (
	"context"
	"errors"

	"github.com/bitfantasy/potrack/internal/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RequestRepository 采购申请仓库
type RequestRepository struct {
	db *gorm.DB
}

func NewRequestRepository(db *gorm.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

// RequestFilter 列表过滤条件。RequestedBy/StatusIn来自角色可见性，
// Status/Search来自查询参数。
type RequestFilter struct {
	Status      string
	RequestedBy string
	StatusIn    []string
	Search      string
}

func applyRequestFilter(query *gorm.DB, filter RequestFilter) *gorm.DB {
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.RequestedBy != "" {
		query = query.Where("requested_by = ?", filter.RequestedBy)
	}
	if len(filter.StatusIn) > 0 {
		query = query.Where("status IN ?", filter.StatusIn)
	}
	if filter.Search != "" {
		query = query.Where("title ILIKE ? OR request_number ILIKE ?", "%"+filter.Search+"%", "%"+filter.Search+"%")
	}
	return query
}

// FindAll 查询组织内申请列表（含行项与供应商方案）
func (r *RequestRepository) FindAll(ctx context.Context, orgID string, page, pageSize int, filter RequestFilter) ([]entity.ProcurementRequest, int64, error) {
	items := make([]entity.ProcurementRequest, 0)
	var total int64

	query := applyRequestFilter(
		r.db.WithContext(ctx).
			Model(&entity.ProcurementRequest{}).
			Where("org_id = ?", orgID),
		filter,
	)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Preload("VendorOptions", func(db *gorm.DB) *gorm.DB {
			return db.Order("option_index ASC")
		}).
		Preload("VendorOptions.Items").
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&items).Error

	return items, total, err
}

// FindByID 根据ID查找组织内申请（含行项与供应商方案）
func (r *RequestRepository) FindByID(ctx context.Context, orgID, id string) (*entity.ProcurementRequest, error) {
	var req entity.ProcurementRequest
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Preload("VendorOptions", func(db *gorm.DB) *gorm.DB {
			return db.Order("option_index ASC")
		}).
		Preload("VendorOptions.Items").
		Where("id = ? AND org_id = ?", id, orgID).
		First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &req, nil
}

// LockByID 行锁加载申请（不带关联），状态机写路径专用
func (r *RequestRepository) LockByID(ctx context.Context, tx *gorm.DB, orgID, id string) (*entity.ProcurementRequest, error) {
	var req entity.ProcurementRequest
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND org_id = ?", id, orgID).
		First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &req, nil
}

// Create 创建申请（级联行项）
func (r *RequestRepository) Create(ctx context.Context, req *entity.ProcurementRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

// Update 保存申请
func (r *RequestRepository) Update(ctx context.Context, tx *gorm.DB, req *entity.ProcurementRequest) error {
	return tx.WithContext(ctx).Save(req).Error
}

// FindItems 申请行项（排序后）
func (r *RequestRepository) FindItems(ctx context.Context, tx *gorm.DB, requestID string) ([]entity.RequestItem, error) {
	var items []entity.RequestItem
	err := tx.WithContext(ctx).
		Where("request_id = ?", requestID).
		Order("sort_order ASC").
		Find(&items).Error
	return items, err
}

// LockItems 行锁加载申请行项，报价提交在校验前锁定整个行项集
func (r *RequestRepository) LockItems(ctx context.Context, tx *gorm.DB, requestID string) ([]entity.RequestItem, error) {
	var items []entity.RequestItem
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("request_id = ?", requestID).
		Order("sort_order ASC").
		Find(&items).Error
	return items, err
}

// ReplaceVendorOptions 整组替换供应商方案：先删旧组及报价行，再建新组
func (r *RequestRepository) ReplaceVendorOptions(ctx context.Context, tx *gorm.DB, requestID string, options []entity.VendorOption) error {
	var oldIDs []string
	if err := tx.WithContext(ctx).
		Model(&entity.VendorOption{}).
		Where("request_id = ?", requestID).
		Pluck("id", &oldIDs).Error; err != nil {
		return err
	}
	if len(oldIDs) > 0 {
		if err := tx.WithContext(ctx).
			Where("vendor_option_id IN ?", oldIDs).
			Delete(&entity.VendorOptionItem{}).Error; err != nil {
			return err
		}
		if err := tx.WithContext(ctx).
			Where("request_id = ?", requestID).
			Delete(&entity.VendorOption{}).Error; err != nil {
			return err
		}
	}
	for i := range options {
		if err := tx.WithContext(ctx).Create(&options[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// FindVendorOption 申请下的指定方案（含报价行）
func (r *RequestRepository) FindVendorOption(ctx context.Context, tx *gorm.DB, requestID, optionID string) (*entity.VendorOption, error) {
	var opt entity.VendorOption
	err := tx.WithContext(ctx).
		Preload("Items").
		Where("id = ? AND request_id = ?", optionID, requestID).
		First(&opt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &opt, nil
}

// MarkOptionSelected 标记选中方案
func (r *RequestRepository) MarkOptionSelected(ctx context.Context, tx *gorm.DB, optionID string) error {
	return tx.WithContext(ctx).
		Model(&entity.VendorOption{}).
		Where("id = ?", optionID).
		Update("is_selected", true).Error
}

// CountByStatus 组织内按状态统计（仪表盘用），按角色可见范围过滤
func (r *RequestRepository) CountByStatus(ctx context.Context, orgID string, filter RequestFilter) (map[string]int64, error) {
	type row struct {
		Status string
		Count  int64
	}
	var rows []row

	query := applyRequestFilter(
		r.db.WithContext(ctx).
			Model(&entity.ProcurementRequest{}).
			Select("status, COUNT(*) AS count").
			Where("org_id = ?", orgID),
		filter,
	)
	if err := query.Group("status").Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}
