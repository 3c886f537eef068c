package repository

import (
	"context"
	"errors"

	"github.com/bitfantasy/potrack/internal/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PORepository 采购订单仓库
type PORepository struct {
	db *gorm.DB
}

func NewPORepository(db *gorm.DB) *PORepository {
	return &PORepository{db: db}
}

// POFilter 列表过滤条件。StatusIn/LogisticsUserID来自角色可见性，
// Status/Search来自查询参数。
type POFilter struct {
	Status          string
	StatusIn        []string
	LogisticsUserID string
	Search          string
}

// applyFilter 组装过滤条件。物流可见范围 = 自建订单 ∪ 其提交报价的申请物化的订单。
func (r *PORepository) applyFilter(query *gorm.DB, filter POFilter) *gorm.DB {
	if filter.Status != "" {
		query = query.Where("status IN ?", entity.POStatusQueryValues(entity.POStatus(filter.Status)))
	}
	if len(filter.StatusIn) > 0 {
		query = query.Where("status IN ?", filter.StatusIn)
	}
	if filter.LogisticsUserID != "" {
		submitted := r.db.Model(&entity.ProcurementRequest{}).
			Select("id").
			Where("logistics_submitted_by = ?", filter.LogisticsUserID)
		query = query.Where("created_by = ? OR request_id IN (?)", filter.LogisticsUserID, submitted)
	}
	if filter.Search != "" {
		query = query.Where("vendor_name ILIKE ? OR po_number ILIKE ?", "%"+filter.Search+"%", "%"+filter.Search+"%")
	}
	return query
}

// FindAll 查询组织内订单列表（含行项），状态过滤兼容旧同义词
func (r *PORepository) FindAll(ctx context.Context, orgID string, page, pageSize int, filter POFilter) ([]entity.PurchaseOrder, int64, error) {
	items := make([]entity.PurchaseOrder, 0)
	var total int64

	query := r.applyFilter(
		r.db.WithContext(ctx).
			Model(&entity.PurchaseOrder{}).
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
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&items).Error

	return items, total, err
}

// FindByID 根据ID查找组织内订单（含行项）
func (r *PORepository) FindByID(ctx context.Context, orgID, id string) (*entity.PurchaseOrder, error) {
	var po entity.PurchaseOrder
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Where("id = ? AND org_id = ?", id, orgID).
		First(&po).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &po, nil
}

// LockByID 行锁加载订单（不带关联），写路径专用
func (r *PORepository) LockByID(ctx context.Context, tx *gorm.DB, orgID, id string) (*entity.PurchaseOrder, error) {
	var po entity.PurchaseOrder
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND org_id = ?", id, orgID).
		First(&po).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &po, nil
}

// Create 创建订单（级联行项）
func (r *PORepository) Create(ctx context.Context, tx *gorm.DB, po *entity.PurchaseOrder) error {
	return tx.WithContext(ctx).Create(po).Error
}

// Update 保存订单
func (r *PORepository) Update(ctx context.Context, tx *gorm.DB, po *entity.PurchaseOrder) error {
	return tx.WithContext(ctx).Save(po).Error
}

// CreatePaymentUpdate 追加付款历史
func (r *PORepository) CreatePaymentUpdate(ctx context.Context, tx *gorm.DB, u *entity.PaymentUpdate) error {
	return tx.WithContext(ctx).Create(u).Error
}

// CreateDeliveryUpdate 追加收货历史
func (r *PORepository) CreateDeliveryUpdate(ctx context.Context, tx *gorm.DB, u *entity.DeliveryUpdate) error {
	return tx.WithContext(ctx).Create(u).Error
}

// FindPaymentUpdates 付款历史（新到旧）
func (r *PORepository) FindPaymentUpdates(ctx context.Context, poID string) ([]entity.PaymentUpdate, error) {
	updates := make([]entity.PaymentUpdate, 0)
	err := r.db.WithContext(ctx).
		Where("po_id = ?", poID).
		Order("created_at DESC").
		Find(&updates).Error
	return updates, err
}

// FindDeliveryUpdates 收货历史（新到旧）
func (r *PORepository) FindDeliveryUpdates(ctx context.Context, poID string) ([]entity.DeliveryUpdate, error) {
	updates := make([]entity.DeliveryUpdate, 0)
	err := r.db.WithContext(ctx).
		Where("po_id = ?", poID).
		Order("created_at DESC").
		Find(&updates).Error
	return updates, err
}

// CountByStatus 可见范围内按审批状态统计
func (r *PORepository) CountByStatus(ctx context.Context, orgID string, filter POFilter) (map[string]int64, error) {
	return r.countGrouped(ctx, orgID, filter, "status")
}

// CountByPaymentStatus 可见范围内按付款状态统计
func (r *PORepository) CountByPaymentStatus(ctx context.Context, orgID string, filter POFilter) (map[string]int64, error) {
	return r.countGrouped(ctx, orgID, filter, "payment_status")
}

// CountByDeliveryStatus 可见范围内按收货状态统计
func (r *PORepository) CountByDeliveryStatus(ctx context.Context, orgID string, filter POFilter) (map[string]int64, error) {
	return r.countGrouped(ctx, orgID, filter, "delivery_status")
}

// SumTotalAmount 可见范围内订单总金额
func (r *PORepository) SumTotalAmount(ctx context.Context, orgID string, filter POFilter) (float64, error) {
	var total float64
	query := r.applyFilter(
		r.db.WithContext(ctx).
			Model(&entity.PurchaseOrder{}).
			Select("COALESCE(SUM(total_amount), 0)").
			Where("org_id = ?", orgID),
		filter,
	)
	err := query.Scan(&total).Error
	return total, err
}

func (r *PORepository) countGrouped(ctx context.Context, orgID string, filter POFilter, column string) (map[string]int64, error) {
	type row struct {
		Value string
		Count int64
	}
	var rows []row

	query := r.applyFilter(
		r.db.WithContext(ctx).
			Model(&entity.PurchaseOrder{}).
			Select(column+" AS value, COUNT(*) AS count").
			Where("org_id = ?", orgID),
		filter,
	)
	if err := query.Group(column).Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Value] = r.Count
	}
	return counts, nil
}
