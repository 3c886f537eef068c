package entity

import "time"

// AuditLog 操作审计，写入随业务事务提交，失败不阻断业务
type AuditLog struct {
	ID         string    `json:"id" gorm:"primaryKey;size:32"`
	OrgID      string    `json:"org_id" gorm:"size:32;not null;index"`
	UserID     string    `json:"user_id" gorm:"size:32;not null;index"`
	Action     string    `json:"action" gorm:"size:50;not null"`
	EntityType string    `json:"entity_type" gorm:"size:50;not null"`
	EntityID   string    `json:"entity_id" gorm:"size:32;index"`
	Detail     string    `json:"detail" gorm:"type:text"`
	CreatedAt  time.Time `json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

// 审计动作名
const (
	ActionCreateRequest       = "create_request"
	ActionAdminReview         = "admin_review"
	ActionSubmitVendorOptions = "submit_vendor_options"
	ActionSelectVendor        = "select_vendor"
	ActionCreatePO            = "create_po"
	ActionReviewPO            = "review_po"
	ActionUpdatePayment       = "update_payment"
	ActionUpdateDelivery      = "update_delivery"
	ActionUpdateUser          = "update_user"
)
