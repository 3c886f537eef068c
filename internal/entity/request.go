package entity

import "time"

// RequestStatus 采购申请状态
type RequestStatus string

const (
	RequestStatusPendingAdminReview RequestStatus = "Pending Admin Review"
	RequestStatusAdminApproved      RequestStatus = "Admin Approved"
	RequestStatusAdminRejected      RequestStatus = "Admin Rejected"
	RequestStatusAdminHold          RequestStatus = "Admin Hold"
	RequestStatusVendorsSubmitted   RequestStatus = "Vendors Submitted"
	RequestStatusPOCreated          RequestStatus = "PO Created"
)

// AdminDecision 管理员最近一次审批结论，与status同事务保持同步
type AdminDecision string

const (
	AdminDecisionPending  AdminDecision = "Pending"
	AdminDecisionApproved AdminDecision = "Approved"
	AdminDecisionRejected AdminDecision = "Rejected"
	AdminDecisionHold     AdminDecision = "Hold"
)

// ValidRequestTransitions 申请状态机，(from, to)不在表内即非法。
// Vendors Submitted → Vendors Submitted 是重入替换（整体重提供应商报价）。
var ValidRequestTransitions = map[RequestStatus][]RequestStatus{
	RequestStatusPendingAdminReview: {
		RequestStatusAdminApproved,
		RequestStatusAdminRejected,
		RequestStatusAdminHold,
	},
	RequestStatusAdminHold: {
		RequestStatusAdminApproved,
		RequestStatusAdminRejected,
		RequestStatusAdminHold,
	},
	RequestStatusAdminApproved: {
		RequestStatusVendorsSubmitted,
	},
	RequestStatusVendorsSubmitted: {
		RequestStatusVendorsSubmitted,
		RequestStatusPOCreated,
	},
}

// CanTransition 状态迁移是否合法
func CanTransition(from, to RequestStatus) bool {
	for _, t := range ValidRequestTransitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// IsTerminalRequestStatus 终态：拒绝或已生成PO
func IsTerminalRequestStatus(s RequestStatus) bool {
	return s == RequestStatusAdminRejected || s == RequestStatusPOCreated
}

// DecisionStatus 审批结论对应的目标状态
func DecisionStatus(d AdminDecision) (RequestStatus, bool) {
	switch d {
	case AdminDecisionApproved:
		return RequestStatusAdminApproved, true
	case AdminDecisionRejected:
		return RequestStatusAdminRejected, true
	case AdminDecisionHold:
		return RequestStatusAdminHold, true
	}
	return "", false
}

// ProcurementRequest 采购申请单，审批流的根实体
type ProcurementRequest struct {
	ID            string        `json:"id" gorm:"primaryKey;size:32"`
	OrgID         string        `json:"org_id" gorm:"size:32;not null;index"`
	RequestNumber string        `json:"request_number" gorm:"size:40;uniqueIndex;not null"`
	Title         string        `json:"title" gorm:"size:200;not null"`
	OverallReason string        `json:"overall_reason" gorm:"type:text"`
	Status        RequestStatus `json:"status" gorm:"size:30;not null;default:'Pending Admin Review';index"`
	AdminDecision AdminDecision `json:"admin_decision" gorm:"size:20;not null;default:'Pending'"`

	// 管理员审批
	AdminNotes      string     `json:"admin_notes" gorm:"type:text"`
	AdminReviewedBy *string    `json:"admin_reviewed_by" gorm:"size:32"`
	AdminReviewedAt *time.Time `json:"admin_reviewed_at"`

	// 供应商报价提交
	LogisticsSubmittedBy *string    `json:"logistics_submitted_by" gorm:"size:32"`
	LogisticsSubmittedAt *time.Time `json:"logistics_submitted_at"`

	// 选定供应商后一次性写入，之后不可变
	SelectedVendorOptionID *string `json:"selected_vendor_option_id" gorm:"size:32"`
	POID                   *string `json:"po_id" gorm:"size:32"`

	RequestedBy string    `json:"requested_by" gorm:"size:32;not null;index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// 关联
	Items         []RequestItem  `json:"items,omitempty" gorm:"foreignKey:RequestID"`
	VendorOptions []VendorOption `json:"vendor_options,omitempty" gorm:"foreignKey:RequestID"`
}

func (ProcurementRequest) TableName() string {
	return "procurement_requests"
}

// RequestItem 申请行项，创建后名称与数量不可变
type RequestItem struct {
	ID            string    `json:"id" gorm:"primaryKey;size:32"`
	RequestID     string    `json:"request_id" gorm:"size:32;not null;index"`
	ItemName      string    `json:"item_name" gorm:"size:200;not null"`
	Quantity      int       `json:"quantity" gorm:"not null"`
	Justification string    `json:"justification" gorm:"type:text"`
	SortOrder     int       `json:"sort_order" gorm:"default:0"`
	CreatedAt     time.Time `json:"created_at"`
}

func (RequestItem) TableName() string {
	return "procurement_request_items"
}
