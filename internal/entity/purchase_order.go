package entity

import "time"

// POStatus 采购订单审批状态（部门负责人一次性审批）
type POStatus string

const (
	POStatusPending  POStatus = "Pending"
	POStatusApproved POStatus = "Approved"
	POStatusRejected POStatus = "Rejected"
	POStatusHold     POStatus = "Hold"
)

// PaymentStatus 付款进度
type PaymentStatus string

const (
	PaymentStatusNotPaid       PaymentStatus = "Not Paid"
	PaymentStatusPartiallyPaid PaymentStatus = "Partially Paid"
	PaymentStatusPaid          PaymentStatus = "Paid"
)

// DeliveryStatus 收货进度
type DeliveryStatus string

const (
	DeliveryStatusNotReceived       DeliveryStatus = "Not Received"
	DeliveryStatusPartiallyReceived DeliveryStatus = "Partially Received"
	DeliveryStatusReceived          DeliveryStatus = "Received Delivery"
)

// 旧版数据同义词，读取时归一化，不回写
var legacyPOStatus = map[string]POStatus{
	"On Hold": POStatusHold,
}

var legacyDeliveryStatus = map[string]DeliveryStatus{
	"Not Delivered":       DeliveryStatusNotReceived,
	"Partially Delivered": DeliveryStatusPartiallyReceived,
	"Delivered":           DeliveryStatusReceived,
}

// NormalizePOStatus 归一化PO状态，未知值原样返回
func NormalizePOStatus(s string) POStatus {
	if c, ok := legacyPOStatus[s]; ok {
		return c
	}
	return POStatus(s)
}

// NormalizeDeliveryStatus 归一化收货状态
func NormalizeDeliveryStatus(s string) DeliveryStatus {
	if c, ok := legacyDeliveryStatus[s]; ok {
		return c
	}
	return DeliveryStatus(s)
}

// POStatusQueryValues 查询某规范状态时需要匹配的存储值（含旧同义词）
func POStatusQueryValues(s POStatus) []string {
	values := []string{string(s)}
	for legacy, canonical := range legacyPOStatus {
		if canonical == s {
			values = append(values, legacy)
		}
	}
	return values
}

// DeliveryStatusQueryValues 同上，收货状态
func DeliveryStatusQueryValues(s DeliveryStatus) []string {
	values := []string{string(s)}
	for legacy, canonical := range legacyDeliveryStatus {
		if canonical == s {
			values = append(values, legacy)
		}
	}
	return values
}

// ValidPOReviewStatuses 部门负责人审批可选结论
var ValidPOReviewStatuses = []POStatus{POStatusApproved, POStatusRejected, POStatusHold}

func IsValidPOReview(s POStatus) bool {
	for _, v := range ValidPOReviewStatuses {
		if v == s {
			return true
		}
	}
	return false
}

func IsValidPaymentStatus(s PaymentStatus) bool {
	switch s {
	case PaymentStatusNotPaid, PaymentStatusPartiallyPaid, PaymentStatusPaid:
		return true
	}
	return false
}

func IsValidDeliveryStatus(s DeliveryStatus) bool {
	switch s {
	case DeliveryStatusNotReceived, DeliveryStatusPartiallyReceived, DeliveryStatusReceived:
		return true
	}
	return false
}

// PurchaseOrder 采购订单。来源两种：申请选定供应商后物化（status直接Approved），
// 或物流直接创建（status Pending，待部门负责人审批）。
type PurchaseOrder struct {
	ID       string   `json:"id" gorm:"primaryKey;size:32"`
	OrgID    string   `json:"org_id" gorm:"size:32;not null;index"`
	PONumber string   `json:"po_number" gorm:"size:40;uniqueIndex;not null"`
	Status   POStatus `json:"status" gorm:"size:20;not null;default:'Pending';index"`

	// 物化来源，直接创建时为空
	RequestID      *string `json:"request_id" gorm:"size:32;index"`
	VendorOptionID *string `json:"vendor_option_id" gorm:"size:32"`

	VendorName  string  `json:"vendor_name" gorm:"size:200;not null"`
	ContactInfo string  `json:"contact_info" gorm:"size:200"`
	Notes       string  `json:"notes" gorm:"type:text"`
	TotalAmount float64 `json:"total_amount" gorm:"type:decimal(15,2);not null;default:0"`

	// 部门负责人一次性审批
	ReviewedBy  *string    `json:"reviewed_by" gorm:"size:32"`
	ReviewedAt  *time.Time `json:"reviewed_at"`
	ReviewNotes string     `json:"review_notes" gorm:"type:text"`

	PaymentStatus  PaymentStatus  `json:"payment_status" gorm:"size:20;not null;default:'Not Paid'"`
	DeliveryStatus DeliveryStatus `json:"delivery_status" gorm:"size:30;not null;default:'Not Received'"`

	CreatedBy string    `json:"created_by" gorm:"size:32;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Items []POItem `json:"items,omitempty" gorm:"foreignKey:POID"`
}

func (PurchaseOrder) TableName() string {
	return "purchase_orders"
}

// NormalizedStatuses 返回读取展示用的规范化三元组
func (p *PurchaseOrder) NormalizedStatuses() (POStatus, PaymentStatus, DeliveryStatus) {
	return NormalizePOStatus(string(p.Status)), p.PaymentStatus, NormalizeDeliveryStatus(string(p.DeliveryStatus))
}

// POItem 订单行项，物化时从选定方案快照，之后不可变
type POItem struct {
	ID        string    `json:"id" gorm:"primaryKey;size:32"`
	POID      string    `json:"po_id" gorm:"size:32;not null;index"`
	ItemName  string    `json:"item_name" gorm:"size:200;not null"`
	Quantity  int       `json:"quantity" gorm:"not null"`
	UnitPrice float64   `json:"unit_price" gorm:"type:decimal(15,2);not null"`
	LineTotal float64   `json:"line_total" gorm:"type:decimal(15,2);not null"`
	SortOrder int       `json:"sort_order" gorm:"default:0"`
	CreatedAt time.Time `json:"created_at"`
}

func (POItem) TableName() string {
	return "purchase_order_items"
}
