package entity

import "time"

// VendorOptionCount 每次提交必须恰好三个供应商方案
const VendorOptionCount = 3

// VendorOption 供应商报价方案，始终整组提交、整组替换
type VendorOption struct {
	ID           string    `json:"id" gorm:"primaryKey;size:32"`
	RequestID    string    `json:"request_id" gorm:"size:32;not null;index"`
	OrgID        string    `json:"org_id" gorm:"size:32;not null;index"`
	VendorName   string    `json:"vendor_name" gorm:"size:200;not null"`
	ContactInfo  string    `json:"contact_info" gorm:"size:200"`
	Notes        string    `json:"notes" gorm:"type:text"`
	OptionIndex  int       `json:"option_index" gorm:"not null"` // 1..3，提交顺序
	TotalPrice   float64   `json:"total_price" gorm:"type:decimal(15,2);not null;default:0"`
	IsSelected   bool      `json:"is_selected" gorm:"default:false"`
	SubmittedBy  string    `json:"submitted_by" gorm:"size:32;not null"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Items []VendorOptionItem `json:"items,omitempty" gorm:"foreignKey:VendorOptionID"`
}

func (VendorOption) TableName() string {
	return "vendor_options"
}

// VendorOptionItem 单个方案对某申请行项的报价
type VendorOptionItem struct {
	ID             string    `json:"id" gorm:"primaryKey;size:32"`
	VendorOptionID string    `json:"vendor_option_id" gorm:"size:32;not null;index"`
	RequestItemID  string    `json:"request_item_id" gorm:"size:32;not null;index"`
	UnitPrice      float64   `json:"unit_price" gorm:"type:decimal(15,2);not null"`
	Quantity       int       `json:"quantity" gorm:"not null"` // 冗余自申请行项，便于整单快照
	TotalPrice     float64   `json:"total_price" gorm:"type:decimal(15,2);not null"`
	CreatedAt      time.Time `json:"created_at"`
}

func (VendorOptionItem) TableName() string {
	return "vendor_option_items"
}

// ComputeTotals 重算行小计与方案总价，提交时调用
func (v *VendorOption) ComputeTotals() {
	var total float64
	for i := range v.Items {
		v.Items[i].TotalPrice = v.Items[i].UnitPrice * float64(v.Items[i].Quantity)
		total += v.Items[i].TotalPrice
	}
	v.TotalPrice = total
}
