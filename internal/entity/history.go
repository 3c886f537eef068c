package entity

import "time"

// PaymentUpdate 付款状态变更历史，只追加
type PaymentUpdate struct {
	ID        string    `json:"id" gorm:"primaryKey;size:32"`
	POID      string    `json:"po_id" gorm:"size:32;not null;index"`
	OldStatus string    `json:"old_status" gorm:"size:20;not null"`
	NewStatus string    `json:"new_status" gorm:"size:20;not null"`
	Notes     string    `json:"notes" gorm:"type:text"`
	UpdatedBy string    `json:"updated_by" gorm:"size:32;not null"`
	CreatedAt time.Time `json:"created_at"`
}

func (PaymentUpdate) TableName() string {
	return "payment_updates"
}

// DeliveryUpdate 收货状态变更历史，只追加
type DeliveryUpdate struct {
	ID        string    `json:"id" gorm:"primaryKey;size:32"`
	POID      string    `json:"po_id" gorm:"size:32;not null;index"`
	OldStatus string    `json:"old_status" gorm:"size:30;not null"`
	NewStatus string    `json:"new_status" gorm:"size:30;not null"`
	Notes     string    `json:"notes" gorm:"type:text"`
	UpdatedBy string    `json:"updated_by" gorm:"size:32;not null"`
	CreatedAt time.Time `json:"created_at"`
}

func (DeliveryUpdate) TableName() string {
	return "delivery_updates"
}
