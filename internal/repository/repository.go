package repository

import (
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
)

// Repositories 仓库集合
type Repositories struct {
	Request  *RequestRepository
	PO       *PORepository
	User     *UserRepository
	AuditLog *AuditLogRepository
}

// NewRepositories 创建仓库集合
func NewRepositories(db *gorm.DB, logger *zap.Logger) *Repositories {
	return &Repositories{
		Request:  NewRequestRepository(db),
		PO:       NewPORepository(db),
		User:     NewUserRepository(db),
		AuditLog: NewAuditLogRepository(db, logger),
	}
}
