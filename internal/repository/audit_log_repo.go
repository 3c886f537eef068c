package repository

import (
	"context"

	"github.com/bitfantasy/potrack/internal/entity"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AuditLogRepository 审计日志仓库
type AuditLogRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewAuditLogRepository(db *gorm.DB, logger *zap.Logger) *AuditLogRepository {
	return &AuditLogRepository{db: db, logger: logger}
}

// Log 在事务内写一条审计日志。写失败只告警不返回错误；
// postgres下失败的插入仍会使当前事务中止。
func (r *AuditLogRepository) Log(ctx context.Context, tx *gorm.DB, orgID, userID, action, entityType, entityID, detail string) {
	log := entity.AuditLog{
		ID:         uuid.New().String()[:32],
		OrgID:      orgID,
		UserID:     userID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Detail:     detail,
	}
	if err := tx.WithContext(ctx).Create(&log).Error; err != nil {
		r.logger.Warn("Failed to write audit log",
			zap.String("action", action),
			zap.String("entity_type", entityType),
			zap.String("entity_id", entityID),
			zap.Error(err))
	}
}

// FindByEntity 某实体的审计记录（新到旧）
func (r *AuditLogRepository) FindByEntity(ctx context.Context, orgID, entityType, entityID string) ([]entity.AuditLog, error) {
	logs := make([]entity.AuditLog, 0)
	err := r.db.WithContext(ctx).
		Where("org_id = ? AND entity_type = ? AND entity_id = ?", orgID, entityType, entityID).
		Order("created_at DESC").
		Find(&logs).Error
	return logs, err
}
