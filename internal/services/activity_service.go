package services

import (
	"encoding/json"

	"msp/internal/database"
	"msp/internal/models"
	"msp/pkg/logger"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ActivityService 操作日志服务
type ActivityService struct {
	db  *gorm.DB
	log *logrus.Logger
}

func NewActivityService() *ActivityService {
	return &ActivityService{
		db:  database.GetDB(),
		log: logger.GetLogger(),
	}
}

// Record 记录一条操作日志；日志写入失败不影响主流程，只打警告
func (s *ActivityService) Record(tenantID, userID *uint, action, entityType string, entityID uint, details map[string]interface{}) {
	var payload []byte
	if details != nil {
		payload, _ = json.Marshal(details)
	}

	entry := &models.ActivityLog{
		TenantID:   tenantID,
		UserID:     userID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    payload,
	}
	if err := s.db.Create(entry).Error; err != nil {
		s.log.Warnf("写入操作日志失败 action=%s: %v", action, err)
	}
}

// GetWithFiltersAndPage 组合查询（分页版本）
func (s *ActivityService) GetWithFiltersAndPage(tenantID *uint, action string, page, pageSize int) ([]*models.ActivityLog, int64, error) {
	var logs []*models.ActivityLog
	var total int64

	query := s.db.Model(&models.ActivityLog{})
	if tenantID != nil {
		query = query.Where("tenant_id = ?", *tenantID)
	}
	if action != "" {
		query = query.Where("action = ?", action)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&logs).Error
	if err != nil {
		return nil, 0, err
	}

	return logs, total, nil
}
