package models

import (
	"gorm.io/datatypes"
)

// ActivityLog 操作日志 - 平台与租户的关键操作审计记录
type ActivityLog struct {
	BaseModel
	TenantID   *uint          `json:"tenant_id" gorm:"index"` // 空表示平台级操作
	UserID     *uint          `json:"user_id" gorm:"index"`
	Action     string         `json:"action" gorm:"not null;size:50;index"`
	EntityType string         `json:"entity_type" gorm:"size:50"`
	EntityID   uint           `json:"entity_id"`
	Details    datatypes.JSON `json:"details"`
	ClientIP   string         `json:"client_ip" gorm:"size:45"`
}

// TableName 表名
func (ActivityLog) TableName() string {
	return "activity_logs"
}

// 操作类型常量
const (
	ActionMarketplaceCreated   = "marketplace.created"
	ActionMarketplaceRemoved   = "marketplace.removed"
	ActionTenantSuspended      = "tenant.suspended"
	ActionTenantActivated      = "tenant.activated"
	ActionSettingsUpdated      = "settings.updated"
	ActionOrderCreated         = "order.created"
	ActionOrderStatusChanged   = "order.status_changed"
	ActionSubscriptionChanged  = "subscription.changed"
	ActionProfileCreated       = "profile.created"
	ActionProfileDeactivated   = "profile.deactivated"
)
