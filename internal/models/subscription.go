package models

import (
	"time"

	"gorm.io/datatypes"
)

// SubscriptionPlan 订阅套餐 - 定义价格、限额和功能开关
type SubscriptionPlan struct {
	BaseModel
	Code         string         `json:"code" gorm:"uniqueIndex;not null;size:50"`
	Name         string         `json:"name" gorm:"not null;size:100"`
	Description  string         `json:"description" gorm:"size:500"`
	PriceMonthly float64        `json:"price_monthly" gorm:"not null"`
	PriceYearly  float64        `json:"price_yearly" gorm:"not null"`
	MaxProducts  int            `json:"max_products" gorm:"default:100"`
	MaxUsers     int            `json:"max_users" gorm:"default:5"`
	MaxStorageMB int            `json:"max_storage_mb" gorm:"default:1024"`
	Features     datatypes.JSON `json:"features"`
	Status       string         `json:"status" gorm:"default:'active';size:20"`
}

// TableName 表名
func (SubscriptionPlan) TableName() string {
	return "subscription_plans"
}

// 套餐状态常量
const (
	PlanStatusActive  = "active"
	PlanStatusRetired = "retired"
)

// Subscription 订阅 - 客户、租户与套餐的计费绑定，每个租户期望恰好一条active记录
type Subscription struct {
	BaseModel
	TenantID      uint       `json:"tenant_id" gorm:"not null;index"`
	StartupUserID uint       `json:"startup_user_id" gorm:"not null;index"`
	PlanID        uint       `json:"plan_id" gorm:"not null"`
	BillingCycle  string     `json:"billing_cycle" gorm:"not null;size:20"`
	Status        string     `json:"status" gorm:"default:'active';size:20;index"`
	StartsAt      time.Time  `json:"starts_at" gorm:"not null"`
	ExpiresAt     *time.Time `json:"expires_at"`

	Tenant Tenant           `gorm:"foreignKey:TenantID;constraint:OnDelete:CASCADE" json:"-"`
	Plan   SubscriptionPlan `gorm:"foreignKey:PlanID" json:"plan,omitempty"`
}

// TableName 表名
func (Subscription) TableName() string {
	return "customer_subscriptions"
}

// 计费周期常量
const (
	BillingCycleMonthly = "monthly"
	BillingCycleYearly  = "yearly"
)

// 订阅状态常量
const (
	SubscriptionStatusActive    = "active"
	SubscriptionStatusCancelled = "cancelled"
	SubscriptionStatusExpired   = "expired"
	SubscriptionStatusSuspended = "suspended"
)

// IsValidBillingCycle 检查计费周期是否有效
func IsValidBillingCycle(cycle string) bool {
	return cycle == BillingCycleMonthly || cycle == BillingCycleYearly
}

// PeriodEnd 按计费周期计算到期时间
func PeriodEnd(start time.Time, cycle string) time.Time {
	if cycle == BillingCycleYearly {
		return start.AddDate(1, 0, 0)
	}
	return start.AddDate(0, 1, 0)
}
