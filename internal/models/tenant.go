package models

// Tenant 租户模型 - 一个独立的商城实例，通过子域名或自定义域名访问。
// 两个域名字段都可为空（NULL不参与唯一约束），但至少有一个非空，
// 这由开通流程的校验保证
type Tenant struct {
	BaseModel
	Name         string  `json:"name" gorm:"not null;size:100"`
	Subdomain    *string `json:"subdomain" gorm:"uniqueIndex;size:63"`
	CustomDomain *string `json:"custom_domain" gorm:"uniqueIndex;size:255"`
	Status       string  `json:"status" gorm:"default:'provisioning';size:20;index"`
}

// TableName 表名
func (t *Tenant) TableName() string {
	return "tenants"
}

// 租户状态常量
const (
	TenantStatusProvisioning = "provisioning"
	TenantStatusActive       = "active"
	TenantStatusSuspended    = "suspended"
	TenantStatusCancelled    = "cancelled"
)

// IsServable 租户是否可对外提供服务
func (t *Tenant) IsServable() bool {
	return t.Status == TenantStatusActive
}

// HasSubdomain 是否配置了平台子域名
func (t *Tenant) HasSubdomain() bool {
	return t.Subdomain != nil && *t.Subdomain != ""
}

// SubdomainName 子域名取值，未配置时返回空串
func (t *Tenant) SubdomainName() string {
	if t.Subdomain == nil {
		return ""
	}
	return *t.Subdomain
}
