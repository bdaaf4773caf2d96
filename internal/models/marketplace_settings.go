package models

// MarketplaceSettings 商城设置 - 与租户一对一，开通时创建，后续由租户管理员修改
type MarketplaceSettings struct {
	BaseModel
	TenantID       uint   `json:"tenant_id" gorm:"uniqueIndex;not null"`
	PublicAccess   bool   `json:"public_access" gorm:"default:true"`
	ShowPrices     bool   `json:"show_prices" gorm:"default:true"`
	ShowStock      bool   `json:"show_stock" gorm:"default:false"`
	ShowCategories bool   `json:"show_categories" gorm:"default:true"`
	CompanyName    string `json:"company_name" gorm:"uniqueIndex;not null;size:100"`
	LogoURL        string `json:"logo_url" gorm:"size:255"`
	PrimaryColor   string `json:"primary_color" gorm:"size:20;default:'#2563eb'"`

	Tenant Tenant `gorm:"foreignKey:TenantID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName 表名
func (MarketplaceSettings) TableName() string {
	return "marketplace_settings"
}

// DefaultMarketplaceSettings 未配置时的默认视图：读取方降级使用默认值而不是报错
func DefaultMarketplaceSettings(tenantID uint, companyName string) *MarketplaceSettings {
	return &MarketplaceSettings{
		TenantID:       tenantID,
		PublicAccess:   true,
		ShowPrices:     true,
		ShowStock:      false,
		ShowCategories: true,
		CompanyName:    companyName,
		PrimaryColor:   "#2563eb",
	}
}
