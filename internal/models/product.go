package models

// Category 商品分类 - 租户隔离，开通时创建一个默认分类
type Category struct {
	BaseModel
	TenantID  uint   `json:"tenant_id" gorm:"not null;uniqueIndex:idx_tenant_category_slug"`
	Name      string `json:"name" gorm:"not null;size:100"`
	Slug      string `json:"slug" gorm:"not null;size:100;uniqueIndex:idx_tenant_category_slug"`
	SortOrder int    `json:"sort_order" gorm:"default:0"`

	Tenant Tenant `gorm:"foreignKey:TenantID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName 表名
func (Category) TableName() string {
	return "categories"
}

// Product 商品 - 租户隔离，SKU在租户内唯一
type Product struct {
	BaseModel
	TenantID    uint    `json:"tenant_id" gorm:"not null;uniqueIndex:idx_tenant_sku"`
	CategoryID  *uint   `json:"category_id" gorm:"index"`
	Name        string  `json:"name" gorm:"not null;size:200"`
	SKU         string  `json:"sku" gorm:"not null;size:64;uniqueIndex:idx_tenant_sku"`
	Description string  `json:"description" gorm:"size:2000"`
	Price       float64 `json:"price" gorm:"not null"`
	Stock       int     `json:"stock" gorm:"default:0"`
	IsActive    bool    `json:"is_active" gorm:"default:true"`

	Tenant   Tenant    `gorm:"foreignKey:TenantID;constraint:OnDelete:CASCADE" json:"-"`
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

// TableName 表名
func (Product) TableName() string {
	return "products"
}
