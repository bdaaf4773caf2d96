package models

// UserProfile 租户内用户档案 - 用户在某一个租户内的成员资格与角色。
// 档案离开tenant_id没有意义；admin角色仅在开通商城时授予创建者一次。
type UserProfile struct {
	BaseModel
	TenantID      uint   `json:"tenant_id" gorm:"not null;uniqueIndex:idx_tenant_email"`
	StartupUserID *uint  `json:"startup_user_id" gorm:"index"` // 主站用户（租户管理员有，商城客户可无）
	Email         string `json:"email" gorm:"not null;size:100;uniqueIndex:idx_tenant_email"`
	FirstName     string `json:"first_name" gorm:"size:50"`
	LastName      string `json:"last_name" gorm:"size:50"`
	Role          string `json:"role" gorm:"not null;size:20;index"`
	IsActive      bool   `json:"is_active" gorm:"default:true"`

	Tenant      Tenant       `gorm:"foreignKey:TenantID;constraint:OnDelete:CASCADE" json:"-"`
	StartupUser *StartupUser `gorm:"foreignKey:StartupUserID" json:"-"`
}

// TableName 表名
func (UserProfile) TableName() string {
	return "user_profiles"
}

// 租户内角色常量
const (
	ProfileRoleAdmin  = "admin"
	ProfileRoleClient = "client"
)

// IsAdmin 是否为租户管理员
func (p *UserProfile) IsAdmin() bool {
	return p.Role == ProfileRoleAdmin
}
