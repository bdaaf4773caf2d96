package models

// Order 订单 - 租户隔离；状态由管理员触发变更，delivered和cancelled为终态
type Order struct {
	BaseModel
	TenantID    uint        `json:"tenant_id" gorm:"not null;index"`
	OrderNumber string      `json:"order_number" gorm:"uniqueIndex;not null;size:40"`
	ProfileID   uint        `json:"profile_id" gorm:"not null;index"` // 下单客户档案
	Status      string      `json:"status" gorm:"default:'pending';size:20;index"`
	TotalAmount float64     `json:"total_amount" gorm:"not null"`
	Items       []OrderItem `json:"items,omitempty" gorm:"foreignKey:OrderID"`

	Tenant  Tenant      `gorm:"foreignKey:TenantID;constraint:OnDelete:CASCADE" json:"-"`
	Profile UserProfile `gorm:"foreignKey:ProfileID" json:"-"`
}

// TableName 表名
func (Order) TableName() string {
	return "orders"
}

// OrderItem 订单行
type OrderItem struct {
	ID        uint    `json:"id" gorm:"primarykey"`
	OrderID   uint    `json:"order_id" gorm:"not null;index"`
	ProductID uint    `json:"product_id" gorm:"not null"`
	Name      string  `json:"name" gorm:"not null;size:200"` // 下单时的商品名快照
	UnitPrice float64 `json:"unit_price" gorm:"not null"`
	Quantity  int     `json:"quantity" gorm:"not null"`
	Subtotal  float64 `json:"subtotal" gorm:"not null"`
}

// TableName 表名
func (OrderItem) TableName() string {
	return "order_items"
}

// 订单状态常量
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

// IsValidOrderStatus 检查订单状态是否有效
func IsValidOrderStatus(status string) bool {
	switch status {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// IsTerminal 是否为终态
func (o *Order) IsTerminal() bool {
	return o.Status == OrderStatusDelivered || o.Status == OrderStatusCancelled
}

// CanTransitionTo 状态迁移规则：终态不可再迁移；cancelled可从任意非终态进入；
// 其余状态由管理员独立设置，不强制线性推进
func (o *Order) CanTransitionTo(target string) bool {
	if !IsValidOrderStatus(target) {
		return false
	}
	if o.IsTerminal() {
		return false
	}
	return target != o.Status
}
