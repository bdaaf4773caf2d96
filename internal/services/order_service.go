package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"msp/internal/database"
	"msp/internal/models"
	"msp/pkg/cache"
	apperrors "msp/pkg/errors"
	"msp/pkg/logger"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// OrderService 订单服务
type OrderService struct {
	db       *gorm.DB
	cache    *cache.RedisCache
	log      *logrus.Logger
	activity *ActivityService
}

func NewOrderService() *OrderService {
	return &OrderService{
		db:       database.GetDB(),
		cache:    database.GetRedisCache(),
		log:      logger.GetLogger(),
		activity: NewActivityService(),
	}
}

// OrderEvent 订单事件，经Redis频道广播给订阅的管理端连接
type OrderEvent struct {
	TenantID    uint      `json:"tenant_id"`
	OrderID     uint      `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	Status      string    `json:"status"`
	TotalAmount float64   `json:"total_amount"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// OrderEventChannel 租户订单事件频道名
func OrderEventChannel(tenantID uint) string {
	return fmt.Sprintf("orders:%d", tenantID)
}

// CreateOrderItem 下单请求中的一行
type CreateOrderItem struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

// CreateOrderRequest 下单请求
type CreateOrderRequest struct {
	Items []CreateOrderItem `json:"items" binding:"required,min=1,dive"`
}

// Create 结账下单：校验商品属于本租户且有货，价格以数据库为准，
// 扣减库存和建单在同一事务内完成
func (s *OrderService) Create(tenantID, profileID uint, req *CreateOrderRequest) (*models.Order, error) {
	if len(req.Items) == 0 {
		return nil, apperrors.NewValidation("订单至少包含一件商品")
	}

	order := &models.Order{
		TenantID:    tenantID,
		OrderNumber: newOrderNumber(),
		ProfileID:   profileID,
		Status:      models.OrderStatusPending,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var total float64
		items := make([]models.OrderItem, 0, len(req.Items))

		for _, line := range req.Items {
			var product models.Product
			err := tx.Where("id = ? AND tenant_id = ? AND is_active = ?", line.ProductID, tenantID, true).
				First(&product).Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperrors.NewValidation(fmt.Sprintf("商品 %d 不存在或已下架", line.ProductID))
				}
				return err
			}
			// 条件更新是库存的唯一裁决：两个并发订单都读到同一库存时，
			// 只有先提交的扣减成功，后者影响0行
			res := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", product.ID, line.Quantity).
				Update("stock", gorm.Expr("stock - ?", line.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return apperrors.NewValidation(fmt.Sprintf("商品 %s 库存不足", product.Name))
			}

			subtotal := product.Price * float64(line.Quantity)
			total += subtotal
			items = append(items, models.OrderItem{
				ProductID: product.ID,
				Name:      product.Name,
				UnitPrice: product.Price,
				Quantity:  line.Quantity,
				Subtotal:  subtotal,
			})
		}

		order.TotalAmount = total
		order.Items = items
		return tx.Create(order).Error
	})
	if err != nil {
		return nil, err
	}

	s.activity.Record(&tenantID, &profileID, models.ActionOrderCreated, "order", order.ID, map[string]interface{}{
		"order_number": order.OrderNumber,
		"total_amount": order.TotalAmount,
	})
	s.publishEvent(order)

	return order, nil
}

// GetByID 获取订单（租户隔离）
func (s *OrderService) GetByID(tenantID, orderID uint) (*models.Order, error) {
	var order models.Order
	err := s.db.Where("id = ? AND tenant_id = ?", orderID, tenantID).
		Preload("Items").
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("订单不存在")
		}
		return nil, err
	}
	return &order, nil
}

// GetWithFiltersAndPage 组合查询（分页版本）。profileID非空时只返回该成员自己的订单
func (s *OrderService) GetWithFiltersAndPage(tenantID uint, profileID *uint, status, keyword string, page, pageSize int) ([]*models.Order, int64, error) {
	var orders []*models.Order
	var total int64

	query := s.db.Model(&models.Order{}).Where("tenant_id = ?", tenantID)
	if profileID != nil {
		query = query.Where("profile_id = ?", *profileID)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if keyword != "" {
		query = query.Where("order_number LIKE ?", "%"+keyword+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).
		Preload("Items").
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

// UpdateStatus 管理员触发的状态变更；终态订单拒绝任何迁移
func (s *OrderService) UpdateStatus(tenantID, orderID uint, target string, operatorID *uint) (*models.Order, error) {
	if !models.IsValidOrderStatus(target) {
		return nil, apperrors.NewValidation("订单状态不合法")
	}

	order, err := s.GetByID(tenantID, orderID)
	if err != nil {
		return nil, err
	}

	if !order.CanTransitionTo(target) {
		if order.IsTerminal() {
			return nil, apperrors.NewValidation(fmt.Sprintf("订单已%s，状态不可再变更", statusLabel(order.Status)))
		}
		return nil, apperrors.NewValidation("订单已处于该状态")
	}

	// 以读取到的状态为前置条件更新，并发变更抢先提交时影响0行，
	// 终态检查不会被绕过
	previous := order.Status
	res := s.db.Model(&models.Order{}).
		Where("id = ? AND tenant_id = ? AND status = ?", order.ID, tenantID, previous).
		Update("status", target)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, apperrors.NewConflict("订单状态已被其他操作变更，请刷新后重试")
	}
	order.Status = target

	s.activity.Record(&tenantID, operatorID, models.ActionOrderStatusChanged, "order", order.ID, map[string]interface{}{
		"order_number": order.OrderNumber,
		"from":         previous,
		"to":           target,
	})
	s.publishEvent(order)

	return order, nil
}

// ExportXLSX 导出租户订单为Excel工作簿
func (s *OrderService) ExportXLSX(tenantID uint, status string) (*excelize.File, error) {
	var orders []*models.Order
	query := s.db.Where("tenant_id = ?", tenantID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Order("created_at DESC").Preload("Items").Find(&orders).Error; err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	sheet := "Orders"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"订单号", "状态", "金额", "商品数", "创建时间"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, order := range orders {
		quantity := 0
		for _, item := range order.Items {
			quantity += item.Quantity
		}
		values := []interface{}{
			order.OrderNumber,
			order.Status,
			order.TotalAmount,
			quantity,
			order.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	return f, nil
}

// publishEvent 广播订单事件；Redis不可用只影响实时推送，不影响订单本身
func (s *OrderService) publishEvent(order *models.Order) {
	if s.cache == nil {
		return
	}
	event := &OrderEvent{
		TenantID:    order.TenantID,
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Status:      order.Status,
		TotalAmount: order.TotalAmount,
		OccurredAt:  time.Now(),
	}
	if err := s.cache.Publish(context.Background(), OrderEventChannel(order.TenantID), event); err != nil {
		s.log.Warnf("订单事件广播失败 order=%d: %v", order.ID, err)
	}
}

// newOrderNumber 生成订单号
func newOrderNumber() string {
	return "ORD-" + strings.ToUpper(uuid.NewString()[:13])
}

func statusLabel(status string) string {
	switch status {
	case models.OrderStatusDelivered:
		return "送达"
	case models.OrderStatusCancelled:
		return "取消"
	default:
		return status
	}
}
