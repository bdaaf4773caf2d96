package services

import (
	"msp/internal/database"
	"msp/internal/models"

	"gorm.io/gorm"
)

// PlanService 订阅套餐服务
type PlanService struct {
	db *gorm.DB
}

func NewPlanService() *PlanService {
	return &PlanService{
		db: database.GetDB(),
	}
}

// GetAllActive 获取全部在售套餐（获客页公开展示）
func (s *PlanService) GetAllActive() ([]*models.SubscriptionPlan, error) {
	var plans []*models.SubscriptionPlan
	err := s.db.Where("status = ?", models.PlanStatusActive).
		Order("price_monthly ASC").
		Find(&plans).Error
	return plans, err
}

// GetByID 根据ID获取套餐
func (s *PlanService) GetByID(id uint) (*models.SubscriptionPlan, error) {
	var plan models.SubscriptionPlan
	err := s.db.First(&plan, id).Error
	return &plan, err
}

// GetByCode 根据代码获取套餐
func (s *PlanService) GetByCode(code string) (*models.SubscriptionPlan, error) {
	var plan models.SubscriptionPlan
	err := s.db.Where("code = ?", code).First(&plan).Error
	return &plan, err
}
