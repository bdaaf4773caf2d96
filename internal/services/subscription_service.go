package services

import (
	"errors"
	"time"

	"msp/internal/database"
	"msp/internal/models"
	apperrors "msp/pkg/errors"
	"msp/pkg/logger"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SubscriptionService 订阅服务
type SubscriptionService struct {
	db       *gorm.DB
	log      *logrus.Logger
	activity *ActivityService
}

func NewSubscriptionService() *SubscriptionService {
	return &SubscriptionService{
		db:       database.GetDB(),
		log:      logger.GetLogger(),
		activity: NewActivityService(),
	}
}

// GetActiveByTenant 获取租户当前的有效订阅
func (s *SubscriptionService) GetActiveByTenant(tenantID uint) (*models.Subscription, error) {
	var subscription models.Subscription
	err := s.db.Where("tenant_id = ? AND status = ?", tenantID, models.SubscriptionStatusActive).
		Preload("Plan").
		First(&subscription).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("租户没有有效订阅")
		}
		return nil, err
	}
	return &subscription, nil
}

// Cancel 取消订阅并暂停租户
func (s *SubscriptionService) Cancel(tenantID uint, operatorID *uint) (*models.Subscription, error) {
	subscription, err := s.GetActiveByTenant(tenantID)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(subscription).Update("status", models.SubscriptionStatusCancelled).Error; err != nil {
			return err
		}
		return tx.Model(&models.Tenant{}).Where("id = ?", tenantID).
			Update("status", models.TenantStatusSuspended).Error
	})
	if err != nil {
		return nil, err
	}

	subscription.Status = models.SubscriptionStatusCancelled
	s.activity.Record(&tenantID, operatorID, models.ActionSubscriptionChanged, "subscription", subscription.ID, map[string]interface{}{
		"status": models.SubscriptionStatusCancelled,
	})
	return subscription, nil
}

// Renew 续期订阅：从当前到期时间（或现在取较晚者）按周期顺延
func (s *SubscriptionService) Renew(tenantID uint, operatorID *uint) (*models.Subscription, error) {
	var subscription models.Subscription
	err := s.db.Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		Preload("Plan").
		First(&subscription).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("租户没有订阅记录")
		}
		return nil, err
	}

	base := time.Now()
	if subscription.ExpiresAt != nil && subscription.ExpiresAt.After(base) {
		base = *subscription.ExpiresAt
	}
	expires := models.PeriodEnd(base, subscription.BillingCycle)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&subscription).Updates(map[string]interface{}{
			"status":     models.SubscriptionStatusActive,
			"expires_at": expires,
		}).Error; err != nil {
			return err
		}
		return tx.Model(&models.Tenant{}).Where("id = ?", tenantID).
			Update("status", models.TenantStatusActive).Error
	})
	if err != nil {
		return nil, err
	}

	subscription.Status = models.SubscriptionStatusActive
	subscription.ExpiresAt = &expires
	s.activity.Record(&tenantID, operatorID, models.ActionSubscriptionChanged, "subscription", subscription.ID, map[string]interface{}{
		"status":     models.SubscriptionStatusActive,
		"expires_at": expires,
	})
	return &subscription, nil
}

// SweepExpired 把过期的active订阅标记为expired并暂停对应租户，
// 由定时任务调用，返回处理数量
func (s *SubscriptionService) SweepExpired() (int, error) {
	var expired []models.Subscription
	err := s.db.Where("status = ? AND expires_at IS NOT NULL AND expires_at < ?",
		models.SubscriptionStatusActive, time.Now()).
		Find(&expired).Error
	if err != nil {
		return 0, err
	}

	swept := 0
	for _, subscription := range expired {
		err := s.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&models.Subscription{}).Where("id = ?", subscription.ID).
				Update("status", models.SubscriptionStatusExpired).Error; err != nil {
				return err
			}
			return tx.Model(&models.Tenant{}).Where("id = ?", subscription.TenantID).
				Update("status", models.TenantStatusSuspended).Error
		})
		if err != nil {
			s.log.Errorf("标记过期订阅失败 subscription=%d: %v", subscription.ID, err)
			continue
		}
		swept++
	}
	return swept, nil
}
