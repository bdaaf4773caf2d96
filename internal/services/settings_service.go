package services

import (
	"context"
	"errors"
	"fmt"

	"msp/internal/database"
	"msp/internal/models"
	"msp/pkg/cache"
	"msp/pkg/logger"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SettingsService 商城设置服务
type SettingsService struct {
	db    *gorm.DB
	cache *cache.RedisCache
	log   *logrus.Logger
}

func NewSettingsService() *SettingsService {
	return &SettingsService{
		db:    database.GetDB(),
		cache: database.GetRedisCache(),
		log:   logger.GetLogger(),
	}
}

func settingsCacheKey(tenantID uint) string {
	return fmt.Sprintf("settings:%d", tenantID)
}

// GetByTenant 获取商城设置；尚未配置时返回默认值而不是报错
func (s *SettingsService) GetByTenant(ctx context.Context, tenantID uint) (*models.MarketplaceSettings, error) {
	if s.cache != nil {
		var cached models.MarketplaceSettings
		hit, err := s.cache.GetJSON(ctx, settingsCacheKey(tenantID), &cached)
		if err != nil {
			s.log.Warnf("设置缓存读取失败 tenant=%d: %v", tenantID, err)
		} else if hit {
			return &cached, nil
		}
	}

	var settings models.MarketplaceSettings
	err := s.db.Where("tenant_id = ?", tenantID).First(&settings).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 降级为默认视图，公司名取租户名
			var tenant models.Tenant
			if err := s.db.First(&tenant, tenantID).Error; err != nil {
				return nil, err
			}
			return models.DefaultMarketplaceSettings(tenantID, tenant.Name), nil
		}
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, settingsCacheKey(tenantID), &settings); err != nil {
			s.log.Warnf("设置缓存写入失败 tenant=%d: %v", tenantID, err)
		}
	}
	return &settings, nil
}

// UpdateSettingsRequest 更新请求：指针字段区分"未提交"和"置为零值"
type UpdateSettingsRequest struct {
	PublicAccess   *bool   `json:"public_access"`
	ShowPrices     *bool   `json:"show_prices"`
	ShowStock      *bool   `json:"show_stock"`
	ShowCategories *bool   `json:"show_categories"`
	LogoURL        *string `json:"logo_url"`
	PrimaryColor   *string `json:"primary_color"`
}

// Update 更新商城设置并显式失效缓存
func (s *SettingsService) Update(ctx context.Context, tenantID uint, req *UpdateSettingsRequest) (*models.MarketplaceSettings, error) {
	var settings models.MarketplaceSettings
	if err := s.db.Where("tenant_id = ?", tenantID).First(&settings).Error; err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.PublicAccess != nil {
		updates["public_access"] = *req.PublicAccess
	}
	if req.ShowPrices != nil {
		updates["show_prices"] = *req.ShowPrices
	}
	if req.ShowStock != nil {
		updates["show_stock"] = *req.ShowStock
	}
	if req.ShowCategories != nil {
		updates["show_categories"] = *req.ShowCategories
	}
	if req.LogoURL != nil {
		updates["logo_url"] = *req.LogoURL
	}
	if req.PrimaryColor != nil {
		updates["primary_color"] = *req.PrimaryColor
	}

	if len(updates) > 0 {
		if err := s.db.Model(&settings).Updates(updates).Error; err != nil {
			return nil, err
		}
		if err := s.db.Where("tenant_id = ?", tenantID).First(&settings).Error; err != nil {
			return nil, err
		}
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, settingsCacheKey(tenantID)); err != nil {
			s.log.Warnf("设置缓存失效失败 tenant=%d: %v", tenantID, err)
		}
	}
	return &settings, nil
}
