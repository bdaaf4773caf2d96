package services

import (
	"errors"
	"fmt"

	"msp/internal/database"
	"msp/internal/models"
	apperrors "msp/pkg/errors"

	"gorm.io/gorm"
)

// TenantService 租户管理 - 平台管理员视角的租户查询与状态管理。
// 租户的创建走ProvisioningService，这里不提供创建入口。
type TenantService struct {
	db       *gorm.DB
	activity *ActivityService
}

// TenantStats 租户统计信息
type TenantStats struct {
	Total     int64 `json:"total"`
	Active    int64 `json:"active"`
	Suspended int64 `json:"suspended"`
	Cancelled int64 `json:"cancelled"`
}

func NewTenantService() *TenantService {
	return &TenantService{
		db:       database.GetDB(),
		activity: NewActivityService(),
	}
}

// GetWithFiltersAndPage 组合查询（分页版本）
func (s *TenantService) GetWithFiltersAndPage(status, keyword string, page, pageSize int) ([]*models.Tenant, int64, error) {
	var tenants []*models.Tenant
	var total int64

	query := s.db.Model(&models.Tenant{})

	if status != "" {
		query = query.Where("status = ?", status)
	}
	if keyword != "" {
		searchPattern := fmt.Sprintf("%%%s%%", keyword)
		query = query.Where("name LIKE ? OR subdomain LIKE ?", searchPattern, searchPattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&tenants).Error
	if err != nil {
		return nil, 0, err
	}

	return tenants, total, nil
}

// GetByID 根据ID获取租户
func (s *TenantService) GetByID(id uint) (*models.Tenant, error) {
	var tenant models.Tenant
	err := s.db.First(&tenant, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("租户不存在")
		}
		return nil, err
	}
	return &tenant, nil
}

// Suspend 暂停租户（停止对外服务）
func (s *TenantService) Suspend(id uint, operatorID *uint) (*models.Tenant, error) {
	return s.setStatus(id, models.TenantStatusSuspended, models.ActionTenantSuspended, operatorID)
}

// Activate 恢复租户
func (s *TenantService) Activate(id uint, operatorID *uint) (*models.Tenant, error) {
	return s.setStatus(id, models.TenantStatusActive, models.ActionTenantActivated, operatorID)
}

func (s *TenantService) setStatus(id uint, status, action string, operatorID *uint) (*models.Tenant, error) {
	tenant, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(tenant).Update("status", status).Error; err != nil {
		return nil, err
	}
	tenant.Status = status

	s.activity.Record(nil, operatorID, action, "tenant", tenant.ID, map[string]interface{}{
		"subdomain": tenant.SubdomainName(),
	})
	return tenant, nil
}

// GetStats 获取租户统计
func (s *TenantService) GetStats() (*TenantStats, error) {
	stats := &TenantStats{}

	s.db.Model(&models.Tenant{}).Count(&stats.Total)
	s.db.Model(&models.Tenant{}).Where("status = ?", models.TenantStatusActive).Count(&stats.Active)
	s.db.Model(&models.Tenant{}).Where("status = ?", models.TenantStatusSuspended).Count(&stats.Suspended)
	s.db.Model(&models.Tenant{}).Where("status = ?", models.TenantStatusCancelled).Count(&stats.Cancelled)

	return stats, nil
}

// Hosts 租户对外的全部主机名（缓存失效用）
func (s *TenantService) Hosts(tenant *models.Tenant, baseDomain string) []string {
	var hosts []string
	if tenant.HasSubdomain() {
		hosts = append(hosts, fmt.Sprintf("%s.%s", tenant.SubdomainName(), baseDomain))
	}
	if tenant.CustomDomain != nil && *tenant.CustomDomain != "" {
		hosts = append(hosts, *tenant.CustomDomain)
	}
	return hosts
}
