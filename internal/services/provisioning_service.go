package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"msp/internal/database"
	"msp/internal/models"
	"msp/pkg/config"
	apperrors "msp/pkg/errors"
	"msp/pkg/identity"
	"msp/pkg/logger"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ProvisioningService 商城开通 - 在一个数据库事务内创建租户、商城设置、
// 管理员档案和订阅，四者要么全部存在要么全部不存在，任何时刻都
// 不会出现可被访问到的半成品租户。
type ProvisioningService struct {
	db           *gorm.DB
	log          *logrus.Logger
	availability *AvailabilityService
	identity     *identity.Client
	activity     *ActivityService
}

func NewProvisioningService() *ProvisioningService {
	return &ProvisioningService{
		db:           database.GetDB(),
		log:          logger.GetLogger(),
		availability: NewAvailabilityService(),
		identity:     identity.GetClient(),
		activity:     NewActivityService(),
	}
}

// ProvisionRequest 开通请求
type ProvisionRequest struct {
	CompanyName  string `json:"company_name" binding:"required"`
	FirstName    string `json:"first_name" binding:"required"`
	LastName     string `json:"last_name" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=8"`
	Subdomain    string `json:"subdomain"`
	CustomDomain string `json:"custom_domain"`
	PublicAccess *bool  `json:"public_access"`
	PrimaryColor string `json:"primary_color"`
	PlanID       uint   `json:"plan_id" binding:"required"`
	BillingCycle string `json:"billing_cycle" binding:"required"`
}

// ProvisionResult 开通结果
type ProvisionResult struct {
	TenantID       uint   `json:"tenant_id"`
	MarketplaceURL string `json:"marketplace_url"`
	AdminLoginURL  string `json:"admin_login_url"`
}

// normalize 入参归一化：域名和邮箱转小写，公司名去空白
func (r *ProvisionRequest) normalize() {
	r.CompanyName = strings.TrimSpace(r.CompanyName)
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Email = NormalizeEmail(r.Email)
	r.Subdomain = NormalizeSubdomain(r.Subdomain)
	r.CustomDomain = NormalizeSubdomain(r.CustomDomain)
}

// validate 表单级校验，返回全部可纠正的错误而不是第一条
func (r *ProvisionRequest) validate() []string {
	var errs []string
	if r.CompanyName == "" {
		errs = append(errs, "公司名称不能为空")
	}
	if r.FirstName == "" || r.LastName == "" {
		errs = append(errs, "管理员姓名不能为空")
	}
	if r.Email == "" || !strings.Contains(r.Email, "@") {
		errs = append(errs, "邮箱格式不合法")
	}
	if len(r.Password) < 8 {
		errs = append(errs, "密码长度至少8位")
	}
	if r.Subdomain == "" && r.CustomDomain == "" {
		errs = append(errs, "子域名和自定义域名至少填写一个")
	}
	if !models.IsValidBillingCycle(r.BillingCycle) {
		errs = append(errs, "计费周期只能是 monthly 或 yearly")
	}
	return errs
}

// tenant 构造租户行。未填写的域名字段保持NULL：空串会参与唯一约束，
// 第二个只填自定义域名的商城就开不出来了
func (r *ProvisionRequest) tenant() *models.Tenant {
	t := &models.Tenant{
		Name:   r.CompanyName,
		Status: models.TenantStatusActive,
	}
	if r.Subdomain != "" {
		t.Subdomain = &r.Subdomain
	}
	if r.CustomDomain != "" {
		t.CustomDomain = &r.CustomDomain
	}
	return t
}

// Provision 开通商城
//
// 步骤3-6在同一个事务内顺序执行；预检查通过后仍可能与并发请求在插入时
// 相撞，唯一约束冲突被翻译成与预检查一致的占用错误返回调用方。
func (s *ProvisioningService) Provision(req *ProvisionRequest) (*ProvisionResult, error) {
	req.normalize()

	if errs := req.validate(); len(errs) > 0 {
		return nil, apperrors.NewValidationList(errs)
	}

	if err := s.checkAvailability(req); err != nil {
		return nil, err
	}

	// 套餐必须存在且在售
	var plan models.SubscriptionPlan
	if err := s.db.Where("id = ? AND status = ?", req.PlanID, models.PlanStatusActive).First(&plan).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewValidation("所选套餐不存在或已下架")
		}
		return nil, err
	}

	// 先在身份服务登记凭证；数据库事务失败时注销，避免悬挂的身份主体
	subjectID, err := s.identity.Register(req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	admin := &models.StartupUser{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		SubjectID: subjectID,
		Status:    models.StartupUserStatusActive,
	}
	if err := admin.SetPassword(req.Password); err != nil {
		return nil, err
	}

	tenant := req.tenant()

	err = s.db.Transaction(func(tx *gorm.DB) error {
		// 步骤3：租户。唯一约束是并发开通的最终裁决
		if err := tx.Create(tenant).Error; err != nil {
			return s.translateDuplicate(err, req)
		}

		// 步骤4：商城设置
		settings := &models.MarketplaceSettings{
			TenantID:       tenant.ID,
			PublicAccess:   req.PublicAccess == nil || *req.PublicAccess,
			ShowPrices:     true,
			ShowStock:      false,
			ShowCategories: true,
			CompanyName:    req.CompanyName,
			PrimaryColor:   req.PrimaryColor,
		}
		if settings.PrimaryColor == "" {
			settings.PrimaryColor = "#2563eb"
		}
		if err := tx.Create(settings).Error; err != nil {
			return s.translateDuplicate(err, req)
		}

		// 商品分类脚手架：一个默认分类
		defaultCategory := &models.Category{
			TenantID: tenant.ID,
			Name:     "默认分类",
			Slug:     "default",
		}
		if err := tx.Create(defaultCategory).Error; err != nil {
			return err
		}

		// 步骤5：管理员账号与档案。admin角色仅在此处授予一次
		if err := tx.Create(admin).Error; err != nil {
			return s.translateDuplicate(err, req)
		}
		profile := &models.UserProfile{
			TenantID:      tenant.ID,
			StartupUserID: &admin.ID,
			Email:         req.Email,
			FirstName:     req.FirstName,
			LastName:      req.LastName,
			Role:          models.ProfileRoleAdmin,
			IsActive:      true,
		}
		if err := tx.Create(profile).Error; err != nil {
			return s.translateDuplicate(err, req)
		}

		// 步骤6：订阅
		now := time.Now()
		expires := models.PeriodEnd(now, req.BillingCycle)
		subscription := &models.Subscription{
			TenantID:      tenant.ID,
			StartupUserID: admin.ID,
			PlanID:        plan.ID,
			BillingCycle:  req.BillingCycle,
			Status:        models.SubscriptionStatusActive,
			StartsAt:      now,
			ExpiresAt:     &expires,
		}
		return tx.Create(subscription).Error
	})

	if err != nil {
		// 事务已整体回滚，补偿身份服务侧的登记
		if revokeErr := s.identity.RevokeSubject(subjectID); revokeErr != nil {
			s.log.Warnf("回滚身份主体失败 subject=%s: %v", subjectID, revokeErr)
		}
		return nil, err
	}

	s.activity.Record(nil, &admin.ID, models.ActionMarketplaceCreated, "tenant", tenant.ID, map[string]interface{}{
		"subdomain":     req.Subdomain,
		"custom_domain": req.CustomDomain,
		"plan":          plan.Code,
		"billing_cycle": req.BillingCycle,
	})

	s.log.Infof("Marketplace provisioned: tenant=%d subdomain=%s plan=%s", tenant.ID, tenant.SubdomainName(), plan.Code)

	return &ProvisionResult{
		TenantID:       tenant.ID,
		MarketplaceURL: s.marketplaceURL(tenant),
		AdminLoginURL:  s.marketplaceURL(tenant) + config.GetConfig().Platform.AdminPathFormat,
	}, nil
}

// checkAvailability 预检查全部唯一性字段，汇总所有冲突一次性返回
func (s *ProvisioningService) checkAvailability(req *ProvisionRequest) error {
	var errs []string

	if req.Subdomain != "" {
		result, err := s.availability.CheckSubdomain(req.Subdomain)
		if err != nil {
			return err
		}
		if !result.Available {
			errs = append(errs, result.Message)
		}
	}
	if req.CustomDomain != "" {
		result, err := s.availability.CheckCustomDomain(req.CustomDomain)
		if err != nil {
			return err
		}
		if !result.Available {
			errs = append(errs, result.Message)
		}
	}
	result, err := s.availability.CheckCompanyName(req.CompanyName)
	if err != nil {
		return err
	}
	if !result.Available {
		errs = append(errs, result.Message)
	}
	result, err = s.availability.CheckAdminEmail(req.Email)
	if err != nil {
		return err
	}
	if !result.Available {
		errs = append(errs, result.Message)
	}

	if len(errs) > 0 {
		return &apperrors.AppError{Kind: apperrors.KindConflict, Message: errs[0], Messages: errs}
	}
	return nil
}

// translateDuplicate 把插入时的唯一约束冲突翻译成与预检查一致的占用错误
func (s *ProvisioningService) translateDuplicate(err error, req *ProvisionRequest) error {
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return err
	}
	// 重新查询定位被抢占的字段，给出可纠正的提示
	var count int64
	if req.Subdomain != "" {
		s.db.Model(&models.Tenant{}).Where("subdomain = ?", req.Subdomain).Count(&count)
		if count > 0 {
			return apperrors.NewConflict(fmt.Sprintf("子域名 %s 已被占用", req.Subdomain))
		}
	}
	if req.CustomDomain != "" {
		s.db.Model(&models.Tenant{}).Where("custom_domain = ?", req.CustomDomain).Count(&count)
		if count > 0 {
			return apperrors.NewConflict(fmt.Sprintf("域名 %s 已被占用", req.CustomDomain))
		}
	}
	s.db.Model(&models.StartupUser{}).Where("email = ?", req.Email).Count(&count)
	if count > 0 {
		return apperrors.NewConflict(fmt.Sprintf("邮箱 %s 已被注册", req.Email))
	}
	return apperrors.NewConflict(fmt.Sprintf("公司名称 %s 已被使用", req.CompanyName))
}

// marketplaceURL 自定义域名优先，否则使用平台子域名
func (s *ProvisioningService) marketplaceURL(tenant *models.Tenant) string {
	if tenant.CustomDomain != nil && *tenant.CustomDomain != "" {
		return "https://" + *tenant.CustomDomain
	}
	return fmt.Sprintf("https://%s.%s", tenant.SubdomainName(), config.GetConfig().Platform.BaseDomain)
}

// ========== 补偿与注销 ==========

// RemoveTenantData 补偿器：按子表到父表的顺序删除租户的全部数据。
// 删除不存在的行是空操作，可以安全重复执行。开通流程本身由事务保证
// 原子性，这里服务于显式注销和对历史半成品租户的修复。
func RemoveTenantData(db *gorm.DB, tenantID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		// 订单行先于订单
		if err := tx.Where("order_id IN (?)",
			tx.Model(&models.Order{}).Select("id").Where("tenant_id = ?", tenantID),
		).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		for _, m := range []interface{}{
			&models.Order{},
			&models.Product{},
			&models.Category{},
			&models.UserProfile{},
			&models.Subscription{},
			&models.MarketplaceSettings{},
		} {
			if err := tx.Where("tenant_id = ?", tenantID).Delete(m).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.Tenant{}, tenantID).Error
	})
}

// Deprovision 注销商城：清除租户全部数据并记录审计日志
func (s *ProvisioningService) Deprovision(tenantID uint, operatorID *uint) error {
	var tenant models.Tenant
	if err := s.db.First(&tenant, tenantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NewNotFound("租户不存在")
		}
		return err
	}

	if err := RemoveTenantData(s.db, tenantID); err != nil {
		return err
	}

	s.activity.Record(nil, operatorID, models.ActionMarketplaceRemoved, "tenant", tenantID, map[string]interface{}{
		"subdomain": tenant.SubdomainName(),
	})
	s.log.Infof("Marketplace deprovisioned: tenant=%d subdomain=%s", tenantID, tenant.SubdomainName())
	return nil
}

// Repair 修复半成品租户：设置、管理员档案或订阅缺失的租户不可服务，
// 清掉它让用户重新开通
func (s *ProvisioningService) Repair(tenantID uint, operatorID *uint) (bool, error) {
	var tenant models.Tenant
	if err := s.db.First(&tenant, tenantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 已不存在视为修复完成
			return false, nil
		}
		return false, err
	}

	var settingsCount, adminCount, subscriptionCount int64
	s.db.Model(&models.MarketplaceSettings{}).Where("tenant_id = ?", tenantID).Count(&settingsCount)
	s.db.Model(&models.UserProfile{}).Where("tenant_id = ? AND role = ?", tenantID, models.ProfileRoleAdmin).Count(&adminCount)
	s.db.Model(&models.Subscription{}).Where("tenant_id = ?", tenantID).Count(&subscriptionCount)

	if settingsCount > 0 && adminCount > 0 && subscriptionCount > 0 {
		// 租户完整，无需修复
		return false, nil
	}

	if err := RemoveTenantData(s.db, tenantID); err != nil {
		return false, err
	}
	s.activity.Record(nil, operatorID, models.ActionMarketplaceRemoved, "tenant", tenantID, map[string]interface{}{
		"reason": "partial_provisioning",
	})
	return true, nil
}
