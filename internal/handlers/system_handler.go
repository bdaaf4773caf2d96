package handlers

import (
	"strconv"

	"msp/internal/middleware"
	"msp/internal/services"
	"msp/pkg/config"
	"msp/pkg/pagination"
	"msp/pkg/response"

	"github.com/gin-gonic/gin"
)

// SystemHandler 平台管理接口（平台管理员）
type SystemHandler struct {
	tenants       *services.TenantService
	provisioning  *services.ProvisioningService
	subscriptions *services.SubscriptionService
	activity      *services.ActivityService
	resolver      *services.DomainResolver
}

func NewSystemHandler(resolver *services.DomainResolver) *SystemHandler {
	return &SystemHandler{
		tenants:       services.NewTenantService(),
		provisioning:  services.NewProvisioningService(),
		subscriptions: services.NewSubscriptionService(),
		activity:      services.NewActivityService(),
		resolver:      resolver,
	}
}

// GetTenants 租户列表
func (h *SystemHandler) GetTenants(c *gin.Context) {
	pageParams := pagination.ParsePageParams(c)

	tenants, total, err := h.tenants.GetWithFiltersAndPage(
		c.Query("status"), c.Query("keyword"), pageParams.Page, pageParams.PageSize)
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}

	pageInfo := pagination.NewPageInfo(pageParams.Page, pageParams.PageSize, total)
	response.SuccessWithPage(c, tenants, pageInfo)
}

// GetTenant 租户详情
func (h *SystemHandler) GetTenant(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	tenant, err := h.tenants.GetByID(id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, tenant)
}

// GetStats 租户统计
func (h *SystemHandler) GetStats(c *gin.Context) {
	stats, err := h.tenants.GetStats()
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}
	response.Success(c, stats)
}

// SuspendTenant 暂停租户，对应域名立即停止解析
func (h *SystemHandler) SuspendTenant(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	operatorID := c.GetUint("user_id")
	tenant, err := h.tenants.Suspend(id, &operatorID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	h.invalidateHosts(c, tenant.ID)
	response.Success(c, tenant)
}

// ActivateTenant 恢复租户
func (h *SystemHandler) ActivateTenant(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	operatorID := c.GetUint("user_id")
	tenant, err := h.tenants.Activate(id, &operatorID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	h.invalidateHosts(c, tenant.ID)
	response.Success(c, tenant)
}

// DeprovisionTenant 下线租户并清除其全部数据
func (h *SystemHandler) DeprovisionTenant(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	// 先取租户算出主机名，删完数据就查不到了
	tenant, err := h.tenants.GetByID(id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	hosts := h.tenants.Hosts(tenant, config.GetConfig().Platform.BaseDomain)

	operatorID := c.GetUint("user_id")
	if err := h.provisioning.Deprovision(id, &operatorID); err != nil {
		response.FromError(c, err)
		return
	}

	if h.resolver != nil {
		h.resolver.Invalidate(c.Request.Context(), hosts...)
	}
	response.Success(c, nil)
}

// RepairTenant 检查开通是否残缺，残缺则清除残留数据
func (h *SystemHandler) RepairTenant(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	operatorID := c.GetUint("user_id")
	removed, err := h.provisioning.Repair(id, &operatorID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"removed": removed})
}

// CancelSubscription 取消租户订阅并暂停租户
func (h *SystemHandler) CancelSubscription(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	operatorID := c.GetUint("user_id")
	sub, err := h.subscriptions.Cancel(id, &operatorID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	h.invalidateHosts(c, id)
	response.Success(c, sub)
}

// RenewSubscription 续期租户订阅并恢复租户
func (h *SystemHandler) RenewSubscription(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	operatorID := c.GetUint("user_id")
	sub, err := h.subscriptions.Renew(id, &operatorID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	h.invalidateHosts(c, id)
	response.Success(c, sub)
}

// GetActivityLogs 平台活动日志，可按租户和动作过滤
func (h *SystemHandler) GetActivityLogs(c *gin.Context) {
	pageParams := pagination.ParsePageParams(c)

	var tenantID *uint
	if v := c.Query("tenant_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			response.BadRequest(c, "租户ID格式错误")
			return
		}
		tid := uint(id)
		tenantID = &tid
	}

	logs, total, err := h.activity.GetWithFiltersAndPage(
		tenantID, c.Query("action"), pageParams.Page, pageParams.PageSize)
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}

	pageInfo := pagination.NewPageInfo(pageParams.Page, pageParams.PageSize, total)
	response.SuccessWithPage(c, logs, pageInfo)
}

// TenantSubscription 当前商城的有效订阅（商城管理员）
func (h *SystemHandler) TenantSubscription(c *gin.Context) {
	tenantID, _ := middleware.ResolvedTenantID(c)

	subscription, err := h.subscriptions.GetActiveByTenant(tenantID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, subscription)
}

// TenantActivityLogs 商城内活动日志（商城管理员）
func (h *SystemHandler) TenantActivityLogs(c *gin.Context) {
	tenantID, _ := middleware.ResolvedTenantID(c)
	pageParams := pagination.ParsePageParams(c)

	logs, total, err := h.activity.GetWithFiltersAndPage(
		&tenantID, c.Query("action"), pageParams.Page, pageParams.PageSize)
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}

	pageInfo := pagination.NewPageInfo(pageParams.Page, pageParams.PageSize, total)
	response.SuccessWithPage(c, logs, pageInfo)
}

func (h *SystemHandler) parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return 0, false
	}
	return uint(id), true
}

// invalidateHosts 租户状态变化后让其域名解析缓存失效
func (h *SystemHandler) invalidateHosts(c *gin.Context, tenantID uint) {
	if h.resolver == nil {
		return
	}
	tenant, err := h.tenants.GetByID(tenantID)
	if err != nil {
		return
	}
	hosts := h.tenants.Hosts(tenant, config.GetConfig().Platform.BaseDomain)
	h.resolver.Invalidate(c.Request.Context(), hosts...)
}
