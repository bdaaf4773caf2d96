package handlers

import (
	"msp/internal/middleware"
	"msp/internal/services"
	"msp/pkg/response"

	"github.com/gin-gonic/gin"
)

// SettingsHandler 商城设置接口
type SettingsHandler struct {
	service *services.SettingsService
}

func NewSettingsHandler(service *services.SettingsService) *SettingsHandler {
	return &SettingsHandler{service: service}
}

// Get 获取当前商城设置（公开；未配置时返回默认值）
func (h *SettingsHandler) Get(c *gin.Context) {
	tenantID, _ := middleware.ResolvedTenantID(c)

	settings, err := h.service.GetByTenant(c.Request.Context(), tenantID)
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}
	response.Success(c, settings)
}

// Update 更新商城设置（管理员）
func (h *SettingsHandler) Update(c *gin.Context) {
	tenantID, _ := middleware.ResolvedTenantID(c)

	var req services.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	settings, err := h.service.Update(c.Request.Context(), tenantID, &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, settings)
}
