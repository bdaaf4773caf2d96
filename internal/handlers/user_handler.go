package handlers

import (
	"strconv"

	"msp/internal/middleware"
	"msp/internal/services"
	"msp/pkg/pagination"
	"msp/pkg/response"

	"github.com/gin-gonic/gin"
)

// UserHandler 商城内用户档案管理接口（管理员）
type UserHandler struct {
	service *services.UserService
}

func NewUserHandler(service *services.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// CreateProfile 创建客户档案
func (h *UserHandler) CreateProfile(c *gin.Context) {
	tenantID, _ := middleware.ResolvedTenantID(c)

	var req services.CreateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	operatorID := c.GetUint("profile_id")
	profile, err := h.service.CreateProfile(tenantID, &req, &operatorID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, profile)
}

// GetProfiles 档案列表
func (h *UserHandler) GetProfiles(c *gin.Context) {
	tenantID, _ := middleware.ResolvedTenantID(c)
	pageParams := pagination.ParsePageParams(c)

	profiles, total, err := h.service.GetProfilesWithPage(
		tenantID, c.Query("role"), pageParams.Page, pageParams.PageSize)
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}

	pageInfo := pagination.NewPageInfo(pageParams.Page, pageParams.PageSize, total)
	response.SuccessWithPage(c, profiles, pageInfo)
}

// GetProfile 档案详情
func (h *UserHandler) GetProfile(c *gin.Context) {
	tenantID, _ := middleware.ResolvedTenantID(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	profile, err := h.service.GetProfile(tenantID, uint(id))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, profile)
}

// SetProfileActiveRequest 启用/停用请求
type SetProfileActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// SetProfileActive 启用或停用档案
func (h *UserHandler) SetProfileActive(c *gin.Context) {
	tenantID, _ := middleware.ResolvedTenantID(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	var req SetProfileActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	operatorID := c.GetUint("profile_id")
	profile, err := h.service.SetProfileActive(tenantID, uint(id), *req.IsActive, &operatorID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, profile)
}
