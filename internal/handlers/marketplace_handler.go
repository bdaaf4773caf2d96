package handlers

import (
	"msp/internal/services"
	"msp/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// MarketplaceHandler 获客站点的商城开通相关接口
type MarketplaceHandler struct {
	provisioning *services.ProvisioningService
	availability *services.AvailabilityService
	planService  *services.PlanService
	userService  *services.UserService
}

func NewMarketplaceHandler(provisioning *services.ProvisioningService, availability *services.AvailabilityService, planService *services.PlanService, userService *services.UserService) *MarketplaceHandler {
	return &MarketplaceHandler{
		provisioning: provisioning,
		availability: availability,
		planService:  planService,
		userService:  userService,
	}
}

// Create 开通商城
func (h *MarketplaceHandler) Create(c *gin.Context) {
	var req services.ProvisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// 解析验证错误，提供更友好的提示
		if validationErr, ok := err.(validator.ValidationErrors); ok {
			var msgs []string
			for _, fieldErr := range validationErr {
				switch fieldErr.Field() {
				case "Email":
					msgs = append(msgs, "邮箱格式不合法")
				case "Password":
					msgs = append(msgs, "密码长度至少8位")
				case "PlanID":
					msgs = append(msgs, "请选择订阅套餐")
				case "BillingCycle":
					msgs = append(msgs, "计费周期只能是 monthly 或 yearly")
				default:
					msgs = append(msgs, fieldErr.Field()+" 不能为空")
				}
			}
			response.FailWithErrors(c, 400, msgs)
			return
		}
		response.BadRequest(c, "参数错误")
		return
	}

	result, err := h.provisioning.Provision(&req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, result)
}

// CheckSubdomainRequest 子域名检查请求
type CheckSubdomainRequest struct {
	Subdomain string `json:"subdomain" binding:"required"`
}

// CheckSubdomain 检查子域名可用性
func (h *MarketplaceHandler) CheckSubdomain(c *gin.Context) {
	var req CheckSubdomainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	result, err := h.availability.CheckSubdomain(req.Subdomain)
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}
	response.Success(c, result)
}

// CheckDomainRequest 自定义域名检查请求
type CheckDomainRequest struct {
	Domain string `json:"domain" binding:"required"`
}

// CheckDomain 检查自定义域名可用性
func (h *MarketplaceHandler) CheckDomain(c *gin.Context) {
	var req CheckDomainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	result, err := h.availability.CheckCustomDomain(req.Domain)
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}
	response.Success(c, result)
}

// SuggestSubdomainsRequest 子域名推荐请求
type SuggestSubdomainsRequest struct {
	CompanyName string `json:"company_name" binding:"required"`
	Limit       int    `json:"limit"`
}

// SuggestSubdomains 基于公司名推荐可用子域名
func (h *MarketplaceHandler) SuggestSubdomains(c *gin.Context) {
	var req SuggestSubdomainsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	suggestions, err := h.availability.SuggestSubdomains(req.CompanyName, req.Limit)
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}
	response.Success(c, gin.H{"suggestions": suggestions})
}

// GetPlans 套餐列表（公开）
func (h *MarketplaceHandler) GetPlans(c *gin.Context) {
	plans, err := h.planService.GetAllActive()
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}
	response.Success(c, plans)
}

// MyMarketplaces 当前用户名下的商城
func (h *MarketplaceHandler) MyMarketplaces(c *gin.Context) {
	userID := c.GetUint("user_id")

	profiles, err := h.userService.GetUserTenants(userID)
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}
	response.Success(c, profiles)
}
