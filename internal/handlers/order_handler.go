package handlers

import (
	"fmt"
	"strconv"
	"time"

	"msp/internal/middleware"
	"msp/internal/services"
	"msp/pkg/logger"
	"msp/pkg/pagination"
	"msp/pkg/response"

	"github.com/gin-gonic/gin"
)

// OrderHandler 订单接口
type OrderHandler struct {
	service *services.OrderService
}

func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{service: service}
}

// Create 结账下单（商城成员）
func (h *OrderHandler) Create(c *gin.Context) {
	tenantID, _ := middleware.ResolvedTenantID(c)
	profileID := c.GetUint("profile_id")

	var req services.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	order, err := h.service.Create(tenantID, profileID, &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, order)
}

// GetAll 订单列表
func (h *OrderHandler) GetAll(c *gin.Context) {
	tenantID, _ := middleware.ResolvedTenantID(c)
	pageParams := pagination.ParsePageParams(c)

	// 客户只能看自己的订单，管理员能看全部
	var profileID *uint
	if c.GetString("role") != "admin" {
		pid := c.GetUint("profile_id")
		profileID = &pid
	}

	orders, total, err := h.service.GetWithFiltersAndPage(
		tenantID, profileID, c.Query("status"), c.Query("keyword"),
		pageParams.Page, pageParams.PageSize)
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}

	pageInfo := pagination.NewPageInfo(pageParams.Page, pageParams.PageSize, total)
	response.SuccessWithPage(c, orders, pageInfo)
}

// GetByID 订单详情
func (h *OrderHandler) GetByID(c *gin.Context) {
	tenantID, _ := middleware.ResolvedTenantID(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	order, err := h.service.GetByID(tenantID, uint(id))
	if err != nil {
		response.FromError(c, err)
		return
	}

	// 客户只能查看自己的订单
	if c.GetString("role") != "admin" && order.ProfileID != c.GetUint("profile_id") {
		response.Forbidden(c, "无权查看该订单")
		return
	}
	response.Success(c, order)
}

// UpdateStatusRequest 状态变更请求
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateStatus 变更订单状态（管理员）
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	tenantID, _ := middleware.ResolvedTenantID(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	profileID := c.GetUint("profile_id")
	order, err := h.service.UpdateStatus(tenantID, uint(id), req.Status, &profileID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, order)
}

// Export 导出订单Excel（管理员）
func (h *OrderHandler) Export(c *gin.Context) {
	tenantID, _ := middleware.ResolvedTenantID(c)

	f, err := h.service.ExportXLSX(tenantID, c.Query("status"))
	if err != nil {
		response.ServerError(c, "导出失败")
		return
	}
	defer f.Close()

	filename := fmt.Sprintf("orders-%s.xlsx", time.Now().Format("20060102-150405"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	if err := f.Write(c.Writer); err != nil {
		logger.GetLogger().WithError(err).Error("订单导出写入响应失败")
	}
}
