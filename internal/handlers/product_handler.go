package handlers

import (
	"strconv"

	"msp/internal/middleware"
	"msp/internal/services"
	"msp/pkg/pagination"
	"msp/pkg/response"

	"github.com/gin-gonic/gin"
)

// ProductHandler 商品与分类接口
type ProductHandler struct {
	service  *services.ProductService
	settings *services.SettingsService
}

func NewProductHandler(service *services.ProductService, settings *services.SettingsService) *ProductHandler {
	return &ProductHandler{service: service, settings: settings}
}

// Create 创建商品（管理员）
func (h *ProductHandler) Create(c *gin.Context) {
	tenantID, _ := middleware.ResolvedTenantID(c)

	var req services.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	product, err := h.service.CreateProduct(tenantID, &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, product)
}

// GetAll 商品列表。匿名访问时只返回上架商品，且要求商城开放公开访问
func (h *ProductHandler) GetAll(c *gin.Context) {
	tenantID, _ := middleware.ResolvedTenantID(c)
	pageParams := pagination.ParsePageParams(c)

	isAdmin := c.GetString("role") == "admin"
	if !isAdmin {
		settings, err := h.settings.GetByTenant(c.Request.Context(), tenantID)
		if err != nil {
			response.ServerError(c, "查询失败")
			return
		}
		if !settings.PublicAccess {
			response.Forbidden(c, "该商城未开放公开访问")
			return
		}
	}

	var categoryID *uint
	if v := c.Query("category_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			response.BadRequest(c, "分类ID格式错误")
			return
		}
		cid := uint(id)
		categoryID = &cid
	}

	products, total, err := h.service.GetWithFiltersAndPage(
		tenantID, categoryID, c.Query("keyword"), !isAdmin,
		pageParams.Page, pageParams.PageSize)
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}

	pageInfo := pagination.NewPageInfo(pageParams.Page, pageParams.PageSize, total)
	response.SuccessWithPage(c, products, pageInfo)
}

// GetByID 商品详情
func (h *ProductHandler) GetByID(c *gin.Context) {
	tenantID, _ := middleware.ResolvedTenantID(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	product, err := h.service.GetProduct(tenantID, uint(id))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, product)
}

// Update 更新商品（管理员）
func (h *ProductHandler) Update(c *gin.Context) {
	tenantID, _ := middleware.ResolvedTenantID(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	var req services.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	product, err := h.service.UpdateProduct(tenantID, uint(id), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, product)
}

// Delete 删除商品（管理员）
func (h *ProductHandler) Delete(c *gin.Context) {
	tenantID, _ := middleware.ResolvedTenantID(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	if err := h.service.DeleteProduct(tenantID, uint(id)); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, nil)
}

// ========== 分类 ==========

// CreateCategoryRequest 创建分类请求
type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required"`
}

// CreateCategory 创建分类（管理员）
func (h *ProductHandler) CreateCategory(c *gin.Context) {
	tenantID, _ := middleware.ResolvedTenantID(c)

	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	category, err := h.service.CreateCategory(tenantID, req.Name)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, category)
}

// GetCategories 分类列表。匿名访问受show_categories开关控制
func (h *ProductHandler) GetCategories(c *gin.Context) {
	tenantID, _ := middleware.ResolvedTenantID(c)

	if c.GetString("role") != "admin" {
		settings, err := h.settings.GetByTenant(c.Request.Context(), tenantID)
		if err != nil {
			response.ServerError(c, "查询失败")
			return
		}
		if !settings.ShowCategories {
			response.Success(c, []interface{}{})
			return
		}
	}

	categories, err := h.service.GetCategories(tenantID)
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}
	response.Success(c, categories)
}

// DeleteCategory 删除分类（管理员）
func (h *ProductHandler) DeleteCategory(c *gin.Context) {
	tenantID, _ := middleware.ResolvedTenantID(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	if err := h.service.DeleteCategory(tenantID, uint(id)); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, nil)
}
