package services

import (
	"errors"
	"strings"

	"msp/internal/database"
	"msp/internal/models"
	apperrors "msp/pkg/errors"

	"gorm.io/gorm"
)

// ProductService 商品与分类服务
type ProductService struct {
	db *gorm.DB
}

func NewProductService() *ProductService {
	return &ProductService{
		db: database.GetDB(),
	}
}

// CreateProductRequest 创建商品请求
type CreateProductRequest struct {
	Name        string  `json:"name" binding:"required"`
	SKU         string  `json:"sku" binding:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" binding:"required,gt=0"`
	Stock       int     `json:"stock" binding:"min=0"`
	CategoryID  *uint   `json:"category_id"`
}

// UpdateProductRequest 更新商品请求
type UpdateProductRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Stock       *int     `json:"stock"`
	CategoryID  *uint    `json:"category_id"`
	IsActive    *bool    `json:"is_active"`
}

// CreateProduct 创建商品
func (s *ProductService) CreateProduct(tenantID uint, req *CreateProductRequest) (*models.Product, error) {
	if req.CategoryID != nil {
		if err := s.ensureCategory(tenantID, *req.CategoryID); err != nil {
			return nil, err
		}
	}

	product := &models.Product{
		TenantID:    tenantID,
		CategoryID:  req.CategoryID,
		Name:        strings.TrimSpace(req.Name),
		SKU:         strings.TrimSpace(req.SKU),
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		IsActive:    true,
	}

	if err := s.db.Create(product).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.NewConflict("SKU已存在")
		}
		return nil, err
	}
	return product, nil
}

// GetProduct 获取商品（租户隔离）
func (s *ProductService) GetProduct(tenantID, productID uint) (*models.Product, error) {
	var product models.Product
	err := s.db.Where("id = ? AND tenant_id = ?", productID, tenantID).
		Preload("Category").
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("商品不存在")
		}
		return nil, err
	}
	return &product, nil
}

// GetWithFiltersAndPage 组合查询（分页版本）；publicOnly时只返回上架商品
func (s *ProductService) GetWithFiltersAndPage(tenantID uint, categoryID *uint, keyword string, publicOnly bool, page, pageSize int) ([]*models.Product, int64, error) {
	var products []*models.Product
	var total int64

	query := s.db.Model(&models.Product{}).Where("tenant_id = ?", tenantID)
	if categoryID != nil {
		query = query.Where("category_id = ?", *categoryID)
	}
	if keyword != "" {
		pattern := "%" + keyword + "%"
		query = query.Where("name LIKE ? OR sku LIKE ?", pattern, pattern)
	}
	if publicOnly {
		query = query.Where("is_active = ?", true)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).
		Preload("Category").
		Find(&products).Error
	if err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

// UpdateProduct 更新商品
func (s *ProductService) UpdateProduct(tenantID, productID uint, req *UpdateProductRequest) (*models.Product, error) {
	product, err := s.GetProduct(tenantID, productID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Price != nil {
		if *req.Price <= 0 {
			return nil, apperrors.NewValidation("价格必须大于0")
		}
		updates["price"] = *req.Price
	}
	if req.Stock != nil {
		if *req.Stock < 0 {
			return nil, apperrors.NewValidation("库存不能为负")
		}
		updates["stock"] = *req.Stock
	}
	if req.CategoryID != nil {
		if err := s.ensureCategory(tenantID, *req.CategoryID); err != nil {
			return nil, err
		}
		updates["category_id"] = *req.CategoryID
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) > 0 {
		if err := s.db.Model(product).Updates(updates).Error; err != nil {
			return nil, err
		}
		return s.GetProduct(tenantID, productID)
	}
	return product, nil
}

// DeleteProduct 删除商品
func (s *ProductService) DeleteProduct(tenantID, productID uint) error {
	result := s.db.Where("id = ? AND tenant_id = ?", productID, tenantID).Delete(&models.Product{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFound("商品不存在")
	}
	return nil
}

// ========== 分类 ==========

// CreateCategory 创建分类
func (s *ProductService) CreateCategory(tenantID uint, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidation("分类名称不能为空")
	}

	category := &models.Category{
		TenantID: tenantID,
		Name:     name,
		Slug:     slugify(name),
	}
	if category.Slug == "" {
		return nil, apperrors.NewValidation("分类名称无法生成有效标识")
	}

	if err := s.db.Create(category).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.NewConflict("同名分类已存在")
		}
		return nil, err
	}
	return category, nil
}

// GetCategories 获取租户全部分类
func (s *ProductService) GetCategories(tenantID uint) ([]*models.Category, error) {
	var categories []*models.Category
	err := s.db.Where("tenant_id = ?", tenantID).
		Order("sort_order ASC, created_at ASC").
		Find(&categories).Error
	return categories, err
}

// DeleteCategory 删除分类；分类下的商品退回未分类
func (s *ProductService) DeleteCategory(tenantID, categoryID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Product{}).
			Where("tenant_id = ? AND category_id = ?", tenantID, categoryID).
			Update("category_id", nil).Error; err != nil {
			return err
		}

		result := tx.Where("id = ? AND tenant_id = ?", categoryID, tenantID).Delete(&models.Category{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperrors.NewNotFound("分类不存在")
		}
		return nil
	})
}

// ensureCategory 校验分类存在且属于本租户
func (s *ProductService) ensureCategory(tenantID, categoryID uint) error {
	var count int64
	if err := s.db.Model(&models.Category{}).
		Where("id = ? AND tenant_id = ?", categoryID, tenantID).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return apperrors.NewValidation("分类不存在")
	}
	return nil
}
