package middleware

import (
	"msp/internal/services"
	"msp/pkg/response"

	"github.com/gin-gonic/gin"
)

// TenantMiddleware 域名解析中间件 - 把Host头解析成租户上下文，
// 解析结果作为显式输入放进gin上下文，下游不再自行解析主机名
type TenantMiddleware struct {
	resolver *services.DomainResolver
}

func NewTenantMiddleware(resolver *services.DomainResolver) *TenantMiddleware {
	return &TenantMiddleware{resolver: resolver}
}

// Resolve 解析Host并写入上下文；解析失败按上游错误处理
func (m *TenantMiddleware) Resolve() gin.HandlerFunc {
	return func(c *gin.Context) {
		resolution, err := m.resolver.Resolve(c.Request.Context(), c.Request.Host)
		if err != nil {
			response.ServerError(c, "域名解析失败")
			c.Abort()
			return
		}

		c.Set("domain_resolution", resolution)
		if resolution.TenantID != nil {
			c.Set("resolved_tenant_id", *resolution.TenantID)
		}
		c.Next()
	}
}

// RequireTenant 商城运行时接口必须落在某个租户的域名上
func (m *TenantMiddleware) RequireTenant() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := ResolvedTenantID(c); !exists {
			response.NotFound(c, "商城不存在")
			c.Abort()
			return
		}
		c.Next()
	}
}

// ResolvedTenantID 读取解析出的租户ID
func ResolvedTenantID(c *gin.Context) (uint, bool) {
	v, exists := c.Get("resolved_tenant_id")
	if !exists {
		return 0, false
	}
	return v.(uint), true
}

// ResolutionFromContext 读取完整解析结果
func ResolutionFromContext(c *gin.Context) (*services.DomainResolution, bool) {
	v, exists := c.Get("domain_resolution")
	if !exists {
		return nil, false
	}
	return v.(*services.DomainResolution), true
}
