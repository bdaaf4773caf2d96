package middleware

import (
	"strings"

	"msp/internal/models"
	"msp/internal/services"
	"msp/pkg/jwt"
	"msp/pkg/response"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware 权限中间件
type AuthMiddleware struct {
	userService *services.UserService
	jwtManager  *jwt.JWTManager
}

func NewAuthMiddleware() *AuthMiddleware {
	return &AuthMiddleware{
		userService: services.NewUserService(),
		jwtManager:  jwt.GetJWTManager(), // 使用全局JWT管理器
	}
}

// RequireLogin 要求携带有效的Bearer令牌
func (m *AuthMiddleware) RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := m.verify(c)
		if claims == nil {
			return
		}

		c.Set("claims", claims)
		c.Set("user_id", claims.UserID)
		c.Set("is_platform_admin", claims.IsPlatformAdmin)
		if !claims.IsStartupIdentity() {
			c.Set("token_tenant_id", claims.TenantID)
			c.Set("profile_id", claims.ProfileID)
			c.Set("role", claims.Role)
		}

		c.Next()
	}
}

// OptionalLogin 允许匿名；有令牌时解析身份（公开设置、套餐列表等接口）
func (m *AuthMiddleware) OptionalLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}
		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.Next()
			return
		}
		claims, err := m.jwtManager.VerifyToken(authHeader[7:])
		if err == nil {
			c.Set("claims", claims)
			c.Set("user_id", claims.UserID)
			c.Set("is_platform_admin", claims.IsPlatformAdmin)
			if !claims.IsStartupIdentity() {
				c.Set("token_tenant_id", claims.TenantID)
				c.Set("profile_id", claims.ProfileID)
				c.Set("role", claims.Role)
			}
		}
		c.Next()
	}
}

// RequireTenantAdmin 要求租户管理员，且令牌的租户与Host解析出的租户一致
func (m *AuthMiddleware) RequireTenantAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := m.claimsFromContext(c)
		if claims == nil {
			return
		}

		if !m.matchResolvedTenant(c, claims) {
			return
		}

		if claims.Role != models.ProfileRoleAdmin {
			response.Forbidden(c, "需要商城管理员权限")
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireTenantMember 要求任意租户成员身份（管理员或客户）
func (m *AuthMiddleware) RequireTenantMember() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := m.claimsFromContext(c)
		if claims == nil {
			return
		}

		if !m.matchResolvedTenant(c, claims) {
			return
		}

		c.Next()
	}
}

// RequirePlatformAdmin 要求平台管理员
func (m *AuthMiddleware) RequirePlatformAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := m.claimsFromContext(c)
		if claims == nil {
			return
		}

		if !claims.IsPlatformAdmin {
			response.Forbidden(c, "需要平台管理员权限")
			c.Abort()
			return
		}

		c.Next()
	}
}

// verify 解析并校验Bearer令牌，失败时写响应并中止
func (m *AuthMiddleware) verify(c *gin.Context) *jwt.JWTClaims {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		response.Unauthorized(c, "请先登录")
		c.Abort()
		return nil
	}

	if !strings.HasPrefix(authHeader, "Bearer ") {
		response.Unauthorized(c, "认证头格式错误")
		c.Abort()
		return nil
	}

	claims, err := m.jwtManager.VerifyToken(authHeader[7:])
	if err != nil {
		response.Unauthorized(c, "Token无效或已过期")
		c.Abort()
		return nil
	}

	// 主站身份还需校验用户状态
	if claims.IsStartupIdentity() {
		user, err := m.userService.GetByID(claims.UserID)
		if err != nil {
			response.Unauthorized(c, "用户不存在")
			c.Abort()
			return nil
		}
		if !m.userService.IsActive(user) {
			response.Unauthorized(c, "账号已被禁用")
			c.Abort()
			return nil
		}
	}

	return claims
}

// claimsFromContext 从RequireLogin写入的上下文中取声明，未登录时补验
func (m *AuthMiddleware) claimsFromContext(c *gin.Context) *jwt.JWTClaims {
	if v, exists := c.Get("claims"); exists {
		return v.(*jwt.JWTClaims)
	}
	return m.verify(c)
}

// matchResolvedTenant 令牌中的租户必须与Host解析出的租户一致，
// 防止拿着A商城的令牌操作B商城
func (m *AuthMiddleware) matchResolvedTenant(c *gin.Context, claims *jwt.JWTClaims) bool {
	if claims.IsStartupIdentity() {
		response.Forbidden(c, "请先切换到商城身份")
		c.Abort()
		return false
	}

	tenantID, exists := ResolvedTenantID(c)
	if !exists {
		response.NotFound(c, "商城不存在")
		c.Abort()
		return false
	}

	if claims.TenantID != tenantID {
		response.Forbidden(c, "无权访问其他商城的数据")
		c.Abort()
		return false
	}
	return true
}
