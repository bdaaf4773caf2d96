package handlers

import (
	"msp/internal/services"
	"msp/pkg/jwt"
	"msp/pkg/response"

	"github.com/gin-gonic/gin"
)

// AuthHandler 主站注册登录与租户身份切换
type AuthHandler struct {
	userService *services.UserService
	jwtManager  *jwt.JWTManager
}

func NewAuthHandler(userService *services.UserService) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		jwtManager:  jwt.GetJWTManager(),
	}
}

// Signup 主站注册
func (h *AuthHandler) Signup(c *gin.Context) {
	var req services.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	user, err := h.userService.Signup(&req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, user)
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login 主站登录
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	token, user, err := h.userService.Login(req.Email, req.Password)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, gin.H{
		"token":      token,
		"expires_in": int(h.jwtManager.GetTokenDuration().Seconds()),
		"user":       user,
	})
}

// RefreshRequest 刷新令牌请求
type RefreshRequest struct {
	Token string `json:"token" binding:"required"`
}

// RefreshToken 刷新令牌
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	token, err := h.jwtManager.RefreshToken(req.Token)
	if err != nil {
		response.Unauthorized(c, "Token无效或已过期")
		return
	}
	response.Success(c, gin.H{"token": token})
}

// Me 当前登录用户信息
func (h *AuthHandler) Me(c *gin.Context) {
	userID := c.GetUint("user_id")

	user, err := h.userService.GetByID(userID)
	if err != nil {
		response.NotFound(c, "用户不存在")
		return
	}
	response.Success(c, user)
}

// SwitchTenantRequest 切换租户身份请求
type SwitchTenantRequest struct {
	TenantID uint `json:"tenant_id" binding:"required"`
}

// SwitchTenant 换取租户成员身份令牌
func (h *AuthHandler) SwitchTenant(c *gin.Context) {
	var req SwitchTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	userID := c.GetUint("user_id")
	token, profile, err := h.userService.TenantToken(userID, req.TenantID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, gin.H{
		"token":   token,
		"profile": profile,
	})
}
