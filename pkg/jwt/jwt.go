package jwt

import (
	"errors"
	"msp/pkg/config"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTClaims JWT声明
//
// 令牌要么是主站身份（TenantID为0），要么是租户成员身份（TenantID非0，
// 此时Role和ProfileID有效）。两种身份不共用字段语义，调用方不应混用。
type JWTClaims struct {
	UserID          uint   `json:"user_id"`           // 主站用户ID
	TenantID        uint   `json:"tenant_id"`         // 租户ID，0表示主站身份
	ProfileID       uint   `json:"profile_id"`        // 租户内用户档案ID
	Email           string `json:"email"`
	Role            string `json:"role"`              // admin 或 client（仅租户身份）
	IsPlatformAdmin bool   `json:"is_platform_admin"`
	jwt.RegisteredClaims
}

// IsStartupIdentity 是否为主站身份
func (c *JWTClaims) IsStartupIdentity() bool {
	return c.TenantID == 0
}

// JWTManager JWT管理器
type JWTManager struct {
	secretKey     string
	tokenDuration time.Duration
}

// NewJWTManager 创建JWT管理器
func NewJWTManager(secretKey string, tokenDuration time.Duration) *JWTManager {
	return &JWTManager{
		secretKey:     secretKey,
		tokenDuration: tokenDuration,
	}
}

// GenerateStartupToken 生成主站身份令牌
func (manager *JWTManager) GenerateStartupToken(userID uint, email string, isPlatformAdmin bool) (string, error) {
	return manager.sign(JWTClaims{
		UserID:          userID,
		Email:           email,
		IsPlatformAdmin: isPlatformAdmin,
	}, email)
}

// GenerateTenantToken 生成租户成员身份令牌
func (manager *JWTManager) GenerateTenantToken(userID, tenantID, profileID uint, email, role string) (string, error) {
	return manager.sign(JWTClaims{
		UserID:    userID,
		TenantID:  tenantID,
		ProfileID: profileID,
		Email:     email,
		Role:      role,
	}, email)
}

func (manager *JWTManager) sign(claims JWTClaims, subject string) (string, error) {
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(manager.tokenDuration)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		NotBefore: jwt.NewNumericDate(time.Now()),
		Issuer:    "MSP",
		Subject:   subject,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(manager.secretKey))
}

// VerifyToken 验证JWT令牌
func (manager *JWTManager) VerifyToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&JWTClaims{},
		func(token *jwt.Token) (interface{}, error) {
			// 验证签名方法
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("意外的签名方法")
			}
			return []byte(manager.secretKey), nil
		},
	)

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok {
		return nil, errors.New("无法解析token声明")
	}

	return claims, nil
}

// RefreshToken 刷新令牌
func (manager *JWTManager) RefreshToken(tokenString string) (string, error) {
	claims, err := manager.VerifyToken(tokenString)
	if err != nil {
		return "", err
	}

	if claims.IsStartupIdentity() {
		return manager.GenerateStartupToken(claims.UserID, claims.Email, claims.IsPlatformAdmin)
	}
	return manager.GenerateTenantToken(claims.UserID, claims.TenantID, claims.ProfileID, claims.Email, claims.Role)
}

// GetTokenDuration 获取令牌有效期
func (manager *JWTManager) GetTokenDuration() time.Duration {
	return manager.tokenDuration
}

// 单例实现
var (
	defaultManager *JWTManager
	once           sync.Once
)

// GetJWTManager 获取全局JWT管理器实例
func GetJWTManager() *JWTManager {
	once.Do(func() {
		cfg := config.GetConfig()
		tokenDuration, err := time.ParseDuration(cfg.JWT.TokenDuration)
		if err != nil {
			tokenDuration = 24 * time.Hour
		}
		defaultManager = NewJWTManager(cfg.JWT.SecretKey, tokenDuration)
	})
	return defaultManager
}
