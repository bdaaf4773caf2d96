package services

import (
	"errors"
	"strings"
	"time"

	"msp/internal/database"
	"msp/internal/models"
	apperrors "msp/pkg/errors"
	"msp/pkg/identity"
	"msp/pkg/jwt"
	"msp/pkg/logger"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// UserService 用户服务 - 主站用户与租户内用户档案。
// 两种身份是不同的类型：主站用户是获客站点的注册客户，
// 档案是用户在某个租户内的成员资格，互相不可替代。
type UserService struct {
	db       *gorm.DB
	log      *logrus.Logger
	identity *identity.Client
	jwt      *jwt.JWTManager
	activity *ActivityService
}

func NewUserService() *UserService {
	return &UserService{
		db:       database.GetDB(),
		log:      logger.GetLogger(),
		identity: identity.GetClient(),
		jwt:      jwt.GetJWTManager(),
		activity: NewActivityService(),
	}
}

// SignupRequest 主站注册请求
type SignupRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
}

// Signup 主站注册：凭证登记在身份服务，本地保留业务档案
func (s *UserService) Signup(req *SignupRequest) (*models.StartupUser, error) {
	email := NormalizeEmail(req.Email)

	var count int64
	if err := s.db.Model(&models.StartupUser{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, apperrors.NewConflict("该邮箱已注册")
	}

	subjectID, err := s.identity.Register(email, req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.StartupUser{
		Email:     email,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		SubjectID: subjectID,
		Status:    models.StartupUserStatusActive,
	}
	if err := user.SetPassword(req.Password); err != nil {
		return nil, err
	}

	if err := s.db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// 与并发注册相撞，回收刚登记的身份主体
			if revokeErr := s.identity.RevokeSubject(subjectID); revokeErr != nil {
				s.log.Warnf("回滚身份主体失败 subject=%s: %v", subjectID, revokeErr)
			}
			return nil, apperrors.NewConflict("该邮箱已注册")
		}
		return nil, err
	}
	return user, nil
}

// Login 主站登录：身份服务校验凭证，本系统签发令牌
func (s *UserService) Login(email, password string) (string, *models.StartupUser, error) {
	email = NormalizeEmail(email)

	var user models.StartupUser
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, apperrors.NewPermission("邮箱或密码错误")
		}
		return "", nil, err
	}
	if user.Status != models.StartupUserStatusActive {
		return "", nil, apperrors.NewPermission("账号已被禁用")
	}

	if err := s.verifyPassword(&user, password); err != nil {
		return "", nil, err
	}

	now := time.Now()
	s.db.Model(&user).Update("last_login_at", now)
	user.LastLoginAt = &now

	token, err := s.jwt.GenerateStartupToken(user.ID, user.Email, user.IsPlatformAdmin)
	if err != nil {
		return "", nil, err
	}
	return token, &user, nil
}

// verifyPassword 口令校验。已在身份服务登记主体的账号委托身份服务；
// 种子脚本创建的平台管理员没有主体ID，退回本地bcrypt校验
func (s *UserService) verifyPassword(user *models.StartupUser, password string) error {
	if user.SubjectID == "" {
		if !user.CheckPassword(password) {
			return apperrors.NewPermission("邮箱或密码错误")
		}
		return nil
	}
	return s.identity.VerifyCredentials(user.Email, password)
}

// GetByID 根据ID获取主站用户
func (s *UserService) GetByID(id uint) (*models.StartupUser, error) {
	var user models.StartupUser
	err := s.db.First(&user, id).Error
	return &user, err
}

// IsActive 主站用户是否可用
func (s *UserService) IsActive(user *models.StartupUser) bool {
	return user.Status == models.StartupUserStatusActive
}

// GetUserTenants 获取用户作为成员的全部租户
func (s *UserService) GetUserTenants(userID uint) ([]*models.UserProfile, error) {
	var profiles []*models.UserProfile
	err := s.db.Where("startup_user_id = ?", userID).
		Preload("Tenant").
		Find(&profiles).Error
	return profiles, err
}

// TenantToken 切换到租户身份：用户必须在该租户有激活的档案
func (s *UserService) TenantToken(userID, tenantID uint) (string, *models.UserProfile, error) {
	var profile models.UserProfile
	err := s.db.Where("startup_user_id = ? AND tenant_id = ?", userID, tenantID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, apperrors.NewPermission("您不是该商城的成员")
		}
		return "", nil, err
	}
	if !profile.IsActive {
		return "", nil, apperrors.NewPermission("您在该商城的账号已被停用")
	}

	token, err := s.jwt.GenerateTenantToken(userID, tenantID, profile.ID, profile.Email, profile.Role)
	if err != nil {
		return "", nil, err
	}
	return token, &profile, nil
}

// ========== 租户内用户档案 ==========

// CreateProfileRequest 创建档案请求。角色固定为client：
// admin角色只在开通商城时授予创建者一次
type CreateProfileRequest struct {
	Email     string `json:"email" binding:"required,email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// CreateProfile 在租户内创建客户档案
func (s *UserService) CreateProfile(tenantID uint, req *CreateProfileRequest, operatorID *uint) (*models.UserProfile, error) {
	profile := &models.UserProfile{
		TenantID:  tenantID,
		Email:     NormalizeEmail(req.Email),
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Role:      models.ProfileRoleClient,
		IsActive:  true,
	}

	if err := s.db.Create(profile).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.NewConflict("该邮箱在商城内已存在")
		}
		return nil, err
	}

	s.activity.Record(&tenantID, operatorID, models.ActionProfileCreated, "user_profile", profile.ID, map[string]interface{}{
		"email": profile.Email,
		"role":  profile.Role,
	})
	return profile, nil
}

// GetProfilesWithPage 租户用户档案列表（分页）
func (s *UserService) GetProfilesWithPage(tenantID uint, role string, page, pageSize int) ([]*models.UserProfile, int64, error) {
	var profiles []*models.UserProfile
	var total int64

	query := s.db.Model(&models.UserProfile{}).Where("tenant_id = ?", tenantID)
	if role != "" {
		query = query.Where("role = ?", role)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&profiles).Error
	if err != nil {
		return nil, 0, err
	}
	return profiles, total, nil
}

// GetProfile 获取档案（租户隔离）
func (s *UserService) GetProfile(tenantID, profileID uint) (*models.UserProfile, error) {
	var profile models.UserProfile
	err := s.db.Where("id = ? AND tenant_id = ?", profileID, tenantID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("用户档案不存在")
		}
		return nil, err
	}
	return &profile, nil
}

// SetProfileActive 启用/停用档案；租户最后一名管理员不可停用
func (s *UserService) SetProfileActive(tenantID, profileID uint, active bool, operatorID *uint) (*models.UserProfile, error) {
	profile, err := s.GetProfile(tenantID, profileID)
	if err != nil {
		return nil, err
	}

	if !active && profile.IsAdmin() {
		var adminCount int64
		s.db.Model(&models.UserProfile{}).
			Where("tenant_id = ? AND role = ? AND is_active = ? AND id <> ?",
				tenantID, models.ProfileRoleAdmin, true, profileID).
			Count(&adminCount)
		if adminCount == 0 {
			return nil, apperrors.NewValidation("不能停用商城的最后一名管理员")
		}
	}

	if err := s.db.Model(profile).Update("is_active", active).Error; err != nil {
		return nil, err
	}
	profile.IsActive = active

	if !active {
		s.activity.Record(&tenantID, operatorID, models.ActionProfileDeactivated, "user_profile", profile.ID, nil)
	}
	return profile, nil
}
