package services

import (
	"fmt"
	"regexp"
	"strings"

	"msp/internal/database"
	"msp/internal/models"
	"msp/pkg/config"

	"gorm.io/gorm"
)

// AvailabilityService 可用性检查 - 开通商城前对子域名/域名/公司名/邮箱做
// 格式校验与唯一性预检查。只读，不产生副作用；同一个未占用的值
// 检查多少次结果都一样。
type AvailabilityService struct {
	db *gorm.DB
}

func NewAvailabilityService() *AvailabilityService {
	return &AvailabilityService{
		db: database.GetDB(),
	}
}

// 检查结果原因常量
const (
	ReasonFormat   = "format"   // 格式不合法
	ReasonReserved = "reserved" // 保留字
	ReasonTaken    = "taken"    // 已被占用
)

// AvailabilityResult 检查结果：不可用时带具体原因，前端按原因高亮对应字段
type AvailabilityResult struct {
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
	Message   string `json:"message,omitempty"`
}

func available() *AvailabilityResult {
	return &AvailabilityResult{Available: true}
}

func unavailable(reason, message string) *AvailabilityResult {
	return &AvailabilityResult{Available: false, Reason: reason, Message: message}
}

// 子域名必须是合法DNS标签：小写字母数字和连字符，首尾不能是连字符
var subdomainPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?$`)

// 内置保留子域名，配置可追加
var builtinReserved = []string{
	"www", "api", "admin", "app", "mail", "shop", "store",
	"blog", "help", "support", "docs", "status", "cdn", "static",
	"assets", "dashboard", "billing", "id", "auth", "dev", "staging", "test",
	"smtp", "imap", "pop", "ftp", "ns1", "ns2", "mx", "system",
}

// NormalizeSubdomain 子域名归一化：小写并去除首尾空白
func NormalizeSubdomain(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizeEmail 邮箱归一化
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// IsReservedSubdomain 是否为保留子域名
func IsReservedSubdomain(sub string) bool {
	for _, r := range builtinReserved {
		if sub == r {
			return true
		}
	}
	for _, r := range config.GetConfig().Platform.ReservedSubdomains {
		if sub == r {
			return true
		}
	}
	return false
}

// ValidateSubdomainFormat 仅做格式与保留字校验，不访问数据库
func (s *AvailabilityService) ValidateSubdomainFormat(sub string) *AvailabilityResult {
	sub = NormalizeSubdomain(sub)

	if len(sub) < 2 || len(sub) > 63 || !subdomainPattern.MatchString(sub) {
		return unavailable(ReasonFormat, "子域名必须为2-63位小写字母、数字或连字符，且首尾不能是连字符")
	}
	if IsReservedSubdomain(sub) {
		return unavailable(ReasonReserved, fmt.Sprintf("子域名 %s 为系统保留，不可使用", sub))
	}
	return available()
}

// CheckSubdomain 检查子域名可用性
func (s *AvailabilityService) CheckSubdomain(sub string) (*AvailabilityResult, error) {
	sub = NormalizeSubdomain(sub)

	if result := s.ValidateSubdomainFormat(sub); !result.Available {
		return result, nil
	}

	var count int64
	if err := s.db.Model(&models.Tenant{}).Where("subdomain = ?", sub).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return unavailable(ReasonTaken, fmt.Sprintf("子域名 %s 已被占用", sub)), nil
	}
	return available(), nil
}

// 自定义域名：至少一个点，每段都是合法DNS标签
var domainPattern = regexp.MustCompile(`^([a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?\.)+[a-z]{2,}$`)

// CheckCustomDomain 检查自定义域名可用性
func (s *AvailabilityService) CheckCustomDomain(domain string) (*AvailabilityResult, error) {
	domain = NormalizeSubdomain(domain)

	if !domainPattern.MatchString(domain) {
		return unavailable(ReasonFormat, "自定义域名格式不合法"), nil
	}

	// 平台自身域名下的主机名不允许作为自定义域名
	base := config.GetConfig().Platform.BaseDomain
	if domain == base || strings.HasSuffix(domain, "."+base) {
		return unavailable(ReasonReserved, "不能使用平台域名作为自定义域名"), nil
	}

	var count int64
	if err := s.db.Model(&models.Tenant{}).Where("custom_domain = ?", domain).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return unavailable(ReasonTaken, fmt.Sprintf("域名 %s 已被占用", domain)), nil
	}
	return available(), nil
}

// CheckCompanyName 检查公司名可用性
func (s *AvailabilityService) CheckCompanyName(name string) (*AvailabilityResult, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return unavailable(ReasonFormat, "公司名称不能为空"), nil
	}

	var count int64
	if err := s.db.Model(&models.MarketplaceSettings{}).Where("company_name = ?", name).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return unavailable(ReasonTaken, fmt.Sprintf("公司名称 %s 已被使用", name)), nil
	}
	return available(), nil
}

// CheckAdminEmail 检查管理员邮箱可用性（针对主站用户表）
func (s *AvailabilityService) CheckAdminEmail(email string) (*AvailabilityResult, error) {
	email = NormalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return unavailable(ReasonFormat, "邮箱格式不合法"), nil
	}

	var count int64
	if err := s.db.Model(&models.StartupUser{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return unavailable(ReasonTaken, fmt.Sprintf("邮箱 %s 已被注册", email)), nil
	}
	return available(), nil
}

// SuggestSubdomains 基于公司名生成可用的候选子域名
func (s *AvailabilityService) SuggestSubdomains(seed string, limit int) ([]string, error) {
	if limit <= 0 || limit > 10 {
		limit = 5
	}

	base := slugify(seed)
	if base == "" {
		return []string{}, nil
	}

	candidates := []string{
		base,
		base + "-shop",
		base + "-store",
		base + "-market",
		base + "-online",
		base + "2",
		base + "3",
		"the-" + base,
		base + "-hq",
		"go-" + base,
	}

	suggestions := make([]string, 0, limit)
	for _, candidate := range candidates {
		if len(suggestions) >= limit {
			break
		}
		result, err := s.CheckSubdomain(candidate)
		if err != nil {
			return nil, err
		}
		if result.Available {
			suggestions = append(suggestions, candidate)
		}
	}
	return suggestions, nil
}

// slugify 把任意文本压成DNS安全的候选前缀
func slugify(seed string) string {
	base := strings.ToLower(strings.TrimSpace(seed))
	var b strings.Builder
	lastHyphen := true // 抑制开头的连字符
	for _, r := range base {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastHyphen = false
		case r == ' ' || r == '-' || r == '_' || r == '.':
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	out := strings.Trim(b.String(), "-")
	if len(out) > 40 {
		out = strings.Trim(out[:40], "-")
	}
	if len(out) == 1 {
		out = out + "-shop"
	}
	return out
}
