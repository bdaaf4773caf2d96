package services

import (
	"context"
	"errors"
	"net"
	"strings"

	"msp/internal/database"
	"msp/internal/models"
	"msp/pkg/cache"
	"msp/pkg/config"
	"msp/pkg/logger"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// 主机名分类常量
const (
	HostKindMain      = "main"      // 主站（获客站点）
	HostKindSystem    = "system"    // 保留系统子域名，按主站处理
	HostKindSubdomain = "subdomain" // 租户子域名
	HostKindCustom    = "custom"    // 租户自定义域名
	HostKindNone      = "none"      // 无匹配租户
)

// DomainResolution 域名解析结果：解析出的租户ID作为显式输入向下传递，
// 下游不再从Host头自行推导
type DomainResolution struct {
	Kind      string `json:"kind"`
	Host      string `json:"host"`
	Subdomain string `json:"subdomain,omitempty"`
	TenantID  *uint  `json:"tenant_id,omitempty"`
}

// IsMainSite 是否按主站处理
func (r *DomainResolution) IsMainSite() bool {
	return r.Kind == HostKindMain || r.Kind == HostKindSystem
}

// TenantDirectory 租户查找接口
type TenantDirectory interface {
	FindBySubdomain(subdomain string) (*models.Tenant, error)
	FindByCustomDomain(domain string) (*models.Tenant, error)
}

// gormTenantDirectory 基于数据库的租户查找
type gormTenantDirectory struct {
	db *gorm.DB
}

func (d *gormTenantDirectory) FindBySubdomain(subdomain string) (*models.Tenant, error) {
	var tenant models.Tenant
	err := d.db.Where("subdomain = ? AND status = ?", subdomain, models.TenantStatusActive).First(&tenant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tenant, nil
}

func (d *gormTenantDirectory) FindByCustomDomain(domain string) (*models.Tenant, error) {
	var tenant models.Tenant
	err := d.db.Where("custom_domain = ? AND status = ?", domain, models.TenantStatusActive).First(&tenant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tenant, nil
}

// DomainResolver 域名解析 - 把入站Host映射为租户ID。
// 结果经Redis按TTL做读穿缓存，开通和注销时显式失效。
type DomainResolver struct {
	baseDomain string
	mainHosts  []string
	directory  TenantDirectory
	cache      *cache.RedisCache
	log        *logrus.Logger
}

// NewDomainResolver 创建域名解析器
func NewDomainResolver() *DomainResolver {
	cfg := config.GetConfig()
	return &DomainResolver{
		baseDomain: cfg.Platform.BaseDomain,
		mainHosts:  cfg.Platform.MainHosts,
		directory:  &gormTenantDirectory{db: database.GetDB()},
		cache:      database.GetRedisCache(),
		log:        logger.GetLogger(),
	}
}

// NewDomainResolverWith 注入依赖的构造（测试用）
func NewDomainResolverWith(baseDomain string, mainHosts []string, directory TenantDirectory) *DomainResolver {
	return &DomainResolver{
		baseDomain: baseDomain,
		mainHosts:  mainHosts,
		directory:  directory,
		log:        logger.GetLogger(),
	}
}

// NormalizeHost 去掉端口并转小写
func NormalizeHost(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return strings.TrimSuffix(host, ".")
}

// Classify 仅做分类，不查库
func (r *DomainResolver) Classify(host string) *DomainResolution {
	host = NormalizeHost(host)
	resolution := &DomainResolution{Host: host}

	for _, main := range r.mainHosts {
		if host == strings.ToLower(main) {
			resolution.Kind = HostKindMain
			return resolution
		}
	}

	if host == r.baseDomain {
		resolution.Kind = HostKindMain
		return resolution
	}

	if suffix := "." + r.baseDomain; strings.HasSuffix(host, suffix) {
		sub := strings.TrimSuffix(host, suffix)
		if strings.Contains(sub, ".") {
			// 多级子域名不分配给租户
			resolution.Kind = HostKindNone
			return resolution
		}
		if IsReservedSubdomain(sub) {
			resolution.Kind = HostKindSystem
			return resolution
		}
		resolution.Kind = HostKindSubdomain
		resolution.Subdomain = sub
		return resolution
	}

	resolution.Kind = HostKindCustom
	return resolution
}

// Resolve 解析入站主机名对应的租户；无匹配时TenantID为nil，
// 调用方按主站/404处理
func (r *DomainResolver) Resolve(ctx context.Context, host string) (*DomainResolution, error) {
	resolution := r.Classify(host)
	if resolution.Kind == HostKindMain || resolution.Kind == HostKindSystem || resolution.Kind == HostKindNone {
		return resolution, nil
	}

	if r.cache != nil {
		var cached DomainResolution
		hit, err := r.cache.GetJSON(ctx, "resolve:"+resolution.Host, &cached)
		if err != nil {
			// 缓存故障降级为直查数据库
			r.log.Warnf("域名解析缓存读取失败 host=%s: %v", resolution.Host, err)
		} else if hit {
			return &cached, nil
		}
	}

	var tenant *models.Tenant
	var err error
	if resolution.Kind == HostKindSubdomain {
		tenant, err = r.directory.FindBySubdomain(resolution.Subdomain)
	} else {
		tenant, err = r.directory.FindByCustomDomain(resolution.Host)
	}
	if err != nil {
		return nil, err
	}

	if tenant == nil {
		resolution.Kind = HostKindNone
		resolution.TenantID = nil
	} else {
		resolution.TenantID = &tenant.ID
	}

	if r.cache != nil {
		if err := r.cache.SetJSON(ctx, "resolve:"+resolution.Host, resolution); err != nil {
			r.log.Warnf("域名解析缓存写入失败 host=%s: %v", resolution.Host, err)
		}
	}

	return resolution, nil
}

// Invalidate 开通、注销或改域名后失效对应缓存
func (r *DomainResolver) Invalidate(ctx context.Context, hosts ...string) {
	if r.cache == nil || len(hosts) == 0 {
		return
	}
	keys := make([]string, 0, len(hosts))
	for _, h := range hosts {
		keys = append(keys, "resolve:"+NormalizeHost(h))
	}
	if err := r.cache.Delete(ctx, keys...); err != nil {
		r.log.Warnf("域名解析缓存失效失败: %v", err)
	}
}
