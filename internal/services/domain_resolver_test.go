package services

import (
	"context"
	"errors"
	"testing"

	"msp/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTenantDirectory 内存租户目录
type fakeTenantDirectory struct {
	bySubdomain map[string]*models.Tenant
	byDomain    map[string]*models.Tenant
	err         error
}

func (d *fakeTenantDirectory) FindBySubdomain(subdomain string) (*models.Tenant, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.bySubdomain[subdomain], nil
}

func (d *fakeTenantDirectory) FindByCustomDomain(domain string) (*models.Tenant, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.byDomain[domain], nil
}

func newTestResolver(directory TenantDirectory) *DomainResolver {
	return NewDomainResolverWith(
		"marketable.shop",
		[]string{"marketable.shop", "www.marketable.shop", "localhost"},
		directory,
	)
}

func TestDomainResolverClassify(t *testing.T) {
	resolver := newTestResolver(&fakeTenantDirectory{})

	tests := []struct {
		name      string
		host      string
		kind      string
		subdomain string
	}{
		{"根域名是主站", "marketable.shop", HostKindMain, ""},
		{"www在主站列表", "www.marketable.shop", HostKindMain, ""},
		{"localhost是主站", "localhost", HostKindMain, ""},
		{"带端口的主站", "localhost:8080", HostKindMain, ""},
		{"租户子域名", "acme.marketable.shop", HostKindSubdomain, "acme"},
		{"大写归一化", "ACME.Marketable.Shop", HostKindSubdomain, "acme"},
		{"带端口的子域名", "acme.marketable.shop:443", HostKindSubdomain, "acme"},
		{"保留子域名按系统处理", "api.marketable.shop", HostKindSystem, ""},
		{"多级子域名不分配", "a.b.marketable.shop", HostKindNone, ""},
		{"外部域名按自定义处理", "shop.example.com", HostKindCustom, ""},
		{"裸外部域名", "example.com", HostKindCustom, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolution := resolver.Classify(tt.host)
			assert.Equal(t, tt.kind, resolution.Kind)
			assert.Equal(t, tt.subdomain, resolution.Subdomain)
		})
	}
}

func TestDomainResolverResolveSubdomain(t *testing.T) {
	sub := "acme"
	tenant := &models.Tenant{Subdomain: &sub}
	tenant.ID = 42

	resolver := newTestResolver(&fakeTenantDirectory{
		bySubdomain: map[string]*models.Tenant{"acme": tenant},
	})

	resolution, err := resolver.Resolve(context.Background(), "acme.marketable.shop")
	require.NoError(t, err)
	assert.Equal(t, HostKindSubdomain, resolution.Kind)
	require.NotNil(t, resolution.TenantID)
	assert.Equal(t, uint(42), *resolution.TenantID)
}

func TestDomainResolverResolveUnknownSubdomain(t *testing.T) {
	resolver := newTestResolver(&fakeTenantDirectory{})

	resolution, err := resolver.Resolve(context.Background(), "ghost.marketable.shop")
	require.NoError(t, err)
	assert.Equal(t, HostKindNone, resolution.Kind)
	assert.Nil(t, resolution.TenantID)
}

func TestDomainResolverResolveCustomDomain(t *testing.T) {
	// 只配自定义域名的租户，Subdomain保持NULL
	domain := "shop.example.com"
	tenant := &models.Tenant{CustomDomain: &domain}
	tenant.ID = 7

	resolver := newTestResolver(&fakeTenantDirectory{
		byDomain: map[string]*models.Tenant{"shop.example.com": tenant},
	})

	resolution, err := resolver.Resolve(context.Background(), "shop.example.com")
	require.NoError(t, err)
	assert.Equal(t, HostKindCustom, resolution.Kind)
	require.NotNil(t, resolution.TenantID)
	assert.Equal(t, uint(7), *resolution.TenantID)
}

func TestDomainResolverResolveMainSkipsLookup(t *testing.T) {
	// 主站和系统子域名不触发租户查找，目录报错也不影响
	resolver := newTestResolver(&fakeTenantDirectory{err: errors.New("db down")})

	for _, host := range []string{"marketable.shop", "www.marketable.shop", "api.marketable.shop"} {
		resolution, err := resolver.Resolve(context.Background(), host)
		require.NoError(t, err, host)
		assert.True(t, resolution.IsMainSite(), host)
		assert.Nil(t, resolution.TenantID)
	}
}

func TestDomainResolverResolveDirectoryError(t *testing.T) {
	resolver := newTestResolver(&fakeTenantDirectory{err: errors.New("db down")})

	_, err := resolver.Resolve(context.Background(), "acme.marketable.shop")
	assert.Error(t, err)
}

func TestNormalizeHost(t *testing.T) {
	assert.Equal(t, "acme.marketable.shop", NormalizeHost("ACME.marketable.shop:8443"))
	assert.Equal(t, "example.com", NormalizeHost("example.com."))
	assert.Equal(t, "localhost", NormalizeHost(" localhost "))
}
