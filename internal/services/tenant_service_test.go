package services

import (
	"testing"

	"msp/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestTenantHosts(t *testing.T) {
	s := &TenantService{}
	sub := "acme"
	domain := "shop.example.com"

	t.Run("子域名加自定义域名", func(t *testing.T) {
		tenant := &models.Tenant{Subdomain: &sub, CustomDomain: &domain}
		assert.Equal(t, []string{"acme.marketable.shop", "shop.example.com"},
			s.Hosts(tenant, "marketable.shop"))
	})

	t.Run("只有子域名", func(t *testing.T) {
		tenant := &models.Tenant{Subdomain: &sub}
		assert.Equal(t, []string{"acme.marketable.shop"}, s.Hosts(tenant, "marketable.shop"))
	})

	t.Run("只有自定义域名时不拼接空子域名", func(t *testing.T) {
		tenant := &models.Tenant{CustomDomain: &domain}
		assert.Equal(t, []string{"shop.example.com"}, s.Hosts(tenant, "marketable.shop"))
	})
}
