package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validProvisionRequest() *ProvisionRequest {
	return &ProvisionRequest{
		CompanyName:  "Acme Corp",
		FirstName:    "Ada",
		LastName:     "Wong",
		Email:        "ada@acme.com",
		Password:     "secret-pass",
		Subdomain:    "acme",
		PlanID:       1,
		BillingCycle: "monthly",
	}
}

func TestProvisionRequestNormalize(t *testing.T) {
	req := &ProvisionRequest{
		CompanyName:  "  Acme Corp  ",
		FirstName:    " Ada ",
		LastName:     " Wong ",
		Email:        " ADA@Acme.COM ",
		Subdomain:    " ACME ",
		CustomDomain: " Shop.Example.COM ",
	}
	req.normalize()

	assert.Equal(t, "Acme Corp", req.CompanyName)
	assert.Equal(t, "Ada", req.FirstName)
	assert.Equal(t, "Wong", req.LastName)
	assert.Equal(t, "ada@acme.com", req.Email)
	assert.Equal(t, "acme", req.Subdomain)
	assert.Equal(t, "shop.example.com", req.CustomDomain)
}

func TestProvisionRequestTenant(t *testing.T) {
	t.Run("两个域名都填", func(t *testing.T) {
		req := validProvisionRequest()
		req.CustomDomain = "shop.example.com"
		req.normalize()

		tenant := req.tenant()
		require.NotNil(t, tenant.Subdomain)
		assert.Equal(t, "acme", *tenant.Subdomain)
		require.NotNil(t, tenant.CustomDomain)
		assert.Equal(t, "shop.example.com", *tenant.CustomDomain)
	})

	t.Run("只填自定义域名时子域名保持NULL", func(t *testing.T) {
		// 空串会进唯一索引，两个只填自定义域名的租户就会相互冲突
		req := validProvisionRequest()
		req.Subdomain = ""
		req.CustomDomain = "shop.example.com"
		req.normalize()

		tenant := req.tenant()
		assert.Nil(t, tenant.Subdomain)
		require.NotNil(t, tenant.CustomDomain)
		assert.Equal(t, "shop.example.com", *tenant.CustomDomain)
	})

	t.Run("只填子域名时自定义域名保持NULL", func(t *testing.T) {
		req := validProvisionRequest()
		req.normalize()

		tenant := req.tenant()
		require.NotNil(t, tenant.Subdomain)
		assert.Nil(t, tenant.CustomDomain)
	})
}

func TestProvisionRequestValidate(t *testing.T) {
	t.Run("合法请求无错误", func(t *testing.T) {
		req := validProvisionRequest()
		req.normalize()
		assert.Empty(t, req.validate())
	})

	t.Run("只填自定义域名也可以", func(t *testing.T) {
		req := validProvisionRequest()
		req.Subdomain = ""
		req.CustomDomain = "shop.example.com"
		req.normalize()
		assert.Empty(t, req.validate())
	})

	t.Run("逐字段错误全部返回", func(t *testing.T) {
		req := &ProvisionRequest{
			Email:        "not-an-email",
			Password:     "short",
			BillingCycle: "weekly",
		}
		req.normalize()
		errs := req.validate()

		// 公司名、姓名、邮箱、密码、域名、计费周期各报一条
		require.Len(t, errs, 6)
	})

	tests := []struct {
		name   string
		mutate func(*ProvisionRequest)
	}{
		{"缺公司名", func(r *ProvisionRequest) { r.CompanyName = "  " }},
		{"缺姓名", func(r *ProvisionRequest) { r.FirstName = "" }},
		{"坏邮箱", func(r *ProvisionRequest) { r.Email = "nope" }},
		{"密码过短", func(r *ProvisionRequest) { r.Password = "1234567" }},
		{"域名全空", func(r *ProvisionRequest) { r.Subdomain = ""; r.CustomDomain = "" }},
		{"计费周期不合法", func(r *ProvisionRequest) { r.BillingCycle = "daily" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validProvisionRequest()
			tt.mutate(req)
			req.normalize()
			assert.NotEmpty(t, req.validate())
		})
	}
}
