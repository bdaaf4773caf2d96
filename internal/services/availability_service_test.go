package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSubdomainFormat(t *testing.T) {
	svc := &AvailabilityService{}

	tests := []struct {
		name      string
		subdomain string
		available bool
		reason    string
	}{
		{"合法子域名", "acme", true, ""},
		{"带数字和连字符", "acme-2shop", true, ""},
		{"大写自动归一化", "ACME", true, ""},
		{"带首尾空白", "  acme  ", true, ""},
		{"单字符太短", "a", false, ReasonFormat},
		{"空字符串", "", false, ReasonFormat},
		{"开头连字符", "-acme", false, ReasonFormat},
		{"结尾连字符", "acme-", false, ReasonFormat},
		{"含下划线", "ac_me", false, ReasonFormat},
		{"含点号", "ac.me", false, ReasonFormat},
		{"含中文", "绝好商城", false, ReasonFormat},
		{"超过63位", "a012345678901234567890123456789012345678901234567890123456789012", false, ReasonFormat},
		{"保留字www", "www", false, ReasonReserved},
		{"保留字api", "api", false, ReasonReserved},
		{"保留字admin", "admin", false, ReasonReserved},
		{"保留字大写也拦截", "WWW", false, ReasonReserved},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := svc.ValidateSubdomainFormat(tt.subdomain)
			assert.Equal(t, tt.available, result.Available)
			assert.Equal(t, tt.reason, result.Reason)
			if !tt.available {
				assert.NotEmpty(t, result.Message)
			}
		})
	}
}

func TestValidateSubdomainFormatExactly63(t *testing.T) {
	svc := &AvailabilityService{}

	// 63位是DNS标签的上限，应当放行
	sub := "a01234567890123456789012345678901234567890123456789012345678901"
	assert.Len(t, sub, 63)
	assert.True(t, svc.ValidateSubdomainFormat(sub).Available)
}

func TestNormalizeSubdomain(t *testing.T) {
	assert.Equal(t, "acme", NormalizeSubdomain("  ACME  "))
	assert.Equal(t, "acme-shop", NormalizeSubdomain("Acme-Shop"))
	assert.Equal(t, "", NormalizeSubdomain("   "))
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "a@b.com", NormalizeEmail(" A@B.COM "))
}

func TestIsReservedSubdomain(t *testing.T) {
	for _, sub := range []string{"www", "api", "admin", "mail", "system"} {
		assert.True(t, IsReservedSubdomain(sub), sub)
	}
	assert.False(t, IsReservedSubdomain("acme"))
	assert.False(t, IsReservedSubdomain("wwww"))
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		seed string
		want string
	}{
		{"普通公司名", "Acme Corp", "acme-corp"},
		{"多余空白折叠", "Acme   Corp", "acme-corp"},
		{"下划线和点号", "acme_corp.io", "acme-corp-io"},
		{"全符号", "!!!", ""},
		{"中英混排只留英文", "绝好acme商城", "acme"},
		{"首尾连字符剥掉", "-acme-", "acme"},
		{"单字符补后缀", "a", "a-shop"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, slugify(tt.seed))
		})
	}
}

func TestSlugifyLongSeedTruncated(t *testing.T) {
	seed := "this is a very long company name that keeps going and going forever"
	out := slugify(seed)
	assert.LessOrEqual(t, len(out), 40)
	// 截断后不应以连字符收尾
	assert.NotEqual(t, byte('-'), out[len(out)-1])
}
