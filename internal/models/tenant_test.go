package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTenantIsServable(t *testing.T) {
	assert.True(t, (&Tenant{Status: TenantStatusActive}).IsServable())
	assert.False(t, (&Tenant{Status: TenantStatusProvisioning}).IsServable())
	assert.False(t, (&Tenant{Status: TenantStatusSuspended}).IsServable())
	assert.False(t, (&Tenant{Status: TenantStatusCancelled}).IsServable())
}

func TestTenantSubdomain(t *testing.T) {
	sub := "acme"
	assert.True(t, (&Tenant{Subdomain: &sub}).HasSubdomain())
	assert.Equal(t, "acme", (&Tenant{Subdomain: &sub}).SubdomainName())

	assert.False(t, (&Tenant{}).HasSubdomain())
	assert.Equal(t, "", (&Tenant{}).SubdomainName())
}
