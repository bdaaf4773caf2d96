package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsValidBillingCycle(t *testing.T) {
	assert.True(t, IsValidBillingCycle(BillingCycleMonthly))
	assert.True(t, IsValidBillingCycle(BillingCycleYearly))
	assert.False(t, IsValidBillingCycle("weekly"))
	assert.False(t, IsValidBillingCycle(""))
}

func TestPeriodEnd(t *testing.T) {
	start := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2026, 2, 15, 10, 0, 0, 0, time.UTC), PeriodEnd(start, BillingCycleMonthly))
	assert.Equal(t, time.Date(2027, 1, 15, 10, 0, 0, 0, time.UTC), PeriodEnd(start, BillingCycleYearly))
}

func TestPeriodEndMonthOverflow(t *testing.T) {
	// 1月31日加一个月按Go的日期规则落到3月初
	start := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	end := PeriodEnd(start, BillingCycleMonthly)
	assert.True(t, end.After(start.AddDate(0, 0, 27)))
}
