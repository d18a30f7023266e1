package config

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "./leave.db", cfg.DB.Path)
	assert.Equal(t, 0.75, cfg.Policy.AccrualRatePerMonth)
	assert.Equal(t, 9.0, cfg.Policy.MonthlyCap)
	assert.Equal(t, 1.0, cfg.Policy.MonthlyQuota)
	assert.Equal(t, 7.5, cfg.Policy.EarnedLumpSum)
	assert.Equal(t, 6, cfg.Policy.TenureMonths)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("APP_ENV", "production")
	t.Setenv("LEAVE_ACCRUAL_RATE_PER_MONTH", "1.25")
	t.Setenv("LEAVE_TENURE_MONTHS", "3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.App.Port)
	assert.Equal(t, "production", cfg.App.Env)
	assert.Equal(t, 1.25, cfg.Policy.AccrualRatePerMonth)
	assert.Equal(t, 3, cfg.Policy.TenureMonths)
}

func TestLoad_InvalidNumber(t *testing.T) {
	t.Setenv("PORT", "not-a-port")

	_, err := Load()
	assert.Error(t, err)
}

func TestPolicyRules_Conversion(t *testing.T) {
	p := PolicyConfig{
		AccrualRatePerMonth: 0.75,
		MonthlyCap:          9,
		MonthlyQuota:        1,
		EarnedLumpSum:       7.5,
		TenureMonths:        6,
	}
	rules := p.Rules()

	assert.True(t, rules.AccrualRatePerMonth.Equal(decimal.NewFromFloat(0.75)))
	assert.True(t, rules.MonthlyCap.Equal(decimal.NewFromInt(9)))
	assert.True(t, rules.MonthlyQuota.Equal(decimal.NewFromInt(1)))
	assert.True(t, rules.EarnedLumpSum.Equal(decimal.NewFromFloat(7.5)))
	assert.Equal(t, 6, rules.TenureMonths)
}
