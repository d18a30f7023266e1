// Package config loads application configuration from the environment,
// with an optional .env file for local development. The accrual policy
// constants live here so a policy change is a deployment setting, not a
// code edit.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/nimbushr/leave-engine/leave"
)

type Config struct {
	App    AppConfig
	DB     DBConfig
	Auth   AuthConfig
	Policy PolicyConfig
}

type AppConfig struct {
	Port int
	Env  string
}

type DBConfig struct {
	// Path to the SQLite database file; ":memory:" for ephemeral.
	Path string
}

type AuthConfig struct {
	// JWTSecret verifies bearer tokens issued by the external auth service.
	JWTSecret string
}

// PolicyConfig carries the accrual policy constants.
type PolicyConfig struct {
	AccrualRatePerMonth float64
	MonthlyCap          float64
	MonthlyQuota        float64
	EarnedLumpSum       float64
	TenureMonths        int
}

func Load() (*Config, error) {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := &Config{}

	port, err := intEnv("PORT", 8080)
	if err != nil {
		return nil, err
	}
	cfg.App = AppConfig{
		Port: port,
		Env:  getEnv("APP_ENV", "development"),
	}

	cfg.DB = DBConfig{
		Path: getEnv("DB_PATH", "./leave.db"),
	}

	cfg.Auth = AuthConfig{
		JWTSecret: getEnv("JWT_SECRET", "dev-secret"),
	}

	rate, err := floatEnv("LEAVE_ACCRUAL_RATE_PER_MONTH", 0.75)
	if err != nil {
		return nil, err
	}
	cap, err := floatEnv("LEAVE_MONTHLY_CAP", 9)
	if err != nil {
		return nil, err
	}
	quota, err := floatEnv("LEAVE_MONTHLY_QUOTA", 1)
	if err != nil {
		return nil, err
	}
	lump, err := floatEnv("LEAVE_EARNED_LUMP_SUM", 7.5)
	if err != nil {
		return nil, err
	}
	tenure, err := intEnv("LEAVE_TENURE_MONTHS", 6)
	if err != nil {
		return nil, err
	}
	cfg.Policy = PolicyConfig{
		AccrualRatePerMonth: rate,
		MonthlyCap:          cap,
		MonthlyQuota:        quota,
		EarnedLumpSum:       lump,
		TenureMonths:        tenure,
	}

	return cfg, nil
}

// Rules converts the policy configuration into engine rules.
func (p PolicyConfig) Rules() leave.Rules {
	return leave.Rules{
		AccrualRatePerMonth: decimal.NewFromFloat(p.AccrualRatePerMonth),
		MonthlyCap:          decimal.NewFromFloat(p.MonthlyCap),
		EarnedLumpSum:       decimal.NewFromFloat(p.EarnedLumpSum),
		TenureMonths:        p.TenureMonths,
		MonthlyQuota:        decimal.NewFromFloat(p.MonthlyQuota),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func floatEnv(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}
