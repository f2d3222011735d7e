package config

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/mingree")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, "postgres://u:p@db:5432/mingree", cfg.DatabaseURL)
	assert.NotEmpty(t, cfg.JWTSecret)
	assert.NotEmpty(t, cfg.DepositSecret)
	assert.True(t, cfg.Billing.MinWithdrawal.Equal(decimal.NewFromInt(500)))
	assert.True(t, cfg.Billing.PlatformFeePercent.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, 30, cfg.Billing.ProPlanDays)
	assert.Equal(t, "48h0m0s", cfg.Reservation.TTL.String())
	assert.Equal(t, 100, cfg.Reservation.SweepBatch)
	assert.Len(t, cfg.AllowedOrigins, 2)
}

func TestLoad_ProductionRequiresSecrets(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "short")
	t.Setenv("REFRESH_SECRET", "short")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_ProductionRequiresDepositSecret(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("REFRESH_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("DEPOSIT_SIGNING_SECRET", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://mingree.in")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DEPOSIT_SIGNING_SECRET")
}

func TestLoad_ProductionRequiresOrigins(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("REFRESH_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("DEPOSIT_SIGNING_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")

	_, err := Load()
	assert.Error(t, err)

	t.Setenv("CORS_ALLOWED_ORIGINS", "https://mingree.in, https://admin.mingree.in,")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://mingree.in", "https://admin.mingree.in"}, cfg.AllowedOrigins)
}

func TestLoad_RejectsBadPercent(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("PLATFORM_FEE_PERCENT", "120")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_RejectsNonPositiveReservationSettings(t *testing.T) {
	cases := map[string]string{
		"RESERVATION_TTL":              "0s",
		"RESERVATION_SWEEP_INTERVAL":   "-1m",
		"RESERVATION_SWEEP_BATCH":      "0",
		"FREE_MAX_ACTIVE_RESERVATIONS": "0",
		"PRO_MAX_ACTIVE_RESERVATIONS":  "-2",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv("APP_ENV", "development")
			t.Setenv(key, value)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestGetDatabaseURL_FromParts(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("POSTGRESQL_HOST", "pg")
	t.Setenv("POSTGRESQL_USER", "app")
	t.Setenv("POSTGRESQL_PASSWORD", "p@ss")
	t.Setenv("POSTGRESQL_DBNAME", "mingree")

	assert.Equal(t, "postgres://app:p%40ss@pg:5432/mingree?sslmode=disable", getDatabaseURL())
}
