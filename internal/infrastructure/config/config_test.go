package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "roofpo-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "roofpo", cfg.Database.DBName)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 365, cfg.Archive.RetentionDays)
		assert.Equal(t, 24*time.Hour, cfg.Archive.Interval)
		assert.False(t, cfg.Redis.Enabled)
		assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
	})

	t.Run("applies route rate limit defaults", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, 50, cfg.HTTP.WriteRateLimit)
		assert.Equal(t, 300, cfg.HTTP.ReadRateLimit)
		assert.Equal(t, 200, cfg.HTTP.ReportRateLimit)
		assert.Equal(t, 10, cfg.HTTP.LoginRateLimit)
		assert.Equal(t, time.Minute, cfg.HTTP.RateLimitWindow)
	})

	t.Run("applies approval and tolerance defaults", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)

		assert.True(t, cfg.Approval.AutoApproveLimit.Equal(decimal.NewFromInt(500)))
		assert.True(t, cfg.Approval.OperationsThreshold.Equal(decimal.NewFromInt(5000)))
		assert.True(t, cfg.Approval.ExecutiveThreshold.Equal(decimal.NewFromInt(25000)))
		assert.True(t, cfg.Reconciliation.TolerancePercent.Equal(decimal.NewFromInt(2)))
		assert.True(t, cfg.Reconciliation.ToleranceAmount.Equal(decimal.NewFromInt(5)))
	})

	t.Run("loads values from environment variables with PO prefix", func(t *testing.T) {
		t.Setenv("PO_APP_NAME", "test-app")
		t.Setenv("PO_APP_PORT", "9000")
		t.Setenv("PO_DATABASE_HOST", "testdb.local")
		t.Setenv("PO_DATABASE_PORT", "5433")
		t.Setenv("PO_DATABASE_MAX_OPEN_CONNS", "50")
		t.Setenv("PO_DATABASE_MAX_IDLE_CONNS", "10")
		t.Setenv("PO_APPROVAL_AUTO_APPROVE_LIMIT", "750.50")
		t.Setenv("PO_ARCHIVE_INTERVAL", "6h")
		t.Setenv("PO_REDIS_ENABLED", "true")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, 50, cfg.Database.MaxOpenConns)
		assert.Equal(t, 10, cfg.Database.MaxIdleConns)
		assert.True(t, cfg.Approval.AutoApproveLimit.Equal(decimal.RequireFromString("750.50")))
		assert.Equal(t, 6*time.Hour, cfg.Archive.Interval)
		assert.True(t, cfg.Redis.Enabled)
	})

	t.Run("rejects malformed money settings", func(t *testing.T) {
		t.Setenv("PO_RECONCILIATION_TOLERANCE_AMOUNT", "five")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "reconciliation.tolerance_amount")
	})

	t.Run("rejects idle conns above open conns", func(t *testing.T) {
		t.Setenv("PO_DATABASE_MAX_OPEN_CONNS", "5")
		t.Setenv("PO_DATABASE_MAX_IDLE_CONNS", "10")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot exceed")
	})
}

func TestLoad_ApprovalValidation(t *testing.T) {
	t.Run("thresholds out of order", func(t *testing.T) {
		t.Setenv("PO_APPROVAL_OPERATIONS_THRESHOLD", "30000")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "approval.executive_threshold")
	})

	t.Run("operations below auto approve", func(t *testing.T) {
		t.Setenv("PO_APPROVAL_AUTO_APPROVE_LIMIT", "6000")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "approval.operations_threshold")
	})

	t.Run("negative tolerance", func(t *testing.T) {
		t.Setenv("PO_RECONCILIATION_TOLERANCE_PERCENT", "-1")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "tolerance cannot be negative")
	})

	t.Run("sampling ratio out of range", func(t *testing.T) {
		t.Setenv("PO_TELEMETRY_SAMPLING_RATIO", "1.5")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sampling_ratio")
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	setValidProductionBase := func(t *testing.T) {
		t.Setenv("PO_APP_ENV", "production")
		t.Setenv("PO_JWT_SECRET", "this-is-a-very-secure-jwt-secret-key-32chars")
		t.Setenv("PO_DATABASE_PASSWORD", "secure-password")
		t.Setenv("PO_DATABASE_SSLMODE", "require")
		t.Setenv("PO_SWAGGER_ENABLED", "false")
	}

	t.Run("requires jwt.secret at least 32 characters in production", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("PO_JWT_SECRET", "short-secret")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jwt.secret must be at least 32 characters")
	})

	t.Run("requires database.password in production", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("PO_DATABASE_PASSWORD", "")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.password is required in production")
	})

	t.Run("requires SSL enabled in production", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("PO_DATABASE_SSLMODE", "disable")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.sslmode cannot be 'disable' in production")
	})

	t.Run("fails if swagger enabled without auth in production", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("PO_SWAGGER_ENABLED", "true")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "swagger endpoint must be disabled or require authentication")
	})

	t.Run("passes validation with valid production config", func(t *testing.T) {
		setValidProductionBase(t)

		cfg, err := Load()
		require.NoError(t, err)
		assert.True(t, cfg.IsProduction())
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Run("generates valid DSN", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "testuser",
			Password: "testpass",
			DBName:   "testdb",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		assert.Contains(t, dsn, "localhost:5432")
		assert.Contains(t, dsn, "testuser")
		assert.Contains(t, dsn, "/testdb")
		assert.Contains(t, dsn, "sslmode=disable")
	})

	t.Run("escapes special characters in password", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "user",
			Password: "pass@word#123",
			DBName:   "db",
			SSLMode:  "disable",
		}

		assert.Contains(t, cfg.DSN(), "pass%40word%23123")
	})
}
