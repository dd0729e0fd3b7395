package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configEnvKeys = []string{
	"FSR_APP_NAME",
	"FSR_APP_ENV",
	"FSR_APP_PORT",
	"FSR_DATABASE_HOST",
	"FSR_DATABASE_PORT",
	"FSR_DATABASE_USER",
	"FSR_DATABASE_PASSWORD",
	"FSR_DATABASE_DBNAME",
	"FSR_DATABASE_SSLMODE",
	"FSR_DATABASE_MAX_OPEN_CONNS",
	"FSR_DATABASE_MAX_IDLE_CONNS",
	"FSR_DATABASE_AUTO_MIGRATE",
	"FSR_REDIS_ENABLED",
	"FSR_REPORT_TIMEZONE",
	"FSR_REPORT_PERIOD_DAYS",
	"FSR_INGEST_BATCH_SIZE",
	"FSR_INGEST_IDENTITY_CACHE_TTL",
	"FSR_INGEST_RATE_LIMIT",
	"FSR_HTTP_CORS_ALLOW_ORIGINS",
	"FSR_TELEMETRY_ENABLED",
	"FSR_TELEMETRY_COLLECTOR_ENDPOINT",
	"FSR_TELEMETRY_SAMPLING_RATIO",
	"FSR_TELEMETRY_DB_TRACE_ENABLED",
	"FSR_LOG_SAMPLE_INITIAL",
	"FSR_LOG_SAMPLE_THEREAFTER",
}

// clearConfigEnv unsets every key for the duration of the test
func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, k := range configEnvKeys {
		if v, ok := os.LookupEnv(k); ok {
			t.Cleanup(func() { os.Setenv(k, v) })
			os.Unsetenv(k)
		}
	}
}

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearConfigEnv(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "fieldsales-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "fieldsales", cfg.Database.DBName)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)
		assert.False(t, cfg.Redis.Enabled)
		assert.False(t, cfg.Database.AutoMigrate)
		assert.Equal(t, "Asia/Kolkata", cfg.Report.Timezone)
		assert.Equal(t, 30, cfg.Report.PeriodDays)
		assert.Equal(t, 1000, cfg.Ingest.BatchSize)
		assert.Equal(t, 24*time.Hour, cfg.Ingest.IdentityCacheTTL)
		assert.Equal(t, "windows-1252", cfg.Ingest.LegacyEncoding)
		assert.Equal(t, 30, cfg.Ingest.RateLimit)
		assert.Equal(t, time.Minute, cfg.Ingest.RateWindow)
		assert.False(t, cfg.Telemetry.Enabled)
		assert.Equal(t, "localhost:4317", cfg.Telemetry.CollectorEndpoint)
		assert.Equal(t, 1.0, cfg.Telemetry.SamplingRatio)
		assert.Equal(t, time.Minute, cfg.Telemetry.MetricsInterval)
		assert.Zero(t, cfg.Log.SampleInitial)
	})

	t.Run("loads values from environment variables with FSR prefix", func(t *testing.T) {
		clearConfigEnv(t)
		t.Setenv("FSR_APP_NAME", "test-app")
		t.Setenv("FSR_APP_PORT", "9000")
		t.Setenv("FSR_DATABASE_HOST", "testdb.local")
		t.Setenv("FSR_DATABASE_PORT", "5433")
		t.Setenv("FSR_DATABASE_MAX_OPEN_CONNS", "50")
		t.Setenv("FSR_DATABASE_MAX_IDLE_CONNS", "10")
		t.Setenv("FSR_REDIS_ENABLED", "true")
		t.Setenv("FSR_DATABASE_AUTO_MIGRATE", "true")
		t.Setenv("FSR_REPORT_TIMEZONE", "UTC")
		t.Setenv("FSR_INGEST_BATCH_SIZE", "250")
		t.Setenv("FSR_INGEST_IDENTITY_CACHE_TTL", "2h")
		t.Setenv("FSR_INGEST_RATE_LIMIT", "-1")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, 50, cfg.Database.MaxOpenConns)
		assert.Equal(t, 10, cfg.Database.MaxIdleConns)
		assert.True(t, cfg.Redis.Enabled)
		assert.True(t, cfg.Database.AutoMigrate)
		assert.Equal(t, "UTC", cfg.Report.Timezone)
		assert.Equal(t, 250, cfg.Ingest.BatchSize)
		assert.Equal(t, 2*time.Hour, cfg.Ingest.IdentityCacheTTL)
		assert.Equal(t, -1, cfg.Ingest.RateLimit)
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		clearConfigEnv(t)
		t.Setenv("FSR_DATABASE_MAX_OPEN_CONNS", "10")
		t.Setenv("FSR_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("rejects an unknown timezone", func(t *testing.T) {
		clearConfigEnv(t)
		t.Setenv("FSR_REPORT_TIMEZONE", "Mars/Olympus")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "report.timezone")
	})

	t.Run("loads telemetry settings", func(t *testing.T) {
		clearConfigEnv(t)
		t.Setenv("FSR_TELEMETRY_ENABLED", "true")
		t.Setenv("FSR_TELEMETRY_COLLECTOR_ENDPOINT", "otel-collector:4317")
		t.Setenv("FSR_TELEMETRY_SAMPLING_RATIO", "0")
		t.Setenv("FSR_TELEMETRY_DB_TRACE_ENABLED", "true")
		t.Setenv("FSR_LOG_SAMPLE_INITIAL", "100")
		t.Setenv("FSR_LOG_SAMPLE_THEREAFTER", "50")

		cfg, err := Load()
		require.NoError(t, err)
		assert.True(t, cfg.Telemetry.Enabled)
		assert.Equal(t, "otel-collector:4317", cfg.Telemetry.CollectorEndpoint)
		assert.Zero(t, cfg.Telemetry.SamplingRatio)
		assert.True(t, cfg.Telemetry.DBTrace)
		assert.False(t, cfg.Telemetry.DBTraceVariables)
		assert.Equal(t, 100, cfg.Log.SampleInitial)
		assert.Equal(t, 50, cfg.Log.SampleThereafter)
	})

	t.Run("rejects a sampling ratio above one", func(t *testing.T) {
		clearConfigEnv(t)
		t.Setenv("FSR_TELEMETRY_SAMPLING_RATIO", "1.5")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "telemetry.sampling_ratio")
	})

	t.Run("rejects a period length outside a month", func(t *testing.T) {
		clearConfigEnv(t)
		t.Setenv("FSR_REPORT_PERIOD_DAYS", "45")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "report.period_days")
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	setValidProductionBase := func(t *testing.T) {
		clearConfigEnv(t)
		t.Setenv("FSR_APP_ENV", "production")
		t.Setenv("FSR_DATABASE_PASSWORD", "secure-password")
		t.Setenv("FSR_DATABASE_SSLMODE", "require")
	}

	t.Run("passes validation with valid production config", func(t *testing.T) {
		setValidProductionBase(t)

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "production", cfg.App.Env)
	})

	t.Run("requires database.password in production", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("FSR_DATABASE_PASSWORD", "")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.password is required in production")
	})

	t.Run("requires SSL enabled in production", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("FSR_DATABASE_SSLMODE", "disable")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.sslmode cannot be 'disable' in production")
	})

	t.Run("rejects wildcard CORS in production", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("FSR_HTTP_CORS_ALLOW_ORIGINS", "*")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cors_allow_origins")
	})
}

func TestReportConfig_Location(t *testing.T) {
	loc, err := ReportConfig{Timezone: "Asia/Kolkata"}.Location()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Kolkata", loc.String())

	_, err = ReportConfig{Timezone: "nowhere"}.Location()
	assert.Error(t, err)
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
		assert.Contains(t, dsn, "localhost")
		assert.Contains(t, dsn, "5432")
		assert.Contains(t, dsn, "testuser")
		assert.Contains(t, dsn, "testdb")
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
