package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		wantError   bool
		checkConfig func(*testing.T, *Config)
	}{
		{
			name: "正常系: デフォルト値で設定を読み込む",
			env: map[string]string{
				"DB_HOST":          "localhost",
				"DB_NAME":          "test_db",
				"JWT_SECRET":       "test-secret",
				"PAYMENTS_ENABLED": "false",
			},
			checkConfig: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "localhost", cfg.Database.Host)
				assert.Equal(t, "test_db", cfg.Database.Database)
				assert.Equal(t, "test-secret", cfg.JWT.Secret)
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, 8081, cfg.Server.GRPCPort)
				assert.Equal(t, 3306, cfg.Database.Port)
				assert.Equal(t, "2.1.2", cfg.Ceepos.APIVersion)
				assert.Equal(t, 3, cfg.Ceepos.AccessMode)
				assert.Equal(t, 15*time.Minute, cfg.Payment.Expiration)
				assert.Equal(t, 24*time.Hour, cfg.Payment.LongExpiration)
				assert.Equal(t, time.Minute, cfg.Sweeper.Interval)
				assert.Equal(t, "fi", cfg.Locale.DefaultLanguage)
				assert.False(t, cfg.Mail.Enabled)
				assert.Equal(t, 587, cfg.Mail.Port)
				assert.True(t, cfg.Mail.UseTLS)
				assert.False(t, cfg.Mail.UseSSL)
				assert.Equal(t, 10*time.Second, cfg.Mail.Timeout)
			},
		},
		{
			name: "正常系: 環境変数から設定を読み込む",
			env: map[string]string{
				"ENVIRONMENT":                      "production",
				"SERVER_PORT":                      "9000",
				"GRPC_PORT":                        "9100",
				"DB_HOST":                          "db.example.com",
				"DB_PORT":                          "3307",
				"DB_NAME":                          "prod_db",
				"JWT_SECRET":                       "prod-secret",
				"JWT_EXPIRATION":                   "12h",
				"CPU_SERVICE_URL":                  "https://ceepos.example.com/api",
				"CPU_MERCHANT_ID":                  "merchant",
				"CPU_MERCHANT_SECRET":              "secret",
				"CPU_PAYMENT_NOTIFICATION_ADDRESS": "https://respa.example.com/v1/purchase/notify",
				"PAYMENT_EXPIRATION":               "30m",
				"ADMIN_API_ALLOWED_IPS":            "10.0.0.1, 10.0.0.2",
				"EMAIL_PORT":                       "465",
				"EMAIL_USE_TLS":                    "false",
				"EMAIL_USE_SSL":                    "true",
			},
			checkConfig: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "production", cfg.Environment)
				assert.Equal(t, 9000, cfg.Server.Port)
				assert.Equal(t, 9100, cfg.Server.GRPCPort)
				assert.Equal(t, "db.example.com", cfg.Database.Host)
				assert.Equal(t, 3307, cfg.Database.Port)
				assert.Equal(t, "prod_db", cfg.Database.Database)
				assert.Equal(t, "prod-secret", cfg.JWT.Secret)
				assert.Equal(t, 12*time.Hour, cfg.JWT.Expiration)
				assert.Equal(t, "merchant", cfg.Ceepos.MerchantID)
				assert.Equal(t, "https://respa.example.com/v1/purchase/notify", cfg.Ceepos.NotificationAddress)
				assert.Equal(t, 30*time.Minute, cfg.Payment.Expiration)
				assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, cfg.AdminAPI.AllowedIPs)
				assert.Equal(t, 465, cfg.Mail.Port)
				assert.False(t, cfg.Mail.UseTLS)
				assert.True(t, cfg.Mail.UseSSL)
			},
		},
		{
			name: "異常系: JWT_SECRETが空",
			env: map[string]string{
				"DB_HOST":          "localhost",
				"DB_NAME":          "test_db",
				"PAYMENTS_ENABLED": "false",
			},
			wantError: true,
		},
		{
			name: "異常系: 決済有効時にCeepos設定がない",
			env: map[string]string{
				"DB_HOST":    "localhost",
				"DB_NAME":    "test_db",
				"JWT_SECRET": "test-secret",
			},
			wantError: true,
		},
		{
			name: "異常系: 無効なタイムゾーン",
			env: map[string]string{
				"JWT_SECRET":       "test-secret",
				"PAYMENTS_ENABLED": "false",
				"TIME_ZONE":        "Mars/Olympus",
			},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := Load()

			if tt.wantError {
				assert.Error(t, err)
				assert.Nil(t, cfg)
			} else {
				require.NoError(t, err)
				assert.NotNil(t, cfg)
				if tt.checkConfig != nil {
					tt.checkConfig(t, cfg)
				}
			}
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{
		User:     "testuser",
		Password: "testpass",
		Host:     "localhost",
		Port:     3306,
		Database: "testdb",
	}

	dsn := cfg.DSN()
	assert.Contains(t, dsn, "testuser")
	assert.Contains(t, dsn, "testpass")
	assert.Contains(t, dsn, "localhost")
	assert.Contains(t, dsn, "3306")
	assert.Contains(t, dsn, "testdb")
}

func TestRedisConfig_Address(t *testing.T) {
	cfg := RedisConfig{
		Host: "redis.example.com",
		Port: 6379,
	}

	address := cfg.Address()
	assert.Equal(t, "redis.example.com:6379", address)
}

func TestMailConfig_SenderAddress(t *testing.T) {
	cfg := MailConfig{SiteDomain: "varaamo.example.com"}
	assert.Equal(t, "noreply@varaamo.example.com", cfg.SenderAddress())

	cfg.FromAddress = "info@example.com"
	assert.Equal(t, "info@example.com", cfg.SenderAddress())
}

func TestLocaleConfig_Location(t *testing.T) {
	cfg := LocaleConfig{TimeZone: "Europe/Helsinki"}
	assert.Equal(t, "Europe/Helsinki", cfg.Location().String())

	cfg.TimeZone = "invalid/zone"
	assert.Equal(t, time.UTC, cfg.Location())
}

func TestGetEnvAsSlice(t *testing.T) {
	t.Setenv("TEST_SLICE", "a, b,,c")
	assert.Equal(t, []string{"a", "b", "c"}, getEnvAsSlice("TEST_SLICE"))
	assert.Nil(t, getEnvAsSlice("TEST_SLICE_UNSET"))
}

func TestGetEnvAsInt(t *testing.T) {
	tests := []struct {
		name         string
		envValue     string
		defaultValue int
		want         int
	}{
		{
			name:         "環境変数が設定されている",
			envValue:     "123",
			defaultValue: 0,
			want:         123,
		},
		{
			name:         "環境変数が空",
			envValue:     "",
			defaultValue: 456,
			want:         456,
		},
		{
			name:         "環境変数が無効な値",
			envValue:     "invalid",
			defaultValue: 789,
			want:         789,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Setenv("TEST_INT", tt.envValue)
			defer os.Unsetenv("TEST_INT")

			got := getEnvAsInt("TEST_INT", tt.defaultValue)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetEnvAsBool(t *testing.T) {
	tests := []struct {
		name         string
		envValue     string
		defaultValue bool
		want         bool
	}{
		{
			name:         "環境変数がtrue",
			envValue:     "true",
			defaultValue: false,
			want:         true,
		},
		{
			name:         "環境変数がfalse",
			envValue:     "false",
			defaultValue: true,
			want:         false,
		},
		{
			name:         "環境変数が空",
			envValue:     "",
			defaultValue: true,
			want:         true,
		},
		{
			name:         "環境変数が無効な値",
			envValue:     "invalid",
			defaultValue: false,
			want:         false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Setenv("TEST_BOOL", tt.envValue)
			defer os.Unsetenv("TEST_BOOL")

			got := getEnvAsBool("TEST_BOOL", tt.defaultValue)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetEnvAsDuration(t *testing.T) {
	tests := []struct {
		name         string
		envValue     string
		defaultValue time.Duration
		want         time.Duration
	}{
		{
			name:         "環境変数が有効な時間",
			envValue:     "1h",
			defaultValue: time.Minute,
			want:         time.Hour,
		},
		{
			name:         "環境変数が空",
			envValue:     "",
			defaultValue: time.Minute,
			want:         time.Minute,
		},
		{
			name:         "環境変数が無効な値",
			envValue:     "invalid",
			defaultValue: time.Hour,
			want:         time.Hour,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Setenv("TEST_DURATION", tt.envValue)
			defer os.Unsetenv("TEST_DURATION")

			got := getEnvAsDuration("TEST_DURATION", tt.defaultValue)
			assert.Equal(t, tt.want, got)
		})
	}
}
