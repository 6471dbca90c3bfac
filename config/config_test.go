package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testYAML = `
env:
  serviceName: shopreg-test
  log:
    level: info
storage:
  driver: memory
secretKey:
  access: from-file
auth:
  tokenTTL: 15m
`

func TestLoadWithEnv_FileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "shopreg-test.yaml"), []byte(testYAML), 0o600))
	t.Chdir(dir)
	t.Setenv("SECRETKEY_ACCESS", "from-env")

	cfg, err := LoadWithEnv[Config]("shopreg-test")
	require.NoError(t, err)

	assert.Equal(t, "shopreg-test", cfg.Env.ServiceName)
	assert.Equal(t, "from-env", cfg.SecretKey.Access)
	assert.Equal(t, StorageDriverMemory, cfg.Storage.Driver)
	require.NotNil(t, cfg.Auth)
	assert.Equal(t, 15*time.Minute, cfg.Auth.TokenTTL)
}

func TestLoadWithEnv_MissingFile(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := LoadWithEnv[Config]("does-not-exist")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found in any search path")
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.ApplyDefaults()

	assert.Equal(t, defaultMaxRequestBodySize, cfg.HTTP.MaxRequestBodySize)
	assert.Equal(t, StorageDriverPostgres, cfg.Storage.Driver)
	require.NotNil(t, cfg.Auth)
	assert.Equal(t, 10, cfg.Auth.BcryptCost)
	assert.Equal(t, 30*time.Minute, cfg.Auth.TokenTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.RememberMeTTL)
	assert.False(t, cfg.Auth.EnforceOwnership)
	assert.Equal(t, defaultQRCodeSize, cfg.QRCode.Size)
	assert.Equal(t, "M", cfg.QRCode.ErrorCorrectionLevel)
}

func validConfig() *Config {
	cfg := &Config{}
	cfg.SecretKey.Access = "secret"
	cfg.Storage.Driver = StorageDriverMemory
	cfg.ApplyDefaults()

	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(cfg *Config) {}},
		{
			name:    "missing secret",
			mutate:  func(cfg *Config) { cfg.SecretKey.Access = " " },
			wantErr: "secretKey.access",
		},
		{
			name:    "unknown driver",
			mutate:  func(cfg *Config) { cfg.Storage.Driver = "mongo" },
			wantErr: "unknown storage driver",
		},
		{
			name:    "postgres without connection",
			mutate:  func(cfg *Config) { cfg.Storage.Driver = StorageDriverPostgres },
			wantErr: "postgres configuration is required",
		},
		{
			name:    "bcrypt cost too high",
			mutate:  func(cfg *Config) { cfg.Auth.BcryptCost = 40 },
			wantErr: "auth.bcryptCost",
		},
		{
			name: "remember me not longer than default",
			mutate: func(cfg *Config) {
				cfg.Auth.TokenTTL = time.Hour
				cfg.Auth.RememberMeTTL = time.Hour
			},
			wantErr: "auth.rememberMeTTL",
		},
		{
			name: "rate limit without redis",
			mutate: func(cfg *Config) {
				cfg.RateLimit = &RateLimitConfig{Enabled: true}
			},
			wantErr: "rateLimit.redis.addr",
		},
		{
			name:   "trusted proxy range",
			mutate: func(cfg *Config) { cfg.HTTP.TrustedProxies = []string{"10.0.0.0/8", "2001:db8::/32"} },
		},
		{
			name:    "trusted proxy without mask",
			mutate:  func(cfg *Config) { cfg.HTTP.TrustedProxies = []string{"10.0.0.1"} },
			wantErr: "http.trustedProxies",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)

				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
