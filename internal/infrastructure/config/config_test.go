package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// validJWTSecret meets the 32-character minimum.
const validJWTSecret = "test-secret-key-at-least-32-chars!"

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
service:
  id: "test-service"
database:
  path: "/tmp/test.db"
cache:
  address: "redis.internal:6380"
  db: 2
pairing:
  max_attempts: 25
api:
  port: 9090
security:
  jwt:
    secret: "test-secret-key-at-least-32-chars!"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Service.ID != "test-service" {
		t.Errorf("Service.ID = %q, want %q", cfg.Service.ID, "test-service")
	}
	if cfg.Cache.Address != "redis.internal:6380" {
		t.Errorf("Cache.Address = %q, want %q", cfg.Cache.Address, "redis.internal:6380")
	}
	if cfg.Cache.DB != 2 {
		t.Errorf("Cache.DB = %d, want 2", cfg.Cache.DB)
	}
	if cfg.Pairing.MaxAttempts != 25 {
		t.Errorf("Pairing.MaxAttempts = %d, want 25", cfg.Pairing.MaxAttempts)
	}
	if cfg.API.Port != 9090 {
		t.Errorf("API.Port = %d, want 9090", cfg.API.Port)
	}
	// Unset sections keep their defaults.
	if cfg.Cache.PoolSize != 10 {
		t.Errorf("Cache.PoolSize = %d, want default 10", cfg.Cache.PoolSize)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "invalid: [yaml: content")

	_, err := Load(path)
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	path := writeConfig(t, `
service:
  id: ""
security:
  jwt:
    secret: "test-secret-key-at-least-32-chars!"
`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("Load() expected validation error for empty service.id, got nil")
	}
	if !strings.Contains(err.Error(), "service.id") {
		t.Errorf("error %q should mention service.id", err)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
cache:
  address: "from-file:6379"
security:
  jwt:
    secret: "test-secret-key-at-least-32-chars!"
`)
	t.Setenv("PAIRING_CACHE_ADDRESS", "from-env:6379")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Cache.Address != "from-env:6379" {
		t.Errorf("Cache.Address = %q, want %q", cfg.Cache.Address, "from-env:6379")
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		cfg := defaultConfig()
		cfg.Security.JWT.Secret = validJWTSecret
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid config", mutate: func(*Config) {}},
		{name: "missing service ID", mutate: func(c *Config) { c.Service.ID = "" }, wantErr: "service.id"},
		{name: "missing database path", mutate: func(c *Config) { c.Database.Path = "" }, wantErr: "database.path"},
		{name: "missing cache address", mutate: func(c *Config) { c.Cache.Address = "" }, wantErr: "cache.address"},
		{name: "negative cache db", mutate: func(c *Config) { c.Cache.DB = -1 }, wantErr: "cache.db"},
		{name: "invalid QoS", mutate: func(c *Config) { c.MQTT.QoS = 3 }, wantErr: "mqtt.qos"},
		{name: "invalid port low", mutate: func(c *Config) { c.API.Port = 0 }, wantErr: "api.port"},
		{name: "invalid port high", mutate: func(c *Config) { c.API.Port = 70000 }, wantErr: "api.port"},
		{name: "negative max attempts", mutate: func(c *Config) { c.Pairing.MaxAttempts = -1 }, wantErr: "pairing.max_attempts"},
		{name: "unlimited attempts allowed", mutate: func(c *Config) { c.Pairing.MaxAttempts = 0 }},
		{name: "mail enabled without host", mutate: func(c *Config) { c.Mail.Enabled = true }, wantErr: "mail.host"},
		{name: "mail enabled with host", mutate: func(c *Config) { c.Mail.Enabled = true; c.Mail.Host = "smtp.example.com" }},
		{name: "missing JWT secret", mutate: func(c *Config) { c.Security.JWT.Secret = "" }, wantErr: "security.jwt.secret"},
		{name: "JWT secret too short", mutate: func(c *Config) { c.Security.JWT.Secret = "short" }, wantErr: "at least 32"},
		{
			name:    "rate limit enabled without rate",
			mutate:  func(c *Config) { c.Security.RateLimit.RequestsPerMinute = 0 },
			wantErr: "requests_per_minute",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error = %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_ValidateCollectsAllErrors(t *testing.T) {
	cfg := &Config{}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error for empty config")
	}
	for _, want := range []string{"service.id", "database.path", "cache.address", "api.port", "security.jwt.secret"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q should mention %s", err, want)
		}
	}
}

func TestConfig_GetTimeouts(t *testing.T) {
	cfg := &Config{
		API: APIConfig{
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 45,
				Idle:  60,
			},
		},
	}

	if got := cfg.GetReadTimeout().Seconds(); got != 30 {
		t.Errorf("GetReadTimeout() = %v, want 30", got)
	}

	if got := cfg.GetWriteTimeout().Seconds(); got != 45 {
		t.Errorf("GetWriteTimeout() = %v, want 45", got)
	}

	if got := cfg.GetIdleTimeout().Seconds(); got != 60 {
		t.Errorf("GetIdleTimeout() = %v, want 60", got)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := defaultConfig()

	t.Setenv("PAIRING_DATABASE_PATH", "/custom/path.db")
	t.Setenv("PAIRING_CACHE_ADDRESS", "cache.example.com:6379")
	t.Setenv("PAIRING_CACHE_PASSWORD", "cachepass")
	t.Setenv("PAIRING_MQTT_HOST", "mqtt.example.com")
	t.Setenv("PAIRING_MQTT_USERNAME", "testuser")
	t.Setenv("PAIRING_MQTT_PASSWORD", "testpass")
	t.Setenv("PAIRING_API_HOST", "192.168.1.1")
	t.Setenv("PAIRING_INFLUXDB_TOKEN", "secret-token")
	t.Setenv("PAIRING_SMTP_PASSWORD", "smtp-secret")
	t.Setenv("PAIRING_JWT_SECRET", "jwt-secret")

	applyEnvOverrides(cfg)

	checks := []struct {
		field string
		got   string
		want  string
	}{
		{"Database.Path", cfg.Database.Path, "/custom/path.db"},
		{"Cache.Address", cfg.Cache.Address, "cache.example.com:6379"},
		{"Cache.Password", cfg.Cache.Password, "cachepass"},
		{"MQTT.Broker.Host", cfg.MQTT.Broker.Host, "mqtt.example.com"},
		{"MQTT.Auth.Username", cfg.MQTT.Auth.Username, "testuser"},
		{"MQTT.Auth.Password", cfg.MQTT.Auth.Password, "testpass"},
		{"API.Host", cfg.API.Host, "192.168.1.1"},
		{"InfluxDB.Token", cfg.InfluxDB.Token, "secret-token"},
		{"Mail.Password", cfg.Mail.Password, "smtp-secret"},
		{"Security.JWT.Secret", cfg.Security.JWT.Secret, "jwt-secret"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %q, want %q", c.field, c.got, c.want)
		}
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Service.ID == "" {
		t.Error("defaultConfig should have non-empty Service.ID")
	}
	if cfg.Cache.Address != "localhost:6379" {
		t.Errorf("defaultConfig Cache.Address = %q, want localhost:6379", cfg.Cache.Address)
	}
	if cfg.Pairing.MaxAttempts != 100 {
		t.Errorf("defaultConfig Pairing.MaxAttempts = %d, want 100", cfg.Pairing.MaxAttempts)
	}
	if cfg.MQTT.Enabled {
		t.Error("defaultConfig should leave MQTT disabled")
	}
	if cfg.API.Port != 8080 {
		t.Errorf("defaultConfig API.Port = %d, want 8080", cfg.API.Port)
	}
}
