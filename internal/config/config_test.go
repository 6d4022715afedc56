package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		wantErr bool
		check   func(*Config) bool
	}{
		{
			name: "loads explicit values",
			envVars: map[string]string{
				"PORT":            "8080",
				"ENV":             "production",
				"FACE_ENGINE":     "mock",
				"MATCH_THRESHOLD": "0.5",
				"FETCH_TIMEOUT":   "3s",
				"DATABASE_URL":    "postgres://localhost/test",
				"AUDIT_LOG":       "true",
			},
			wantErr: false,
			check: func(c *Config) bool {
				return c.Port == 8080 &&
					c.Environment == "production" &&
					c.FaceEngine == "mock" &&
					c.MatchThreshold == 0.5 &&
					c.FetchTimeout == 3*time.Second &&
					c.DatabaseURL == "postgres://localhost/test" &&
					c.AuditLog
			},
		},
		{
			name:    "uses defaults when vars missing",
			envVars: map[string]string{},
			wantErr: false,
			check: func(c *Config) bool {
				return c.Port == 3002 &&
					c.Environment == "development" &&
					c.FaceEngine == "deepface" &&
					c.MatchThreshold == 0.363 &&
					c.FetchUserAgent == "IrisAPI/1.0" &&
					c.FetchConcurrency == 4 &&
					c.MaxCandidates == 100 &&
					c.DatabaseURL == "" &&
					c.DatabaseMaxConns == 5 &&
					!c.DatabaseAutoMigrate &&
					!c.AuditLog &&
					c.DeepFaceRetryCount == 0 &&
					c.AuditRetention == 720*time.Hour &&
					c.AuditRetentionInterval == time.Hour
			},
		},
		{
			name: "fails on malformed duration",
			envVars: map[string]string{
				"FETCH_TIMEOUT": "soon",
			},
			wantErr: true,
		},
		{
			name: "fails on zero fetch concurrency",
			envVars: map[string]string{
				"FETCH_CONCURRENCY": "0",
			},
			wantErr: true,
		},
		{
			name: "fails on negative deepface retry count",
			envVars: map[string]string{
				"DEEPFACE_RETRY_COUNT": "-1",
			},
			wantErr: true,
		},
		{
			name: "fails on zero retention interval",
			envVars: map[string]string{
				"AUDIT_RETENTION_INTERVAL": "0s",
			},
			wantErr: true,
		},
		{
			name: "zero retention allows any interval",
			envVars: map[string]string{
				"AUDIT_RETENTION":          "0s",
				"AUDIT_RETENTION_INTERVAL": "0s",
			},
			check: func(c *Config) bool {
				return c.AuditRetention == 0
			},
		},
		{
			name: "fails on negative retry count",
			envVars: map[string]string{
				"FETCH_RETRY_COUNT": "-1",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Clear environment
			os.Clearenv()

			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg, err := Load()

			if tt.wantErr {
				if err == nil {
					t.Errorf("Load() expected error, got nil")
				}
				return
			}

			if err != nil {
				t.Errorf("Load() unexpected error: %v", err)
				return
			}

			if tt.check != nil && !tt.check(cfg) {
				t.Errorf("Load() config check failed, got: %+v", cfg)
			}
		})
	}
}

func TestConfig_IsDevelopment(t *testing.T) {
	tests := []struct {
		name string
		env  string
		want bool
	}{
		{"development", "development", true},
		{"production", "production", false},
		{"staging", "staging", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{Environment: tt.env}
			if got := c.IsDevelopment(); got != tt.want {
				t.Errorf("IsDevelopment() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfig_IsProduction(t *testing.T) {
	tests := []struct {
		name string
		env  string
		want bool
	}{
		{"production", "production", true},
		{"development", "development", false},
		{"staging", "staging", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{Environment: tt.env}
			if got := c.IsProduction(); got != tt.want {
				t.Errorf("IsProduction() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfig_AuditEnabled(t *testing.T) {
	if (&Config{}).AuditEnabled() {
		t.Error("AuditEnabled() = true without DATABASE_URL")
	}
	if !(&Config{DatabaseURL: "postgres://localhost/iris"}).AuditEnabled() {
		t.Error("AuditEnabled() = false with DATABASE_URL")
	}
}

func TestConfig_RetentionEnabled(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want bool
	}{
		{"no database", Config{AuditRetention: time.Hour}, false},
		{"retention disabled", Config{DatabaseURL: "postgres://localhost/iris"}, false},
		{"enabled", Config{DatabaseURL: "postgres://localhost/iris", AuditRetention: time.Hour}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.RetentionEnabled(); got != tt.want {
				t.Errorf("RetentionEnabled() = %v, want %v", got, tt.want)
			}
		})
	}
}
