package config

import (
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/geoentities/internal/core"
)

// env returns a lookup over a fixed set of variables.
func env(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := LoadFrom(env(nil))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, "0.0.0.0")
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 8080)
	}
	if cfg.Database.URL != "sqlite://geodata.db" {
		t.Errorf("Database.URL = %q, want %q", cfg.Database.URL, "sqlite://geodata.db")
	}
	if !cfg.Database.AutoMigrate {
		t.Error("Database.AutoMigrate = false, want true")
	}
	if !strings.HasPrefix(cfg.Source.BaseURL, "https://raw.githubusercontent.com/dr5hn/") {
		t.Errorf("Source.BaseURL = %q", cfg.Source.BaseURL)
	}
	if cfg.Source.Timeout != 0 {
		t.Errorf("Source.Timeout = %s, want no timeout", cfg.Source.Timeout)
	}
	if cfg.Import.Policy() != core.ConflictSkip {
		t.Errorf("Import.Policy() = %q, want %q", cfg.Import.Policy(), core.ConflictSkip)
	}
	if cfg.Admin.PageSize != 20 {
		t.Errorf("Admin.PageSize = %d, want %d", cfg.Admin.PageSize, 20)
	}
}

func TestLoad_OverrideDefaults(t *testing.T) {
	cfg, err := LoadFrom(env(map[string]string{
		"DATABASE_URL":           "postgres://localhost/geo",
		"SERVER_PORT":            "9090",
		"GEO_CSV_DIR":            "/srv/csv",
		"GEO_CSV_TIMEOUT":        "2m",
		"IMPORT_CONFLICT_POLICY": "UPDATE",
		"DB_AUTO_MIGRATE":        "false",
		"LOG_LEVEL":              "debug",
		"TRUSTED_PROXIES":        "10.0.0.0/8, 127.0.0.1 ,",
		"ADMIN_API_KEYS":         "k1,k2",
	}))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 9090)
	}
	if cfg.Database.Backend() != "postgres" {
		t.Errorf("Database.Backend() = %q, want postgres", cfg.Database.Backend())
	}
	if cfg.Database.AutoMigrate {
		t.Error("Database.AutoMigrate = true, want false")
	}
	if cfg.Source.Dir != "/srv/csv" {
		t.Errorf("Source.Dir = %q, want %q", cfg.Source.Dir, "/srv/csv")
	}
	if cfg.Source.Timeout != 2*time.Minute {
		t.Errorf("Source.Timeout = %s, want 2m", cfg.Source.Timeout)
	}
	if cfg.Import.Policy() != core.ConflictUpdate {
		t.Errorf("Import.Policy() = %q, want %q", cfg.Import.Policy(), core.ConflictUpdate)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
	if got := strings.Join(cfg.Server.TrustedProxies, "|"); got != "10.0.0.0/8|127.0.0.1" {
		t.Errorf("Server.TrustedProxies = %q", got)
	}
	if len(cfg.Admin.APIKeys) != 2 {
		t.Errorf("Admin.APIKeys = %v, want 2 keys", cfg.Admin.APIKeys)
	}
}

func TestLoad_AltEnvVar(t *testing.T) {
	cfg, err := LoadFrom(env(map[string]string{"DB_URL": "file:geo.db?cache=shared"}))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.Database.URL != "file:geo.db?cache=shared" {
		t.Errorf("Database.URL = %q", cfg.Database.URL)
	}
	if cfg.Database.Backend() != "sqlite" {
		t.Errorf("Database.Backend() = %q, want sqlite", cfg.Database.Backend())
	}
}

func TestLoad_InvalidValue(t *testing.T) {
	_, err := LoadFrom(env(map[string]string{"SERVER_PORT": "eighty"}))
	if err == nil || !strings.Contains(err.Error(), "SERVER_PORT") {
		t.Fatalf("LoadFrom() error = %v, want SERVER_PORT parse error", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		vars    map[string]string
		wantErr string
	}{
		{"unknown scheme", map[string]string{"DATABASE_URL": "mysql://x"}, "DATABASE_URL"},
		{"bad policy", map[string]string{"IMPORT_CONFLICT_POLICY": "merge"}, "IMPORT_CONFLICT_POLICY"},
		{"pool sizes", map[string]string{"DB_MAX_CONNS": "2", "DB_MIN_CONNS": "5"}, "DB_MAX_CONNS (2)"},
		{"page size", map[string]string{"ADMIN_PAGE_SIZE": "1000"}, "ADMIN_PAGE_SIZE"},
		{"port", map[string]string{"SERVER_PORT": "70000"}, "SERVER_PORT"},
		{"log format", map[string]string{"LOG_FORMAT": "xml"}, "LOG_FORMAT"},
		{"batch size", map[string]string{"IMPORT_BATCH_SIZE": "-1"}, "IMPORT_BATCH_SIZE"},
		{"import interval", map[string]string{"IMPORT_INTERVAL": "-1h"}, "IMPORT_INTERVAL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom(env(tt.vars))
			if err == nil {
				t.Fatal("LoadFrom() error = nil, want validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_ReportsAllFailures(t *testing.T) {
	_, err := LoadFrom(env(map[string]string{"LOG_LEVEL": "loud", "LOG_FORMAT": "xml"}))
	if err == nil {
		t.Fatal("LoadFrom() error = nil")
	}
	for _, want := range []string{"LOG_LEVEL", "LOG_FORMAT"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestServerAddr(t *testing.T) {
	tests := []struct {
		host string
		port int
		want string
	}{
		{"0.0.0.0", 8080, "0.0.0.0:8080"},
		{"", 9000, ":9000"},
		{"::1", 80, "[::1]:80"},
	}
	for _, tt := range tests {
		c := ServerConfig{Host: tt.host, Port: tt.port}
		if got := c.Addr(); got != tt.want {
			t.Errorf("Addr(%q, %d) = %q, want %q", tt.host, tt.port, got, tt.want)
		}
	}
}

func TestString_MasksDatabaseURL(t *testing.T) {
	cfg, err := LoadFrom(env(map[string]string{"DATABASE_URL": "postgres://geo:s3cret@db/geo"}))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	cfg.Admin.APIKeys = []string{"topsecretkey"}
	s := cfg.String()
	if strings.Contains(s, "topsecretkey") {
		t.Errorf("String() leaks API keys: %s", s)
	}
	if strings.Contains(s, "s3cret") {
		t.Errorf("String() leaks credentials: %s", s)
	}
	if !strings.Contains(s, "[MASKED]") {
		t.Errorf("String() = %s, want masked URL", s)
	}
}
