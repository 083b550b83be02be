package config

import (
	"os"
	"testing"
	"time"

	"github.com/fastygo/accountdesk/domain"
)

// chdir mirrors testing.T.Chdir (Go 1.24+): it changes the working
// directory and restores the previous one when the test ends.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatalf("restore working directory: %v", err)
		}
	})
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	for _, key := range []string{"STORE_DRIVER", "SESSION_TTL", "ROLE_POLICY_ADMIN", "ROLE_POLICY_MANAGER", "DATABASE_URL"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store.Driver != DriverRedis {
		t.Fatalf("driver = %q, want redis", cfg.Store.Driver)
	}
	if cfg.Session.TTL != 24*time.Hour {
		t.Fatalf("session ttl = %s, want 24h", cfg.Session.TTL)
	}
	if cfg.Policies.Admin != nil || cfg.Policies.Manager != nil {
		t.Fatal("unset policies should fall back to defaults")
	}
	if cfg.Database.URL == "" {
		t.Fatal("database url should be derived from DB_* settings")
	}
}

func TestLoadOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("STORE_DRIVER", "Bolt")
	t.Setenv("SESSION_TTL", "90m")
	t.Setenv("STORE_PURGE_INTERVAL", "30")
	t.Setenv("ROLE_POLICY_MANAGER", "admin, manager, trader")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store.Driver != DriverBolt {
		t.Fatalf("driver = %q, want bolt", cfg.Store.Driver)
	}
	if cfg.Session.TTL != 90*time.Minute {
		t.Fatalf("session ttl = %s", cfg.Session.TTL)
	}
	if cfg.Store.PurgeInterval != 30*time.Second {
		t.Fatalf("purge interval = %s", cfg.Store.PurgeInterval)
	}
	if !cfg.Policies.Manager.Contains(domain.RoleTrader) {
		t.Fatal("manager policy should include the configured trader role")
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	chdir(t, t.TempDir())

	t.Setenv("STORE_DRIVER", "memcached")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for unsupported driver")
	}

	t.Setenv("STORE_DRIVER", "redis")
	t.Setenv("ROLE_POLICY_ADMIN", "admin,root")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown role in policy")
	}
}
