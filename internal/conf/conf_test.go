package conf

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSetupConfigWritesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "configs", "config.toml")
	bc, err := SetupConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default config not written: %v", err)
	}
	if bc.NVR.HealthInterval.Duration() != 30*time.Second || bc.Viewer.NearestCutoff.Duration() != 30*time.Minute {
		t.Fatalf("defaults = %+v", bc)
	}

	// 写出的文件可以原样读回
	again, err := SetupConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if again.Viewer.AssumedSegment != bc.Viewer.AssumedSegment || again.Data.Database.Dsn != bc.Data.Database.Dsn {
		t.Fatalf("round trip = %+v", again)
	}
}

func TestSetupConfigTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[nvr]
kind = "shinobi"
base_url = "http://nvr.local:8080"
health_interval = "10s"

[viewer]
assumed_segment = "5m"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("OWLVIEW_NVR_API_KEY", "secret")

	bc, err := SetupConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if bc.NVR.Kind != "shinobi" || bc.NVR.BaseURL != "http://nvr.local:8080" || bc.NVR.APIKey != "secret" {
		t.Fatalf("nvr = %+v", bc.NVR)
	}
	if bc.NVR.HealthInterval.Duration() != 10*time.Second || bc.Viewer.AssumedSegment.Duration() != 5*time.Minute {
		t.Fatalf("durations = %v %v", bc.NVR.HealthInterval, bc.Viewer.AssumedSegment)
	}
	// 未配置的字段保留默认值
	if bc.Viewer.NearestCutoff.Duration() != 30*time.Minute || bc.Server.HTTP.Port != 15124 {
		t.Fatalf("defaults lost: %+v", bc)
	}
}

func TestSetupConfigYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "nvr:\n  kind: catalog\n  event_limit: 25\ncatalog:\n  retain_days: 7\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("OWLVIEW_DATABASE_DSN", "postgres://u:p@db/owlview")

	bc, err := SetupConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if bc.NVR.EventLimit != 25 || bc.Catalog.RetainDays != 7 || bc.Data.Database.Dsn != "postgres://u:p@db/owlview" {
		t.Fatalf("config = %+v", bc)
	}
}

func TestSetupConfigInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[viewer]\nidle_ttl = \"soon\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := SetupConfig(path); err == nil {
		t.Fatal("invalid duration accepted")
	}
}
