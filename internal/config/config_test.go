package config

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestSetDefaults(t *testing.T) {
	c := &Config{}
	c.SetDefaults()
	if c.Server.Port != 8080 || c.Capture.Port != 8081 {
		t.Fatalf("unexpected default ports %d/%d", c.Server.Port, c.Capture.Port)
	}
	if c.ETL.ExtractLimit != 1000 {
		t.Fatalf("expected extract limit 1000, got %d", c.ETL.ExtractLimit)
	}
	if c.HTTPTimeout() != 30*time.Second {
		t.Fatalf("unexpected timeout %v", c.HTTPTimeout())
	}
	if c.Output.Dir != "" {
		t.Fatalf("output dir must default to empty (log-only file sink)")
	}
}

func TestLoadFromYAMLWithEnvOverride(t *testing.T) {
	tmp := t.TempDir()
	cfgPath := filepath.Join(tmp, "config.yaml")
	yml := "server:\n  port: 9000\netl:\n  extract_limit: 50\nretention:\n  days: 7\n"
	if err := os.WriteFile(cfgPath, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("WEBHOOK_ETL_REDIS_ADDR", "localhost:6379")

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != 9000 || cfg.ETL.ExtractLimit != 50 || cfg.Retention.Days != 7 {
		t.Fatalf("yaml values not applied: %+v", cfg)
	}
	if cfg.Redis.Addr != "localhost:6379" {
		t.Fatalf("env override not applied: %q", cfg.Redis.Addr)
	}
	if cfg.Capture.Port != 8081 {
		t.Fatalf("defaults not applied after yaml")
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Database.Path != "webhook-etl.db" {
		t.Fatalf("unexpected db path %q", cfg.Database.Path)
	}
}

func TestValidate(t *testing.T) {
	c := &Config{}
	c.SetDefaults()
	c.Output.Dir = t.TempDir()
	if err := c.Validate(); err != nil {
		t.Fatalf("validate failed: %v", err)
	}

	c.ETL.HTTPTimeout = "soon"
	if err := c.Validate(); err == nil {
		t.Fatal("expected invalid timeout error")
	}

	c.SetDefaults()
	c.ETL.HTTPTimeout = "5s"
	c.SMTP.Host = "smtp.example.com"
	if err := c.Validate(); err == nil || !strings.Contains(err.Error(), "smtp.from") {
		t.Fatalf("expected smtp.from error, got %v", err)
	}
}

func TestWriteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "webhook-etl.yaml")
	c := &Config{}
	c.SetDefaults()
	c.Auth.JWTSecret = "s3cret"
	if err := c.Write(path); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Auth.JWTSecret != "s3cret" {
		t.Fatalf("secret not persisted")
	}
}

func TestInitLogging(t *testing.T) {
	defer log.SetOutput(os.Stderr)
	dir := t.TempDir()
	f, _ := InitLogging(dir, "test.log")
	if f == nil {
		t.Fatal("expected log file")
	}
	defer f.Close()

	log.Print("hello log")
	data, err := os.ReadFile(filepath.Join(dir, "test.log"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "hello log") {
		t.Fatalf("log line not written: %q", data)
	}
}
