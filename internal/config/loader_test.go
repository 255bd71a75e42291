package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestExpandEnv(t *testing.T) {
	t.Setenv("SHEETCODE_TEST_HOST", "db.internal")

	cases := []struct {
		in   string
		want string
	}{
		{in: "host: ${SHEETCODE_TEST_HOST}", want: "host: db.internal"},
		{in: "host: ${SHEETCODE_TEST_HOST:localhost}", want: "host: db.internal"},
		{in: "port: ${SHEETCODE_TEST_MISSING:5432}", want: "port: 5432"},
		{in: "key: ${SHEETCODE_TEST_MISSING:}", want: "key: "},
		{in: "raw: ${SHEETCODE_TEST_MISSING}", want: "raw: ${SHEETCODE_TEST_MISSING}"},
	}
	for _, tc := range cases {
		if got := expandEnv(tc.in); got != tc.want {
			t.Fatalf("expandEnv(%q): want=%q got=%q", tc.in, tc.want, got)
		}
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return dir
}

func TestLoadFrom_DefaultsAndProviders(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	dir := writeConfig(t, `
llm:
  primary: a
  fallback: b
  providers:
    a:
      model: model-a
    b:
      model: model-b
security:
  identity:
    enabled: false
`)

	cfg, err := LoadFrom(dir)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Database.Driver != DriverMongo {
		t.Fatalf("driver: want=%q got=%q", DriverMongo, cfg.Database.Driver)
	}
	if cfg.LLM.OverloadRetryDelay != 60*time.Second {
		t.Fatalf("overload delay: want=60s got=%s", cfg.LLM.OverloadRetryDelay)
	}
	p, err := cfg.LLM.Provider("b")
	if err != nil || p.Model != "model-b" {
		t.Fatalf("provider b: err=%v model=%q", err, p.Model)
	}
}

func TestLoadFrom_RejectsUnknownFallback(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	dir := writeConfig(t, `
llm:
  primary: a
  fallback: missing
  providers:
    a:
      model: model-a
security:
  identity:
    enabled: false
`)

	if _, err := LoadFrom(dir); err == nil {
		t.Fatalf("expected error for unconfigured fallback provider")
	}
}

func TestLoadFrom_RequiresIdentitySecret(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	dir := writeConfig(t, `
llm:
  primary: a
  fallback: a
  providers:
    a:
      model: model-a
security:
  identity:
    enabled: true
`)

	if _, err := LoadFrom(dir); err == nil {
		t.Fatalf("expected error for missing identity secret")
	}
}
