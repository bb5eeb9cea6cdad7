package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Valid(t *testing.T) {
	yaml := `
listen_address: "127.0.0.1:9200"
metrics_path: /probe
namespace: ontap
target:
  address: cluster1.example.com
  username: monitor
  password_env: TEST_ONTAP_PASSWORD
  scheme: https
  timeout: 3s
  insecure_skip_verify: false
scrape:
  allow_query_credentials: false
log:
  level: debug
  format: text
`
	cfg := loadFromString(t, yaml)

	if cfg.ListenAddress != "127.0.0.1:9200" {
		t.Errorf("listen_address: got %q", cfg.ListenAddress)
	}
	if cfg.MetricsPath != "/probe" {
		t.Errorf("metrics_path: got %q", cfg.MetricsPath)
	}
	if cfg.Namespace != "ontap" {
		t.Errorf("namespace: got %q", cfg.Namespace)
	}
	if cfg.Target.Address != "cluster1.example.com" {
		t.Errorf("target.address: got %q", cfg.Target.Address)
	}
	if cfg.Target.Timeout != 3*time.Second {
		t.Errorf("target.timeout: got %v", cfg.Target.Timeout)
	}
	if cfg.Target.InsecureSkipVerify {
		t.Error("target.insecure_skip_verify: got true, want false")
	}
	if cfg.Scrape.AllowQueryCredentials {
		t.Error("scrape.allow_query_credentials: got true, want false")
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "text" {
		t.Errorf("log: got %+v", cfg.Log)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg := loadFromString(t, "target:\n  address: cluster1\n")

	if cfg.ListenAddress != DefaultListenAddress {
		t.Errorf("default listen_address: got %q, want %q", cfg.ListenAddress, DefaultListenAddress)
	}
	if cfg.MetricsPath != DefaultMetricsPath {
		t.Errorf("default metrics_path: got %q, want %q", cfg.MetricsPath, DefaultMetricsPath)
	}
	if cfg.Namespace != DefaultNamespace {
		t.Errorf("default namespace: got %q, want %q", cfg.Namespace, DefaultNamespace)
	}
	if cfg.Target.Timeout != DefaultTimeout {
		t.Errorf("default timeout: got %v, want %v", cfg.Target.Timeout, DefaultTimeout)
	}
	if !cfg.Target.InsecureSkipVerify {
		t.Error("default insecure_skip_verify: got false, want true")
	}
	if !cfg.Scrape.AllowQueryCredentials {
		t.Error("default allow_query_credentials: got false, want true")
	}
}

func TestLoad_EmptyPath(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error: %v", err)
	}
	if cfg.Target.Scheme != DefaultScheme {
		t.Errorf("scheme: got %q, want %q", cfg.Target.Scheme, DefaultScheme)
	}
}

func TestLoad_EmptyNamespaceAllowed(t *testing.T) {
	cfg := loadFromString(t, "namespace: \"\"\n")
	if cfg.Namespace != "" {
		t.Errorf("namespace: got %q, want empty", cfg.Namespace)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad yaml", "target: [unclosed"},
		{"empty listen address", "listen_address: \"\"\n"},
		{"relative metrics path", "metrics_path: metrics\n"},
		{"metrics path on health endpoint", "metrics_path: /healthz\n"},
		{"bad namespace", "namespace: \"net-app\"\n"},
		{"unknown scheme", "target:\n  scheme: ftp\n"},
		{"zero timeout", "target:\n  timeout: 0s\n"},
		{"unknown log level", "log:\n  level: verbose\n"},
		{"unknown log format", "log:\n  format: xml\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := loadStringErr(t, tc.yaml); err == nil {
				t.Fatalf("expected error for %s, got nil", tc.name)
			}
		})
	}
}

func TestTargetConfig_Password(t *testing.T) {
	t.Setenv("TEST_ONTAP_PASSWORD", "s3cret")
	tc := TargetConfig{PasswordEnv: "TEST_ONTAP_PASSWORD"}
	if got := tc.Password(); got != "s3cret" {
		t.Errorf("Password(): got %q, want %q", got, "s3cret")
	}
}

func TestTargetConfig_Password_Empty(t *testing.T) {
	if got := (TargetConfig{}).Password(); got != "" {
		t.Errorf("Password() with no PasswordEnv: got %q, want empty", got)
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   string
	}{
		{"first wins", []string{"a", "b"}, "a"},
		{"skips empty", []string{"", "", "c"}, "c"},
		{"all empty", []string{"", ""}, ""},
		{"none", nil, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Resolve(tc.values...); got != tc.want {
				t.Errorf("Resolve(%q) = %q, want %q", tc.values, got, tc.want)
			}
		})
	}
}

func TestResolveTarget_Chain(t *testing.T) {
	t.Setenv("TEST_ONTAP_PASSWORD", "from-file")
	cfg := Default()
	cfg.Target.Address = "file-host"
	cfg.Target.Username = "file-user"
	cfg.Target.PasswordEnv = "TEST_ONTAP_PASSWORD"

	env := map[string]string{}
	getenv := func(k string) string { return env[k] }

	// Config file values when neither request nor environment supply anything.
	got := cfg.ResolveTarget(Overrides{}, getenv)
	want := Target{Scheme: "https", Address: "file-host", Username: "file-user", Password: "from-file"}
	if got != want {
		t.Errorf("file level: got %+v, want %+v", got, want)
	}

	// Environment beats config file.
	env[EnvAddress] = "env-host"
	env[EnvUsername] = "env-user"
	env[EnvPassword] = "env-pass"
	got = cfg.ResolveTarget(Overrides{}, getenv)
	want = Target{Scheme: "https", Address: "env-host", Username: "env-user", Password: "env-pass"}
	if got != want {
		t.Errorf("env level: got %+v, want %+v", got, want)
	}

	// Request beats environment, per parameter.
	got = cfg.ResolveTarget(Overrides{Address: "req-host"}, getenv)
	want = Target{Scheme: "https", Address: "req-host", Username: "env-user", Password: "env-pass"}
	if got != want {
		t.Errorf("request level: got %+v, want %+v", got, want)
	}
}

func TestResolveTarget_Fallbacks(t *testing.T) {
	got := Default().ResolveTarget(Overrides{}, func(string) string { return "" })
	want := Target{Scheme: "https", Address: FallbackAddress, Username: FallbackUsername, Password: FallbackPassword}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestTarget_URL(t *testing.T) {
	tg := Target{Scheme: "https", Address: "10.0.0.5:8443"}
	if got := tg.URL("/api/storage/volumes"); got != "https://10.0.0.5:8443/api/storage/volumes" {
		t.Errorf("URL: got %q", got)
	}
}

func TestWatch_Reload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("namespace: first\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan *Config, 1)
	go Watch(ctx, path, func(c *Config) { //nolint:errcheck
		select {
		case changed <- c:
		default:
		}
	})

	// Keep rewriting until the watcher is attached and reports the change.
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case c := <-changed:
			// A truncate event may surface a half-written file first.
			if c.Namespace == "second" {
				return
			}
		case <-tick.C:
			if err := os.WriteFile(path, []byte("namespace: second\n"), 0o600); err != nil {
				t.Fatalf("rewrite config: %v", err)
			}
		case <-deadline:
			t.Fatal("onChange was not called within 5s")
		}
	}
}

func TestWatch_InvalidFileIsSkipped(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("namespace: first\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan *Config, 16)
	go Watch(ctx, path, func(c *Config) { //nolint:errcheck
		changed <- c
	})

	// Give the watcher time to attach, then write a config that fails validation.
	time.Sleep(200 * time.Millisecond)
	if err := os.WriteFile(path, []byte("metrics_path: /healthz\n"), 0o600); err != nil {
		t.Fatalf("write bad config: %v", err)
	}

	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(100 * time.Millisecond)
	defer tick.Stop()
	wrote := false
	for {
		select {
		case c := <-changed:
			if c.MetricsPath == HealthPath {
				t.Fatalf("onChange called with invalid config %+v", c)
			}
			if c.Namespace == "third" {
				return
			}
		case <-tick.C:
			if !wrote {
				wrote = true
				continue
			}
			if err := os.WriteFile(path, []byte("namespace: third\n"), 0o600); err != nil {
				t.Fatalf("rewrite config: %v", err)
			}
		case <-deadline:
			t.Fatal("valid config after an invalid one was not applied within 5s")
		}
	}
}

// loadFromString writes yaml to a temp file and calls Load, failing on error.
func loadFromString(t *testing.T, content string) *Config {
	t.Helper()
	cfg, err := loadStringErr(t, content)
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	return cfg
}

// loadStringErr writes yaml to a temp file and calls Load, returning any error.
func loadStringErr(t *testing.T, content string) (*Config, error) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return Load(path)
}
