package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadWithDefaults(t *testing.T) {
	cfg, err := Load(context.Background(), WithEnvMap(map[string]string{}), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 15*time.Second {
		t.Errorf("unexpected read timeout: %s", cfg.Server.ReadTimeout)
	}
	if cfg.Site.BaseURL != defaultSiteBaseURL {
		t.Errorf("unexpected base url: %s", cfg.Site.BaseURL)
	}
	if cfg.CMS.BaseURL != "" {
		t.Errorf("expected no remote cms by default, got %s", cfg.CMS.BaseURL)
	}
	if cfg.CMS.Timeout != defaultCMSTimeout {
		t.Errorf("unexpected cms timeout: %s", cfg.CMS.Timeout)
	}
	if cfg.Cache.TTL != defaultCacheTTL {
		t.Errorf("unexpected cache ttl: %s", cfg.Cache.TTL)
	}
	if cfg.Dev {
		t.Error("expected dev mode off by default")
	}
}

func TestLoadWithOverridesAndSecrets(t *testing.T) {
	env := map[string]string{
		"WEB_SERVER_PORT":         "9090",
		"WEB_SERVER_READ_TIMEOUT": "20s",
		"WEB_SITE_BASE_URL":       "https://www.example.com/",
		"WEB_SITE_NAME":           "Example Makina",
		"WEB_CMS_BASE_URL":        "https://cms.example.com",
		"WEB_CMS_API_KEY":         "sm://cms/api-key",
		"WEB_CMS_TIMEOUT":         "2s",
		"WEB_CACHE_VALKEY_ADDR":   "127.0.0.1:6379",
		"WEB_CACHE_TTL":           "1m",
		"WEB_ROBOTS_DISALLOW_ALL": "yes",
		"WEB_SECRETS_PROJECT_ID":  "corp-prod",
		"WEB_DEV":                 "1",
	}

	var gotRef string
	resolver := SecretResolverFunc(func(_ context.Context, ref string) (string, error) {
		gotRef = ref
		return "cms-token\n", nil
	})

	cfg, err := Load(context.Background(), WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""), WithSecretResolver(resolver))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if gotRef != "secret://cms/api-key" {
		t.Errorf("expected normalized secret reference, got %q", gotRef)
	}
	if cfg.CMS.APIKey != "cms-token" {
		t.Errorf("expected resolved api key, got %q", cfg.CMS.APIKey)
	}
	if cfg.Server.Port != "9090" || cfg.Server.ReadTimeout != 20*time.Second {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.Site.BaseURL != "https://www.example.com" {
		t.Errorf("expected trailing slash trimmed, got %s", cfg.Site.BaseURL)
	}
	if !cfg.Site.RobotsDisallowAll || !cfg.Dev {
		t.Errorf("expected boolean flags set, got %+v dev=%v", cfg.Site, cfg.Dev)
	}
	if cfg.Cache.ValkeyAddr != "127.0.0.1:6379" || cfg.Cache.TTL != time.Minute {
		t.Errorf("unexpected cache config: %+v", cfg.Cache)
	}
	if cfg.Secrets.ProjectID != "corp-prod" {
		t.Errorf("unexpected secrets project: %s", cfg.Secrets.ProjectID)
	}
}

func TestLoadSecretFailure(t *testing.T) {
	env := map[string]string{"WEB_CMS_API_KEY": "secret://cms/api-key"}

	_, err := Load(context.Background(), WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	if err == nil {
		t.Fatal("expected error without a secret resolver")
	}
	var secretErr *SecretError
	if !errors.As(err, &secretErr) {
		t.Fatalf("expected SecretError, got %T", err)
	}
	if secretErr.Ref != "secret://cms/api-key" {
		t.Errorf("unexpected ref %q", secretErr.Ref)
	}
}

func TestLoadValidationErrors(t *testing.T) {
	env := map[string]string{
		"WEB_SERVER_PORT":   "not-a-port",
		"WEB_SITE_BASE_URL": "example.com",
		"WEB_CMS_BASE_URL":  "ftp://cms",
		"WEB_CMS_TIMEOUT":   "-1s",
	}

	_, err := Load(context.Background(), WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	want := map[string]bool{"Server.Port": true, "Site.BaseURL": true, "CMS.BaseURL": true, "CMS.Timeout": true}
	for _, field := range verr.Fields() {
		delete(want, field)
	}
	if len(want) != 0 {
		t.Fatalf("missing validation fields %v in %v", want, verr.Fields())
	}
}

func TestLoadReadsDotEnvWithLowerPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "# local\nexport WEB_SITE_NAME=\"Dotenv Name\"\nWEB_SERVER_PORT=7000\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	cfg, err := Load(context.Background(),
		WithEnvFile(path),
		WithoutSystemEnv(),
		WithEnvMap(map[string]string{"WEB_SERVER_PORT": "7001"}),
	)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Site.Name != "Dotenv Name" {
		t.Errorf("expected dotenv site name, got %q", cfg.Site.Name)
	}
	if cfg.Server.Port != "7001" {
		t.Errorf("expected env map to win over dotenv, got %s", cfg.Server.Port)
	}

	project, err := Lookup("WEB_SERVER_PORT", WithEnvFile(path), WithoutSystemEnv())
	if err != nil {
		t.Fatalf("Lookup returned error: %v", err)
	}
	if project != "7000" {
		t.Errorf("expected Lookup to read dotenv, got %q", project)
	}
}
