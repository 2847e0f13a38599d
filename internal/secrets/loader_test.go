package secrets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	if err := os.WriteFile(path, []byte("  file-secret \n"), 0o600); err != nil {
		t.Fatalf("writing secret file: %v", err)
	}

	got, err := Load(Source{Name: "api token", Value: "inline", File: path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got != "file-secret" {
		t.Fatalf("expected file secret to win, got %q", got)
	}
}

func TestLoadFromEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	if err := os.WriteFile(path, []byte("   \n"), 0o600); err != nil {
		t.Fatalf("writing secret file: %v", err)
	}

	_, err := Load(Source{Name: "api token", File: path})
	if err == nil {
		t.Fatalf("expected error for empty secret file")
	}

	if !strings.Contains(err.Error(), "is empty") {
		t.Fatalf("expected empty file error, got %q", err)
	}
}

func TestLoadFromMissingFile(t *testing.T) {
	_, err := Load(Source{Name: "api token", File: filepath.Join(t.TempDir(), "missing")})
	if err == nil {
		t.Fatalf("expected error for missing secret file")
	}

	if !strings.Contains(err.Error(), "reading api token") {
		t.Fatalf("expected read error naming the secret, got %q", err)
	}
}

func TestLoadFromValue(t *testing.T) {
	got, err := Load(Source{Name: "api token", Value: "  inline-secret  ", Env: "UNUSED_SECRET"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got != "inline-secret" {
		t.Fatalf("expected trimmed inline secret, got %q", got)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("TEST_SECRET_TOKEN", "  env-secret ")

	got, err := Load(Source{Name: "api token", Env: "TEST_SECRET_TOKEN"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got != "env-secret" {
		t.Fatalf("expected trimmed env secret, got %q", got)
	}
}

func TestLoadFromUnsetEnv(t *testing.T) {
	t.Setenv("TEST_SECRET_TOKEN", "")

	_, err := Load(Source{Name: "api token", Env: "TEST_SECRET_TOKEN"})
	if err == nil {
		t.Fatalf("expected error for unset env variable")
	}

	if !strings.Contains(err.Error(), "TEST_SECRET_TOKEN") {
		t.Fatalf("expected error to name the variable, got %q", err)
	}
}

func TestLoadUnconfigured(t *testing.T) {
	_, err := Load(Source{Name: "api token"})
	if err == nil {
		t.Fatalf("expected error for unconfigured secret")
	}

	if err.Error() != "api token is not configured" {
		t.Fatalf("unexpected error: %q", err)
	}
}
