package pathutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}

	got, err := Expand("~/logs/autoread.log")
	if err != nil {
		t.Fatalf("Expand failed: %v", err)
	}
	want := filepath.Join(home, "logs", "autoread.log")
	if got != want {
		t.Errorf("Expand(~/logs/autoread.log) = %q, want %q", got, want)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("AUTOREAD_TEST_DIR", "/tmp/autoread-test")

	got, err := Expand("$AUTOREAD_TEST_DIR/out.log")
	if err != nil {
		t.Fatalf("Expand failed: %v", err)
	}
	if got != "/tmp/autoread-test/out.log" {
		t.Errorf("Expand = %q, want /tmp/autoread-test/out.log", got)
	}
}

func TestExpandRelative(t *testing.T) {
	got, err := Expand("logs/out.log")
	if err != nil {
		t.Fatalf("Expand failed: %v", err)
	}
	if !filepath.IsAbs(got) {
		t.Errorf("Expand should return an absolute path, got %q", got)
	}
}
