package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoad(t *testing.T) {
	t.Run("full file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		content := `
library_dirs = ["/data/library", "/data/more-books"]
newline = "posix"
hash_algorithm = "sha256"

[dir_vars]
ebooks = "/data/ebooks"
`
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}

		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		want := &Config{
			LibraryDirs:   []string{"/data/library", "/data/more-books"},
			DirVars:       map[string]string{"ebooks": "/data/ebooks"},
			Newline:       "posix",
			HashAlgorithm: "sha256",
		}
		if diff := cmp.Diff(want, cfg); diff != "" {
			t.Errorf("config mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("missing file is empty config", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if diff := cmp.Diff(&Config{}, cfg); diff != "" {
			t.Errorf("config mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("malformed file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(path, []byte("library_dirs = ["), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(path); err == nil {
			t.Error("expected error")
		}
	})
}

func TestResolvePath(t *testing.T) {
	if got := ResolvePath("/explicit/path.toml"); got != "/explicit/path.toml" {
		t.Errorf("flag path not preferred: %q", got)
	}

	t.Setenv("SEM_CONFIG", "/from/env.toml")
	if got := ResolvePath(""); got != "/from/env.toml" {
		t.Errorf("env path not used: %q", got)
	}

	t.Setenv("SEM_CONFIG", "")
	got := ResolvePath("")
	if got != "" && filepath.Base(got) != "config.toml" {
		t.Errorf("default path = %q", got)
	}
}
