package hash

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	for input, want := range map[string]Algorithm{"md5": MD5, "SHA256": SHA256} {
		got, err := Parse(input)
		if err != nil || got != want {
			t.Errorf("Parse(%q) = %q, %v", input, got, err)
		}
	}
	if _, err := Parse("sha1"); err == nil ||
		!strings.Contains(err.Error(), "invalid hash algorithm 'sha1'") {
		t.Errorf("got error %v", err)
	}
}

func TestDetect(t *testing.T) {
	if got, err := Detect("sha256:ba7816bf"); err != nil || got != SHA256 {
		t.Errorf("Detect = %q, %v", got, err)
	}
	if _, err := Detect("notagseparator"); err == nil {
		t.Error("expected error for untagged hash")
	}
	if _, err := Detect("sha1:abc"); err == nil {
		t.Error("expected error for unsupported algorithm")
	}
}

func TestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f")
	if err := os.WriteFile(path, []byte("abc"), 0o644); err != nil {
		t.Fatal(err)
	}

	cases := map[Algorithm]string{
		MD5:    "md5:900150983cd24fb0d6963f7d28e17f72",
		SHA256: "sha256:ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad",
	}
	for algo, want := range cases {
		got, err := File(path, algo)
		if err != nil {
			t.Fatalf("File(%s) failed: %v", algo, err)
		}
		if got != want {
			t.Errorf("File(%s) = %q, want %q", algo, got, want)
		}
	}

	if _, err := File(filepath.Join(t.TempDir(), "missing"), MD5); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestFiles(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	want := make(map[string]string)
	for i := range 50 {
		path := filepath.Join(dir, fmt.Sprintf("f%02d", i))
		content := []byte(fmt.Sprintf("content %d", i))
		if err := os.WriteFile(path, content, 0o644); err != nil {
			t.Fatal(err)
		}
		paths = append(paths, path)

		digest, err := File(path, SHA256)
		if err != nil {
			t.Fatal(err)
		}
		want[path] = digest
	}

	got, err := Files(paths, SHA256)
	if err != nil {
		t.Fatalf("Files failed: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("got %d digests, want %d", len(got), len(want))
	}
	for path, digest := range want {
		if got[path] != digest {
			t.Errorf("digest for %s = %q, want %q", path, got[path], digest)
		}
	}

	t.Run("missing file fails the batch", func(t *testing.T) {
		_, err := Files([]string{filepath.Join(dir, "missing")}, SHA256)
		if err == nil {
			t.Error("expected error")
		}
	})
}
