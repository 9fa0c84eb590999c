package manifest

import (
	"os"
	"path/filepath"
	"testing"
)

func writeManifest(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "package.yml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("writing fixture manifest: %v", err)
	}
	return path
}

func TestLoad_ParsesSearchPathsAndBinaries(t *testing.T) {
	path := writeManifest(t, `
name: sockets
namespace: 🌐
searchPaths:
  - ./packages
  - /usr/local/lib/emojicode
requiredBinaries:
  - name: openssl
    version: "3.0"
`)

	m, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Name != "sockets" || m.Namespace != "🌐" {
		t.Errorf("unexpected identity fields: %+v", m)
	}
	if len(m.SearchPaths) != 2 {
		t.Fatalf("expected 2 search paths, got %v", m.SearchPaths)
	}
	version, ok := m.ResolveBinary("openssl")
	if !ok || version != "3.0" {
		t.Errorf("expected openssl@3.0 to resolve, got %q, %v", version, ok)
	}
	if _, ok := m.ResolveBinary("curl"); ok {
		t.Error("expected an undeclared binary not to resolve")
	}
}

func TestLoad_MissingNameIsAnError(t *testing.T) {
	path := writeManifest(t, "namespace: 🌐\n")

	if _, err := Load(path); err == nil {
		t.Fatal("expected a manifest without a name to fail to load")
	}
}

func TestLoad_MissingFileIsAnError(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yml")); err == nil {
		t.Fatal("expected a missing manifest file to error")
	}
}
