//go:build unix

package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/johndauphine/sqldialect/internal/logging"
)

func TestLoadWarnsOnInsecurePermissions(t *testing.T) {
	var buf bytes.Buffer
	logging.SetOutput(&buf)
	t.Cleanup(func() { logging.SetOutput(nil) })

	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "connection:\n  type: sqlite\n  path: notes.db\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if err := os.Chmod(path, 0644); err != nil {
		t.Fatalf("chmod: %v", err)
	}

	if _, err := LoadWithOptions(path, LoadOptions{SuppressWarnings: true}); err != nil {
		t.Fatalf("LoadWithOptions: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("suppressed load logged: %q", buf.String())
	}

	if _, err := Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "[WARN]") || !strings.Contains(out, "insecure permissions (0644)") {
		t.Errorf("expected a permissions warning, got %q", out)
	}

	buf.Reset()
	if err := os.Chmod(path, 0600); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	if _, err := Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("0600 config logged: %q", buf.String())
	}
}
