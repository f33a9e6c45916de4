package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hashicorp/go-hclog"
)

func TestSetupWritesFile(t *testing.T) {
	dir := t.TempDir()
	prev := hclog.Default()
	defer hclog.SetDefault(prev)

	l, err := Setup(&Settings{
		Path:       filepath.Join(dir, "logs"),
		Name:       "redis-go",
		Ext:        "log",
		TimeFormat: "2006-01-02",
		Level:      "warn",
	})
	if err != nil {
		t.Fatal(err)
	}
	if l.IsInfo() || !l.IsWarn() {
		t.Errorf("level not applied")
	}
	Warn("connection lost", "addr", "127.0.0.1:6379")
	Info("filtered out")

	entries, err := os.ReadDir(filepath.Join(dir, "logs"))
	if err != nil || len(entries) != 1 {
		t.Fatalf("entries %v %v", entries, err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "logs", entries[0].Name()))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "connection lost") || strings.Contains(string(data), "filtered out") {
		t.Errorf("unexpected log content %q", data)
	}
}
