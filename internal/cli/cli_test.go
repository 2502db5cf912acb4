package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/matlayer/pkg/config"
	"github.com/matzehuels/matlayer/pkg/errors"
	"github.com/matzehuels/matlayer/pkg/project"
)

// isolate points every XDG directory at a temp dir so commands use a fresh
// file store and cache.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	return dir
}

// run executes the root command with args and discards stdout.
func run(t *testing.T, args ...string) error {
	t.Helper()
	stdout := os.Stdout
	devnull, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
	if err != nil {
		t.Fatal(err)
	}
	os.Stdout = devnull
	defer func() {
		os.Stdout = stdout
		devnull.Close()
	}()

	root := New(io.Discard, LogInfo).RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return root.ExecuteContext(context.Background())
}

func loadStored(t *testing.T, name string) *project.Document {
	t.Helper()
	store, err := project.Open(context.Background(), config.Default().Store)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	doc, err := store.Get(context.Background(), name)
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestCommandsPersist(t *testing.T) {
	isolate(t)

	steps := [][]string{
		{"init", "Metal"},
		{"layer", "add", "Metal", "COLOR"},
		{"layer", "add", "Metal", "IMAGE"},
		{"mask", "add", "Metal", "EDGE_WEAR"},
		{"mask", "add", "Metal", "BLACK", "--layer", "0"},
		{"mask", "dup", "Metal"},
		{"layer", "hide", "Metal", "1"},
		{"layer", "ls", "Metal"},
		{"mask", "ls", "Metal"},
		{"check"},
		{"check", "Metal"},
	}
	for _, args := range steps {
		if err := run(t, args...); err != nil {
			t.Fatalf("%v: %v", args, err)
		}
	}

	doc := loadStored(t, "Metal")
	if doc == nil {
		t.Fatal("Metal not stored")
	}
	if got := len(doc.Layers.Entries); got != 2 {
		t.Errorf("layers = %d, want 2", got)
	}
	if doc.Layers.Selected != 0 {
		t.Errorf("selected layer = %d, want 0", doc.Layers.Selected)
	}
	if !doc.Layers.Entries[1].Hidden {
		t.Errorf("layer 1 not hidden")
	}
	first := doc.Masks[doc.Layers.Entries[0].ID]
	second := doc.Masks[doc.Layers.Entries[1].ID]
	if len(first.Entries) != 2 || len(second.Entries) != 1 {
		t.Errorf("mask counts = %d, %d, want 2, 1", len(first.Entries), len(second.Entries))
	}
}

func TestCommandErrors(t *testing.T) {
	isolate(t)
	if err := run(t, "init", "Metal"); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		args []string
		code errors.Code
	}{
		{[]string{"init", "Metal"}, errors.ErrCodeNameCollision},
		{[]string{"layer", "add", "Wood", "COLOR"}, errors.ErrCodeNotFound},
		{[]string{"layer", "add", "Metal", "PLASTIC"}, errors.ErrCodeInvalidKind},
		{[]string{"mask", "add", "Metal", "WHITE"}, errors.ErrCodeNoActiveContext},
		{[]string{"layer", "select", "Metal", "two"}, errors.ErrCodeInvalidIndex},
		{[]string{"layer", "rm", "Metal"}, errors.ErrCodeNoActiveContext},
		{[]string{"--store", "floppy", "check"}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		err := run(t, tt.args...)
		if !errors.Is(err, tt.code) {
			t.Errorf("%v error = %v, want %s", tt.args, err, tt.code)
		}
	}

	if err := run(t, "init", "Metal", "--force"); err != nil {
		t.Errorf("init --force: %v", err)
	}
}

func TestExportAndGraph(t *testing.T) {
	dir := isolate(t)
	for _, args := range [][]string{
		{"init", "Metal"},
		{"layer", "add", "Metal", "COLOR"},
	} {
		if err := run(t, args...); err != nil {
			t.Fatalf("%v: %v", args, err)
		}
	}

	if err := run(t, "export", "Metal", "--object", "Cube", "--json"); err != nil {
		t.Errorf("export: %v", err)
	}
	if err := run(t, "export", "Metal", "--format", "bmp"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("export --format bmp error = %v, want %s", err, errors.ErrCodeInvalidInput)
	}

	out := filepath.Join(dir, "metal.dot")
	if err := run(t, "graph", "Metal", "-f", "dot", "-o", out); err != nil {
		t.Fatalf("graph: %v", err)
	}
	if info, err := os.Stat(out); err != nil || info.Size() == 0 {
		t.Errorf("graph output missing or empty: %v", err)
	}
	if err := run(t, "graph", "Metal", "-f", "gif"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("graph -f gif error = %v, want %s", err, errors.ErrCodeInvalidInput)
	}
}

func TestConfigFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.toml")
	if err := os.WriteFile(path, []byte("[store]\nbackend = \"memory\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	// The memory store does not outlive the command, so nothing is found.
	if err := run(t, "--config", path, "init", "Metal"); err != nil {
		t.Fatal(err)
	}
	if err := run(t, "--config", path, "layer", "ls", "Metal"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("ls with memory store error = %v, want %s", err, errors.ErrCodeNotFound)
	}
}
