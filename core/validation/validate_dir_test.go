package validation

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCheckDirWritable(t *testing.T) {
	t.Run("existing directory", func(t *testing.T) {
		if err := CheckDirWritable(t.TempDir()); err != nil {
			t.Errorf("CheckDirWritable() unexpected error: %v", err)
		}
	})

	t.Run("creates missing directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "uploads")

		if err := CheckDirWritable(dir); err != nil {
			t.Fatalf("CheckDirWritable() unexpected error: %v", err)
		}

		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("directory was not created: %v", err)
		}
		if !info.IsDir() {
			t.Error("created path is not a directory")
		}
	})

	t.Run("removes probe file", func(t *testing.T) {
		dir := t.TempDir()

		if err := CheckDirWritable(dir); err != nil {
			t.Fatalf("CheckDirWritable() unexpected error: %v", err)
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatalf("ReadDir() error: %v", err)
		}
		if len(entries) != 0 {
			t.Errorf("probe file left behind: %v", entries[0].Name())
		}
	})

	t.Run("empty path", func(t *testing.T) {
		err := CheckDirWritable("")
		if err == nil {
			t.Fatal("CheckDirWritable(\"\") expected error, got nil")
		}
		if _, ok := err.(*DirWritableError); !ok {
			t.Errorf("expected *DirWritableError, got %T", err)
		}
	})

	t.Run("path blocked by a file", func(t *testing.T) {
		tmpDir := t.TempDir()
		blocker := filepath.Join(tmpDir, "blocker")
		if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
			t.Fatalf("Failed to create blocker file: %v", err)
		}

		err := CheckDirWritable(filepath.Join(blocker, "reports"))
		if err == nil {
			t.Fatal("CheckDirWritable() expected error for path under a file, got nil")
		}
		if _, ok := err.(*DirWritableError); !ok {
			t.Errorf("expected *DirWritableError, got %T", err)
		}
	})
}
