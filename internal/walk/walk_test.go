package walk

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("class C {}\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestFindFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Program.cs"))
	writeFile(t, filepath.Join(root, "Services", "OrderManager.cs"))
	writeFile(t, filepath.Join(root, "Services", "notes.md"))
	writeFile(t, filepath.Join(root, "bin", "Generated.cs"))
	writeFile(t, filepath.Join(root, "obj", "Debug", "Temp.cs"))
	writeFile(t, filepath.Join(root, ".git", "hooks", "Hook.cs"))
	writeFile(t, filepath.Join(root, "Services", "OrderManager.cs.bak_a1b2c3d4"))

	files, err := FindFiles(root, DefaultOptions())
	if err != nil {
		t.Fatalf("FindFiles failed: %v", err)
	}

	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %d: %v", len(files), files)
	}
	for _, f := range files {
		if !strings.HasSuffix(f, ".cs") {
			t.Errorf("non-.cs file collected: %s", f)
		}
		if strings.Contains(f, "bin") || strings.Contains(f, "obj") || strings.Contains(f, ".git") {
			t.Errorf("excluded directory leaked: %s", f)
		}
	}
}

func TestFindFilesSorted(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "zeta", "Z.cs"))
	writeFile(t, filepath.Join(root, "alpha", "A.cs"))
	writeFile(t, filepath.Join(root, "Middle.cs"))

	files, err := FindFiles(root, DefaultOptions())
	if err != nil {
		t.Fatalf("FindFiles failed: %v", err)
	}
	for i := 1; i < len(files); i++ {
		if files[i-1] > files[i] {
			t.Errorf("files not sorted: %s > %s", files[i-1], files[i])
		}
	}
}

func TestFindFilesCustomExtensions(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.cs"))
	writeFile(t, filepath.Join(root, "b.vb"))

	files, err := FindFiles(root, Options{Extensions: []string{".vb"}})
	if err != nil {
		t.Fatalf("FindFiles failed: %v", err)
	}
	if len(files) != 1 || !strings.HasSuffix(files[0], "b.vb") {
		t.Errorf("expected only b.vb, got %v", files)
	}
}

func TestFindFilesEmptyRoot(t *testing.T) {
	files, err := FindFiles(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("FindFiles failed: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("expected no files, got %v", files)
	}
}
