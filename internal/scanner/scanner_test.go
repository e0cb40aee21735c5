package scanner

import (
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestNew(t *testing.T) {
	s := New("", nil)
	if s == nil {
		t.Fatal("New should return a Scanner")
	}
	if s.Dir() != DefaultAppsDir {
		t.Errorf("Expected dir %s, got %s", DefaultAppsDir, s.Dir())
	}
	if s.logger == nil {
		t.Error("logger should be set")
	}
}

func TestNewWithDir(t *testing.T) {
	dir := "/tmp/test-apps"
	s := New(dir, nil)
	if s.Dir() != dir {
		t.Errorf("Expected dir %s, got %s", dir, s.Dir())
	}
}

func TestExpandPath(t *testing.T) {
	s := New("", nil)

	result := s.expandPath("~/.local/share/applications")
	if result == "" {
		t.Fatal("expandPath returned empty string")
	}
	if s.homeDir != "" && result[0] == '~' {
		t.Errorf("expandPath didn't expand tilde, got %s", result)
	}

	if got := s.expandPath("/absolute/path"); got != "/absolute/path" {
		t.Errorf("expandPath(/absolute/path) = %s", got)
	}
}

func TestScan(t *testing.T) {
	tempDir := t.TempDir()
	os.WriteFile(filepath.Join(tempDir, "b.desktop"), []byte("[Desktop Entry]\n"), 0644)
	os.WriteFile(filepath.Join(tempDir, "a.desktop"), []byte("[Desktop Entry]\n"), 0644)
	os.WriteFile(filepath.Join(tempDir, "mimeapps.list"), []byte("[Default Applications]\n"), 0644)
	os.WriteFile(filepath.Join(tempDir, "notes.txt"), []byte("skip"), 0644)

	s := New(tempDir, nil)
	sources, err := s.Scan()
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if len(sources) != 2 {
		t.Fatalf("Expected 2 sources, got %d", len(sources))
	}
	if sources[0].ID() != "a.desktop" || sources[1].ID() != "b.desktop" {
		t.Errorf("Expected sorted [a.desktop b.desktop], got [%s %s]", sources[0].ID(), sources[1].ID())
	}
	if sources[0].Path() != filepath.Join(tempDir, "a.desktop") {
		t.Errorf("Unexpected path %s", sources[0].Path())
	}
}

func TestScan_SkipsSubdirectories(t *testing.T) {
	tempDir := t.TempDir()
	os.MkdirAll(filepath.Join(tempDir, "kde4.desktop"), 0755)
	os.MkdirAll(filepath.Join(tempDir, "screensavers"), 0755)
	os.WriteFile(filepath.Join(tempDir, "screensavers", "x.desktop"), []byte("[Desktop Entry]\n"), 0644)
	os.WriteFile(filepath.Join(tempDir, "top.desktop"), []byte("[Desktop Entry]\n"), 0644)

	sources, err := New(tempDir, nil).Scan()
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if len(sources) != 1 || sources[0].ID() != "top.desktop" {
		t.Errorf("Expected only top.desktop, got %d sources", len(sources))
	}
}

func TestScan_MissingDir(t *testing.T) {
	s := New("/this/path/definitely/does/not/exist", nil)
	if _, err := s.Scan(); err == nil {
		t.Error("Scan should fail for a missing directory")
	}
}

func TestFileSource_Open(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "a.desktop")
	os.WriteFile(path, []byte("content"), 0644)

	src := FileSource(path)
	if src.ID() != "a.desktop" {
		t.Errorf("ID() = %s, want a.desktop", src.ID())
	}

	rc, err := src.Open()
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer rc.Close()

	data, _ := io.ReadAll(rc)
	if string(data) != "content" {
		t.Errorf("Expected content, got %q", data)
	}
}

func TestMemSources(t *testing.T) {
	sources := MemSources(map[string]string{
		"z.desktop": "z",
		"a.desktop": "a",
	})

	if len(sources) != 2 {
		t.Fatalf("Expected 2 sources, got %d", len(sources))
	}
	if sources[0].ID() != "a.desktop" {
		t.Errorf("Expected a.desktop first, got %s", sources[0].ID())
	}
	if sources[0].Path() != "" {
		t.Errorf("Memory source should have empty path, got %s", sources[0].Path())
	}

	rc, err := sources[1].Open()
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if string(data) != "z" {
		t.Errorf("Expected z, got %q", data)
	}
}
