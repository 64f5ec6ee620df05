package tempfile

import (
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"testing"
)

func TestGetTempDirWithPreferences(t *testing.T) {
	result1 := GetTempDir("", true)
	if result1 == "" {
		t.Error("Expected non-empty directory with preferDiskBacked=true")
	}

	result2 := GetTempDir("", false)
	if result2 == "" {
		t.Error("Expected non-empty directory with preferDiskBacked=false")
	}

	t.Logf("preferDiskBacked=true: %s", result1)
	t.Logf("preferDiskBacked=false: %s", result2)
}

func TestGetTempDirWithSpecificDir(t *testing.T) {
	testDir := t.TempDir()

	// When a specific directory is provided and valid, it should be used
	result := GetTempDir(testDir, true)
	if result != testDir {
		t.Errorf("Expected GetTempDir to return %s, got %s", testDir, result)
	}
}

func TestGetTempDirWithFileFallsBack(t *testing.T) {
	testFile := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(testFile, []byte("test"), 0o644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	result := GetTempDir(testFile, true)
	if result == testFile {
		t.Errorf("Expected a regular file to be rejected as temp dir")
	}
	if result == "" {
		t.Errorf("Expected a fallback directory")
	}
}

func TestGetTempDirConsistency(t *testing.T) {
	// Multiple calls with empty string should return the same directory
	result1 := GetTempDir("", true)
	result2 := GetTempDir("", true)

	if result1 != result2 {
		t.Errorf("Expected consistent results, got %s and %s", result1, result2)
	}
}

func TestIsDirectoryUsable(t *testing.T) {
	testDir := t.TempDir()

	if !isDirectoryUsable(testDir) {
		t.Errorf("Expected existing directory %s to be usable", testDir)
	}

	// Test with non-existent directory that can be created
	nonExistentDir := filepath.Join(testDir, "subdir")
	if !isDirectoryUsable(nonExistentDir) {
		t.Errorf("Expected creatable directory %s to be usable", nonExistentDir)
	}

	// Test with invalid directory (file)
	testFile := filepath.Join(testDir, "testfile")
	if err := os.WriteFile(testFile, []byte("test"), 0o644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	if isDirectoryUsable(testFile) {
		t.Errorf("Expected file %s to not be usable as directory", testFile)
	}
}

func TestBuildCandidateList(t *testing.T) {
	disk := buildCandidateList(true)
	mem := buildCandidateList(false)

	if !slices.Contains(mem, os.TempDir()) {
		t.Errorf("Expected os.TempDir() in candidates %v", mem)
	}

	switch runtime.GOOS {
	case "linux", "darwin", "freebsd", "openbsd", "netbsd", "dragonfly", "solaris":
		if disk[0] != "/var/tmp" {
			t.Errorf("Expected /var/tmp first in disk-preferred candidates, got %v", disk)
		}
		if slices.Contains(mem, "/var/tmp") && os.TempDir() != "/var/tmp" {
			t.Errorf("Did not expect /var/tmp without disk preference, got %v", mem)
		}
	default:
		t.Logf("%s disk-preferred candidates: %v", runtime.GOOS, disk)
	}

	for _, c := range mem[1:] {
		if filepath.Base(c) != fallbackDirName {
			t.Errorf("Expected fallback %s to end in %s", c, fallbackDirName)
		}
	}
}
