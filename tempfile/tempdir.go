package tempfile

import (
	"os"
	"path/filepath"
	"runtime"
	"sync"
)

// fallbackDirName is the subdirectory used under $HOME or the working
// directory when no system temp directory is usable
const fallbackDirName = ".csvsort-tmp"

var (
	// Pre-computed directory choices
	diskPreferredDir string
	memoryAllowedDir string
	dirDiscoveryOnce sync.Once
)

// GetTempDir returns the parent directory to create namespaces in.
// If dir is non-empty and usable it is returned unchanged. Otherwise a
// directory is picked once per process: with preferDiskBacked, locations
// that are traditionally on disk (/var/tmp) win over ones that may be tmpfs,
// since sort runs can be as large as the input.
func GetTempDir(dir string, preferDiskBacked bool) string {
	if dir != "" && isDirectoryUsable(dir) {
		return dir
	}

	dirDiscoveryOnce.Do(discoverDirectories)

	if preferDiskBacked {
		return diskPreferredDir
	}
	return memoryAllowedDir
}

func discoverDirectories() {
	diskPreferredDir = findBestDirectory(true)
	memoryAllowedDir = findBestDirectory(false)
}

// findBestDirectory returns the first usable candidate, or os.TempDir()
func findBestDirectory(preferDiskBacked bool) string {
	for _, candidate := range buildCandidateList(preferDiskBacked) {
		if isDirectoryUsable(candidate) {
			return candidate
		}
	}
	return os.TempDir()
}

// buildCandidateList returns temp directory candidates in priority order
func buildCandidateList(preferDiskBacked bool) []string {
	var candidates []string

	if preferDiskBacked {
		switch runtime.GOOS {
		case "linux", "freebsd", "openbsd", "netbsd", "dragonfly", "solaris":
			candidates = append(candidates, "/var/tmp")
		case "darwin":
			candidates = append(candidates, "/var/tmp", "/private/var/tmp")
		}
	}

	candidates = append(candidates, os.TempDir())

	if home, err := os.UserHomeDir(); err == nil && home != "" {
		candidates = append(candidates, filepath.Join(home, fallbackDirName))
	}
	if wd, err := os.Getwd(); err == nil && wd != "" {
		candidates = append(candidates, filepath.Join(wd, fallbackDirName))
	}

	return candidates
}

// isDirectoryUsable reports whether dir is an existing directory or does not
// exist yet (and can be created on demand). Writability is discovered when the
// namespace directory is created.
func isDirectoryUsable(dir string) bool {
	stat, err := os.Stat(dir)
	if err != nil {
		return os.IsNotExist(err)
	}
	return stat.IsDir()
}
