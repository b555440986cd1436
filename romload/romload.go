// Package romload discovers ROM image files on disk and loads them into
// a hardware profile's fixed ROM regions and sideways bank slots,
// applying the documented zero-pad/truncate policy for undersized and
// oversized images.
package romload

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// EnvROMDir is the environment variable consulted when no explicit ROM
// directory is configured.
const EnvROMDir = "BEEB_ROM_DIR"

// FindROMDirectory resolves the ROM search directory in priority order:
// an explicit path (from --rom-dir), the BEEB_ROM_DIR environment
// variable, a build-relative "../../roms" (two levels above the running
// executable's directory), and an installed "../share/beeb/roms" layout. Returns an error if none
// of these resolve to an existing directory.
func FindROMDirectory(explicit string) (string, error) {
	if explicit != "" {
		if isDir(explicit) {
			return explicit, nil
		}
		return "", fmt.Errorf("romload: --rom-dir %q does not exist", explicit)
	}

	if envDir := os.Getenv(EnvROMDir); envDir != "" && isDir(envDir) {
		return envDir, nil
	}

	if exeDir, err := executableDir(); err == nil {
		buildROMs := filepath.Join(exeDir, "..", "..", "roms")
		if isDir(buildROMs) {
			return buildROMs, nil
		}
		installedROMs := filepath.Join(exeDir, "..", "share", "beeb", "roms")
		if isDir(installedROMs) {
			return installedROMs, nil
		}
	}

	return "", fmt.Errorf("romload: cannot find ROM directory; set %s or pass --rom-dir", EnvROMDir)
}

// FindROM resolves a single ROM file reference: an absolute path is used
// as-is, a relative path containing a directory separator resolves
// against the current working directory, and a bare filename resolves
// against romDir.
func FindROM(romDir, name string) (string, error) {
	if filepath.IsAbs(name) {
		if !exists(name) {
			return "", fmt.Errorf("romload: ROM file not found: %s", name)
		}
		return name, nil
	}

	if filepath.Dir(name) != "." {
		cwd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		resolved := filepath.Join(cwd, name)
		if !exists(resolved) {
			return "", fmt.Errorf("romload: ROM file not found: %s", resolved)
		}
		return resolved, nil
	}

	resolved := filepath.Join(romDir, name)
	if !exists(resolved) {
		return "", fmt.Errorf("romload: ROM file not found: %s (searched in %s)", resolved, romDir)
	}
	return resolved, nil
}

// Load reads path and calls into load, logging a visible warning if the
// image had to be truncated to fit its region (an undersized image is
// silently zero-padded, which is normal and not worth a warning).
func Load(path string, load func(data []uint8) (truncated bool)) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("romload: %w", err)
	}
	if load(data) {
		log.Printf("romload: %s (%d bytes) is larger than its region and was truncated", path, len(data))
	}
	return nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func executableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}
