package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"polish/interpreter-go/pkg/driver"
)

func resolvePolishHome() (string, error) {
	if home := strings.TrimSpace(os.Getenv("POLISH_HOME")); home != "" {
		abs, err := filepath.Abs(home)
		if err != nil {
			return "", fmt.Errorf("resolve POLISH_HOME %q: %w", home, err)
		}
		return abs, nil
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve user home: %w", err)
	}
	return filepath.Join(userHome, ".polish"), nil
}

// loadManifestFrom returns the manifest governing start, or nil when none exists.
func loadManifestFrom(start string) (*driver.Manifest, error) {
	manifestPath, err := driver.FindManifest(start)
	if err != nil {
		if errors.Is(err, driver.ErrManifestNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return driver.LoadManifest(manifestPath)
}

func lockfilePath(manifest *driver.Manifest) string {
	return filepath.Join(manifest.Dir(), driver.LockfileName)
}

func loadLockfileForManifest(manifest *driver.Manifest) (*driver.Lockfile, error) {
	if manifest == nil {
		return nil, nil
	}
	lockPath := lockfilePath(manifest)
	lock, err := driver.LoadLockfile(lockPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if len(manifest.Dependencies) > 0 {
				return nil, fmt.Errorf("package.lock missing for %q; run `polish deps install`", manifest.Name)
			}
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read lockfile %s: %w", lockPath, err)
	}
	if lock.Root != manifest.Name {
		return nil, fmt.Errorf("lockfile root %q does not match manifest name %q", lock.Root, manifest.Name)
	}
	return lock, nil
}

// buildSearchPaths orders load roots: the entry directory, the manifest
// directory, installed dependencies, then POLISH_PATH entries.
func buildSearchPaths(entryDir string, manifest *driver.Manifest, lock *driver.Lockfile) ([]driver.SearchPath, error) {
	var paths []driver.SearchPath
	add := func(path, pkg string) {
		if path == "" {
			return
		}
		if info, err := os.Stat(path); err != nil || !info.IsDir() {
			return
		}
		paths = append(paths, driver.SearchPath{Path: path, Package: pkg})
	}

	add(entryDir, "")
	if manifest != nil {
		add(manifest.Dir(), "")
	}
	if lock != nil && len(lock.Packages) > 0 {
		cacheDir, err := resolvePolishHome()
		if err != nil {
			return nil, err
		}
		for _, pkg := range lock.Packages {
			add(installedPackageDir(cacheDir, pkg), pkg.Name)
		}
	}
	for _, part := range splitPathListEnv(os.Getenv("POLISH_PATH")) {
		add(part, "")
	}
	return paths, nil
}

// installedPackageDir prefers the cached copy and falls back to the source
// directory of a path dependency.
func installedPackageDir(cacheDir string, pkg *driver.LockedPackage) string {
	if pkg == nil || pkg.Name == "" {
		return ""
	}
	cached := packageCacheDir(cacheDir, pkg.Name, pkg.Version)
	if info, err := os.Stat(cached); err == nil && info.IsDir() {
		return cached
	}
	if source, ok := strings.CutPrefix(pkg.Source, "path:"); ok {
		return filepath.Clean(strings.TrimSpace(source))
	}
	return ""
}

func packageCacheDir(cacheDir, name, version string) string {
	return filepath.Join(cacheDir, "pkg", "src", sanitizeName(name), sanitizePathSegment(version))
}

func splitPathListEnv(value string) []string {
	if value == "" {
		return nil
	}
	raw := strings.Split(value, string(os.PathListSeparator))
	out := make([]string, 0, len(raw))
	for _, part := range raw {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func sanitizeName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, "-", "_")
	return name
}

func sanitizePathSegment(segment string) string {
	segment = strings.TrimSpace(segment)
	if segment == "" {
		return "head"
	}
	var b strings.Builder
	for _, r := range segment {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '.' || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}
