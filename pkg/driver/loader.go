package driver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// SourceExt is tried when a load path names no extension.
const SourceExt = ".pl"

// SearchPath describes a directory consulted by `load`.
type SearchPath struct {
	Path string
	// Package is the dependency installed at Path, or "" for the project root.
	Package string
}

// Loader resolves `load` paths against the working directory and a list of
// search roots.
type Loader struct {
	searchPaths []SearchPath
}

// NewLoader constructs a loader over the given search paths. Empty and
// duplicate paths are dropped; order is kept.
func NewLoader(searchPaths []SearchPath) (*Loader, error) {
	unique := make([]SearchPath, 0, len(searchPaths))
	seen := make(map[string]struct{}, len(searchPaths))
	for _, sp := range searchPaths {
		if sp.Path == "" {
			continue
		}
		abs, err := filepath.Abs(sp.Path)
		if err != nil {
			return nil, fmt.Errorf("loader: resolve search path %q: %w", sp.Path, err)
		}
		if _, ok := seen[abs]; ok {
			continue
		}
		seen[abs] = struct{}{}
		unique = append(unique, SearchPath{Path: abs, Package: sp.Package})
	}
	return &Loader{searchPaths: unique}, nil
}

// SearchPaths returns the normalized search roots.
func (l *Loader) SearchPaths() []SearchPath {
	out := make([]SearchPath, len(l.searchPaths))
	copy(out, l.searchPaths)
	return out
}

// Resolve returns the file `load` should read for path. The path is tried as
// given first, then relative to each search root.
func (l *Loader) Resolve(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("loader: empty path")
	}
	candidates := []string{path}
	if filepath.Ext(path) == "" {
		candidates = append(candidates, path+SourceExt)
	}
	for _, candidate := range candidates {
		if found, ok := existingFile(candidate); ok {
			return found, nil
		}
	}
	if filepath.IsAbs(path) {
		return "", fmt.Errorf("loader: %s: %w", path, os.ErrNotExist)
	}
	for _, sp := range l.searchPaths {
		for _, candidate := range candidates {
			if found, ok := existingFile(filepath.Join(sp.Path, candidate)); ok {
				return found, nil
			}
		}
	}
	return "", fmt.Errorf("loader: %s not found in %d search paths: %w", path, len(l.searchPaths), os.ErrNotExist)
}

func existingFile(path string) (string, bool) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", false
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", false
	}
	return abs, true
}

// ErrManifestNotFound is returned by FindManifest when no package.yml exists
// in start or any parent directory.
var ErrManifestNotFound = errors.New("package.yml not found")

// FindManifest walks upward from start looking for package.yml.
func FindManifest(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("loader: resolve %s: %w", start, err)
	}
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	for {
		candidate := filepath.Join(dir, "package.yml")
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, nil
		}
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("loader: stat %s: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrManifestNotFound
		}
		dir = parent
	}
}
