package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"polish/interpreter-go/pkg/driver"
)

type dependencyInstaller struct {
	manifest  *driver.Manifest
	cacheDir  string
	logs      []string
	git       *gitFetcher
	locked    map[string]*driver.LockedPackage
	resolved  map[string]*driver.LockedPackage
	resolving map[string]bool
}

func newDependencyInstaller(manifest *driver.Manifest, cacheDir string) *dependencyInstaller {
	return &dependencyInstaller{
		manifest: manifest,
		cacheDir: cacheDir,
		git:      newGitFetcher(cacheDir),
	}
}

// Install resolves every dependency reachable from the manifest, copies or
// checks it out under the cache, and rewrites lock.Packages. The bool result
// reports whether the package set differs from what lock held before.
func (d *dependencyInstaller) Install(lock *driver.Lockfile) (bool, []string, error) {
	d.logs = []string{}
	d.resolved = make(map[string]*driver.LockedPackage)
	d.resolving = make(map[string]bool)
	d.locked = make(map[string]*driver.LockedPackage, len(lock.Packages))
	for _, pkg := range lock.Packages {
		if pkg != nil {
			d.locked[pkg.Name] = pkg
		}
	}
	if d.manifest == nil {
		return false, d.logs, nil
	}

	for _, name := range d.manifest.DependencyNames() {
		if err := d.installDependency(name, d.manifest.Dependencies[name], d.manifest.Dir()); err != nil {
			return false, d.logs, err
		}
	}

	desired := make([]*driver.LockedPackage, 0, len(d.resolved))
	for _, pkg := range d.resolved {
		desired = append(desired, pkg)
	}
	sort.SliceStable(desired, func(i, j int) bool {
		return desired[i].Name < desired[j].Name
	})

	changed := len(desired) != len(d.locked)
	for _, pkg := range desired {
		if current, ok := d.locked[pkg.Name]; !ok || !lockedPackageEqual(current, pkg) {
			changed = true
		}
	}
	lock.Packages = desired
	return changed, d.logs, nil
}

func (d *dependencyInstaller) installDependency(name string, spec *driver.DependencySpec, base string) error {
	if spec == nil {
		return fmt.Errorf("dependency %q has no descriptor", name)
	}
	alias := sanitizeName(name)
	if _, done := d.resolved[alias]; done {
		return nil
	}
	if d.resolving[alias] {
		return fmt.Errorf("dependency cycle detected at %s", alias)
	}
	d.resolving[alias] = true
	defer delete(d.resolving, alias)

	var (
		pkg  *driver.LockedPackage
		root string
		err  error
	)
	switch {
	case spec.Path != "":
		pkg, root, err = d.resolvePathDependency(alias, spec, base)
	case spec.IsGit():
		pkg, root, err = d.resolveGitDependency(alias, spec)
	default:
		err = fmt.Errorf("dependency %q: unsupported descriptor", name)
	}
	if err != nil {
		return err
	}

	childManifest, err := readOptionalManifest(root)
	if err != nil {
		return fmt.Errorf("dependency %q: %w", name, err)
	}
	if childManifest != nil {
		for _, childName := range childManifest.DependencyNames() {
			if err := d.installDependency(childName, childManifest.Dependencies[childName], childSourceBase(pkg, root)); err != nil {
				return err
			}
		}
	}

	d.resolved[alias] = pkg
	return nil
}

// childSourceBase is the directory a dependency's own relative path
// dependencies are resolved against: its source directory for path
// dependencies, its checkout for git ones.
func childSourceBase(pkg *driver.LockedPackage, root string) string {
	if source, ok := strings.CutPrefix(pkg.Source, "path:"); ok {
		return source
	}
	return root
}

func (d *dependencyInstaller) resolvePathDependency(name string, spec *driver.DependencySpec, base string) (*driver.LockedPackage, string, error) {
	pathSpec := spec.Path
	if !filepath.IsAbs(pathSpec) {
		pathSpec = filepath.Join(base, filepath.FromSlash(pathSpec))
	}
	abs, err := filepath.Abs(pathSpec)
	if err != nil {
		return nil, "", fmt.Errorf("dependency %q: resolve path %q: %w", name, spec.Path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, "", fmt.Errorf("dependency %q: stat %s: %w", name, abs, err)
	}
	if !info.IsDir() {
		return nil, "", fmt.Errorf("dependency %q: expected directory at %s", name, abs)
	}

	version := "0.0.0-dev"
	depManifest, err := readOptionalManifest(abs)
	if err != nil {
		return nil, "", fmt.Errorf("dependency %q: %w", name, err)
	}
	if depManifest != nil && depManifest.Version != "" {
		version = depManifest.Version
	}

	target := packageCacheDir(d.cacheDir, name, version)
	if err := copyOrSyncDir(abs, target); err != nil {
		return nil, "", fmt.Errorf("dependency %q: copy %s -> %s: %w", name, abs, target, err)
	}
	checksum, err := dirChecksum(abs)
	if err != nil {
		return nil, "", fmt.Errorf("dependency %q: checksum %s: %w", name, abs, err)
	}

	d.logs = append(d.logs, fmt.Sprintf("linked %s %s (%s)", name, version, abs))
	return &driver.LockedPackage{
		Name:     name,
		Version:  version,
		Source:   "path:" + abs,
		Checksum: checksum,
	}, target, nil
}

func (d *dependencyInstaller) resolveGitDependency(name string, spec *driver.DependencySpec) (*driver.LockedPackage, string, error) {
	if locked, ok := d.locked[name]; ok && strings.HasPrefix(locked.Source, "git+"+spec.Git+"@") {
		cached := packageCacheDir(d.cacheDir, name, locked.Version)
		if _, err := os.Stat(cached); err == nil && lockedMatchesPin(locked, spec) {
			d.logs = append(d.logs, fmt.Sprintf("using locked %s %s", name, locked.Version))
			copy := *locked
			return &copy, cached, nil
		}
	}
	pkg, err := d.git.Fetch(name, spec)
	if err != nil {
		return nil, "", fmt.Errorf("dependency %q: %w", name, err)
	}
	d.logs = append(d.logs, fmt.Sprintf("fetched %s %s (%s)", name, pkg.Version, spec.Git))
	return pkg, packageCacheDir(d.cacheDir, name, pkg.Version), nil
}

// lockedMatchesPin reports whether a locked git package still satisfies the
// manifest's rev, tag or branch.
func lockedMatchesPin(locked *driver.LockedPackage, spec *driver.DependencySpec) bool {
	ref := spec.Ref()
	if ref == "" {
		return true
	}
	if spec.Rev != "" {
		return strings.HasSuffix(locked.Source, "@"+spec.Rev)
	}
	return strings.HasPrefix(locked.Version, ref+"@")
}

func readOptionalManifest(dir string) (*driver.Manifest, error) {
	path := filepath.Join(dir, "package.yml")
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return driver.LoadManifest(path)
}

func lockedPackageEqual(a, b *driver.LockedPackage) bool {
	return a.Name == b.Name &&
		a.Version == b.Version &&
		a.Source == b.Source &&
		a.Checksum == b.Checksum
}
