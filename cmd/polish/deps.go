package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"polish/interpreter-go/pkg/driver"
)

func runDeps(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "polish deps requires a subcommand (install, update)")
		return 1
	}
	switch args[0] {
	case "install":
		if len(args) > 1 {
			fmt.Fprintf(os.Stderr, "polish deps install does not take arguments (received %s)\n", strings.Join(args[1:], " "))
			return 1
		}
		return runDepsInstall()
	case "update":
		return runDepsUpdate(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown deps subcommand %q\n", args[0])
		return 1
	}
}

type depsContext struct {
	manifest    *driver.Manifest
	cacheDir    string
	lock        *driver.Lockfile
	lockCreated bool
}

func prepareDeps() (*depsContext, bool) {
	manifest, err := loadManifestFrom(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read manifest: %v\n", err)
		return nil, false
	}
	if manifest == nil {
		fmt.Fprintln(os.Stderr, "unable to locate package.yml")
		return nil, false
	}
	cacheDir, err := resolvePolishHome()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to resolve POLISH_HOME: %v\n", err)
		return nil, false
	}

	ctx := &depsContext{manifest: manifest, cacheDir: cacheDir}
	lockPath := lockfilePath(manifest)
	lock, err := driver.LoadLockfile(lockPath)
	switch {
	case err == nil:
		if lock.Root != manifest.Name {
			fmt.Fprintf(os.Stderr, "lockfile root %q does not match manifest name %q\n", lock.Root, manifest.Name)
			return nil, false
		}
	case errors.Is(err, os.ErrNotExist):
		lock = driver.NewLockfile(manifest.Name, cliToolVersion)
		ctx.lockCreated = true
	default:
		fmt.Fprintf(os.Stderr, "failed to read lockfile: %v\n", err)
		return nil, false
	}
	lock.Path = lockPath
	lock.Tool = cliToolVersion
	ctx.lock = lock
	return ctx, true
}

func runDepsInstall() int {
	ctx, ok := prepareDeps()
	if !ok {
		return 1
	}

	fmt.Fprintf(os.Stdout, "Manifest: %s\n", ctx.manifest.Path)
	fmt.Fprintf(os.Stdout, "Root package: %s\n", ctx.manifest.Name)
	fmt.Fprintf(os.Stdout, "Dependencies: %d\n", len(ctx.manifest.Dependencies))
	fmt.Fprintf(os.Stdout, "Cache directory: %s\n", ctx.cacheDir)

	installer := newDependencyInstaller(ctx.manifest, ctx.cacheDir)
	changed, logs, err := installer.Install(ctx.lock)
	for _, line := range logs {
		fmt.Fprintln(os.Stdout, line)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to resolve dependencies: %v\n", err)
		return 1
	}

	if changed || ctx.lockCreated {
		action := "Updated"
		if ctx.lockCreated {
			action = "Created"
		}
		if err := driver.WriteLockfile(ctx.lock, ""); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write lockfile: %v\n", err)
			return 1
		}
		fmt.Fprintf(os.Stdout, "%s package.lock: %s\n", action, ctx.lock.Path)
	} else {
		fmt.Fprintf(os.Stdout, "package.lock already up to date: %s\n", ctx.lock.Path)
	}
	fmt.Fprintln(os.Stdout, "Dependencies installed.")
	return 0
}

func runDepsUpdate(targets []string) int {
	ctx, ok := prepareDeps()
	if !ok {
		return 1
	}

	updateSet := make(map[string]struct{})
	for _, target := range targets {
		sanitized := sanitizeName(target)
		if _, declared := ctx.manifest.Dependencies[sanitized]; !declared {
			fmt.Fprintf(os.Stderr, "dependency %q not declared in manifest\n", target)
			return 1
		}
		updateSet[sanitized] = struct{}{}
	}

	if len(updateSet) == 0 {
		ctx.lock.Packages = nil
	} else {
		filtered := make([]*driver.LockedPackage, 0, len(ctx.lock.Packages))
		for _, pkg := range ctx.lock.Packages {
			if _, ok := updateSet[pkg.Name]; ok {
				continue
			}
			filtered = append(filtered, pkg)
		}
		ctx.lock.Packages = filtered
	}

	installer := newDependencyInstaller(ctx.manifest, ctx.cacheDir)
	changed, logs, err := installer.Install(ctx.lock)
	for _, line := range logs {
		fmt.Fprintln(os.Stdout, line)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to update dependencies: %v\n", err)
		return 1
	}

	if changed || ctx.lockCreated {
		if err := driver.WriteLockfile(ctx.lock, ""); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write lockfile: %v\n", err)
			return 1
		}
		fmt.Fprintf(os.Stdout, "Updated package.lock: %s\n", ctx.lock.Path)
	} else {
		fmt.Fprintln(os.Stdout, "Dependencies already up to date.")
	}
	return 0
}
