package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"polish/interpreter-go/pkg/driver"
	"polish/interpreter-go/pkg/interpreter"
	"polish/interpreter-go/pkg/runtime"
)

func runEntry(args []string) int {
	if len(args) > 1 {
		fmt.Fprintf(os.Stderr, "unexpected arguments: %s\n", strings.Join(args[1:], " "))
		return 1
	}

	start := "."
	if len(args) == 1 {
		start = filepath.Dir(args[0])
	}
	manifest, err := loadManifestFrom(start)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load manifest: %v\n", err)
		return 1
	}

	var entry string
	switch {
	case len(args) == 1:
		entry = args[0]
	case manifest != nil && manifest.Main != "":
		entry = manifest.ResolvePath(manifest.Main)
	case manifest != nil:
		fmt.Fprintf(os.Stderr, "manifest %s declares no main file\n", manifest.Path)
		return 1
	default:
		fmt.Fprintln(os.Stderr, "polish run requires a source file (package.yml not found)")
		return 1
	}

	lock, err := loadLockfileForManifest(manifest)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	return executeEntry(entry, manifest, lock)
}

func executeEntry(entry string, manifest *driver.Manifest, lock *driver.Lockfile) int {
	absEntry, err := filepath.Abs(entry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to resolve %s: %v\n", entry, err)
		return 1
	}
	source, err := os.ReadFile(absEntry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read %s: %v\n", entry, err)
		return 1
	}

	interp, err := newSession(filepath.Dir(absEntry), manifest, lock, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}

	forms, err := interp.Read(absEntry, source)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	if evalForms(interp, forms, os.Stderr) > 0 {
		return 1
	}
	return 0
}

// evalForms evaluates each top-level form in the global environment, printing
// error results to errOut. It returns the number of forms that failed.
func evalForms(interp *interpreter.Interpreter, forms *runtime.SExprValue, errOut io.Writer) int {
	failed := 0
	for forms.Count() > 0 {
		result := interp.Eval(interp.GlobalEnvironment(), forms.Pop(0))
		if runtime.IsError(result) {
			runtime.Println(errOut, result)
			failed++
		}
	}
	return failed
}

// newSession builds an interpreter whose `load` searches the entry directory,
// the project and its installed dependencies, then runs the manifest prelude.
func newSession(entryDir string, manifest *driver.Manifest, lock *driver.Lockfile, out io.Writer) (*interpreter.Interpreter, error) {
	searchPaths, err := buildSearchPaths(entryDir, manifest, lock)
	if err != nil {
		return nil, err
	}
	loader, err := driver.NewLoader(searchPaths)
	if err != nil {
		return nil, err
	}
	interp := interpreter.New(
		interpreter.WithOutput(out),
		interpreter.WithResolver(loader),
	)
	if manifest == nil {
		return interp, nil
	}
	for _, prelude := range manifest.Prelude {
		result := interp.LoadFile(manifest.ResolvePath(prelude))
		if errVal, ok := result.(runtime.ErrorValue); ok {
			return nil, fmt.Errorf("prelude %s: %s", prelude, errVal.Message)
		}
	}
	return interp, nil
}
