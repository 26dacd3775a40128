package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"polish/interpreter-go/pkg/history"
	"polish/interpreter-go/pkg/interpreter"
	"polish/interpreter-go/pkg/runtime"
)

const replPrompt = "polish> "

type replOptions struct {
	noHistory   bool
	historyPath string
}

func parseReplArguments(args []string) (replOptions, error) {
	var opts replOptions
	for _, arg := range args {
		switch {
		case arg == "--no-history":
			opts.noHistory = true
		case strings.HasPrefix(arg, "--history="):
			opts.historyPath = strings.TrimPrefix(arg, "--history=")
			if opts.historyPath == "" {
				return opts, fmt.Errorf("--history requires a path")
			}
		default:
			return opts, fmt.Errorf("unknown repl argument %q", arg)
		}
	}
	return opts, nil
}

func runRepl(args []string) int {
	opts, err := parseReplArguments(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	manifest, err := loadManifestFrom(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load manifest: %v\n", err)
		return 1
	}
	lock, err := loadLockfileForManifest(manifest)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to determine working directory: %v\n", err)
		return 1
	}
	interp, err := newSession(cwd, manifest, lock, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}

	var store *history.Store
	if !opts.noHistory {
		store, err = openHistory(opts.historyPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: history disabled: %v\n", err)
			store = nil
		} else {
			defer store.Close()
		}
	}

	fmt.Fprintf(os.Stdout, "%s\nType :quit or press Ctrl+D to exit\n\n", cliToolVersion)
	if err := replLoop(context.Background(), os.Stdin, os.Stdout, interp, store); err != nil {
		fmt.Fprintf(os.Stderr, "repl: %v\n", err)
		return 1
	}
	return 0
}

func openHistory(path string) (*history.Store, error) {
	if path == "" {
		home, err := resolvePolishHome()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(home, "history.db")
	}
	return history.Open(path)
}

// replLoop reads lines from in until EOF or :quit. Each line is evaluated as a
// single S-expression and its result printed to out.
func replLoop(ctx context.Context, in io.Reader, out io.Writer, interp *interpreter.Interpreter, store *history.Store) error {
	session := fmt.Sprintf("%d-%d", os.Getpid(), time.Now().UnixNano())
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, replPrompt)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case ":quit":
			return nil
		case ":dir":
			for i, name := range interp.GlobalEnvironment().Names() {
				fmt.Fprintf(out, " %2d: %s\n", i, name)
			}
			continue
		}

		result := interp.EvalLine(line)
		rendered := runtime.Format(result)
		fmt.Fprintln(out, rendered)

		if store != nil {
			entry := history.Entry{
				Session: session,
				Input:   line,
				Output:  rendered,
				IsError: runtime.IsError(result),
			}
			if _, err := store.Record(ctx, entry); err != nil {
				fmt.Fprintf(os.Stderr, "warning: %v\n", err)
			}
		}
	}
}
