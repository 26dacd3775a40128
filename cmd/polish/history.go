package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"polish/interpreter-go/pkg/history"
)

const defaultHistoryCount = 20

func runHistory(args []string) int {
	count := defaultHistoryCount
	var path string
	for _, arg := range args {
		switch {
		case strings.HasPrefix(arg, "--history="):
			path = strings.TrimPrefix(arg, "--history=")
		default:
			n, err := strconv.Atoi(arg)
			if err != nil || n <= 0 {
				fmt.Fprintf(os.Stderr, "history count must be a positive integer (received %q)\n", arg)
				return 1
			}
			count = n
		}
	}

	store, err := openHistory(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open history: %v\n", err)
		return 1
	}
	defer store.Close()

	entries, err := store.Recent(context.Background(), count)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read history: %v\n", err)
		return 1
	}
	printHistory(os.Stdout, entries)
	return 0
}

func printHistory(w io.Writer, entries []history.Entry) {
	for _, e := range entries {
		fmt.Fprintf(w, "%5d  %s\n", e.ID, e.Input)
		fmt.Fprintf(w, "       => %s\n", e.Output)
	}
}
