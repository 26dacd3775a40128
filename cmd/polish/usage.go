package main

import (
	"fmt"
	"os"
)

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  polish run [file.pl]")
	fmt.Fprintln(os.Stderr, "  polish <file.pl>")
	fmt.Fprintln(os.Stderr, "  polish repl [--no-history] [--history=<path>]")
	fmt.Fprintln(os.Stderr, "  polish deps install")
	fmt.Fprintln(os.Stderr, "  polish deps update [dependency ...]")
	fmt.Fprintln(os.Stderr, "  polish history [count] [--history=<path>]")
	fmt.Fprintln(os.Stderr, "  polish version")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Environment:")
	fmt.Fprintln(os.Stderr, "  POLISH_HOME  dependency cache and history location (default ~/.polish)")
	fmt.Fprintln(os.Stderr, "  POLISH_PATH  extra directories searched by load")
}
