// Copyright © 2025 Tailpager contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: cmd/tailpager/main.go
// Summary: Entry point. Parses flags, sets up logging, spawns the wrapped
// child process, and runs the terminal frame loop until quit.
// Usage: tailpager [--pages-count N] [--page-size SIZE] [--max-buffer-size SIZE] -- <child-cmd> [args...]

package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"golang.org/x/term"

	"github.com/tailpager/tailpager/internal/app"
	"github.com/tailpager/tailpager/internal/child"
	"github.com/tailpager/tailpager/internal/config"
	"github.com/tailpager/tailpager/internal/controller"
	"github.com/tailpager/tailpager/internal/store"
	"github.com/tailpager/tailpager/internal/view"
)

var version = "dev"

func init() {
	// Redirect log output away from stderr to avoid mangling terminal
	// display. If FILTER_LOG_FILE is set, log to that file; otherwise
	// discard.
	if path := os.Getenv("FILTER_LOG_FILE"); path != "" {
		logFile, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err == nil {
			log.SetOutput(logFile)
			log.SetFlags(log.Ltime | log.Lmicroseconds)
		} else {
			log.SetOutput(io.Discard)
		}
	} else {
		log.SetOutput(io.Discard)
	}
}

func main() {
	cfg, err := config.ParseArgs(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "tailpager: %v\n", err)
		os.Exit(2)
	}
	if cfg.Version {
		fmt.Printf("tailpager %s\n", version)
		return
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "tailpager: stdin and stdout must be a terminal")
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "tailpager: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	st := store.New(cfg.PageCapacity, cfg.PageCount)
	vs := view.New()
	ctrl := controller.New(st, vs)

	// Spawn at a nominal size; the runner resizes the pty to the real
	// screen dimensions as soon as the screen reports them.
	sup, err := child.Spawn(cfg.ChildCommand, cfg.ChildArgs, 80, 24)
	if err != nil {
		return err
	}
	defer sup.Stop()
	ctrl.WriteChild = sup.WriteByte

	log.Printf("main: wrapping %q args=%v pages=%d pageSize=%d",
		cfg.ChildCommand, cfg.ChildArgs, cfg.PageCount, cfg.PageCapacity)

	return app.New(ctrl, sup).Run()
}
