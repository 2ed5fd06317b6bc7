// Copyright © 2025 Tailpager contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/config/config.go
// Summary: Command-line configuration: flag parsing and the SIZE suffix
// grammar (B/KB/MB/GB, 1024-based) for --page-size and --max-buffer-size.
// Usage: ParseArgs takes an argument vector so tests never touch the
// global flag.CommandLine.

package config

import (
	"flag"
	"fmt"
	"strconv"
	"strings"
)

// DefaultPageCapacity and DefaultPageCount mirror internal/store's
// defaults; Config always holds resolved concrete values so downstream
// code never re-applies a fallback.
const (
	DefaultPageCapacity = 64 * 1024
	DefaultPageCount    = 64
	maxBufferPageSize   = 64 * 1024
)

// Config is the fully-resolved result of parsing the command line.
type Config struct {
	PageCapacity int
	PageCount    int
	ChildCommand string
	ChildArgs    []string
	Version      bool
}

// ParseArgs parses argv (excluding argv[0]) into a Config. Child arguments
// follow a literal "--" separator and may themselves carry leading
// hyphens; at least one child argument (the command) is required unless
// --version is given.
func ParseArgs(argv []string) (Config, error) {
	fs := flag.NewFlagSet("tailpager", flag.ContinueOnError)
	pagesCount := fs.Int("pages-count", DefaultPageCount, "number of resident pages to retain")
	pageSize := fs.String("page-size", "", "byte capacity per page, e.g. 64KB")
	maxBufferSize := fs.String("max-buffer-size", "", "total history budget; divided into 64KiB pages")
	version := fs.Bool("version", false, "print version and exit")

	split := splitChildArgs(argv)
	if err := fs.Parse(split.flags); err != nil {
		return Config{}, err
	}

	cfg := Config{
		PageCapacity: DefaultPageCapacity,
		PageCount:    *pagesCount,
		Version:      *version,
	}

	if *pageSize != "" {
		n, err := ParseSize(*pageSize)
		if err != nil {
			return Config{}, fmt.Errorf("--page-size: %w", err)
		}
		cfg.PageCapacity = n
	}

	if *maxBufferSize != "" {
		n, err := ParseSize(*maxBufferSize)
		if err != nil {
			return Config{}, fmt.Errorf("--max-buffer-size: %w", err)
		}
		cfg.PageCapacity = maxBufferPageSize
		cfg.PageCount = n / maxBufferPageSize
		if cfg.PageCount < 1 {
			cfg.PageCount = 1
		}
	}

	if cfg.Version {
		return cfg, nil
	}

	if len(split.child) == 0 {
		return Config{}, fmt.Errorf("missing child command: usage: tailpager [flags] -- <child-cmd> [args...]")
	}
	cfg.ChildCommand = split.child[0]
	cfg.ChildArgs = split.child[1:]
	return cfg, nil
}

type splitArgs struct {
	flags []string
	child []string
}

// splitChildArgs finds the literal "--" separator and returns everything
// before it as flag.FlagSet input and everything after as the child's
// argv, so child arguments with leading hyphens are never mistaken for
// this program's own flags.
func splitChildArgs(argv []string) splitArgs {
	for i, a := range argv {
		if a == "--" {
			return splitArgs{flags: argv[:i], child: argv[i+1:]}
		}
	}
	return splitArgs{flags: argv}
}

// ParseSize parses a SIZE string with an optional 1024-based suffix
// (B, KB, MB, GB; case-insensitive). A bare number is bytes.
func ParseSize(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty size")
	}
	upper := strings.ToUpper(s)
	suffixes := []struct {
		suffix string
		mult   int64
	}{
		{"GB", 1024 * 1024 * 1024},
		{"MB", 1024 * 1024},
		{"KB", 1024},
		{"B", 1},
	}
	for _, sfx := range suffixes {
		if strings.HasSuffix(upper, sfx.suffix) {
			numPart := strings.TrimSpace(s[:len(s)-len(sfx.suffix)])
			n, err := strconv.ParseFloat(numPart, 64)
			if err != nil {
				return 0, fmt.Errorf("invalid size %q: %w", s, err)
			}
			if n < 0 {
				return 0, fmt.Errorf("invalid size %q: negative", s)
			}
			return int(n * float64(sfx.mult)), nil
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("invalid size %q: negative", s)
	}
	return n, nil
}
