// Copyright © 2025 Tailpager contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/match/matcher.go
// Summary: The Matcher protocol: a pure predicate over a line returning an
// optional byte-range match. Variants: literal substring, regex, negation,
// and Any/All composition.

package match

import (
	"bytes"
	"regexp"
)

// Range is a half-open byte range [Start, End) into a line.
type Range struct {
	Start, End int
}

// Matcher is a pure, side-effect-free predicate over a line. IsMatch returns
// the first byte range satisfying the predicate, or ok=false if none.
type Matcher interface {
	IsMatch(line []byte) (r Range, ok bool)
}

// Substring matches the first case-sensitive byte-level occurrence of a
// literal string.
type Substring struct {
	S string
}

// NewSubstring builds a Substring matcher. A wrapper for parity with
// NewRegex, since construction here cannot fail.
func NewSubstring(s string) Substring { return Substring{S: s} }

func (m Substring) IsMatch(line []byte) (Range, bool) {
	if m.S == "" {
		return Range{}, false
	}
	idx := bytes.Index(line, []byte(m.S))
	if idx < 0 {
		return Range{}, false
	}
	return Range{Start: idx, End: idx + len(m.S)}, true
}

// Regex matches the first occurrence of a compiled regular expression, in
// scanning order. Semantics are byte-level, case-sensitive, single-line.
type Regex struct {
	Source string
	re     *regexp.Regexp
}

// NewRegex compiles source and returns a Regex matcher, or an error if the
// pattern is invalid. Compilation happens once, at command-confirm time, not
// on every IsMatch call.
func NewRegex(source string) (Regex, error) {
	re, err := regexp.Compile(source)
	if err != nil {
		return Regex{}, err
	}
	return Regex{Source: source, re: re}, nil
}

func (m Regex) IsMatch(line []byte) (Range, bool) {
	if m.re == nil {
		return Range{}, false
	}
	loc := m.re.FindIndex(line)
	if loc == nil {
		return Range{}, false
	}
	return Range{Start: loc[0], End: loc[1]}, true
}

// Ignore wraps inner and inverts its sense: a line passes when inner does
// not match it. The ignore command installs it as an inverted search query.
type Ignore struct {
	Inner Matcher
}

func (m Ignore) IsMatch(line []byte) (Range, bool) {
	r, ok := m.Inner.IsMatch(line)
	if ok {
		return Range{}, false
	}
	return r, true
}

// Matches reports whether a line satisfies the filter's pass/fail sense,
// which for Ignore is the negation of Inner.IsMatch. Filter/search callers
// that only need a boolean should prefer Matches over IsMatch so Ignore's
// "line not matching inner" semantics apply uniformly across variants.
func Matches(m Matcher, line []byte) bool {
	_, ok := m.IsMatch(line)
	return ok
}

// Any returns the first variant's match among its members, or absent if none
// match.
type Any []Matcher

func (m Any) IsMatch(line []byte) (Range, bool) {
	for _, v := range m {
		if r, ok := v.IsMatch(line); ok {
			return r, true
		}
	}
	return Range{}, false
}

// All returns the last variant's match, or absent if any member misses.
type All []Matcher

func (m All) IsMatch(line []byte) (Range, bool) {
	var last Range
	matched := false
	for _, v := range m {
		r, ok := v.IsMatch(line)
		if !ok {
			return Range{}, false
		}
		last = r
		matched = true
	}
	if !matched {
		return Range{}, false
	}
	return last, true
}
