// Copyright © 2025 Tailpager contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/matchindex/matchindex.go
// Summary: Sorted set of GlobalIndex values satisfying the active search
// query, maintained incrementally as lines are appended or evicted.

package matchindex

import (
	"sort"

	"github.com/tailpager/tailpager/internal/match"
	"github.com/tailpager/tailpager/internal/store"
)

// MatchIndex is the ordered, deduplicated set of GlobalIndex values whose
// line currently satisfies the active query.
type MatchIndex struct {
	query   match.Matcher
	indices []store.GlobalIndex
}

// New returns an empty MatchIndex with no active query.
func New() *MatchIndex {
	return &MatchIndex{}
}

// Query returns the active query, or nil if none is set.
func (m *MatchIndex) Query() match.Matcher { return m.query }

// Rebuild scans every resident line in snap and sets the index to all
// matches in ascending GlobalIndex order. Passing a nil query clears the
// index.
func (m *MatchIndex) Rebuild(query match.Matcher, snap *store.Snapshot) {
	m.query = query
	m.indices = m.indices[:0]
	if query == nil || snap == nil {
		return
	}
	for i := snap.FirstIndex(); i < snap.LinesCount(); i++ {
		line, ok := snap.Get(i)
		if !ok {
			continue
		}
		if match.Matches(query, line) {
			m.indices = append(m.indices, i)
		}
	}
}

// OnAppend records a freshly appended line if the active query matches it.
// The new index is always the maximum resident index, so it is appended at
// the tail rather than inserted.
func (m *MatchIndex) OnAppend(i store.GlobalIndex, line []byte) {
	if m.query == nil {
		return
	}
	if match.Matches(m.query, line) {
		m.indices = append(m.indices, i)
	}
}

// OnEvict drops every entry below newFirstIndex, keeping the set contained
// in the resident range.
func (m *MatchIndex) OnEvict(newFirstIndex store.GlobalIndex) {
	if len(m.indices) == 0 {
		return
	}
	cut := sort.Search(len(m.indices), func(i int) bool {
		return m.indices[i] >= newFirstIndex
	})
	if cut > 0 {
		m.indices = m.indices[cut:]
	}
}

// Len returns the number of entries in the set.
func (m *MatchIndex) Len() int { return len(m.indices) }

// Count is the total number of matches; the status bar shows its match
// rank only while Count is positive.
func (m *MatchIndex) Count() int { return len(m.indices) }

// At returns the i-th (0-based) entry.
func (m *MatchIndex) At(i int) store.GlobalIndex { return m.indices[i] }

// Empty reports whether the set holds no entries.
func (m *MatchIndex) Empty() bool { return len(m.indices) == 0 }

// RankAt returns the 1-based position of idx in the set and the total
// count. If idx is not itself a match, rank is the count of matches <= idx,
// or 1 if there are none at or below idx.
func (m *MatchIndex) RankAt(idx store.GlobalIndex) (rank, total int) {
	total = len(m.indices)
	if total == 0 {
		return 0, 0
	}
	// count of entries <= idx
	cnt := sort.Search(len(m.indices), func(i int) bool {
		return m.indices[i] > idx
	})
	if cnt == 0 {
		return 1, total
	}
	return cnt, total
}

// NextAfter returns the smallest entry strictly greater than i, or
// ok=false if none exists.
func (m *MatchIndex) NextAfter(i store.GlobalIndex) (store.GlobalIndex, bool) {
	pos := sort.Search(len(m.indices), func(j int) bool {
		return m.indices[j] > i
	})
	if pos >= len(m.indices) {
		return 0, false
	}
	return m.indices[pos], true
}

// PrevBefore returns the largest entry strictly less than i, or ok=false
// if none exists.
func (m *MatchIndex) PrevBefore(i store.GlobalIndex) (store.GlobalIndex, bool) {
	pos := sort.Search(len(m.indices), func(j int) bool {
		return m.indices[j] >= i
	})
	if pos == 0 {
		return 0, false
	}
	return m.indices[pos-1], true
}

// LastAtOrBefore returns the largest entry <= limit, or ok=false if none
// exists. Used to locate "the last match <= lines_count" at search-execute
// time.
func (m *MatchIndex) LastAtOrBefore(limit store.GlobalIndex) (store.GlobalIndex, bool) {
	pos := sort.Search(len(m.indices), func(j int) bool {
		return m.indices[j] > limit
	})
	if pos == 0 {
		return 0, false
	}
	return m.indices[pos-1], true
}
