//
// Copyright (C) 2022 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package intron

import (
	"fmt"
	"sort"

	"github.com/pkg/errors"

	"git.sr.ht/~vejnar/Sashimi/lib/coverage"
)

var ErrEmptyMergeInput = errors.New("no intron to merge")

// Interval is a genomic span [A,B) eligible for compression.
type Interval struct {
	A, B int
}

// Len returns the length of interval
func (iv Interval) Len() int {
	return iv.B - iv.A
}

func (iv Interval) String() string {
	return fmt.Sprintf("[%d,%d)", iv.A, iv.B)
}

// Sorting functions: By A then B
type ByCoords []Interval

func (iv ByCoords) Len() int      { return len(iv) }
func (iv ByCoords) Swap(i, j int) { iv[i], iv[j] = iv[j], iv[i] }
func (iv ByCoords) Less(i, j int) bool {
	if iv[i].A != iv[j].A {
		return iv[i].A < iv[j].A
	}
	return iv[i].B < iv[j].B
}

// FromJunctions returns the donor/acceptor spans of junctions of all samples.
func FromJunctions(junctions ...[]coverage.Junction) (intervals []Interval) {
	for _, js := range junctions {
		for _, j := range js {
			intervals = append(intervals, Interval{A: j.Donor, B: j.Acceptor})
		}
	}
	return
}

// Merge intersects overlapping intervals: a run of intervals sharing more than
// one point is replaced by the span common to all of them. Output is sorted
// and non-overlapping.
func Merge(intervals []Interval) ([]Interval, error) {
	if len(intervals) == 0 {
		return nil, ErrEmptyMergeInput
	}
	sorted := make([]Interval, len(intervals))
	copy(sorted, intervals)
	sort.Sort(ByCoords(sorted))

	var merged []Interval
	cur := sorted[0]
	for _, next := range sorted[1:] {
		if cur.B > next.A {
			cur = Interval{A: max(cur.A, next.A), B: min(cur.B, next.B)}
		} else {
			merged = append(merged, cur)
			cur = next
		}
	}
	merged = append(merged, cur)
	return merged, nil
}

func min(a, b int) int {
	if a > b {
		return b
	}
	return a
}

func max(a, b int) int {
	if a < b {
		return b
	}
	return a
}
