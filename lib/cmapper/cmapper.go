//
// Copyright (C) 2015-2022 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.
//

package cmapper

import (
	"math"
	"sort"

	"git.sr.ht/~vejnar/Sashimi/lib/coverage"
	"git.sr.ht/~vejnar/Sashimi/lib/intron"
)

// ShrinkExponent sets the display width L^ShrinkExponent of an interval of length L.
const ShrinkExponent = 0.7

// Point is one position of a density track in display coordinates.
type Point struct {
	X float64
	Y int
}

// DisplayJunction is a junction with display donor and acceptor.
type DisplayJunction struct {
	Donor            float64
	Acceptor         float64
	DonorCoverage    int
	AcceptorCoverage int
	Count            int
}

// CoordMapper translates genomic coordinates to compressed display coordinates.
// A nil CoordMapper, or one without interval, is the identity.
type CoordMapper struct {
	Introns []intron.Interval
	// Shifts[k] is the shift downstream of Introns[k]
	Shifts []float64
	seen   map[coverage.JunctionKey][2]float64
}

// Shift returns the shift contributed by an interval of length l.
func Shift(l int) float64 {
	return float64(l) - math.Pow(float64(l), ShrinkExponent)
}

// New returns a CoordMapper compressing the sorted non-overlapping introns.
func New(introns []intron.Interval) *CoordMapper {
	cm := CoordMapper{Introns: make([]intron.Interval, len(introns)), seen: make(map[coverage.JunctionKey][2]float64)}
	copy(cm.Introns, introns)
	sort.Sort(intron.ByCoords(cm.Introns))
	var shift float64
	for _, iv := range cm.Introns {
		shift += Shift(iv.Len())
		cm.Shifts = append(cm.Shifts, shift)
	}
	return &cm
}

// Genome2Display translates a genomic coordinate to the display system. Positions
// strictly inside an interval are spread linearly over its compressed width.
func (cm *CoordMapper) Genome2Display(pos int) float64 {
	if cm == nil || len(cm.Introns) == 0 {
		return float64(pos)
	}
	// First interval ending after pos
	k := sort.Search(len(cm.Introns), func(i int) bool { return cm.Introns[i].B > pos })
	var before float64
	if k > 0 {
		before = cm.Shifts[k-1]
	}
	if k < len(cm.Introns) && cm.Introns[k].A < pos {
		iv := cm.Introns[k]
		l := float64(iv.Len())
		return float64(iv.A) - before + float64(pos-iv.A)*math.Pow(l, ShrinkExponent)/l
	}
	return float64(pos) - before
}

// Inside reports whether pos lies strictly inside one of the intervals.
func (cm *CoordMapper) Inside(pos int) bool {
	if cm == nil {
		return false
	}
	k := sort.Search(len(cm.Introns), func(i int) bool { return cm.Introns[i].B > pos })
	return k < len(cm.Introns) && cm.Introns[k].A < pos
}

// ShrinkDensity returns the coverage (index i at genomic position start+i) in display
// coordinates. Positions strictly inside an interval are absorbed.
func (cm *CoordMapper) ShrinkDensity(start int, cov []int) []Point {
	points := make([]Point, 0, len(cov))
	for i, y := range cov {
		pos := start + i
		if cm.Inside(pos) {
			continue
		}
		points = append(points, Point{X: cm.Genome2Display(pos), Y: y})
	}
	return points
}

// ShrinkJunctions returns the junctions in display coordinates. A donor/acceptor
// pair already translated, by this call or a previous one, is reused as is.
func (cm *CoordMapper) ShrinkJunctions(junctions []coverage.Junction) []DisplayJunction {
	djs := make([]DisplayJunction, len(junctions))
	for i, j := range junctions {
		key := coverage.JunctionKey{Donor: j.Donor, Acceptor: j.Acceptor}
		coords, ok := cm.lookup(key)
		if !ok {
			coords = [2]float64{cm.Genome2Display(j.Donor), cm.Genome2Display(j.Acceptor)}
			cm.store(key, coords)
		}
		djs[i] = DisplayJunction{
			Donor:            coords[0],
			Acceptor:         coords[1],
			DonorCoverage:    j.DonorCoverage,
			AcceptorCoverage: j.AcceptorCoverage,
			Count:            j.Count,
		}
	}
	return djs
}

func (cm *CoordMapper) lookup(key coverage.JunctionKey) ([2]float64, bool) {
	if cm == nil || cm.seen == nil {
		return [2]float64{}, false
	}
	c, ok := cm.seen[key]
	return c, ok
}

func (cm *CoordMapper) store(key coverage.JunctionKey, coords [2]float64) {
	if cm == nil {
		return
	}
	if cm.seen == nil {
		cm.seen = make(map[coverage.JunctionKey][2]float64)
	}
	cm.seen[key] = coords
}

// Seen returns the number of distinct donor/acceptor pairs translated so far.
func (cm *CoordMapper) Seen() int {
	if cm == nil {
		return 0
	}
	return len(cm.seen)
}

// Length returns the display length of [start,end).
func (cm *CoordMapper) Length(start, end int) float64 {
	return cm.Genome2Display(end) - cm.Genome2Display(start)
}
