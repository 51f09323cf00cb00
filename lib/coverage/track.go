//
// Copyright (C) 2022 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package coverage

import (
	"sort"

	"github.com/biogo/hts/sam"
	"github.com/pkg/errors"

	"git.sr.ht/~vejnar/Sashimi/lib/region"
	"git.sr.ht/~vejnar/Sashimi/lib/strand"
)

var ErrUnsupportedCigarOperator = errors.New("unsupported CIGAR operator")

// JunctionKey is a donor/acceptor pair in genomic coordinates.
type JunctionKey struct {
	Donor, Acceptor int
}

// Junction is a junction retained after thresholding, with the coverage
// flanking each side.
type Junction struct {
	Donor            int
	Acceptor         int
	DonorCoverage    int
	AcceptorCoverage int
	Count            int
}

// Track holds the coverage and junction counts of one sample on one strand.
type Track struct {
	Region    region.Region
	Strand    strand.Strand
	Coverage  []int
	Junctions map[JunctionKey]int
}

func NewTrack(r region.Region, s strand.Strand) *Track {
	return &Track{Region: r, Strand: s, Coverage: make([]int, r.Len()), Junctions: make(map[JunctionKey]int)}
}

// CheckCigar returns an error if the cigar has an operator other than M, I, D, N or S.
func CheckCigar(cigar sam.Cigar) error {
	for _, co := range cigar {
		switch co.Type() {
		case sam.CigarMatch, sam.CigarInsertion, sam.CigarDeletion, sam.CigarSkipped, sam.CigarSoftClipped:
		default:
			return errors.Wrapf(ErrUnsupportedCigarOperator, "%s in %s", co.Type(), cigar)
		}
	}
	return nil
}

// Project adds the aligned blocks of r to the coverage and its gaps to the junctions.
// A record with an unsupported operator is rejected as a whole.
func (t *Track) Project(r *sam.Record) error {
	if err := CheckCigar(r.Cigar); err != nil {
		return err
	}
	start, end := t.Region.Start, t.Region.End
	pos := r.Pos
	for _, co := range r.Cigar {
		length := co.Len()
		switch co.Type() {
		case sam.CigarMatch:
			for i := max(pos, start); i < min(pos+length, end); i++ {
				t.Coverage[i-start]++
			}
		case sam.CigarInsertion, sam.CigarSoftClipped:
			continue
		case sam.CigarSkipped:
			don, acc := pos, pos+length
			if don > start && acc < end {
				t.Junctions[JunctionKey{Donor: don, Acceptor: acc}]++
			}
		}
		pos += length
	}
	return nil
}

// JunctionsAbove returns the junctions supported by at least minCoverage reads, sorted by donor then acceptor.
func (t *Track) JunctionsAbove(minCoverage int) []Junction {
	if minCoverage < 1 {
		minCoverage = 1
	}
	var junctions []Junction
	for k, n := range t.Junctions {
		if n < minCoverage {
			continue
		}
		// Acceptor flank falls back to the last position of the region
		flank := k.Acceptor + 1
		if !t.Region.Contains(flank) {
			flank = t.Region.End - 1
		}
		junctions = append(junctions, Junction{
			Donor:            k.Donor,
			Acceptor:         k.Acceptor,
			DonorCoverage:    t.Coverage[k.Donor-t.Region.Start-1],
			AcceptorCoverage: t.Coverage[flank-t.Region.Start],
			Count:            n,
		})
	}
	sort.Sort(ByCoords(junctions))
	return junctions
}

// Sorting functions: By donor then acceptor
type ByCoords []Junction

func (j ByCoords) Len() int      { return len(j) }
func (j ByCoords) Swap(a, b int) { j[a], j[b] = j[b], j[a] }
func (j ByCoords) Less(a, b int) bool {
	if j[a].Donor != j[b].Donor {
		return j[a].Donor < j[b].Donor
	}
	return j[a].Acceptor < j[b].Acceptor
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
