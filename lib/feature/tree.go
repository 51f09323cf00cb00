//
// Copyright (C) 2015-2022 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package feature

import (
	"sort"

	"github.com/biogo/store/interval"

	"git.sr.ht/~vejnar/Sashimi/lib/region"
)

// RegionFeature is a transcript clipped to a region, with the exons inside the
// region and the introns joining them.
type RegionFeature struct {
	Name    string
	Strand  int8
	Start   int
	End     int
	Exons   [][]int
	Introns [][]int
}

// BuildFeatTrees builds one tree of transcripts per chromosome: each transcript span is added to the tree.
func BuildFeatTrees(features []Feature) (trees map[string]*interval.IntTree, err error) {
	trees = make(map[string]*interval.IntTree)
	for i := range features {
		feat := &features[i]
		if len(feat.Coords) == 0 && len(feat.Span) != 2 {
			continue
		}
		// New tree for unseen chromosome
		if _, ok := trees[feat.Chrom]; !ok {
			trees[feat.Chrom] = &interval.IntTree{}
		}
		// Inserting interval
		iv := IntInterval{Start: feat.Start(), End: feat.End(), UID: uintptr(i), Feature: feat}
		if iv.Start >= iv.End {
			continue
		}
		err = trees[feat.Chrom].Insert(iv, true)
		if err != nil {
			return
		}
	}
	for k := range trees {
		trees[k].AdjustRanges()
	}
	return
}

// Query returns the transcripts overlapping r clipped to r, sorted by start then name.
func Query(trees map[string]*interval.IntTree, r region.Region) (feats []RegionFeature) {
	tree, ok := trees[r.Chrom]
	if !ok {
		return
	}
	for _, hit := range tree.Get(IntInterval{Start: r.Start, End: r.End}) {
		feat := hit.(IntInterval).Feature
		rf := RegionFeature{Name: feat.Name, Strand: feat.Strand, Start: max(r.Start, feat.Start()), End: min(r.End, feat.End())}
		// Exons inside the region
		for _, c := range feat.Coords {
			if c[1] > r.Start && c[0] < r.End {
				rf.Exons = append(rf.Exons, []int{max(c[0], r.Start), min(c[1], r.End)})
			}
		}
		sort.Slice(rf.Exons, func(a, b int) bool { return rf.Exons[a][0] < rf.Exons[b][0] })
		// Introns between transcript bounds and exons
		intronStart := rf.Start
		for _, ex := range rf.Exons {
			if ex[0] > intronStart {
				rf.Introns = append(rf.Introns, []int{intronStart, ex[0]})
			}
			intronStart = max(intronStart, ex[1])
		}
		if rf.End > intronStart {
			rf.Introns = append(rf.Introns, []int{intronStart, rf.End})
		}
		feats = append(feats, rf)
	}
	sort.Slice(feats, func(a, b int) bool {
		if feats[a].Start != feats[b].Start {
			return feats[a].Start < feats[b].Start
		}
		return feats[a].Name < feats[b].Name
	})
	return
}
