//
// Copyright (C) 2022 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.
//

package cmapper

import (
	"git.sr.ht/~vejnar/Sashimi/lib/feature"
)

// Segment is a [Start,End) span in display coordinates.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// DisplayFeature is a transcript in display coordinates.
type DisplayFeature struct {
	Name    string    `json:"name"`
	Strand  int8      `json:"strand"`
	Exons   []Segment `json:"exons"`
	Introns []Segment `json:"introns"`
}

// AnnotationShrinker translates annotation into display coordinates.
type AnnotationShrinker interface {
	ShrinkAnnotation(feats []feature.RegionFeature) []DisplayFeature
}

// PassThrough keeps annotation in genomic coordinates.
type PassThrough struct{}

func (PassThrough) ShrinkAnnotation(feats []feature.RegionFeature) []DisplayFeature {
	return shrinkAnnotation(nil, feats)
}

// ShrinkAnnotation translates exon and intron bounds with Genome2Display.
func (cm *CoordMapper) ShrinkAnnotation(feats []feature.RegionFeature) []DisplayFeature {
	return shrinkAnnotation(cm, feats)
}

func shrinkAnnotation(cm *CoordMapper, feats []feature.RegionFeature) []DisplayFeature {
	dfs := make([]DisplayFeature, len(feats))
	for i, f := range feats {
		dfs[i] = DisplayFeature{Name: f.Name, Strand: f.Strand, Exons: segments(cm, f.Exons), Introns: segments(cm, f.Introns)}
	}
	return dfs
}

func segments(cm *CoordMapper, coords [][]int) []Segment {
	segs := make([]Segment, len(coords))
	for i, c := range coords {
		segs[i] = Segment{Start: cm.Genome2Display(c[0]), End: cm.Genome2Display(c[1])}
	}
	return segs
}
