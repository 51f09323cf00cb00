//
// Copyright (C) 2022 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package track

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"git.sr.ht/~vejnar/Sashimi/lib/cmapper"
	"git.sr.ht/~vejnar/Sashimi/lib/coverage"
	"git.sr.ht/~vejnar/Sashimi/lib/feature"
	"git.sr.ht/~vejnar/Sashimi/lib/intron"
	"git.sr.ht/~vejnar/Sashimi/lib/sample"
	"git.sr.ht/~vejnar/Sashimi/lib/strand"
)

// Density is a coverage track, X in display coordinates.
type Density struct {
	X []float64 `json:"x"`
	Y []int     `json:"y"`
}

// Arc is a junction as drawn: from (X,Y) to (XEnd,YEnd).
type Arc struct {
	X     float64 `json:"x"`
	XEnd  float64 `json:"xend"`
	Y     int     `json:"y"`
	YEnd  int     `json:"yend"`
	Count int     `json:"count"`
}

// SampleTrack is the output of one sample on one strand.
type SampleTrack struct {
	ID         string          `json:"id"`
	Overlay    string          `json:"overlay,omitempty"`
	Color      string          `json:"color,omitempty"`
	ColorGroup string          `json:"color_group"`
	Density    Density         `json:"density"`
	Junctions  []Arc           `json:"junctions"`
	Raw        *coverage.Track `json:"-"`
}

// PlotParams are forwarded to the plotting engine.
type PlotParams struct {
	Height   int `json:"height"`
	Width    int `json:"width"`
	BaseSize int `json:"base_size"`
}

// StrandTracks is everything drawn for one strand.
type StrandTracks struct {
	Region     string                   `json:"region"`
	Strand     string                   `json:"strand"`
	Compressed bool                     `json:"compressed"`
	Introns    []intron.Interval        `json:"merged_introns"`
	Samples    []SampleTrack            `json:"samples"`
	Overlays   map[string][]string      `json:"overlays,omitempty"`
	Annotation []cmapper.DisplayFeature `json:"annotation,omitempty"`
	Plot       PlotParams               `json:"plot"`
}

// Options drives Build.
type Options struct {
	Shrink           bool
	ShrinkAnnotation bool
	Annotation       []feature.RegionFeature
	Plot             PlotParams
}

// Build assembles the tracks of strand st. samples and metas are parallel.
// When shrinking, introns are merged across all samples; without any junction the
// coordinates are left uncompressed.
func Build(st strand.Strand, samples []*coverage.Sample, metas []sample.Sample, opts Options) (StrandTracks, error) {
	if len(samples) != len(metas) {
		return StrandTracks{}, errors.Errorf("%d samples for %d descriptions", len(samples), len(metas))
	}
	out := StrandTracks{Strand: st.String(), Plot: opts.Plot}
	junctions := make([][]coverage.Junction, len(samples))
	for i, s := range samples {
		junctions[i] = s.Junctions(st)
		out.Region = s.Config.Region.String()
	}

	var cm *cmapper.CoordMapper
	if opts.Shrink {
		merged, err := intron.Merge(intron.FromJunctions(junctions...))
		if errors.Is(err, intron.ErrEmptyMergeInput) {
			log.WithField("strand", st.String()).Info("No junction to compress, keeping genomic coordinates")
		} else if err != nil {
			return out, err
		} else {
			cm = cmapper.New(merged)
			out.Compressed = true
			out.Introns = merged
		}
	}

	for i, s := range samples {
		t, ok := s.Tracks[st]
		if !ok {
			return out, errors.Errorf("no %s track for sample %s", st, s.ID)
		}
		stk := SampleTrack{
			ID:         metas[i].ID,
			Overlay:    metas[i].Overlay,
			Color:      metas[i].Color,
			ColorGroup: metas[i].ColorGroup(),
			Raw:        t,
		}
		for _, p := range cm.ShrinkDensity(t.Region.Start, t.Coverage) {
			stk.Density.X = append(stk.Density.X, p.X)
			stk.Density.Y = append(stk.Density.Y, p.Y)
		}
		for _, dj := range cm.ShrinkJunctions(junctions[i]) {
			stk.Junctions = append(stk.Junctions, Arc{X: dj.Donor, XEnd: dj.Acceptor, Y: dj.DonorCoverage, YEnd: dj.AcceptorCoverage, Count: dj.Count})
		}
		out.Samples = append(out.Samples, stk)
	}

	if levels, groups := sample.Groups(metas); len(levels) > 0 {
		out.Overlays = groups
	}

	if len(opts.Annotation) > 0 {
		var shrinker cmapper.AnnotationShrinker = cmapper.PassThrough{}
		if opts.ShrinkAnnotation && cm != nil {
			shrinker = cm
		}
		out.Annotation = shrinker.ShrinkAnnotation(opts.Annotation)
	}
	return out, nil
}
