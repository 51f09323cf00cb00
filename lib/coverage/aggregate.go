//
// Copyright (C) 2022 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package coverage

import (
	"github.com/biogo/hts/sam"
	log "github.com/sirupsen/logrus"
	"gopkg.in/fatih/set.v0"

	"git.sr.ht/~vejnar/Sashimi/lib/region"
	"git.sr.ht/~vejnar/Sashimi/lib/strand"
)

// Config holds the parameters of one aggregation pass.
type Config struct {
	Region              region.Region
	Mode                strand.Mode
	MinJunctionCoverage int
	MinMappingQuality   byte
}

// Stats counts the records seen by Aggregate.
type Stats struct {
	Reads            int `json:"reads"`
	Used             int `json:"used"`
	Unmapped         int `json:"unmapped"`
	LowQuality       int `json:"low_mapping_quality"`
	UnresolvedStrand int `json:"unresolved_strand"`
	UnsupportedCigar int `json:"unsupported_cigar"`
	Fragments        int `json:"fragments"`
}

// Sample is the aggregated coverage of one sample.
type Sample struct {
	ID     string
	Config Config
	Tracks map[strand.Strand]*Track
	Stats  Stats
}

// Aggregate projects every accepted record into the track of its strand.
// Tracks are freshly allocated on each call.
func Aggregate(id string, cfg Config, records []*sam.Record) *Sample {
	s := &Sample{ID: id, Config: cfg, Tracks: make(map[strand.Strand]*Track)}
	for _, st := range cfg.Mode.Strands() {
		s.Tracks[st] = NewTrack(cfg.Region, st)
	}
	fragments := set.New(set.NonThreadSafe)
	for _, r := range records {
		s.Stats.Reads++
		if r.Flags&sam.Unmapped != 0 {
			s.Stats.Unmapped++
			continue
		}
		if r.MapQ < cfg.MinMappingQuality {
			s.Stats.LowQuality++
			continue
		}
		st, ok := strand.Classify(cfg.Mode, r.Flags)
		if !ok {
			s.Stats.UnresolvedStrand++
			continue
		}
		if err := s.Tracks[st].Project(r); err != nil {
			log.WithField("sample", id).Debugf("Skipping %s: %v", r.Name, err)
			s.Stats.UnsupportedCigar++
			continue
		}
		s.Stats.Used++
		if r.Name != "" {
			fragments.Add(r.Name)
		}
	}
	s.Stats.Fragments = fragments.Size()
	return s
}

// Junctions returns the thresholded junctions of strand st.
func (s *Sample) Junctions(st strand.Strand) []Junction {
	t, ok := s.Tracks[st]
	if !ok {
		return nil
	}
	return t.JunctionsAbove(s.Config.MinJunctionCoverage)
}
