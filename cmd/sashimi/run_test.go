//
// Copyright (C) 2022 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/biogo/hts/sam"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.sr.ht/~vejnar/Sashimi/lib/coverage"
	"git.sr.ht/~vejnar/Sashimi/lib/esam"
	"git.sr.ht/~vejnar/Sashimi/lib/region"
	"git.sr.ht/~vejnar/Sashimi/lib/sample"
	"git.sr.ht/~vejnar/Sashimi/lib/strand"
	"git.sr.ht/~vejnar/Sashimi/lib/track"
)

func newRecord(t *testing.T, ref *sam.Reference, name string, flags sam.Flags, pos int, cigar string) *sam.Record {
	c, err := sam.ParseCigar([]byte(cigar))
	require.NoError(t, err)
	return &sam.Record{Name: name, Ref: ref, Flags: flags, Pos: pos, MapQ: 60, Cigar: c}
}

func testSources(t *testing.T) ([]sample.Sample, []esam.Source) {
	ref, err := sam.NewReference("chr1", "", "", 1000, nil, nil)
	require.NoError(t, err)
	wt := esam.RecordsSource{
		newRecord(t, ref, "r1", 0, 90, "10M"),
		newRecord(t, ref, "r2", 0, 100, "10M100N10M"),
		newRecord(t, ref, "r3", sam.Reverse, 100, "10M100N10M"),
		newRecord(t, ref, "r4", sam.Unmapped, 100, "20M"),
	}
	ko := esam.RecordsSource{
		newRecord(t, ref, "k1", 0, 105, "5M105N10M"),
	}
	samples := []sample.Sample{{ID: "wt", Overlay: "WT"}, {ID: "ko", Overlay: "KO"}}
	return samples, []esam.Source{wt, ko}
}

func TestLogLevel(t *testing.T) {
	assert.Equal(t, log.WarnLevel, logLevel(0))
	assert.Equal(t, log.InfoLevel, logLevel(1))
	assert.Equal(t, log.DebugLevel, logLevel(3))
}

func TestAggregateSamples(t *testing.T) {
	samples, sources := testSources(t)
	cfg := coverage.Config{Region: region.Region{Chrom: "chr1", Start: 0, End: 1000}, Mode: strand.ModeSense, MinJunctionCoverage: 1}
	results, err := AggregateSamples(context.Background(), cfg, samples, sources, 4, time.Now())
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "wt", results[0].ID)
	assert.Equal(t, 3, results[0].Stats.Used)
	assert.Equal(t, 1, results[0].Stats.Unmapped)
	assert.Len(t, results[0].Junctions(strand.Plus), 1)
	assert.Len(t, results[0].Junctions(strand.Minus), 1)
	assert.Equal(t, 1, results[1].Stats.Used)

	_, err = AggregateSamples(context.Background(), cfg, samples, sources[:1], 1, time.Now())
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = AggregateSamples(ctx, cfg, samples, sources, 1, time.Now())
	assert.Error(t, err)
}

func TestRun(t *testing.T) {
	samples, sources := testSources(t)
	dir := t.TempDir()
	opts := runOptions{
		Config:        coverage.Config{Region: region.Region{Chrom: "chr1", Start: 0, End: 1000}, Mode: strand.ModeNone, MinJunctionCoverage: 1},
		Samples:       samples,
		Shrink:        true,
		Plot:          track.PlotParams{Height: 6, Width: 10, BaseSize: 14},
		OutputPrefix:  filepath.Join(dir, "out"),
		OutputFormats: []string{"json", "bedgraph+gz"},
		NWorker:       2,
		TimeStart:     time.Now(),
	}
	report, err := Run(opts, sources)
	require.NoError(t, err)
	assert.Equal(t, "chr1:1-1000", report.Region)
	assert.Equal(t, []string{filepath.Join(dir, "out_plus.json"), filepath.Join(dir, "out_plus.bedgraph.gz")}, report.Outputs)
	// (110,210) and (110,215) intersect into one interval
	assert.Equal(t, 1, report.MergedIntrons["+"])
	require.Len(t, report.Samples, 2)
	assert.Equal(t, 1, report.Samples[0].Junctions["+"])
	assert.Equal(t, 3, report.Samples[0].Stats.Used)
	assert.Equal(t, 1, report.Samples[1].Junctions["+"])

	data, err := os.ReadFile(filepath.Join(dir, "out_plus.json"))
	require.NoError(t, err)
	var st track.StrandTracks
	require.NoError(t, json.Unmarshal(data, &st))
	assert.True(t, st.Compressed)
	assert.Equal(t, 110, st.Introns[0].A)
	assert.Equal(t, 210, st.Introns[0].B)
	assert.Equal(t, 6, st.Plot.Height)
	require.Len(t, st.Samples, 2)
	assert.Equal(t, "WT", st.Samples[0].ColorGroup)
	// Both samples share display coordinates
	assert.Equal(t, st.Samples[0].Junctions[0].X, st.Samples[1].Junctions[0].X)

	path := filepath.Join(dir, "report.json")
	require.NoError(t, WriteReport(path, report))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	var decoded Report
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, report.MergedIntrons, decoded.MergedIntrons)
	assert.Equal(t, "NONE", decoded.Mode)
}
