//
// Copyright (C) 2015-2022 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package main

import (
	"context"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"git.sr.ht/~vejnar/Sashimi/lib/coverage"
	"git.sr.ht/~vejnar/Sashimi/lib/esam"
	"git.sr.ht/~vejnar/Sashimi/lib/feature"
	"git.sr.ht/~vejnar/Sashimi/lib/sample"
	"git.sr.ht/~vejnar/Sashimi/lib/track"
)

type runOptions struct {
	Config           coverage.Config
	Samples          []sample.Sample
	Shrink           bool
	ShrinkAnnotation bool
	Annotation       []feature.RegionFeature
	Plot             track.PlotParams
	OutputPrefix     string
	OutputFormats    []string
	NWorker          int
	TimeStart        time.Time
}

func elapsed(timeStart time.Time) float64 {
	return time.Since(timeStart).Minutes()
}

// Sources returns one alignment source per sample.
func Sources(samples []sample.Sample, SAMCmdIn []string, nWorker int) []esam.Source {
	sources := make([]esam.Source, len(samples))
	for i, s := range samples {
		sources[i] = esam.NewSource(s.Path, SAMCmdIn, nWorker)
	}
	return sources
}

// AggregateSamples aggregates each sample in its own goroutine, at most nWorker at once.
// Every aggregated sample owns its tracks; the result is ordered as sources.
func AggregateSamples(ctx context.Context, cfg coverage.Config, samples []sample.Sample, sources []esam.Source, nWorker int, timeStart time.Time) ([]*coverage.Sample, error) {
	if len(samples) != len(sources) {
		return nil, errors.Errorf("%d samples for %d sources", len(samples), len(sources))
	}
	if nWorker < 1 {
		nWorker = 1
	}
	results := make([]*coverage.Sample, len(samples))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(nWorker)
	for i := range samples {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			s := samples[i]
			log.Infof("%.1fmin - Opening %s", elapsed(timeStart), s.Path.Path)
			records := esam.Fetch(sources[i], cfg.Region, s.ID)
			results[i] = coverage.Aggregate(s.ID, cfg, records)
			st := results[i].Stats
			log.WithField("sample", s.ID).Infof("%.1fmin - %d/%d read(s) used", elapsed(timeStart), st.Used, st.Reads)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Run aggregates all samples then builds and writes the tracks of each strand.
func Run(opts runOptions, sources []esam.Source) (Report, error) {
	report := Report{Region: opts.Config.Region.String(), Mode: opts.Config.Mode.String(), MergedIntrons: make(map[string]int)}

	samples, err := AggregateSamples(context.Background(), opts.Config, opts.Samples, sources, opts.NWorker, opts.TimeStart)
	if err != nil {
		return report, err
	}
	for _, s := range samples {
		report.Samples = append(report.Samples, NewSampleReport(s))
	}

	for _, st := range opts.Config.Mode.Strands() {
		tracks, err := track.Build(st, samples, opts.Samples, track.Options{
			Shrink:           opts.Shrink,
			ShrinkAnnotation: opts.ShrinkAnnotation,
			Annotation:       opts.Annotation,
			Plot:             opts.Plot,
		})
		if err != nil {
			return report, err
		}
		report.MergedIntrons[st.String()] = len(tracks.Introns)
		if tracks.Compressed {
			log.Infof("%.1fmin - %d merged intron(s) on strand %s", elapsed(opts.TimeStart), len(tracks.Introns), st)
		}
		for _, format := range opts.OutputFormats {
			path, err := track.WriteFile(opts.OutputPrefix, tracks, format)
			if err != nil {
				return report, err
			}
			log.Infof("%.1fmin - Writing %s output in %s", elapsed(opts.TimeStart), format, path)
			report.Outputs = append(report.Outputs, path)
		}
	}
	return report, nil
}
