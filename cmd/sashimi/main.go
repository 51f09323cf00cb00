//
// Copyright © 2015 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"git.sr.ht/~vejnar/Sashimi/lib/coverage"
	"git.sr.ht/~vejnar/Sashimi/lib/feature"
	"git.sr.ht/~vejnar/Sashimi/lib/region"
	"git.sr.ht/~vejnar/Sashimi/lib/sample"
	"git.sr.ht/~vejnar/Sashimi/lib/strand"
	"git.sr.ht/~vejnar/Sashimi/lib/track"
)

var version = "DEV"

func logLevel(verboseLevel int) log.Level {
	switch {
	case verboseLevel <= 0:
		return log.WarnLevel
	case verboseLevel == 1:
		return log.InfoLevel
	default:
		return log.DebugLevel
	}
}

func main() {
	// Arguments: General
	var pathReport string
	var nWorker, verboseLevel int
	var verbose, printVersion bool
	flag.StringVar(&pathReport, "path_report", "", "Write report to path (stdout with -)")
	flag.IntVar(&nWorker, "num_worker", 1, "Number of worker(s)")
	flag.IntVar(&verboseLevel, "verbose_level", 0, "Verbose level")
	flag.BoolVar(&verbose, "verbose", false, "Verbose")
	flag.BoolVar(&printVersion, "version", false, "Print version and quit")
	// Arguments: Input
	var regionRaw, pathSAMsRaw, pathBAMsRaw, rawSAMCmdIn, pathSamples string
	var overlayCol, colorCol int
	flag.StringVar(&regionRaw, "region", "", "Region to plot (chrom:start-end, 1-based)")
	flag.StringVar(&pathSAMsRaw, "path_sam", "", "Path to SAM file(s) (comma separated)")
	flag.StringVar(&pathBAMsRaw, "path_bam", "", "Path to BAM file(s) (comma separated)")
	flag.StringVar(&rawSAMCmdIn, "sam_command_in", "", "Command line to execute for opening each of the SAM file (comma separated)")
	flag.StringVar(&pathSamples, "path_samples", "", "Path to tabulated sample sheet (ID, path, ...)")
	flag.IntVar(&overlayCol, "overlay", 0, "Column of the sample sheet used to overlay samples (1-based)")
	flag.IntVar(&colorCol, "color_factor", 0, "Column of the sample sheet used to color samples (1-based)")
	// Arguments: Annotation
	var pathGTF, pathFON, fonName, fonChrom, fonStrand, fonCoords string
	flag.StringVar(&pathGTF, "path_gtf", "", "Path to GTF annotation (optionally gzipped)")
	flag.StringVar(&pathFON, "path_fon", "", "Path to FON annotation")
	flag.StringVar(&fonName, "fon_name", "transcript_stable_id", "FON key for feature name")
	flag.StringVar(&fonChrom, "fon_chrom", "chrom", "FON key for chromosome or locus")
	flag.StringVar(&fonStrand, "fon_strand", "strand", "FON key for strand")
	flag.StringVar(&fonCoords, "fon_coords", "exons", "FON key for coordinates (exons for example)")
	// Arguments: Read selection
	var strandRaw string
	var minMappingQualityRaw, minCoverage int
	flag.StringVar(&strandRaw, "strand", "NONE", "Library strandedness: NONE, SENSE, ANTISENSE, MATE1_SENSE or MATE2_SENSE")
	flag.IntVar(&minMappingQualityRaw, "read_min_mapping_quality", 0, "Minimum read mapping quality")
	flag.IntVar(&minCoverage, "min_coverage", 1, "Minimum number of reads supporting a junction")
	// Arguments: Output
	var outputPrefix, outputFormatsRaw string
	var shrink, shrinkAnnotation bool
	var height, width, baseSize int
	flag.StringVar(&outputPrefix, "output_prefix", "sashimi", "Prefix of output file(s)")
	flag.StringVar(&outputFormatsRaw, "output_formats", "json", "Output format: 'json', 'bedgraph' or 'csv', with optional '+lz4', '+lz4hc' or '+gz' (comma separated)")
	flag.BoolVar(&shrink, "shrink", false, "Compress introns")
	flag.BoolVar(&shrinkAnnotation, "shrink_annotation", false, "Compress annotation with the introns")
	flag.IntVar(&height, "height", 6, "Plot height")
	flag.IntVar(&width, "width", 10, "Plot width")
	flag.IntVar(&baseSize, "base_size", 14, "Plot base font size")
	// Arguments: Parse
	flag.Parse()

	// Version
	if printVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	// Verbose
	if verbose && verboseLevel == 0 {
		verboseLevel = 1
	}
	log.SetLevel(logLevel(verboseLevel))

	// Max CPU
	if nWorker < 1 {
		nWorker = 1
	}
	runtime.GOMAXPROCS(nWorker * 2)

	// Time start
	timeStart := time.Now()

	// Check arguments
	if regionRaw == "" {
		log.Fatal("No region")
	}
	reg, err := region.Parse(regionRaw)
	if err != nil {
		log.Fatal(err)
	}
	mode, err := strand.ParseMode(strandRaw)
	if err != nil {
		log.Fatal(err)
	}
	if minMappingQualityRaw < 0 || minMappingQualityRaw > 255 {
		log.Fatalf("Invalid minimum mapping quality %d", minMappingQualityRaw)
	}
	if shrinkAnnotation && !shrink {
		log.Warn("-shrink_annotation has no effect without -shrink")
	}

	// Samples
	var samples []sample.Sample
	if pathSamples != "" {
		samples, err = sample.OpenSheet(pathSamples, overlayCol, colorCol)
	} else {
		var paths []string
		for _, raw := range []string{pathSAMsRaw, pathBAMsRaw} {
			if len(raw) > 0 {
				paths = append(paths, strings.Split(raw, ",")...)
			}
		}
		samples, err = sample.FromPaths(paths)
	}
	if err != nil {
		log.Fatal(err)
	}
	if len(samples) == 0 {
		log.Fatal("No SAM/BAM input")
	}
	var SAMCmdIn []string
	if len(rawSAMCmdIn) > 0 {
		SAMCmdIn = strings.Split(rawSAMCmdIn, ",")
	}

	// Output formats
	outputFormats := strings.Split(outputFormatsRaw, ",")
	for _, f := range outputFormats {
		if _, _, err := track.ParseFormat(f); err != nil {
			log.Fatal(err)
		}
	}

	// Annotation
	var annotation []feature.RegionFeature
	if pathGTF != "" || pathFON != "" {
		var features []feature.Feature
		if pathGTF != "" {
			features, err = feature.OpenGTF(pathGTF)
		} else {
			features, err = feature.OpenFON(pathFON, fonName, fonChrom, fonStrand, fonCoords)
		}
		if err != nil {
			log.Fatal(err)
		}
		trees, err := feature.BuildFeatTrees(features)
		if err != nil {
			log.Fatal(err)
		}
		annotation = feature.Query(trees, reg)
		log.Infof("%.1fmin - Found %d transcript(s) in %s", time.Since(timeStart).Minutes(), len(annotation), reg)
	}

	opts := runOptions{
		Config: coverage.Config{
			Region:              reg,
			Mode:                mode,
			MinJunctionCoverage: minCoverage,
			MinMappingQuality:   byte(minMappingQualityRaw),
		},
		Samples:          samples,
		Shrink:           shrink,
		ShrinkAnnotation: shrinkAnnotation,
		Annotation:       annotation,
		Plot:             track.PlotParams{Height: height, Width: width, BaseSize: baseSize},
		OutputPrefix:     outputPrefix,
		OutputFormats:    outputFormats,
		NWorker:          nWorker,
		TimeStart:        timeStart,
	}

	report, err := Run(opts, Sources(samples, SAMCmdIn, nWorker))
	if err != nil {
		log.Fatal(err)
	}
	if pathReport != "" {
		if err = WriteReport(pathReport, report); err != nil {
			log.Fatal(err)
		}
	}

	log.Infof("%.1fmin - Done %d sample(s)", time.Since(timeStart).Minutes(), len(samples))
}
