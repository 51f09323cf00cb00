//
// Copyright (C) 2022 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package esam

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.sr.ht/~vejnar/Sashimi/lib/region"
)

const testSAM = "@HD\tVN:1.5\tSO:coordinate\n" +
	"@SQ\tSN:chr1\tLN:1000\n" +
	"@SQ\tSN:chr2\tLN:1000\n" +
	"r1\t0\tchr1\t91\t60\t10M\t*\t0\t0\tACGTACGTAC\t*\n" +
	"r2\t16\tchr1\t101\t60\t5M100N5M\t*\t0\t0\tACGTACGTAC\t*\n" +
	"r3\t0\tchr1\t301\t60\t10M\t*\t0\t0\tACGTACGTAC\t*\n" +
	"r4\t0\tchr2\t101\t60\t10M\t*\t0\t0\tACGTACGTAC\t*\n"

func TestOverlap(t *testing.T) {
	rec := &sam.Record{Pos: 15, Cigar: []sam.CigarOp{
		sam.NewCigarOp(sam.CigarMatch, 6),
		sam.NewCigarOp(sam.CigarSkipped, 14),
		sam.NewCigarOp(sam.CigarMatch, 5),
	}}
	assert.Equal(t, 11, Overlap(rec, 0, 45))
	assert.Equal(t, 1, Overlap(rec, 20, 30))
	assert.Equal(t, 0, Overlap(rec, 22, 35))
	assert.Equal(t, 2, Overlap(rec, 0, 17))
}

func TestNewPathSAM(t *testing.T) {
	assert.Equal(t, PathSAM{Path: "a/b.BAM", Binary: true}, NewPathSAM("a/b.BAM"))
	assert.Equal(t, PathSAM{Path: "a/b.sam", Binary: false}, NewPathSAM("a/b.sam"))
}

func names(records []*sam.Record) (n []string) {
	for _, r := range records {
		n = append(n, r.Name)
	}
	return
}

func TestSAMSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.sam")
	require.NoError(t, os.WriteFile(path, []byte(testSAM), 0666))

	src := SAMSource{Path: path}
	records, err := src.Fetch(region.Region{Chrom: "chr1", Start: 95, End: 250})
	require.NoError(t, err)
	assert.Equal(t, []string{"r1", "r2"}, names(records))
	assert.Equal(t, 100, records[1].Pos)
	assert.Equal(t, sam.Reverse, records[1].Flags&sam.Reverse)

	// Through an external command
	src = SAMSource{Path: path, Command: []string{"cat"}}
	records, err = src.Fetch(region.Region{Chrom: "chr2", Start: 0, End: 1000})
	require.NoError(t, err)
	assert.Equal(t, []string{"r4"}, names(records))

	_, err = SAMSource{Path: filepath.Join(t.TempDir(), "missing.sam")}.Fetch(region.Region{Chrom: "chr1", Start: 0, End: 10})
	assert.Error(t, err)
}

func TestSAMSourceCommandErrors(t *testing.T) {
	dir := t.TempDir()
	r := region.Region{Chrom: "chr1", Start: 0, End: 10}
	// Malformed header read from the command output
	path := filepath.Join(dir, "bad.sam")
	require.NoError(t, os.WriteFile(path, []byte("@SQ\tSN:chr1\tLN:abc\n"), 0666))
	_, err := SAMSource{Path: path, Command: []string{"cat"}}.Fetch(r)
	assert.Error(t, err)
	// Failing command
	_, err = SAMSource{Path: filepath.Join(dir, "missing.sam"), Command: []string{"cat"}}.Fetch(r)
	assert.Error(t, err)
}

func TestBAMSourceNoIndex(t *testing.T) {
	dir := t.TempDir()
	sr, err := sam.NewReader(strings.NewReader(testSAM))
	require.NoError(t, err)
	path := filepath.Join(dir, "test.bam")
	f, err := os.Create(path)
	require.NoError(t, err)
	bw, err := bam.NewWriter(f, sr.Header(), 1)
	require.NoError(t, err)
	for {
		rec, err := sr.Read()
		if err != nil {
			break
		}
		require.NoError(t, bw.Write(rec))
	}
	require.NoError(t, bw.Close())
	require.NoError(t, f.Close())

	src := NewSource(NewPathSAM(path), nil, 2)
	records, err := src.Fetch(region.Region{Chrom: "chr1", Start: 205, End: 400})
	require.NoError(t, err)
	assert.Equal(t, []string{"r2", "r3"}, names(records))
}

func TestFetch(t *testing.T) {
	ref, err := sam.NewReference("chr1", "", "", 1000, nil, nil)
	require.NoError(t, err)
	rec := &sam.Record{Name: "r", Ref: ref, Pos: 10, Cigar: []sam.CigarOp{sam.NewCigarOp(sam.CigarMatch, 10)}}
	src := RecordsSource{rec}
	assert.Len(t, Fetch(src, region.Region{Chrom: "chr1", Start: 0, End: 15}, "s"), 1)
	assert.Empty(t, Fetch(src, region.Region{Chrom: "chr1", Start: 20, End: 30}, "s"))
	assert.Empty(t, Fetch(src, region.Region{Chrom: "chrX", Start: 0, End: 30}, "s"))
	// A failing source yields no record
	assert.Nil(t, Fetch(BAMSource{Path: filepath.Join(t.TempDir(), "missing.bam")}, region.Region{Chrom: "chr1", Start: 0, End: 15}, "s"))
}
