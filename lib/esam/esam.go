//
// Copyright © 2015 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package esam

import (
	"strings"

	"github.com/biogo/hts/sam"
	log "github.com/sirupsen/logrus"

	"git.sr.ht/~vejnar/Sashimi/lib/region"
)

// PathSAM stores Path to SAM (Binary=false) or BAM (Binary=true) file.
type PathSAM struct {
	Path   string
	Binary bool
}

// NewPathSAM guesses the format from the file extension.
func NewPathSAM(path string) PathSAM {
	return PathSAM{Path: path, Binary: strings.HasSuffix(strings.ToLower(path), ".bam")}
}

// Source returns the alignments covering a region.
type Source interface {
	Fetch(r region.Region) ([]*sam.Record, error)
}

// Fetch returns the records of src covering r. A failing source yields no record.
func Fetch(src Source, r region.Region, name string) []*sam.Record {
	records, err := src.Fetch(r)
	if err != nil {
		log.WithFields(log.Fields{"sample": name, "region": r.String()}).Warnf("No alignment retrieved: %v", err)
		return nil
	}
	return records
}

// Overlap returns the length of the overlap between the alignment of the SAM record and the interval specified with start and end.
func Overlap(r *sam.Record, start, end int) int {
	var overlap int
	pos := r.Pos
	for _, co := range r.Cigar {
		t := co.Type()
		con := t.Consumes()
		lr := co.Len() * con.Reference
		if con.Query == con.Reference {
			o := min(pos+lr, end) - max(pos, start)
			if o > 0 {
				overlap += o
			}
		}
		pos += lr
	}
	return overlap
}

// InRegion reports whether r has aligned bases in the region.
func InRegion(rec *sam.Record, r region.Region) bool {
	if rec.Ref == nil || rec.Ref.Name() != r.Chrom {
		return false
	}
	return Overlap(rec, r.Start, r.End) > 0
}

// RecordsSource is a Source over records already in memory.
type RecordsSource []*sam.Record

func (rs RecordsSource) Fetch(r region.Region) ([]*sam.Record, error) {
	var records []*sam.Record
	for _, rec := range rs {
		if InRegion(rec, r) {
			records = append(records, rec)
		}
	}
	return records, nil
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
