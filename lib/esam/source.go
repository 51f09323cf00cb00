//
// Copyright (C) 2015-2022 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package esam

import (
	"io"
	"os"
	"os/exec"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"
	"github.com/pkg/errors"

	"git.sr.ht/~vejnar/Sashimi/lib/region"
)

// BAMSource queries a BAM file. The index (default Path+".bai") is used when
// present, otherwise the whole file is scanned.
type BAMSource struct {
	Path    string
	Index   string
	NWorker int
}

func (s BAMSource) Fetch(r region.Region) ([]*sam.Record, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	nWorker := s.NWorker
	if nWorker < 1 {
		nWorker = 1
	}
	br, err := bam.NewReader(f, nWorker)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", s.Path)
	}
	defer br.Close()

	pathIndex := s.Index
	if pathIndex == "" {
		pathIndex = s.Path + ".bai"
	}
	fi, err := os.Open(pathIndex)
	if os.IsNotExist(err) {
		return readAll(br, r)
	} else if err != nil {
		return nil, err
	}
	defer fi.Close()
	idx, err := bam.ReadIndex(fi)
	if err != nil {
		return nil, errors.Wrapf(err, "reading index %s", pathIndex)
	}

	var ref *sam.Reference
	for _, rf := range br.Header().Refs() {
		if rf.Name() == r.Chrom {
			ref = rf
			break
		}
	}
	if ref == nil {
		return nil, errors.Errorf("%s not found in %s", r.Chrom, s.Path)
	}
	chunks, err := idx.Chunks(ref, r.Start, r.End)
	if err != nil {
		return nil, errors.Wrapf(err, "querying %s in %s", r, s.Path)
	}
	it, err := bam.NewIterator(br, chunks)
	if err != nil {
		return nil, err
	}
	var records []*sam.Record
	for it.Next() {
		if rec := it.Record(); InRegion(rec, r) {
			records = append(records, rec)
		}
	}
	if err = it.Error(); err != nil {
		it.Close()
		return nil, err
	}
	return records, it.Close()
}

// SAMSource scans a SAM file, or the output of Command run on Path when Command is set.
type SAMSource struct {
	Path    string
	Command []string
}

func (s SAMSource) Fetch(r region.Region) ([]*sam.Record, error) {
	var in io.ReadCloser
	var p *exec.Cmd
	if len(s.Command) == 0 {
		f, err := os.Open(s.Path)
		if err != nil {
			return nil, err
		}
		in = f
	} else {
		cmd := append(append([]string{}, s.Command...), s.Path)
		p = exec.Command(cmd[0], cmd[1:]...)
		pp, err := p.StdoutPipe()
		if err != nil {
			return nil, err
		}
		if err = p.Start(); err != nil {
			return nil, err
		}
		in = pp
	}
	sr, err := sam.NewReader(in)
	if err != nil {
		in.Close()
		if p != nil {
			p.Wait()
		}
		return nil, errors.Wrapf(err, "reading %s", s.Path)
	}
	records, err := readAll(sr, r)
	in.Close()
	if p != nil {
		if werr := p.Wait(); werr != nil && err == nil {
			err = errors.Wrapf(werr, "running %v", s.Command)
		}
	}
	return records, err
}

// readAll keeps the records of rr within r.
func readAll(rr sam.RecordReader, r region.Region) ([]*sam.Record, error) {
	var records []*sam.Record
	for {
		rec, err := rr.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}
		if InRegion(rec, r) {
			records = append(records, rec)
		}
	}
	return records, nil
}

// NewSource returns the Source reading pathSAM.
func NewSource(pathSAM PathSAM, cmd []string, nWorker int) Source {
	if pathSAM.Binary {
		return BAMSource{Path: pathSAM.Path, NWorker: nWorker}
	}
	return SAMSource{Path: pathSAM.Path, Command: cmd}
}
