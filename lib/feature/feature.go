//
// Copyright (C) 2015-2022 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package feature

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"

	"git.sr.ht/~vejnar/Sashimi/lib/strand"
)

// Feature is a transcript: exons in Coords (0-based [start,end)), and
// optionally the transcript bounds in Span.
type Feature struct {
	ID     uint32
	Name   string
	Chrom  string
	Strand int8
	Coords [][]int
	Span   []int
}

// Start returns the transcript start
func (feat Feature) Start() int {
	if len(feat.Span) == 2 {
		return feat.Span[0]
	}
	start := -1
	for _, c := range feat.Coords {
		if start == -1 || c[0] < start {
			start = c[0]
		}
	}
	return start
}

// End returns the transcript end
func (feat Feature) End() int {
	if len(feat.Span) == 2 {
		return feat.Span[1]
	}
	var end int
	for _, c := range feat.Coords {
		if c[1] > end {
			end = c[1]
		}
	}
	return end
}

// Length returns the length of feature
func (feat Feature) Length() (length int) {
	for _, coords := range feat.Coords {
		length += coords[1] - coords[0]
	}
	return
}

// Sorting functions: By Name
// Use it with: sort.Sort(feature.ByName(features))
type ByName []Feature

func (f ByName) Len() int           { return len(f) }
func (f ByName) Swap(i, j int)      { f[i], f[j] = f[j], f[i] }
func (f ByName) Less(i, j int) bool { return f[i].Name < f[j].Name }

// parseStrand reads a strand written as text or as a JSON number.
func parseStrand(raw interface{}) int8 {
	switch v := raw.(type) {
	case string:
		return int8(strand.Parse(v))
	case json.Number:
		return int8(strand.Parse(v.String()))
	}
	return 0
}

// openText opens a possibly gzip-compressed text file.
func openText(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, ".gz") {
		return f, nil
	}
	zr, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	return &gzipFile{Reader: zr, f: f}, nil
}

type gzipFile struct {
	*gzip.Reader
	f *os.File
}

func (g *gzipFile) Close() error {
	g.Reader.Close()
	return g.f.Close()
}

// OpenFON parses a "Feature Object Notation" file and returns a list of Feature
func OpenFON(jpath, fonName, fonChrom, fonStrand, fonCoords string) (features []Feature, err error) {
	jfos, err := openText(jpath)
	if err != nil {
		return
	}
	defer jfos.Close()

	d := json.NewDecoder(jfos)
	d.UseNumber()
	var fon map[string]interface{}
	if err = d.Decode(&fon); err != nil {
		err = errors.Errorf("Error while parsing JSON feature file %s", jpath)
		return
	}

	// FON version
	rawVersion, ok := fon["fon_version"].(json.Number)
	if !ok {
		err = errors.Errorf("Missing FON version in %s", jpath)
		return
	}
	var version int64
	if version, err = rawVersion.Int64(); err != nil {
		return
	} else if version != 1 {
		err = errors.Errorf("Unknown FON version %d", version)
		return
	}

	// Get features
	rawFeatures, _ := fon["features"].([]interface{})
	for i, rf := range rawFeatures {
		mf, ok := rf.(map[string]interface{})
		if !ok {
			return nil, errors.Errorf("Feature %d is not an object in %s", i, jpath)
		}
		name, _ := mf[fonName].(string)
		chrom, _ := mf[fonChrom].(string)
		f := Feature{ID: uint32(i), Name: name, Chrom: chrom, Strand: parseStrand(mf[fonStrand])}
		// Add coordinates
		rawCoords, _ := mf[fonCoords].([]interface{})
		for _, cj := range rawCoords {
			pair, ok := cj.([]interface{})
			if !ok || len(pair) != 2 {
				return nil, errors.Errorf("Wrong coordinates for feature %s", name)
			}
			coord := make([]int, 2)
			for k, ck := range pair {
				n, ok := ck.(json.Number)
				if !ok {
					return nil, errors.Errorf("Wrong coordinates for feature %s", name)
				}
				v, err := n.Int64()
				if err != nil {
					return nil, errors.Wrapf(err, "feature %s", name)
				}
				coord[k] = int(v)
			}
			f.Coords = append(f.Coords, coord)
		}
		features = append(features, f)
	}
	return
}

// OpenGTF parses a GTF file (optionally gzip-compressed) and returns one Feature per
// transcript_id, with exons as coordinates. Only "transcript" and "exon" lines are used.
func OpenGTF(gpath string) (features []Feature, err error) {
	gfos, err := openText(gpath)
	if err != nil {
		return
	}
	defer gfos.Close()

	index := make(map[string]int)
	gscanner := bufio.NewScanner(gfos)
	gscanner.Buffer(make([]byte, 64*1024), 1024*1024)
	var nline int
	for gscanner.Scan() {
		nline++
		line := gscanner.Text()
		if len(line) == 0 || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != 9 {
			return nil, errors.Errorf("%s:%d: expected 9 fields, found %d", gpath, nline, len(fields))
		}
		kind := fields[2]
		if kind != "transcript" && kind != "exon" {
			continue
		}
		start, err := strconv.Atoi(fields[3])
		if err != nil {
			return nil, errors.Wrapf(err, "%s:%d", gpath, nline)
		}
		end, err := strconv.Atoi(fields[4])
		if err != nil {
			return nil, errors.Wrapf(err, "%s:%d", gpath, nline)
		}
		txID, ok := ParseAttributes(fields[8])["transcript_id"]
		if !ok {
			return nil, errors.Errorf("%s:%d: missing transcript_id", gpath, nline)
		}
		i, ok := index[txID]
		if !ok {
			i = len(features)
			index[txID] = i
			features = append(features, Feature{ID: uint32(i), Name: txID, Chrom: fields[0], Strand: parseStrand(fields[6])})
		}
		// GTF is 1-based inclusive
		if kind == "transcript" {
			features[i].Span = []int{start - 1, end}
		} else {
			features[i].Coords = append(features[i].Coords, []int{start - 1, end})
		}
	}
	if err = gscanner.Err(); err != nil {
		return
	}
	for i := range features {
		sort.Slice(features[i].Coords, func(a, b int) bool { return features[i].Coords[a][0] < features[i].Coords[b][0] })
	}
	return
}

// ParseAttributes parses the attribute column of a GTF line (key "value"; ...).
func ParseAttributes(raw string) map[string]string {
	attrs := make(map[string]string)
	for _, kv := range strings.Split(raw, ";") {
		kv = strings.TrimSpace(kv)
		if len(kv) == 0 {
			continue
		}
		i := strings.IndexAny(kv, " \t")
		if i == -1 {
			continue
		}
		attrs[kv[:i]] = strings.Trim(strings.TrimSpace(kv[i+1:]), "\"")
	}
	return attrs
}
