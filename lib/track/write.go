//
// Copyright (C) 2015-2022 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package track

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/pierrec/lz4"
	"github.com/pkg/errors"
)

var ErrUnsupportedFormat = errors.New("unsupported output format")

type GenericWriter interface {
	Write(buf []byte) (n int, err error)
	Close() error
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// ParseFormat splits "format+zip" and checks both parts.
func ParseFormat(raw string) (format, zip string, err error) {
	format = raw
	if strings.Contains(raw, "+") {
		doubleFormat := strings.SplitN(raw, "+", 2)
		format, zip = doubleFormat[0], doubleFormat[1]
	}
	switch format {
	case "json", "bedgraph", "csv":
	default:
		return "", "", errors.Wrapf(ErrUnsupportedFormat, "%q", raw)
	}
	switch zip {
	case "", "lz4", "lz4hc", "gz":
	default:
		return "", "", errors.Wrapf(ErrUnsupportedFormat, "compression %q", raw)
	}
	return format, zip, nil
}

// Path returns the output path of one strand in one format.
func Path(prefix, strandName, rawFormat string) string {
	format, zip, _ := ParseFormat(rawFormat)
	tag := "plus"
	if strandName == "-" {
		tag = "minus"
	}
	p := prefix + "_" + tag + "." + format
	switch zip {
	case "lz4", "lz4hc":
		p += ".lz4"
	case "gz":
		p += ".gz"
	}
	return p
}

func newWriter(w io.Writer, zip string) GenericWriter {
	switch zip {
	case "lz4":
		return lz4.NewWriter(w)
	case "lz4hc":
		lzWriter := lz4.NewWriter(w)
		lzWriter.Header = lz4.Header{CompressionLevel: 9}
		return lzWriter
	case "gz":
		return gzip.NewWriter(w)
	default:
		return nopCloser{w}
	}
}

// Write writes st in rawFormat (e.g. "json", "bedgraph+gz") to w.
func Write(w io.Writer, st StrandTracks, rawFormat string) error {
	format, zip, err := ParseFormat(rawFormat)
	if err != nil {
		return err
	}
	writer := newWriter(w, zip)
	switch format {
	case "json":
		enc := json.NewEncoder(writer)
		enc.SetIndent("", "  ")
		err = enc.Encode(st)
	case "bedgraph":
		err = writeBedGraph(writer, st)
	case "csv":
		err = writeCSV(writer, st)
	}
	if cerr := writer.Close(); err == nil {
		err = cerr
	}
	return err
}

// WriteFile writes st to the file named after prefix, its strand and rawFormat.
func WriteFile(prefix string, st StrandTracks, rawFormat string) (string, error) {
	if _, _, err := ParseFormat(rawFormat); err != nil {
		return "", err
	}
	path := Path(prefix, st.Strand, rawFormat)
	f, err := os.Create(path)
	if err != nil {
		return path, err
	}
	if err = Write(f, st, rawFormat); err != nil {
		f.Close()
		return path, errors.Wrapf(err, "writing %s", path)
	}
	return path, f.Close()
}

// writeBedGraph writes the genomic coverage of each sample, one track per sample.
func writeBedGraph(w io.Writer, st StrandTracks) error {
	for _, s := range st.Samples {
		if s.Raw == nil {
			continue
		}
		if _, err := fmt.Fprintf(w, "track type=bedGraph name=\"%s\" description=\"%s %s\"\n", s.ID, s.ID, st.Strand); err != nil {
			return err
		}
		t := s.Raw
		var stepStart, stepValue int
		for ip := 0; ip <= len(t.Coverage); ip++ {
			currentValue := 0
			if ip < len(t.Coverage) {
				currentValue = t.Coverage[ip]
			}
			if currentValue != stepValue || ip == len(t.Coverage) {
				if stepValue != 0 {
					if _, err := fmt.Fprintf(w, "%s\t%d\t%d\t%d\n", t.Region.Chrom, t.Region.Start+stepStart, t.Region.Start+ip, stepValue); err != nil {
						return err
					}
				}
				stepStart = ip
				stepValue = currentValue
			}
		}
	}
	return nil
}

// writeCSV writes densities and junctions in long format.
func writeCSV(w io.Writer, st StrandTracks) error {
	if _, err := io.WriteString(w, "sample,kind,x,xend,y,yend,count\n"); err != nil {
		return err
	}
	ff := func(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
	for _, s := range st.Samples {
		for i, x := range s.Density.X {
			if _, err := fmt.Fprintf(w, "%s,density,%s,,%d,,\n", s.ID, ff(x), s.Density.Y[i]); err != nil {
				return err
			}
		}
		for _, a := range s.Junctions {
			if _, err := fmt.Fprintf(w, "%s,junction,%s,%s,%d,%d,%d\n", s.ID, ff(a.X), ff(a.XEnd), a.Y, a.YEnd, a.Count); err != nil {
				return err
			}
		}
	}
	return nil
}
