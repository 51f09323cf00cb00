//
// Copyright (C) 2022 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package region

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var ErrMalformedRegion = errors.New("malformed region")

// MaxLen is the largest region accepted by Parse, above the longest known chromosome.
const MaxLen = 1 << 30

// Region is a genomic window with 0-based half-open coordinates.
type Region struct {
	Chrom string
	Start int
	End   int
}

// Parse parses a "chrom:start-end" string using the 1-based inclusive display convention.
func Parse(s string) (Region, error) {
	var r Region
	if strings.Count(s, ":") != 1 {
		return r, errors.Wrapf(ErrMalformedRegion, "%q: expected one ':'", s)
	}
	chrom, bounds := s[:strings.Index(s, ":")], s[strings.Index(s, ":")+1:]
	if len(chrom) == 0 {
		return r, errors.Wrapf(ErrMalformedRegion, "%q: empty chromosome", s)
	}
	if strings.Count(bounds, "-") != 1 {
		return r, errors.Wrapf(ErrMalformedRegion, "%q: expected one '-'", s)
	}
	rawStart, rawEnd := bounds[:strings.Index(bounds, "-")], bounds[strings.Index(bounds, "-")+1:]
	start, err := parseBound(rawStart)
	if err != nil {
		return r, errors.Wrapf(ErrMalformedRegion, "%q: start %q is not a number", s, rawStart)
	}
	end, err := parseBound(rawEnd)
	if err != nil {
		return r, errors.Wrapf(ErrMalformedRegion, "%q: end %q is not a number", s, rawEnd)
	}
	if start < 1 {
		return r, errors.Wrapf(ErrMalformedRegion, "%q: start must be at least 1", s)
	}
	r = Region{Chrom: chrom, Start: start - 1, End: end}
	if r.Start >= r.End {
		return Region{}, errors.Wrapf(ErrMalformedRegion, "%q: start must be before end", s)
	}
	if r.Len() > MaxLen {
		return Region{}, errors.Wrapf(ErrMalformedRegion, "%q: longer than %d", s, MaxLen)
	}
	return r, nil
}

// parseBound accepts thousands separators as copied from genome browsers.
func parseBound(raw string) (int, error) {
	return strconv.Atoi(strings.ReplaceAll(strings.TrimSpace(raw), ",", ""))
}

// Len returns the number of bases in the region.
func (r Region) Len() int {
	return r.End - r.Start
}

// Contains reports whether pos lies within [Start,End).
func (r Region) Contains(pos int) bool {
	return pos >= r.Start && pos < r.End
}

// String returns the region in display convention.
func (r Region) String() string {
	return fmt.Sprintf("%s:%d-%d", r.Chrom, r.Start+1, r.End)
}
