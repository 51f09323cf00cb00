//
// Copyright © 2015 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package sample

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/fatih/set.v0"

	"git.sr.ht/~vejnar/Sashimi/lib/esam"
)

// Sample is one alignment file with its presentation levels.
type Sample struct {
	ID      string
	Path    esam.PathSAM
	Overlay string
	Color   string
}

// ColorGroup returns the key used to pick the sample color: its color level, else its
// overlay level, else its own ID.
func (s Sample) ColorGroup() string {
	if s.Color != "" {
		return s.Color
	}
	if s.Overlay != "" {
		return s.Overlay
	}
	return s.ID
}

// IDFromPath returns the file name without its extension.
func IDFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// FromPaths returns one sample per alignment file.
func FromPaths(paths []string) ([]Sample, error) {
	var samples []Sample
	for _, p := range paths {
		samples = append(samples, Sample{ID: IDFromPath(p), Path: esam.NewPathSAM(p)})
	}
	return samples, checkIDs(samples)
}

// OpenSheet parses a tabulated sample sheet: ID, path, then free columns.
// overlayCol and colorCol are 1-based column indices (0 to ignore).
func OpenSheet(spath string, overlayCol, colorCol int) ([]Sample, error) {
	sfos, err := os.Open(spath)
	if err != nil {
		return nil, err
	}
	defer sfos.Close()

	var samples []Sample
	var nline int
	sscanner := bufio.NewScanner(sfos)
	for sscanner.Scan() {
		nline++
		line := strings.TrimSpace(sscanner.Text())
		if len(line) == 0 || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 2 {
			return nil, errors.Errorf("%s:%d: expected ID and path", spath, nline)
		}
		s := Sample{ID: fields[0], Path: esam.NewPathSAM(fields[1])}
		if s.Overlay, err = column(fields, overlayCol); err != nil {
			return nil, errors.Wrapf(err, "%s:%d", spath, nline)
		}
		if s.Color, err = column(fields, colorCol); err != nil {
			return nil, errors.Wrapf(err, "%s:%d", spath, nline)
		}
		samples = append(samples, s)
	}
	if err := sscanner.Err(); err != nil {
		return nil, err
	}
	return samples, checkIDs(samples)
}

func column(fields []string, col int) (string, error) {
	if col <= 0 {
		return "", nil
	}
	if col > len(fields) {
		return "", errors.Errorf("no column %d", col)
	}
	return fields[col-1], nil
}

func checkIDs(samples []Sample) error {
	ids := set.New(set.NonThreadSafe)
	for _, s := range samples {
		if ids.Has(s.ID) {
			return errors.Errorf("Duplicate sample ID %s", s.ID)
		}
		ids.Add(s.ID)
	}
	return nil
}

// Groups returns the sample IDs by overlay level, in order of first appearance.
func Groups(samples []Sample) (levels []string, groups map[string][]string) {
	groups = make(map[string][]string)
	for _, s := range samples {
		if s.Overlay == "" {
			continue
		}
		if _, ok := groups[s.Overlay]; !ok {
			levels = append(levels, s.Overlay)
		}
		groups[s.Overlay] = append(groups[s.Overlay], s.ID)
	}
	return
}
