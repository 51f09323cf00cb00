//
// Copyright (C) 2015-2022 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"git.sr.ht/~vejnar/Sashimi/lib/coverage"
)

type SampleReport struct {
	ID        string         `json:"id"`
	Stats     coverage.Stats `json:"stats"`
	Junctions map[string]int `json:"junctions"`
}

type Report struct {
	Region        string         `json:"region"`
	Mode          string         `json:"strand_mode"`
	Samples       []SampleReport `json:"samples"`
	MergedIntrons map[string]int `json:"merged_introns"`
	Outputs       []string       `json:"outputs"`
}

// NewSampleReport counts the junctions retained on each strand of s.
func NewSampleReport(s *coverage.Sample) SampleReport {
	sr := SampleReport{ID: s.ID, Stats: s.Stats, Junctions: make(map[string]int)}
	for st := range s.Tracks {
		sr.Junctions[st.String()] = len(s.Junctions(st))
	}
	return sr
}

func WriteReport(pathReport string, report Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	if pathReport != "-" {
		f, err := os.Create(pathReport)
		if err != nil {
			return err
		}
		if _, err = f.Write(data); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}
	fmt.Println(string(data))
	return nil
}
