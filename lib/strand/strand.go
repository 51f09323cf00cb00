//
// Copyright (C) 2022 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package strand

import (
	"strings"

	"github.com/biogo/hts/sam"
	"github.com/pkg/errors"
)

var ErrUnsupportedMode = errors.New("unsupported strand mode")

// Strand is the display strand of a read: 1 (+) or -1 (-).
type Strand int8

const (
	Plus  Strand = 1
	Minus Strand = -1
)

func (s Strand) String() string {
	if s == Minus {
		return "-"
	}
	return "+"
}

// Parse parses "+", "1", "+1", "-" or "-1". Anything else is 0.
func Parse(raw string) Strand {
	switch raw {
	case "+", "1", "+1":
		return Plus
	case "-", "-1":
		return Minus
	}
	return 0
}

// Mode is the strand specificity of a library.
type Mode int

const (
	ModeNone Mode = iota
	ModeSense
	ModeAntisense
	ModeMate1Sense
	ModeMate2Sense
)

var modeNames = [...]string{"NONE", "SENSE", "ANTISENSE", "MATE1_SENSE", "MATE2_SENSE"}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return "UNKNOWN"
	}
	return modeNames[m]
}

// ParseMode parses a mode name (case insensitive).
func ParseMode(raw string) (Mode, error) {
	for i, name := range modeNames {
		if strings.EqualFold(raw, name) {
			return Mode(i), nil
		}
	}
	return ModeNone, errors.Wrapf(ErrUnsupportedMode, "%q", raw)
}

// Strands returns the strand buckets produced by mode.
func (m Mode) Strands() []Strand {
	if m == ModeNone {
		return []Strand{Plus}
	}
	return []Strand{Plus, Minus}
}

// Mate classes
const (
	mateUnpaired = iota
	mateFirst
	mateSecond
)

// Orientations before applying the reverse bit
const (
	sense      int8 = 0
	antisense  int8 = 1
	unresolved int8 = -1
)

// orientations is indexed by mode then mate class.
var orientations = [...][3]int8{
	ModeNone:       {sense, sense, sense},
	ModeSense:      {sense, sense, sense},
	ModeAntisense:  {antisense, antisense, antisense},
	ModeMate1Sense: {unresolved, sense, antisense},
	ModeMate2Sense: {unresolved, antisense, sense},
}

func mateClass(flags sam.Flags) int {
	if flags&sam.Read1 != 0 {
		return mateFirst
	}
	if flags&sam.Read2 != 0 {
		return mateSecond
	}
	return mateUnpaired
}

// Classify returns the display strand of a read with flags. ok is false when the mode
// needs a mate bit the read does not carry.
func Classify(mode Mode, flags sam.Flags) (s Strand, ok bool) {
	if mode == ModeNone {
		return Plus, true
	}
	if mode < 0 || int(mode) >= len(orientations) {
		return 0, false
	}
	o := orientations[mode][mateClass(flags)]
	if o == unresolved {
		return 0, false
	}
	var reverse int8
	if flags&sam.Reverse != 0 {
		reverse = 1
	}
	if o^reverse == 0 {
		return Plus, true
	}
	return Minus, true
}
