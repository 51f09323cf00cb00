//
// Copyright (C) 2022 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package intron

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.sr.ht/~vejnar/Sashimi/lib/coverage"
)

func TestMerge(t *testing.T) {
	tests := []struct {
		in, want []Interval
	}{
		{
			[]Interval{{10, 20}, {15, 30}, {40, 50}},
			[]Interval{{15, 20}, {40, 50}},
		},
		{
			[]Interval{{40, 50}, {15, 30}, {10, 20}},
			[]Interval{{15, 20}, {40, 50}},
		},
		// Touching intervals are not merged
		{
			[]Interval{{1, 2}, {2, 3}},
			[]Interval{{1, 2}, {2, 3}},
		},
		{
			[]Interval{{10, 100}, {20, 30}, {50, 60}},
			[]Interval{{20, 30}, {50, 60}},
		},
		{
			[]Interval{{10, 20}, {10, 20}, {12, 18}},
			[]Interval{{12, 18}},
		},
		{
			[]Interval{{5, 9}},
			[]Interval{{5, 9}},
		},
	}
	for _, tt := range tests {
		in := append([]Interval(nil), tt.in...)
		got, err := Merge(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%v", tt.in)
		assert.Equal(t, in, tt.in, "input modified")
		for i := 1; i < len(got); i++ {
			assert.LessOrEqual(t, got[i-1].B, got[i].A)
		}
	}
}

func TestMergeEmpty(t *testing.T) {
	_, err := Merge(nil)
	assert.True(t, errors.Is(err, ErrEmptyMergeInput))
}

func TestFromJunctions(t *testing.T) {
	s1 := []coverage.Junction{{Donor: 10, Acceptor: 20, Count: 2}}
	s2 := []coverage.Junction{{Donor: 15, Acceptor: 30, Count: 1}, {Donor: 40, Acceptor: 50, Count: 5}}
	ivs := FromJunctions(s1, nil, s2)
	assert.Equal(t, []Interval{{10, 20}, {15, 30}, {40, 50}}, ivs)
	merged, err := Merge(ivs)
	require.NoError(t, err)
	assert.Equal(t, []Interval{{15, 20}, {40, 50}}, merged)
	assert.Equal(t, 5, merged[0].Len())
	assert.Equal(t, "[15,20)", merged[0].String())
}
