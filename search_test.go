// Copyright 2019 Yegor Myskin. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tailsafe

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSearchFloor(t *testing.T) {
	var tests = []struct {
		sorted []int64
		needle int64
		want   int
	}{
		{nil, 5, -1},
		{[]int64{}, 0, -1},
		{[]int64{10}, 9, -1},
		{[]int64{10}, 10, 0},
		{[]int64{10}, 11, 0},
		{[]int64{1, 3, 5, 7}, 0, -1},
		{[]int64{1, 3, 5, 7}, 1, 0},
		{[]int64{1, 3, 5, 7}, 4, 1},
		{[]int64{1, 3, 5, 7}, 7, 3},
		{[]int64{1, 3, 5, 7}, 100, 3},
		{[]int64{1, 1, 3}, 1, 1},
		{[]int64{1, 1, 3}, 2, 1},
	}

	for i, data := range tests {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			require.Equal(t, data.want, SearchFloor(data.sorted, data.needle))
		})
	}
}

func TestIndexSeq(t *testing.T) {
	var tests = []struct {
		buf     string
		pattern string
		from    int
		want    int
	}{
		{"", "a", 0, -1},
		{"a", "", 0, -1},
		{"a", "ab", 0, -1},
		{"ab", "ab", 3, -1},
		{"ab", "ab", -5, 0},
		{"ab", "ab", 0, 0},
		{"xxabxx", "ab", 0, 2},
		{"xxabxx", "ab", 2, 2},
		{"xxabxx", "ab", 3, -1},
		{"abab", "ab", 1, 2},
		{"aaa", "aa", 0, 0},
		{"one\ntwo\n", "\n", 0, 3},
		{"one\ntwo\n", "\n", 4, 7},
		{"a\x00b\x00\n\x00", "\n\x00", 0, 4},
	}

	for i, data := range tests {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			require.Equal(t, data.want, IndexSeq([]byte(data.buf), []byte(data.pattern), data.from))
		})
	}
}

func TestLastIndexSeq(t *testing.T) {
	var tests = []struct {
		buf     string
		pattern string
		from    int
		want    int
	}{
		{"", "a", 0, -1},
		{"a", "", 0, -1},
		{"a", "ab", 0, -1},
		{"ab", "ab", -1, -1},
		{"ab", "ab", 100, 0},
		{"xxabxx", "ab", 5, 2},
		{"xxabxx", "ab", 2, 2},
		{"xxabxx", "ab", 1, -1},
		{"abab", "ab", 3, 2},
		{"abab", "ab", 1, 0},
		{"one\ntwo\n", "\n", 7, 7},
		{"one\ntwo\n", "\n", 6, 3},
	}

	for i, data := range tests {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			require.Equal(t, data.want, LastIndexSeq([]byte(data.buf), []byte(data.pattern), data.from))
		})
	}
}

func TestIndexSeqAgreesOnSingleOccurrence(t *testing.T) {
	buf := []byte("prefix-needle-suffix")
	pattern := []byte("needle")

	first := IndexSeq(buf, pattern, 0)
	last := LastIndexSeq(buf, pattern, len(buf))

	require.Equal(t, 7, first)
	require.Equal(t, first, last)
}
