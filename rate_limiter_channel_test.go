// Copyright 2019 Yegor Myskin. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tailsafe_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/un000/tailsafe"
)

func TestChannelBasedRateLimiterPaces(t *testing.T) {
	l := tailsafe.NewChannelBasedRateLimiter(100)
	defer l.Close()

	start := time.Now()
	for i := 0; i < 30; i++ {
		require.True(t, l.Allow())
	}
	dur := time.Since(start)

	// 30 ticks at 100 lps take about 300ms
	require.GreaterOrEqual(t, dur, 250*time.Millisecond)
	require.Less(t, dur, time.Second)
}
