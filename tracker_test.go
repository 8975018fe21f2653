// Copyright 2019 Yegor Myskin. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tailsafe_test

import (
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/un000/tailsafe"
)

type lengthLog struct {
	mu   sync.Mutex
	seen []int64
}

func (l *lengthLog) observe(length int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seen = append(l.seen, length)
}

func (l *lengthLog) snapshot() []int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]int64(nil), l.seen...)
}

func newTestTracker(t *testing.T, src tailsafe.Stream) (*tailsafe.Tracker, *lengthLog) {
	t.Helper()

	tracker, err := tailsafe.NewTracker(src, tailsafe.WithInterval(5*time.Millisecond))
	require.NoError(t, err)
	t.Cleanup(func() { _ = tracker.Close() })

	log := &lengthLog{}
	tracker.Subscribe(log.observe)

	return tracker, log
}

func TestTrackerNotifiesOncePerTransition(t *testing.T) {
	src := &memStream{data: []byte("abc")}
	tracker, log := newTestTracker(t, src)

	// the immediate first cycle observes the 0 -> 3 transition
	require.NoError(t, tracker.Start())
	require.Equal(t, []int64{3}, log.snapshot())

	src.append([]byte("def"))
	require.Eventually(t, func() bool {
		return len(log.snapshot()) == 2
	}, time.Second, time.Millisecond)
	require.Equal(t, []int64{3, 6}, log.snapshot())

	// steady length, no further notifications
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, []int64{3, 6}, log.snapshot())
}

func TestTrackerStartTwice(t *testing.T) {
	tracker, _ := newTestTracker(t, &memStream{})

	require.NoError(t, tracker.Start())
	require.ErrorIs(t, tracker.Start(), tailsafe.ErrTracking)

	tracker.Stop()
	require.NoError(t, tracker.Start())
}

func TestTrackerSkipsFailedCycles(t *testing.T) {
	src := &memStream{data: []byte("grown beyond zero")}
	src.setLenErr(io.ErrClosedPipe)
	tracker, log := newTestTracker(t, src)

	require.NoError(t, tracker.Start())
	time.Sleep(30 * time.Millisecond)
	require.Empty(t, log.snapshot())

	// polling resumes by itself once the length is readable again
	src.setLenErr(nil)
	require.Eventually(t, func() bool {
		return len(log.snapshot()) == 1
	}, time.Second, time.Millisecond)
}

func TestTrackerStopPreventsCycles(t *testing.T) {
	src := &memStream{data: []byte("ab")}
	tracker, log := newTestTracker(t, src)

	require.NoError(t, tracker.Start())
	tracker.Stop()
	tracker.Stop()

	src.append([]byte("cd"))
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, []int64{2}, log.snapshot())
}

func TestTrackerPassesThrough(t *testing.T) {
	src := &memStream{data: []byte("payload")}
	tracker, err := tailsafe.NewTracker(src)
	require.NoError(t, err)

	pos, err := tracker.Seek(3, io.SeekStart)
	require.NoError(t, err)
	require.EqualValues(t, 3, pos)

	buf := make([]byte, 4)
	n, err := tracker.Read(buf)
	require.NoError(t, err)
	require.Equal(t, []byte("load"), buf[:n])

	length, err := tracker.Length()
	require.NoError(t, err)
	require.EqualValues(t, 7, length)

	require.NoError(t, tracker.Close())
}

func TestTrackerCloseOnce(t *testing.T) {
	src := &memStream{}
	tracker, err := tailsafe.NewTracker(src)
	require.NoError(t, err)

	require.NoError(t, tracker.Start())
	require.NoError(t, tracker.Close())
	require.NoError(t, tracker.Close())

	src.mu.Lock()
	closed := src.closed
	src.mu.Unlock()
	require.Equal(t, 1, closed)
}

func TestTrackerValidation(t *testing.T) {
	_, err := tailsafe.NewTracker(nil)
	require.Error(t, err)
}
