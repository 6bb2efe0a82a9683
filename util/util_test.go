package util

import (
	"errors"
	"sync/atomic"
	"testing"

	. "github.com/bakape/forum/test"
)

func TestWaterfall(t *testing.T) {
	t.Parallel()

	var ran []int
	errStop := errors.New("stop")
	err := Waterfall(
		func() error {
			ran = append(ran, 1)
			return nil
		},
		func() error {
			ran = append(ran, 2)
			return errStop
		},
		func() error {
			ran = append(ran, 3)
			return nil
		},
	)
	AssertEquals(t, err, errStop)
	AssertDeepEquals(t, ran, []int{1, 2})
}

func TestParallel(t *testing.T) {
	t.Parallel()

	var ctr int32
	inc := func() error {
		atomic.AddInt32(&ctr, 1)
		return nil
	}
	if err := Parallel(inc, inc, inc); err != nil {
		t.Fatal(err)
	}
	AssertEquals(t, atomic.LoadInt32(&ctr), int32(3))

	errFail := errors.New("fail")
	err := Parallel(inc, func() error { return errFail })
	AssertEquals(t, err, errFail)
}

func TestHooks(t *testing.T) {
	const event = "test.hooks"
	defer ClearHooks(event)

	var calls int
	Hook(event, func() error {
		calls++
		return nil
	})
	Hook(event, func() error {
		calls++
		return errors.New("second")
	})
	Hook(event, func() error {
		calls++
		return nil
	})

	if err := Trigger(event); err == nil {
		t.Fatal("expected error")
	}
	AssertEquals(t, calls, 2)
	AssertEquals(t, Trigger("test.none"), nil)
}
