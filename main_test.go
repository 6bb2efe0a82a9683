package main

import (
	"strings"
	"testing"

	"github.com/bakape/forum/thread"
)

func TestRunUnknownJob(t *testing.T) {
	err := run(&thread.Service{}, "defragment")
	if err == nil {
		t.Fatal("expected error")
	}
	const expected = "expected one of: participants, process, recount, reprocess, upkeep"
	if !strings.HasSuffix(err.Error(), expected) {
		t.Fatalf("unexpected error: %s", err)
	}
}
