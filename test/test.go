// Package test contains utility functions used throughout the project in tests
package test

import (
	"reflect"
	"testing"
)

// LogUnexpected fails the test and prints the values in an
// `expected: X got: Y` format
func LogUnexpected(t *testing.T, expected, got interface{}) {
	t.Helper()
	t.Fatalf("\nexpected: %#v\ngot:      %#v", expected, got)
}

// AssertDeepEquals aserts two values are deeply equal or fails the test, if
// not
func AssertDeepEquals(t *testing.T, res, std interface{}) {
	t.Helper()
	if !reflect.DeepEqual(res, std) {
		LogUnexpected(t, std, res)
	}
}

// AssertEquals asserts two comparable values are equal
func AssertEquals[T comparable](t *testing.T, res, std T) {
	t.Helper()
	if res != std {
		LogUnexpected(t, std, res)
	}
}

// UnexpectedError fails the test with an unexecpted error message
func UnexpectedError(t *testing.T, err error) {
	t.Helper()
	t.Fatalf("unexpected error: %#v", err)
}

// AssertError fails the test, if err is nil or check returns false for it
func AssertError(t *testing.T, err error, check func(error) bool) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error")
	}
	if check != nil && !check(err) {
		t.Fatalf("unexpected error type: %#v", err)
	}
}
