package testutil

import (
	"reflect"
	"testing"
)

// tl;dr:
//  - `Assert*` methods are Fatalf if failed;
//  - `Want*` methods are Errorf if failed.

type thunk func(string, ...interface{})

func AssertNoError(t *testing.T, err error) { t.Helper(); lambdaNoError(t.Fatalf, err) }
func WantNoError(t *testing.T, err error)   { t.Helper(); lambdaNoError(t.Errorf, err) }
func lambdaNoError(act thunk, err error) {
	if err != nil {
		act("unexpected error: %s", err)
	}
}

func AssertEqual(t *testing.T, actual, expected interface{}) {
	t.Helper()
	lambdaEqual(t.Fatalf, actual, expected)
}
func WantEqual(t *testing.T, actual, expected interface{}) {
	t.Helper()
	lambdaEqual(t.Errorf, actual, expected)
}
func lambdaEqual(act thunk, actual, expected interface{}) {
	if !reflect.DeepEqual(actual, expected) {
		act("expected %#v, got %#v", expected, actual)
	}
}
