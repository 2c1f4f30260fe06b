// Package require is a thin facade over testify so call sites across the
// compiler's test suites read the same way regardless of which assertion
// backend is used underneath.
package require

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// NoError fails the test immediately if err is non-nil.
func NoError(t *testing.T, err error, msgAndArgs ...interface{}) {
	t.Helper()
	if !assert.NoError(t, err, msgAndArgs...) {
		t.FailNow()
	}
}

// Error fails the test immediately if err is nil.
func Error(t *testing.T, err error, msgAndArgs ...interface{}) {
	t.Helper()
	if !assert.Error(t, err, msgAndArgs...) {
		t.FailNow()
	}
}

// Equal fails the test immediately if want != got.
func Equal(t *testing.T, want, got interface{}, msgAndArgs ...interface{}) {
	t.Helper()
	if !assert.Equal(t, want, got, msgAndArgs...) {
		t.FailNow()
	}
}

// NotEqual fails the test immediately if want == got.
func NotEqual(t *testing.T, want, got interface{}, msgAndArgs ...interface{}) {
	t.Helper()
	if !assert.NotEqual(t, want, got, msgAndArgs...) {
		t.FailNow()
	}
}

// True fails the test immediately if v is false.
func True(t *testing.T, v bool, msgAndArgs ...interface{}) {
	t.Helper()
	if !assert.True(t, v, msgAndArgs...) {
		t.FailNow()
	}
}

// False fails the test immediately if v is true.
func False(t *testing.T, v bool, msgAndArgs ...interface{}) {
	t.Helper()
	if !assert.False(t, v, msgAndArgs...) {
		t.FailNow()
	}
}

// Nil fails the test immediately if v is non-nil.
func Nil(t *testing.T, v interface{}, msgAndArgs ...interface{}) {
	t.Helper()
	if !assert.Nil(t, v, msgAndArgs...) {
		t.FailNow()
	}
}

// NotNil fails the test immediately if v is nil.
func NotNil(t *testing.T, v interface{}, msgAndArgs ...interface{}) {
	t.Helper()
	if !assert.NotNil(t, v, msgAndArgs...) {
		t.FailNow()
	}
}

// Len fails the test immediately if v does not have the given length.
func Len(t *testing.T, v interface{}, length int, msgAndArgs ...interface{}) {
	t.Helper()
	if !assert.Len(t, v, length, msgAndArgs...) {
		t.FailNow()
	}
}

// Contains fails the test immediately if s does not contain contains.
func Contains(t *testing.T, s, contains interface{}, msgAndArgs ...interface{}) {
	t.Helper()
	if !assert.Contains(t, s, contains, msgAndArgs...) {
		t.FailNow()
	}
}
