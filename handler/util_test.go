package handler

import (
	"os"
	"testing"
)

// unsetenv removes keys for the duration of the test. Call t.Setenv on the
// same keys first so they are restored afterwards.
func unsetenv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		os.Unsetenv(k)
	}
}
