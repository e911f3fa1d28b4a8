package openssh

import (
	"testing"
)

func TestExtensions(t *testing.T) {
	RegisterExtensions()
	RegisterExtensions() // idempotent

	want := []string{
		"statvfs@openssh.com=2",
		"home-directory=1",
		"users-groups-by-id@openssh.com=1",
		"expand-path@openssh.com=1",
		"limits@openssh.com=1",
	}

	got := Extensions()
	if len(got) != len(want) {
		t.Fatalf("Extensions() returned %d pairs, but expected %d", len(got), len(want))
	}

	for i, ext := range got {
		if ext.String() != want[i] {
			t.Errorf("Extensions()[%d] = %q, but expected %q", i, ext.String(), want[i])
		}
	}
}
